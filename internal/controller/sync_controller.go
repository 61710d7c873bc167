package controller

import (
	"notevault-be/internal/dto"
	"notevault-be/internal/pkg/serverutils"
	"notevault-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type ISyncController interface {
	RegisterRoutes(r fiber.Router)
	Import(ctx *fiber.Ctx) error
	Export(ctx *fiber.Ctx) error
	JobStatus(ctx *fiber.Ctx) error
}

type syncController struct {
	syncService service.ISyncService
	jobService  service.IJobService
}

func NewSyncController(syncService service.ISyncService, jobService service.IJobService) ISyncController {
	return &syncController{
		syncService: syncService,
		jobService:  jobService,
	}
}

func (c *syncController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/sync/v1")
	h.Post("import", c.Import)
	h.Post("export", c.Export)
	h.Get("jobs/:id", c.JobStatus)
}

func (c *syncController) Import(ctx *fiber.Ctx) error {
	var req dto.ImportRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.syncService.Import(&req)
	if err != nil {
		return err
	}
	return ctx.Status(fiber.StatusAccepted).JSON(serverutils.SuccessResponse("Import started", res))
}

func (c *syncController) Export(ctx *fiber.Ctx) error {
	var req dto.ExportRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.syncService.Export(&req)
	if err != nil {
		return err
	}
	return ctx.Status(fiber.StatusAccepted).JSON(serverutils.SuccessResponse("Export started", res))
}

func (c *syncController) JobStatus(ctx *fiber.Ctx) error {
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid job id")
	}

	status, ok := c.jobService.Status(id)
	if !ok {
		return fiber.NewError(fiber.StatusNotFound, "job not found")
	}
	return ctx.JSON(serverutils.SuccessResponse("Success show job", status))
}
