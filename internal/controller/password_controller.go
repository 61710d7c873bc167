package controller

import (
	"notevault-be/internal/dto"
	"notevault-be/internal/pkg/serverutils"
	"notevault-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IPasswordController interface {
	RegisterRoutes(r fiber.Router)
	Change(ctx *fiber.Ctx) error
}

type passwordController struct {
	passwordService service.IPasswordService
}

func NewPasswordController(passwordService service.IPasswordService) IPasswordController {
	return &passwordController{
		passwordService: passwordService,
	}
}

func (c *passwordController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/password/v1")
	h.Post("change", c.Change)
}

func (c *passwordController) Change(ctx *fiber.Ctx) error {
	var req dto.ChangePasswordRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.passwordService.ChangePassword(&req)
	if err != nil {
		return err
	}
	return ctx.Status(fiber.StatusAccepted).JSON(serverutils.SuccessResponse("Password change started", res))
}
