package serverutils

import (
	"errors"

	"notevault-be/internal/pkg/syncerr"

	"github.com/gofiber/fiber/v2"
)

// ErrorHandlerMiddleware converts service errors into the response
// envelope. Only the short taxonomy message leaves the process; raw error
// detail stays in the logs.
func ErrorHandlerMiddleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}

		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			return ctx.Status(fiberErr.Code).JSON(ErrorResponse(fiberErr.Code, fiberErr.Message))
		}

		code := statusFor(err)
		return ctx.Status(code).JSON(ErrorResponse(code, syncerr.Message(err)))
	}
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, syncerr.ErrSourceUnavailable):
		return fiber.StatusNotFound
	case errors.Is(err, syncerr.ErrMalformedInput):
		return fiber.StatusUnprocessableEntity
	case syncerr.Rejected(err):
		return fiber.StatusForbidden
	case errors.Is(err, syncerr.ErrSecurity):
		return fiber.StatusConflict
	default:
		return fiber.StatusInternalServerError
	}
}
