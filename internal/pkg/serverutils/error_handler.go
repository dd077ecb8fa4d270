package serverutils

import (
	"errors"

	"github.com/gofiber/fiber/v2"
)

// Sentinel errors services wrap so the middleware can map them to a status
// without the service layer knowing about HTTP.
var (
	ErrNotFound = errors.New("resource not found")
	ErrConflict = errors.New("conflict")
	ErrUpstream = errors.New("upstream failure")
)

// ErrorHandlerMiddleware turns errors returned by handlers into JSON
// responses. Validation failures keep their field-level details so they can
// surface inline near the offending input.
func ErrorHandlerMiddleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}

		var validationErr *ValidationError
		if errors.As(err, &validationErr) {
			return ctx.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
				"message": "Validation failed",
				"fields":  validationErr.Fields,
			})
		}

		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			return ctx.Status(fiberErr.Code).JSON(fiber.Map{"message": fiberErr.Message})
		}

		switch {
		case errors.Is(err, ErrNotFound):
			return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": err.Error()})
		case errors.Is(err, ErrConflict):
			return ctx.Status(fiber.StatusConflict).JSON(fiber.Map{"message": err.Error()})
		case errors.Is(err, ErrUpstream):
			// Retryable: durable state was not touched, the client may simply
			// submit again.
			return ctx.Status(fiber.StatusBadGateway).JSON(fiber.Map{"message": err.Error()})
		}

		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Internal server error"})
	}
}
