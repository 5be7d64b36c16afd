package serverutils

import (
	"errors"

	"ai-supportdesk-be/internal/pkg/apperror"

	"github.com/gofiber/fiber/v2"
)

// ErrorHandlerMiddleware turns service errors into the structured code/message
// pair. AppErrors keep their code; anything else collapses to a 500 so
// internals never leak to the widget.
func ErrorHandlerMiddleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}

		if appErr, ok := apperror.As(err); ok {
			return ctx.Status(appErr.HTTPStatus()).JSON(ErrorBody{
				Code:    string(appErr.Code),
				Message: appErr.Message,
			})
		}

		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			return ctx.Status(fiberErr.Code).JSON(ErrorBody{
				Code:    "ERROR",
				Message: fiberErr.Message,
			})
		}

		return ctx.Status(fiber.StatusInternalServerError).JSON(ErrorBody{
			Code:    "INTERNAL",
			Message: "Something went wrong",
		})
	}
}
