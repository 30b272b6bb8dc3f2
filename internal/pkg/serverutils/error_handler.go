package serverutils

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"ai-docqa-be/internal/pkg/logger"
	"ai-docqa-be/pkg/apperr"
)

// ErrorHandlerMiddleware maps domain errors onto HTTP codes: validation
// problems are the client's fault (400), broken model or database
// dependencies are a bad gateway (502), everything else is a 500.
func ErrorHandlerMiddleware(log logger.ILogger) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}

		if apperr.IsValidation(err) {
			return ctx.Status(fiber.StatusBadRequest).JSON(ErrorResponse(fiber.StatusBadRequest, err.Error()))
		}

		if apperr.IsUpstream(err) {
			log.Error("http", "Upstream dependency failed", map[string]interface{}{
				"path":  ctx.Path(),
				"error": err.Error(),
			})
			return ctx.Status(fiber.StatusBadGateway).JSON(ErrorResponse(fiber.StatusBadGateway, err.Error()))
		}

		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			return ctx.Status(fiberErr.Code).JSON(ErrorResponse(fiberErr.Code, fiberErr.Message))
		}

		log.Error("http", "Unhandled error", map[string]interface{}{
			"path":  ctx.Path(),
			"error": err.Error(),
		})
		return ctx.Status(fiber.StatusInternalServerError).JSON(ErrorResponse(fiber.StatusInternalServerError, "internal server error"))
	}
}
