package middleware

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	apperrors "github.com/yigitcanlotec/OOP-challenge-4/pkg/errors"
)

// RespondError writes err as the standard error envelope. Errors that are not
// *AppError become INTERNAL_ERROR unless they carry a fiber status.
func RespondError(c *fiber.Ctx, err error) error {
	appErr, ok := apperrors.As(err)
	if !ok {
		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			appErr = fromFiberError(fiberErr)
		} else {
			appErr = apperrors.NewAppError(apperrors.CodeInternalError, "Internal server error", err)
		}
	}

	if appErr.IsRetryable() {
		c.Set(fiber.HeaderRetryAfter, "1")
	}
	return c.Status(appErr.HTTPStatus()).JSON(appErr.ToErrorResponse(RequestID(c)))
}

func fromFiberError(e *fiber.Error) *apperrors.AppError {
	switch e.Code {
	case fiber.StatusBadRequest, fiber.StatusUnprocessableEntity:
		return apperrors.NewAppError(apperrors.CodeBadRequest, e.Message, e)
	case fiber.StatusNotFound, fiber.StatusMethodNotAllowed:
		return apperrors.NewAppError(apperrors.CodeNotFound, e.Message, e)
	case fiber.StatusTooManyRequests:
		return apperrors.NewAppError(apperrors.CodeRateLimited, e.Message, e)
	case fiber.StatusRequestEntityTooLarge:
		return apperrors.NewAppError(apperrors.CodeBadRequest, e.Message, e)
	default:
		return apperrors.NewAppError(apperrors.CodeInternalError, "Internal server error", e)
	}
}

// RequestID returns the id set by the requestid middleware, falling back to
// the inbound header.
func RequestID(c *fiber.Ctx) string {
	if id, ok := c.Locals("requestid").(string); ok && id != "" {
		return id
	}
	return c.Get(fiber.HeaderXRequestID)
}
