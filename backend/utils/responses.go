package utils

import (
	"errors"
	"net/http"

	"examprep/backend/adaptive"

	"github.com/gofiber/fiber/v2"
)

// SuccessResponse is the envelope for successful responses.
type SuccessResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Meta    interface{} `json:"meta,omitempty"`
}

// ErrorResponse is the envelope for errors. Code is stable and safe to
// branch on from clients.
type ErrorResponse struct {
	Success bool        `json:"success"`
	Error   string      `json:"error"`
	Code    string      `json:"code,omitempty"`
	Message string      `json:"message,omitempty"`
	Details interface{} `json:"details,omitempty"`
}

// statusByCode maps domain error codes to HTTP statuses.
var statusByCode = map[string]int{
	adaptive.ErrInvalidConfig.Code: fiber.StatusBadRequest,
	adaptive.ErrInvalidAnswer.Code: fiber.StatusBadRequest,
	adaptive.ErrNotOwner.Code:      fiber.StatusForbidden,
	adaptive.ErrNoQuestions.Code:   fiber.StatusNotFound,
	adaptive.ErrInvalidState.Code:  fiber.StatusConflict,
	adaptive.ErrStaleQuestion.Code: fiber.StatusConflict,
}

// Success writes a successful JSON response.
func Success(c *fiber.Ctx, status int, data interface{}, meta ...interface{}) error {
	response := SuccessResponse{
		Success: true,
		Data:    data,
	}

	if len(meta) > 0 {
		response.Meta = meta[0]
	}

	return c.Status(status).JSON(response)
}

// Error writes a JSON error response.
func Error(c *fiber.Ctx, status int, err error, details ...interface{}) error {
	response := ErrorResponse{
		Success: false,
		Error:   http.StatusText(status),
		Message: err.Error(),
	}

	if len(details) > 0 {
		response.Details = details[0]
	}

	return c.Status(status).JSON(response)
}

// DomainError maps an adaptive domain error to its 4xx response, falling
// back to 500 for anything that is not a domain error.
func DomainError(c *fiber.Ctx, err error) error {
	var derr *adaptive.Error
	if errors.As(err, &derr) {
		status, ok := statusByCode[derr.Code]
		if !ok {
			status = fiber.StatusBadRequest
		}
		return c.Status(status).JSON(ErrorResponse{
			Success: false,
			Error:   http.StatusText(status),
			Code:    derr.Code,
			Message: derr.Message,
		})
	}
	return Error(c, fiber.StatusInternalServerError, err)
}

func NotFound(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusNotFound, fiber.NewError(fiber.StatusNotFound, message))
}

func BadRequest(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusBadRequest, fiber.NewError(fiber.StatusBadRequest, message))
}

func Unauthorized(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusUnauthorized, fiber.NewError(fiber.StatusUnauthorized, message))
}

func Forbidden(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusForbidden, fiber.NewError(fiber.StatusForbidden, message))
}

func InternalServerError(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusInternalServerError, fiber.NewError(fiber.StatusInternalServerError, message))
}
