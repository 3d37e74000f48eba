package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"verifyapi/internal/http/middleware"
	"verifyapi/internal/model"
	"verifyapi/internal/service"
)

// errorPayload defines the standardized error response body.
type errorPayload struct {
	RequestID string        `json:"request_id"`
	Error     errorEnvelope `json:"error"`
}

type errorEnvelope struct {
	Code     string `json:"code"`
	Message  string `json:"message"`
	Entity   string `json:"entity,omitempty"`
	EntityID string `json:"entity_id,omitempty"`
	// PendingTypes is set on PRECONDITION_FAILED so clients can say which
	// mandatory documents are still missing.
	PendingTypes []model.PendingType `json:"pending_types,omitempty"`
}

// requestIDFromCtx extracts request_id previously stored by middleware.RequestID.
func requestIDFromCtx(c *fiber.Ctx) string {
	if v := c.Locals(middleware.RequestIDLocalKey); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// writeError writes a standardized JSON error response without leaking internal errors.
func writeError(c *fiber.Ctx, status int, code, message string) error {
	return c.Status(status).JSON(errorPayload{
		RequestID: requestIDFromCtx(c),
		Error:     errorEnvelope{Code: code, Message: message},
	})
}

var kindStatus = map[service.Kind]int{
	service.KindInvalidInput:       fiber.StatusBadRequest,
	service.KindNotFound:           fiber.StatusNotFound,
	service.KindInvalidTransition:  fiber.StatusConflict,
	service.KindValidation:         fiber.StatusUnprocessableEntity,
	service.KindConflict:           fiber.StatusConflict,
	service.KindPreconditionFailed: fiber.StatusPreconditionFailed,
	service.KindForbidden:          fiber.StatusForbidden,
	service.KindUnauthenticated:    fiber.StatusUnauthorized,
}

// writeServiceError renders a typed workflow error. Anything else is handed
// back to fiber so the access log records it and ErrorHandler answers 500.
func writeServiceError(c *fiber.Ctx, err error) error {
	var se *service.Error
	if !errors.As(err, &se) {
		return err
	}
	status, ok := kindStatus[se.Kind]
	if !ok {
		return err
	}
	return c.Status(status).JSON(errorPayload{
		RequestID: requestIDFromCtx(c),
		Error: errorEnvelope{
			Code:         string(se.Kind),
			Message:      se.Message,
			Entity:       se.Entity,
			EntityID:     se.ID,
			PendingTypes: se.PendingTypes,
		},
	})
}

// ErrorHandler returns a Fiber global error handler that standardizes error responses.
func ErrorHandler() fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var se *service.Error
		if errors.As(err, &se) {
			if werr := writeServiceError(c, se); werr == nil {
				return nil
			}
		}

		status := fiber.StatusInternalServerError
		var fe *fiber.Error
		if errors.As(err, &fe) {
			status = fe.Code
		}

		switch status {
		case fiber.StatusBadRequest:
			return writeError(c, status, "BAD_REQUEST", "bad request")
		case fiber.StatusUnauthorized:
			return writeError(c, status, "UNAUTHORIZED", "authentication required")
		case fiber.StatusNotFound:
			return writeError(c, status, "NOT_FOUND", "resource not found")
		case fiber.StatusMethodNotAllowed:
			return writeError(c, status, "METHOD_NOT_ALLOWED", "method not allowed")
		case fiber.StatusRequestEntityTooLarge:
			return writeError(c, status, "PAYLOAD_TOO_LARGE", "request body too large")
		default:
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
	}
}
