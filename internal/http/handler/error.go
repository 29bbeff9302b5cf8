package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"casedocs/internal/apperr"
	"casedocs/internal/http/middleware"
)

// errorPayload defines the standardized error response body.
type errorPayload struct {
	RequestID string        `json:"request_id"`
	Error     errorEnvelope `json:"error"`
}

type errorEnvelope struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
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
//
// Parameters:
// - status: HTTP status code to return
// - code: machine-readable short error code (e.g., "INVALID_ID", "NOT_FOUND", "INTERNAL_ERROR")
// - message: human-readable safe message (no internal details)
func writeError(c *fiber.Ctx, status int, code, message string) error {
	return writePayload(c, status, errorEnvelope{Code: code, Message: message})
}

func writePayload(c *fiber.Ctx, status int, env errorEnvelope) error {
	return c.Status(status).JSON(errorPayload{
		RequestID: requestIDFromCtx(c),
		Error:     env,
	})
}

// ErrorHandler returns a Fiber global error handler that standardizes error responses.
// *apperr.Error values are rendered as they are; anything unknown is logged and
// collapses to INTERNAL_ERROR.
func ErrorHandler(log zerolog.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		if ae, ok := apperr.As(err); ok {
			if ae.Status >= fiber.StatusInternalServerError || errors.Unwrap(ae) != nil {
				log.Error().
					Str("event", "request_failed").
					Str("request_id", requestIDFromCtx(c)).
					Str("code", ae.Code).
					Err(err).
					Send()
			}
			return writePayload(c, ae.Status, errorEnvelope{Code: ae.Code, Message: ae.Message, Details: ae.Details})
		}

		status := fiber.StatusInternalServerError
		var fe *fiber.Error
		if errors.As(err, &fe) {
			status = fe.Code
		}

		switch status {
		case fiber.StatusBadRequest:
			return writeError(c, status, "BAD_REQUEST", "bad request")
		case fiber.StatusNotFound:
			return writeError(c, status, "NOT_FOUND", "resource not found")
		case fiber.StatusMethodNotAllowed:
			return writeError(c, status, "METHOD_NOT_ALLOWED", "method not allowed")
		case fiber.StatusRequestEntityTooLarge:
			return writeError(c, status, "BAD_REQUEST", "request body too large")
		default:
			log.Error().
				Str("event", "request_failed").
				Str("request_id", requestIDFromCtx(c)).
				Err(err).
				Send()
			return writeError(c, fiber.StatusInternalServerError, apperr.Internal.Code, apperr.Internal.Message)
		}
	}
}
