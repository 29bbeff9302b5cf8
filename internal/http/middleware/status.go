package middleware

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"casedocs/internal/apperr"
)

// statusOf returns the status the error handler will write for err.
func statusOf(c *fiber.Ctx, err error) int {
	if err == nil {
		return c.Response().StatusCode()
	}
	if ae, ok := apperr.As(err); ok {
		return ae.Status
	}
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return fe.Code
	}
	return fiber.StatusInternalServerError
}
