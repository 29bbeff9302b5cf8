package middleware

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"casedocs/internal/apperr"
	"casedocs/internal/policy"
)

func TestRequestID(t *testing.T) {
	app := fiber.New()
	app.Use(RequestID())

	app.Get("/test", func(c *fiber.Ctx) error {
		rid := c.Locals(RequestIDLocalKey)
		return c.SendString(rid.(string))
	})

	t.Run("should generate new request id if not present", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/test", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, fiber.StatusOK, resp.StatusCode)

		ridHeader := resp.Header.Get(RequestIDHeader)
		assert.NotEmpty(t, ridHeader)

		buf := new(bytes.Buffer)
		buf.ReadFrom(resp.Body)
		assert.Equal(t, ridHeader, buf.String())
	})

	t.Run("should preserve existing request id", func(t *testing.T) {
		existingID := "test-id-123"
		req := httptest.NewRequest("GET", "/test", nil)
		req.Header.Set(RequestIDHeader, existingID)

		resp, _ := app.Test(req)

		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
		assert.Equal(t, existingID, resp.Header.Get(RequestIDHeader))

		buf := new(bytes.Buffer)
		buf.ReadFrom(resp.Body)
		assert.Equal(t, existingID, buf.String())
	})
}

func TestLogger(t *testing.T) {
	var buf bytes.Buffer
	app := fiber.New()

	app.Use(RequestID())
	app.Use(LoggerWithWriter(&buf, time.UTC))

	app.Get("/test", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusAccepted)
	})

	resp, _ := app.Test(httptest.NewRequest("GET", "/test", nil))
	assert.Equal(t, fiber.StatusAccepted, resp.StatusCode)

	var logData map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &logData))

	assert.NotEmpty(t, logData["request_id"])
	assert.Equal(t, "GET", logData["method"])
	assert.Equal(t, "/test", logData["path"])
	assert.Equal(t, float64(fiber.StatusAccepted), logData["status"])
	assert.NotNil(t, logData["latency"])
	assert.NotEmpty(t, logData["ts"])
	assert.Equal(t, "info", logData["level"])
}

func TestLogger_ErrorStatus(t *testing.T) {
	var buf bytes.Buffer
	app := fiber.New()
	app.Use(LoggerWithWriter(&buf, time.UTC))
	app.Get("/conflict", func(c *fiber.Ctx) error {
		return apperr.Conflict
	})
	app.Get("/boom", func(c *fiber.Ctx) error {
		return assert.AnError
	})

	app.Test(httptest.NewRequest("GET", "/conflict", nil))
	var logData map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &logData))
	assert.Equal(t, float64(fiber.StatusConflict), logData["status"])
	assert.Equal(t, "info", logData["level"])

	buf.Reset()
	app.Test(httptest.NewRequest("GET", "/boom", nil))
	require.NoError(t, json.Unmarshal(buf.Bytes(), &logData))
	assert.Equal(t, float64(fiber.StatusInternalServerError), logData["status"])
	assert.Equal(t, "error", logData["level"])
}

func newAuthApp(t *testing.T) *fiber.App {
	t.Helper()
	p, err := policy.Default()
	require.NoError(t, err)

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if ae, ok := apperr.As(err); ok {
				return c.SendStatus(ae.Status)
			}
			return c.SendStatus(fiber.StatusInternalServerError)
		},
	})
	api := app.Group(p.Resource(), Identify())
	ok := func(c *fiber.Ctx) error {
		id, _ := IdentityFrom(c)
		return c.JSON(fiber.Map{"userId": id.UserID})
	}
	api.Get("/:docId", Authorize(p), ok)
	api.Delete("/:docId", Authorize(p), ok)
	api.Post("/:docId/resubmit", Authorize(p), ok)
	return app
}

func TestIdentifyAndAuthorize(t *testing.T) {
	app := newAuthApp(t)
	const doc = "/api/docs/5a1c3b0e-3f5e-4a57-9c4e-3c1f2b8b8e11"

	tests := []struct {
		name   string
		method string
		path   string
		user   string
		roles  string
		status int
	}{
		{"missing user", "GET", doc, "", "researcher", fiber.StatusUnauthorized},
		{"bad user", "GET", doc, "abc", "researcher", fiber.StatusUnauthorized},
		{"missing roles", "GET", doc, "7", "", fiber.StatusUnauthorized},
		{"unknown role", "GET", doc, "7", "janitor", fiber.StatusUnauthorized},
		{"researcher reads", "GET", doc, "7", "researcher", fiber.StatusOK},
		{"researcher cannot delete", "DELETE", doc, "7", "researcher", fiber.StatusForbidden},
		{"coordinator deletes", "DELETE", doc, "7", "coordinator", fiber.StatusOK},
		{"legacy admin id", "DELETE", doc, "7", "10,250", fiber.StatusOK},
		{"reviewer cannot resubmit", "POST", doc + "/resubmit", "7", "reviewer", fiber.StatusForbidden},
		{"admin resubmits", "POST", doc + "/resubmit", "7", "admin", fiber.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			if tt.user != "" {
				req.Header.Set(UserIDHeader, tt.user)
			}
			if tt.roles != "" {
				req.Header.Set(UserRolesHeader, tt.roles)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.status, resp.StatusCode)
		})
	}
}

func TestAuthorize_WithoutIdentity(t *testing.T) {
	p, err := policy.Default()
	require.NoError(t, err)

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			ae, _ := apperr.As(err)
			return c.SendStatus(ae.Status)
		},
	})
	app.Get("/api/docs", Authorize(p), func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })

	resp, err := app.Test(httptest.NewRequest("GET", "/api/docs", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}
