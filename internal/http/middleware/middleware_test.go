package middleware

import (
	"bytes"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"hisapi/internal/auth"
	"hisapi/internal/config"
	"hisapi/internal/model"
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
	core, logs := observer.New(zapcore.InfoLevel)

	app := fiber.New()
	app.Use(RequestID())
	app.Use(Logger(zap.New(core)))
	app.Get("/ok", func(c *fiber.Ctx) error { return c.SendString("ok") })
	app.Get("/missing", func(c *fiber.Ctx) error { return fiber.ErrNotFound })
	app.Get("/boom", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusInternalServerError) })

	req := httptest.NewRequest("GET", "/ok", nil)
	req.Header.Set(RequestIDHeader, "rid-1")
	_, err := app.Test(req)
	require.NoError(t, err)

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, zapcore.InfoLevel, entry.Level)
	fields := entry.ContextMap()
	assert.Equal(t, "rid-1", fields["request_id"])
	assert.Equal(t, "GET", fields["method"])
	assert.Equal(t, "/ok", fields["path"])
	assert.EqualValues(t, 200, fields["status"])
	assert.Contains(t, fields, "latency")

	_, err = app.Test(httptest.NewRequest("GET", "/missing", nil))
	require.NoError(t, err)
	_, err = app.Test(httptest.NewRequest("GET", "/boom", nil))
	require.NoError(t, err)

	require.Equal(t, 3, logs.Len())
	assert.Equal(t, zapcore.WarnLevel, logs.All()[1].Level)
	assert.EqualValues(t, 404, logs.All()[1].ContextMap()["status"])
	assert.Equal(t, zapcore.ErrorLevel, logs.All()[2].Level)
}

func TestJWTAuth(t *testing.T) {
	issuer, err := auth.NewJWTIssuer(config.JWTConfig{Secret: "s3cret", Issuer: "hisapi", TTL: time.Hour})
	require.NoError(t, err)
	token, _, err := issuer.Issue(&model.User{ID: 7, Email: "doc@example.org", RoleID: 2, RoleName: "doctor"})
	require.NoError(t, err)

	app := fiber.New()
	app.Use(JWTAuth(issuer))
	app.Get("/me", func(c *fiber.Ctx) error {
		return c.JSON(ClaimsFrom(c))
	})

	cases := []struct {
		name   string
		header string
		status int
	}{
		{"valid", "Bearer " + token, fiber.StatusOK},
		{"lowercase scheme", "bearer " + token, fiber.StatusOK},
		{"missing", "", fiber.StatusUnauthorized},
		{"wrong scheme", "Basic " + token, fiber.StatusUnauthorized},
		{"empty token", "Bearer  ", fiber.StatusUnauthorized},
		{"garbage", "Bearer not-a-jwt", fiber.StatusUnauthorized},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/me", nil)
			if tc.header != "" {
				req.Header.Set(fiber.HeaderAuthorization, tc.header)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tc.status, resp.StatusCode)
		})
	}
}

func TestClaimsFrom_Unauthenticated(t *testing.T) {
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		if ClaimsFrom(c) != nil {
			return c.SendStatus(fiber.StatusTeapot)
		}
		return c.SendStatus(fiber.StatusOK)
	})
	resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}
