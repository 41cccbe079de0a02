package middleware_test

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/kasira/internal/middleware"
)

func callbackApp(secret string) (*fiber.App, *bool) {
	reached := false
	app := fiber.New()
	app.Post("/payments/webhook",
		middleware.CallbackAuthMiddleware(secret),
		func(c *fiber.Ctx) error {
			reached = true
			return c.JSON(fiber.Map{"success": true})
		})
	return app, &reached
}

func TestCallbackAuthRejectsMissingToken(t *testing.T) {
	app, reached := callbackApp("topsecret")

	req := httptest.NewRequest("POST", "/payments/webhook", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	assert.False(t, *reached, "handler must not run without a valid token")
}

func TestCallbackAuthRejectsWrongToken(t *testing.T) {
	app, reached := callbackApp("topsecret")

	req := httptest.NewRequest("POST", "/payments/webhook", nil)
	req.Header.Set("x-callback-token", "topsecret-but-wrong")
	resp, err := app.Test(req)
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	assert.False(t, *reached)
}

func TestCallbackAuthFailsClosedWithoutSecret(t *testing.T) {
	app, reached := callbackApp("")

	req := httptest.NewRequest("POST", "/payments/webhook", nil)
	req.Header.Set("x-callback-token", "")
	resp, err := app.Test(req)
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	assert.False(t, *reached)
}

func TestCallbackAuthAcceptsValidToken(t *testing.T) {
	app, reached := callbackApp("topsecret")

	req := httptest.NewRequest("POST", "/payments/webhook", nil)
	req.Header.Set("x-callback-token", "topsecret")
	resp, err := app.Test(req)
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.True(t, *reached)
}
