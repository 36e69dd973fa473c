package middleware

import (
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"cash-ai/internal/config"
	"cash-ai/internal/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newGuardedApp(cfg *config.Config) *fiber.App {
	app := fiber.New()
	app.Get("/private", APIAuth(cfg), func(c *fiber.Ctx) error {
		client, _ := c.Locals("client_id").(string)
		return c.SendString("hello " + client)
	})
	return app
}

func call(t *testing.T, app *fiber.App, auth string) (int, string) {
	t.Helper()
	req := httptest.NewRequest(fiber.MethodGet, "/private", nil)
	if auth != "" {
		req.Header.Set(fiber.HeaderAuthorization, auth)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(body)
}

func TestAPIAuthDisabled(t *testing.T) {
	app := newGuardedApp(&config.Config{APIAuthEnabled: false})
	status, body := call(t, app, "")
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "hello ", body)
}

func TestAPIAuthEnabled(t *testing.T) {
	cfg := &config.Config{APIAuthEnabled: true, JWTSecret: "s3cret"}
	app := newGuardedApp(cfg)

	status, _ := call(t, app, "")
	assert.Equal(t, fiber.StatusUnauthorized, status)

	status, _ = call(t, app, "Token abc")
	assert.Equal(t, fiber.StatusUnauthorized, status)

	wrong, err := utils.GenerateToken("acme", "other-secret", time.Hour)
	require.NoError(t, err)
	status, _ = call(t, app, "Bearer "+wrong)
	assert.Equal(t, fiber.StatusUnauthorized, status)

	expired, err := utils.GenerateToken("acme", "s3cret", -time.Minute)
	require.NoError(t, err)
	status, _ = call(t, app, "Bearer "+expired)
	assert.Equal(t, fiber.StatusUnauthorized, status)

	token, err := utils.GenerateToken("acme", "s3cret", time.Hour)
	require.NoError(t, err)
	status, body := call(t, app, "Bearer "+token)
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "hello acme", body)
}
