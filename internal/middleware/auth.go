package middleware

import (
	"strings"

	"cash-ai/internal/config"
	"cash-ai/internal/utils"

	"github.com/gofiber/fiber/v2"
)

// APIAuth guards the API with HS256 bearer tokens when API_AUTH_ENABLED is
// set and is a no-op otherwise.
func APIAuth(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !cfg.APIAuthEnabled {
			return c.Next()
		}

		// Get Authorization header
		authHeader := c.Get(fiber.HeaderAuthorization)
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"ok":      false,
				"message": "Authorization header is required",
			})
		}

		// Check Bearer prefix
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"ok":      false,
				"message": "Invalid authorization header format",
			})
		}

		// Validate token
		claims, err := utils.ValidateToken(parts[1], cfg.JWTSecret)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"ok":      false,
				"message": "Invalid or expired token",
			})
		}

		c.Locals("client_id", claims.ClientID)
		return c.Next()
	}
}
