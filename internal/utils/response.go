package utils

import (
	"github.com/gofiber/fiber/v2"
)

// SuccessResponse writes the standard success envelope
func SuccessResponse(c *fiber.Ctx, message string, data interface{}) error {
	return c.JSON(fiber.Map{
		"ok":      true,
		"message": message,
		"data":    data,
	})
}

// ErrorResponse writes the standard error envelope with the given status code
func ErrorResponse(c *fiber.Ctx, code int, message string, err error) error {
	body := fiber.Map{
		"ok":      false,
		"message": message,
	}
	if err != nil {
		body["error"] = err.Error()
	}
	return c.Status(code).JSON(body)
}
