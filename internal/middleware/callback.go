package middleware

import (
	"crypto/subtle"

	"github.com/gofiber/fiber/v2"
)

// CallbackAuthMiddleware validates the provider's x-callback-token
// header against the configured shared secret. The compare is constant
// time and the check fails closed when no secret is configured, so an
// unauthenticated request never reaches the webhook handler.
func CallbackAuthMiddleware(token string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		provided := c.Get("x-callback-token")
		if token == "" || subtle.ConstantTimeCompare([]byte(provided), []byte(token)) != 1 {
			return fiber.NewError(fiber.StatusUnauthorized, "invalid callback token")
		}
		return c.Next()
	}
}
