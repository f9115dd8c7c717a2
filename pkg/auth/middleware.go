package auth

import (
	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
)

// APIKeyMiddleware validates the X-API-Key header against a list of
// bcrypt hashes. With no hashes configured the middleware is a no-op,
// which keeps local development friction-free.
func APIKeyMiddleware(keyHashes []string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if len(keyHashes) == 0 {
			return c.Next()
		}

		key := c.Get("X-API-Key")
		if key == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "Missing API key")
		}

		for _, hash := range keyHashes {
			if bcrypt.CompareHashAndPassword([]byte(hash), []byte(key)) == nil {
				return c.Next()
			}
		}

		return fiber.NewError(fiber.StatusUnauthorized, "Invalid API key")
	}
}
