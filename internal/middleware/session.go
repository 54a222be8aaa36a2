package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/anamboary/anamboary/internal/session"
)

// SessionAuth resolves the bearer token into a session and stores the subject
// in request locals. Expired or unknown tokens yield 401.
func SessionAuth(store session.Store, role string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := bearerToken(c)
		if token == "" {
			return fiber.NewError(http.StatusUnauthorized, "not authenticated")
		}

		sess, err := store.Get(c.UserContext(), token)
		if err != nil {
			if errors.Is(err, session.ErrNotFound) {
				return fiber.NewError(http.StatusUnauthorized, "not authenticated")
			}
			return fiber.NewError(http.StatusInternalServerError, "session lookup failed")
		}
		if sess.Role != role {
			return fiber.NewError(http.StatusForbidden, "forbidden")
		}

		c.Locals("session_token", token)
		if sess.Role == session.RoleUser {
			c.Locals("user_id", sess.Subject)
		}
		return c.Next()
	}
}

func bearerToken(c *fiber.Ctx) string {
	authz := c.Get(fiber.HeaderAuthorization)
	if strings.HasPrefix(strings.ToLower(authz), "bearer ") {
		return strings.TrimSpace(authz[len("Bearer "):])
	}
	return c.Get("X-Session-Token")
}
