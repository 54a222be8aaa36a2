// Package admin exposes the read-only administrative view: the user roster
// and the recent login audit trail. Admin access is a configured credential
// pair exchanged for a role-scoped session; it never grants any mutation
// path into user wallets.
package admin

import (
	"crypto/subtle"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/anamboary/anamboary/internal/identity"
	"github.com/anamboary/anamboary/internal/session"
)

const recentLoginLimit = 50

// Handler serves admin authentication and the dashboard listing.
type Handler struct {
	username string
	password string
	ids      *identity.Service
	sessions session.Store
}

// NewHandler constructs the admin handler with the configured credential pair.
func NewHandler(username, password string, ids *identity.Service, sessions session.Store) *Handler {
	return &Handler{username: username, password: password, ids: ids, sessions: sessions}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login exchanges the configured admin credentials for an admin session.
func (h *Handler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}

	userOK := subtle.ConstantTimeCompare([]byte(req.Username), []byte(h.username)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(req.Password), []byte(h.password)) == 1
	if !userOK || !passOK {
		return fiber.NewError(http.StatusUnauthorized, "invalid credentials")
	}

	sess, err := h.sessions.Create(c.UserContext(), req.Username, session.RoleAdmin)
	if err != nil {
		return fiber.NewError(http.StatusInternalServerError, "login failed")
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"token": sess.Token})
}

// Dashboard lists every user and the most recent login events.
func (h *Handler) Dashboard(c *fiber.Ctx) error {
	users, err := h.ids.ListUsers(c.UserContext())
	if err != nil {
		return fiber.NewError(http.StatusInternalServerError, "listing users failed")
	}
	logins, err := h.ids.RecentLogins(c.UserContext(), recentLoginLimit)
	if err != nil {
		return fiber.NewError(http.StatusInternalServerError, "listing logins failed")
	}

	userRows := make([]fiber.Map, 0, len(users))
	for _, user := range users {
		userRows = append(userRows, fiber.Map{
			"id":         user.ID,
			"full_name":  user.FullName,
			"phone":      user.Phone,
			"email":      user.Email,
			"created_at": user.CreatedAt.Format(time.RFC3339),
		})
	}
	loginRows := make([]fiber.Map, 0, len(logins))
	for _, event := range logins {
		loginRows = append(loginRows, fiber.Map{
			"user_id":     event.UserID,
			"at":          event.At.Format(time.RFC3339),
			"remote_addr": event.RemoteAddr,
		})
	}

	return c.Status(http.StatusOK).JSON(fiber.Map{
		"users":  userRows,
		"logins": loginRows,
	})
}
