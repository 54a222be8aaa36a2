package identity

import (
	"errors"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/anamboary/anamboary/internal/notification"
	"github.com/anamboary/anamboary/internal/session"
)

// Handler exposes registration, login and logout endpoints.
type Handler struct {
	service  *Service
	sessions session.Store
	events   *notification.Dispatcher
}

// NewHandler constructs an identity HTTP handler. events may be nil.
func NewHandler(service *Service, sessions session.Store, events *notification.Dispatcher) *Handler {
	return &Handler{service: service, sessions: sessions, events: events}
}

type registerRequest struct {
	FullName string `json:"full_name"`
	Phone    string `json:"phone"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
}

type userResponse struct {
	ID        string `json:"id"`
	FullName  string `json:"full_name"`
	Phone     string `json:"phone"`
	Email     string `json:"email,omitempty"`
	CreatedAt string `json:"created_at"`
}

// Register creates a user with a zero-balance wallet. The new user is not
// logged in; a welcome notification is dispatched out of band.
func (h *Handler) Register(c *fiber.Ctx) error {
	var req registerRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}

	user, err := h.service.Register(c.UserContext(), RegisterInput{
		FullName: req.FullName,
		Phone:    req.Phone,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return registerError(err)
	}

	if h.events != nil {
		h.events.Enqueue(notification.Message{
			Kind:        notification.KindWelcome,
			Destination: user.Phone,
			Body:        "Welcome, " + user.FullName,
		})
	}

	return c.Status(http.StatusCreated).JSON(toUserResponse(user))
}

// Login verifies credentials and establishes a session.
func (h *Handler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}

	user, err := h.service.Authenticate(c.UserContext(), req.Identifier, req.Password, c.IP())
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			return fiber.NewError(http.StatusUnauthorized, "invalid credentials")
		}
		return fiber.NewError(http.StatusInternalServerError, "login failed")
	}

	sess, err := h.sessions.Create(c.UserContext(), user.ID, session.RoleUser)
	if err != nil {
		return fiber.NewError(http.StatusInternalServerError, "login failed")
	}

	return c.Status(http.StatusOK).JSON(fiber.Map{
		"token": sess.Token,
		"user":  toUserResponse(user),
	})
}

// Logout invalidates the presented session token.
func (h *Handler) Logout(c *fiber.Ctx) error {
	token, _ := c.Locals("session_token").(string)
	if token == "" {
		return fiber.NewError(http.StatusUnauthorized, "not authenticated")
	}
	if err := h.sessions.Delete(c.UserContext(), token); err != nil {
		return fiber.NewError(http.StatusInternalServerError, "logout failed")
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"status": "logged_out"})
}

func registerError(err error) error {
	switch {
	case errors.Is(err, ErrValidation):
		return fiber.NewError(http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrDuplicatePhone), errors.Is(err, ErrDuplicateEmail):
		return fiber.NewError(http.StatusConflict, err.Error())
	default:
		return fiber.NewError(http.StatusInternalServerError, "registration failed")
	}
}

func toUserResponse(user User) userResponse {
	return userResponse{
		ID:        user.ID,
		FullName:  user.FullName,
		Phone:     user.Phone,
		Email:     user.Email,
		CreatedAt: user.CreatedAt.Format(time.RFC3339),
	}
}
