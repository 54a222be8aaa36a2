package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/anamboary/anamboary/internal/admin"
)

// RegisterAdminRoutes wires the administrative view.
func RegisterAdminRoutes(r fiber.Router, h *admin.Handler, adminAuth fiber.Handler) {
	group := r.Group("/admin")
	group.Post("/login", h.Login)
	group.Get("/dashboard", adminAuth, h.Dashboard)
}
