package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/anamboary/anamboary/internal/wallet"
)

// RegisterWalletRoutes wires the money movement endpoints.
func RegisterWalletRoutes(r fiber.Router, h *wallet.Handler) {
	r.Post("/deposit", h.Deposit)
	r.Post("/withdraw", h.Withdraw)
	r.Post("/invest", h.Invest)
}
