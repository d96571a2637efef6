package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/chatpay/walletvault/internal/wallet"
)

// RegisterWalletRoutes wires credential endpoints for the bot layer.
func RegisterWalletRoutes(r fiber.Router, h *wallet.Handler) {
	r.Post("/wallets", h.GetOrCreate)
	r.Get("/wallets/:externalId", h.Presence)
	r.Post("/wallets/:externalId/import", h.Import)
}
