package wallet

import (
	"encoding/hex"
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"
)

// Handler exposes the credential service to the bot orchestration layer over
// HTTP. Responses carry the address only; decrypted key material never leaves
// the process boundary.
type Handler struct {
	service *Service
}

// NewHandler builds a wallet HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type getOrCreateRequest struct {
	ExternalID string `json:"external_id"`
	ForceNew   bool   `json:"force_new"`
}

type importRequest struct {
	Address  string `json:"address"`
	Material string `json:"material"` // hex-encoded key material
}

type credentialResponse struct {
	ExternalID string `json:"external_id"`
	Address    string `json:"address"`
}

// GetOrCreate returns the user's wallet, provisioning one when force_new is
// set.
func (h *Handler) GetOrCreate(c *fiber.Ctx) error {
	var req getOrCreateRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	if req.ExternalID == "" {
		return fiber.NewError(http.StatusBadRequest, "external_id is required")
	}

	entry, err := h.service.GetOrCreate(c.UserContext(), req.ExternalID, Options{ForceNew: req.ForceNew})
	if err != nil {
		return mapServiceError(err)
	}
	return c.Status(http.StatusOK).JSON(credentialResponse{ExternalID: req.ExternalID, Address: entry.Address})
}

// Presence reports whether the user has a wallet.
func (h *Handler) Presence(c *fiber.Ctx) error {
	externalID := c.Params("externalId")
	has, err := h.service.HasWallet(c.UserContext(), externalID)
	if err != nil {
		return mapServiceError(err)
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"external_id": externalID, "has_wallet": has})
}

// Import replaces the user's credential with externally supplied material.
// Administrative flow: bypasses throttle and any cached state.
func (h *Handler) Import(c *fiber.Ctx) error {
	externalID := c.Params("externalId")
	var req importRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	material, err := hex.DecodeString(req.Material)
	if err != nil || len(material) == 0 {
		return fiber.NewError(http.StatusBadRequest, "material must be non-empty hex")
	}

	entry, err := h.service.GetOrCreate(c.UserContext(), externalID, Options{
		ImportMaterial: material,
		ImportAddress:  req.Address,
	})
	if err != nil {
		return mapServiceError(err)
	}
	return c.Status(http.StatusOK).JSON(credentialResponse{ExternalID: externalID, Address: entry.Address})
}

// mapServiceError buckets internal error kinds into the three user-visible
// outcomes: no wallet yet, here is your wallet, or try again shortly.
// Corrupted credentials map to 500, never to "create one".
func mapServiceError(err error) error {
	var exhausted *ExhaustedError
	switch {
	case errors.Is(err, ErrNoWallet):
		return fiber.NewError(http.StatusNotFound, "no wallet yet, create one")
	case errors.Is(err, ErrThrottled):
		return fiber.NewError(http.StatusTooManyRequests, "wallet creation in cooldown, try again shortly")
	case errors.Is(err, ErrProvisioningFailed), errors.As(err, &exhausted):
		return fiber.NewError(http.StatusServiceUnavailable, "something went wrong, try again shortly")
	case errors.Is(err, ErrCorruptedCredential):
		return fiber.NewError(http.StatusInternalServerError, "wallet unavailable, support has been notified")
	default:
		return fiber.NewError(http.StatusInternalServerError, "something went wrong, try again shortly")
	}
}
