package handler

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/recifdiscount/storefront/internal/model"
)

// RelayLookupInterface defines the interface for pickup-point lookup.
type RelayLookupInterface interface {
	LookupRelayPoints(ctx context.Context, postCode string) ([]model.RelayPoint, error)
}

// ShippingHandler handles HTTP requests for the relay-point lookup.
type ShippingHandler struct {
	relay RelayLookupInterface
}

// NewShippingHandler creates a new ShippingHandler with the given lookup client.
func NewShippingHandler(relay RelayLookupInterface) *ShippingHandler {
	return &ShippingHandler{relay: relay}
}

// RelayPoints handles GET /api/shipping/relay-points?postcode=...
func (h *ShippingHandler) RelayPoints(c *fiber.Ctx) error {
	postCode := c.Query("postcode")
	if postCode == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request: postcode is required"})
	}

	points, err := h.relay.LookupRelayPoints(c.Context(), postCode)
	if err != nil {
		log.Error().Err(err).Str("postcode", postCode).Msg("relay point lookup failed")
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": "relay point lookup failed"})
	}
	return c.JSON(points)
}
