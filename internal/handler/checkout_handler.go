package handler

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/recifdiscount/storefront/internal/model"
	"github.com/recifdiscount/storefront/internal/service"
)

// CheckoutServiceInterface defines the interface for checkout business logic.
type CheckoutServiceInterface interface {
	Checkout(ctx context.Context, cartID string, req *model.CheckoutRequest) (*model.PaymentSession, error)
	ConfirmPayment(ctx context.Context, sessionID string) error
	Carriers(ctx context.Context) ([]model.Carrier, error)
}

// CheckoutHandler handles HTTP requests for checkout operations.
type CheckoutHandler struct {
	service   CheckoutServiceInterface
	validator *validator.Validate
}

// NewCheckoutHandler creates a new CheckoutHandler with the given service and validator.
func NewCheckoutHandler(svc CheckoutServiceInterface, v *validator.Validate) *CheckoutHandler {
	return &CheckoutHandler{service: svc, validator: v}
}

// checkoutRejection maps a reconciler validation sentinel to 422. Every
// rejection keeps the cart and the form intact; the customer corrects
// and retries.
func checkoutRejection(err error) bool {
	return errors.Is(err, service.ErrExpiredGiftPresent) ||
		errors.Is(err, service.ErrNoPayableItems) ||
		errors.Is(err, service.ErrPriceResolution) ||
		errors.Is(err, service.ErrMissingAddress) ||
		errors.Is(err, service.ErrMissingRelayPoint) ||
		errors.Is(err, service.ErrCarrierNotFound) ||
		errors.Is(err, service.ErrBelowMinimumCharge) ||
		service.IsPromotionError(err)
}

// Checkout handles POST /api/carts/:cartID/checkout.
func (h *CheckoutHandler) Checkout(c *fiber.Ctx) error {
	cartID := c.Params("cartID")
	var req model.CheckoutRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if err := h.validator.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": formatValidationError(err)})
	}

	session, err := h.service.Checkout(c.Context(), cartID, &req)
	if err != nil {
		if checkoutRejection(err) {
			return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": err.Error()})
		}
		log.Error().Err(err).Str("cart_id", cartID).Msg("checkout failed")
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(session)
}

// ConfirmPayment handles POST /api/checkout/confirm, the provider's
// payment webhook.
func (h *CheckoutHandler) ConfirmPayment(c *fiber.Ctx) error {
	var req model.ConfirmPaymentRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if err := h.validator.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": formatValidationError(err)})
	}

	if err := h.service.ConfirmPayment(c.Context(), req.SessionID); err != nil {
		if errors.Is(err, service.ErrOrderNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
		}
		log.Error().Err(err).Str("session_id", req.SessionID).Msg("payment confirmation failed")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Carriers handles GET /api/shipping/carriers.
func (h *CheckoutHandler) Carriers(c *fiber.Ctx) error {
	carriers, err := h.service.Carriers(c.Context())
	if err != nil {
		log.Error().Err(err).Msg("failed to list carriers")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
	}
	return c.JSON(carriers)
}
