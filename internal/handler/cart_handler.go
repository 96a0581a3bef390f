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

// CartServiceInterface defines the interface for cart business logic.
type CartServiceInterface interface {
	Get(ctx context.Context, cartID string) (*model.CartView, error)
	AddItem(ctx context.Context, cartID string, req *model.AddItemRequest) error
	UpdateQuantity(ctx context.Context, cartID, itemID string, quantity int) error
	RemoveItem(ctx context.Context, cartID, itemID string) error
	AddWheelGift(ctx context.Context, cartID string, req *model.AddWheelGiftRequest) error
	ApplyPromotion(ctx context.Context, cartID, code string) (*model.AppliedPromotion, error)
	RemovePromotion(ctx context.Context, cartID string) error
}

// CartHandler handles HTTP requests for cart operations.
type CartHandler struct {
	service   CartServiceInterface
	validator *validator.Validate
}

// NewCartHandler creates a new CartHandler with the given service and validator.
func NewCartHandler(svc CartServiceInterface, v *validator.Validate) *CartHandler {
	return &CartHandler{service: svc, validator: v}
}

// GetCart handles GET /api/carts/:cartID.
func (h *CartHandler) GetCart(c *fiber.Ctx) error {
	cartID := c.Params("cartID")
	if cartID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request: cart id is required"})
	}

	view, err := h.service.Get(c.Context(), cartID)
	if err != nil {
		log.Error().Err(err).Str("cart_id", cartID).Msg("failed to load cart")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
	}
	return c.JSON(view)
}

// AddItem handles POST /api/carts/:cartID/items.
func (h *CartHandler) AddItem(c *fiber.Ctx) error {
	cartID := c.Params("cartID")
	var req model.AddItemRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if err := h.validator.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": formatValidationError(err)})
	}

	if err := h.service.AddItem(c.Context(), cartID, &req); err != nil {
		switch {
		case errors.Is(err, service.ErrPriceNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
		case errors.Is(err, service.ErrStockExceeded):
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
		}
		log.Error().Err(err).Str("cart_id", cartID).Str("product_id", req.ProductID).Msg("failed to add item")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
	}
	return c.Status(fiber.StatusCreated).Send(nil)
}

// UpdateQuantity handles PATCH /api/carts/:cartID/items/:itemID.
func (h *CartHandler) UpdateQuantity(c *fiber.Ctx) error {
	cartID := c.Params("cartID")
	itemID := c.Params("itemID")

	var req model.UpdateQuantityRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if err := h.validator.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": formatValidationError(err)})
	}

	if err := h.service.UpdateQuantity(c.Context(), cartID, itemID, *req.Quantity); err != nil {
		switch {
		case errors.Is(err, service.ErrItemNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
		case errors.Is(err, service.ErrNotModifiable):
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
		case errors.Is(err, service.ErrStockExceeded):
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
		}
		log.Error().Err(err).Str("cart_id", cartID).Str("item_id", itemID).Msg("failed to update quantity")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// RemoveItem handles DELETE /api/carts/:cartID/items/:itemID.
func (h *CartHandler) RemoveItem(c *fiber.Ctx) error {
	cartID := c.Params("cartID")
	itemID := c.Params("itemID")

	if err := h.service.RemoveItem(c.Context(), cartID, itemID); err != nil {
		log.Error().Err(err).Str("cart_id", cartID).Str("item_id", itemID).Msg("failed to remove item")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// AddWheelGift handles POST /api/carts/:cartID/wheel-gift.
func (h *CartHandler) AddWheelGift(c *fiber.Ctx) error {
	cartID := c.Params("cartID")
	var req model.AddWheelGiftRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if err := h.validator.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": formatValidationError(err)})
	}

	if err := h.service.AddWheelGift(c.Context(), cartID, &req); err != nil {
		switch {
		case errors.Is(err, service.ErrPriceNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
		case errors.Is(err, service.ErrGiftAlreadyInCart):
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
		}
		log.Error().Err(err).Str("cart_id", cartID).Str("product_id", req.ProductID).Msg("failed to add wheel gift")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
	}
	return c.Status(fiber.StatusCreated).Send(nil)
}

// ApplyPromotion handles POST /api/carts/:cartID/promotion.
func (h *CartHandler) ApplyPromotion(c *fiber.Ctx) error {
	cartID := c.Params("cartID")
	var req model.ApplyPromotionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if err := h.validator.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": formatValidationError(err)})
	}

	applied, err := h.service.ApplyPromotion(c.Context(), cartID, req.Code)
	if err != nil {
		if service.IsPromotionError(err) {
			return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": err.Error()})
		}
		log.Error().Err(err).Str("cart_id", cartID).Str("code", req.Code).Msg("failed to apply promotion")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
	}

	log.Info().
		Str("cart_id", cartID).
		Str("code", applied.Code).
		Str("discount", applied.DiscountAmount.StringFixed(2)).
		Msg("promotion applied")
	return c.JSON(applied)
}

// RemovePromotion handles DELETE /api/carts/:cartID/promotion.
func (h *CartHandler) RemovePromotion(c *fiber.Ctx) error {
	cartID := c.Params("cartID")
	if err := h.service.RemovePromotion(c.Context(), cartID); err != nil {
		log.Error().Err(err).Str("cart_id", cartID).Msg("failed to remove promotion")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
	}
	return c.SendStatus(fiber.StatusNoContent)
}
