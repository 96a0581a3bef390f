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

// DisputeServiceInterface defines the interface for dispute business logic.
type DisputeServiceInterface interface {
	PostMessage(ctx context.Context, orderID string, req *model.PostDisputeMessageRequest) (*model.DisputeMessage, error)
	Thread(ctx context.Context, orderID string) (*model.DisputeThread, error)
	Close(ctx context.Context, orderID string) error
}

// DisputeHandler handles HTTP requests for order dispute threads.
type DisputeHandler struct {
	service   DisputeServiceInterface
	validator *validator.Validate
}

// NewDisputeHandler creates a new DisputeHandler with the given service and validator.
func NewDisputeHandler(svc DisputeServiceInterface, v *validator.Validate) *DisputeHandler {
	return &DisputeHandler{service: svc, validator: v}
}

// GetThread handles GET /api/orders/:orderID/dispute.
func (h *DisputeHandler) GetThread(c *fiber.Ctx) error {
	orderID := c.Params("orderID")

	thread, err := h.service.Thread(c.Context(), orderID)
	if err != nil {
		if errors.Is(err, service.ErrOrderNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
		}
		log.Error().Err(err).Str("order_id", orderID).Msg("failed to load dispute thread")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
	}
	return c.JSON(thread)
}

// PostMessage handles POST /api/orders/:orderID/dispute/messages.
func (h *DisputeHandler) PostMessage(c *fiber.Ctx) error {
	orderID := c.Params("orderID")
	var req model.PostDisputeMessageRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if err := h.validator.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": formatValidationError(err)})
	}

	msg, err := h.service.PostMessage(c.Context(), orderID, &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrOrderNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
		case errors.Is(err, service.ErrDisputeClosed):
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
		}
		log.Error().Err(err).Str("order_id", orderID).Msg("failed to post dispute message")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
	}
	return c.Status(fiber.StatusCreated).JSON(msg)
}

// CloseDispute handles POST /api/orders/:orderID/dispute/close.
func (h *DisputeHandler) CloseDispute(c *fiber.Ctx) error {
	orderID := c.Params("orderID")

	if err := h.service.Close(c.Context(), orderID); err != nil {
		if errors.Is(err, service.ErrOrderNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
		}
		log.Error().Err(err).Str("order_id", orderID).Msg("failed to close dispute")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
	}
	return c.SendStatus(fiber.StatusNoContent)
}
