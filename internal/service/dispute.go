package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/recifdiscount/storefront/internal/model"
)

// DisputeRepositoryInterface defines the interface for dispute message access.
type DisputeRepositoryInterface interface {
	InsertMessage(ctx context.Context, msg *model.DisputeMessage) error
	ListByOrder(ctx context.Context, orderID string) ([]model.DisputeMessage, error)
}

// OrderDisputeInterface is the slice of order access the dispute
// service needs.
type OrderDisputeInterface interface {
	GetByID(ctx context.Context, id string) (*model.Order, error)
	SetDispute(ctx context.Context, id string, open, closed bool) error
}

// DisputeService manages the append-only support thread attached to an
// order. Once a dispute is closed the customer can no longer post;
// support can.
type DisputeService struct {
	orders   OrderDisputeInterface
	messages DisputeRepositoryInterface
}

// NewDisputeService creates a DisputeService with the given repositories.
func NewDisputeService(orders OrderDisputeInterface, messages DisputeRepositoryInterface) *DisputeService {
	return &DisputeService{orders: orders, messages: messages}
}

// PostMessage appends a message to the order's thread, opening the
// dispute on first contact.
// Returns ErrOrderNotFound, or ErrDisputeClosed for client messages on
// a closed thread.
func (s *DisputeService) PostMessage(ctx context.Context, orderID string, req *model.PostDisputeMessageRequest) (*model.DisputeMessage, error) {
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("get order: %w", err)
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	if order.DisputeClosed && req.Sender == model.SenderClient {
		return nil, ErrDisputeClosed
	}

	msg := &model.DisputeMessage{
		ID:        uuid.NewString(),
		OrderID:   orderID,
		Sender:    req.Sender,
		Body:      req.Body,
		CreatedAt: time.Now(),
	}
	if err := s.messages.InsertMessage(ctx, msg); err != nil {
		return nil, err
	}

	if !order.DisputeOpen {
		if err := s.orders.SetDispute(ctx, orderID, true, order.DisputeClosed); err != nil {
			return nil, err
		}
	}
	return msg, nil
}

// Thread returns the order's full dispute thread.
// Returns ErrOrderNotFound when the order does not exist.
func (s *DisputeService) Thread(ctx context.Context, orderID string) (*model.DisputeThread, error) {
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("get order: %w", err)
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}

	messages, err := s.messages.ListByOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	return &model.DisputeThread{
		OrderID:  orderID,
		Closed:   order.DisputeClosed,
		Messages: messages,
	}, nil
}

// Close marks the dispute closed. Closing an already-closed dispute is
// a no-op.
// Returns ErrOrderNotFound when the order does not exist.
func (s *DisputeService) Close(ctx context.Context, orderID string) error {
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return fmt.Errorf("get order: %w", err)
	}
	if order == nil {
		return ErrOrderNotFound
	}
	if order.DisputeClosed {
		return nil
	}

	if err := s.orders.SetDispute(ctx, orderID, order.DisputeOpen, true); err != nil {
		return err
	}
	log.Info().Str("order_id", orderID).Msg("dispute closed")
	return nil
}
