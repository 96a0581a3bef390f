package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus tracks an order through payment.
type OrderStatus string

const (
	// OrderPending is an order whose payment session was created but not
	// yet confirmed by the provider.
	OrderPending OrderStatus = "pending"
	// OrderPaid is an order confirmed by the payment provider.
	OrderPaid OrderStatus = "paid"
)

// Order is a cart snapshot frozen at checkout time, keyed by the
// provider session so the confirmation webhook can find it.
type Order struct {
	ID            string          `json:"id"`
	CartID        string          `json:"cart_id"`
	SessionID     string          `json:"session_id"`
	Status        OrderStatus     `json:"status"`
	Items         []PayloadLine   `json:"items"`
	ShippingCost  decimal.Decimal `json:"shipping_cost"`
	Carrier       CarrierCode     `json:"carrier"`
	RelayPointID  string          `json:"relay_point_id,omitempty"`
	Customer      CustomerForm    `json:"customer"`
	PromoCode     string          `json:"promo_code,omitempty"`
	Discount      decimal.Decimal `json:"discount"`
	Total         decimal.Decimal `json:"total"`
	DisputeOpen   bool            `json:"dispute_open"`
	DisputeClosed bool            `json:"dispute_closed"`
	CreatedAt     time.Time       `json:"created_at"`
}

// SenderRole identifies who wrote a dispute message.
type SenderRole string

const (
	// SenderClient is the customer side of a dispute thread.
	SenderClient SenderRole = "client"
	// SenderAdmin is the shop support side of a dispute thread.
	SenderAdmin SenderRole = "admin"
)

// DisputeMessage is one entry of an order's append-only dispute thread.
type DisputeMessage struct {
	ID        string     `json:"id"`
	OrderID   string     `json:"order_id"`
	Sender    SenderRole `json:"sender"`
	Body      string     `json:"body"`
	CreatedAt time.Time  `json:"created_at"`
}

// DisputeThread is the API response for an order's dispute.
type DisputeThread struct {
	OrderID  string           `json:"order_id"`
	Closed   bool             `json:"closed"`
	Messages []DisputeMessage `json:"messages"`
}

// PostDisputeMessageRequest is the DTO for appending a dispute message.
type PostDisputeMessageRequest struct {
	Sender SenderRole `json:"sender" validate:"required,oneof=client admin"`
	Body   string     `json:"body" validate:"required,notblank,max=4000"`
}

// ConfirmPaymentRequest is the DTO for the provider confirmation
// webhook.
type ConfirmPaymentRequest struct {
	SessionID string `json:"session_id" validate:"required,notblank,max=255"`
}
