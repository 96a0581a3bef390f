package model

import "github.com/shopspring/decimal"

// CustomerForm carries the customer fields collected at checkout.
// Name, email and phone are always required. The address block is
// required for home delivery and the relay point for relay delivery;
// the reconciler enforces the carrier-dependent rules.
type CustomerForm struct {
	Name         string `json:"name" validate:"required,notblank,max=255"`
	Email        string `json:"email" validate:"required,email,max=255"`
	Phone        string `json:"phone" validate:"required,notblank,max=32"`
	AddressLine1 string `json:"address_line1" validate:"max=255"`
	AddressLine2 string `json:"address_line2" validate:"max=255"`
	PostCode     string `json:"post_code" validate:"max=16"`
	City         string `json:"city" validate:"max=128"`
	Country      string `json:"country" validate:"max=64"`
}

// CheckoutRequest is the DTO for POST /api/carts/:cartID/checkout.
type CheckoutRequest struct {
	Carrier      CarrierCode  `json:"carrier" validate:"required,oneof=home relay"`
	RelayPointID string       `json:"relay_point_id" validate:"max=64"`
	Customer     CustomerForm `json:"customer" validate:"required"`
}

// PayloadLine is one line submitted to the payment provider. Gifts are
// zero-priced and carry no payment reference; they ride along for
// fulfilment visibility only.
type PayloadLine struct {
	ItemID     string          `json:"item_id"`
	Title      string          `json:"title"`
	PaymentRef string          `json:"payment_ref,omitempty"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
	Quantity   int             `json:"quantity"`
	Gift       bool            `json:"gift,omitempty"`
}

// PaymentSession is the provider's answer to a session creation: an
// opaque session id and the hosted checkout redirect URL.
type PaymentSession struct {
	ID          string `json:"session_id"`
	RedirectURL string `json:"redirect_url"`
}

// CheckoutPayload is the provider-facing session request assembled by
// the reconciler after re-resolving every payable line.
type CheckoutPayload struct {
	CartID       string          `json:"cart_id"`
	Lines        []PayloadLine   `json:"lines"`
	ShippingCost decimal.Decimal `json:"shipping_cost"`
	Carrier      CarrierCode     `json:"carrier"`
	RelayPointID string          `json:"relay_point_id,omitempty"`
	Customer     CustomerForm    `json:"customer"`
	PromoCode    string          `json:"promo_code,omitempty"`
	Discount     decimal.Decimal `json:"discount"`
	OrderTotal   decimal.Decimal `json:"order_total"`
}
