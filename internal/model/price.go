package model

import "github.com/shopspring/decimal"

// Price is the active price configuration for a product/variant.
// PaymentRef is the provider-side identifier for the base price;
// DiscountPaymentRef, when present, identifies the discounted price
// point and takes precedence at checkout.
type Price struct {
	ProductID          string           `json:"product_id"`
	Variant            string           `json:"variant,omitempty"`
	Amount             decimal.Decimal  `json:"amount"`
	OriginalAmount     *decimal.Decimal `json:"original_amount,omitempty"`
	DiscountPercentage *int             `json:"discount_percentage,omitempty"`
	PaymentRef         string           `json:"payment_ref"`
	DiscountPaymentRef *string          `json:"discount_payment_ref,omitempty"`
	Title              string           `json:"title"`
	ImageURL           string           `json:"image_url,omitempty"`
	StockLimit         *int             `json:"stock_limit,omitempty"`
}
