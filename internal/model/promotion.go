package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// PromotionType enumerates the supported promotion discount strategies.
type PromotionType string

const (
	// PromotionPercentage discounts a percentage of the payable subtotal.
	PromotionPercentage PromotionType = "percentage"
	// PromotionFixed discounts a fixed amount, capped at the subtotal.
	PromotionFixed PromotionType = "fixed"
)

// Promotion is a promotion code definition as configured by the shop.
type Promotion struct {
	Code         string           `json:"code"`
	Type         PromotionType    `json:"type"`
	Value        decimal.Decimal  `json:"value"`
	UsageLimit   *int             `json:"usage_limit,omitempty"`
	UsageCount   int              `json:"usage_count"`
	ExpiresAt    *time.Time       `json:"expires_at,omitempty"`
	MinimumOrder *decimal.Decimal `json:"minimum_order,omitempty"`
	Active       bool             `json:"active"`
	CreatedAt    time.Time        `json:"-"`
}

// AppliedPromotion is a promotion attached to a cart. DiscountAmount is
// derived from the current payable subtotal and is recomputed on every
// cart change; it never exceeds the subtotal.
type AppliedPromotion struct {
	Code           string          `json:"code"`
	Type           PromotionType   `json:"type"`
	Value          decimal.Decimal `json:"value"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
}

// ApplyPromotionRequest is the DTO for applying a promotion code.
type ApplyPromotionRequest struct {
	Code string `json:"code" validate:"required,notblank,max=64"`
}
