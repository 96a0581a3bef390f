package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// ItemKind discriminates how a cart line item entered the cart and
// whether the customer pays for it.
type ItemKind string

const (
	// KindRegular is a payable item added by the customer.
	KindRegular ItemKind = "regular"
	// KindThresholdGift is granted automatically when the payable subtotal
	// crosses a configured threshold, and revoked when it no longer does.
	KindThresholdGift ItemKind = "threshold_gift"
	// KindWheelGift is won through the wheel-of-fortune game and carries
	// an expiration window.
	KindWheelGift ItemKind = "wheel_gift"
)

// IsGift reports whether the kind is granted rather than paid for.
func (k ItemKind) IsGift() bool {
	return k == KindThresholdGift || k == KindWheelGift
}

// CartItem is a single line in a cart. Gift kinds always have quantity 1
// and never contribute to the payable subtotal; their UnitPrice is kept
// only to display the value of the gift.
type CartItem struct {
	ID                 string           `json:"id"`
	Title              string           `json:"title"`
	ImageURL           string           `json:"image_url,omitempty"`
	UnitPrice          decimal.Decimal  `json:"unit_price"`
	OriginalPrice      *decimal.Decimal `json:"original_price,omitempty"`
	DiscountPercentage *int             `json:"discount_percentage,omitempty"`
	Quantity           int              `json:"quantity"`
	Variant            string           `json:"variant,omitempty"` // pipe-delimited name:value pairs
	Kind               ItemKind         `json:"kind"`
	WonAt              *time.Time       `json:"won_at,omitempty"`
	ExpiresAt          *time.Time       `json:"expires_at,omitempty"`
	StockLimit         *int             `json:"stock_limit,omitempty"`
	ThresholdID        *int64           `json:"threshold_id,omitempty"`
}

// LineTotal returns the payable amount for this line. Gifts are always
// zero regardless of their stored reference price.
func (i CartItem) LineTotal() decimal.Decimal {
	if i.Kind.IsGift() {
		return decimal.Zero
	}
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Expired reports whether a wheel gift is past its expiration at the
// given instant. Items without an expiry (including non-wheel kinds)
// never expire.
func (i CartItem) Expired(now time.Time) bool {
	if i.Kind != KindWheelGift || i.ExpiresAt == nil {
		return false
	}
	return now.After(*i.ExpiresAt)
}

// LineID builds the cart line identifier for a product and optional
// variant. The identifier is unique within a cart.
func LineID(productID, variant string) string {
	if variant == "" {
		return productID
	}
	return productID + "#" + variant
}

// Cart is the cart row itself: identity plus the applied promotion
// code. The discount amount is never stored, it is re-derived from the
// current items on every read.
type Cart struct {
	CartID    string     `json:"cart_id"`
	PromoCode *string    `json:"promo_code,omitempty"`
	CreatedAt time.Time  `json:"-"`
	UpdatedAt *time.Time `json:"-"`
}

// ThresholdProgress describes where the cart stands against the
// configured gift thresholds: how much is missing to unlock the next
// one, or the unlock message of the highest threshold already met.
type ThresholdProgress struct {
	Remaining       *decimal.Decimal `json:"remaining,omitempty"`
	NextThreshold   *decimal.Decimal `json:"next_threshold,omitempty"`
	UnlockedMessage string           `json:"unlocked_message,omitempty"`
}

// Totals are the derived amounts for a cart. Subtotal covers regular
// items only; Total never goes below zero.
type Totals struct {
	Subtotal decimal.Decimal    `json:"subtotal"`
	Discount decimal.Decimal    `json:"discount"`
	Total    decimal.Decimal    `json:"total"`
	Progress *ThresholdProgress `json:"threshold_progress,omitempty"`
}

// CartView is the API response for GET /api/carts/:cartID.
type CartView struct {
	CartID    string            `json:"cart_id"`
	Items     []CartItem        `json:"items"`
	Promotion *AppliedPromotion `json:"promotion,omitempty"`
	Totals    Totals            `json:"totals"`
}

// AddItemRequest is the DTO for adding a payable item to a cart.
type AddItemRequest struct {
	ProductID string `json:"product_id" validate:"required,notblank,max=255"`
	Variant   string `json:"variant" validate:"max=255"`
	Quantity  int    `json:"quantity" validate:"required,gte=1"`
}

// UpdateQuantityRequest is the DTO for changing a line's quantity.
// Zero removes the line.
type UpdateQuantityRequest struct {
	Quantity *int `json:"quantity" validate:"required,gte=0"`
}

// AddWheelGiftRequest is the DTO for syncing a wheel prize into a cart.
type AddWheelGiftRequest struct {
	ProductID string    `json:"product_id" validate:"required,notblank,max=255"`
	Variant   string    `json:"variant" validate:"max=255"`
	WonAt     time.Time `json:"won_at" validate:"required"`
}
