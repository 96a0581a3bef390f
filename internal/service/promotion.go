package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/recifdiscount/storefront/internal/model"
)

// PromotionRepositoryInterface defines the interface for promotion data access.
type PromotionRepositoryInterface interface {
	GetByCode(ctx context.Context, code string) (*model.Promotion, error)
}

// PromotionEngine validates promotion codes and computes their
// discount against the current payable subtotal. The engine never
// stores a discount: callers re-invoke it whenever the cart changes so
// a discount computed against a larger cart cannot survive item
// removal.
type PromotionEngine struct {
	repo PromotionRepositoryInterface
}

// NewPromotionEngine creates a PromotionEngine with the given repository.
func NewPromotionEngine(repo PromotionRepositoryInterface) *PromotionEngine {
	return &PromotionEngine{repo: repo}
}

// CanonicalCode normalizes a user-supplied promotion code. Codes are
// case-insensitive and stored upper-cased.
func CanonicalCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Apply validates code against the payable subtotal and returns the
// applied promotion with its computed discount. Validation order:
// existence/active, expiry, usage limit, minimum order; the first
// failing check determines the error, nothing is partially applied.
// Returns ErrPromoNotFound, ErrPromoInactive, ErrPromoExpired,
// ErrPromoExhausted or ErrPromoMinimumNotMet.
func (e *PromotionEngine) Apply(ctx context.Context, code string, payableSubtotal decimal.Decimal) (*model.AppliedPromotion, error) {
	canonical := CanonicalCode(code)

	promo, err := e.repo.GetByCode(ctx, canonical)
	if err != nil {
		return nil, fmt.Errorf("get promotion: %w", err)
	}
	if promo == nil {
		return nil, ErrPromoNotFound
	}
	if !promo.Active {
		return nil, ErrPromoInactive
	}
	if promo.ExpiresAt != nil && time.Now().After(*promo.ExpiresAt) {
		return nil, ErrPromoExpired
	}
	if promo.UsageLimit != nil && promo.UsageCount >= *promo.UsageLimit {
		return nil, ErrPromoExhausted
	}
	if promo.MinimumOrder != nil && payableSubtotal.LessThan(*promo.MinimumOrder) {
		return nil, fmt.Errorf("%w: minimum is %s", ErrPromoMinimumNotMet, promo.MinimumOrder.StringFixed(2))
	}

	return &model.AppliedPromotion{
		Code:           promo.Code,
		Type:           promo.Type,
		Value:          promo.Value,
		DiscountAmount: DiscountFor(promo.Type, promo.Value, payableSubtotal),
	}, nil
}

// DiscountFor computes the discount a promotion yields against a
// payable subtotal. Percentage discounts are rounded to 2 decimals;
// fixed discounts are capped at the subtotal. The result is always in
// [0, subtotal].
func DiscountFor(promoType model.PromotionType, value, subtotal decimal.Decimal) decimal.Decimal {
	if subtotal.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}

	var discount decimal.Decimal
	switch promoType {
	case model.PromotionPercentage:
		discount = subtotal.Mul(value).Div(decimal.NewFromInt(100)).Round(2)
	case model.PromotionFixed:
		discount = value
	default:
		return decimal.Zero
	}

	if discount.IsNegative() {
		return decimal.Zero
	}
	if discount.GreaterThan(subtotal) {
		return subtotal
	}
	return discount
}
