package service

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/recifdiscount/storefront/internal/model"
	"github.com/recifdiscount/storefront/pkg/database"
)

// CartRepositoryInterface defines the interface for cart data access.
type CartRepositoryInterface interface {
	EnsureCart(ctx context.Context, q database.TxQuerier, cartID string) error
	GetCartForUpdate(ctx context.Context, tx database.TxQuerier, cartID string) (*model.Cart, error)
	GetCart(ctx context.Context, cartID string) (*model.Cart, error)
	ListItems(ctx context.Context, q database.TxQuerier, cartID string) ([]model.CartItem, error)
	InsertItem(ctx context.Context, q database.TxQuerier, cartID string, item *model.CartItem) error
	UpdateItemQuantity(ctx context.Context, q database.TxQuerier, cartID, itemID string, quantity int) error
	DeleteItem(ctx context.Context, q database.TxQuerier, cartID, itemID string) error
	SetPromoCode(ctx context.Context, q database.TxQuerier, cartID string, code *string) error
	ClearCart(ctx context.Context, q database.TxQuerier, cartID string) error
}

// ThresholdRepositoryInterface defines the interface for threshold data access.
type ThresholdRepositoryInterface interface {
	ListOrdered(ctx context.Context) ([]model.Threshold, error)
}

// WheelSettingsRepositoryInterface defines the interface for wheel settings access.
type WheelSettingsRepositoryInterface interface {
	Get(ctx context.Context) (*model.WheelSettings, error)
}

// PriceResolver is the pricing dependency of the cart and checkout
// services.
type PriceResolver interface {
	Resolve(ctx context.Context, productID, variant string) (*model.Price, error)
	ResolveAuthoritative(ctx context.Context, productID, variant string) (*model.Price, error)
}

// PromotionApplier validates a code against a subtotal and computes
// its discount.
type PromotionApplier interface {
	Apply(ctx context.Context, code string, payableSubtotal decimal.Decimal) (*model.AppliedPromotion, error)
}

// TxBeginner defines the interface for beginning transactions.
type TxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// CartService owns all cart mutation. Every operation runs inside a
// transaction holding the cart row lock: the mutation, the threshold
// gift reconciliation and the promotion re-validation commit together,
// so a failed remote write leaves the previous state intact.
type CartService struct {
	pool       TxBeginner
	q          database.TxQuerier // pool-level querier for reads outside a tx
	carts      CartRepositoryInterface
	thresholds ThresholdRepositoryInterface
	wheel      WheelSettingsRepositoryInterface
	pricing    PriceResolver
	promos     PromotionApplier
}

// NewCartService creates a CartService with the given pool and dependencies.
func NewCartService(pool *pgxpool.Pool, carts CartRepositoryInterface, thresholds ThresholdRepositoryInterface,
	wheel WheelSettingsRepositoryInterface, pricing PriceResolver, promos PromotionApplier) *CartService {
	return &CartService{
		pool:       pool,
		q:          pool,
		carts:      carts,
		thresholds: thresholds,
		wheel:      wheel,
		pricing:    pricing,
		promos:     promos,
	}
}

// NewCartServiceWithTxBeginner creates a CartService with a custom
// TxBeginner and querier. Primarily used for testing.
func NewCartServiceWithTxBeginner(pool TxBeginner, q database.TxQuerier, carts CartRepositoryInterface,
	thresholds ThresholdRepositoryInterface, wheel WheelSettingsRepositoryInterface,
	pricing PriceResolver, promos PromotionApplier) *CartService {
	return &CartService{
		pool:       pool,
		q:          q,
		carts:      carts,
		thresholds: thresholds,
		wheel:      wheel,
		pricing:    pricing,
		promos:     promos,
	}
}

// AddItem adds a payable item to the cart, merging by line id. The
// increment is capped at the product's stock limit; a capped request
// is rejected whole, never partially applied.
// Returns ErrPriceNotFound or ErrStockExceeded.
func (s *CartService) AddItem(ctx context.Context, cartID string, req *model.AddItemRequest) error {
	price, err := s.pricing.Resolve(ctx, req.ProductID, req.Variant)
	if err != nil {
		return err
	}

	return s.mutate(ctx, cartID, func(tx pgx.Tx, items []model.CartItem) error {
		lineID := model.LineID(req.ProductID, req.Variant)

		for _, item := range items {
			if item.ID != lineID {
				continue
			}
			newQuantity := item.Quantity + req.Quantity
			if price.StockLimit != nil && newQuantity > *price.StockLimit {
				return ErrStockExceeded
			}
			return s.carts.UpdateItemQuantity(ctx, tx, cartID, lineID, newQuantity)
		}

		if price.StockLimit != nil && req.Quantity > *price.StockLimit {
			return ErrStockExceeded
		}

		item := &model.CartItem{
			ID:                 lineID,
			Title:              price.Title,
			ImageURL:           price.ImageURL,
			UnitPrice:          price.Amount,
			OriginalPrice:      price.OriginalAmount,
			DiscountPercentage: price.DiscountPercentage,
			Quantity:           req.Quantity,
			Variant:            req.Variant,
			Kind:               model.KindRegular,
			StockLimit:         price.StockLimit,
		}
		return s.carts.InsertItem(ctx, tx, cartID, item)
	})
}

// UpdateQuantity changes a line's quantity; zero removes the line.
// Returns ErrItemNotFound, ErrNotModifiable or ErrStockExceeded.
func (s *CartService) UpdateQuantity(ctx context.Context, cartID, itemID string, quantity int) error {
	return s.mutate(ctx, cartID, func(tx pgx.Tx, items []model.CartItem) error {
		for _, item := range items {
			if item.ID != itemID {
				continue
			}
			if item.Kind.IsGift() {
				return ErrNotModifiable
			}
			if quantity == 0 {
				return s.carts.DeleteItem(ctx, tx, cartID, itemID)
			}
			if item.StockLimit != nil && quantity > *item.StockLimit {
				return ErrStockExceeded
			}
			return s.carts.UpdateItemQuantity(ctx, tx, cartID, itemID, quantity)
		}
		return ErrItemNotFound
	})
}

// RemoveItem removes a line unconditionally. Gift lines may be removed
// too (this is how a customer clears an expired wheel gift). If the
// removal drops the subtotal under a threshold, that threshold's gift
// goes in the same update.
func (s *CartService) RemoveItem(ctx context.Context, cartID, itemID string) error {
	return s.mutate(ctx, cartID, func(tx pgx.Tx, items []model.CartItem) error {
		return s.carts.DeleteItem(ctx, tx, cartID, itemID)
	})
}

// AddWheelGift syncs an externally-won wheel prize into the cart. The
// expiry is stamped from the current wheel settings at grant time.
// Returns ErrGiftAlreadyInCart or ErrPriceNotFound.
func (s *CartService) AddWheelGift(ctx context.Context, cartID string, req *model.AddWheelGiftRequest) error {
	price, err := s.pricing.Resolve(ctx, req.ProductID, req.Variant)
	if err != nil {
		return err
	}

	settings, err := s.wheel.Get(ctx)
	if err != nil {
		return fmt.Errorf("get wheel settings: %w", err)
	}

	return s.mutate(ctx, cartID, func(tx pgx.Tx, items []model.CartItem) error {
		giftID := WheelGiftID(req.ProductID, req.Variant)
		for _, item := range items {
			if item.ID == giftID {
				return ErrGiftAlreadyInCart
			}
		}

		wonAt := req.WonAt
		var expiresAt *time.Time
		if settings != nil {
			expiry := settings.ExpiryFor(wonAt)
			expiresAt = &expiry
		}

		item := &model.CartItem{
			ID:        giftID,
			Title:     price.Title,
			ImageURL:  price.ImageURL,
			UnitPrice: price.Amount, // display value only, never charged
			Quantity:  1,
			Variant:   req.Variant,
			Kind:      model.KindWheelGift,
			WonAt:     &wonAt,
			ExpiresAt: expiresAt,
		}
		return s.carts.InsertItem(ctx, tx, cartID, item)
	})
}

// ApplyPromotion validates and attaches a promotion code to the cart.
// The discount itself is derived, not stored; reads recompute it from
// the current subtotal.
func (s *CartService) ApplyPromotion(ctx context.Context, cartID, code string) (*model.AppliedPromotion, error) {
	var applied *model.AppliedPromotion
	err := s.mutate(ctx, cartID, func(tx pgx.Tx, items []model.CartItem) error {
		result, err := s.promos.Apply(ctx, code, PayableSubtotal(items))
		if err != nil {
			return err
		}
		applied = result
		return s.carts.SetPromoCode(ctx, tx, cartID, &result.Code)
	})
	if err != nil {
		return nil, err
	}
	return applied, nil
}

// RemovePromotion detaches any applied promotion. Removing when none
// is applied is not an error.
func (s *CartService) RemovePromotion(ctx context.Context, cartID string) error {
	return s.mutate(ctx, cartID, func(tx pgx.Tx, items []model.CartItem) error {
		return s.carts.SetPromoCode(ctx, tx, cartID, nil)
	})
}

// Get returns the cart with its derived totals. The discount is
// recomputed from the current subtotal on every read; a code that
// became invalid since it was applied is dropped from the view.
func (s *CartService) Get(ctx context.Context, cartID string) (*model.CartView, error) {
	cart, err := s.carts.GetCart(ctx, cartID)
	if err != nil {
		return nil, fmt.Errorf("get cart: %w", err)
	}

	view := &model.CartView{CartID: cartID, Items: []model.CartItem{}}
	if cart == nil {
		view.Totals = totalsFor(nil, nil, nil)
		return view, nil
	}

	items, err := s.carts.ListItems(ctx, s.q, cartID)
	if err != nil {
		return nil, fmt.Errorf("list cart items: %w", err)
	}
	view.Items = items

	thresholds, err := s.thresholds.ListOrdered(ctx)
	if err != nil {
		return nil, fmt.Errorf("list thresholds: %w", err)
	}

	var applied *model.AppliedPromotion
	if cart.PromoCode != nil {
		applied, err = s.promos.Apply(ctx, *cart.PromoCode, PayableSubtotal(items))
		if err != nil {
			if !IsPromotionError(err) {
				return nil, err
			}
			log.Info().Str("cart_id", cartID).Str("code", *cart.PromoCode).Err(err).
				Msg("applied promotion no longer valid, dropping from view")
			applied = nil
		}
	}
	view.Promotion = applied
	view.Totals = totalsFor(items, applied, thresholds)
	return view, nil
}

// Clear empties the cart. Called on successful payment confirmation.
func (s *CartService) Clear(ctx context.Context, cartID string) error {
	return s.mutate(ctx, cartID, func(tx pgx.Tx, items []model.CartItem) error {
		return s.carts.ClearCart(ctx, tx, cartID)
	})
}

// mutate runs op inside a transaction holding the cart row lock, then
// reconciles threshold gifts and the applied promotion against the
// post-mutation state before committing.
func (s *CartService) mutate(ctx context.Context, cartID string, op func(tx pgx.Tx, items []model.CartItem) error) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }() // Safe: no-op if committed

	if err := s.carts.EnsureCart(ctx, tx, cartID); err != nil {
		return err
	}
	cart, err := s.carts.GetCartForUpdate(ctx, tx, cartID)
	if err != nil {
		return err
	}

	items, err := s.carts.ListItems(ctx, tx, cartID)
	if err != nil {
		return err
	}

	if err := op(tx, items); err != nil {
		return err
	}

	if err := s.reconcile(ctx, tx, cart); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// reconcile re-reads the cart inside the transaction and brings
// threshold gifts and the applied promotion in line with the current
// payable subtotal. Reading back rather than reusing the pre-mutation
// snapshot keeps the derivation anchored to current state.
func (s *CartService) reconcile(ctx context.Context, tx pgx.Tx, cart *model.Cart) error {
	items, err := s.carts.ListItems(ctx, tx, cart.CartID)
	if err != nil {
		return err
	}

	thresholds, err := s.thresholds.ListOrdered(ctx)
	if err != nil {
		return fmt.Errorf("list thresholds: %w", err)
	}

	add, removeIDs := ReconcileThresholds(items, thresholds)
	for _, gift := range add {
		g := gift
		if err := s.carts.InsertItem(ctx, tx, cart.CartID, &g); err != nil {
			return err
		}
	}
	for _, id := range removeIDs {
		if err := s.carts.DeleteItem(ctx, tx, cart.CartID, id); err != nil {
			return err
		}
	}

	if cart.PromoCode == nil {
		return nil
	}

	// Re-validate the code against the new subtotal. A code that became
	// invalid (for example the minimum order is no longer reached after
	// removing an item) is detached rather than kept stale.
	_, err = s.promos.Apply(ctx, *cart.PromoCode, PayableSubtotal(items))
	if err != nil {
		if !IsPromotionError(err) {
			return err
		}
		log.Info().Str("cart_id", cart.CartID).Str("code", *cart.PromoCode).Err(err).
			Msg("applied promotion invalidated by cart change, removing")
		return s.carts.SetPromoCode(ctx, tx, cart.CartID, nil)
	}
	return nil
}

func totalsFor(items []model.CartItem, applied *model.AppliedPromotion, thresholds []model.Threshold) model.Totals {
	subtotal := PayableSubtotal(items)
	discount := decimal.Zero
	if applied != nil {
		discount = applied.DiscountAmount
	}
	total := subtotal.Sub(discount)
	if total.IsNegative() {
		total = decimal.Zero
	}
	return model.Totals{
		Subtotal: subtotal,
		Discount: discount,
		Total:    total,
		Progress: ThresholdProgressFor(items, thresholds),
	}
}
