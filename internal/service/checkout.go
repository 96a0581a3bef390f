package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/recifdiscount/storefront/internal/model"
	"github.com/recifdiscount/storefront/pkg/database"
)

// CarrierRepositoryInterface defines the interface for carrier configuration access.
type CarrierRepositoryInterface interface {
	GetByCode(ctx context.Context, code model.CarrierCode) (*model.Carrier, error)
	List(ctx context.Context) ([]model.Carrier, error)
}

// OrderRepositoryInterface defines the interface for order data access.
type OrderRepositoryInterface interface {
	Insert(ctx context.Context, order *model.Order) error
	GetByID(ctx context.Context, id string) (*model.Order, error)
	GetBySessionID(ctx context.Context, sessionID string) (*model.Order, error)
	MarkPaid(ctx context.Context, q database.TxQuerier, id string) (bool, error)
}

// PromotionUsageRepositoryInterface increments a code's usage count on
// payment confirmation.
type PromotionUsageRepositoryInterface interface {
	IncrementUsage(ctx context.Context, q database.TxQuerier, code string) error
}

// PaymentClient creates a hosted checkout session at the external
// payment provider.
type PaymentClient interface {
	CreateSession(ctx context.Context, payload *model.CheckoutPayload) (*model.PaymentSession, error)
}

// CheckoutService is the reconciler: at payment-session creation it
// re-derives every payable price from the authoritative store,
// validates the cart and the customer form, and assembles the
// provider-facing payload. Cart-resident prices are never trusted
// here.
type CheckoutService struct {
	pool      TxBeginner
	q         database.TxQuerier
	carts     CartRepositoryInterface
	carriers  CarrierRepositoryInterface
	orders    OrderRepositoryInterface
	promoUse  PromotionUsageRepositoryInterface
	promos    PromotionApplier
	pricing   PriceResolver
	payment   PaymentClient
	minCharge decimal.Decimal
}

// NewCheckoutService creates a CheckoutService with the given pool and
// dependencies.
func NewCheckoutService(pool *pgxpool.Pool, carts CartRepositoryInterface, carriers CarrierRepositoryInterface,
	orders OrderRepositoryInterface, promoUse PromotionUsageRepositoryInterface, promos PromotionApplier,
	pricing PriceResolver, payment PaymentClient, minCharge decimal.Decimal) *CheckoutService {
	return &CheckoutService{
		pool:      pool,
		q:         pool,
		carts:     carts,
		carriers:  carriers,
		orders:    orders,
		promoUse:  promoUse,
		promos:    promos,
		pricing:   pricing,
		payment:   payment,
		minCharge: minCharge,
	}
}

// NewCheckoutServiceWithTxBeginner creates a CheckoutService with a
// custom TxBeginner and querier. Primarily used for testing.
func NewCheckoutServiceWithTxBeginner(pool TxBeginner, q database.TxQuerier, carts CartRepositoryInterface,
	carriers CarrierRepositoryInterface, orders OrderRepositoryInterface, promoUse PromotionUsageRepositoryInterface,
	promos PromotionApplier, pricing PriceResolver, payment PaymentClient, minCharge decimal.Decimal) *CheckoutService {
	return &CheckoutService{
		pool:      pool,
		q:         q,
		carts:     carts,
		carriers:  carriers,
		orders:    orders,
		promoUse:  promoUse,
		promos:    promos,
		pricing:   pricing,
		payment:   payment,
		minCharge: minCharge,
	}
}

// Checkout validates the cart and the customer form, re-resolves every
// payable price, creates the provider session and records a pending
// order. No rejection clears the cart or the form: the customer fixes
// the issue and retries.
func (s *CheckoutService) Checkout(ctx context.Context, cartID string, req *model.CheckoutRequest) (*model.PaymentSession, error) {
	cart, err := s.carts.GetCart(ctx, cartID)
	if err != nil {
		return nil, fmt.Errorf("get cart: %w", err)
	}
	if cart == nil {
		return nil, ErrNoPayableItems
	}

	items, err := s.carts.ListItems(ctx, s.q, cartID)
	if err != nil {
		return nil, fmt.Errorf("list cart items: %w", err)
	}

	payable, gifts := partitionItems(items)

	// Expired wheel gifts block checkout outright; silently stripping
	// value the customer believed they had is worse than the friction of
	// asking them to remove the line.
	now := time.Now()
	if expired := ExpiredWheelGifts(items, now); len(expired) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrExpiredGiftPresent, expired[0].Title)
	}

	if len(payable) == 0 {
		return nil, ErrNoPayableItems
	}

	if err := validateCustomer(req); err != nil {
		return nil, err
	}

	lines, payableSubtotal, err := s.repriceLines(ctx, payable)
	if err != nil {
		return nil, err
	}

	discount := decimal.Zero
	promoCode := ""
	if cart.PromoCode != nil {
		applied, err := s.promos.Apply(ctx, *cart.PromoCode, payableSubtotal)
		if err != nil {
			// A code that went invalid since it was applied blocks checkout
			// with its own message instead of silently charging more.
			return nil, err
		}
		discount = applied.DiscountAmount
		promoCode = applied.Code
	}

	carrier, err := s.carriers.GetByCode(ctx, req.Carrier)
	if err != nil {
		return nil, fmt.Errorf("get carrier: %w", err)
	}
	if carrier == nil {
		return nil, ErrCarrierNotFound
	}

	preShipping := payableSubtotal.Sub(discount)
	if preShipping.IsNegative() {
		preShipping = decimal.Zero
	}
	shippingCost := carrier.BasePrice
	if preShipping.GreaterThanOrEqual(carrier.FreeShippingThreshold) {
		shippingCost = decimal.Zero
	}

	orderTotal := preShipping.Add(shippingCost)
	if orderTotal.LessThan(s.minCharge) {
		return nil, fmt.Errorf("%w (%s)", ErrBelowMinimumCharge, s.minCharge.StringFixed(2))
	}

	for _, gift := range gifts {
		lines = append(lines, model.PayloadLine{
			ItemID:    gift.ID,
			Title:     gift.Title,
			UnitPrice: decimal.Zero,
			Quantity:  1,
			Gift:      true,
		})
	}
	if shippingCost.IsPositive() {
		lines = append(lines, model.PayloadLine{
			ItemID:    "shipping:" + string(carrier.Code),
			Title:     carrier.Label,
			UnitPrice: shippingCost,
			Quantity:  1,
		})
	}

	payload := &model.CheckoutPayload{
		CartID:       cartID,
		Lines:        lines,
		ShippingCost: shippingCost,
		Carrier:      req.Carrier,
		RelayPointID: req.RelayPointID,
		Customer:     req.Customer,
		PromoCode:    promoCode,
		Discount:     discount,
		OrderTotal:   orderTotal,
	}

	session, err := s.payment.CreateSession(ctx, payload)
	if err != nil {
		// Provider errors are surfaced unmodified.
		return nil, err
	}

	order := &model.Order{
		ID:           uuid.NewString(),
		CartID:       cartID,
		SessionID:    session.ID,
		Status:       model.OrderPending,
		Items:        lines,
		ShippingCost: shippingCost,
		Carrier:      req.Carrier,
		RelayPointID: req.RelayPointID,
		Customer:     req.Customer,
		PromoCode:    promoCode,
		Discount:     discount,
		Total:        orderTotal,
		CreatedAt:    now,
	}
	if err := s.orders.Insert(ctx, order); err != nil {
		return nil, fmt.Errorf("record pending order: %w", err)
	}

	log.Info().
		Str("cart_id", cartID).
		Str("order_id", order.ID).
		Str("session_id", session.ID).
		Str("total", orderTotal.StringFixed(2)).
		Msg("checkout session created")

	return session, nil
}

// ConfirmPayment marks the session's order paid, bumps the promotion
// usage count and clears the cart. Confirming an already-paid session
// is a no-op, the provider may deliver the webhook more than once.
func (s *CheckoutService) ConfirmPayment(ctx context.Context, sessionID string) error {
	order, err := s.orders.GetBySessionID(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("get order by session: %w", err)
	}
	if order == nil {
		return ErrOrderNotFound
	}
	if order.Status == model.OrderPaid {
		return nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }() // Safe: no-op if committed

	// The status check above is advisory only. MarkPaid is the real
	// guard: it only fires on a still-pending row, so a concurrent
	// delivery of the same webhook cannot bump usage or clear twice.
	paid, err := s.orders.MarkPaid(ctx, tx, order.ID)
	if err != nil {
		return err
	}
	if !paid {
		return nil
	}
	if order.PromoCode != "" {
		if err := s.promoUse.IncrementUsage(ctx, tx, order.PromoCode); err != nil {
			return err
		}
	}
	if err := s.carts.ClearCart(ctx, tx, order.CartID); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit confirmation: %w", err)
	}

	log.Info().
		Str("order_id", order.ID).
		Str("cart_id", order.CartID).
		Msg("payment confirmed, cart cleared")
	return nil
}

// Carriers returns the configured carriers for the checkout UI.
func (s *CheckoutService) Carriers(ctx context.Context) ([]model.Carrier, error) {
	return s.carriers.List(ctx)
}

func partitionItems(items []model.CartItem) (payable, gifts []model.CartItem) {
	for _, item := range items {
		if item.Kind.IsGift() {
			gifts = append(gifts, item)
		} else {
			payable = append(payable, item)
		}
	}
	return payable, gifts
}

// repriceLines re-resolves every payable line against the
// authoritative price table, substituting the discounted payment
// reference when one is active. A line that cannot be re-priced blocks
// checkout, naming the item.
func (s *CheckoutService) repriceLines(ctx context.Context, payable []model.CartItem) ([]model.PayloadLine, decimal.Decimal, error) {
	lines := make([]model.PayloadLine, 0, len(payable))
	subtotal := decimal.Zero

	for _, item := range payable {
		productID, variant := splitLineID(item.ID)
		price, err := s.pricing.ResolveAuthoritative(ctx, productID, variant)
		if err != nil {
			return nil, decimal.Zero, fmt.Errorf("%w: %s", ErrPriceResolution, item.Title)
		}

		lines = append(lines, model.PayloadLine{
			ItemID:     item.ID,
			Title:      item.Title,
			PaymentRef: PaymentRef(price),
			UnitPrice:  price.Amount,
			Quantity:   item.Quantity,
		})
		subtotal = subtotal.Add(price.Amount.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return lines, subtotal, nil
}

func splitLineID(lineID string) (productID, variant string) {
	if i := strings.IndexByte(lineID, '#'); i >= 0 {
		return lineID[:i], lineID[i+1:]
	}
	return lineID, ""
}

func validateCustomer(req *model.CheckoutRequest) error {
	switch req.Carrier {
	case model.CarrierHome:
		c := req.Customer
		if strings.TrimSpace(c.AddressLine1) == "" || strings.TrimSpace(c.PostCode) == "" ||
			strings.TrimSpace(c.City) == "" || strings.TrimSpace(c.Country) == "" {
			return ErrMissingAddress
		}
	case model.CarrierRelay:
		if strings.TrimSpace(req.RelayPointID) == "" {
			return ErrMissingRelayPoint
		}
	}
	return nil
}
