package service

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"

	"github.com/recifdiscount/storefront/internal/model"
	"github.com/recifdiscount/storefront/pkg/database"
)

// mockCartRepository is a mock implementation of CartRepositoryInterface.
type mockCartRepository struct {
	ensureCartFn         func(ctx context.Context, q database.TxQuerier, cartID string) error
	getCartForUpdateFn   func(ctx context.Context, tx database.TxQuerier, cartID string) (*model.Cart, error)
	getCartFn            func(ctx context.Context, cartID string) (*model.Cart, error)
	listItemsFn          func(ctx context.Context, q database.TxQuerier, cartID string) ([]model.CartItem, error)
	insertItemFn         func(ctx context.Context, q database.TxQuerier, cartID string, item *model.CartItem) error
	updateItemQuantityFn func(ctx context.Context, q database.TxQuerier, cartID, itemID string, quantity int) error
	deleteItemFn         func(ctx context.Context, q database.TxQuerier, cartID, itemID string) error
	setPromoCodeFn       func(ctx context.Context, q database.TxQuerier, cartID string, code *string) error
	clearCartFn          func(ctx context.Context, q database.TxQuerier, cartID string) error
}

func (m *mockCartRepository) EnsureCart(ctx context.Context, q database.TxQuerier, cartID string) error {
	if m.ensureCartFn != nil {
		return m.ensureCartFn(ctx, q, cartID)
	}
	return nil
}

func (m *mockCartRepository) GetCartForUpdate(ctx context.Context, tx database.TxQuerier, cartID string) (*model.Cart, error) {
	if m.getCartForUpdateFn != nil {
		return m.getCartForUpdateFn(ctx, tx, cartID)
	}
	return &model.Cart{CartID: cartID}, nil
}

func (m *mockCartRepository) GetCart(ctx context.Context, cartID string) (*model.Cart, error) {
	if m.getCartFn != nil {
		return m.getCartFn(ctx, cartID)
	}
	return &model.Cart{CartID: cartID}, nil
}

func (m *mockCartRepository) ListItems(ctx context.Context, q database.TxQuerier, cartID string) ([]model.CartItem, error) {
	if m.listItemsFn != nil {
		return m.listItemsFn(ctx, q, cartID)
	}
	return nil, nil
}

func (m *mockCartRepository) InsertItem(ctx context.Context, q database.TxQuerier, cartID string, item *model.CartItem) error {
	if m.insertItemFn != nil {
		return m.insertItemFn(ctx, q, cartID, item)
	}
	return nil
}

func (m *mockCartRepository) UpdateItemQuantity(ctx context.Context, q database.TxQuerier, cartID, itemID string, quantity int) error {
	if m.updateItemQuantityFn != nil {
		return m.updateItemQuantityFn(ctx, q, cartID, itemID, quantity)
	}
	return nil
}

func (m *mockCartRepository) DeleteItem(ctx context.Context, q database.TxQuerier, cartID, itemID string) error {
	if m.deleteItemFn != nil {
		return m.deleteItemFn(ctx, q, cartID, itemID)
	}
	return nil
}

func (m *mockCartRepository) SetPromoCode(ctx context.Context, q database.TxQuerier, cartID string, code *string) error {
	if m.setPromoCodeFn != nil {
		return m.setPromoCodeFn(ctx, q, cartID, code)
	}
	return nil
}

func (m *mockCartRepository) ClearCart(ctx context.Context, q database.TxQuerier, cartID string) error {
	if m.clearCartFn != nil {
		return m.clearCartFn(ctx, q, cartID)
	}
	return nil
}

// mockThresholdRepository is a mock implementation of ThresholdRepositoryInterface.
type mockThresholdRepository struct {
	listOrderedFn func(ctx context.Context) ([]model.Threshold, error)
}

func (m *mockThresholdRepository) ListOrdered(ctx context.Context) ([]model.Threshold, error) {
	if m.listOrderedFn != nil {
		return m.listOrderedFn(ctx)
	}
	return nil, nil
}

// mockWheelSettingsRepository is a mock implementation of WheelSettingsRepositoryInterface.
type mockWheelSettingsRepository struct {
	getFn func(ctx context.Context) (*model.WheelSettings, error)
}

func (m *mockWheelSettingsRepository) Get(ctx context.Context) (*model.WheelSettings, error) {
	if m.getFn != nil {
		return m.getFn(ctx)
	}
	return nil, nil
}

// mockPriceResolver is a mock implementation of PriceResolver.
type mockPriceResolver struct {
	resolveFn              func(ctx context.Context, productID, variant string) (*model.Price, error)
	resolveAuthoritativeFn func(ctx context.Context, productID, variant string) (*model.Price, error)
}

func (m *mockPriceResolver) Resolve(ctx context.Context, productID, variant string) (*model.Price, error) {
	if m.resolveFn != nil {
		return m.resolveFn(ctx, productID, variant)
	}
	return nil, ErrPriceNotFound
}

func (m *mockPriceResolver) ResolveAuthoritative(ctx context.Context, productID, variant string) (*model.Price, error) {
	if m.resolveAuthoritativeFn != nil {
		return m.resolveAuthoritativeFn(ctx, productID, variant)
	}
	return nil, ErrPriceNotFound
}

// mockPromotionApplier is a mock implementation of PromotionApplier.
type mockPromotionApplier struct {
	applyFn func(ctx context.Context, code string, payableSubtotal decimal.Decimal) (*model.AppliedPromotion, error)
}

func (m *mockPromotionApplier) Apply(ctx context.Context, code string, payableSubtotal decimal.Decimal) (*model.AppliedPromotion, error) {
	if m.applyFn != nil {
		return m.applyFn(ctx, code, payableSubtotal)
	}
	return nil, ErrPromoNotFound
}

// mockPromotionRepository is a mock implementation of PromotionRepositoryInterface.
type mockPromotionRepository struct {
	getByCodeFn func(ctx context.Context, code string) (*model.Promotion, error)
}

func (m *mockPromotionRepository) GetByCode(ctx context.Context, code string) (*model.Promotion, error) {
	if m.getByCodeFn != nil {
		return m.getByCodeFn(ctx, code)
	}
	return nil, nil
}

// mockCarrierRepository is a mock implementation of CarrierRepositoryInterface.
type mockCarrierRepository struct {
	getByCodeFn func(ctx context.Context, code model.CarrierCode) (*model.Carrier, error)
	listFn      func(ctx context.Context) ([]model.Carrier, error)
}

func (m *mockCarrierRepository) GetByCode(ctx context.Context, code model.CarrierCode) (*model.Carrier, error) {
	if m.getByCodeFn != nil {
		return m.getByCodeFn(ctx, code)
	}
	return nil, nil
}

func (m *mockCarrierRepository) List(ctx context.Context) ([]model.Carrier, error) {
	if m.listFn != nil {
		return m.listFn(ctx)
	}
	return nil, nil
}

// mockOrderRepository is a mock implementation of OrderRepositoryInterface
// and OrderDisputeInterface.
type mockOrderRepository struct {
	insertFn         func(ctx context.Context, order *model.Order) error
	getByIDFn        func(ctx context.Context, id string) (*model.Order, error)
	getBySessionIDFn func(ctx context.Context, sessionID string) (*model.Order, error)
	markPaidFn       func(ctx context.Context, q database.TxQuerier, id string) (bool, error)
	setDisputeFn     func(ctx context.Context, id string, open, closed bool) error
}

func (m *mockOrderRepository) Insert(ctx context.Context, order *model.Order) error {
	if m.insertFn != nil {
		return m.insertFn(ctx, order)
	}
	return nil
}

func (m *mockOrderRepository) GetByID(ctx context.Context, id string) (*model.Order, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, nil
}

func (m *mockOrderRepository) GetBySessionID(ctx context.Context, sessionID string) (*model.Order, error) {
	if m.getBySessionIDFn != nil {
		return m.getBySessionIDFn(ctx, sessionID)
	}
	return nil, nil
}

func (m *mockOrderRepository) MarkPaid(ctx context.Context, q database.TxQuerier, id string) (bool, error) {
	if m.markPaidFn != nil {
		return m.markPaidFn(ctx, q, id)
	}
	return true, nil
}

func (m *mockOrderRepository) SetDispute(ctx context.Context, id string, open, closed bool) error {
	if m.setDisputeFn != nil {
		return m.setDisputeFn(ctx, id, open, closed)
	}
	return nil
}

// mockPromotionUsageRepository is a mock implementation of PromotionUsageRepositoryInterface.
type mockPromotionUsageRepository struct {
	incrementUsageFn func(ctx context.Context, q database.TxQuerier, code string) error
}

func (m *mockPromotionUsageRepository) IncrementUsage(ctx context.Context, q database.TxQuerier, code string) error {
	if m.incrementUsageFn != nil {
		return m.incrementUsageFn(ctx, q, code)
	}
	return nil
}

// mockPaymentClient is a mock implementation of PaymentClient.
type mockPaymentClient struct {
	createSessionFn func(ctx context.Context, payload *model.CheckoutPayload) (*model.PaymentSession, error)
}

func (m *mockPaymentClient) CreateSession(ctx context.Context, payload *model.CheckoutPayload) (*model.PaymentSession, error) {
	if m.createSessionFn != nil {
		return m.createSessionFn(ctx, payload)
	}
	return &model.PaymentSession{ID: "sess_test", RedirectURL: "https://pay.example/sess_test"}, nil
}

// mockDisputeRepository is a mock implementation of DisputeRepositoryInterface.
type mockDisputeRepository struct {
	insertMessageFn func(ctx context.Context, msg *model.DisputeMessage) error
	listByOrderFn   func(ctx context.Context, orderID string) ([]model.DisputeMessage, error)
}

func (m *mockDisputeRepository) InsertMessage(ctx context.Context, msg *model.DisputeMessage) error {
	if m.insertMessageFn != nil {
		return m.insertMessageFn(ctx, msg)
	}
	return nil
}

func (m *mockDisputeRepository) ListByOrder(ctx context.Context, orderID string) ([]model.DisputeMessage, error) {
	if m.listByOrderFn != nil {
		return m.listByOrderFn(ctx, orderID)
	}
	return nil, nil
}

// mockWheelSweepRepository is a mock implementation of WheelSweepRepositoryInterface.
type mockWheelSweepRepository struct {
	deleteExpiredWheelGiftsFn func(ctx context.Context, now time.Time) (int64, error)
	resyncWheelExpiriesFn     func(ctx context.Context, delayHours int, now time.Time) (int64, error)
}

func (m *mockWheelSweepRepository) DeleteExpiredWheelGifts(ctx context.Context, now time.Time) (int64, error) {
	if m.deleteExpiredWheelGiftsFn != nil {
		return m.deleteExpiredWheelGiftsFn(ctx, now)
	}
	return 0, nil
}

func (m *mockWheelSweepRepository) ResyncWheelExpiries(ctx context.Context, delayHours int, now time.Time) (int64, error) {
	if m.resyncWheelExpiriesFn != nil {
		return m.resyncWheelExpiriesFn(ctx, delayHours, now)
	}
	return 0, nil
}

// mockPriceRepository is a mock implementation of PriceRepositoryInterface.
type mockPriceRepository struct {
	getPriceFn func(ctx context.Context, productID, variant string) (*model.Price, error)
}

func (m *mockPriceRepository) GetPrice(ctx context.Context, productID, variant string) (*model.Price, error) {
	if m.getPriceFn != nil {
		return m.getPriceFn(ctx, productID, variant)
	}
	return nil, nil
}

// mockPriceCache is a mock implementation of PriceCache.
type mockPriceCache struct {
	getJSONFn func(ctx context.Context, key string, dest any) error
	setJSONFn func(ctx context.Context, key string, value any) error
}

func (m *mockPriceCache) GetJSON(ctx context.Context, key string, dest any) error {
	if m.getJSONFn != nil {
		return m.getJSONFn(ctx, key, dest)
	}
	return errors.New("cache miss not configured")
}

func (m *mockPriceCache) SetJSON(ctx context.Context, key string, value any) error {
	if m.setJSONFn != nil {
		return m.setJSONFn(ctx, key, value)
	}
	return nil
}

// mockTx is a mock implementation of pgx.Tx for testing transactions.
type mockTx struct {
	commitFn   func(ctx context.Context) error
	rollbackFn func(ctx context.Context) error
}

func (m *mockTx) Begin(ctx context.Context) (pgx.Tx, error) {
	return nil, errors.New("nested transactions not supported")
}

func (m *mockTx) Commit(ctx context.Context) error {
	if m.commitFn != nil {
		return m.commitFn(ctx)
	}
	return nil
}

func (m *mockTx) Rollback(ctx context.Context) error {
	if m.rollbackFn != nil {
		return m.rollbackFn(ctx)
	}
	return nil
}

func (m *mockTx) CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error) {
	return 0, nil
}

func (m *mockTx) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults {
	return nil
}

func (m *mockTx) LargeObjects() pgx.LargeObjects {
	return pgx.LargeObjects{}
}

func (m *mockTx) Prepare(ctx context.Context, name, sql string) (*pgconn.StatementDescription, error) {
	return nil, nil
}

func (m *mockTx) Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, nil
}

func (m *mockTx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, nil
}

func (m *mockTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return nil
}

func (m *mockTx) Conn() *pgx.Conn {
	return nil
}

// mockTxBeginner is a mock implementation of TxBeginner.
type mockTxBeginner struct {
	beginFn func(ctx context.Context) (pgx.Tx, error)
}

func (m *mockTxBeginner) Begin(ctx context.Context) (pgx.Tx, error) {
	if m.beginFn != nil {
		return m.beginFn(ctx)
	}
	return &mockTx{}, nil
}

func intPtr(i int) *int {
	return &i
}

func strPtr(s string) *string {
	return &s
}

func timePtr(t time.Time) *time.Time {
	return &t
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func decPtr(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}
