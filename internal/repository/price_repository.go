package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/recifdiscount/storefront/internal/model"
)

// PoolInterface defines the database operations needed by repositories.
// This allows for easier testing with mocks.
type PoolInterface interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// PriceRepository provides data access to the active price table using pgx.
type PriceRepository struct {
	pool PoolInterface
}

// NewPriceRepository creates a new PriceRepository with the given pool.
func NewPriceRepository(pool *pgxpool.Pool) *PriceRepository {
	return &PriceRepository{pool: pool}
}

// NewPriceRepositoryWithPool creates a PriceRepository with a custom pool
// interface. Primarily used for testing.
func NewPriceRepositoryWithPool(pool PoolInterface) *PriceRepository {
	return &PriceRepository{pool: pool}
}

// GetPrice retrieves the active price for a product/variant.
// Returns nil, nil if no price configuration exists (service layer maps
// this to its own not-found sentinel).
func (r *PriceRepository) GetPrice(ctx context.Context, productID, variant string) (*model.Price, error) {
	query := `SELECT product_id, variant, amount, original_amount, discount_percentage,
		payment_ref, discount_payment_ref, title, image_url, stock_limit
		FROM prices WHERE product_id = $1 AND variant = $2`

	var p model.Price
	err := r.pool.QueryRow(ctx, query, productID, variant).Scan(
		&p.ProductID,
		&p.Variant,
		&p.Amount,
		&p.OriginalAmount,
		&p.DiscountPercentage,
		&p.PaymentRef,
		&p.DiscountPaymentRef,
		&p.Title,
		&p.ImageURL,
		&p.StockLimit,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil // Not found - let service handle
		}
		return nil, fmt.Errorf("get price for %s/%s: %w", productID, variant, err)
	}
	return &p, nil
}
