package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/recifdiscount/storefront/internal/model"
)

// CarrierRepository provides data access for shipping carrier
// configuration using pgx.
type CarrierRepository struct {
	pool PoolInterface
}

// NewCarrierRepository creates a new CarrierRepository with the given pool.
func NewCarrierRepository(pool *pgxpool.Pool) *CarrierRepository {
	return &CarrierRepository{pool: pool}
}

// NewCarrierRepositoryWithPool creates a CarrierRepository with a custom
// pool interface. Primarily used for testing.
func NewCarrierRepositoryWithPool(pool PoolInterface) *CarrierRepository {
	return &CarrierRepository{pool: pool}
}

// GetByCode retrieves a carrier's pricing configuration.
// Returns nil, nil if the carrier is not configured.
func (r *CarrierRepository) GetByCode(ctx context.Context, code model.CarrierCode) (*model.Carrier, error) {
	query := `SELECT code, label, base_price, free_shipping_threshold FROM carriers WHERE code = $1`

	var c model.Carrier
	err := r.pool.QueryRow(ctx, query, code).Scan(
		&c.Code,
		&c.Label,
		&c.BasePrice,
		&c.FreeShippingThreshold,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get carrier %s: %w", code, err)
	}
	return &c, nil
}

// List returns every configured carrier.
func (r *CarrierRepository) List(ctx context.Context) ([]model.Carrier, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT code, label, base_price, free_shipping_threshold FROM carriers ORDER BY code`)
	if err != nil {
		return nil, fmt.Errorf("list carriers: %w", err)
	}
	defer rows.Close()

	carriers := []model.Carrier{}
	for rows.Next() {
		var c model.Carrier
		if err := rows.Scan(&c.Code, &c.Label, &c.BasePrice, &c.FreeShippingThreshold); err != nil {
			return nil, fmt.Errorf("scan carrier: %w", err)
		}
		carriers = append(carriers, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list carriers: %w", err)
	}
	return carriers, nil
}
