package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/recifdiscount/storefront/internal/model"
	"github.com/recifdiscount/storefront/pkg/database"
)

// PromotionRepository provides data access for promotion codes using pgx.
type PromotionRepository struct {
	pool PoolInterface
}

// NewPromotionRepository creates a new PromotionRepository with the given pool.
func NewPromotionRepository(pool *pgxpool.Pool) *PromotionRepository {
	return &PromotionRepository{pool: pool}
}

// NewPromotionRepositoryWithPool creates a PromotionRepository with a
// custom pool interface. Primarily used for testing.
func NewPromotionRepositoryWithPool(pool PoolInterface) *PromotionRepository {
	return &PromotionRepository{pool: pool}
}

// GetByCode retrieves a promotion by its canonical (upper-cased) code.
// Returns nil, nil if the code does not exist.
func (r *PromotionRepository) GetByCode(ctx context.Context, code string) (*model.Promotion, error) {
	query := `SELECT code, type, value, usage_limit, usage_count, expires_at, minimum_order, active, created_at
		FROM promotions WHERE code = $1`

	var p model.Promotion
	err := r.pool.QueryRow(ctx, query, code).Scan(
		&p.Code,
		&p.Type,
		&p.Value,
		&p.UsageLimit,
		&p.UsageCount,
		&p.ExpiresAt,
		&p.MinimumOrder,
		&p.Active,
		&p.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil // Not found - let service handle
		}
		return nil, fmt.Errorf("get promotion by code %s: %w", code, err)
	}
	return &p, nil
}

// IncrementUsage bumps the usage count of a code. Called once per paid
// order, inside the payment-confirmation transaction.
func (r *PromotionRepository) IncrementUsage(ctx context.Context, q database.TxQuerier, code string) error {
	_, err := q.Exec(ctx,
		`UPDATE promotions SET usage_count = usage_count + 1 WHERE code = $1`,
		code)
	if err != nil {
		return fmt.Errorf("increment usage for %s: %w", code, err)
	}
	return nil
}
