package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/recifdiscount/storefront/internal/model"
)

// DisputeRepository provides data access for the append-only dispute
// message threads using pgx.
type DisputeRepository struct {
	pool PoolInterface
}

// NewDisputeRepository creates a new DisputeRepository with the given pool.
func NewDisputeRepository(pool *pgxpool.Pool) *DisputeRepository {
	return &DisputeRepository{pool: pool}
}

// NewDisputeRepositoryWithPool creates a DisputeRepository with a custom
// pool interface. Primarily used for testing.
func NewDisputeRepositoryWithPool(pool PoolInterface) *DisputeRepository {
	return &DisputeRepository{pool: pool}
}

// InsertMessage appends a message to an order's thread.
func (r *DisputeRepository) InsertMessage(ctx context.Context, msg *model.DisputeMessage) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO dispute_messages (id, order_id, sender, body, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		msg.ID, msg.OrderID, msg.Sender, msg.Body, msg.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert dispute message for order %s: %w", msg.OrderID, err)
	}
	return nil
}

// ListByOrder returns an order's messages oldest first.
func (r *DisputeRepository) ListByOrder(ctx context.Context, orderID string) ([]model.DisputeMessage, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, order_id, sender, body, created_at
		FROM dispute_messages WHERE order_id = $1 ORDER BY created_at, id`,
		orderID)
	if err != nil {
		return nil, fmt.Errorf("list dispute messages for order %s: %w", orderID, err)
	}
	defer rows.Close()

	messages := []model.DisputeMessage{}
	for rows.Next() {
		var m model.DisputeMessage
		if err := rows.Scan(&m.ID, &m.OrderID, &m.Sender, &m.Body, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan dispute message: %w", err)
		}
		messages = append(messages, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list dispute messages for order %s: %w", orderID, err)
	}
	return messages, nil
}
