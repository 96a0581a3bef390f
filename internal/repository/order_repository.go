package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/recifdiscount/storefront/internal/model"
	"github.com/recifdiscount/storefront/pkg/database"
)

// OrderRepository provides data access for orders using pgx. The cart
// snapshot (lines and customer form) is stored as JSONB: orders are
// written once at checkout and read back whole.
type OrderRepository struct {
	pool PoolInterface
}

// NewOrderRepository creates a new OrderRepository with the given pool.
func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

// NewOrderRepositoryWithPool creates an OrderRepository with a custom
// pool interface. Primarily used for testing.
func NewOrderRepositoryWithPool(pool PoolInterface) *OrderRepository {
	return &OrderRepository{pool: pool}
}

// Insert stores a new pending order.
func (r *OrderRepository) Insert(ctx context.Context, order *model.Order) error {
	items, err := json.Marshal(order.Items)
	if err != nil {
		return fmt.Errorf("marshal order items: %w", err)
	}
	customer, err := json.Marshal(order.Customer)
	if err != nil {
		return fmt.Errorf("marshal order customer: %w", err)
	}

	_, err = r.pool.Exec(ctx,
		`INSERT INTO orders (id, cart_id, session_id, status, items, shipping_cost, carrier,
			relay_point_id, customer, promo_code, discount, total, dispute_open, dispute_closed, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`,
		order.ID, order.CartID, order.SessionID, order.Status, items, order.ShippingCost,
		order.Carrier, order.RelayPointID, customer, order.PromoCode, order.Discount,
		order.Total, order.DisputeOpen, order.DisputeClosed, order.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert order %s: %w", order.ID, err)
	}
	return nil
}

const orderColumns = `id, cart_id, session_id, status, items, shipping_cost, carrier,
	relay_point_id, customer, promo_code, discount, total, dispute_open, dispute_closed, created_at`

func scanOrder(row pgx.Row) (*model.Order, error) {
	var o model.Order
	var items, customer []byte
	err := row.Scan(
		&o.ID,
		&o.CartID,
		&o.SessionID,
		&o.Status,
		&items,
		&o.ShippingCost,
		&o.Carrier,
		&o.RelayPointID,
		&customer,
		&o.PromoCode,
		&o.Discount,
		&o.Total,
		&o.DisputeOpen,
		&o.DisputeClosed,
		&o.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(items, &o.Items); err != nil {
		return nil, fmt.Errorf("unmarshal order items: %w", err)
	}
	if err := json.Unmarshal(customer, &o.Customer); err != nil {
		return nil, fmt.Errorf("unmarshal order customer: %w", err)
	}
	return &o, nil
}

// GetByID retrieves an order. Returns nil, nil when it does not exist.
func (r *OrderRepository) GetByID(ctx context.Context, id string) (*model.Order, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id)
	order, err := scanOrder(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get order %s: %w", id, err)
	}
	return order, nil
}

// GetBySessionID retrieves the order created for a payment session.
// Returns nil, nil when no order matches.
func (r *OrderRepository) GetBySessionID(ctx context.Context, sessionID string) (*model.Order, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE session_id = $1`, sessionID)
	order, err := scanOrder(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get order by session %s: %w", sessionID, err)
	}
	return order, nil
}

// MarkPaid transitions a pending order to paid. Returns false when the
// order was no longer pending, so a concurrent confirmation of the
// same session cannot apply its side effects twice.
func (r *OrderRepository) MarkPaid(ctx context.Context, q database.TxQuerier, id string) (bool, error) {
	tag, err := q.Exec(ctx,
		`UPDATE orders SET status = $2 WHERE id = $1 AND status = $3`,
		id, model.OrderPaid, model.OrderPending)
	if err != nil {
		return false, fmt.Errorf("mark order %s paid: %w", id, err)
	}
	return tag.RowsAffected() > 0, nil
}

// SetDispute updates the dispute flags of an order.
func (r *OrderRepository) SetDispute(ctx context.Context, id string, open, closed bool) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE orders SET dispute_open = $2, dispute_closed = $3 WHERE id = $1`,
		id, open, closed)
	if err != nil {
		return fmt.Errorf("set dispute flags on order %s: %w", id, err)
	}
	return nil
}
