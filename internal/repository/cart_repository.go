package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/recifdiscount/storefront/internal/model"
	"github.com/recifdiscount/storefront/pkg/database"
)

// CartRepository provides data access for carts and their line items
// using pgx. Mutating methods accept a TxQuerier so the cart service
// can group a mutation with its gift reconciliation in one transaction.
type CartRepository struct {
	pool PoolInterface
}

// NewCartRepository creates a new CartRepository with the given pool.
func NewCartRepository(pool *pgxpool.Pool) *CartRepository {
	return &CartRepository{pool: pool}
}

// NewCartRepositoryWithPool creates a CartRepository with a custom pool
// interface. Primarily used for testing.
func NewCartRepositoryWithPool(pool PoolInterface) *CartRepository {
	return &CartRepository{pool: pool}
}

// EnsureCart inserts the cart row if it does not exist yet.
func (r *CartRepository) EnsureCart(ctx context.Context, q database.TxQuerier, cartID string) error {
	_, err := q.Exec(ctx,
		`INSERT INTO carts (cart_id) VALUES ($1) ON CONFLICT (cart_id) DO NOTHING`,
		cartID)
	if err != nil {
		return fmt.Errorf("ensure cart %s: %w", cartID, err)
	}
	return nil
}

// GetCartForUpdate retrieves the cart row with a row lock (SELECT FOR
// UPDATE), serializing concurrent mutations of the same cart.
// Returns nil, nil if the cart does not exist.
func (r *CartRepository) GetCartForUpdate(ctx context.Context, tx database.TxQuerier, cartID string) (*model.Cart, error) {
	query := `SELECT cart_id, promo_code, created_at, updated_at FROM carts WHERE cart_id = $1 FOR UPDATE`

	var cart model.Cart
	err := tx.QueryRow(ctx, query, cartID).Scan(
		&cart.CartID,
		&cart.PromoCode,
		&cart.CreatedAt,
		&cart.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil // Not found - let service handle
		}
		return nil, fmt.Errorf("get cart for update %s: %w", cartID, err)
	}
	return &cart, nil
}

// GetCart retrieves the cart row without locking.
// Returns nil, nil if the cart does not exist.
func (r *CartRepository) GetCart(ctx context.Context, cartID string) (*model.Cart, error) {
	query := `SELECT cart_id, promo_code, created_at, updated_at FROM carts WHERE cart_id = $1`

	var cart model.Cart
	err := r.pool.QueryRow(ctx, query, cartID).Scan(
		&cart.CartID,
		&cart.PromoCode,
		&cart.CreatedAt,
		&cart.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get cart %s: %w", cartID, err)
	}
	return &cart, nil
}

const cartItemColumns = `id, title, image_url, unit_price, original_price, discount_percentage,
	quantity, variant, kind, won_at, expires_at, stock_limit, threshold_id`

func scanCartItem(row pgx.Row) (*model.CartItem, error) {
	var item model.CartItem
	err := row.Scan(
		&item.ID,
		&item.Title,
		&item.ImageURL,
		&item.UnitPrice,
		&item.OriginalPrice,
		&item.DiscountPercentage,
		&item.Quantity,
		&item.Variant,
		&item.Kind,
		&item.WonAt,
		&item.ExpiresAt,
		&item.StockLimit,
		&item.ThresholdID,
	)
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// ListItems returns all line items of a cart ordered by insertion.
func (r *CartRepository) ListItems(ctx context.Context, q database.TxQuerier, cartID string) ([]model.CartItem, error) {
	query := `SELECT ` + cartItemColumns + ` FROM cart_items WHERE cart_id = $1 ORDER BY added_at, id`

	rows, err := q.Query(ctx, query, cartID)
	if err != nil {
		return nil, fmt.Errorf("list items for cart %s: %w", cartID, err)
	}
	defer rows.Close()

	items := []model.CartItem{}
	for rows.Next() {
		item, err := scanCartItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan cart item: %w", err)
		}
		items = append(items, *item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list items for cart %s: %w", cartID, err)
	}
	return items, nil
}

// InsertItem inserts a new line item.
func (r *CartRepository) InsertItem(ctx context.Context, q database.TxQuerier, cartID string, item *model.CartItem) error {
	_, err := q.Exec(ctx,
		`INSERT INTO cart_items (cart_id, id, title, image_url, unit_price, original_price,
			discount_percentage, quantity, variant, kind, won_at, expires_at, stock_limit, threshold_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		cartID, item.ID, item.Title, item.ImageURL, item.UnitPrice, item.OriginalPrice,
		item.DiscountPercentage, item.Quantity, item.Variant, item.Kind,
		item.WonAt, item.ExpiresAt, item.StockLimit, item.ThresholdID)
	if err != nil {
		return fmt.Errorf("insert item %s into cart %s: %w", item.ID, cartID, err)
	}
	return nil
}

// UpdateItemQuantity sets the quantity of an existing line item.
func (r *CartRepository) UpdateItemQuantity(ctx context.Context, q database.TxQuerier, cartID, itemID string, quantity int) error {
	_, err := q.Exec(ctx,
		`UPDATE cart_items SET quantity = $3 WHERE cart_id = $1 AND id = $2`,
		cartID, itemID, quantity)
	if err != nil {
		return fmt.Errorf("update quantity of %s in cart %s: %w", itemID, cartID, err)
	}
	return nil
}

// DeleteItem removes a line item. Deleting a missing item is not an error.
func (r *CartRepository) DeleteItem(ctx context.Context, q database.TxQuerier, cartID, itemID string) error {
	_, err := q.Exec(ctx,
		`DELETE FROM cart_items WHERE cart_id = $1 AND id = $2`,
		cartID, itemID)
	if err != nil {
		return fmt.Errorf("delete item %s from cart %s: %w", itemID, cartID, err)
	}
	return nil
}

// SetPromoCode stores (or clears, when nil) the applied promotion code.
func (r *CartRepository) SetPromoCode(ctx context.Context, q database.TxQuerier, cartID string, code *string) error {
	_, err := q.Exec(ctx,
		`UPDATE carts SET promo_code = $2, updated_at = now() WHERE cart_id = $1`,
		cartID, code)
	if err != nil {
		return fmt.Errorf("set promo code on cart %s: %w", cartID, err)
	}
	return nil
}

// ClearCart deletes every line item and the applied promotion. Used on
// payment confirmation.
func (r *CartRepository) ClearCart(ctx context.Context, q database.TxQuerier, cartID string) error {
	if _, err := q.Exec(ctx, `DELETE FROM cart_items WHERE cart_id = $1`, cartID); err != nil {
		return fmt.Errorf("clear items of cart %s: %w", cartID, err)
	}
	if _, err := q.Exec(ctx,
		`UPDATE carts SET promo_code = NULL, updated_at = now() WHERE cart_id = $1`, cartID); err != nil {
		return fmt.Errorf("clear promo of cart %s: %w", cartID, err)
	}
	return nil
}

// DeleteExpiredWheelGifts purges wheel gifts whose expiry has passed,
// across all carts. Returns the number of removed rows.
func (r *CartRepository) DeleteExpiredWheelGifts(ctx context.Context, now time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM cart_items WHERE kind = $1 AND expires_at IS NOT NULL AND expires_at < $2`,
		model.KindWheelGift, now)
	if err != nil {
		return 0, fmt.Errorf("delete expired wheel gifts: %w", err)
	}
	return tag.RowsAffected(), nil
}

// ResyncWheelExpiries recomputes expires_at = won_at + delayHours for
// every un-expired wheel gift whose expiry no longer matches the
// delay. Idempotent: rows already stamped correctly are untouched, so
// the returned count reflects actual corrections.
func (r *CartRepository) ResyncWheelExpiries(ctx context.Context, delayHours int, now time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE cart_items
		SET expires_at = won_at + make_interval(hours => $1)
		WHERE kind = $2 AND won_at IS NOT NULL
		  AND (expires_at IS NULL OR expires_at >= $3)
		  AND (expires_at IS NULL OR expires_at <> won_at + make_interval(hours => $1))`,
		delayHours, model.KindWheelGift, now)
	if err != nil {
		return 0, fmt.Errorf("resync wheel expiries: %w", err)
	}
	return tag.RowsAffected(), nil
}
