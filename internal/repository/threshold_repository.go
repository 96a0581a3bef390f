package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/recifdiscount/storefront/internal/model"
)

// ThresholdRepository provides data access for gift thresholds using pgx.
type ThresholdRepository struct {
	pool PoolInterface
}

// NewThresholdRepository creates a new ThresholdRepository with the given pool.
func NewThresholdRepository(pool *pgxpool.Pool) *ThresholdRepository {
	return &ThresholdRepository{pool: pool}
}

// NewThresholdRepositoryWithPool creates a ThresholdRepository with a
// custom pool interface. Primarily used for testing.
func NewThresholdRepositoryWithPool(pool PoolInterface) *ThresholdRepository {
	return &ThresholdRepository{pool: pool}
}

// ListOrdered returns all thresholds ordered ascending by value.
func (r *ThresholdRepository) ListOrdered(ctx context.Context) ([]model.Threshold, error) {
	query := `SELECT id, value, gift_product_id, gift_variant, gift_title, gift_image_url,
		gift_value, unlocked_message
		FROM thresholds ORDER BY value ASC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list thresholds: %w", err)
	}
	defer rows.Close()

	thresholds := []model.Threshold{}
	for rows.Next() {
		var t model.Threshold
		err := rows.Scan(
			&t.ID,
			&t.Value,
			&t.GiftProductID,
			&t.GiftVariant,
			&t.GiftTitle,
			&t.GiftImageURL,
			&t.GiftValue,
			&t.UnlockedMessage,
		)
		if err != nil {
			return nil, fmt.Errorf("scan threshold: %w", err)
		}
		thresholds = append(thresholds, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list thresholds: %w", err)
	}
	return thresholds, nil
}

// WheelSettingsRepository provides data access for the wheel-of-fortune
// settings singleton row.
type WheelSettingsRepository struct {
	pool PoolInterface
}

// NewWheelSettingsRepository creates a new WheelSettingsRepository with
// the given pool.
func NewWheelSettingsRepository(pool *pgxpool.Pool) *WheelSettingsRepository {
	return &WheelSettingsRepository{pool: pool}
}

// NewWheelSettingsRepositoryWithPool creates a WheelSettingsRepository
// with a custom pool interface. Primarily used for testing.
func NewWheelSettingsRepositoryWithPool(pool PoolInterface) *WheelSettingsRepository {
	return &WheelSettingsRepository{pool: pool}
}

// Get retrieves the wheel settings. Returns nil, nil when the row was
// never configured.
func (r *WheelSettingsRepository) Get(ctx context.Context) (*model.WheelSettings, error) {
	query := `SELECT participation_delay_hours, updated_at FROM wheel_settings LIMIT 1`

	var s model.WheelSettings
	err := r.pool.QueryRow(ctx, query).Scan(&s.ParticipationDelayHours, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get wheel settings: %w", err)
	}
	return &s, nil
}
