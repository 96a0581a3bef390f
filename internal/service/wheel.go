package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
)

// WheelSweepRepositoryInterface is the slice of cart access the wheel
// maintenance loops need.
type WheelSweepRepositoryInterface interface {
	DeleteExpiredWheelGifts(ctx context.Context, now time.Time) (int64, error)
	ResyncWheelExpiries(ctx context.Context, delayHours int, now time.Time) (int64, error)
}

// WheelMaintenance drives the two repeating wheel-gift jobs: the
// expiry sweep purging gifts past their window, and the settings poll
// that retroactively resyncs expiries when the participation delay
// changes. Both run as scheduled tasks owned by main.
type WheelMaintenance struct {
	carts    WheelSweepRepositoryInterface
	settings WheelSettingsRepositoryInterface

	lastDelayHours int // 0 until the first successful poll
}

// NewWheelMaintenance creates a WheelMaintenance with the given repositories.
func NewWheelMaintenance(carts WheelSweepRepositoryInterface, settings WheelSettingsRepositoryInterface) *WheelMaintenance {
	return &WheelMaintenance{carts: carts, settings: settings}
}

// SweepExpired removes every wheel gift whose expiry has passed. One
// tick of the sweep task.
func (m *WheelMaintenance) SweepExpired(ctx context.Context) error {
	removed, err := m.carts.DeleteExpiredWheelGifts(ctx, time.Now())
	if err != nil {
		return fmt.Errorf("sweep expired wheel gifts: %w", err)
	}
	if removed > 0 {
		log.Info().Int64("removed", removed).Msg("expired wheel gifts purged")
	}
	return nil
}

// PollSettings watches the participation delay and, when it changes,
// recomputes expires_at = won_at + new delay for every un-expired
// wheel gift. The first poll after start resyncs too: the delay may
// have changed while the process was down, and the update only touches
// rows whose expiry no longer matches, so a clean start is a no-op.
// One tick of the poll task.
func (m *WheelMaintenance) PollSettings(ctx context.Context) error {
	settings, err := m.settings.Get(ctx)
	if err != nil {
		return fmt.Errorf("poll wheel settings: %w", err)
	}
	if settings == nil {
		return nil
	}

	delay := settings.ParticipationDelayHours
	if delay == m.lastDelayHours {
		return nil
	}

	updated, err := m.carts.ResyncWheelExpiries(ctx, delay, time.Now())
	if err != nil {
		return fmt.Errorf("resync wheel expiries: %w", err)
	}
	if updated > 0 {
		log.Info().
			Int("delay_hours", delay).
			Int64("gifts_resynced", updated).
			Msg("wheel participation delay changed, expiries resynced")
	}
	m.lastDelayHours = delay
	return nil
}
