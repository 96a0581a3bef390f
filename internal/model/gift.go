package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Threshold configures an automatic gift granted when the payable
// subtotal reaches Value. Thresholds are kept ordered ascending by
// Value; all met thresholds keep their gifts simultaneously.
type Threshold struct {
	ID              int64           `json:"id"`
	Value           decimal.Decimal `json:"value"`
	GiftProductID   string          `json:"gift_product_id"`
	GiftVariant     string          `json:"gift_variant,omitempty"`
	GiftTitle       string          `json:"gift_title"`
	GiftImageURL    string          `json:"gift_image_url,omitempty"`
	GiftValue       decimal.Decimal `json:"gift_value"`
	UnlockedMessage string          `json:"unlocked_message,omitempty"`
}

// WheelSettings is the single wheel-of-fortune configuration row.
// ParticipationDelayHours is the TTL applied to newly won gifts and,
// retroactively, to existing un-expired gifts when the value changes.
type WheelSettings struct {
	ParticipationDelayHours int       `json:"participation_delay_hours"`
	UpdatedAt               time.Time `json:"-"`
}

// ExpiryFor returns the absolute expiration for a gift won at the given
// instant under these settings.
func (s WheelSettings) ExpiryFor(wonAt time.Time) time.Time {
	return wonAt.Add(time.Duration(s.ParticipationDelayHours) * time.Hour)
}
