package service

import (
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/recifdiscount/storefront/internal/model"
)

// Gift lifecycle helpers. These are pure functions over a snapshot of
// the cart; all writes go back through the cart service.

// PayableSubtotal sums unitPrice * quantity over regular items only.
// Gift items never contribute, whatever their stored reference price.
func PayableSubtotal(items []model.CartItem) decimal.Decimal {
	subtotal := decimal.Zero
	for _, item := range items {
		subtotal = subtotal.Add(item.LineTotal())
	}
	return subtotal
}

// ThresholdGiftID is the line identifier of a threshold's gift.
// Keying on the threshold id keeps reconciliation idempotent: the same
// threshold can never grant two gifts.
func ThresholdGiftID(thresholdID int64) string {
	return "threshold:" + strconv.FormatInt(thresholdID, 10)
}

// WheelGiftID is the line identifier of a wheel prize in the cart.
func WheelGiftID(productID, variant string) string {
	return "wheel:" + model.LineID(productID, variant)
}

// ReconcileThresholds compares the payable subtotal against the
// ordered threshold list and returns the gifts to insert (thresholds
// newly met) and the line ids to remove (thresholds no longer met).
// Every met threshold keeps its gift; repeated calls on an already
// reconciled cart return nothing.
func ReconcileThresholds(items []model.CartItem, thresholds []model.Threshold) (add []model.CartItem, removeIDs []string) {
	subtotal := PayableSubtotal(items)

	present := make(map[int64]model.CartItem)
	for _, item := range items {
		if item.Kind == model.KindThresholdGift && item.ThresholdID != nil {
			present[*item.ThresholdID] = item
		}
	}

	for _, t := range thresholds {
		met := subtotal.GreaterThanOrEqual(t.Value)
		_, has := present[t.ID]

		switch {
		case met && !has:
			add = append(add, thresholdGiftItem(t))
		case !met && has:
			removeIDs = append(removeIDs, present[t.ID].ID)
		}
	}
	return add, removeIDs
}

func thresholdGiftItem(t model.Threshold) model.CartItem {
	id := t.ID
	return model.CartItem{
		ID:          ThresholdGiftID(t.ID),
		Title:       t.GiftTitle,
		ImageURL:    t.GiftImageURL,
		UnitPrice:   t.GiftValue, // display value only, never charged
		Quantity:    1,
		Variant:     t.GiftVariant,
		Kind:        model.KindThresholdGift,
		ThresholdID: &id,
	}
}

// ThresholdProgressFor reports the remaining amount to the first unmet
// threshold, or the unlock message of the highest met threshold once
// everything below it is unlocked. Returns nil when no thresholds are
// configured.
func ThresholdProgressFor(items []model.CartItem, thresholds []model.Threshold) *model.ThresholdProgress {
	if len(thresholds) == 0 {
		return nil
	}

	subtotal := PayableSubtotal(items)
	for _, t := range thresholds {
		if subtotal.LessThan(t.Value) {
			remaining := t.Value.Sub(subtotal)
			value := t.Value
			return &model.ThresholdProgress{
				Remaining:     &remaining,
				NextThreshold: &value,
			}
		}
	}

	// All thresholds met: show the highest threshold's message.
	highest := thresholds[len(thresholds)-1]
	return &model.ThresholdProgress{UnlockedMessage: highest.UnlockedMessage}
}

// ExpiredWheelGifts returns the wheel gifts already past their expiry.
// Expired-but-not-yet-swept entries must still be visible and must
// block checkout until the customer removes them.
func ExpiredWheelGifts(items []model.CartItem, now time.Time) []model.CartItem {
	var expired []model.CartItem
	for _, item := range items {
		if item.Expired(now) {
			expired = append(expired, item)
		}
	}
	return expired
}
