package service

import "errors"

var (
	// ErrPriceNotFound is returned when no price configuration exists for a product/variant
	ErrPriceNotFound = errors.New("price not found")

	// ErrItemNotFound is returned when a cart line item does not exist
	ErrItemNotFound = errors.New("item not found in cart")

	// ErrStockExceeded is returned when a quantity change would pass the item's stock limit
	ErrStockExceeded = errors.New("requested quantity exceeds available stock")

	// ErrNotModifiable is returned when a quantity change targets a gift item
	ErrNotModifiable = errors.New("gift items cannot be modified")

	// ErrGiftAlreadyInCart is returned when a wheel gift is synced into a cart twice
	ErrGiftAlreadyInCart = errors.New("gift already in cart")

	// ErrPromoNotFound is returned when a promotion code does not exist
	ErrPromoNotFound = errors.New("promotion code not found")

	// ErrPromoInactive is returned when a promotion code exists but is disabled
	ErrPromoInactive = errors.New("promotion code is no longer active")

	// ErrPromoExpired is returned when a promotion code is past its expiry date
	ErrPromoExpired = errors.New("promotion code has expired")

	// ErrPromoExhausted is returned when a promotion code reached its usage limit
	ErrPromoExhausted = errors.New("promotion code usage limit reached")

	// ErrPromoMinimumNotMet is returned when the payable subtotal is under the code's minimum order
	ErrPromoMinimumNotMet = errors.New("order does not reach the promotion minimum")

	// ErrExpiredGiftPresent blocks checkout while an expired wheel gift is still in the cart
	ErrExpiredGiftPresent = errors.New("an expired gift is still in the cart, remove it to continue")

	// ErrNoPayableItems is returned when a cart holds only gift items
	ErrNoPayableItems = errors.New("cart has no payable items")

	// ErrPriceResolution is returned when a payable line cannot be re-priced at checkout time
	ErrPriceResolution = errors.New("could not resolve the current price")

	// ErrMissingAddress is returned when home delivery is selected without a full postal address
	ErrMissingAddress = errors.New("a full postal address is required for home delivery")

	// ErrMissingRelayPoint is returned when relay delivery is selected without a pickup point
	ErrMissingRelayPoint = errors.New("a pickup point is required for relay delivery")

	// ErrCarrierNotFound is returned when the selected carrier is not configured
	ErrCarrierNotFound = errors.New("carrier not found")

	// ErrBelowMinimumCharge is returned when the order total is under the payment provider's floor
	ErrBelowMinimumCharge = errors.New("order total is below the minimum chargeable amount")

	// ErrOrderNotFound is returned when an order cannot be found
	ErrOrderNotFound = errors.New("order not found")

	// ErrDisputeClosed is returned when a client posts to a closed dispute thread
	ErrDisputeClosed = errors.New("dispute is closed")
)

// IsPromotionError reports whether err is one of the promotion
// validation sentinels. Used by cart reads to drop a code that became
// invalid instead of failing the whole read.
func IsPromotionError(err error) bool {
	return errors.Is(err, ErrPromoNotFound) ||
		errors.Is(err, ErrPromoInactive) ||
		errors.Is(err, ErrPromoExpired) ||
		errors.Is(err, ErrPromoExhausted) ||
		errors.Is(err, ErrPromoMinimumNotMet)
}
