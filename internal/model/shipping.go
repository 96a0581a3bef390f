package model

import "github.com/shopspring/decimal"

// CarrierCode identifies one of the two supported shipping carriers.
type CarrierCode string

const (
	// CarrierHome delivers to the customer's postal address.
	CarrierHome CarrierCode = "home"
	// CarrierRelay delivers to a pickup point chosen by the customer.
	CarrierRelay CarrierCode = "relay"
)

// Carrier is a shipping carrier's pricing configuration. Shipping is
// free once the order total before shipping reaches
// FreeShippingThreshold.
type Carrier struct {
	Code                  CarrierCode     `json:"code"`
	Label                 string          `json:"label"`
	BasePrice             decimal.Decimal `json:"base_price"`
	FreeShippingThreshold decimal.Decimal `json:"free_shipping_threshold"`
}

// RelayPoint is a pickup location returned by the carrier's lookup API.
type RelayPoint struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Address  string `json:"address"`
	PostCode string `json:"post_code"`
	City     string `json:"city"`
}
