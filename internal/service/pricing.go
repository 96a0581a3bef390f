package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/recifdiscount/storefront/internal/model"
	"github.com/recifdiscount/storefront/pkg/cache"
)

// PriceRepositoryInterface defines the interface for price data access.
type PriceRepositoryInterface interface {
	GetPrice(ctx context.Context, productID, variant string) (*model.Price, error)
}

// PriceCache is the read-through cache used for non-authoritative
// price lookups.
type PriceCache interface {
	GetJSON(ctx context.Context, key string, dest any) error
	SetJSON(ctx context.Context, key string, value any) error
}

// PricingService resolves the currently effective price for a
// product/variant. Cart-resident prices are a cache of this service's
// output; checkout must use ResolveAuthoritative.
type PricingService struct {
	repo  PriceRepositoryInterface
	cache PriceCache
}

// NewPricingService creates a PricingService. cache may be nil, in
// which case every lookup goes to the repository.
func NewPricingService(repo PriceRepositoryInterface, c PriceCache) *PricingService {
	return &PricingService{repo: repo, cache: c}
}

func priceCacheKey(productID, variant string) string {
	return "price:" + model.LineID(productID, variant)
}

// Resolve returns the active price, serving from the cache when
// possible. Returns ErrPriceNotFound when no configuration exists.
func (s *PricingService) Resolve(ctx context.Context, productID, variant string) (*model.Price, error) {
	if s.cache != nil {
		var cached model.Price
		err := s.cache.GetJSON(ctx, priceCacheKey(productID, variant), &cached)
		if err == nil {
			return &cached, nil
		}
		if !errors.Is(err, cache.ErrCacheMiss) {
			// Cache trouble is not fatal, fall through to the database.
			log.Warn().Err(err).Str("product_id", productID).Msg("price cache read failed")
		}
	}

	price, err := s.ResolveAuthoritative(ctx, productID, variant)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.SetJSON(ctx, priceCacheKey(productID, variant), price); err != nil {
			log.Warn().Err(err).Str("product_id", productID).Msg("price cache write failed")
		}
	}
	return price, nil
}

// ResolveAuthoritative returns the active price straight from the
// database, bypassing the cache. Checkout re-prices every payable line
// through this method.
func (s *PricingService) ResolveAuthoritative(ctx context.Context, productID, variant string) (*model.Price, error) {
	price, err := s.repo.GetPrice(ctx, productID, variant)
	if err != nil {
		return nil, fmt.Errorf("resolve price: %w", err)
	}
	if price == nil {
		return nil, ErrPriceNotFound
	}
	return price, nil
}

// PaymentRef returns the payment reference to submit for a price,
// preferring the discounted reference when one is configured.
func PaymentRef(p *model.Price) string {
	if p.DiscountPaymentRef != nil && *p.DiscountPaymentRef != "" {
		return *p.DiscountPaymentRef
	}
	return p.PaymentRef
}
