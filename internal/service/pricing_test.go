package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/recifdiscount/storefront/internal/model"
	"github.com/recifdiscount/storefront/pkg/cache"
)

func TestPricingService_Resolve_CacheHit(t *testing.T) {
	repoCalled := false
	mockRepo := &mockPriceRepository{
		getPriceFn: func(ctx context.Context, productID, variant string) (*model.Price, error) {
			repoCalled = true
			return nil, nil
		},
	}
	mockCache := &mockPriceCache{
		getJSONFn: func(ctx context.Context, key string, dest any) error {
			assert.Equal(t, "price:pump-3000", key)
			*dest.(*model.Price) = model.Price{
				ProductID:  "pump-3000",
				Amount:     dec("29.90"),
				PaymentRef: "price_base",
				Title:      "Return Pump 3000",
			}
			return nil
		},
	}

	svc := NewPricingService(mockRepo, mockCache)
	price, err := svc.Resolve(context.Background(), "pump-3000", "")

	require.NoError(t, err)
	require.NotNil(t, price)
	assert.True(t, price.Amount.Equal(dec("29.90")))
	assert.False(t, repoCalled, "cache hit must not reach the database")
}

func TestPricingService_Resolve_CacheMissFillsCache(t *testing.T) {
	stored := &model.Price{
		ProductID:  "pump-3000",
		Amount:     dec("29.90"),
		PaymentRef: "price_base",
		Title:      "Return Pump 3000",
	}
	mockRepo := &mockPriceRepository{
		getPriceFn: func(ctx context.Context, productID, variant string) (*model.Price, error) {
			return stored, nil
		},
	}
	var setKey string
	mockCache := &mockPriceCache{
		getJSONFn: func(ctx context.Context, key string, dest any) error {
			return cache.ErrCacheMiss
		},
		setJSONFn: func(ctx context.Context, key string, value any) error {
			setKey = key
			return nil
		},
	}

	svc := NewPricingService(mockRepo, mockCache)
	price, err := svc.Resolve(context.Background(), "pump-3000", "")

	require.NoError(t, err)
	require.NotNil(t, price)
	assert.Equal(t, "price:pump-3000", setKey, "miss should write through")
}

func TestPricingService_Resolve_CacheFailureFallsThrough(t *testing.T) {
	mockRepo := &mockPriceRepository{
		getPriceFn: func(ctx context.Context, productID, variant string) (*model.Price, error) {
			return &model.Price{ProductID: "pump-3000", Amount: dec("29.90"), PaymentRef: "price_base"}, nil
		},
	}
	mockCache := &mockPriceCache{
		getJSONFn: func(ctx context.Context, key string, dest any) error {
			return errors.New("connection refused")
		},
		setJSONFn: func(ctx context.Context, key string, value any) error {
			return errors.New("connection refused")
		},
	}

	svc := NewPricingService(mockRepo, mockCache)
	price, err := svc.Resolve(context.Background(), "pump-3000", "")

	require.NoError(t, err, "cache trouble must not fail the lookup")
	require.NotNil(t, price)
}

func TestPricingService_Resolve_NilCache(t *testing.T) {
	mockRepo := &mockPriceRepository{
		getPriceFn: func(ctx context.Context, productID, variant string) (*model.Price, error) {
			return &model.Price{ProductID: "pump-3000", Amount: dec("29.90"), PaymentRef: "price_base"}, nil
		},
	}

	svc := NewPricingService(mockRepo, nil)
	price, err := svc.Resolve(context.Background(), "pump-3000", "")

	require.NoError(t, err)
	require.NotNil(t, price)
}

func TestPricingService_ResolveAuthoritative_NotFound(t *testing.T) {
	mockRepo := &mockPriceRepository{
		getPriceFn: func(ctx context.Context, productID, variant string) (*model.Price, error) {
			return nil, nil // Not found
		},
	}

	svc := NewPricingService(mockRepo, nil)
	price, err := svc.ResolveAuthoritative(context.Background(), "ghost", "")

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrPriceNotFound), "error should be ErrPriceNotFound")
	assert.Nil(t, price)
}

func TestPricingService_ResolveAuthoritative_BypassesCache(t *testing.T) {
	mockRepo := &mockPriceRepository{
		getPriceFn: func(ctx context.Context, productID, variant string) (*model.Price, error) {
			return &model.Price{ProductID: "pump-3000", Amount: dec("24.90"), PaymentRef: "price_base"}, nil
		},
	}
	mockCache := &mockPriceCache{
		getJSONFn: func(ctx context.Context, key string, dest any) error {
			t.Fatal("authoritative resolution must not consult the cache")
			return nil
		},
	}

	svc := NewPricingService(mockRepo, mockCache)
	price, err := svc.ResolveAuthoritative(context.Background(), "pump-3000", "")

	require.NoError(t, err)
	assert.True(t, price.Amount.Equal(dec("24.90")))
}

func TestPaymentRef(t *testing.T) {
	base := &model.Price{PaymentRef: "price_base"}
	assert.Equal(t, "price_base", PaymentRef(base))

	discounted := &model.Price{PaymentRef: "price_base", DiscountPaymentRef: strPtr("price_promo")}
	assert.Equal(t, "price_promo", PaymentRef(discounted))

	emptyRef := &model.Price{PaymentRef: "price_base", DiscountPaymentRef: strPtr("")}
	assert.Equal(t, "price_base", PaymentRef(emptyRef), "blank discount ref falls back to base")
}
