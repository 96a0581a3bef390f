package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/recifdiscount/storefront/internal/model"
	"github.com/recifdiscount/storefront/internal/service"
	appvalidator "github.com/recifdiscount/storefront/internal/validator"
)

// mockCheckoutService is a mock implementation of CheckoutServiceInterface.
type mockCheckoutService struct {
	checkoutFn       func(ctx context.Context, cartID string, req *model.CheckoutRequest) (*model.PaymentSession, error)
	confirmPaymentFn func(ctx context.Context, sessionID string) error
	carriersFn       func(ctx context.Context) ([]model.Carrier, error)
}

func (m *mockCheckoutService) Checkout(ctx context.Context, cartID string, req *model.CheckoutRequest) (*model.PaymentSession, error) {
	if m.checkoutFn != nil {
		return m.checkoutFn(ctx, cartID, req)
	}
	return &model.PaymentSession{ID: "sess_test", RedirectURL: "https://pay.example/sess_test"}, nil
}

func (m *mockCheckoutService) ConfirmPayment(ctx context.Context, sessionID string) error {
	if m.confirmPaymentFn != nil {
		return m.confirmPaymentFn(ctx, sessionID)
	}
	return nil
}

func (m *mockCheckoutService) Carriers(ctx context.Context) ([]model.Carrier, error) {
	if m.carriersFn != nil {
		return m.carriersFn(ctx)
	}
	return nil, nil
}

func setupCheckoutApp(mockSvc *mockCheckoutService) *fiber.App {
	app := fiber.New()
	h := NewCheckoutHandler(mockSvc, appvalidator.New())
	app.Post("/api/carts/:cartID/checkout", h.Checkout)
	app.Post("/api/checkout/confirm", h.ConfirmPayment)
	app.Get("/api/shipping/carriers", h.Carriers)
	return app
}

func checkoutBody() string {
	return `{
		"carrier": "home",
		"customer": {
			"name": "Marine Dupont",
			"email": "marine@example.com",
			"phone": "+33612345678",
			"address_line1": "4 rue des Coraux",
			"post_code": "34000",
			"city": "Montpellier",
			"country": "FR"
		}
	}`
}

func TestCheckout_Success(t *testing.T) {
	app := setupCheckoutApp(&mockCheckoutService{})

	req := httptest.NewRequest(http.MethodPost, "/api/carts/cart_001/checkout", bytes.NewBufferString(checkoutBody()))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var session model.PaymentSession
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&session))
	assert.Equal(t, "sess_test", session.ID)
	assert.Equal(t, "https://pay.example/sess_test", session.RedirectURL)
}

func TestCheckout_InvalidCarrier(t *testing.T) {
	app := setupCheckoutApp(&mockCheckoutService{})

	body := `{"carrier": "pigeon", "customer": {"name": "M", "email": "m@example.com", "phone": "+33612345678"}}`
	req := httptest.NewRequest(http.MethodPost, "/api/carts/cart_001/checkout", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	var result map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	assert.Equal(t, "invalid request: carrier must be one of home relay", result["error"])
}

func TestCheckout_MissingEmail(t *testing.T) {
	app := setupCheckoutApp(&mockCheckoutService{})

	body := `{"carrier": "home", "customer": {"name": "Marine", "phone": "+33612345678"}}`
	req := httptest.NewRequest(http.MethodPost, "/api/carts/cart_001/checkout", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestCheckout_ReconcilerRejections(t *testing.T) {
	rejections := []error{
		service.ErrExpiredGiftPresent,
		service.ErrNoPayableItems,
		service.ErrPriceResolution,
		service.ErrMissingAddress,
		service.ErrMissingRelayPoint,
		service.ErrCarrierNotFound,
		service.ErrBelowMinimumCharge,
		service.ErrPromoExpired,
	}

	for _, rejection := range rejections {
		t.Run(rejection.Error(), func(t *testing.T) {
			mockSvc := &mockCheckoutService{
				checkoutFn: func(ctx context.Context, cartID string, req *model.CheckoutRequest) (*model.PaymentSession, error) {
					return nil, rejection
				},
			}
			app := setupCheckoutApp(mockSvc)

			req := httptest.NewRequest(http.MethodPost, "/api/carts/cart_001/checkout", bytes.NewBufferString(checkoutBody()))
			req.Header.Set("Content-Type", "application/json")

			resp, err := app.Test(req)
			require.NoError(t, err)

			assert.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)

			var result map[string]string
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
			assert.Equal(t, rejection.Error(), result["error"], "the customer sees the precise reason")
		})
	}
}

func TestCheckout_ProviderFailure(t *testing.T) {
	mockSvc := &mockCheckoutService{
		checkoutFn: func(ctx context.Context, cartID string, req *model.CheckoutRequest) (*model.PaymentSession, error) {
			return nil, errors.New("payment provider: temporarily unavailable")
		},
	}
	app := setupCheckoutApp(mockSvc)

	req := httptest.NewRequest(http.MethodPost, "/api/carts/cart_001/checkout", bytes.NewBufferString(checkoutBody()))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusBadGateway, resp.StatusCode)
}

func TestConfirmPayment_Success(t *testing.T) {
	var confirmedSession string
	mockSvc := &mockCheckoutService{
		confirmPaymentFn: func(ctx context.Context, sessionID string) error {
			confirmedSession = sessionID
			return nil
		},
	}
	app := setupCheckoutApp(mockSvc)

	body := `{"session_id": "sess_test"}`
	req := httptest.NewRequest(http.MethodPost, "/api/checkout/confirm", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)
	assert.Equal(t, "sess_test", confirmedSession)
}

func TestConfirmPayment_MissingSessionID(t *testing.T) {
	app := setupCheckoutApp(&mockCheckoutService{})

	body := `{}`
	req := httptest.NewRequest(http.MethodPost, "/api/checkout/confirm", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestConfirmPayment_UnknownSession(t *testing.T) {
	mockSvc := &mockCheckoutService{
		confirmPaymentFn: func(ctx context.Context, sessionID string) error {
			return service.ErrOrderNotFound
		},
	}
	app := setupCheckoutApp(mockSvc)

	body := `{"session_id": "sess_ghost"}`
	req := httptest.NewRequest(http.MethodPost, "/api/checkout/confirm", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestCarriers_Success(t *testing.T) {
	mockSvc := &mockCheckoutService{
		carriersFn: func(ctx context.Context) ([]model.Carrier, error) {
			return []model.Carrier{
				{Code: model.CarrierHome, Label: "Home Delivery"},
				{Code: model.CarrierRelay, Label: "Relay Pickup"},
			}, nil
		},
	}
	app := setupCheckoutApp(mockSvc)

	req := httptest.NewRequest(http.MethodGet, "/api/shipping/carriers", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var carriers []model.Carrier
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&carriers))
	require.Len(t, carriers, 2)
	assert.Equal(t, model.CarrierHome, carriers[0].Code)
}
