// Package payment is the HTTP client for the external payment
// provider. The provider receives the checkout payload and answers
// with a hosted checkout session; its errors are passed through to the
// caller untouched.
package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/recifdiscount/storefront/internal/config"
	"github.com/recifdiscount/storefront/internal/model"
)

var decimalHundred = decimal.NewFromInt(100)

// Client talks to the payment provider's session API.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewClient creates a payment Client from configuration.
func NewClient(cfg config.PaymentConfig) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		httpClient: &http.Client{
			Timeout: time.Duration(cfg.TimeoutS) * time.Second,
		},
	}
}

type sessionRequest struct {
	Lines    []sessionLine      `json:"lines"`
	Customer model.CustomerForm `json:"customer"`
	Metadata map[string]string  `json:"metadata"`
}

type sessionLine struct {
	PaymentRef string `json:"payment_ref,omitempty"`
	Label      string `json:"label"`
	AmountCent int64  `json:"amount_cents"`
	Quantity   int    `json:"quantity"`
}

type sessionResponse struct {
	SessionID   string `json:"session_id"`
	RedirectURL string `json:"redirect_url"`
	Error       string `json:"error,omitempty"`
}

// CreateSession submits the payload and returns the provider's hosted
// checkout session.
func (c *Client) CreateSession(ctx context.Context, payload *model.CheckoutPayload) (*model.PaymentSession, error) {
	reqBody := sessionRequest{
		Lines:    make([]sessionLine, 0, len(payload.Lines)),
		Customer: payload.Customer,
		Metadata: map[string]string{
			"cart_id":    payload.CartID,
			"promo_code": payload.PromoCode,
		},
	}
	for _, line := range payload.Lines {
		if line.Gift {
			continue // fulfilment-only, never charged
		}
		reqBody.Lines = append(reqBody.Lines, sessionLine{
			PaymentRef: line.PaymentRef,
			Label:      line.Title,
			AmountCent: line.UnitPrice.Mul(decimalHundred).Round(0).IntPart(),
			Quantity:   line.Quantity,
		})
	}

	data, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal session request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/checkout/sessions", bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("create session request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("payment provider request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read provider response: %w", err)
	}

	var sr sessionResponse
	if err := json.Unmarshal(body, &sr); err != nil {
		return nil, fmt.Errorf("decode provider response (status %d): %w", resp.StatusCode, err)
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		if sr.Error != "" {
			return nil, fmt.Errorf("payment provider: %s", sr.Error)
		}
		return nil, fmt.Errorf("payment provider: status %d", resp.StatusCode)
	}

	return &model.PaymentSession{ID: sr.SessionID, RedirectURL: sr.RedirectURL}, nil
}
