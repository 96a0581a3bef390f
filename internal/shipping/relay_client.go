// Package shipping is the HTTP client for the relay carrier's
// pickup-point lookup API. The storefront only consumes the lookup:
// the customer picks one of the returned points and its id travels
// with the checkout request.
package shipping

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/recifdiscount/storefront/internal/config"
	"github.com/recifdiscount/storefront/internal/model"
)

// RelayClient talks to the relay carrier's pickup-point API.
type RelayClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewRelayClient creates a RelayClient from configuration.
func NewRelayClient(cfg config.RelayConfig) *RelayClient {
	return &RelayClient{
		baseURL: strings.TrimSuffix(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		httpClient: &http.Client{
			Timeout: time.Duration(cfg.TimeoutS) * time.Second,
		},
	}
}

type lookupResponse struct {
	Points []model.RelayPoint `json:"points"`
	Error  string             `json:"error,omitempty"`
}

// LookupRelayPoints returns the pickup points serving a postcode.
func (c *RelayClient) LookupRelayPoints(ctx context.Context, postCode string) ([]model.RelayPoint, error) {
	endpoint := c.baseURL + "/v1/relay-points?postcode=" + url.QueryEscape(postCode)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("create lookup request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("relay lookup request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read relay response: %w", err)
	}

	var lr lookupResponse
	if err := json.Unmarshal(body, &lr); err != nil {
		return nil, fmt.Errorf("decode relay response (status %d): %w", resp.StatusCode, err)
	}
	if resp.StatusCode != http.StatusOK {
		if lr.Error != "" {
			return nil, fmt.Errorf("relay lookup: %s", lr.Error)
		}
		return nil, fmt.Errorf("relay lookup: status %d", resp.StatusCode)
	}
	return lr.Points, nil
}
