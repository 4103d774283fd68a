package pricefeed

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"wallet-ledger/internal/core/ports"

	"github.com/shopspring/decimal"
)

// HTTPClient interface for testability.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// HTTPOracle fetches quotes from an external price feed endpoint:
// GET {baseURL}/price?asset=BTC returning {"asset":"BTC","price":"45000"}.
type HTTPOracle struct {
	baseURL    string
	httpClient HTTPClient
}

// NewHTTPOracle creates an oracle backed by an HTTP price feed.
func NewHTTPOracle(baseURL string, httpClient HTTPClient) *HTTPOracle {
	return &HTTPOracle{baseURL: baseURL, httpClient: httpClient}
}

type quoteResponse struct {
	Asset string          `json:"asset"`
	Price decimal.Decimal `json:"price"`
}

// Quote fetches the current price for asset. A 404 from the feed means
// the asset is unknown and quotes zero; other failures are errors.
func (o *HTTPOracle) Quote(ctx context.Context, asset string) (decimal.Decimal, error) {
	endpoint := fmt.Sprintf("%s/price?asset=%s", o.baseURL, url.QueryEscape(asset))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return decimal.Zero, fmt.Errorf("create price feed request: %w", err)
	}

	resp, err := o.httpClient.Do(req)
	if err != nil {
		return decimal.Zero, fmt.Errorf("price feed request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return decimal.Zero, nil
	}
	if resp.StatusCode != http.StatusOK {
		return decimal.Zero, fmt.Errorf("price feed returned status %d for %s", resp.StatusCode, asset)
	}

	var qr quoteResponse
	if err := json.NewDecoder(resp.Body).Decode(&qr); err != nil {
		return decimal.Zero, fmt.Errorf("decode price feed response: %w", err)
	}
	return qr.Price, nil
}

var _ ports.PriceOracle = (*HTTPOracle)(nil)
