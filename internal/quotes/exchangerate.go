package quotes

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
)

// ExchangeRateClient fetches the full USD-based rate table.
type ExchangeRateClient struct {
	cli     *http.Client
	baseURL string
}

func NewExchangeRateClient(baseURL string) *ExchangeRateClient {
	return &ExchangeRateClient{
		cli:     &http.Client{Timeout: 8 * time.Second},
		baseURL: baseURL,
	}
}

func (c *ExchangeRateClient) FetchRates(ctx context.Context) (map[string]decimal.Decimal, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/latest/USD", nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.cli.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("exchangerate http %d", resp.StatusCode)
	}

	var raw struct {
		Rates map[string]json.Number `json:"rates"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, err
	}
	if len(raw.Rates) == 0 {
		return nil, ErrNoRateData
	}

	rates := make(map[string]decimal.Decimal, len(raw.Rates))
	for currency, value := range raw.Rates {
		rate, err := decimal.NewFromString(value.String())
		if err != nil {
			return nil, fmt.Errorf("parse rate for %s: %w", currency, err)
		}
		rates[currency] = rate
	}
	return rates, nil
}
