package quotes

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/shopspring/decimal"
)

const (
	defaultCryptoExchange = "BINANCE"
	defaultCryptoQuote    = "USDT"
)

// FinnhubClient fetches current prices from the Finnhub quote endpoint.
type FinnhubClient struct {
	cli     *http.Client
	baseURL string
	apiKey  string

	// Crypto pair convention: symbols are quoted as <Exchange>:<SYMBOL><QuoteCurrency>.
	Exchange      string
	QuoteCurrency string
}

func NewFinnhubClient(baseURL, apiKey string) *FinnhubClient {
	return &FinnhubClient{
		cli:           &http.Client{Timeout: 8 * time.Second},
		baseURL:       baseURL,
		apiKey:        apiKey,
		Exchange:      defaultCryptoExchange,
		QuoteCurrency: defaultCryptoQuote,
	}
}

// CryptoSymbol maps a bare crypto ticker to the provider's exchange-pair form,
// e.g. BTC -> BINANCE:BTCUSDT.
func (c *FinnhubClient) CryptoSymbol(symbol string) string {
	return fmt.Sprintf("%s:%s%s", c.Exchange, symbol, c.QuoteCurrency)
}

func (c *FinnhubClient) FetchQuote(ctx context.Context, symbol string) (decimal.Decimal, error) {
	q := url.Values{}
	q.Set("symbol", symbol)
	q.Set("token", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/quote?"+q.Encode(), nil)
	if err != nil {
		return decimal.Zero, err
	}

	resp, err := c.cli.Do(req)
	if err != nil {
		return decimal.Zero, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return decimal.Zero, fmt.Errorf("finnhub http %d", resp.StatusCode)
	}

	var raw struct {
		Current json.Number `json:"c"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return decimal.Zero, err
	}
	if raw.Current == "" {
		return decimal.Zero, fmt.Errorf("symbol %s: %w", symbol, ErrNoQuoteData)
	}

	price, err := decimal.NewFromString(raw.Current.String())
	if err != nil {
		return decimal.Zero, fmt.Errorf("parse price %q: %w", raw.Current, err)
	}
	// Finnhub reports 0 for unknown symbols rather than an error status.
	if !price.IsPositive() {
		return decimal.Zero, fmt.Errorf("symbol %s: %w", symbol, ErrNoQuoteData)
	}
	return price, nil
}
