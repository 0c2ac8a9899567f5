package quotes

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
)

// Global error declarations.
var (
	ErrNoQuoteData = errors.New("no quote data available")
	ErrNoRateData  = errors.New("no exchange rate data available")
)

// QuoteSource returns the current price for a symbol.
type QuoteSource interface {
	FetchQuote(ctx context.Context, symbol string) (decimal.Decimal, error)
}

// RateSource returns the full currency table relative to the base currency
// (base itself is not guaranteed to be present).
type RateSource interface {
	FetchRates(ctx context.Context) (map[string]decimal.Decimal, error)
}
