package rates

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/anatoliydrake/atlas-portfolio/internal/quotes"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/singleflight"
)

const (
	BaseCurrency = "USD"

	// Cross rates are computed at this scale before callers apply any
	// money-scale rounding.
	rateCalculationScale = 10
	moneyDisplayScale    = 2
)

var ErrCurrencyNotSupported = errors.New("currency not supported")

var one = decimal.NewFromInt(1)

// Cache holds the latest USD-based rate snapshot. A snapshot is immutable and
// replaced wholesale on refresh; concurrent cold-cache reads collapse into a
// single upstream fetch.
type Cache struct {
	source quotes.RateSource
	group  singleflight.Group

	mu       sync.RWMutex
	snapshot map[string]decimal.Decimal
}

func NewCache(source quotes.RateSource) *Cache {
	return &Cache{source: source}
}

// Snapshot returns the full rate table, fetching it on a cold cache.
func (c *Cache) Snapshot(ctx context.Context) (map[string]decimal.Decimal, error) {
	c.mu.RLock()
	snapshot := c.snapshot
	c.mu.RUnlock()

	if snapshot != nil {
		return snapshot, nil
	}
	return c.fetch(ctx)
}

// GetRate returns how many 'to' units one 'from' unit buys.
func (c *Cache) GetRate(ctx context.Context, from, to string) (decimal.Decimal, error) {
	if from == to {
		return one, nil
	}

	fromRate, err := c.rateFromBase(ctx, from)
	if err != nil {
		return decimal.Zero, err
	}
	toRate, err := c.rateFromBase(ctx, to)
	if err != nil {
		return decimal.Zero, err
	}
	return toRate.DivRound(fromRate, rateCalculationScale), nil
}

// Convert converts an amount between currencies, rounded to money scale.
func (c *Cache) Convert(ctx context.Context, amount decimal.Decimal, from, to string) (decimal.Decimal, error) {
	if from == to {
		return amount, nil
	}
	rate, err := c.GetRate(ctx, from, to)
	if err != nil {
		return decimal.Zero, err
	}
	return amount.Mul(rate).Round(moneyDisplayScale), nil
}

// Refresh discards the current snapshot and fetches a new one. Safe to call
// concurrently with reads; a failed fetch leaves the cache empty.
func (c *Cache) Refresh(ctx context.Context) error {
	c.Invalidate()
	_, err := c.fetch(ctx)
	return err
}

// Invalidate drops the snapshot without fetching; the next read refetches.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	c.snapshot = nil
	c.mu.Unlock()
}

func (c *Cache) rateFromBase(ctx context.Context, currency string) (decimal.Decimal, error) {
	if currency == BaseCurrency {
		return one, nil
	}

	snapshot, err := c.Snapshot(ctx)
	if err != nil {
		return decimal.Zero, err
	}
	rate, ok := snapshot[currency]
	if !ok {
		return decimal.Zero, fmt.Errorf("%s: %w", currency, ErrCurrencyNotSupported)
	}
	return rate, nil
}

func (c *Cache) fetch(ctx context.Context) (map[string]decimal.Decimal, error) {
	v, err, _ := c.group.Do("rates", func() (any, error) {
		rates, err := c.source.FetchRates(ctx)
		if err != nil {
			// Cache stays empty so the next read retries.
			return nil, fmt.Errorf("fetch exchange rates: %w", err)
		}

		c.mu.Lock()
		c.snapshot = rates
		c.mu.Unlock()

		slog.Info("exchange rates cached", "currencies", len(rates))
		return rates, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(map[string]decimal.Decimal), nil
}
