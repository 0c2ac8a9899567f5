package quotes

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/time/rate"
)

// Policy wrappers composed around a source at construction time. The limiter
// is shared across all concurrent callers of a provider, so a refresh fan-out
// queues on the token bucket instead of being rejected.

type limitedQuoteSource struct {
	src     QuoteSource
	limiter *rate.Limiter
}

func RateLimited(src QuoteSource, limiter *rate.Limiter) QuoteSource {
	return &limitedQuoteSource{src: src, limiter: limiter}
}

func (s *limitedQuoteSource) FetchQuote(ctx context.Context, symbol string) (decimal.Decimal, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return decimal.Zero, err
	}
	return s.src.FetchQuote(ctx, symbol)
}

type limitedRateSource struct {
	src     RateSource
	limiter *rate.Limiter
}

func RateLimitedRates(src RateSource, limiter *rate.Limiter) RateSource {
	return &limitedRateSource{src: src, limiter: limiter}
}

func (s *limitedRateSource) FetchRates(ctx context.Context) (map[string]decimal.Decimal, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return s.src.FetchRates(ctx)
}

type retryQuoteSource struct {
	src      QuoteSource
	attempts int
	backoff  time.Duration
}

func WithRetry(src QuoteSource, attempts int, backoff time.Duration) QuoteSource {
	return &retryQuoteSource{src: src, attempts: attempts, backoff: backoff}
}

func (s *retryQuoteSource) FetchQuote(ctx context.Context, symbol string) (decimal.Decimal, error) {
	return retry(ctx, s.attempts, s.backoff, func(ctx context.Context) (decimal.Decimal, error) {
		return s.src.FetchQuote(ctx, symbol)
	})
}

type retryRateSource struct {
	src      RateSource
	attempts int
	backoff  time.Duration
}

func WithRatesRetry(src RateSource, attempts int, backoff time.Duration) RateSource {
	return &retryRateSource{src: src, attempts: attempts, backoff: backoff}
}

func (s *retryRateSource) FetchRates(ctx context.Context) (map[string]decimal.Decimal, error) {
	return retry(ctx, s.attempts, s.backoff, func(ctx context.Context) (map[string]decimal.Decimal, error) {
		return s.src.FetchRates(ctx)
	})
}

// retry runs fn up to attempts times with doubling backoff between tries.
// Exhaustion surfaces the last error as a single terminal failure.
func retry[T any](ctx context.Context, attempts int, backoff time.Duration, fn func(context.Context) (T, error)) (T, error) {
	var zero T
	if attempts < 1 {
		attempts = 1
	}

	delay := backoff
	var err error
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return zero, ctx.Err()
			case <-time.After(delay):
			}
			delay *= 2
		}

		var v T
		v, err = fn(ctx)
		if err == nil {
			return v, nil
		}
	}
	return zero, fmt.Errorf("after %d attempts: %w", attempts, err)
}
