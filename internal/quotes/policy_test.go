package quotes

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/time/rate"
)

type flakyQuoteSource struct {
	mu       sync.Mutex
	calls    int
	failures int
	err      error
	price    decimal.Decimal
}

func (s *flakyQuoteSource) FetchQuote(_ context.Context, _ string) (decimal.Decimal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.calls <= s.failures {
		return decimal.Zero, s.err
	}
	return s.price, nil
}

func TestWithRetry(t *testing.T) {
	upstreamErr := errors.New("upstream down")
	price := decimal.NewFromInt(100)

	tests := []struct {
		name      string
		failures  int
		attempts  int
		wantCalls int
		wantErr   error
	}{
		{"should succeed first try", 0, 3, 1, nil},
		{"should recover within budget", 2, 3, 3, nil},
		{"should exhaust retries", 3, 3, 3, upstreamErr},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := &flakyQuoteSource{failures: tt.failures, err: upstreamErr, price: price}
			wrapped := WithRetry(src, tt.attempts, time.Millisecond)

			got, err := wrapped.FetchQuote(context.Background(), "AAPL")
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("FetchQuote() error = %v, wantErr %v", err, tt.wantErr)
			}
			if src.calls != tt.wantCalls {
				t.Errorf("FetchQuote() calls = %d, want %d", src.calls, tt.wantCalls)
			}
			if err == nil && !got.Equal(price) {
				t.Errorf("FetchQuote() = %s, want %s", got, price)
			}
		})
	}
}

func TestWithRetryHonorsCancellation(t *testing.T) {
	src := &flakyQuoteSource{failures: 10, err: errors.New("down")}
	wrapped := WithRetry(src, 5, time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := wrapped.FetchQuote(ctx, "AAPL")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("FetchQuote() error = %v, want context.Canceled", err)
	}
}

func TestRateLimitedSharesBucket(t *testing.T) {
	src := &flakyQuoteSource{price: decimal.NewFromInt(1)}
	// 2 immediate tokens, then one every 10ms; 6 callers must all get through.
	limiter := rate.NewLimiter(rate.Every(10*time.Millisecond), 2)
	wrapped := RateLimited(src, limiter)

	var wg sync.WaitGroup
	errs := make(chan error, 6)
	for i := 0; i < 6; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := wrapped.FetchQuote(context.Background(), "AAPL")
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		if err != nil {
			t.Fatalf("FetchQuote() error = %v, want throttled success", err)
		}
	}
	if src.calls != 6 {
		t.Errorf("calls = %d, want 6", src.calls)
	}
}
