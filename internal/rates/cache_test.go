package rates

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

type mockRateSource struct {
	mu      sync.Mutex
	fetches atomic.Int64
	delay   time.Duration
	rates   map[string]decimal.Decimal
	err     error
}

func (m *mockRateSource) FetchRates(_ context.Context) (map[string]decimal.Decimal, error) {
	m.fetches.Add(1)
	if m.delay > 0 {
		time.Sleep(m.delay)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	out := make(map[string]decimal.Decimal, len(m.rates))
	for k, v := range m.rates {
		out[k] = v
	}
	return out, nil
}

func (m *mockRateSource) set(rates map[string]decimal.Decimal, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rates = rates
	m.err = err
}

func testRates() map[string]decimal.Decimal {
	return map[string]decimal.Decimal{
		"EUR": decimal.RequireFromString("0.9259"),
		"GBP": decimal.RequireFromString("0.79"),
		"JPY": decimal.RequireFromString("147.2"),
	}
}

func TestCache_GetRate(t *testing.T) {
	tests := []struct {
		name    string
		from    string
		to      string
		want    string
		wantErr error
	}{
		{"should return one for identical currencies", "EUR", "EUR", "1", nil},
		{"should return one for base to base", "USD", "USD", "1", nil},
		{"should return usd to eur rate", "USD", "EUR", "0.9259", nil},
		{"should invert eur to usd", "EUR", "USD", "1.0800302408", nil},
		{"should compute cross rate", "EUR", "GBP", "0.8532238903", nil},
		{"should fail on unknown currency", "XXX", "USD", "", ErrCurrencyNotSupported},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cache := NewCache(&mockRateSource{rates: testRates()})
			got, err := cache.GetRate(context.Background(), tt.from, tt.to)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("GetRate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && !got.Equal(decimal.RequireFromString(tt.want)) {
				t.Errorf("GetRate() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestCache_GetRateReciprocal(t *testing.T) {
	cache := NewCache(&mockRateSource{rates: testRates()})
	ctx := context.Background()

	ab, err := cache.GetRate(ctx, "EUR", "JPY")
	if err != nil {
		t.Fatal(err)
	}
	ba, err := cache.GetRate(ctx, "JPY", "EUR")
	if err != nil {
		t.Fatal(err)
	}

	diff := ab.Mul(ba).Sub(decimal.NewFromInt(1)).Abs()
	if diff.GreaterThan(decimal.RequireFromString("0.000001")) {
		t.Errorf("rate(A,B)*rate(B,A) = %s, want 1 within tolerance", ab.Mul(ba))
	}
}

func TestCache_SingleFlight(t *testing.T) {
	source := &mockRateSource{rates: testRates(), delay: 20 * time.Millisecond}
	cache := NewCache(source)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := cache.Snapshot(context.Background()); err != nil {
				t.Error(err)
			}
		}()
	}
	wg.Wait()

	if got := source.fetches.Load(); got != 1 {
		t.Errorf("cold-cache fan-out caused %d fetches, want 1", got)
	}
}

func TestCache_FetchFailureLeavesCacheEmpty(t *testing.T) {
	source := &mockRateSource{err: errors.New("provider down")}
	cache := NewCache(source)
	ctx := context.Background()

	if _, err := cache.Snapshot(ctx); err == nil {
		t.Fatal("Snapshot() expected error")
	}

	// Recovery: next read fetches again instead of serving a poisoned snapshot.
	source.set(testRates(), nil)
	snapshot, err := cache.Snapshot(ctx)
	if err != nil {
		t.Fatalf("Snapshot() after recovery error = %v", err)
	}
	if len(snapshot) != 3 {
		t.Errorf("Snapshot() returned %d rates, want 3", len(snapshot))
	}
	if source.fetches.Load() != 2 {
		t.Errorf("fetches = %d, want 2", source.fetches.Load())
	}
}

func TestCache_RefreshReplacesSnapshotWholesale(t *testing.T) {
	source := &mockRateSource{rates: testRates()}
	cache := NewCache(source)
	ctx := context.Background()

	if _, err := cache.Snapshot(ctx); err != nil {
		t.Fatal(err)
	}

	source.set(map[string]decimal.Decimal{"EUR": decimal.RequireFromString("0.5")}, nil)
	if err := cache.Refresh(ctx); err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}

	snapshot, err := cache.Snapshot(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(snapshot) != 1 || !snapshot["EUR"].Equal(decimal.RequireFromString("0.5")) {
		t.Errorf("Refresh() merged instead of replacing: %v", snapshot)
	}
	// GBP came only from the old snapshot and must be gone.
	if _, err := cache.GetRate(ctx, "GBP", "USD"); !errors.Is(err, ErrCurrencyNotSupported) {
		t.Errorf("GetRate(GBP) error = %v, want ErrCurrencyNotSupported", err)
	}
}

func TestCache_InvalidateForcesRefetch(t *testing.T) {
	source := &mockRateSource{rates: testRates()}
	cache := NewCache(source)
	ctx := context.Background()

	if _, err := cache.Snapshot(ctx); err != nil {
		t.Fatal(err)
	}
	if _, err := cache.Snapshot(ctx); err != nil {
		t.Fatal(err)
	}
	if source.fetches.Load() != 1 {
		t.Fatalf("warm cache refetched: %d fetches", source.fetches.Load())
	}

	cache.Invalidate()
	if _, err := cache.Snapshot(ctx); err != nil {
		t.Fatal(err)
	}
	if source.fetches.Load() != 2 {
		t.Errorf("fetches after invalidate = %d, want 2", source.fetches.Load())
	}
}

func TestScheduler_ContinuesAfterFailure(t *testing.T) {
	source := &mockRateSource{err: errors.New("provider down")}
	cache := NewCache(source)
	scheduler := NewScheduler(5*time.Millisecond, cache)

	ctx, cancel := context.WithTimeout(context.Background(), 40*time.Millisecond)
	defer cancel()
	scheduler.Run(ctx)

	if source.fetches.Load() < 2 {
		t.Errorf("scheduler stopped after a failed refresh: %d fetches", source.fetches.Load())
	}
}
