package quotes

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
)

func TestExchangeRateClient_FetchRates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/latest/USD" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Write([]byte(`{"base":"USD","rates":{"EUR":0.9259,"GBP":0.79,"JPY":147.2}}`))
	}))
	defer srv.Close()

	client := NewExchangeRateClient(srv.URL)
	rates, err := client.FetchRates(context.Background())
	if err != nil {
		t.Fatalf("FetchRates() error = %v", err)
	}
	if len(rates) != 3 {
		t.Fatalf("FetchRates() returned %d rates, want 3", len(rates))
	}
	if !rates["EUR"].Equal(decimal.NewFromFloat(0.9259)) {
		t.Errorf("FetchRates() EUR = %s, want 0.9259", rates["EUR"])
	}
}

func TestExchangeRateClient_FetchRatesEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"base":"USD","rates":{}}`))
	}))
	defer srv.Close()

	client := NewExchangeRateClient(srv.URL)
	if _, err := client.FetchRates(context.Background()); !errors.Is(err, ErrNoRateData) {
		t.Fatalf("FetchRates() error = %v, want ErrNoRateData", err)
	}
}
