package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/anatoliydrake/atlas-portfolio/internal/engine"
	"github.com/anatoliydrake/atlas-portfolio/internal/repository"
	"github.com/anatoliydrake/atlas-portfolio/types"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

type mockPortfolios struct {
	PortfolioService
	created *types.Portfolio
	err     error
}

func (m *mockPortfolios) Create(_ context.Context, ownerId int64, name, description string) (*types.Portfolio, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.created = &types.Portfolio{Id: 1, OwnerId: ownerId, Name: name, Description: description}
	return m.created, nil
}

type mockRefresh struct {
	calls   int
	lastRun [2]int64
	err     error
}

func (m *mockRefresh) RefreshPortfolioPrices(_ context.Context, portfolioId, ownerId int64) error {
	m.calls++
	m.lastRun = [2]int64{portfolioId, ownerId}
	return m.err
}

type mockAnalytics struct {
	summary *types.PortfolioSummary
	err     error
}

func (m *mockAnalytics) GetPortfolioSummary(_ context.Context, portfolioId, _ int64) (*types.PortfolioSummary, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.summary, nil
}

func newTestRouter(s *Server) http.Handler {
	r := chi.NewRouter()
	s.Mount(r)
	return r
}

func doRequest(t *testing.T, h http.Handler, method, path, body, userID string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if userID != "" {
		req.Header.Set("X-User-ID", userID)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestServer_RefreshPrices(t *testing.T) {
	tests := []struct {
		name       string
		userID     string
		refreshErr error
		wantStatus int
	}{
		{"should accept refresh", "42", nil, http.StatusAccepted},
		{"should reject missing owner header", "", nil, http.StatusUnauthorized},
		{"should map missing portfolio to 404", "42", repository.ErrPortfolioNotFound, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			refresh := &mockRefresh{err: tt.refreshErr}
			router := newTestRouter(NewServer(&mockPortfolios{}, nil, refresh, &mockAnalytics{}))

			rec := doRequest(t, router, http.MethodPost, "/api/v1/portfolios/7/refresh", "", tt.userID)
			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if tt.wantStatus == http.StatusAccepted && refresh.lastRun != [2]int64{7, 42} {
				t.Errorf("refresh invoked with %v, want [7 42]", refresh.lastRun)
			}
		})
	}
}

func TestServer_GetSummary(t *testing.T) {
	summary := &types.PortfolioSummary{
		PortfolioId:   7,
		Name:          "Main",
		TotalValue:    decimal.RequireFromString("1740"),
		TotalInvested: decimal.RequireFromString("1500"),
		ProfitLoss:    decimal.RequireFromString("240"),
		AssetCount:    2,
		Breakdown:     []types.KindBreakdown{},
	}
	router := newTestRouter(NewServer(&mockPortfolios{}, nil, &mockRefresh{}, &mockAnalytics{summary: summary}))

	rec := doRequest(t, router, http.MethodGet, "/api/v1/portfolios/7/summary", "", "42")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var got types.PortfolioSummary
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatal(err)
	}
	if got.PortfolioId != 7 || !got.TotalValue.Equal(summary.TotalValue) {
		t.Errorf("summary = %+v, want %+v", got, summary)
	}
}

func TestServer_CreatePortfolio(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		serviceErr error
		wantStatus int
	}{
		{"should create portfolio", `{"name":"Main","description":"d"}`, nil, http.StatusCreated},
		{"should reject malformed body", `{"name":`, nil, http.StatusBadRequest},
		{"should map validation failure to 400", `{"name":""}`, engine.ErrInvalidName, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			portfolios := &mockPortfolios{err: tt.serviceErr}
			router := newTestRouter(NewServer(portfolios, nil, &mockRefresh{}, &mockAnalytics{}))

			rec := doRequest(t, router, http.MethodPost, "/api/v1/portfolios", tt.body, "42")
			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d (body %s)", rec.Code, tt.wantStatus, rec.Body)
			}
			if tt.wantStatus == http.StatusCreated && portfolios.created.OwnerId != 42 {
				t.Errorf("created owner = %d, want 42", portfolios.created.OwnerId)
			}
		})
	}
}

func TestServer_InvalidPathID(t *testing.T) {
	router := newTestRouter(NewServer(&mockPortfolios{}, nil, &mockRefresh{}, &mockAnalytics{}))
	rec := doRequest(t, router, http.MethodPost, "/api/v1/portfolios/abc/refresh", "", "42")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}
