package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/anatoliydrake/atlas-portfolio/internal/engine"
	"github.com/anatoliydrake/atlas-portfolio/internal/repository"
	"github.com/anatoliydrake/atlas-portfolio/types"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

type PortfolioService interface {
	Create(ctx context.Context, ownerId int64, name, description string) (*types.Portfolio, error)
	Get(ctx context.Context, portfolioId, ownerId int64) (*types.Portfolio, error)
	List(ctx context.Context, ownerId int64) ([]types.Portfolio, error)
	Update(ctx context.Context, portfolioId, ownerId int64, name, description *string) (*types.Portfolio, error)
	Delete(ctx context.Context, portfolioId, ownerId int64) error
}

type AssetService interface {
	Create(ctx context.Context, portfolioId, ownerId int64, input engine.CreateAssetInput) (*types.Asset, error)
	Get(ctx context.Context, portfolioId, assetId, ownerId int64) (*types.Asset, error)
	List(ctx context.Context, portfolioId, ownerId int64) ([]types.Asset, error)
	Update(ctx context.Context, portfolioId, assetId, ownerId int64, input engine.UpdateAssetInput) (*types.Asset, error)
	Delete(ctx context.Context, portfolioId, assetId, ownerId int64) error
}

type RefreshService interface {
	RefreshPortfolioPrices(ctx context.Context, portfolioId, ownerId int64) error
}

type AnalyticsService interface {
	GetPortfolioSummary(ctx context.Context, portfolioId, ownerId int64) (*types.PortfolioSummary, error)
}

// Server is the thin HTTP layer over the engine services. Authentication is
// upstream; the owner identity arrives in the X-User-ID header.
type Server struct {
	Portfolios PortfolioService
	Assets     AssetService
	Refresh    RefreshService
	Analytics  AnalyticsService
}

type contextKey string

const ownerIDContextKey contextKey = "ownerID"

func NewServer(portfolios PortfolioService, assets AssetService, refresh RefreshService, analytics AnalyticsService) *Server {
	return &Server{Portfolios: portfolios, Assets: assets, Refresh: refresh, Analytics: analytics}
}

func (s *Server) Mount(r chi.Router) {
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(s.ownerMiddleware)
		r.Route("/portfolios", func(r chi.Router) {
			r.Post("/", s.handleCreatePortfolio)
			r.Get("/", s.handleListPortfolios)
			r.Route("/{portfolioID}", func(r chi.Router) {
				r.Get("/", s.handleGetPortfolio)
				r.Put("/", s.handleUpdatePortfolio)
				r.Delete("/", s.handleDeletePortfolio)
				r.Post("/refresh", s.handleRefreshPrices)
				r.Get("/summary", s.handleGetSummary)
				r.Route("/assets", func(r chi.Router) {
					r.Post("/", s.handleCreateAsset)
					r.Get("/", s.handleListAssets)
					r.Get("/{assetID}", s.handleGetAsset)
					r.Put("/{assetID}", s.handleUpdateAsset)
					r.Delete("/{assetID}", s.handleDeleteAsset)
				})
			})
		})
	})
}

func (s *Server) ownerMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ownerId, err := strconv.ParseInt(r.Header.Get("X-User-ID"), 10, 64)
		if err != nil || ownerId <= 0 {
			writeError(w, http.StatusUnauthorized, "missing or invalid X-User-ID header")
			return
		}
		ctx := context.WithValue(r.Context(), ownerIDContextKey, ownerId)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func ownerFromContext(ctx context.Context) int64 {
	ownerId, _ := ctx.Value(ownerIDContextKey).(int64)
	return ownerId
}

type createPortfolioRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type updatePortfolioRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

type createAssetRequest struct {
	Symbol               string          `json:"symbol"`
	Kind                 types.AssetKind `json:"kind"`
	Quantity             decimal.Decimal `json:"quantity"`
	AveragePurchasePrice decimal.Decimal `json:"averagePurchasePrice"`
	Currency             string          `json:"currency"`
}

type updateAssetRequest struct {
	Quantity             *decimal.Decimal `json:"quantity"`
	AveragePurchasePrice *decimal.Decimal `json:"averagePurchasePrice"`
}

func (s *Server) handleCreatePortfolio(w http.ResponseWriter, r *http.Request) {
	var req createPortfolioRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	portfolio, err := s.Portfolios.Create(r.Context(), ownerFromContext(r.Context()), req.Name, req.Description)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, portfolio)
}

func (s *Server) handleListPortfolios(w http.ResponseWriter, r *http.Request) {
	portfolios, err := s.Portfolios.List(r.Context(), ownerFromContext(r.Context()))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if portfolios == nil {
		portfolios = []types.Portfolio{}
	}
	writeJSON(w, http.StatusOK, portfolios)
}

func (s *Server) handleGetPortfolio(w http.ResponseWriter, r *http.Request) {
	portfolioId, ok := pathID(w, r, "portfolioID")
	if !ok {
		return
	}
	portfolio, err := s.Portfolios.Get(r.Context(), portfolioId, ownerFromContext(r.Context()))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, portfolio)
}

func (s *Server) handleUpdatePortfolio(w http.ResponseWriter, r *http.Request) {
	portfolioId, ok := pathID(w, r, "portfolioID")
	if !ok {
		return
	}
	var req updatePortfolioRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	portfolio, err := s.Portfolios.Update(r.Context(), portfolioId, ownerFromContext(r.Context()), req.Name, req.Description)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, portfolio)
}

func (s *Server) handleDeletePortfolio(w http.ResponseWriter, r *http.Request) {
	portfolioId, ok := pathID(w, r, "portfolioID")
	if !ok {
		return
	}
	if err := s.Portfolios.Delete(r.Context(), portfolioId, ownerFromContext(r.Context())); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleRefreshPrices(w http.ResponseWriter, r *http.Request) {
	portfolioId, ok := pathID(w, r, "portfolioID")
	if !ok {
		return
	}
	if err := s.Refresh.RefreshPortfolioPrices(r.Context(), portfolioId, ownerFromContext(r.Context())); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

func (s *Server) handleGetSummary(w http.ResponseWriter, r *http.Request) {
	portfolioId, ok := pathID(w, r, "portfolioID")
	if !ok {
		return
	}
	summary, err := s.Analytics.GetPortfolioSummary(r.Context(), portfolioId, ownerFromContext(r.Context()))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (s *Server) handleCreateAsset(w http.ResponseWriter, r *http.Request) {
	portfolioId, ok := pathID(w, r, "portfolioID")
	if !ok {
		return
	}
	var req createAssetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	asset, err := s.Assets.Create(r.Context(), portfolioId, ownerFromContext(r.Context()), engine.CreateAssetInput{
		Symbol:           req.Symbol,
		Kind:             req.Kind,
		Quantity:         req.Quantity,
		AvgPurchasePrice: req.AveragePurchasePrice,
		Currency:         req.Currency,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, asset)
}

func (s *Server) handleListAssets(w http.ResponseWriter, r *http.Request) {
	portfolioId, ok := pathID(w, r, "portfolioID")
	if !ok {
		return
	}
	assets, err := s.Assets.List(r.Context(), portfolioId, ownerFromContext(r.Context()))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if assets == nil {
		assets = []types.Asset{}
	}
	writeJSON(w, http.StatusOK, assets)
}

func (s *Server) handleGetAsset(w http.ResponseWriter, r *http.Request) {
	portfolioId, ok := pathID(w, r, "portfolioID")
	if !ok {
		return
	}
	assetId, ok := pathID(w, r, "assetID")
	if !ok {
		return
	}
	asset, err := s.Assets.Get(r.Context(), portfolioId, assetId, ownerFromContext(r.Context()))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, asset)
}

func (s *Server) handleUpdateAsset(w http.ResponseWriter, r *http.Request) {
	portfolioId, ok := pathID(w, r, "portfolioID")
	if !ok {
		return
	}
	assetId, ok := pathID(w, r, "assetID")
	if !ok {
		return
	}
	var req updateAssetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	asset, err := s.Assets.Update(r.Context(), portfolioId, assetId, ownerFromContext(r.Context()), engine.UpdateAssetInput{
		Quantity:         req.Quantity,
		AvgPurchasePrice: req.AveragePurchasePrice,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, asset)
}

func (s *Server) handleDeleteAsset(w http.ResponseWriter, r *http.Request) {
	portfolioId, ok := pathID(w, r, "portfolioID")
	if !ok {
		return
	}
	assetId, ok := pathID(w, r, "assetID")
	if !ok {
		return
	}
	if err := s.Assets.Delete(r.Context(), portfolioId, assetId, ownerFromContext(r.Context())); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "invalid "+name)
		return 0, false
	}
	return id, true
}

var validationErrs = []error{
	engine.ErrInvalidName,
	engine.ErrInvalidDescription,
	engine.ErrInvalidSymbol,
	engine.ErrInvalidKind,
	engine.ErrInvalidQuantity,
	engine.ErrInvalidPrice,
	engine.ErrInvalidCurrency,
}

func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, repository.ErrPortfolioNotFound), errors.Is(err, repository.ErrAssetNotFound):
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	for _, validationErr := range validationErrs {
		if errors.Is(err, validationErr) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}
	writeError(w, http.StatusInternalServerError, "internal error")
}

type apiError struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, apiError{Error: message})
}
