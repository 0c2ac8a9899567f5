package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/anatoliydrake/atlas-portfolio/internal/api"
	"github.com/anatoliydrake/atlas-portfolio/internal/config"
	"github.com/anatoliydrake/atlas-portfolio/internal/engine"
	"github.com/anatoliydrake/atlas-portfolio/internal/quotes"
	"github.com/anatoliydrake/atlas-portfolio/internal/rates"
	"github.com/anatoliydrake/atlas-portfolio/internal/repository"
	"github.com/go-chi/chi/v5"
	"golang.org/x/time/rate"
)

const (
	// Finnhub's free tier allows 60 calls/minute.
	quoteRequestsPerSecond = 1
	quoteBurst             = 10

	retryAttempts = 3
	retryBackoff  = 500 * time.Millisecond
)

func main() {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	db, err := repository.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		slog.Error("failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	// One limiter per provider, shared by every concurrent refresh.
	finnhub := quotes.NewFinnhubClient(cfg.FinnhubAPIURL, cfg.FinnhubAPIKey)
	quoteSource := quotes.WithRetry(
		quotes.RateLimited(finnhub, rate.NewLimiter(quoteRequestsPerSecond, quoteBurst)),
		retryAttempts, retryBackoff)
	rateSource := quotes.WithRatesRetry(
		quotes.RateLimitedRates(quotes.NewExchangeRateClient(cfg.ExchangeRateAPIURL), rate.NewLimiter(1, 1)),
		retryAttempts, retryBackoff)

	fxCache := rates.NewCache(rateSource)

	portfolioService := engine.NewPortfolioService(&db)
	assetService := engine.NewAssetService(&db, &db)
	refreshService := engine.NewRefreshService(&db, &db, &db, quoteSource, finnhub, fxCache)
	analyticsService := engine.NewAnalyticsService(&db, &db)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go rates.NewScheduler(rates.RefreshInterval, fxCache).Run(ctx)

	router := chi.NewRouter()
	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	api.NewServer(portfolioService, assetService, refreshService, analyticsService).Mount(router)

	httpServer := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	serverErrCh := make(chan error, 1)
	go func() {
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrCh <- err
		}
	}()

	slog.Info("server started", "port", cfg.Port)

	select {
	case <-ctx.Done():
		slog.Info("shutdown signal received")
	case err := <-serverErrCh:
		slog.Error("server terminated unexpectedly", "error", err)
		os.Exit(1)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("graceful shutdown failed", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}
