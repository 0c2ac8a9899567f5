package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/anatoliydrake/atlas-portfolio/internal/repository"
	"github.com/anatoliydrake/atlas-portfolio/types"
	"github.com/shopspring/decimal"
)

const defaultCurrency = "USD"

// Fixed worker pool size for per-asset lookups; independent of portfolio
// size, so large portfolios queue instead of unbounded fan-out.
const refreshWorkers = 10

// RefreshService fans out price lookups for a portfolio's assets and persists
// all fetched prices in one batch.
type RefreshService struct {
	portfolios portfolioStore
	assets     assetStore
	prices     priceStore
	quotes     quoteSource
	mapper     symbolMapper
	fx         rateProvider

	workers int
	now     func() time.Time
}

func NewRefreshService(
	portfolios portfolioStore,
	assets assetStore,
	prices priceStore,
	quotes quoteSource,
	mapper symbolMapper,
	fx rateProvider,
) *RefreshService {
	return &RefreshService{
		portfolios: portfolios,
		assets:     assets,
		prices:     prices,
		quotes:     quotes,
		mapper:     mapper,
		fx:         fx,
		workers:    refreshWorkers,
		now:        time.Now,
	}
}

// RefreshPortfolioPrices refreshes every supported asset of the portfolio.
// Individual lookup failures are logged and dropped; the asset keeps its
// previous price. Re-invoking with stable upstream prices is idempotent.
func (s *RefreshService) RefreshPortfolioPrices(ctx context.Context, portfolioId, ownerId int64) error {
	exists, err := s.portfolios.PortfolioExists(ctx, portfolioId, ownerId)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("portfolio %d: %w", portfolioId, repository.ErrPortfolioNotFound)
	}

	assets, err := s.assets.ListAssetsByPortfolio(ctx, portfolioId)
	if err != nil {
		return err
	}
	if len(assets) == 0 {
		slog.Info("no assets to refresh", "portfolio_id", portfolioId)
		return nil
	}

	var supported []types.Asset
	for _, asset := range assets {
		switch asset.Kind {
		case types.AssetKindEquity, types.AssetKindFund, types.AssetKindCrypto, types.AssetKindCash:
			supported = append(supported, asset)
		default:
			slog.Warn("price refresh not supported for asset kind",
				"kind", asset.Kind, "symbol", asset.Symbol)
		}
	}
	if len(supported) == 0 {
		return nil
	}

	slog.Info("refreshing prices", "portfolio_id", portfolioId, "assets", len(supported))

	jobs := make(chan types.Asset)
	outcomes := make(chan types.RefreshOutcome, len(supported))

	var wg sync.WaitGroup
	for i := 0; i < s.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for asset := range jobs {
				outcomes <- s.refreshAsset(ctx, asset)
			}
		}()
	}

	for _, asset := range supported {
		jobs <- asset
	}
	close(jobs)

	// Barrier: the batch write happens only after every unit finished.
	wg.Wait()
	close(outcomes)

	refreshedAt := s.now().UTC()
	updates := make([]types.PriceUpdate, 0, len(supported))
	for outcome := range outcomes {
		if outcome.Err != nil {
			slog.Error("failed to refresh asset price",
				"symbol", outcome.Symbol, "kind", outcome.Kind, "error", outcome.Err)
			continue
		}
		update := *outcome.Update
		update.UpdatedAt = refreshedAt
		updates = append(updates, update)
	}

	if len(updates) > 0 {
		if err := s.prices.BatchUpdatePrices(ctx, updates); err != nil {
			return err
		}
		slog.Info("bulk updated asset prices", "portfolio_id", portfolioId, "updated", len(updates))
	}

	slog.Info("finished refreshing prices", "portfolio_id", portfolioId)
	return nil
}

func (s *RefreshService) refreshAsset(ctx context.Context, asset types.Asset) types.RefreshOutcome {
	outcome := types.RefreshOutcome{Symbol: asset.Symbol, Kind: asset.Kind}

	var price decimal.Decimal
	var err error
	switch asset.Kind {
	case types.AssetKindCash:
		// A cash asset's "price" is its currency's conversion rate into USD.
		price, err = s.fx.GetRate(ctx, asset.Currency, defaultCurrency)
	case types.AssetKindCrypto:
		price, err = s.quotes.FetchQuote(ctx, s.mapper.CryptoSymbol(asset.Symbol))
	default:
		price, err = s.quotes.FetchQuote(ctx, asset.Symbol)
	}
	if err != nil {
		outcome.Err = err
		return outcome
	}

	outcome.Update = &types.PriceUpdate{AssetId: asset.Id, Price: price}
	return outcome
}
