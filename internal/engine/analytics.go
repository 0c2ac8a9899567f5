package engine

import (
	"context"
	"sort"
	"time"

	"github.com/anatoliydrake/atlas-portfolio/types"
	"github.com/shopspring/decimal"
)

// Percentages are rounded half-up to this many fractional digits.
const percentScale = 4

var oneHundred = decimal.NewFromInt(100)

// AnalyticsService computes derived portfolio views.
type AnalyticsService struct {
	portfolios portfolioStore
	assets     assetStore
}

func NewAnalyticsService(portfolios portfolioStore, assets assetStore) *AnalyticsService {
	return &AnalyticsService{portfolios: portfolios, assets: assets}
}

func (s *AnalyticsService) GetPortfolioSummary(ctx context.Context, portfolioId, ownerId int64) (*types.PortfolioSummary, error) {
	portfolio, err := s.portfolios.GetPortfolio(ctx, portfolioId, ownerId)
	if err != nil {
		return nil, err
	}
	assets, err := s.assets.ListAssetsByPortfolio(ctx, portfolioId)
	if err != nil {
		return nil, err
	}
	return Summarize(portfolio, assets), nil
}

// Summarize aggregates loaded assets into a portfolio summary. An asset with
// no current price contributes nothing to value but still counts as invested.
func Summarize(portfolio *types.Portfolio, assets []types.Asset) *types.PortfolioSummary {
	summary := &types.PortfolioSummary{
		PortfolioId:       portfolio.Id,
		Name:              portfolio.Name,
		TotalValue:        decimal.Zero,
		TotalInvested:     decimal.Zero,
		ProfitLoss:        decimal.Zero,
		ProfitLossPercent: decimal.Zero,
		AssetCount:        len(assets),
		Breakdown:         []types.KindBreakdown{},
	}
	if len(assets) == 0 {
		return summary
	}

	summary.TotalValue = totalValue(assets)
	summary.TotalInvested = totalInvested(assets)
	summary.ProfitLoss = summary.TotalValue.Sub(summary.TotalInvested)
	summary.ProfitLossPercent = percentage(summary.ProfitLoss, summary.TotalInvested)
	summary.LastPriceUpdate = lastPriceUpdate(assets)
	summary.Breakdown = breakdown(assets, summary.TotalValue)
	return summary
}

func totalValue(assets []types.Asset) decimal.Decimal {
	total := decimal.Zero
	for _, asset := range assets {
		if asset.CurrentPrice.Valid {
			total = total.Add(asset.CurrentPrice.Decimal.Mul(asset.Quantity))
		}
	}
	return total
}

func totalInvested(assets []types.Asset) decimal.Decimal {
	total := decimal.Zero
	for _, asset := range assets {
		total = total.Add(asset.AvgPurchasePrice.Mul(asset.Quantity))
	}
	return total
}

// percentage returns value/total*100 at percent scale, and zero for a
// non-positive total (documented policy, not an error).
func percentage(value, total decimal.Decimal) decimal.Decimal {
	if !total.IsPositive() {
		return decimal.Zero
	}
	return value.Mul(oneHundred).DivRound(total, percentScale)
}

func lastPriceUpdate(assets []types.Asset) *time.Time {
	var latest *time.Time
	for _, asset := range assets {
		if asset.PriceUpdatedAt == nil {
			continue
		}
		if latest == nil || asset.PriceUpdatedAt.After(*latest) {
			t := *asset.PriceUpdatedAt
			latest = &t
		}
	}
	return latest
}

func breakdown(assets []types.Asset, portfolioValue decimal.Decimal) []types.KindBreakdown {
	groups := make(map[types.AssetKind][]types.Asset)
	for _, asset := range assets {
		groups[asset.Kind] = append(groups[asset.Kind], asset)
	}

	out := make([]types.KindBreakdown, 0, len(groups))
	for kind, kindAssets := range groups {
		value := totalValue(kindAssets)
		invested := totalInvested(kindAssets)
		profitLoss := value.Sub(invested)
		out = append(out, types.KindBreakdown{
			Kind:                kind,
			TotalValue:          value,
			TotalInvested:       invested,
			ProfitLoss:          profitLoss,
			ProfitLossPercent:   percentage(profitLoss, invested),
			PortfolioPercentage: percentage(value, portfolioValue),
			AssetCount:          len(kindAssets),
		})
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].TotalValue.GreaterThan(out[j].TotalValue)
	})
	return out
}
