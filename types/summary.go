package types

import (
	"time"

	"github.com/shopspring/decimal"
)

// PortfolioSummary is a derived view, never persisted.
type PortfolioSummary struct {
	PortfolioId       int64           `json:"portfolioId"`
	Name              string          `json:"name"`
	TotalValue        decimal.Decimal `json:"totalValue"`
	TotalInvested     decimal.Decimal `json:"totalInvested"`
	ProfitLoss        decimal.Decimal `json:"profitLoss"`
	ProfitLossPercent decimal.Decimal `json:"profitLossPercent"`
	AssetCount        int             `json:"assetCount"`
	LastPriceUpdate   *time.Time      `json:"lastPriceUpdate"`
	Breakdown         []KindBreakdown `json:"breakdown"`
}

// KindBreakdown aggregates one asset kind within a portfolio.
type KindBreakdown struct {
	Kind                AssetKind       `json:"kind"`
	TotalValue          decimal.Decimal `json:"totalValue"`
	TotalInvested       decimal.Decimal `json:"totalInvested"`
	ProfitLoss          decimal.Decimal `json:"profitLoss"`
	ProfitLossPercent   decimal.Decimal `json:"profitLossPercent"`
	PortfolioPercentage decimal.Decimal `json:"portfolioPercentage"`
	AssetCount          int             `json:"assetCount"`
}
