package engine

import (
	"context"

	"github.com/anatoliydrake/atlas-portfolio/types"
	"github.com/shopspring/decimal"
)

type portfolioStore interface {
	GetPortfolio(ctx context.Context, portfolioId, ownerId int64) (*types.Portfolio, error)
	PortfolioExists(ctx context.Context, portfolioId, ownerId int64) (bool, error)
	ListPortfolios(ctx context.Context, ownerId int64) ([]types.Portfolio, error)
	CreatePortfolio(ctx context.Context, p *types.Portfolio) error
	UpdatePortfolio(ctx context.Context, p *types.Portfolio) error
	DeletePortfolio(ctx context.Context, portfolioId, ownerId int64) error
}

type assetStore interface {
	GetAsset(ctx context.Context, assetId, portfolioId int64) (*types.Asset, error)
	ListAssetsByPortfolio(ctx context.Context, portfolioId int64) ([]types.Asset, error)
	CreateAsset(ctx context.Context, a *types.Asset) error
	UpdateAsset(ctx context.Context, a *types.Asset) error
	DeleteAsset(ctx context.Context, assetId, portfolioId int64) error
}

type priceStore interface {
	BatchUpdatePrices(ctx context.Context, updates []types.PriceUpdate) error
}

type quoteSource interface {
	FetchQuote(ctx context.Context, symbol string) (decimal.Decimal, error)
}

// symbolMapper owns the provider's crypto exchange-pair convention.
type symbolMapper interface {
	CryptoSymbol(symbol string) string
}

type rateProvider interface {
	GetRate(ctx context.Context, from, to string) (decimal.Decimal, error)
}
