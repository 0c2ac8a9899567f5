package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/anatoliydrake/atlas-portfolio/internal/repository"
	"github.com/anatoliydrake/atlas-portfolio/types"
	"github.com/shopspring/decimal"
)

// Global error declarations.
var (
	ErrInvalidSymbol   = errors.New("invalid symbol")
	ErrInvalidKind     = errors.New("invalid asset kind")
	ErrInvalidQuantity = errors.New("quantity must be positive")
	ErrInvalidPrice    = errors.New("average purchase price must be positive")
	ErrInvalidCurrency = errors.New("invalid currency code")
)

type CreateAssetInput struct {
	Symbol           string
	Kind             types.AssetKind
	Quantity         decimal.Decimal
	AvgPurchasePrice decimal.Decimal
	Currency         string
}

// UpdateAssetInput carries optional changes; nil means keep the current value.
type UpdateAssetInput struct {
	Quantity         *decimal.Decimal
	AvgPurchasePrice *decimal.Decimal
}

// AssetService manages assets within an owner-scoped portfolio.
type AssetService struct {
	portfolios portfolioStore
	assets     assetStore
}

func NewAssetService(portfolios portfolioStore, assets assetStore) *AssetService {
	return &AssetService{portfolios: portfolios, assets: assets}
}

func (s *AssetService) Create(ctx context.Context, portfolioId, ownerId int64, input CreateAssetInput) (*types.Asset, error) {
	if err := s.requirePortfolio(ctx, portfolioId, ownerId); err != nil {
		return nil, err
	}

	symbol := strings.ToUpper(strings.TrimSpace(input.Symbol))
	if symbol == "" || len(symbol) > types.MaxSymbolLen {
		return nil, ErrInvalidSymbol
	}
	if !input.Kind.Valid() {
		return nil, fmt.Errorf("%q: %w", input.Kind, ErrInvalidKind)
	}
	if !input.Quantity.IsPositive() {
		return nil, ErrInvalidQuantity
	}
	if !input.AvgPurchasePrice.IsPositive() {
		return nil, ErrInvalidPrice
	}

	currency := strings.ToUpper(strings.TrimSpace(input.Currency))
	if input.Kind == types.AssetKindCash {
		if money.GetCurrency(currency) == nil {
			return nil, fmt.Errorf("%q: %w", currency, ErrInvalidCurrency)
		}
	} else if currency != "" {
		return nil, fmt.Errorf("currency is only valid for cash assets: %w", ErrInvalidCurrency)
	}

	asset := &types.Asset{
		PortfolioId:      portfolioId,
		Symbol:           symbol,
		Kind:             input.Kind,
		Quantity:         input.Quantity,
		AvgPurchasePrice: input.AvgPurchasePrice,
		Currency:         currency,
	}
	if err := s.assets.CreateAsset(ctx, asset); err != nil {
		return nil, err
	}
	return asset, nil
}

func (s *AssetService) Get(ctx context.Context, portfolioId, assetId, ownerId int64) (*types.Asset, error) {
	if err := s.requirePortfolio(ctx, portfolioId, ownerId); err != nil {
		return nil, err
	}
	return s.assets.GetAsset(ctx, assetId, portfolioId)
}

func (s *AssetService) List(ctx context.Context, portfolioId, ownerId int64) ([]types.Asset, error) {
	if err := s.requirePortfolio(ctx, portfolioId, ownerId); err != nil {
		return nil, err
	}
	return s.assets.ListAssetsByPortfolio(ctx, portfolioId)
}

func (s *AssetService) Update(ctx context.Context, portfolioId, assetId, ownerId int64, input UpdateAssetInput) (*types.Asset, error) {
	if err := s.requirePortfolio(ctx, portfolioId, ownerId); err != nil {
		return nil, err
	}

	asset, err := s.assets.GetAsset(ctx, assetId, portfolioId)
	if err != nil {
		return nil, err
	}

	if input.Quantity != nil {
		if !input.Quantity.IsPositive() {
			return nil, ErrInvalidQuantity
		}
		asset.Quantity = *input.Quantity
	}
	if input.AvgPurchasePrice != nil {
		if !input.AvgPurchasePrice.IsPositive() {
			return nil, ErrInvalidPrice
		}
		asset.AvgPurchasePrice = *input.AvgPurchasePrice
	}

	if err := s.assets.UpdateAsset(ctx, asset); err != nil {
		return nil, err
	}
	return asset, nil
}

func (s *AssetService) Delete(ctx context.Context, portfolioId, assetId, ownerId int64) error {
	if err := s.requirePortfolio(ctx, portfolioId, ownerId); err != nil {
		return err
	}
	return s.assets.DeleteAsset(ctx, assetId, portfolioId)
}

func (s *AssetService) requirePortfolio(ctx context.Context, portfolioId, ownerId int64) error {
	exists, err := s.portfolios.PortfolioExists(ctx, portfolioId, ownerId)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("portfolio %d: %w", portfolioId, repository.ErrPortfolioNotFound)
	}
	return nil
}
