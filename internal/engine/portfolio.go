package engine

import (
	"context"
	"errors"
	"strings"

	"github.com/anatoliydrake/atlas-portfolio/types"
)

// Global error declarations.
var (
	ErrInvalidName        = errors.New("portfolio name is required")
	ErrInvalidDescription = errors.New("portfolio description too long")
)

// PortfolioService manages portfolio CRUD, always scoped by owner.
type PortfolioService struct {
	portfolios portfolioStore
}

func NewPortfolioService(portfolios portfolioStore) *PortfolioService {
	return &PortfolioService{portfolios: portfolios}
}

func (s *PortfolioService) Create(ctx context.Context, ownerId int64, name, description string) (*types.Portfolio, error) {
	name = strings.TrimSpace(name)
	if err := validatePortfolioFields(name, description); err != nil {
		return nil, err
	}

	portfolio := &types.Portfolio{
		OwnerId:     ownerId,
		Name:        name,
		Description: description,
	}
	if err := s.portfolios.CreatePortfolio(ctx, portfolio); err != nil {
		return nil, err
	}
	return portfolio, nil
}

func (s *PortfolioService) Get(ctx context.Context, portfolioId, ownerId int64) (*types.Portfolio, error) {
	return s.portfolios.GetPortfolio(ctx, portfolioId, ownerId)
}

func (s *PortfolioService) List(ctx context.Context, ownerId int64) ([]types.Portfolio, error) {
	return s.portfolios.ListPortfolios(ctx, ownerId)
}

// Update applies only the provided fields; nil means keep the current value.
func (s *PortfolioService) Update(ctx context.Context, portfolioId, ownerId int64, name, description *string) (*types.Portfolio, error) {
	portfolio, err := s.portfolios.GetPortfolio(ctx, portfolioId, ownerId)
	if err != nil {
		return nil, err
	}

	if name != nil {
		portfolio.Name = strings.TrimSpace(*name)
	}
	if description != nil {
		portfolio.Description = *description
	}
	if err := validatePortfolioFields(portfolio.Name, portfolio.Description); err != nil {
		return nil, err
	}

	if err := s.portfolios.UpdatePortfolio(ctx, portfolio); err != nil {
		return nil, err
	}
	return portfolio, nil
}

func (s *PortfolioService) Delete(ctx context.Context, portfolioId, ownerId int64) error {
	return s.portfolios.DeletePortfolio(ctx, portfolioId, ownerId)
}

func validatePortfolioFields(name, description string) error {
	if name == "" || len(name) > types.MaxNameLen {
		return ErrInvalidName
	}
	if len(description) > types.MaxDescriptionLen {
		return ErrInvalidDescription
	}
	return nil
}
