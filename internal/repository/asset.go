package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/anatoliydrake/atlas-portfolio/types"
	"github.com/jackc/pgx/v5"
)

const assetColumns = `id, portfolio_id, symbol, asset_kind, quantity, average_purchase_price,
	current_price, price_updated_at, coalesce(currency, ''), created_at, updated_at`

// GetAsset retrieves an asset scoped by (id, portfolio).
func (db *Database) GetAsset(ctx context.Context, assetId, portfolioId int64) (*types.Asset, error) {
	row := db.conn.QueryRow(ctx,
		`SELECT `+assetColumns+` FROM assets WHERE id = $1 AND portfolio_id = $2`,
		assetId, portfolioId)
	a, err := scanAsset(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("asset %d: %w", assetId, ErrAssetNotFound)
		}
		return nil, err
	}
	return a, nil
}

// ListAssetsByPortfolio retrieves every asset owned by a portfolio.
func (db *Database) ListAssetsByPortfolio(ctx context.Context, portfolioId int64) ([]types.Asset, error) {
	rows, err := db.conn.Query(ctx,
		`SELECT `+assetColumns+` FROM assets WHERE portfolio_id = $1 ORDER BY id`, portfolioId)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var assets []types.Asset
	for rows.Next() {
		a, err := scanAsset(rows)
		if err != nil {
			return nil, err
		}
		assets = append(assets, *a)
	}
	return assets, rows.Err()
}

func (db *Database) CreateAsset(ctx context.Context, a *types.Asset) error {
	return db.conn.QueryRow(ctx,
		`INSERT INTO assets (portfolio_id, symbol, asset_kind, quantity, average_purchase_price, currency)
		 VALUES ($1, $2, $3, $4, $5, nullif($6, ''))
		 RETURNING id, created_at, updated_at`,
		a.PortfolioId, a.Symbol, a.Kind, a.Quantity, a.AvgPurchasePrice, a.Currency).
		Scan(&a.Id, &a.CreatedAt, &a.ModifiedAt)
}

func (db *Database) UpdateAsset(ctx context.Context, a *types.Asset) error {
	err := db.conn.QueryRow(ctx,
		`UPDATE assets SET quantity = $1, average_purchase_price = $2, updated_at = now()
		 WHERE id = $3 AND portfolio_id = $4
		 RETURNING updated_at`,
		a.Quantity, a.AvgPurchasePrice, a.Id, a.PortfolioId).Scan(&a.ModifiedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("asset %d: %w", a.Id, ErrAssetNotFound)
	}
	return err
}

func (db *Database) DeleteAsset(ctx context.Context, assetId, portfolioId int64) error {
	tag, err := db.conn.Exec(ctx,
		`DELETE FROM assets WHERE id = $1 AND portfolio_id = $2`, assetId, portfolioId)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("asset %d: %w", assetId, ErrAssetNotFound)
	}
	return nil
}

func scanAsset(row pgx.Row) (*types.Asset, error) {
	var a types.Asset
	err := row.Scan(
		&a.Id,
		&a.PortfolioId,
		&a.Symbol,
		&a.Kind,
		&a.Quantity,
		&a.AvgPurchasePrice,
		&a.CurrentPrice,
		&a.PriceUpdatedAt,
		&a.Currency,
		&a.CreatedAt,
		&a.ModifiedAt,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}
