package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/anatoliydrake/atlas-portfolio/types"
	"github.com/jackc/pgx/v5"
)

const portfolioColumns = `id, owner_id, name, coalesce(description, ''), created_at, updated_at`

// GetPortfolio retrieves a portfolio scoped by (id, owner).
func (db *Database) GetPortfolio(ctx context.Context, portfolioId, ownerId int64) (*types.Portfolio, error) {
	row := db.conn.QueryRow(ctx,
		`SELECT `+portfolioColumns+` FROM portfolios WHERE id = $1 AND owner_id = $2`,
		portfolioId, ownerId)
	p, err := scanPortfolio(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("portfolio %d: %w", portfolioId, ErrPortfolioNotFound)
		}
		return nil, err
	}
	return p, nil
}

// PortfolioExists reports whether a portfolio exists and is owned by ownerId.
func (db *Database) PortfolioExists(ctx context.Context, portfolioId, ownerId int64) (bool, error) {
	var exists bool
	err := db.conn.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM portfolios WHERE id = $1 AND owner_id = $2)`,
		portfolioId, ownerId).Scan(&exists)
	if err != nil {
		return false, err
	}
	return exists, nil
}

func (db *Database) ListPortfolios(ctx context.Context, ownerId int64) ([]types.Portfolio, error) {
	rows, err := db.conn.Query(ctx,
		`SELECT `+portfolioColumns+` FROM portfolios WHERE owner_id = $1 ORDER BY id`,
		ownerId)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var portfolios []types.Portfolio
	for rows.Next() {
		p, err := scanPortfolio(rows)
		if err != nil {
			return nil, err
		}
		portfolios = append(portfolios, *p)
	}
	return portfolios, rows.Err()
}

func (db *Database) CreatePortfolio(ctx context.Context, p *types.Portfolio) error {
	return db.conn.QueryRow(ctx,
		`INSERT INTO portfolios (owner_id, name, description)
		 VALUES ($1, $2, nullif($3, ''))
		 RETURNING id, created_at, updated_at`,
		p.OwnerId, p.Name, p.Description).Scan(&p.Id, &p.CreatedAt, &p.ModifiedAt)
}

func (db *Database) UpdatePortfolio(ctx context.Context, p *types.Portfolio) error {
	err := db.conn.QueryRow(ctx,
		`UPDATE portfolios SET name = $1, description = nullif($2, ''), updated_at = now()
		 WHERE id = $3 AND owner_id = $4
		 RETURNING updated_at`,
		p.Name, p.Description, p.Id, p.OwnerId).Scan(&p.ModifiedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("portfolio %d: %w", p.Id, ErrPortfolioNotFound)
	}
	return err
}

func (db *Database) DeletePortfolio(ctx context.Context, portfolioId, ownerId int64) error {
	tag, err := db.conn.Exec(ctx,
		`DELETE FROM portfolios WHERE id = $1 AND owner_id = $2`, portfolioId, ownerId)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("portfolio %d: %w", portfolioId, ErrPortfolioNotFound)
	}
	return nil
}

func scanPortfolio(row pgx.Row) (*types.Portfolio, error) {
	var p types.Portfolio
	err := row.Scan(&p.Id, &p.OwnerId, &p.Name, &p.Description, &p.CreatedAt, &p.ModifiedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}
