package repository

import (
	"context"

	"github.com/anatoliydrake/atlas-portfolio/types"
	"github.com/jackc/pgx/v5"
)

// BatchUpdatePrices writes all fetched prices in one round trip. An empty
// batch is a no-op.
func (db *Database) BatchUpdatePrices(ctx context.Context, updates []types.PriceUpdate) error {
	if len(updates) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, update := range updates {
		batch.Queue(
			`UPDATE assets SET current_price = $1, price_updated_at = $2 WHERE id = $3`,
			update.Price, update.UpdatedAt, update.AssetId)
	}
	br := db.conn.SendBatch(ctx, batch)
	defer br.Close()

	for range updates {
		if _, err := br.Exec(); err != nil {
			return err
		}
	}
	return nil
}
