package pg

import (
	"context"

	"pricefeed-service/internal/application"
)

type HistoryRepo struct{ db *DB }

func NewHistoryRepo(db *DB) *HistoryRepo { return &HistoryRepo{db: db} }

func (r *HistoryRepo) Append(ctx context.Context, h application.PriceHistory) error {
	const q = `
        INSERT INTO price_history(symbol, asset_class, price, provenance, resolved_at)
        VALUES ($1, $2, $3, $4, $5)`
	_, err := r.db.Pool.Exec(ctx, q, h.Symbol, h.Class, h.Price, h.Provenance, h.ResolvedAt)
	return err
}

// Recent returns the latest history rows for a symbol, newest first.
func (r *HistoryRepo) Recent(ctx context.Context, symbol string, limit int) ([]application.PriceHistory, error) {
	const q = `
        SELECT symbol, asset_class, price, provenance, resolved_at
        FROM price_history
        WHERE symbol=$1
        ORDER BY resolved_at DESC
        LIMIT $2`
	rows, err := r.db.Pool.Query(ctx, q, symbol, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []application.PriceHistory
	for rows.Next() {
		var h application.PriceHistory
		if err := rows.Scan(&h.Symbol, &h.Class, &h.Price, &h.Provenance, &h.ResolvedAt); err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	return out, rows.Err()
}
