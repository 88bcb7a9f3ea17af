package pg

import (
	"context"

	"pricefeed-service/internal/application"
	"pricefeed-service/internal/domain"
)

type PositionRepo struct{ db *DB }

func NewPositionRepo(db *DB) *PositionRepo { return &PositionRepo{db: db} }

func (r *PositionRepo) List(ctx context.Context) ([]domain.Position, error) {
	const q = `
        SELECT id, symbol, name, asset_class, entry_price, multiplier, notes
        FROM positions
        ORDER BY created_at, id`
	rows, err := r.db.Pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Position
	for rows.Next() {
		var p domain.Position
		if err := rows.Scan(&p.ID, &p.Symbol, &p.Name, &p.Class, &p.EntryPrice, &p.Multiplier, &p.Notes); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *PositionRepo) GetByID(ctx context.Context, id string) (domain.Position, error) {
	const q = `
        SELECT id, symbol, name, asset_class, entry_price, multiplier, notes
        FROM positions WHERE id=$1`
	var p domain.Position
	if err := r.db.Pool.QueryRow(ctx, q, id).Scan(&p.ID, &p.Symbol, &p.Name, &p.Class, &p.EntryPrice, &p.Multiplier, &p.Notes); err != nil {
		return domain.Position{}, application.ErrNotFound
	}
	return p, nil
}

func (r *PositionRepo) Create(ctx context.Context, p domain.Position) error {
	const q = `
        INSERT INTO positions(id, symbol, name, asset_class, entry_price, multiplier, notes)
        VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.db.Pool.Exec(ctx, q, p.ID, p.Symbol, p.Name, p.Class, p.EntryPrice, p.Multiplier, p.Notes)
	return err
}

func (r *PositionRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Pool.Exec(ctx, `DELETE FROM positions WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return application.ErrNotFound
	}
	return nil
}
