package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/stock-engine/internal/domain/entity"
	"github.com/jhoicas/stock-engine/internal/domain/repository"
)

var _ repository.LotRepository = (*LotRepo)(nil)

// LotRepo registro de lotes sobre PostgreSQL (usable con pool o tx).
type LotRepo struct {
	q Querier
}

// NewLotRepository construye el adaptador. Pasar pool o tx (Querier).
func NewLotRepository(q Querier) *LotRepo {
	return &LotRepo{q: q}
}

// FindByLotNumber (nil, nil) si el lote no existe.
func (r *LotRepo) FindByLotNumber(ctx context.Context, lotNumber string) (*entity.Lot, error) {
	query := `SELECT lot_number, item_id, expires_at, created_at FROM lots WHERE lot_number = $1`
	var l entity.Lot
	err := r.q.QueryRow(ctx, query, lotNumber).Scan(&l.LotNumber, &l.ItemID, &l.ExpiresAt, &l.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get lot: %w", err)
	}
	return &l, nil
}

// CreateIfAbsent el primer registro del lote fija su vencimiento.
func (r *LotRepo) CreateIfAbsent(ctx context.Context, lot entity.Lot) error {
	query := `
		INSERT INTO lots (lot_number, item_id, expires_at, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (lot_number) DO NOTHING`
	if _, err := r.q.Exec(ctx, query, lot.LotNumber, lot.ItemID, lot.ExpiresAt, lot.CreatedAt); err != nil {
		return fmt.Errorf("create lot: %w", err)
	}
	return nil
}
