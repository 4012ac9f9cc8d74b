package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/stock-engine/internal/domain"
	"github.com/jhoicas/stock-engine/internal/domain/entity"
	"github.com/jhoicas/stock-engine/internal/domain/repository"
)

var _ repository.StockItemRepository = (*StockItemRepo)(nil)

const stockItemColumns = `id, item_id, location_id, lot_id, unit_of_measure_id,
	quantity, reserved_quantity, version, created_at, updated_at`

// StockItemRepo implementación de StockItemRepository sobre PostgreSQL (usable con pool o tx).
type StockItemRepo struct {
	q Querier
}

// NewStockItemRepository construye el adaptador de saldos. Pasar pool o tx (Querier).
func NewStockItemRepository(q Querier) *StockItemRepo {
	return &StockItemRepo{q: q}
}

// Get obtiene el saldo de un key; (nil, nil) si no existe.
func (r *StockItemRepo) Get(ctx context.Context, key entity.StockKey) (*entity.StockItem, error) {
	query := `SELECT ` + stockItemColumns + `
		FROM stock_items WHERE item_id = $1 AND location_id = $2 AND lot_id = $3`
	s, err := scanStockItem(r.q.QueryRow(ctx, query, key.ItemID, key.LocationID, key.LotID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get stock item: %w", err)
	}
	return s, nil
}

// GetForUpdate obtiene el saldo y bloquea la fila (SELECT FOR UPDATE); (nil, nil) si no existe.
func (r *StockItemRepo) GetForUpdate(ctx context.Context, key entity.StockKey) (*entity.StockItem, error) {
	query := `SELECT ` + stockItemColumns + `
		FROM stock_items WHERE item_id = $1 AND location_id = $2 AND lot_id = $3
		FOR UPDATE`
	s, err := scanStockItem(r.q.QueryRow(ctx, query, key.ItemID, key.LocationID, key.LotID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get stock item for update: %w", err)
	}
	return s, nil
}

// CreateIfAbsent inserta el saldo en cero; si otra transacción ya lo creó no hace nada.
func (r *StockItemRepo) CreateIfAbsent(ctx context.Context, item entity.StockItem) error {
	query := `
		INSERT INTO stock_items (` + stockItemColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, 0, $8, $9)
		ON CONFLICT (item_id, location_id, lot_id) DO NOTHING`
	_, err := r.q.Exec(ctx, query,
		item.ID, item.ItemID, item.LocationID, item.LotID, item.UnitOfMeasureID,
		item.Quantity, item.ReservedQuantity, item.CreatedAt, item.UpdatedAt,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("create stock item %s: %w", item.Key(), domain.ErrNotFound)
		}
		return fmt.Errorf("create stock item: %w", err)
	}
	return nil
}

// Update guarda el snapshot con chequeo de versión y devuelve la fila actualizada.
func (r *StockItemRepo) Update(ctx context.Context, item entity.StockItem) (entity.StockItem, error) {
	query := `
		UPDATE stock_items
		SET quantity = $2, reserved_quantity = $3, unit_of_measure_id = $4,
		    version = version + 1, updated_at = $5
		WHERE id = $1 AND version = $6
		RETURNING ` + stockItemColumns
	s, err := scanStockItem(r.q.QueryRow(ctx, query,
		item.ID, item.Quantity, item.ReservedQuantity, item.UnitOfMeasureID, item.UpdatedAt, item.Version,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return entity.StockItem{}, fmt.Errorf("stock item %s versión %d: %w", item.ID, item.Version, domain.ErrConcurrentModification)
		}
		return entity.StockItem{}, fmt.Errorf("update stock item: %w", err)
	}
	return *s, nil
}

// ListByItem saldos de un producto en todas las ubicaciones.
func (r *StockItemRepo) ListByItem(ctx context.Context, itemID string) ([]entity.StockItem, error) {
	query := `SELECT ` + stockItemColumns + `
		FROM stock_items WHERE item_id = $1 ORDER BY location_id, lot_id`
	return r.list(ctx, query, itemID)
}

// ListByLocations saldos de un conjunto de ubicaciones (una sola consulta).
func (r *StockItemRepo) ListByLocations(ctx context.Context, locationIDs []string) ([]entity.StockItem, error) {
	if len(locationIDs) == 0 {
		return nil, nil
	}
	query := `SELECT ` + stockItemColumns + `
		FROM stock_items WHERE location_id = ANY($1) ORDER BY item_id, location_id, lot_id`
	return r.list(ctx, query, locationIDs)
}

func (r *StockItemRepo) list(ctx context.Context, query string, args ...any) ([]entity.StockItem, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list stock items: %w", err)
	}
	defer rows.Close()
	var list []entity.StockItem
	for rows.Next() {
		s, err := scanStockItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan stock item: %w", err)
		}
		list = append(list, *s)
	}
	return list, rows.Err()
}

func scanStockItem(row pgx.Row) (*entity.StockItem, error) {
	var s entity.StockItem
	err := row.Scan(
		&s.ID, &s.ItemID, &s.LocationID, &s.LotID, &s.UnitOfMeasureID,
		&s.Quantity, &s.ReservedQuantity, &s.Version, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}
