package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/stock-engine/internal/domain/entity"
	"github.com/jhoicas/stock-engine/internal/domain/repository"
	"github.com/jhoicas/stock-engine/pkg/textnorm"
)

var _ repository.CatalogGateway = (*CatalogRepo)(nil)

// CatalogRepo lectura del catálogo replicado en catalog_items.
// search_name guarda el nombre normalizado (textnorm.Fold) para buscar sin tildes.
type CatalogRepo struct {
	pool *pgxpool.Pool
}

// NewCatalogRepository construye el adaptador del catálogo.
func NewCatalogRepository(pool *pgxpool.Pool) *CatalogRepo {
	return &CatalogRepo{pool: pool}
}

// GetItem (nil, nil) si el producto no existe.
func (r *CatalogRepo) GetItem(ctx context.Context, id string) (*entity.CatalogItem, error) {
	query := `SELECT id, workspace_id, sku, name, unit_of_measure_id FROM catalog_items WHERE id = $1`
	var it entity.CatalogItem
	err := r.pool.QueryRow(ctx, query, id).Scan(&it.ID, &it.WorkspaceID, &it.SKU, &it.Name, &it.UnitOfMeasureID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get catalog item: %w", err)
	}
	return &it, nil
}

// SearchItems coincidencia parcial por SKU o nombre normalizado.
func (r *CatalogRepo) SearchItems(ctx context.Context, term string, limit int) ([]entity.CatalogItem, error) {
	pattern := "%" + textnorm.Fold(term) + "%"
	query := `
		SELECT id, workspace_id, sku, name, unit_of_measure_id
		FROM catalog_items
		WHERE lower(sku) LIKE $1 OR search_name LIKE $1
		ORDER BY sku
		LIMIT $2`
	rows, err := r.pool.Query(ctx, query, pattern, limit)
	if err != nil {
		return nil, fmt.Errorf("search catalog: %w", err)
	}
	defer rows.Close()
	var list []entity.CatalogItem
	for rows.Next() {
		var it entity.CatalogItem
		if err := rows.Scan(&it.ID, &it.WorkspaceID, &it.SKU, &it.Name, &it.UnitOfMeasureID); err != nil {
			return nil, fmt.Errorf("scan catalog item: %w", err)
		}
		list = append(list, it)
	}
	return list, rows.Err()
}

// AttachCatalogData enriquece los rollups con una sola consulta (id = ANY).
func (r *CatalogRepo) AttachCatalogData(ctx context.Context, rollups []entity.StockRollup) ([]entity.StockRollup, error) {
	ids := make([]string, 0, len(rollups))
	seen := make(map[string]struct{}, len(rollups))
	for _, ru := range rollups {
		if _, ok := seen[ru.ItemID]; ok {
			continue
		}
		seen[ru.ItemID] = struct{}{}
		ids = append(ids, ru.ItemID)
	}

	rows, err := r.pool.Query(ctx,
		`SELECT id, workspace_id, sku, name, unit_of_measure_id FROM catalog_items WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, fmt.Errorf("attach catalog data: %w", err)
	}
	defer rows.Close()
	byID := make(map[string]entity.CatalogItem, len(ids))
	for rows.Next() {
		var it entity.CatalogItem
		if err := rows.Scan(&it.ID, &it.WorkspaceID, &it.SKU, &it.Name, &it.UnitOfMeasureID); err != nil {
			return nil, fmt.Errorf("scan catalog item: %w", err)
		}
		byID[it.ID] = it
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	out := make([]entity.StockRollup, len(rollups))
	for i, ru := range rollups {
		if it, ok := byID[ru.ItemID]; ok {
			item := it
			ru.Item = &item
		}
		out[i] = ru
	}
	return out, nil
}
