package inventory

import (
	"context"
	"fmt"

	"github.com/jhoicas/stock-engine/internal/domain"
	"github.com/jhoicas/stock-engine/internal/domain/entity"
	"github.com/jhoicas/stock-engine/internal/domain/inventory"
	"github.com/jhoicas/stock-engine/internal/domain/repository"
)

// defaultHistoryLimit tope del historial cuando el filtro no trae Limit.
const defaultHistoryLimit = 100

// StockQueryUseCase lecturas de saldos, historial y agregados por subárbol de ubicaciones.
type StockQueryUseCase struct {
	stock     repository.StockItemRepository
	movements repository.MovementRepository
	locations repository.LocationHierarchy
	catalog   repository.CatalogGateway
}

// NewStockQueryUseCase construye el caso de uso de consulta.
func NewStockQueryUseCase(
	stock repository.StockItemRepository,
	movements repository.MovementRepository,
	locations repository.LocationHierarchy,
	catalog repository.CatalogGateway,
) *StockQueryUseCase {
	return &StockQueryUseCase{stock: stock, movements: movements, locations: locations, catalog: catalog}
}

// GetStock saldo de un key; domain.ErrNotFound si nunca se creó.
func (uc *StockQueryUseCase) GetStock(ctx context.Context, key entity.StockKey) (*entity.StockItem, error) {
	if key.ItemID == "" || key.LocationID == "" {
		return nil, fmt.Errorf("%w: item_id y location_id son obligatorios", domain.ErrInvalidInput)
	}
	item, err := uc.stock.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrNotFound
	}
	return item, nil
}

// ListByItem todos los saldos de un producto (todas las ubicaciones y lotes).
func (uc *StockQueryUseCase) ListByItem(ctx context.Context, itemID string) ([]entity.StockItem, error) {
	if itemID == "" {
		return nil, fmt.Errorf("%w: item_id es obligatorio", domain.ErrInvalidInput)
	}
	return uc.stock.ListByItem(ctx, itemID)
}

// History movimientos filtrados, más recientes primero.
func (uc *StockQueryUseCase) History(ctx context.Context, filter repository.MovementFilter) ([]entity.Movement, error) {
	if filter.Limit <= 0 {
		filter.Limit = defaultHistoryLimit
	}
	if filter.From != nil && filter.To != nil && filter.To.Before(*filter.From) {
		return nil, fmt.Errorf("%w: el rango de fechas es inválido", domain.ErrInvalidInput)
	}
	return uc.movements.List(ctx, filter)
}

// MovementsByReference movimientos de un documento.
func (uc *StockQueryUseCase) MovementsByReference(ctx context.Context, referenceType, referenceID string) ([]entity.Movement, error) {
	return uc.movements.ListByReference(ctx, referenceType, referenceID)
}

// RollupSubtree saldo agregado de la ubicación y todos sus descendientes, agrupado por
// (producto, unidad de medida) y enriquecido con datos de catálogo.
func (uc *StockQueryUseCase) RollupSubtree(ctx context.Context, locationID string) ([]entity.StockRollup, error) {
	ok, err := uc.locations.Exists(ctx, locationID)
	if err != nil {
		return nil, fmt.Errorf("consultar ubicación %s: %w", locationID, err)
	}
	if !ok {
		return nil, domain.ErrNotFound
	}
	descendants, err := uc.locations.GetDescendantIDs(ctx, locationID)
	if err != nil {
		return nil, fmt.Errorf("descendientes de %s: %w", locationID, err)
	}
	ids := append([]string{locationID}, descendants...)

	items, err := uc.stock.ListByLocations(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("saldos del subárbol %s: %w", locationID, err)
	}
	rollups := inventory.RollupByItemAndUnit(items)
	if uc.catalog == nil || len(rollups) == 0 {
		return rollups, nil
	}
	enriched, err := uc.catalog.AttachCatalogData(ctx, rollups)
	if err != nil {
		return nil, fmt.Errorf("datos de catálogo: %w", err)
	}
	return enriched, nil
}

// SearchCatalog búsqueda de productos por SKU o nombre.
func (uc *StockQueryUseCase) SearchCatalog(ctx context.Context, term string, limit int) ([]entity.CatalogItem, error) {
	if uc.catalog == nil {
		return nil, nil
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return uc.catalog.SearchItems(ctx, term, limit)
}
