package repository

import (
	"context"

	"github.com/jhoicas/stock-engine/internal/domain/entity"
)

// CatalogGateway puerto de lectura del catálogo (colaborador externo).
type CatalogGateway interface {
	// GetItem devuelve (nil, nil) si el producto no existe.
	GetItem(ctx context.Context, id string) (*entity.CatalogItem, error)
	// SearchItems búsqueda por SKU o nombre, sin distinguir mayúsculas ni tildes.
	SearchItems(ctx context.Context, term string, limit int) ([]entity.CatalogItem, error)
	// AttachCatalogData enriquece los rollups en lote (una consulta, no una por fila).
	AttachCatalogData(ctx context.Context, rollups []entity.StockRollup) ([]entity.StockRollup, error)
}

// LotRepository registro de lotes.
type LotRepository interface {
	// FindByLotNumber devuelve (nil, nil) si el lote no existe.
	FindByLotNumber(ctx context.Context, lotNumber string) (*entity.Lot, error)
	// CreateIfAbsent idempotente: si el lote ya existe no hace nada.
	CreateIfAbsent(ctx context.Context, lot entity.Lot) error
}
