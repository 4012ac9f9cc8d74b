package repository

import (
	"context"

	"github.com/jhoicas/stock-engine/internal/domain/entity"
)

// StockItemRepository define el puerto para consultar/actualizar saldos por (producto, ubicación, lote).
// Usado dentro de transacciones para garantizar consistencia.
type StockItemRepository interface {
	// Get lectura sin bloqueo. Devuelve (nil, nil) si el saldo no existe.
	Get(ctx context.Context, key entity.StockKey) (*entity.StockItem, error)
	// GetForUpdate bloquea la fila (SELECT FOR UPDATE) hasta el fin de la transacción.
	// Devuelve (nil, nil) si el saldo no existe.
	GetForUpdate(ctx context.Context, key entity.StockKey) (*entity.StockItem, error)
	// CreateIfAbsent inserta el saldo si el key no existe; si ya existe no hace nada.
	CreateIfAbsent(ctx context.Context, item entity.StockItem) error
	// Update guarda el snapshot si Version coincide con la almacenada e incrementa la versión.
	// Devuelve domain.ErrConcurrentModification si la versión cambió.
	Update(ctx context.Context, item entity.StockItem) (entity.StockItem, error)
	ListByItem(ctx context.Context, itemID string) ([]entity.StockItem, error)
	ListByLocations(ctx context.Context, locationIDs []string) ([]entity.StockItem, error)
}
