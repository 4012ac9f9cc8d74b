package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/jhoicas/stock-engine/internal/domain"
	"github.com/jhoicas/stock-engine/internal/domain/entity"
	"github.com/jhoicas/stock-engine/internal/domain/repository"
)

var _ repository.StockItemRepository = (*StockItemRepo)(nil)

// StockItemRepo saldos en memoria. Con t != nil opera dentro de la transacción.
type StockItemRepo struct {
	s *Store
	t *tx
}

func (r *StockItemRepo) Get(_ context.Context, key entity.StockKey) (*entity.StockItem, error) {
	var out *entity.StockItem
	err := r.s.view(r.t, func(t *tx) error {
		if v, ok := t.getStock(key); ok {
			out = &v
		}
		return nil
	})
	return out, err
}

// GetForUpdate igual a Get: la transacción ya tiene acceso exclusivo.
func (r *StockItemRepo) GetForUpdate(ctx context.Context, key entity.StockKey) (*entity.StockItem, error) {
	return r.Get(ctx, key)
}

func (r *StockItemRepo) CreateIfAbsent(_ context.Context, item entity.StockItem) error {
	return r.s.autocommit(r.t, func(t *tx) error {
		if _, ok := t.getStock(item.Key()); ok {
			return nil
		}
		item.Version = 0
		t.stock[item.Key()] = item
		return nil
	})
}

func (r *StockItemRepo) Update(_ context.Context, item entity.StockItem) (entity.StockItem, error) {
	var saved entity.StockItem
	err := r.s.autocommit(r.t, func(t *tx) error {
		current, ok := t.getStock(item.Key())
		if !ok {
			return fmt.Errorf("stock item %s: %w", item.Key(), domain.ErrNotFound)
		}
		if current.Version != item.Version {
			return fmt.Errorf("stock item %s versión %d (actual %d): %w",
				item.Key(), item.Version, current.Version, domain.ErrConcurrentModification)
		}
		item.Version++
		t.stock[item.Key()] = item
		saved = item
		return nil
	})
	return saved, err
}

func (r *StockItemRepo) ListByItem(_ context.Context, itemID string) ([]entity.StockItem, error) {
	var out []entity.StockItem
	err := r.s.view(r.t, func(t *tx) error {
		for _, v := range t.snapshotStock() {
			if v.ItemID == itemID {
				out = append(out, v)
			}
		}
		return nil
	})
	sortStock(out)
	return out, err
}

func (r *StockItemRepo) ListByLocations(_ context.Context, locationIDs []string) ([]entity.StockItem, error) {
	wanted := make(map[string]struct{}, len(locationIDs))
	for _, id := range locationIDs {
		wanted[id] = struct{}{}
	}
	var out []entity.StockItem
	err := r.s.view(r.t, func(t *tx) error {
		for _, v := range t.snapshotStock() {
			if _, ok := wanted[v.LocationID]; ok {
				out = append(out, v)
			}
		}
		return nil
	})
	sortStock(out)
	return out, err
}

func sortStock(items []entity.StockItem) {
	sort.Slice(items, func(i, j int) bool {
		return items[i].Key().String() < items[j].Key().String()
	})
}
