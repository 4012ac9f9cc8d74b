package memory

import (
	"context"
	"sort"
	"strings"

	"github.com/jhoicas/stock-engine/internal/domain/entity"
	"github.com/jhoicas/stock-engine/internal/domain/repository"
	"github.com/jhoicas/stock-engine/pkg/textnorm"
)

var _ repository.CatalogGateway = (*Store)(nil)

// PutCatalogItem registra o reemplaza un producto del catálogo.
func (s *Store) PutCatalogItem(it entity.CatalogItem) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.catalog[it.ID] = it
}

func (s *Store) GetItem(_ context.Context, id string) (*entity.CatalogItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	it, ok := s.catalog[id]
	if !ok {
		return nil, nil
	}
	return &it, nil
}

func (s *Store) SearchItems(_ context.Context, term string, limit int) ([]entity.CatalogItem, error) {
	needle := textnorm.Fold(term)
	s.mu.RLock()
	var out []entity.CatalogItem
	for _, it := range s.catalog {
		if strings.Contains(strings.ToLower(it.SKU), needle) || strings.Contains(textnorm.Fold(it.Name), needle) {
			out = append(out, it)
		}
	}
	s.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].SKU < out[j].SKU })
	return paginate(out, 0, limit), nil
}

func (s *Store) AttachCatalogData(_ context.Context, rollups []entity.StockRollup) ([]entity.StockRollup, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]entity.StockRollup, len(rollups))
	for i, ru := range rollups {
		if it, ok := s.catalog[ru.ItemID]; ok {
			item := it
			ru.Item = &item
		}
		out[i] = ru
	}
	return out, nil
}
