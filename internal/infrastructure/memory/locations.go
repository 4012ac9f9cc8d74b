package memory

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-engine/internal/domain"
	"github.com/jhoicas/stock-engine/internal/domain/entity"
	"github.com/jhoicas/stock-engine/internal/domain/inventory"
	"github.com/jhoicas/stock-engine/internal/domain/repository"
)

var (
	_ repository.LocationHierarchy          = (*Store)(nil)
	_ repository.LocationSettingsRepository = (*Store)(nil)
	_ repository.CapacityGateway            = (*Store)(nil)
)

// PutLocation registra o reemplaza una ubicación.
func (s *Store) PutLocation(l entity.Location) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.locations[l.ID] = l
}

// PutSettings registra la política de una ubicación.
func (s *Store) PutSettings(ls entity.LocationSettings) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings[ls.LocationID] = ls
}

func (s *Store) GetChildrenIDs(ctx context.Context, locationID string) ([]string, error) {
	return s.childrenOf(ctx, []string{locationID})
}

func (s *Store) GetDescendantIDs(ctx context.Context, locationID string) ([]string, error) {
	return inventory.CollectDescendants(ctx, locationID, s.childrenOf)
}

func (s *Store) GetParentID(_ context.Context, locationID string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	l, ok := s.locations[locationID]
	if !ok {
		return "", domain.ErrNotFound
	}
	return l.ParentID, nil
}

func (s *Store) GetAncestorIDs(ctx context.Context, locationID string) ([]string, error) {
	return inventory.CollectAncestors(ctx, locationID, s.GetParentID)
}

func (s *Store) Exists(_ context.Context, locationID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.locations[locationID]
	return ok, nil
}

func (s *Store) GetLocationType(_ context.Context, locationID string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	l, ok := s.locations[locationID]
	if !ok {
		return "", domain.ErrNotFound
	}
	return l.Type, nil
}

func (s *Store) FindByLocationID(_ context.Context, locationID string) (*entity.LocationSettings, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ls, ok := s.settings[locationID]
	if !ok {
		return nil, nil
	}
	return &ls, nil
}

// CanAcceptStock existencia confirmada de la ubicación + entrante contra MaxCapacity.
func (s *Store) CanAcceptStock(_ context.Context, locationID, _ string, quantity decimal.Decimal) (entity.CapacityValidationResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	l, ok := s.locations[locationID]
	if !ok {
		return entity.CapacityValidationResult{}, domain.ErrNotFound
	}
	used := decimal.Zero
	for _, it := range s.stock {
		if it.LocationID == locationID {
			used = used.Add(it.Quantity)
		}
	}
	return inventory.EvaluateCapacity(l.MaxCapacity, used, quantity), nil
}

func (s *Store) childrenOf(_ context.Context, parentIDs []string) ([]string, error) {
	parents := make(map[string]struct{}, len(parentIDs))
	for _, id := range parentIDs {
		parents[id] = struct{}{}
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []string
	for _, l := range s.locations {
		if _, ok := parents[l.ParentID]; ok && l.ParentID != "" {
			out = append(out, l.ID)
		}
	}
	sort.Strings(out)
	return out, nil
}
