package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/jhoicas/stock-engine/internal/domain"
	"github.com/jhoicas/stock-engine/internal/domain/entity"
	"github.com/jhoicas/stock-engine/internal/domain/repository"
)

var _ repository.MovementRepository = (*MovementRepo)(nil)

// MovementRepo log de movimientos en memoria.
type MovementRepo struct {
	s *Store
	t *tx
}

func (r *MovementRepo) Create(_ context.Context, m entity.Movement) error {
	return r.s.autocommit(r.t, func(t *tx) error {
		if _, ok := t.getMovement(m.ID); ok {
			return fmt.Errorf("movimiento %s: %w", m.ID, domain.ErrDuplicate)
		}
		t.movements[m.ID] = cloneMovement(m)
		return nil
	})
}

func (r *MovementRepo) Save(_ context.Context, m entity.Movement) error {
	return r.s.autocommit(r.t, func(t *tx) error {
		current, ok := t.getMovement(m.ID)
		if !ok {
			return fmt.Errorf("movimiento %s: %w", m.ID, domain.ErrNotFound)
		}
		if current.Status != entity.MovementStatusPending {
			return fmt.Errorf("movimiento %s no está pendiente: %w", m.ID, domain.ErrConflict)
		}
		t.movements[m.ID] = cloneMovement(m)
		return nil
	})
}

func (r *MovementRepo) GetByID(_ context.Context, id string) (*entity.Movement, error) {
	var out *entity.Movement
	err := r.s.view(r.t, func(t *tx) error {
		if v, ok := t.getMovement(id); ok {
			c := cloneMovement(v)
			out = &c
		}
		return nil
	})
	return out, err
}

func (r *MovementRepo) List(_ context.Context, f repository.MovementFilter) ([]entity.Movement, error) {
	var out []entity.Movement
	err := r.s.view(r.t, func(t *tx) error {
		for _, m := range t.snapshotMovements() {
			switch {
			case f.ItemID != "" && m.ItemID != f.ItemID:
				continue
			case f.LocationID != "" && m.LocationID != f.LocationID:
				continue
			case f.From != nil && m.CreatedAt.Before(*f.From):
				continue
			case f.To != nil && m.CreatedAt.After(*f.To):
				continue
			}
			out = append(out, cloneMovement(m))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return paginate(out, f.Offset, f.Limit), nil
}

func (r *MovementRepo) ListByReference(_ context.Context, referenceType, referenceID string) ([]entity.Movement, error) {
	var out []entity.Movement
	err := r.s.view(r.t, func(t *tx) error {
		for _, m := range t.snapshotMovements() {
			if m.ReferenceType == referenceType && m.ReferenceID == referenceID {
				out = append(out, cloneMovement(m))
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, err
}

// cloneMovement copia el mapa de metadata para que el llamador no mute el almacenado.
func cloneMovement(m entity.Movement) entity.Movement {
	if m.Metadata != nil {
		md := make(map[string]any, len(m.Metadata))
		for k, v := range m.Metadata {
			md[k] = v
		}
		m.Metadata = md
	}
	return m
}

func paginate[T any](items []T, offset, limit int) []T {
	if offset >= len(items) {
		return nil
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
