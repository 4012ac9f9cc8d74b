package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/jhoicas/stock-engine/internal/domain"
	"github.com/jhoicas/stock-engine/internal/domain/entity"
	"github.com/jhoicas/stock-engine/internal/domain/repository"
)

var _ repository.ReservationRepository = (*ReservationRepo)(nil)

// ReservationRepo libro de reservas en memoria.
type ReservationRepo struct {
	s *Store
	t *tx
}

func (r *ReservationRepo) Create(_ context.Context, res entity.Reservation) error {
	return r.s.autocommit(r.t, func(t *tx) error {
		if _, ok := t.getReservation(res.ID); ok {
			return fmt.Errorf("reserva %s: %w", res.ID, domain.ErrDuplicate)
		}
		t.reservations[res.ID] = res
		return nil
	})
}

func (r *ReservationRepo) Update(_ context.Context, res entity.Reservation) error {
	return r.s.autocommit(r.t, func(t *tx) error {
		if _, ok := t.getReservation(res.ID); !ok {
			return domain.ErrNotFound
		}
		t.reservations[res.ID] = res
		return nil
	})
}

func (r *ReservationRepo) GetByID(_ context.Context, id string) (*entity.Reservation, error) {
	var out *entity.Reservation
	err := r.s.view(r.t, func(t *tx) error {
		if v, ok := t.getReservation(id); ok {
			out = &v
		}
		return nil
	})
	return out, err
}

func (r *ReservationRepo) GetByIDForUpdate(ctx context.Context, id string) (*entity.Reservation, error) {
	return r.GetByID(ctx, id)
}

func (r *ReservationRepo) ListExpired(_ context.Context, now time.Time, limit int) ([]entity.Reservation, error) {
	var out []entity.Reservation
	err := r.s.view(r.t, func(t *tx) error {
		for _, v := range t.snapshotReservations() {
			if v.Status != entity.ReservationPending && v.Status != entity.ReservationActive {
				continue
			}
			if v.ExpiresAt == nil || v.ExpiresAt.After(now) {
				continue
			}
			out = append(out, v)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].ExpiresAt.Equal(*out[j].ExpiresAt) {
			return out[i].ExpiresAt.Before(*out[j].ExpiresAt)
		}
		return out[i].ID < out[j].ID
	})
	return paginate(out, 0, limit), nil
}

func (r *ReservationRepo) ListByReference(_ context.Context, referenceType, referenceID string) ([]entity.Reservation, error) {
	var out []entity.Reservation
	err := r.s.view(r.t, func(t *tx) error {
		for _, v := range t.snapshotReservations() {
			if v.ReferenceType == referenceType && v.ReferenceID == referenceID {
				out = append(out, v)
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
