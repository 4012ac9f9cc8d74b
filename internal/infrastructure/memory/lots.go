package memory

import (
	"context"

	"github.com/jhoicas/stock-engine/internal/domain/entity"
	"github.com/jhoicas/stock-engine/internal/domain/repository"
)

var _ repository.LotRepository = (*LotRepo)(nil)

// LotRepo registro de lotes en memoria.
type LotRepo struct {
	s *Store
	t *tx
}

func (r *LotRepo) FindByLotNumber(_ context.Context, lotNumber string) (*entity.Lot, error) {
	var out *entity.Lot
	err := r.s.view(r.t, func(t *tx) error {
		if v, ok := t.getLot(lotNumber); ok {
			out = &v
		}
		return nil
	})
	return out, err
}

func (r *LotRepo) CreateIfAbsent(_ context.Context, lot entity.Lot) error {
	return r.s.autocommit(r.t, func(t *tx) error {
		if _, ok := t.getLot(lot.LotNumber); !ok {
			t.lots[lot.LotNumber] = lot
		}
		return nil
	})
}
