// Package memory implementa los puertos del motor en memoria: desarrollo local
// (STORAGE_DRIVER=memory) y tests. Las transacciones se serializan y sus escrituras
// se aplican de una sola vez al confirmar.
package memory

import (
	"context"
	"sync"

	appinv "github.com/jhoicas/stock-engine/internal/application/inventory"
	"github.com/jhoicas/stock-engine/internal/domain/entity"
)

var _ appinv.TxRunner = (*Store)(nil)

// Store estado completo en memoria.
type Store struct {
	sem chan struct{} // una transacción a la vez

	mu           sync.RWMutex
	stock        map[entity.StockKey]entity.StockItem
	movements    map[string]entity.Movement
	reservations map[string]entity.Reservation
	lots         map[string]entity.Lot
	locations    map[string]entity.Location
	settings     map[string]entity.LocationSettings
	catalog      map[string]entity.CatalogItem
}

// NewStore construye un almacenamiento vacío.
func NewStore() *Store {
	return &Store{
		sem:          make(chan struct{}, 1),
		stock:        make(map[entity.StockKey]entity.StockItem),
		movements:    make(map[string]entity.Movement),
		reservations: make(map[string]entity.Reservation),
		lots:         make(map[string]entity.Lot),
		locations:    make(map[string]entity.Location),
		settings:     make(map[string]entity.LocationSettings),
		catalog:      make(map[string]entity.CatalogItem),
	}
}

// Run ejecuta fn con repos atados a una transacción. Si fn falla nada se aplica.
func (s *Store) Run(ctx context.Context, fn func(ctx context.Context, repos appinv.TxRepos) error) error {
	select {
	case s.sem <- struct{}{}:
	case <-ctx.Done():
		return ctx.Err()
	}
	defer func() { <-s.sem }()

	t := s.begin()
	if err := fn(ctx, t.repos()); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	s.commit(t)
	return nil
}

// StockItems repositorio de saldos fuera de transacción.
func (s *Store) StockItems() *StockItemRepo { return &StockItemRepo{s: s} }

// Movements repositorio de movimientos fuera de transacción.
func (s *Store) Movements() *MovementRepo { return &MovementRepo{s: s} }

// Reservations repositorio de reservas fuera de transacción.
func (s *Store) Reservations() *ReservationRepo { return &ReservationRepo{s: s} }

// Lots repositorio de lotes fuera de transacción.
func (s *Store) Lots() *LotRepo { return &LotRepo{s: s} }

// tx escrituras pendientes de una transacción.
type tx struct {
	s            *Store
	stock        map[entity.StockKey]entity.StockItem
	movements    map[string]entity.Movement
	reservations map[string]entity.Reservation
	lots         map[string]entity.Lot
}

func (s *Store) begin() *tx {
	return &tx{
		s:            s,
		stock:        make(map[entity.StockKey]entity.StockItem),
		movements:    make(map[string]entity.Movement),
		reservations: make(map[string]entity.Reservation),
		lots:         make(map[string]entity.Lot),
	}
}

func (t *tx) repos() appinv.TxRepos {
	return appinv.TxRepos{
		Stock:        &StockItemRepo{s: t.s, t: t},
		Movements:    &MovementRepo{s: t.s, t: t},
		Reservations: &ReservationRepo{s: t.s, t: t},
		Lots:         &LotRepo{s: t.s, t: t},
	}
}

func (s *Store) commit(t *tx) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, v := range t.stock {
		s.stock[k] = v
	}
	for k, v := range t.movements {
		s.movements[k] = v
	}
	for k, v := range t.reservations {
		s.reservations[k] = v
	}
	for k, v := range t.lots {
		s.lots[k] = v
	}
}

// autocommit fuera de transacción cada escritura se confirma sola y toma el mismo
// turno que Run, así no se intercala con una transacción en curso.
func (s *Store) autocommit(t *tx, fn func(t *tx) error) error {
	if t != nil {
		return fn(t)
	}
	s.sem <- struct{}{}
	defer func() { <-s.sem }()
	t = s.begin()
	if err := fn(t); err != nil {
		return err
	}
	s.commit(t)
	return nil
}

// view lectura: dentro de una tx ve sus escrituras pendientes, fuera solo lo confirmado.
func (s *Store) view(t *tx, fn func(t *tx) error) error {
	if t == nil {
		t = s.begin()
	}
	return fn(t)
}

func (t *tx) getStock(k entity.StockKey) (entity.StockItem, bool) {
	if v, ok := t.stock[k]; ok {
		return v, true
	}
	t.s.mu.RLock()
	defer t.s.mu.RUnlock()
	v, ok := t.s.stock[k]
	return v, ok
}

func (t *tx) getMovement(id string) (entity.Movement, bool) {
	if v, ok := t.movements[id]; ok {
		return v, true
	}
	t.s.mu.RLock()
	defer t.s.mu.RUnlock()
	v, ok := t.s.movements[id]
	return v, ok
}

func (t *tx) getReservation(id string) (entity.Reservation, bool) {
	if v, ok := t.reservations[id]; ok {
		return v, true
	}
	t.s.mu.RLock()
	defer t.s.mu.RUnlock()
	v, ok := t.s.reservations[id]
	return v, ok
}

func (t *tx) getLot(n string) (entity.Lot, bool) {
	if v, ok := t.lots[n]; ok {
		return v, true
	}
	t.s.mu.RLock()
	defer t.s.mu.RUnlock()
	v, ok := t.s.lots[n]
	return v, ok
}

// snapshot* vistas combinadas (confirmado + pendiente de la tx).

func (t *tx) snapshotStock() []entity.StockItem {
	t.s.mu.RLock()
	merged := make(map[entity.StockKey]entity.StockItem, len(t.s.stock)+len(t.stock))
	for k, v := range t.s.stock {
		merged[k] = v
	}
	t.s.mu.RUnlock()
	for k, v := range t.stock {
		merged[k] = v
	}
	out := make([]entity.StockItem, 0, len(merged))
	for _, v := range merged {
		out = append(out, v)
	}
	return out
}

func (t *tx) snapshotMovements() []entity.Movement {
	t.s.mu.RLock()
	merged := make(map[string]entity.Movement, len(t.s.movements)+len(t.movements))
	for k, v := range t.s.movements {
		merged[k] = v
	}
	t.s.mu.RUnlock()
	for k, v := range t.movements {
		merged[k] = v
	}
	out := make([]entity.Movement, 0, len(merged))
	for _, v := range merged {
		out = append(out, v)
	}
	return out
}

func (t *tx) snapshotReservations() []entity.Reservation {
	t.s.mu.RLock()
	merged := make(map[string]entity.Reservation, len(t.s.reservations)+len(t.reservations))
	for k, v := range t.s.reservations {
		merged[k] = v
	}
	t.s.mu.RUnlock()
	for k, v := range t.reservations {
		merged[k] = v
	}
	out := make([]entity.Reservation, 0, len(merged))
	for _, v := range merged {
		out = append(out, v)
	}
	return out
}
