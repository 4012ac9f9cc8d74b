package entity

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-engine/internal/domain"
)

// ReservationStatus estados del libro de reservas.
type ReservationStatus string

const (
	ReservationPending  ReservationStatus = "pending"
	ReservationActive   ReservationStatus = "active"
	ReservationReleased ReservationStatus = "released"
	ReservationRejected ReservationStatus = "rejected"
	ReservationExpired  ReservationStatus = "expired"
)

// Reservation registro de auditoría (quién, por qué, hasta cuándo) sobre el contador
// ReservedQuantity del StockItem. El contador es la fuente de verdad del disponible.
// Las transiciones son de un solo sentido.
type Reservation struct {
	ID            string
	ItemID        string
	LocationID    string
	LotID         string
	Quantity      decimal.Decimal
	ReservedBy    string
	ReferenceType string
	ReferenceID   string
	Reason        string
	Status        ReservationStatus
	ExpiresAt     *time.Time
	MovementID    string // movimiento RESERVE que respalda la reserva (vacío si pending)
	ReleasedAt    *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// StockKey key del saldo reservado.
func (r Reservation) StockKey() StockKey {
	return StockKey{ItemID: r.ItemID, LocationID: r.LocationID, LotID: r.LotID}
}

// IsActive status == active y sin vencer.
func (r Reservation) IsActive(now time.Time) bool {
	if r.Status != ReservationActive {
		return false
	}
	return r.ExpiresAt == nil || now.Before(*r.ExpiresAt)
}

// Activate pending -> active (aprobación).
func (r Reservation) Activate(movementID string, now time.Time) (Reservation, error) {
	if r.Status != ReservationPending {
		return r, r.transitionError(ReservationActive)
	}
	next := r
	next.Status = ReservationActive
	next.MovementID = movementID
	next.UpdatedAt = now
	return next, nil
}

// Reject pending -> rejected.
func (r Reservation) Reject(now time.Time) (Reservation, error) {
	if r.Status != ReservationPending {
		return r, r.transitionError(ReservationRejected)
	}
	next := r
	next.Status = ReservationRejected
	next.UpdatedAt = now
	return next, nil
}

// Release active -> released, con timestamp.
func (r Reservation) Release(now time.Time) (Reservation, error) {
	if r.Status != ReservationActive {
		return r, r.transitionError(ReservationReleased)
	}
	next := r
	next.Status = ReservationReleased
	next.ReleasedAt = &now
	next.UpdatedAt = now
	return next, nil
}

// Expire pending|active -> expired.
func (r Reservation) Expire(now time.Time) (Reservation, error) {
	if r.Status != ReservationActive && r.Status != ReservationPending {
		return r, r.transitionError(ReservationExpired)
	}
	next := r
	next.Status = ReservationExpired
	next.UpdatedAt = now
	return next, nil
}

func (r Reservation) transitionError(to ReservationStatus) error {
	return fmt.Errorf("reserva %s: %s -> %s: %w", r.ID, r.Status, to, domain.ErrInvalidTransition)
}
