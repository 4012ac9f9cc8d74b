package repository

import (
	"context"
	"time"

	"github.com/jhoicas/stock-engine/internal/domain/entity"
)

// ReservationRepository puerto del libro de reservas (auditoría).
type ReservationRepository interface {
	Create(ctx context.Context, reservation entity.Reservation) error
	Update(ctx context.Context, reservation entity.Reservation) error
	// GetByID devuelve (nil, nil) si no existe.
	GetByID(ctx context.Context, id string) (*entity.Reservation, error)
	// GetByIDForUpdate bloquea la fila de la reserva dentro de la transacción.
	GetByIDForUpdate(ctx context.Context, id string) (*entity.Reservation, error)
	// ListExpired reservas pending o active con ExpiresAt <= now, las más antiguas primero.
	ListExpired(ctx context.Context, now time.Time, limit int) ([]entity.Reservation, error)
	ListByReference(ctx context.Context, referenceType, referenceID string) ([]entity.Reservation, error)
}
