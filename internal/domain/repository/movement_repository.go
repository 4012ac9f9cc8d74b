package repository

import (
	"context"
	"time"

	"github.com/jhoicas/stock-engine/internal/domain/entity"
)

// MovementFilter filtros del historial de movimientos.
type MovementFilter struct {
	ItemID     string
	LocationID string
	From, To   *time.Time
	Limit      int
	Offset     int
}

// MovementRepository define el puerto de persistencia para el log de movimientos (append-mostly).
type MovementRepository interface {
	// Create inserta un movimiento nuevo. ID duplicado => domain.ErrDuplicate.
	Create(ctx context.Context, movement entity.Movement) error
	// Save actualiza un movimiento que sigue pending en el almacenamiento (pending -> completed|failed).
	// Un movimiento ya completado o fallido nunca se sobrescribe: domain.ErrConflict.
	Save(ctx context.Context, movement entity.Movement) error
	// GetByID devuelve (nil, nil) si no existe.
	GetByID(ctx context.Context, id string) (*entity.Movement, error)
	List(ctx context.Context, filter MovementFilter) ([]entity.Movement, error)
	ListByReference(ctx context.Context, referenceType, referenceID string) ([]entity.Movement, error)
}
