package inventory

import (
	"context"
	"time"

	"github.com/jhoicas/stock-engine/internal/domain/entity"
	"github.com/jhoicas/stock-engine/internal/domain/repository"
)

// TxRepos repositorios atados a una misma transacción.
type TxRepos struct {
	Stock        repository.StockItemRepository
	Movements    repository.MovementRepository
	Reservations repository.ReservationRepository
	Lots         repository.LotRepository
}

// TxRunner ejecuta una función dentro de una transacción, pasando repositorios atados a esa tx.
// Si fn devuelve error se hace Rollback; si no, Commit. Garantiza atomicidad del motor.
type TxRunner interface {
	Run(ctx context.Context, fn func(ctx context.Context, repos TxRepos) error) error
}

// MovementEvent evento publicado después del commit de un movimiento.
type MovementEvent struct {
	Movement      entity.Movement
	PreviousStock entity.StockItem
	Stock         entity.StockItem
	OccurredAt    time.Time
}

// EventPublisher publica eventos de dominio fuera de la transacción (best effort).
type EventPublisher interface {
	PublishMovementCompleted(ctx context.Context, evt MovementEvent) error
}

// NoopPublisher descarta los eventos.
type NoopPublisher struct{}

func (NoopPublisher) PublishMovementCompleted(context.Context, MovementEvent) error { return nil }

// StockReportGenerator genera la representación PDF de un reporte de saldos.
type StockReportGenerator interface {
	GenerateStockReport(report StockReport) ([]byte, error)
}
