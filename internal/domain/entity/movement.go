package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// MovementStatus estado del movimiento: pending -> completed | failed.
type MovementStatus string

const (
	MovementStatusPending   MovementStatus = "pending"
	MovementStatusCompleted MovementStatus = "completed"
	MovementStatusFailed    MovementStatus = "failed"
)

// Movement describe un cambio de stock solicitado o aplicado.
// Quantity es siempre una magnitud no negativa: la dirección la da Type.
// Una vez completed es historial de auditoría; las correcciones son movimientos compensatorios.
type Movement struct {
	ID                    string
	Type                  MovementType
	CustomType            string // clave del handler cuando Type == custom (ej. "loan_out")
	ItemID                string
	LocationID            string
	SourceLocationID      string // traslados
	DestinationLocationID string // traslados
	Quantity              decimal.Decimal
	LotID                 string
	ReferenceType         string // orden, factura, reserva, conteo...
	ReferenceID           string
	Reason                string
	PerformedBy           string // UserID
	WorkspaceID           string
	Status                MovementStatus
	Metadata              map[string]any
	CreatedAt             time.Time
	UpdatedAt             time.Time
	CompletedAt           *time.Time
}

// StockKey key del saldo afectado por el movimiento.
func (m Movement) StockKey() StockKey {
	return StockKey{ItemID: m.ItemID, LocationID: m.LocationID, LotID: m.LotID}
}

// CanProcess solo los movimientos pendientes se pueden aplicar (bloquea reprocesos).
func (m Movement) CanProcess() bool {
	return m.Status == MovementStatusPending
}

// Complete devuelve una copia marcada como completada.
func (m Movement) Complete(now time.Time) Movement {
	next := m
	next.Status = MovementStatusCompleted
	next.UpdatedAt = now
	next.CompletedAt = &now
	return next
}

// Fail devuelve una copia marcada como fallida.
func (m Movement) Fail(now time.Time) Movement {
	next := m
	next.Status = MovementStatusFailed
	next.UpdatedAt = now
	return next
}

// MetadataString lee una clave string del bag de metadata ("" si no existe o no es string).
func (m Movement) MetadataString(key string) string {
	if m.Metadata == nil {
		return ""
	}
	s, _ := m.Metadata[key].(string)
	return s
}
