package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Location representa una bodega, zona o posición donde se almacena inventario.
// La jerarquía (ParentID) la administra un colaborador externo; aquí es solo lectura.
type Location struct {
	ID          string
	WorkspaceID string
	ParentID    string // vacío = raíz
	Type        string // warehouse, zone, bin, staging...
	Name        string
	MaxCapacity *decimal.Decimal // nil = sin límite
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// LocationSettings política por ubicación. Se pasa explícitamente a la validación
// (nunca como estado global).
type LocationSettings struct {
	LocationID               string
	AllowNegativeStock       bool
	MaxReservationPercentage *decimal.Decimal // nil = sin techo de reserva
}

// DefaultLocationSettings política estricta para ubicaciones sin configuración.
func DefaultLocationSettings(locationID string) LocationSettings {
	return LocationSettings{LocationID: locationID}
}

// AllowsNegativeStock permite sacar/reservar por encima del disponible.
func (s LocationSettings) AllowsNegativeStock() bool { return s.AllowNegativeStock }

// GetMaxReservationPercentage techo de reserva en % de la existencia (nil si no aplica).
func (s LocationSettings) GetMaxReservationPercentage() *decimal.Decimal {
	return s.MaxReservationPercentage
}

// CapacityValidationResult respuesta del gateway de capacidad.
type CapacityValidationResult struct {
	Allowed bool
	Code    string // ej. CAPACITY_EXCEEDED
	Message string
}
