package repository

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-engine/internal/domain/entity"
)

// LocationHierarchy gateway de lectura sobre la jerarquía de ubicaciones (colaborador externo).
type LocationHierarchy interface {
	GetChildrenIDs(ctx context.Context, locationID string) ([]string, error)
	// GetDescendantIDs todos los descendientes (sin incluir locationID), cada uno una sola vez,
	// aunque el grafo tenga ciclos.
	GetDescendantIDs(ctx context.Context, locationID string) ([]string, error)
	// GetParentID "" si es raíz.
	GetParentID(ctx context.Context, locationID string) (string, error)
	// GetAncestorIDs del padre hacia la raíz, con la misma protección contra ciclos.
	GetAncestorIDs(ctx context.Context, locationID string) ([]string, error)
	Exists(ctx context.Context, locationID string) (bool, error)
	GetLocationType(ctx context.Context, locationID string) (string, error)
}

// LocationSettingsRepository política por ubicación.
type LocationSettingsRepository interface {
	// FindByLocationID devuelve (nil, nil) si la ubicación no tiene configuración.
	FindByLocationID(ctx context.Context, locationID string) (*entity.LocationSettings, error)
}

// CapacityGateway decide si una ubicación puede recibir más stock.
type CapacityGateway interface {
	CanAcceptStock(ctx context.Context, locationID, itemID string, quantity decimal.Decimal) (entity.CapacityValidationResult, error)
}
