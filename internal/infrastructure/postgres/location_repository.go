package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-engine/internal/domain"
	"github.com/jhoicas/stock-engine/internal/domain/entity"
	"github.com/jhoicas/stock-engine/internal/domain/inventory"
	"github.com/jhoicas/stock-engine/internal/domain/repository"
)

var (
	_ repository.LocationHierarchy          = (*LocationRepo)(nil)
	_ repository.LocationSettingsRepository = (*LocationRepo)(nil)
	_ repository.CapacityGateway            = (*LocationRepo)(nil)
)

// LocationRepo lecturas de la jerarquía de ubicaciones, su política y capacidad.
// Las ubicaciones las administra otro servicio; aquí solo se consultan.
type LocationRepo struct {
	pool *pgxpool.Pool
}

// NewLocationRepository construye el adaptador de ubicaciones.
func NewLocationRepository(pool *pgxpool.Pool) *LocationRepo {
	return &LocationRepo{pool: pool}
}

// GetChildrenIDs hijos directos.
func (r *LocationRepo) GetChildrenIDs(ctx context.Context, locationID string) ([]string, error) {
	return r.childrenOf(ctx, []string{locationID})
}

// GetDescendantIDs subárbol completo: una consulta por nivel.
func (r *LocationRepo) GetDescendantIDs(ctx context.Context, locationID string) ([]string, error) {
	return inventory.CollectDescendants(ctx, locationID, r.childrenOf)
}

// GetParentID "" si es raíz; domain.ErrNotFound si la ubicación no existe.
func (r *LocationRepo) GetParentID(ctx context.Context, locationID string) (string, error) {
	var parent *string
	err := r.pool.QueryRow(ctx, `SELECT parent_id FROM locations WHERE id = $1`, locationID).Scan(&parent)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", domain.ErrNotFound
		}
		return "", fmt.Errorf("get parent: %w", err)
	}
	if parent == nil {
		return "", nil
	}
	return *parent, nil
}

// GetAncestorIDs del padre a la raíz.
func (r *LocationRepo) GetAncestorIDs(ctx context.Context, locationID string) ([]string, error) {
	return inventory.CollectAncestors(ctx, locationID, r.GetParentID)
}

// Exists true si la ubicación existe.
func (r *LocationRepo) Exists(ctx context.Context, locationID string) (bool, error) {
	var ok bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM locations WHERE id = $1)`, locationID).Scan(&ok)
	if err != nil {
		return false, fmt.Errorf("location exists: %w", err)
	}
	return ok, nil
}

// GetLocationType domain.ErrNotFound si la ubicación no existe.
func (r *LocationRepo) GetLocationType(ctx context.Context, locationID string) (string, error) {
	var t string
	err := r.pool.QueryRow(ctx, `SELECT type FROM locations WHERE id = $1`, locationID).Scan(&t)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", domain.ErrNotFound
		}
		return "", fmt.Errorf("get location type: %w", err)
	}
	return t, nil
}

// FindByLocationID política de la ubicación; (nil, nil) si no tiene configuración.
func (r *LocationRepo) FindByLocationID(ctx context.Context, locationID string) (*entity.LocationSettings, error) {
	query := `
		SELECT location_id, allow_negative_stock, max_reservation_percentage
		FROM location_settings WHERE location_id = $1`
	var s entity.LocationSettings
	err := r.pool.QueryRow(ctx, query, locationID).Scan(&s.LocationID, &s.AllowNegativeStock, &s.MaxReservationPercentage)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get location settings: %w", err)
	}
	return &s, nil
}

// CanAcceptStock compara la existencia total de la ubicación más lo entrante contra max_capacity.
// Ubicaciones sin max_capacity aceptan cualquier cantidad.
func (r *LocationRepo) CanAcceptStock(ctx context.Context, locationID, itemID string, quantity decimal.Decimal) (entity.CapacityValidationResult, error) {
	query := `
		SELECT l.max_capacity, COALESCE(SUM(s.quantity), 0)
		FROM locations l
		LEFT JOIN stock_items s ON s.location_id = l.id
		WHERE l.id = $1
		GROUP BY l.id, l.max_capacity`
	var maxCapacity *decimal.Decimal
	var used decimal.Decimal
	err := r.pool.QueryRow(ctx, query, locationID).Scan(&maxCapacity, &used)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return entity.CapacityValidationResult{}, domain.ErrNotFound
		}
		return entity.CapacityValidationResult{}, fmt.Errorf("capacity of %s: %w", locationID, err)
	}
	return inventory.EvaluateCapacity(maxCapacity, used, quantity), nil
}

func (r *LocationRepo) childrenOf(ctx context.Context, parentIDs []string) ([]string, error) {
	rows, err := r.pool.Query(ctx, `SELECT id FROM locations WHERE parent_id = ANY($1) ORDER BY id`, parentIDs)
	if err != nil {
		return nil, fmt.Errorf("list children: %w", err)
	}
	defer rows.Close()
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan child: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
