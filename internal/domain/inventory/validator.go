package inventory

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-engine/internal/domain"
	"github.com/jhoicas/stock-engine/internal/domain/entity"
	"github.com/jhoicas/stock-engine/internal/domain/repository"
)

// Validator ejecuta todas las reglas aplicables a la clasificación del movimiento y acumula
// los fallos (sin cortocircuito). Es de solo lectura: nunca modifica estado.
type Validator struct {
	lots     repository.LotRepository
	capacity repository.CapacityGateway
	handlers *HandlerRegistry
}

// NewValidator construye el validador. lots y capacity pueden ser nil (la regla se omite).
func NewValidator(lots repository.LotRepository, capacity repository.CapacityGateway, handlers *HandlerRegistry) *Validator {
	return &Validator{lots: lots, capacity: capacity, handlers: handlers}
}

// Validate evalúa el movimiento contra el snapshot actual (nil = saldo inexistente, se evalúa
// como cero) y la política de la ubicación. Solo devuelve error para fallos de integridad
// (custom sin handler) o de infraestructura (gateway caído).
func (v *Validator) Validate(
	ctx context.Context,
	m entity.Movement,
	stock *entity.StockItem,
	policy entity.LocationSettings,
	now time.Time,
) (ValidationResult, error) {
	var res ValidationResult

	checkShape(m, &res)
	if !m.CanProcess() {
		res.AddError("el movimiento %s no se puede procesar: estado %s", m.ID, m.Status)
	}

	current := entity.NewStockItem("", m.StockKey(), "", now)
	if stock != nil {
		current = *stock
	}

	switch {
	case m.Type.IsOutbound():
		checkOutbound(m, current, policy, &res)
	case m.Type == entity.MovementReserve:
		checkReserve(m.Quantity, current, policy, &res)
	case m.Type == entity.MovementRelease:
		checkRelease(m.Quantity, current, &res)
	}

	if err := v.checkLot(ctx, m, now, &res); err != nil {
		return res, err
	}
	if m.Type.IsInbound() {
		if err := v.checkCapacity(ctx, m, &res); err != nil {
			return res, err
		}
	}
	if m.Type == entity.MovementCustom && m.CustomType != "" {
		h, err := v.handlers.Resolve(m.CustomType)
		if err != nil {
			return res, err
		}
		if err := h.Validate(m, current); err != nil {
			res.AddError("%s", err.Error())
		}
	}
	return res, nil
}

// checkShape campos mínimos del movimiento.
func checkShape(m entity.Movement, res *ValidationResult) {
	if !m.Type.Valid() {
		res.AddError("tipo de movimiento desconocido: %q", m.Type)
	}
	if m.ItemID == "" {
		res.AddError("item_id es obligatorio")
	}
	if m.LocationID == "" {
		res.AddError("location_id es obligatorio")
	}
	switch {
	case m.Quantity.IsNegative():
		res.AddError("la cantidad no puede ser negativa: %s", m.Quantity)
	case m.Quantity.IsZero() && m.Type != entity.MovementCount:
		res.AddError("la cantidad debe ser mayor que cero")
	}
	if m.Type == entity.MovementCustom && m.CustomType == "" {
		res.AddError("custom_type es obligatorio para movimientos custom")
	}
}

// checkOutbound disponible >= solicitado, salvo que la ubicación permita stock negativo.
func checkOutbound(m entity.Movement, stock entity.StockItem, policy entity.LocationSettings, res *ValidationResult) {
	if policy.AllowsNegativeStock() {
		return
	}
	available := stock.AvailableQuantity()
	if available.LessThan(m.Quantity) {
		res.AddError("stock insuficiente: disponible %s, solicitado %s", available, m.Quantity)
	}
}

// checkReserve disponible >= solicitado; con stock negativo permitido solo advierte.
func checkReserve(requested decimal.Decimal, stock entity.StockItem, policy entity.LocationSettings, res *ValidationResult) {
	available := stock.AvailableQuantity()
	if !available.LessThan(requested) {
		return
	}
	if policy.AllowsNegativeStock() {
		res.AddWarning("reserva por encima del disponible (%s < %s): la ubicación permite stock negativo", available, requested)
		return
	}
	res.AddError("cantidad disponible insuficiente para reservar: disponible %s, solicitado %s", available, requested)
}

// checkRelease reservado >= solicitado. No existe excepción por stock negativo: a diferencia
// de las salidas, liberar más de lo reservado siempre se rechaza.
func checkRelease(requested decimal.Decimal, stock entity.StockItem, res *ValidationResult) {
	if stock.ReservedQuantity.LessThan(requested) {
		res.AddError("no se puede liberar más de lo reservado: reservado %s, solicitado %s", stock.ReservedQuantity, requested)
	}
}

func (v *Validator) checkLot(ctx context.Context, m entity.Movement, now time.Time, res *ValidationResult) error {
	if m.LotID == "" || v.lots == nil || !m.Type.BlocksExpiredLot() {
		return nil
	}
	lot, err := v.lots.FindByLotNumber(ctx, m.LotID)
	if err != nil {
		return fmt.Errorf("consultar lote %s: %w", m.LotID, err)
	}
	if lot != nil && lot.IsExpired(now) {
		res.AddError("el lote %s está vencido desde %s", lot.LotNumber, lot.ExpiresAt.Format(time.DateOnly))
	}
	return nil
}

func (v *Validator) checkCapacity(ctx context.Context, m entity.Movement, res *ValidationResult) error {
	if v.capacity == nil || m.LocationID == "" {
		return nil
	}
	check, err := v.capacity.CanAcceptStock(ctx, m.LocationID, m.ItemID, m.Quantity)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			res.AddError("ubicación %s no encontrada", m.LocationID)
			return nil
		}
		return fmt.Errorf("consultar capacidad de %s: %w", m.LocationID, err)
	}
	if !check.Allowed {
		res.AddError("%s: %s", check.Code, check.Message)
	}
	return nil
}
