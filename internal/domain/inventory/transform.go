package inventory

import (
	"fmt"
	"time"

	"github.com/jhoicas/stock-engine/internal/domain/entity"
)

// ApplyTransform calcula el nuevo snapshot de stock según el tipo de movimiento (servicio de dominio).
//
//	entrantes (receipt, transfer_in, adjustment_in, return)          -> AdjustQuantity(+q)
//	salientes (shipment, transfer_out, adjustment_out, expiration,
//	           installation, damage)                                -> AdjustQuantity(-q)
//	reserve -> Reserve(q)    release -> Release(q)    count -> sin cambio
//	custom  -> handler registrado para CustomType
func ApplyTransform(m entity.Movement, stock entity.StockItem, handlers *HandlerRegistry, now time.Time) (entity.StockItem, error) {
	switch {
	case m.Type.IsInbound():
		return stock.AdjustQuantity(m.Quantity, now), nil
	case m.Type.IsOutbound():
		return stock.AdjustQuantity(m.Quantity.Neg(), now), nil
	}
	switch m.Type {
	case entity.MovementReserve:
		return stock.Reserve(m.Quantity, now), nil
	case entity.MovementRelease:
		return stock.Release(m.Quantity, now), nil
	case entity.MovementCount:
		return stock, nil
	case entity.MovementCustom:
		h, err := handlers.Resolve(m.CustomType)
		if err != nil {
			return stock, err
		}
		next, err := h.Handle(m, stock, now)
		if err != nil {
			return stock, fmt.Errorf("handler %s: %w", m.CustomType, err)
		}
		return next, nil
	}
	return stock, fmt.Errorf("tipo de movimiento desconocido: %q", m.Type)
}

// CanCreateStock true si el movimiento puede crear un saldo inexistente en cero.
func CanCreateStock(m entity.Movement, handlers *HandlerRegistry) bool {
	if m.Type.IsInbound() {
		return true
	}
	return m.Type == entity.MovementCustom && handlers.CreatesStock(m)
}
