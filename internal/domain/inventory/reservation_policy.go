package inventory

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-engine/internal/domain/entity"
)

var hundred = decimal.NewFromInt(100)

// ReservationCheck resultado del pre-chequeo de reserva (solo lectura).
// CanReserve=true con Warnings es un resultado válido.
type ReservationCheck struct {
	CanReserve      bool
	Requested       decimal.Decimal
	Quantity        decimal.Decimal
	CurrentReserved decimal.Decimal
	Available       decimal.Decimal
	Ceiling         *decimal.Decimal // techo por MaxReservationPercentage (nil si no aplica)
	ValidationResult
}

// CheckReservation replica la regla de reserva del validador y agrega el techo por ubicación:
// reservado + solicitado <= existencia * (MaxReservationPercentage / 100).
// stock nil se evalúa como saldo en cero.
func CheckReservation(stock *entity.StockItem, requested decimal.Decimal, policy entity.LocationSettings) ReservationCheck {
	current := entity.StockItem{Quantity: decimal.Zero, ReservedQuantity: decimal.Zero}
	if stock != nil {
		current = *stock
	}
	out := ReservationCheck{
		Requested:       requested,
		Quantity:        current.Quantity,
		CurrentReserved: current.ReservedQuantity,
		Available:       current.AvailableQuantity(),
	}
	if !requested.IsPositive() {
		out.AddError("la cantidad a reservar debe ser mayor que cero")
	}
	checkReserve(requested, current, policy, &out.ValidationResult)
	ceiling := ReservationCeiling(current, requested, policy)
	out.Merge(ceiling.ValidationResult)
	out.Ceiling = ceiling.Ceiling
	if policy.AllowsNegativeStock() {
		out.AddWarning("la ubicación %s permite stock negativo", policy.LocationID)
	}
	out.CanReserve = out.IsValid()
	return out
}

// CeilingCheck resultado del techo porcentual.
type CeilingCheck struct {
	Ceiling *decimal.Decimal
	ValidationResult
}

// ReservationCeiling evalúa solo el techo porcentual de la ubicación.
func ReservationCeiling(stock entity.StockItem, requested decimal.Decimal, policy entity.LocationSettings) CeilingCheck {
	var out CeilingCheck
	pct := policy.GetMaxReservationPercentage()
	if pct == nil {
		return out
	}
	ceiling := stock.Quantity.Mul(*pct).Div(hundred)
	out.Ceiling = &ceiling
	total := stock.ReservedQuantity.Add(requested)
	if total.GreaterThan(ceiling) {
		out.AddError("la reserva solicitada de %s supera el máximo permitido de %s (%s%% de la existencia; ya reservado %s)",
			requested, ceiling, pct, stock.ReservedQuantity)
	}
	return out
}
