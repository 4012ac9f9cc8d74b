package inventory

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-engine/internal/domain/entity"
)

// CapacityExceeded código devuelto cuando la ubicación no admite lo entrante.
const CapacityExceeded = "CAPACITY_EXCEEDED"

// EvaluateCapacity regla de capacidad de ubicación: ocupado + entrante <= máximo.
// maxCapacity nil = sin límite.
func EvaluateCapacity(maxCapacity *decimal.Decimal, used, incoming decimal.Decimal) entity.CapacityValidationResult {
	if maxCapacity == nil {
		return entity.CapacityValidationResult{Allowed: true}
	}
	if used.Add(incoming).GreaterThan(*maxCapacity) {
		return entity.CapacityValidationResult{
			Allowed: false,
			Code:    CapacityExceeded,
			Message: fmt.Sprintf("capacidad %s, ocupado %s, entrante %s", maxCapacity, used, incoming),
		}
	}
	return entity.CapacityValidationResult{Allowed: true}
}
