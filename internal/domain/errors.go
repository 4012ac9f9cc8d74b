package domain

import "errors"

// Errores de dominio (sin dependencias externas).
// Los fallos de reglas de negocio esperados (stock insuficiente, capacidad, lote vencido)
// NO son errores: viajan en inventory.ValidationResult. Estos sentinels representan
// precondiciones rotas o fallos que el llamador no debió permitir.
var (
	ErrNotFound          = errors.New("recurso no encontrado")
	ErrInvalidInput      = errors.New("entrada inválida")
	ErrDuplicate         = errors.New("recurso duplicado")
	ErrUnauthorized      = errors.New("no autorizado")
	ErrForbidden         = errors.New("acceso denegado")
	ErrConflict          = errors.New("conflicto con el estado actual")
	ErrInsufficientStock = errors.New("stock insuficiente")

	// ErrStockItemNotFound: se intentó sacar/reservar stock de un registro que nunca se creó.
	ErrStockItemNotFound = errors.New("registro de stock inexistente para un movimiento no entrante")
	// ErrNoMovementHandler: movimiento custom sin estrategia registrada que lo soporte.
	ErrNoMovementHandler = errors.New("no hay handler registrado para el tipo de movimiento")
	// ErrInvalidTransition: transición de estado no permitida (reservas, movimientos).
	ErrInvalidTransition = errors.New("transición de estado inválida")
	// ErrConcurrentModification: la versión del stock cambió entre la lectura y la escritura.
	ErrConcurrentModification = errors.New("modificación concurrente del stock")
)
