package inventory

import (
	"fmt"
	"sync"
	"time"

	"github.com/jhoicas/stock-engine/internal/domain"
	"github.com/jhoicas/stock-engine/internal/domain/entity"
)

// MovementHandler estrategia para un tipo de movimiento fuera del conjunto cerrado.
// Solo se consulta cuando Movement.Type == custom; la clave es Movement.CustomType.
type MovementHandler interface {
	Supports(movementType string) bool
	// Validate devuelve error si el movimiento viola las reglas del handler.
	Validate(m entity.Movement, stock entity.StockItem) error
	// Handle devuelve el nuevo snapshot de stock; no debe modificar el recibido.
	Handle(m entity.Movement, stock entity.StockItem, now time.Time) (entity.StockItem, error)
}

// StockCreator opcional: el handler indica que el movimiento puede crear el saldo si no existe
// (equivalente a un tipo entrante).
type StockCreator interface {
	CreatesStock(m entity.Movement) bool
}

// HandlerRegistry lista ordenada de handlers; gana el primero que soporte el tipo.
type HandlerRegistry struct {
	mu       sync.RWMutex
	handlers []MovementHandler
}

// NewHandlerRegistry construye el registro con los handlers en orden de prioridad.
func NewHandlerRegistry(handlers ...MovementHandler) *HandlerRegistry {
	return &HandlerRegistry{handlers: append([]MovementHandler(nil), handlers...)}
}

// Register agrega un handler al final (menor prioridad que los ya registrados).
func (r *HandlerRegistry) Register(h MovementHandler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers = append(r.handlers, h)
}

// Resolve devuelve el primer handler que soporte movementType.
func (r *HandlerRegistry) Resolve(movementType string) (MovementHandler, error) {
	if r != nil {
		r.mu.RLock()
		defer r.mu.RUnlock()
		for _, h := range r.handlers {
			if h.Supports(movementType) {
				return h, nil
			}
		}
	}
	return nil, fmt.Errorf("tipo %q: %w", movementType, domain.ErrNoMovementHandler)
}

// CreatesStock true si el movimiento custom puede crear el saldo inexistente.
func (r *HandlerRegistry) CreatesStock(m entity.Movement) bool {
	h, err := r.Resolve(m.CustomType)
	if err != nil {
		return false
	}
	c, ok := h.(StockCreator)
	return ok && c.CreatesStock(m)
}
