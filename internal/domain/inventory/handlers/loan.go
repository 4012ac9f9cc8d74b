// Package handlers contiene estrategias para movimientos custom (fuera del conjunto cerrado de tipos).
package handlers

import (
	"fmt"
	"time"

	"github.com/jhoicas/stock-engine/internal/domain/entity"
	"github.com/jhoicas/stock-engine/internal/domain/inventory"
)

// Claves de los movimientos de préstamo.
const (
	LoanOut    = "loan_out"    // préstamo a un tercero: sale existencia
	LoanReturn = "loan_return" // devolución del préstamo: vuelve la existencia
)

var _ inventory.MovementHandler = (*LoanHandler)(nil)

// LoanHandler préstamos de equipos/herramientas. Un préstamo exige indicar el prestatario
// (metadata "borrower") y nunca puede tomar unidades reservadas.
type LoanHandler struct{}

// NewLoanHandler construye el handler.
func NewLoanHandler() *LoanHandler { return &LoanHandler{} }

func (h *LoanHandler) Supports(movementType string) bool {
	return movementType == LoanOut || movementType == LoanReturn
}

func (h *LoanHandler) Validate(m entity.Movement, stock entity.StockItem) error {
	if m.MetadataString("borrower") == "" {
		return fmt.Errorf("el préstamo requiere metadata borrower")
	}
	if m.CustomType == LoanOut && stock.AvailableQuantity().LessThan(m.Quantity) {
		return fmt.Errorf("préstamo por encima del disponible: disponible %s, solicitado %s",
			stock.AvailableQuantity(), m.Quantity)
	}
	return nil
}

func (h *LoanHandler) Handle(m entity.Movement, stock entity.StockItem, now time.Time) (entity.StockItem, error) {
	switch m.CustomType {
	case LoanOut:
		return stock.AdjustQuantity(m.Quantity.Neg(), now), nil
	case LoanReturn:
		return stock.AdjustQuantity(m.Quantity, now), nil
	}
	return stock, fmt.Errorf("loan: tipo no soportado %q", m.CustomType)
}
