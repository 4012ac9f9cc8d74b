package handlers

import (
	"fmt"
	"time"

	"github.com/jhoicas/stock-engine/internal/domain/entity"
	"github.com/jhoicas/stock-engine/internal/domain/inventory"
)

// Claves de los movimientos de consignación.
const (
	ConsignmentIn  = "consignment_in"  // mercancía del proveedor en consignación
	ConsignmentOut = "consignment_out" // devolución al proveedor
)

var (
	_ inventory.MovementHandler = (*ConsignmentHandler)(nil)
	_ inventory.StockCreator    = (*ConsignmentHandler)(nil)
)

// ConsignmentHandler stock del proveedor en nuestras ubicaciones. Exige metadata "consignor".
type ConsignmentHandler struct{}

// NewConsignmentHandler construye el handler.
func NewConsignmentHandler() *ConsignmentHandler { return &ConsignmentHandler{} }

func (h *ConsignmentHandler) Supports(movementType string) bool {
	return movementType == ConsignmentIn || movementType == ConsignmentOut
}

// CreatesStock la entrada en consignación puede crear el saldo.
func (h *ConsignmentHandler) CreatesStock(m entity.Movement) bool {
	return m.CustomType == ConsignmentIn
}

func (h *ConsignmentHandler) Validate(m entity.Movement, stock entity.StockItem) error {
	if m.MetadataString("consignor") == "" {
		return fmt.Errorf("la consignación requiere metadata consignor")
	}
	if m.CustomType == ConsignmentOut && stock.AvailableQuantity().LessThan(m.Quantity) {
		return fmt.Errorf("devolución de consignación por encima del disponible: disponible %s, solicitado %s",
			stock.AvailableQuantity(), m.Quantity)
	}
	return nil
}

func (h *ConsignmentHandler) Handle(m entity.Movement, stock entity.StockItem, now time.Time) (entity.StockItem, error) {
	switch m.CustomType {
	case ConsignmentIn:
		return stock.AdjustQuantity(m.Quantity, now), nil
	case ConsignmentOut:
		return stock.AdjustQuantity(m.Quantity.Neg(), now), nil
	}
	return stock, fmt.Errorf("consignment: tipo no soportado %q", m.CustomType)
}
