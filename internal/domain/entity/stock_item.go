package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// StockKey identifica un saldo: producto + ubicación (+ lote opcional).
type StockKey struct {
	ItemID     string
	LocationID string
	LotID      string // vacío = saldo sin lote
}

// String devuelve una representación estable del key (útil para locks y logs).
func (k StockKey) String() string {
	return k.ItemID + "|" + k.LocationID + "|" + k.LotID
}

// StockItem representa el saldo actual de un producto en una ubicación (opcionalmente por lote).
// Los mutadores tienen receptor por valor y devuelven un snapshot nuevo: nunca modifican el original.
// La cantidad disponible NO se almacena; se recalcula en cada lectura con AvailableQuantity.
type StockItem struct {
	ID               string
	ItemID           string
	LocationID       string
	LotID            string
	UnitOfMeasureID  string
	Quantity         decimal.Decimal // existencia física (on-hand)
	ReservedQuantity decimal.Decimal // comprometido por reservas
	Version          int64           // control optimista; lo incrementa el repositorio al guardar
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// NewStockItem crea un saldo en cero para un key nuevo (primer movimiento entrante).
func NewStockItem(id string, key StockKey, unitOfMeasureID string, now time.Time) StockItem {
	return StockItem{
		ID:               id,
		ItemID:           key.ItemID,
		LocationID:       key.LocationID,
		LotID:            key.LotID,
		UnitOfMeasureID:  unitOfMeasureID,
		Quantity:         decimal.Zero,
		ReservedQuantity: decimal.Zero,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
}

// Key devuelve el identificador compuesto del saldo.
func (s StockItem) Key() StockKey {
	return StockKey{ItemID: s.ItemID, LocationID: s.LocationID, LotID: s.LotID}
}

// AvailableQuantity = Quantity - ReservedQuantity.
func (s StockItem) AvailableQuantity() decimal.Decimal {
	return s.Quantity.Sub(s.ReservedQuantity)
}

// AdjustQuantity devuelve un snapshot con la existencia desplazada en delta (positivo o negativo).
func (s StockItem) AdjustQuantity(delta decimal.Decimal, now time.Time) StockItem {
	next := s
	next.Quantity = s.Quantity.Add(delta)
	next.UpdatedAt = now
	return next
}

// Reserve devuelve un snapshot con q unidades más reservadas; la existencia no cambia.
func (s StockItem) Reserve(q decimal.Decimal, now time.Time) StockItem {
	next := s
	next.ReservedQuantity = s.ReservedQuantity.Add(q)
	next.UpdatedAt = now
	return next
}

// Release devuelve un snapshot con q unidades menos reservadas.
func (s StockItem) Release(q decimal.Decimal, now time.Time) StockItem {
	next := s
	next.ReservedQuantity = s.ReservedQuantity.Sub(q)
	next.UpdatedAt = now
	return next
}
