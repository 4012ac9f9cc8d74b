package entity

import "github.com/shopspring/decimal"

// CatalogItem descriptor de producto que expone el catálogo (colaborador externo).
// El CRUD de catálogo y unidades de medida no pertenece a este servicio.
type CatalogItem struct {
	ID              string
	WorkspaceID     string
	SKU             string
	Name            string
	UnitOfMeasureID string
}

// StockRollup saldo agregado de un subárbol de ubicaciones, agrupado por (ItemID, UnitOfMeasureID).
type StockRollup struct {
	ItemID           string
	UnitOfMeasureID  string
	Quantity         decimal.Decimal
	ReservedQuantity decimal.Decimal
	Locations        int          // cantidad de saldos (filas) agregados
	Item             *CatalogItem // nil hasta enriquecer con AttachCatalogData
}

// AvailableQuantity = Quantity - ReservedQuantity.
func (r StockRollup) AvailableQuantity() decimal.Decimal {
	return r.Quantity.Sub(r.ReservedQuantity)
}
