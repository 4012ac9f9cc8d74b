package entity

import "time"

// Lot metadata de un lote (vencimiento). No guarda cantidades: los saldos por lote
// viven en StockItem.LotID.
type Lot struct {
	LotNumber string
	ItemID    string
	ExpiresAt *time.Time
	CreatedAt time.Time
}

// IsExpired true si el lote tiene vencimiento y now ya lo alcanzó.
func (l Lot) IsExpired(now time.Time) bool {
	return l.ExpiresAt != nil && !now.Before(*l.ExpiresAt)
}
