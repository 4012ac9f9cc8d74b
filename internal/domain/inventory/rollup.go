package inventory

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-engine/internal/domain/entity"
)

type rollupKey struct {
	itemID string
	uomID  string
}

// RollupByItemAndUnit agrupa saldos por (ItemID, UnitOfMeasureID). Nunca agrupa solo por
// producto: unidades distintas del mismo producto no se suman entre sí.
// Resultado ordenado por ItemID y luego UnitOfMeasureID.
func RollupByItemAndUnit(items []entity.StockItem) []entity.StockRollup {
	groups := make(map[rollupKey]*entity.StockRollup)
	for _, it := range items {
		k := rollupKey{itemID: it.ItemID, uomID: it.UnitOfMeasureID}
		g, ok := groups[k]
		if !ok {
			g = &entity.StockRollup{
				ItemID:           it.ItemID,
				UnitOfMeasureID:  it.UnitOfMeasureID,
				Quantity:         decimal.Zero,
				ReservedQuantity: decimal.Zero,
			}
			groups[k] = g
		}
		g.Quantity = g.Quantity.Add(it.Quantity)
		g.ReservedQuantity = g.ReservedQuantity.Add(it.ReservedQuantity)
		g.Locations++
	}

	out := make([]entity.StockRollup, 0, len(groups))
	for _, g := range groups {
		out = append(out, *g)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].ItemID != out[j].ItemID {
			return out[i].ItemID < out[j].ItemID
		}
		return out[i].UnitOfMeasureID < out[j].UnitOfMeasureID
	})
	return out
}
