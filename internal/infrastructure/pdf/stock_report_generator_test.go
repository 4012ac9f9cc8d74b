package pdf_test

import (
	"bytes"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appinv "github.com/jhoicas/stock-engine/internal/application/inventory"
	"github.com/jhoicas/stock-engine/internal/domain/entity"
	"github.com/jhoicas/stock-engine/internal/infrastructure/pdf"
)

func TestGenerateStockReport_ConFilas(t *testing.T) {
	report := appinv.StockReport{
		LocationID:   "wh-central",
		LocationType: "warehouse",
		GeneratedAt:  time.Date(2026, 5, 4, 18, 0, 0, 0, time.UTC),
		Rows: []entity.StockRollup{
			{
				ItemID:           "item-cable-utp",
				UnitOfMeasureID:  "caja",
				Quantity:         decimal.RequireFromString("1250.5"),
				ReservedQuantity: decimal.RequireFromString("300"),
				Locations:        3,
				Item:             &entity.CatalogItem{ID: "item-cable-utp", SKU: "CAB-UTP6", Name: "Cable UTP cat 6"},
			},
			{
				ItemID:           "item-camara",
				UnitOfMeasureID:  "und",
				Quantity:         decimal.RequireFromString("2"),
				ReservedQuantity: decimal.RequireFromString("5"),
				Locations:        1,
			},
		},
	}

	out, err := pdf.NewMarotoPDFGenerator().GenerateStockReport(report)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")), "debe ser un documento PDF")
}

func TestGenerateStockReport_SinFilas(t *testing.T) {
	out, err := pdf.NewMarotoPDFGenerator().GenerateStockReport(appinv.StockReport{
		LocationID:  "bin-a2",
		GeneratedAt: time.Now(),
	})
	require.NoError(t, err)
	assert.NotEmpty(t, out)
}
