package handlers_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-engine/internal/domain/entity"
	"github.com/jhoicas/stock-engine/internal/domain/inventory/handlers"
)

var now = time.Date(2026, 5, 4, 12, 0, 0, 0, time.UTC)

func custom(kind, qty string, meta map[string]any) entity.Movement {
	return entity.Movement{
		Type:       entity.MovementCustom,
		CustomType: kind,
		ItemID:     "taladro",
		LocationID: "bodega",
		Quantity:   decimal.RequireFromString(qty),
		Metadata:   meta,
	}
}

func onHand(qty, reserved string) entity.StockItem {
	return entity.StockItem{Quantity: decimal.RequireFromString(qty), ReservedQuantity: decimal.RequireFromString(reserved)}
}

// ──────────────────────────────────────────────────────────────────────────────
// Préstamos
// ──────────────────────────────────────────────────────────────────────────────

func TestLoanHandler_NoTomaUnidadesReservadas(t *testing.T) {
	h := handlers.NewLoanHandler()
	m := custom(handlers.LoanOut, "3", map[string]any{"borrower": "cuadrilla-2"})

	err := h.Validate(m, onHand("5", "3"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disponible 2")

	assert.NoError(t, h.Validate(m, onHand("5", "2")))
}

func TestLoanHandler_IdaYVuelta(t *testing.T) {
	h := handlers.NewLoanHandler()
	meta := map[string]any{"borrower": "cuadrilla-2"}

	out, err := h.Handle(custom(handlers.LoanOut, "2", meta), onHand("5", "0"), now)
	require.NoError(t, err)
	assert.True(t, out.Quantity.Equal(decimal.NewFromInt(3)))

	back, err := h.Handle(custom(handlers.LoanReturn, "2", meta), out, now)
	require.NoError(t, err)
	assert.True(t, back.Quantity.Equal(decimal.NewFromInt(5)))

	assert.True(t, h.Supports(handlers.LoanReturn))
	assert.False(t, h.Supports(handlers.ConsignmentIn))
}

func TestLoanHandler_SinPrestatario(t *testing.T) {
	err := handlers.NewLoanHandler().Validate(custom(handlers.LoanReturn, "1", nil), onHand("0", "0"))
	assert.EqualError(t, err, "el préstamo requiere metadata borrower")
}

// ──────────────────────────────────────────────────────────────────────────────
// Consignación
// ──────────────────────────────────────────────────────────────────────────────

func TestConsignmentHandler_EntradaCreaSaldo(t *testing.T) {
	h := handlers.NewConsignmentHandler()
	in := custom(handlers.ConsignmentIn, "10", map[string]any{"consignor": "prov-9"})

	assert.True(t, h.CreatesStock(in))
	assert.False(t, h.CreatesStock(custom(handlers.ConsignmentOut, "1", nil)))

	require.NoError(t, h.Validate(in, onHand("0", "0")))
	next, err := h.Handle(in, onHand("0", "0"), now)
	require.NoError(t, err)
	assert.True(t, next.Quantity.Equal(decimal.NewFromInt(10)))
}

func TestConsignmentHandler_DevolucionPorEncimaDelDisponible(t *testing.T) {
	h := handlers.NewConsignmentHandler()
	out := custom(handlers.ConsignmentOut, "8", map[string]any{"consignor": "prov-9"})
	assert.Error(t, h.Validate(out, onHand("10", "5")))
	assert.Error(t, h.Validate(custom(handlers.ConsignmentIn, "1", nil), onHand("0", "0")), "exige consignor")
}

func TestHandlers_TipoNoSoportado(t *testing.T) {
	_, err := handlers.NewLoanHandler().Handle(custom("gift", "1", nil), onHand("1", "0"), now)
	assert.Error(t, err)
	_, err = handlers.NewConsignmentHandler().Handle(custom("gift", "1", nil), onHand("1", "0"), now)
	assert.Error(t, err)
}
