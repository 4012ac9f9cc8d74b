package inventory_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-engine/internal/domain"
	"github.com/jhoicas/stock-engine/internal/domain/entity"
	"github.com/jhoicas/stock-engine/internal/domain/inventory"
	"github.com/jhoicas/stock-engine/internal/domain/inventory/handlers"
)

// ──────────────────────────────────────────────────────────────────────────────
// ApplyTransform
// ──────────────────────────────────────────────────────────────────────────────

func TestApplyTransform_PorTipo(t *testing.T) {
	base := *stock("50", "10")
	cases := []struct {
		mt       entity.MovementType
		qty      string
		reserved string
	}{
		{entity.MovementReceipt, "55", "10"},
		{entity.MovementReturn, "55", "10"},
		{entity.MovementShipment, "45", "10"},
		{entity.MovementDamage, "45", "10"},
		{entity.MovementReserve, "50", "15"},
		{entity.MovementRelease, "50", "5"},
		{entity.MovementCount, "50", "10"},
	}
	for _, tc := range cases {
		t.Run(string(tc.mt), func(t *testing.T) {
			next, err := inventory.ApplyTransform(movement(tc.mt, "5"), base, nil, now)
			require.NoError(t, err)
			assert.True(t, next.Quantity.Equal(d(tc.qty)), "existencia %s", next.Quantity)
			assert.True(t, next.ReservedQuantity.Equal(d(tc.reserved)), "reservado %s", next.ReservedQuantity)
		})
	}
	assert.True(t, base.Quantity.Equal(d("50")), "el snapshot original no cambia")
}

func TestApplyTransform_CustomUsaElHandler(t *testing.T) {
	reg := inventory.NewHandlerRegistry(handlers.NewLoanHandler())
	m := movement(entity.MovementCustom, "3")
	m.CustomType = handlers.LoanOut

	next, err := inventory.ApplyTransform(m, *stock("10", "0"), reg, now)
	require.NoError(t, err)
	assert.True(t, next.Quantity.Equal(d("7")))

	m.CustomType = "desconocido"
	_, err = inventory.ApplyTransform(m, *stock("10", "0"), reg, now)
	assert.ErrorIs(t, err, domain.ErrNoMovementHandler)
}

func TestCanCreateStock(t *testing.T) {
	reg := inventory.NewHandlerRegistry(handlers.NewLoanHandler(), handlers.NewConsignmentHandler())

	assert.True(t, inventory.CanCreateStock(movement(entity.MovementReceipt, "1"), reg))
	assert.False(t, inventory.CanCreateStock(movement(entity.MovementShipment, "1"), reg))
	assert.False(t, inventory.CanCreateStock(movement(entity.MovementReserve, "1"), reg))

	consignment := movement(entity.MovementCustom, "1")
	consignment.CustomType = handlers.ConsignmentIn
	assert.True(t, inventory.CanCreateStock(consignment, reg))

	loan := movement(entity.MovementCustom, "1")
	loan.CustomType = handlers.LoanReturn
	assert.False(t, inventory.CanCreateStock(loan, reg), "el préstamo no implementa StockCreator")
}

// ──────────────────────────────────────────────────────────────────────────────
// HandlerRegistry
// ──────────────────────────────────────────────────────────────────────────────

type stubHandler struct{ name string }

func (s stubHandler) Supports(t string) bool                             { return t == "loan_out" }
func (s stubHandler) Validate(entity.Movement, entity.StockItem) error { return nil }
func (s stubHandler) Handle(_ entity.Movement, st entity.StockItem, _ time.Time) (entity.StockItem, error) {
	return st, nil
}

func TestHandlerRegistry_GanaElPrimeroRegistrado(t *testing.T) {
	reg := inventory.NewHandlerRegistry(handlers.NewLoanHandler())
	reg.Register(stubHandler{name: "tardío"})

	h, err := reg.Resolve(handlers.LoanOut)
	require.NoError(t, err)
	assert.IsType(t, &handlers.LoanHandler{}, h)
}

func TestHandlerRegistry_NilNoResuelve(t *testing.T) {
	var reg *inventory.HandlerRegistry
	_, err := reg.Resolve("x")
	assert.ErrorIs(t, err, domain.ErrNoMovementHandler)
}
