package inventory_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-engine/internal/domain"
	"github.com/jhoicas/stock-engine/internal/domain/entity"
	"github.com/jhoicas/stock-engine/internal/domain/inventory"
	"github.com/jhoicas/stock-engine/internal/domain/inventory/handlers"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fakes
// ──────────────────────────────────────────────────────────────────────────────

var now = time.Date(2026, 5, 4, 12, 0, 0, 0, time.UTC)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

type fakeLots map[string]entity.Lot

func (f fakeLots) FindByLotNumber(_ context.Context, n string) (*entity.Lot, error) {
	l, ok := f[n]
	if !ok {
		return nil, nil
	}
	return &l, nil
}

func (f fakeLots) CreateIfAbsent(_ context.Context, l entity.Lot) error {
	if _, ok := f[l.LotNumber]; !ok {
		f[l.LotNumber] = l
	}
	return nil
}

type fakeCapacity struct {
	result entity.CapacityValidationResult
	err    error
}

func (f fakeCapacity) CanAcceptStock(context.Context, string, string, decimal.Decimal) (entity.CapacityValidationResult, error) {
	return f.result, f.err
}

func movement(t entity.MovementType, qty string) entity.Movement {
	return entity.Movement{
		ID:         "mov-1",
		Type:       t,
		ItemID:     "item-1",
		LocationID: "loc-1",
		Quantity:   d(qty),
		Status:     entity.MovementStatusPending,
	}
}

func stock(qty, reserved string) *entity.StockItem {
	return &entity.StockItem{ID: "s-1", ItemID: "item-1", LocationID: "loc-1", Quantity: d(qty), ReservedQuantity: d(reserved)}
}

func strict() entity.LocationSettings { return entity.DefaultLocationSettings("loc-1") }

func permissive() entity.LocationSettings {
	return entity.LocationSettings{LocationID: "loc-1", AllowNegativeStock: true}
}

// ──────────────────────────────────────────────────────────────────────────────
// Salidas y reservas
// ──────────────────────────────────────────────────────────────────────────────

func TestValidate_SalidaSinDisponibleSeRechaza(t *testing.T) {
	v := inventory.NewValidator(nil, nil, nil)
	res, err := v.Validate(context.Background(), movement(entity.MovementShipment, "30"), stock("40", "15"), strict(), now)
	require.NoError(t, err)
	assert.False(t, res.IsValid())
	assert.Contains(t, res.Errors, "stock insuficiente: disponible 25, solicitado 30")
}

func TestValidate_SalidaConStockNegativoPermitido(t *testing.T) {
	v := inventory.NewValidator(nil, nil, nil)
	res, err := v.Validate(context.Background(), movement(entity.MovementShipment, "30"), stock("10", "0"), permissive(), now)
	require.NoError(t, err)
	assert.True(t, res.IsValid())
}

func TestValidate_ReservaPorEncimaDelDisponible(t *testing.T) {
	v := inventory.NewValidator(nil, nil, nil)

	res, err := v.Validate(context.Background(), movement(entity.MovementReserve, "12"), stock("10", "0"), strict(), now)
	require.NoError(t, err)
	require.Len(t, res.Errors, 1)
	assert.Contains(t, res.Errors[0], "disponible 10, solicitado 12")

	res, err = v.Validate(context.Background(), movement(entity.MovementReserve, "12"), stock("10", "0"), permissive(), now)
	require.NoError(t, err)
	assert.True(t, res.IsValid(), "con stock negativo la reserva solo advierte")
	assert.Len(t, res.Warnings, 1)
}

func TestValidate_LiberarMasDeLoReservadoSiempreSeRechaza(t *testing.T) {
	v := inventory.NewValidator(nil, nil, nil)
	for _, policy := range []entity.LocationSettings{strict(), permissive()} {
		res, err := v.Validate(context.Background(), movement(entity.MovementRelease, "6"), stock("10", "5"), policy, now)
		require.NoError(t, err)
		assert.False(t, res.IsValid(), "allow_negative=%v", policy.AllowNegativeStock)
	}
}

func TestValidate_SaldoInexistenteSeEvaluaComoCero(t *testing.T) {
	v := inventory.NewValidator(nil, nil, nil)
	res, err := v.Validate(context.Background(), movement(entity.MovementShipment, "1"), nil, strict(), now)
	require.NoError(t, err)
	assert.Contains(t, res.Errors, "stock insuficiente: disponible 0, solicitado 1")

	res, err = v.Validate(context.Background(), movement(entity.MovementReceipt, "5"), nil, strict(), now)
	require.NoError(t, err)
	assert.True(t, res.IsValid())
}

// ──────────────────────────────────────────────────────────────────────────────
// Forma del movimiento
// ──────────────────────────────────────────────────────────────────────────────

func TestValidate_CantidadCeroSoloParaConteo(t *testing.T) {
	v := inventory.NewValidator(nil, nil, nil)

	res, err := v.Validate(context.Background(), movement(entity.MovementReceipt, "0"), nil, strict(), now)
	require.NoError(t, err)
	assert.Contains(t, res.Errors, "la cantidad debe ser mayor que cero")

	res, err = v.Validate(context.Background(), movement(entity.MovementCount, "0"), stock("5", "0"), strict(), now)
	require.NoError(t, err)
	assert.True(t, res.IsValid())
}

func TestValidate_AcumulaTodosLosErrores(t *testing.T) {
	v := inventory.NewValidator(nil, nil, nil)
	m := entity.Movement{Type: entity.MovementShipment, Quantity: d("-3"), Status: entity.MovementStatusCompleted}

	res, err := v.Validate(context.Background(), m, nil, strict(), now)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, len(res.Errors), 4, "item, ubicación, cantidad y estado: %v", res.Errors)
	assert.Contains(t, res.Errors, "item_id es obligatorio")
	assert.Contains(t, res.Errors, "location_id es obligatorio")
}

func TestValidate_MovimientoCompletadoNoSeReprocesa(t *testing.T) {
	v := inventory.NewValidator(nil, nil, nil)
	m := movement(entity.MovementReceipt, "5").Complete(now)
	res, err := v.Validate(context.Background(), m, stock("0", "0"), strict(), now)
	require.NoError(t, err)
	assert.False(t, res.IsValid())
}

// ──────────────────────────────────────────────────────────────────────────────
// Lotes y capacidad
// ──────────────────────────────────────────────────────────────────────────────

func TestValidate_LoteVencido(t *testing.T) {
	exp := now.Add(-24 * time.Hour)
	v := inventory.NewValidator(fakeLots{"L-7": {LotNumber: "L-7", ExpiresAt: &exp}}, nil, nil)

	ship := movement(entity.MovementShipment, "1")
	ship.LotID = "L-7"
	res, err := v.Validate(context.Background(), ship, stock("5", "0"), strict(), now)
	require.NoError(t, err)
	require.Len(t, res.Errors, 1)
	assert.Contains(t, res.Errors[0], "L-7")

	scrap := movement(entity.MovementExpiration, "5")
	scrap.LotID = "L-7"
	res, err = v.Validate(context.Background(), scrap, stock("5", "0"), strict(), now)
	require.NoError(t, err)
	assert.True(t, res.IsValid(), "la baja por vencimiento sí opera sobre lotes vencidos")
}

func TestValidate_CapacidadExcedida(t *testing.T) {
	capacity := fakeCapacity{result: inventory.EvaluateCapacity(decimalPtr("100"), d("90"), d("20"))}
	v := inventory.NewValidator(nil, capacity, nil)

	res, err := v.Validate(context.Background(), movement(entity.MovementReceipt, "20"), nil, strict(), now)
	require.NoError(t, err)
	require.Len(t, res.Errors, 1)
	assert.Contains(t, res.Errors[0], inventory.CapacityExceeded)
}

func TestValidate_UbicacionInexistenteEsRechazoNoError(t *testing.T) {
	v := inventory.NewValidator(nil, fakeCapacity{err: domain.ErrNotFound}, nil)
	res, err := v.Validate(context.Background(), movement(entity.MovementReceipt, "1"), nil, strict(), now)
	require.NoError(t, err)
	assert.Contains(t, res.Errors, "ubicación loc-1 no encontrada")
}

func TestValidate_GatewayCaidoDevuelveError(t *testing.T) {
	boom := errors.New("timeout")
	v := inventory.NewValidator(nil, fakeCapacity{err: boom}, nil)
	_, err := v.Validate(context.Background(), movement(entity.MovementReceipt, "1"), nil, strict(), now)
	assert.ErrorIs(t, err, boom)
}

// ──────────────────────────────────────────────────────────────────────────────
// Movimientos custom
// ──────────────────────────────────────────────────────────────────────────────

func TestValidate_CustomSinHandler(t *testing.T) {
	v := inventory.NewValidator(nil, nil, inventory.NewHandlerRegistry())
	m := movement(entity.MovementCustom, "1")
	m.CustomType = "gift_out"
	_, err := v.Validate(context.Background(), m, stock("5", "0"), strict(), now)
	assert.ErrorIs(t, err, domain.ErrNoMovementHandler)
}

func TestValidate_CustomDelegaEnElHandler(t *testing.T) {
	v := inventory.NewValidator(nil, nil, inventory.NewHandlerRegistry(handlers.NewLoanHandler()))
	m := movement(entity.MovementCustom, "2")
	m.CustomType = handlers.LoanOut

	res, err := v.Validate(context.Background(), m, stock("5", "0"), strict(), now)
	require.NoError(t, err)
	assert.Contains(t, res.Errors, "el préstamo requiere metadata borrower")

	m.Metadata = map[string]any{"borrower": "tecnico-3"}
	res, err = v.Validate(context.Background(), m, stock("5", "0"), strict(), now)
	require.NoError(t, err)
	assert.True(t, res.IsValid())
}

func decimalPtr(s string) *decimal.Decimal {
	v := d(s)
	return &v
}
