package inventory_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appinv "github.com/jhoicas/stock-engine/internal/application/inventory"
	"github.com/jhoicas/stock-engine/internal/domain"
	"github.com/jhoicas/stock-engine/internal/domain/entity"
	"github.com/jhoicas/stock-engine/internal/domain/inventory"
	"github.com/jhoicas/stock-engine/internal/domain/inventory/handlers"
	"github.com/jhoicas/stock-engine/internal/domain/repository"
)

// ──────────────────────────────────────────────────────────────────────────────
// Entradas
// ──────────────────────────────────────────────────────────────────────────────

// Dos recepciones sobre el mismo key: la primera crea el saldo y la segunda suma.
func TestProcess_RecepcionesAcumulan(t *testing.T) {
	e := newEngine(t)

	first := e.receive(t, posicion, "100")
	assert.True(t, first.StockCreated)
	assert.True(t, first.PreviousBalance.IsZero())
	assert.True(t, first.NewBalance.Equal(d("100")))
	assert.Equal(t, "caja", first.Stock.UnitOfMeasureID, "la unidad sale del catálogo")

	second := e.receive(t, posicion, "50")
	assert.False(t, second.StockCreated)
	assert.True(t, second.PreviousBalance.Equal(d("100")))
	assert.True(t, second.NewBalance.Equal(d("150")))
	assert.Equal(t, entity.MovementStatusCompleted, second.Movement.Status)
	require.NotNil(t, second.Movement.CompletedAt)

	s := e.stockAt(t, posicion)
	require.NotNil(t, s)
	assert.True(t, s.Quantity.Equal(d("150")))
	assert.Equal(t, int64(2), s.Version)
	assert.Equal(t, 2, e.publisher.count())
}

func TestProcess_CapacidadDeUbicacion(t *testing.T) {
	e := newEngine(t)
	e.receive(t, posicion, "450")

	res, err := e.applicator.Process(context.Background(), mov(entity.MovementReceipt, posicion, "60"))
	require.NoError(t, err)
	assert.False(t, res.Success)
	require.Len(t, res.Errors, 1)
	assert.Contains(t, res.Errors[0], inventory.CapacityExceeded)
	assert.True(t, e.stockAt(t, posicion).Quantity.Equal(d("450")))
}

// ──────────────────────────────────────────────────────────────────────────────
// Salidas y rechazos
// ──────────────────────────────────────────────────────────────────────────────

func TestProcess_RechazoNoEscribeNada(t *testing.T) {
	e := newEngine(t)
	e.receive(t, posicion, "5")

	res, err := e.applicator.Process(context.Background(), mov(entity.MovementShipment, posicion, "10"))
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Contains(t, res.Errors, "stock insuficiente: disponible 5, solicitado 10")
	assert.True(t, res.NewBalance.Equal(d("5")))

	s := e.stockAt(t, posicion)
	assert.True(t, s.Quantity.Equal(d("5")))
	assert.Equal(t, int64(1), s.Version)

	history, err := e.query.History(context.Background(), repository.MovementFilter{ItemID: itemCable})
	require.NoError(t, err)
	assert.Len(t, history, 1, "el movimiento rechazado no queda en el log")
	assert.Equal(t, 1, e.publisher.count())
}

func TestProcess_SalidaSobreSaldoInexistente(t *testing.T) {
	e := newEngine(t)

	// Estricta: el validador lo rechaza contra un saldo en cero.
	res, err := e.applicator.Process(context.Background(), mov(entity.MovementShipment, posicion, "1"))
	require.NoError(t, err)
	assert.False(t, res.Success)

	// Con stock negativo la validación pasa, pero una salida nunca crea el saldo.
	_, err = e.applicator.Process(context.Background(), mov(entity.MovementShipment, transito, "1"))
	assert.ErrorIs(t, err, domain.ErrStockItemNotFound)
	_, err = e.applicator.Process(context.Background(), mov(entity.MovementReserve, transito, "1"))
	assert.ErrorIs(t, err, domain.ErrStockItemNotFound)
	assert.Nil(t, e.stockAt(t, transito))
}

func TestProcess_StockNegativoPermitido(t *testing.T) {
	e := newEngine(t)
	e.receive(t, transito, "3")

	res, err := e.applicator.Process(context.Background(), mov(entity.MovementShipment, transito, "5"))
	require.NoError(t, err)
	require.True(t, res.Success)
	assert.True(t, res.NewBalance.Equal(d("-2")))
}

func TestProcess_ConteoNoCambiaExistencia(t *testing.T) {
	e := newEngine(t)
	e.receive(t, posicion, "12")

	res, err := e.applicator.Process(context.Background(), mov(entity.MovementCount, posicion, "0"))
	require.NoError(t, err)
	require.True(t, res.Success)
	assert.True(t, res.NewBalance.Equal(d("12")))
}

// ──────────────────────────────────────────────────────────────────────────────
// Reservas por movimiento
// ──────────────────────────────────────────────────────────────────────────────

func TestProcess_ReservarYLiberar(t *testing.T) {
	e := newEngine(t)
	e.receive(t, posicion, "10")

	res, err := e.applicator.Process(context.Background(), mov(entity.MovementReserve, posicion, "4"))
	require.NoError(t, err)
	require.True(t, res.Success)
	assert.True(t, res.Stock.ReservedQuantity.Equal(d("4")))
	assert.True(t, res.Stock.AvailableQuantity().Equal(d("6")))

	res, err = e.applicator.Process(context.Background(), mov(entity.MovementRelease, posicion, "5"))
	require.NoError(t, err)
	assert.False(t, res.Success, "no se libera más de lo reservado")

	res, err = e.applicator.Process(context.Background(), mov(entity.MovementRelease, posicion, "4"))
	require.NoError(t, err)
	require.True(t, res.Success)
	assert.True(t, res.Stock.ReservedQuantity.IsZero())
	assert.True(t, res.Stock.Quantity.Equal(d("10")))
}

// Dos reservas concurrentes de 8 sobre 10 disponibles: exactamente una gana.
func TestProcess_ReservasConcurrentes(t *testing.T) {
	e := newEngine(t)
	e.receive(t, posicion, "10")

	var wg sync.WaitGroup
	results := make([]*appinv.ProcessResult, 2)
	errs := make([]error, 2)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = e.applicator.Process(context.Background(), mov(entity.MovementReserve, posicion, "8"))
		}(i)
	}
	wg.Wait()

	wins := 0
	for i := range results {
		require.NoError(t, errs[i])
		if results[i].Success {
			wins++
		} else {
			assert.Contains(t, results[i].Errors[0], "disponible 2, solicitado 8")
		}
	}
	assert.Equal(t, 1, wins)
	s := e.stockAt(t, posicion)
	assert.True(t, s.ReservedQuantity.Equal(d("8")))
	assert.True(t, s.AvailableQuantity().Equal(d("2")))
}

// ──────────────────────────────────────────────────────────────────────────────
// Lotes
// ──────────────────────────────────────────────────────────────────────────────

func TestProcess_LoteVencidoBloqueaSalidas(t *testing.T) {
	e := newEngine(t)

	in := mov(entity.MovementReceipt, posicion, "20")
	in.LotID = "L-2026-01"
	in.Metadata = map[string]any{"lot_expires_at": "2026-05-01"}
	res, err := e.applicator.Process(context.Background(), in)
	require.NoError(t, err)
	require.True(t, res.Success)

	lot, err := e.store.Lots().FindByLotNumber(context.Background(), "L-2026-01")
	require.NoError(t, err)
	require.NotNil(t, lot)
	require.NotNil(t, lot.ExpiresAt)

	out := mov(entity.MovementShipment, posicion, "1")
	out.LotID = "L-2026-01"
	res, err = e.applicator.Process(context.Background(), out)
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Contains(t, res.Errors[0], "vencido")

	scrap := mov(entity.MovementExpiration, posicion, "20")
	scrap.LotID = "L-2026-01"
	res, err = e.applicator.Process(context.Background(), scrap)
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.True(t, res.NewBalance.IsZero())
}

func TestProcess_VencimientoDeLoteInvalido(t *testing.T) {
	e := newEngine(t)
	in := mov(entity.MovementReceipt, posicion, "1")
	in.LotID = "L-X"
	in.Metadata = map[string]any{"lot_expires_at": "mañana"}

	_, err := e.applicator.Process(context.Background(), in)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Nil(t, e.stockAt(t, posicion), "el error revierte el saldo creado")
}

// ──────────────────────────────────────────────────────────────────────────────
// Movimientos custom y publicación
// ──────────────────────────────────────────────────────────────────────────────

func TestProcess_ConsignacionCreaSaldo(t *testing.T) {
	e := newEngine(t)
	m := mov(entity.MovementCustom, zona, "7")
	m.CustomType = handlers.ConsignmentIn
	m.Metadata = map[string]any{"consignor": "prov-44"}

	res, err := e.applicator.Process(context.Background(), m)
	require.NoError(t, err)
	require.True(t, res.Success, "errores: %v", res.Errors)
	assert.True(t, res.StockCreated)
	assert.True(t, res.NewBalance.Equal(d("7")))
}

func TestProcess_CustomSinHandler(t *testing.T) {
	e := newEngine(t)
	e.receive(t, posicion, "5")
	m := mov(entity.MovementCustom, posicion, "1")
	m.CustomType = "donation_out"

	_, err := e.applicator.Process(context.Background(), m)
	assert.ErrorIs(t, err, domain.ErrNoMovementHandler)
}

func TestProcess_FalloAlPublicarNoRevierte(t *testing.T) {
	e := newEngine(t)
	e.publisher.err = errors.New("broker caído")

	res := e.receive(t, posicion, "3")
	assert.True(t, res.Success)
	assert.True(t, e.stockAt(t, posicion).Quantity.Equal(d("3")))

	require.Equal(t, 1, e.publisher.count())
	evt := e.publisher.events[0]
	assert.Equal(t, res.Movement.ID, evt.Movement.ID)
	assert.True(t, evt.PreviousStock.Quantity.IsZero())
	assert.True(t, evt.Stock.Quantity.Equal(d("3")))
}

// ──────────────────────────────────────────────────────────────────────────────
// Opciones
// ──────────────────────────────────────────────────────────────────────────────

func TestProcess_HookFallidoRevierteTodo(t *testing.T) {
	e := newEngine(t)
	e.receive(t, posicion, "10")
	boom := errors.New("fallo del hook")

	_, err := e.applicator.Process(context.Background(), mov(entity.MovementShipment, posicion, "4"),
		appinv.WithinTx(func(context.Context, appinv.TxRepos, *appinv.ProcessResult) error { return boom }))
	assert.ErrorIs(t, err, boom)
	assert.True(t, e.stockAt(t, posicion).Quantity.Equal(d("10")))
}

func TestProcess_PreCheckAcumulaErrores(t *testing.T) {
	e := newEngine(t)
	e.receive(t, posicion, "10")

	check := appinv.WithPreCheck(func(stock entity.StockItem, _ entity.LocationSettings) inventory.ValidationResult {
		var r inventory.ValidationResult
		r.AddError("regla externa sobre %s", stock.Quantity)
		return r
	})
	res, err := e.applicator.Process(context.Background(), mov(entity.MovementShipment, posicion, "40"), check)
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Len(t, res.Errors, 2, "stock insuficiente y regla externa")
	assert.Contains(t, res.Errors, "regla externa sobre 10")
}
