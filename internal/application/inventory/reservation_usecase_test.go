package inventory_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appinv "github.com/jhoicas/stock-engine/internal/application/inventory"
	"github.com/jhoicas/stock-engine/internal/domain"
	"github.com/jhoicas/stock-engine/internal/domain/entity"
)

func reserveInput(qty string) appinv.CreateReservationInput {
	return appinv.CreateReservationInput{
		ItemID:        itemCable,
		LocationID:    posicion,
		Quantity:      d(qty),
		ReservedBy:    operadorID,
		ReferenceType: "order",
		ReferenceID:   "OV-1001",
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Validación previa
// ──────────────────────────────────────────────────────────────────────────────

func TestValidateReservation_TechoDeUbicacion(t *testing.T) {
	e := newEngine(t)
	e.store.PutSettings(entity.LocationSettings{LocationID: posicion, MaxReservationPercentage: pct("80")})
	e.receive(t, posicion, "100")
	_, err := e.reservations.CreateReservation(context.Background(), reserveInput("20"))
	require.NoError(t, err)

	check, err := e.reservations.ValidateReservation(context.Background(), appinv.ReservationCheckInput{
		ItemID: itemCable, LocationID: posicion, Quantity: d("90"),
	})
	require.NoError(t, err)
	assert.False(t, check.CanReserve)
	assert.True(t, check.CurrentReserved.Equal(d("20")))
	require.NotNil(t, check.Ceiling)
	assert.True(t, check.Ceiling.Equal(d("80")))

	_, err = e.reservations.ValidateReservation(context.Background(), appinv.ReservationCheckInput{Quantity: d("1")})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestValidateReservation_SinTechoRechazaPorDisponible(t *testing.T) {
	e := newEngine(t)
	e.receive(t, posicion, "100")
	_, err := e.reservations.CreateReservation(context.Background(), reserveInput("20"))
	require.NoError(t, err)

	check, err := e.reservations.ValidateReservation(context.Background(), appinv.ReservationCheckInput{
		ItemID: itemCable, LocationID: posicion, Quantity: d("90"),
	})
	require.NoError(t, err)
	assert.False(t, check.CanReserve)
	assert.Nil(t, check.Ceiling)
	assert.True(t, check.Available.Equal(d("80")))
	require.Len(t, check.Errors, 1)
	assert.Contains(t, check.Errors[0], "80")
	assert.Contains(t, check.Errors[0], "90")
}

// ──────────────────────────────────────────────────────────────────────────────
// Creación y liberación
// ──────────────────────────────────────────────────────────────────────────────

func TestCreateReservation_ActivaYLibera(t *testing.T) {
	e := newEngine(t)
	ctx := context.Background()
	e.receive(t, posicion, "10")

	created, err := e.reservations.CreateReservation(ctx, reserveInput("6"))
	require.NoError(t, err)
	require.True(t, created.Success)
	r := created.Reservation
	require.NotNil(t, r)
	assert.Equal(t, entity.ReservationActive, r.Status)
	assert.Equal(t, created.Movement.Movement.ID, r.MovementID)
	assert.True(t, e.stockAt(t, posicion).ReservedQuantity.Equal(d("6")))

	released, err := e.reservations.ReleaseReservation(ctx, appinv.ReleaseReservationInput{ReservationID: r.ID})
	require.NoError(t, err)
	require.True(t, released.Success)
	require.NotNil(t, released.Reservation)
	assert.Equal(t, entity.ReservationReleased, released.Reservation.Status)
	assert.NotNil(t, released.Reservation.ReleasedAt)
	assert.True(t, e.stockAt(t, posicion).ReservedQuantity.IsZero())

	stored, err := e.reservations.GetReservation(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.ReservationReleased, stored.Status)

	byRef, err := e.reservations.ListByReference(ctx, "order", "OV-1001")
	require.NoError(t, err)
	assert.Len(t, byRef, 1)
}

func TestCreateReservation_SinDisponible(t *testing.T) {
	e := newEngine(t)
	e.receive(t, posicion, "5")

	res, err := e.reservations.CreateReservation(context.Background(), reserveInput("8"))
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.NotEmpty(t, res.Errors)

	list, err := e.reservations.ListByReference(context.Background(), "order", "OV-1001")
	require.NoError(t, err)
	assert.Empty(t, list, "el rechazo no deja fila de reserva")
}

func TestCreateReservation_TechoSoloConValidate(t *testing.T) {
	e := newEngine(t)
	e.store.PutSettings(entity.LocationSettings{LocationID: posicion, MaxReservationPercentage: pct("50")})
	e.receive(t, posicion, "100")

	in := reserveInput("60")
	in.Validate = true
	res, err := e.reservations.CreateReservation(context.Background(), in)
	require.NoError(t, err)
	assert.False(t, res.Success)
	require.Len(t, res.Errors, 1)
	assert.Contains(t, res.Errors[0], "supera el máximo permitido de 50")

	in.Validate = false
	res, err = e.reservations.CreateReservation(context.Background(), in)
	require.NoError(t, err)
	assert.True(t, res.Success)
}

func TestCreateReservation_EntradasInvalidas(t *testing.T) {
	e := newEngine(t)
	past := e.clock.Now().Add(-time.Minute)

	in := reserveInput("0")
	_, err := e.reservations.CreateReservation(context.Background(), in)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	in = reserveInput("1")
	in.ExpiresAt = &past
	_, err = e.reservations.CreateReservation(context.Background(), in)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestReleaseReservation_SinReservaAsociada(t *testing.T) {
	e := newEngine(t)
	e.receive(t, posicion, "10")
	_, err := e.applicator.Process(context.Background(), mov(entity.MovementReserve, posicion, "3"))
	require.NoError(t, err)

	res, err := e.reservations.ReleaseReservation(context.Background(), appinv.ReleaseReservationInput{
		ItemID: itemCable, LocationID: posicion, Quantity: d("3"),
	})
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Nil(t, res.Reservation)

	_, err = e.reservations.ReleaseReservation(context.Background(), appinv.ReleaseReservationInput{ReservationID: "no-existe"})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestReleaseReservation_DobleLiberacion(t *testing.T) {
	e := newEngine(t)
	ctx := context.Background()
	e.receive(t, posicion, "20")

	a, err := e.reservations.CreateReservation(ctx, reserveInput("6"))
	require.NoError(t, err)
	b, err := e.reservations.CreateReservation(ctx, reserveInput("6"))
	require.NoError(t, err)

	first, err := e.reservations.ReleaseReservation(ctx, appinv.ReleaseReservationInput{ReservationID: a.Reservation.ID})
	require.NoError(t, err)
	require.True(t, first.Success)
	assert.True(t, e.stockAt(t, posicion).ReservedQuantity.Equal(d("6")))

	_, err = e.reservations.ReleaseReservation(ctx, appinv.ReleaseReservationInput{ReservationID: a.Reservation.ID})
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	assert.True(t, e.stockAt(t, posicion).ReservedQuantity.Equal(d("6")), "el saldo de B sigue respaldado")

	stored, err := e.reservations.GetReservation(ctx, b.Reservation.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.ReservationActive, stored.Status)
}

func TestReleaseReservation_NoActivaNoLibera(t *testing.T) {
	e := newEngine(t)
	ctx := context.Background()
	e.receive(t, posicion, "20")
	_, err := e.reservations.CreateReservation(ctx, reserveInput("6"))
	require.NoError(t, err)

	pendingIn := reserveInput("4")
	pendingIn.RequireApproval = true
	pending, err := e.reservations.CreateReservation(ctx, pendingIn)
	require.NoError(t, err)
	_, err = e.reservations.ReleaseReservation(ctx, appinv.ReleaseReservationInput{ReservationID: pending.Reservation.ID})
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	rejectIn := reserveInput("4")
	rejectIn.RequireApproval = true
	toReject, err := e.reservations.CreateReservation(ctx, rejectIn)
	require.NoError(t, err)
	_, err = e.reservations.RejectReservation(ctx, toReject.Reservation.ID)
	require.NoError(t, err)
	_, err = e.reservations.ReleaseReservation(ctx, appinv.ReleaseReservationInput{ReservationID: toReject.Reservation.ID})
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	assert.True(t, e.stockAt(t, posicion).ReservedQuantity.Equal(d("6")))
}

func TestReleaseReservation_ParcialPorIDRechazada(t *testing.T) {
	e := newEngine(t)
	ctx := context.Background()
	e.receive(t, posicion, "20")
	a, err := e.reservations.CreateReservation(ctx, reserveInput("6"))
	require.NoError(t, err)

	_, err = e.reservations.ReleaseReservation(ctx, appinv.ReleaseReservationInput{
		ReservationID: a.Reservation.ID, Quantity: d("2"),
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = e.reservations.ReleaseReservation(ctx, appinv.ReleaseReservationInput{
		ReservationID: a.Reservation.ID, ItemID: itemCable, LocationID: zona,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.True(t, e.stockAt(t, posicion).ReservedQuantity.Equal(d("6")))
}

// Liberar por id una reserva activa ya vencida la cierra; el barrido no vuelve a restarla.
func TestReleaseReservation_VencidaNoSeLiberaDosVeces(t *testing.T) {
	e := newEngine(t)
	ctx := context.Background()
	e.receive(t, posicion, "20")

	exp := e.clock.Now().Add(time.Hour)
	aIn := reserveInput("6")
	aIn.ExpiresAt = &exp
	a, err := e.reservations.CreateReservation(ctx, aIn)
	require.NoError(t, err)
	b, err := e.reservations.CreateReservation(ctx, reserveInput("6"))
	require.NoError(t, err)

	e.clock.Advance(2 * time.Hour)
	released, err := e.reservations.ReleaseReservation(ctx, appinv.ReleaseReservationInput{ReservationID: a.Reservation.ID})
	require.NoError(t, err)
	require.True(t, released.Success)
	require.NotNil(t, released.Reservation)
	assert.Equal(t, entity.ReservationReleased, released.Reservation.Status)
	assert.True(t, e.stockAt(t, posicion).ReservedQuantity.Equal(d("6")))

	n, err := e.reservations.ExpireDue(ctx, 10)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.True(t, e.stockAt(t, posicion).ReservedQuantity.Equal(d("6")))

	stored, err := e.reservations.GetReservation(ctx, b.Reservation.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.ReservationActive, stored.Status)
}

// ──────────────────────────────────────────────────────────────────────────────
// Aprobación
// ──────────────────────────────────────────────────────────────────────────────

func TestApproveReservation_PendienteAActiva(t *testing.T) {
	e := newEngine(t)
	ctx := context.Background()
	e.receive(t, posicion, "10")

	in := reserveInput("4")
	in.RequireApproval = true
	created, err := e.reservations.CreateReservation(ctx, in)
	require.NoError(t, err)
	require.True(t, created.Success)
	assert.Equal(t, entity.ReservationPending, created.Reservation.Status)
	assert.True(t, e.stockAt(t, posicion).ReservedQuantity.IsZero(), "pendiente no toca el contador")

	approved, err := e.reservations.ApproveReservation(ctx, created.Reservation.ID, "supervisor-1")
	require.NoError(t, err)
	require.True(t, approved.Success)
	assert.Equal(t, entity.ReservationActive, approved.Reservation.Status)
	assert.Equal(t, "supervisor-1", approved.Movement.Movement.PerformedBy)
	assert.True(t, e.stockAt(t, posicion).ReservedQuantity.Equal(d("4")))

	_, err = e.reservations.ApproveReservation(ctx, created.Reservation.ID, "supervisor-1")
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestApproveReservation_SinDisponibleSiguePendiente(t *testing.T) {
	e := newEngine(t)
	ctx := context.Background()
	e.receive(t, posicion, "2")

	in := reserveInput("4")
	in.RequireApproval = true
	created, err := e.reservations.CreateReservation(ctx, in)
	require.NoError(t, err)

	res, err := e.reservations.ApproveReservation(ctx, created.Reservation.ID, "")
	require.NoError(t, err)
	assert.False(t, res.Success)

	stored, err := e.reservations.GetReservation(ctx, created.Reservation.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.ReservationPending, stored.Status)
}

func TestRejectReservation(t *testing.T) {
	e := newEngine(t)
	ctx := context.Background()

	in := reserveInput("4")
	in.RequireApproval = true
	created, err := e.reservations.CreateReservation(ctx, in)
	require.NoError(t, err)

	rejected, err := e.reservations.RejectReservation(ctx, created.Reservation.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.ReservationRejected, rejected.Status)

	_, err = e.reservations.RejectReservation(ctx, created.Reservation.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	_, err = e.reservations.RejectReservation(ctx, "no-existe")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// ──────────────────────────────────────────────────────────────────────────────
// Vencimiento
// ──────────────────────────────────────────────────────────────────────────────

func TestExpireDue_LiberaLasActivasVencidas(t *testing.T) {
	e := newEngine(t)
	ctx := context.Background()
	e.receive(t, posicion, "10")

	exp := e.clock.Now().Add(time.Hour)
	in := reserveInput("6")
	in.ExpiresAt = &exp
	created, err := e.reservations.CreateReservation(ctx, in)
	require.NoError(t, err)
	require.True(t, created.Success)

	pendingIn := reserveInput("1")
	pendingIn.ExpiresAt = &exp
	pendingIn.RequireApproval = true
	pending, err := e.reservations.CreateReservation(ctx, pendingIn)
	require.NoError(t, err)

	n, err := e.reservations.ExpireDue(ctx, 10)
	require.NoError(t, err)
	assert.Zero(t, n, "todavía no vencen")

	e.clock.Advance(2 * time.Hour)
	n, err = e.reservations.ExpireDue(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	assert.True(t, e.stockAt(t, posicion).ReservedQuantity.IsZero())
	for _, id := range []string{created.Reservation.ID, pending.Reservation.ID} {
		r, err := e.reservations.GetReservation(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, entity.ReservationExpired, r.Status)
	}
}

// El contador ya se liberó por otro camino: la reserva vence igual sin mover stock.
func TestExpireDue_ContadorInsuficiente(t *testing.T) {
	e := newEngine(t)
	ctx := context.Background()
	e.receive(t, posicion, "10")

	exp := e.clock.Now().Add(time.Minute)
	in := reserveInput("5")
	in.ExpiresAt = &exp
	created, err := e.reservations.CreateReservation(ctx, in)
	require.NoError(t, err)

	_, err = e.reservations.ReleaseReservation(ctx, appinv.ReleaseReservationInput{
		ItemID: itemCable, LocationID: posicion, Quantity: d("5"),
	})
	require.NoError(t, err)

	e.clock.Advance(time.Hour)
	n, err := e.reservations.ExpireDue(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	r, err := e.reservations.GetReservation(ctx, created.Reservation.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.ReservationExpired, r.Status)
	assert.True(t, e.stockAt(t, posicion).ReservedQuantity.IsZero())
}

func TestExpirySweeper_Sweep(t *testing.T) {
	e := newEngine(t)
	ctx := context.Background()
	e.receive(t, posicion, "10")

	exp := e.clock.Now().Add(time.Minute)
	for i := 0; i < 3; i++ {
		in := reserveInput("1")
		in.ExpiresAt = &exp
		_, err := e.reservations.CreateReservation(ctx, in)
		require.NoError(t, err)
	}
	e.clock.Advance(time.Hour)

	sweeper := appinv.NewExpirySweeper(e.reservations, time.Minute, 2, nil)
	assert.Equal(t, 3, sweeper.Sweep(ctx), "dos pasadas: una llena y otra parcial")
	assert.Zero(t, sweeper.Sweep(ctx))
}

func TestExpirySweeper_RunDeshabilitado(t *testing.T) {
	e := newEngine(t)
	done := make(chan struct{})
	go func() {
		appinv.NewExpirySweeper(e.reservations, 0, 10, nil).Run(context.Background())
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("con intervalo cero Run debe retornar de inmediato")
	}
}
