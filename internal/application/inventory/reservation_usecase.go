package inventory

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-engine/internal/domain"
	"github.com/jhoicas/stock-engine/internal/domain/entity"
	"github.com/jhoicas/stock-engine/internal/domain/inventory"
	"github.com/jhoicas/stock-engine/internal/domain/repository"
	"github.com/jhoicas/stock-engine/pkg/logger"
)

// errReservationClosed otro proceso cerró la reserva mientras se vencía: se revierte el RELEASE.
var errReservationClosed = errors.New("reserva ya cerrada")

// ReservationUseCase ciclo de vida de reservas. El contador ReservedQuantity del saldo
// lo mueven siempre movimientos RESERVE/RELEASE; la fila Reservation se escribe en la
// misma transacción que el movimiento.
type ReservationUseCase struct {
	applicator   *MovementApplicator
	txRunner     TxRunner
	stock        repository.StockItemRepository
	reservations repository.ReservationRepository
	log          *logger.Logger
	now          func() time.Time
}

// NewReservationUseCase construye el caso de uso.
func NewReservationUseCase(
	applicator *MovementApplicator,
	txRunner TxRunner,
	stock repository.StockItemRepository,
	reservations repository.ReservationRepository,
	log *logger.Logger,
) *ReservationUseCase {
	if log == nil {
		log = logger.Nop()
	}
	return &ReservationUseCase{
		applicator:   applicator,
		txRunner:     txRunner,
		stock:        stock,
		reservations: reservations,
		log:          log,
		now:          applicator.now,
	}
}

// ReservationCheckInput consulta de factibilidad (solo lectura).
type ReservationCheckInput struct {
	ItemID     string
	LocationID string
	LotID      string
	Quantity   decimal.Decimal
}

// CreateReservationInput entrada de CreateReservation.
type CreateReservationInput struct {
	ItemID          string
	LocationID      string
	LotID           string
	Quantity        decimal.Decimal
	ReservedBy      string
	ReferenceType   string
	ReferenceID     string
	Reason          string
	WorkspaceID     string
	ExpiresAt       *time.Time
	RequireApproval bool // true: queda pending sin tocar el contador
	Validate        bool // true: aplica el techo porcentual de la ubicación
}

// ReleaseReservationInput entrada de ReleaseReservation. Con ReservationID, los campos
// vacíos (item, ubicación, lote, cantidad) se toman de la reserva; la reserva debe estar
// activa y se libera completa.
type ReleaseReservationInput struct {
	ReservationID string
	ItemID        string
	LocationID    string
	LotID         string
	Quantity      decimal.Decimal
	PerformedBy   string
	Reason        string
	WorkspaceID   string
}

// ReservationResult resultado de una operación de reserva. Success=false trae Errors.
type ReservationResult struct {
	Success     bool
	Reservation *entity.Reservation
	Movement    *ProcessResult
	Errors      []string
	Warnings    []string
}

// ValidateReservation pre-chequeo sin efectos: disponible, techo porcentual y advertencias.
func (uc *ReservationUseCase) ValidateReservation(ctx context.Context, in ReservationCheckInput) (inventory.ReservationCheck, error) {
	if in.ItemID == "" || in.LocationID == "" {
		return inventory.ReservationCheck{}, fmt.Errorf("%w: item_id y location_id son obligatorios", domain.ErrInvalidInput)
	}
	stock, err := uc.stock.Get(ctx, entity.StockKey{ItemID: in.ItemID, LocationID: in.LocationID, LotID: in.LotID})
	if err != nil {
		return inventory.ReservationCheck{}, fmt.Errorf("consultar saldo: %w", err)
	}
	policy, err := uc.applicator.policyFor(ctx, in.LocationID)
	if err != nil {
		return inventory.ReservationCheck{}, err
	}
	return inventory.CheckReservation(stock, in.Quantity, policy), nil
}

// CreateReservation crea la reserva. Sin aprobación: movimiento RESERVE + fila active
// en una transacción. Con aprobación: solo la fila pending.
func (uc *ReservationUseCase) CreateReservation(ctx context.Context, in CreateReservationInput) (*ReservationResult, error) {
	if in.ItemID == "" || in.LocationID == "" {
		return nil, fmt.Errorf("%w: item_id y location_id son obligatorios", domain.ErrInvalidInput)
	}
	if !in.Quantity.IsPositive() {
		return nil, fmt.Errorf("%w: la cantidad a reservar debe ser mayor que cero", domain.ErrInvalidInput)
	}
	now := uc.now()
	if in.ExpiresAt != nil && !in.ExpiresAt.After(now) {
		return nil, fmt.Errorf("%w: expires_at debe ser futuro", domain.ErrInvalidInput)
	}

	r := entity.Reservation{
		ID:            uuid.New().String(),
		ItemID:        in.ItemID,
		LocationID:    in.LocationID,
		LotID:         in.LotID,
		Quantity:      in.Quantity,
		ReservedBy:    in.ReservedBy,
		ReferenceType: in.ReferenceType,
		ReferenceID:   in.ReferenceID,
		Reason:        in.Reason,
		Status:        entity.ReservationPending,
		ExpiresAt:     in.ExpiresAt,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if in.RequireApproval {
		err := uc.txRunner.Run(ctx, func(ctx context.Context, repos TxRepos) error {
			return repos.Reservations.Create(ctx, r)
		})
		if err != nil {
			return nil, fmt.Errorf("registrar reserva pendiente: %w", err)
		}
		uc.log.Info().Str("reservation_id", r.ID).Msg("reserva pendiente de aprobación")
		return &ReservationResult{Success: true, Reservation: &r}, nil
	}

	opts := []ProcessOption{WithinTx(func(ctx context.Context, repos TxRepos, res *ProcessResult) error {
		active := r
		active.Status = entity.ReservationActive
		active.MovementID = res.Movement.ID
		if err := repos.Reservations.Create(ctx, active); err != nil {
			return fmt.Errorf("registrar reserva %s: %w", active.ID, err)
		}
		r = active
		return nil
	})}
	if in.Validate {
		opts = append(opts, ceilingCheck(in.Quantity))
	}

	res, err := uc.applicator.Process(ctx, uc.reserveMovement(r, in.WorkspaceID), opts...)
	if err != nil {
		return nil, err
	}
	if !res.Success {
		return &ReservationResult{Success: false, Movement: res, Errors: res.Errors, Warnings: res.Warnings}, nil
	}
	uc.log.Info().Str("reservation_id", r.ID).Str("quantity", r.Quantity.String()).Msg("reserva activa")
	return &ReservationResult{Success: true, Reservation: &r, Movement: res, Warnings: res.Warnings}, nil
}

// ReleaseReservation libera cantidad reservada con un movimiento RELEASE. La reserva
// indicada pasa a released en la misma transacción, aunque ya haya vencido.
func (uc *ReservationUseCase) ReleaseReservation(ctx context.Context, in ReleaseReservationInput) (*ReservationResult, error) {
	var reservation *entity.Reservation
	if in.ReservationID != "" {
		r, err := uc.reservations.GetByID(ctx, in.ReservationID)
		if err != nil {
			return nil, fmt.Errorf("obtener reserva %s: %w", in.ReservationID, err)
		}
		if r == nil {
			return nil, domain.ErrNotFound
		}
		if r.Status != entity.ReservationActive {
			return nil, fmt.Errorf("reserva %s en estado %s: %w", r.ID, r.Status, domain.ErrInvalidTransition)
		}
		reservation = r
		if in.ItemID == "" {
			in.ItemID, in.LocationID, in.LotID = r.ItemID, r.LocationID, r.LotID
		}
		if (entity.StockKey{ItemID: in.ItemID, LocationID: in.LocationID, LotID: in.LotID}) != r.StockKey() {
			return nil, fmt.Errorf("%w: la reserva %s pertenece a otro saldo", domain.ErrInvalidInput, r.ID)
		}
		if in.Quantity.IsZero() {
			in.Quantity = r.Quantity
		}
		if !in.Quantity.Equal(r.Quantity) {
			return nil, fmt.Errorf("%w: la reserva %s se libera completa (%s)", domain.ErrInvalidInput, r.ID, r.Quantity)
		}
	}
	if in.ItemID == "" || in.LocationID == "" {
		return nil, fmt.Errorf("%w: item_id y location_id son obligatorios", domain.ErrInvalidInput)
	}
	if !in.Quantity.IsPositive() {
		return nil, fmt.Errorf("%w: la cantidad a liberar debe ser mayor que cero", domain.ErrInvalidInput)
	}

	m := entity.Movement{
		Type:        entity.MovementRelease,
		ItemID:      in.ItemID,
		LocationID:  in.LocationID,
		LotID:       in.LotID,
		Quantity:    in.Quantity,
		Reason:      in.Reason,
		PerformedBy: in.PerformedBy,
		WorkspaceID: in.WorkspaceID,
	}
	var released *entity.Reservation
	var opts []ProcessOption
	if reservation != nil {
		m.ReferenceType, m.ReferenceID = reservation.ReferenceType, reservation.ReferenceID
		m.Metadata = map[string]any{"reservation_id": reservation.ID}
		opts = append(opts, WithinTx(func(ctx context.Context, repos TxRepos, res *ProcessResult) error {
			locked, err := repos.Reservations.GetByIDForUpdate(ctx, reservation.ID)
			if err != nil {
				return fmt.Errorf("bloquear reserva %s: %w", reservation.ID, err)
			}
			if locked == nil {
				return fmt.Errorf("reserva %s: %w", reservation.ID, domain.ErrNotFound)
			}
			// Vencida pero aún activa: queda released y el barrido ya no la toma.
			next, err := locked.Release(res.Movement.UpdatedAt)
			if err != nil {
				return err
			}
			if err := repos.Reservations.Update(ctx, next); err != nil {
				return fmt.Errorf("actualizar reserva %s: %w", next.ID, err)
			}
			released = &next
			return nil
		}))
	}

	res, err := uc.applicator.Process(ctx, m, opts...)
	if err != nil {
		return nil, err
	}
	if !res.Success {
		return &ReservationResult{Success: false, Reservation: reservation, Movement: res, Errors: res.Errors, Warnings: res.Warnings}, nil
	}
	return &ReservationResult{Success: true, Reservation: released, Movement: res, Warnings: res.Warnings}, nil
}

// ApproveReservation pending -> active: aplica el RESERVE (con techo porcentual) y
// activa la reserva en la misma transacción.
func (uc *ReservationUseCase) ApproveReservation(ctx context.Context, reservationID, approvedBy string) (*ReservationResult, error) {
	r, err := uc.GetReservation(ctx, reservationID)
	if err != nil {
		return nil, err
	}
	if r.Status != entity.ReservationPending {
		return nil, fmt.Errorf("reserva %s en estado %s: %w", r.ID, r.Status, domain.ErrInvalidTransition)
	}
	if r.ExpiresAt != nil && !r.ExpiresAt.After(uc.now()) {
		return nil, fmt.Errorf("reserva %s vencida: %w", r.ID, domain.ErrInvalidTransition)
	}

	var activated entity.Reservation
	hook := WithinTx(func(ctx context.Context, repos TxRepos, res *ProcessResult) error {
		locked, err := repos.Reservations.GetByIDForUpdate(ctx, r.ID)
		if err != nil {
			return fmt.Errorf("bloquear reserva %s: %w", r.ID, err)
		}
		if locked == nil {
			return domain.ErrNotFound
		}
		next, err := locked.Activate(res.Movement.ID, res.Movement.UpdatedAt)
		if err != nil {
			return err
		}
		if err := repos.Reservations.Update(ctx, next); err != nil {
			return fmt.Errorf("actualizar reserva %s: %w", next.ID, err)
		}
		activated = next
		return nil
	})

	m := uc.reserveMovement(*r, "")
	if approvedBy != "" {
		m.PerformedBy = approvedBy
	}
	res, err := uc.applicator.Process(ctx, m, hook, ceilingCheck(r.Quantity))
	if err != nil {
		return nil, err
	}
	if !res.Success {
		return &ReservationResult{Success: false, Reservation: r, Movement: res, Errors: res.Errors, Warnings: res.Warnings}, nil
	}
	uc.log.Info().Str("reservation_id", r.ID).Str("approved_by", approvedBy).Msg("reserva aprobada")
	return &ReservationResult{Success: true, Reservation: &activated, Movement: res, Warnings: res.Warnings}, nil
}

// RejectReservation pending -> rejected. No toca el stock.
func (uc *ReservationUseCase) RejectReservation(ctx context.Context, reservationID string) (*entity.Reservation, error) {
	var rejected entity.Reservation
	err := uc.txRunner.Run(ctx, func(ctx context.Context, repos TxRepos) error {
		locked, err := repos.Reservations.GetByIDForUpdate(ctx, reservationID)
		if err != nil {
			return err
		}
		if locked == nil {
			return domain.ErrNotFound
		}
		next, err := locked.Reject(uc.now())
		if err != nil {
			return err
		}
		rejected = next
		return repos.Reservations.Update(ctx, next)
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().Str("reservation_id", reservationID).Msg("reserva rechazada")
	return &rejected, nil
}

// GetReservation domain.ErrNotFound si no existe.
func (uc *ReservationUseCase) GetReservation(ctx context.Context, reservationID string) (*entity.Reservation, error) {
	r, err := uc.reservations.GetByID(ctx, reservationID)
	if err != nil {
		return nil, fmt.Errorf("obtener reserva %s: %w", reservationID, err)
	}
	if r == nil {
		return nil, domain.ErrNotFound
	}
	return r, nil
}

// ListByReference reservas de un documento (orden, pedido...).
func (uc *ReservationUseCase) ListByReference(ctx context.Context, referenceType, referenceID string) ([]entity.Reservation, error) {
	return uc.reservations.ListByReference(ctx, referenceType, referenceID)
}

// ExpireDue vence hasta limit reservas con ExpiresAt <= now. Las activas liberan su
// cantidad; si el contador ya no alcanza, la reserva se vence igual y se registra la deriva.
func (uc *ReservationUseCase) ExpireDue(ctx context.Context, limit int) (int, error) {
	now := uc.now()
	due, err := uc.reservations.ListExpired(ctx, now, limit)
	if err != nil {
		return 0, fmt.Errorf("listar reservas vencidas: %w", err)
	}
	expired := 0
	for _, r := range due {
		if err := ctx.Err(); err != nil {
			return expired, err
		}
		ok, err := uc.expireOne(ctx, r)
		if err != nil {
			uc.log.Error().Err(err).Str("reservation_id", r.ID).Msg("no se pudo vencer la reserva")
			continue
		}
		if ok {
			expired++
		}
	}
	return expired, nil
}

func (uc *ReservationUseCase) expireOne(ctx context.Context, r entity.Reservation) (bool, error) {
	if r.Status == entity.ReservationActive {
		done := false
		m := entity.Movement{
			Type:          entity.MovementRelease,
			ItemID:        r.ItemID,
			LocationID:    r.LocationID,
			LotID:         r.LotID,
			Quantity:      r.Quantity,
			ReferenceType: r.ReferenceType,
			ReferenceID:   r.ReferenceID,
			Reason:        "reserva vencida",
			PerformedBy:   "system",
			Metadata:      map[string]any{"reservation_id": r.ID},
		}
		res, err := uc.applicator.Process(ctx, m, WithinTx(func(ctx context.Context, repos TxRepos, res *ProcessResult) error {
			var err error
			done, err = expireLocked(ctx, repos, r.ID, res.Movement.UpdatedAt)
			if err == nil && !done {
				return errReservationClosed
			}
			return err
		}))
		if errors.Is(err, errReservationClosed) {
			return false, nil
		}
		if err != nil {
			return false, err
		}
		if res.Success {
			return done, nil
		}
		uc.log.Warn().
			Str("reservation_id", r.ID).
			Strs("errors", res.Errors).
			Msg("el contador de reservas no cubre la reserva vencida; se vence sin liberar")
	}

	done := false
	err := uc.txRunner.Run(ctx, func(ctx context.Context, repos TxRepos) error {
		var err error
		done, err = expireLocked(ctx, repos, r.ID, uc.now())
		return err
	})
	return done, err
}

// expireLocked vence la reserva si sigue pending o active; false si otro proceso ya la cerró.
func expireLocked(ctx context.Context, repos TxRepos, id string, now time.Time) (bool, error) {
	locked, err := repos.Reservations.GetByIDForUpdate(ctx, id)
	if err != nil {
		return false, err
	}
	if locked == nil {
		return false, nil
	}
	next, err := locked.Expire(now)
	if err != nil {
		return false, nil
	}
	if err := repos.Reservations.Update(ctx, next); err != nil {
		return false, err
	}
	return true, nil
}

func (uc *ReservationUseCase) reserveMovement(r entity.Reservation, workspaceID string) entity.Movement {
	return entity.Movement{
		Type:          entity.MovementReserve,
		ItemID:        r.ItemID,
		LocationID:    r.LocationID,
		LotID:         r.LotID,
		Quantity:      r.Quantity,
		ReferenceType: r.ReferenceType,
		ReferenceID:   r.ReferenceID,
		Reason:        r.Reason,
		PerformedBy:   r.ReservedBy,
		WorkspaceID:   workspaceID,
		Metadata:      map[string]any{"reservation_id": r.ID},
	}
}

func ceilingCheck(requested decimal.Decimal) ProcessOption {
	return WithPreCheck(func(stock entity.StockItem, policy entity.LocationSettings) inventory.ValidationResult {
		return inventory.ReservationCeiling(stock, requested, policy).ValidationResult
	})
}
