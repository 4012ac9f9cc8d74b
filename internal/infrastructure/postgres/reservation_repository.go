package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/stock-engine/internal/domain"
	"github.com/jhoicas/stock-engine/internal/domain/entity"
	"github.com/jhoicas/stock-engine/internal/domain/repository"
)

var _ repository.ReservationRepository = (*ReservationRepo)(nil)

const reservationColumns = `id, item_id, location_id, lot_id, quantity, reserved_by, reference_type,
	reference_id, reason, status, expires_at, movement_id, released_at, created_at, updated_at`

// ReservationRepo libro de reservas sobre PostgreSQL (usable con pool o tx).
type ReservationRepo struct {
	q Querier
}

// NewReservationRepository construye el adaptador. Pasar pool o tx (Querier).
func NewReservationRepository(q Querier) *ReservationRepo {
	return &ReservationRepo{q: q}
}

// Create persiste una reserva.
func (r *ReservationRepo) Create(ctx context.Context, res entity.Reservation) error {
	query := `
		INSERT INTO reservations (` + reservationColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`
	_, err := r.q.Exec(ctx, query,
		res.ID, res.ItemID, res.LocationID, res.LotID, res.Quantity, res.ReservedBy, res.ReferenceType,
		res.ReferenceID, res.Reason, res.Status, res.ExpiresAt, res.MovementID, res.ReleasedAt,
		res.CreatedAt, res.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("reserva %s: %w", res.ID, domain.ErrDuplicate)
		}
		return fmt.Errorf("create reservation: %w", err)
	}
	return nil
}

// Update guarda estado, movimiento asociado y timestamps.
func (r *ReservationRepo) Update(ctx context.Context, res entity.Reservation) error {
	query := `
		UPDATE reservations
		SET status = $2, movement_id = $3, released_at = $4, expires_at = $5, updated_at = $6
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, query, res.ID, res.Status, res.MovementID, res.ReleasedAt, res.ExpiresAt, res.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update reservation: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// GetByID obtiene una reserva; (nil, nil) si no existe.
func (r *ReservationRepo) GetByID(ctx context.Context, id string) (*entity.Reservation, error) {
	return r.get(ctx, `SELECT `+reservationColumns+` FROM reservations WHERE id = $1`, id)
}

// GetByIDForUpdate obtiene la reserva y bloquea la fila.
func (r *ReservationRepo) GetByIDForUpdate(ctx context.Context, id string) (*entity.Reservation, error) {
	return r.get(ctx, `SELECT `+reservationColumns+` FROM reservations WHERE id = $1 FOR UPDATE`, id)
}

// ListExpired reservas pending o active vencidas, más antiguas primero.
func (r *ReservationRepo) ListExpired(ctx context.Context, now time.Time, limit int) ([]entity.Reservation, error) {
	query := `SELECT ` + reservationColumns + `
		FROM reservations
		WHERE status IN ('pending', 'active') AND expires_at IS NOT NULL AND expires_at <= $1
		ORDER BY expires_at, id
		LIMIT $2`
	return r.list(ctx, query, now, limit)
}

// ListByReference reservas de un documento.
func (r *ReservationRepo) ListByReference(ctx context.Context, referenceType, referenceID string) ([]entity.Reservation, error) {
	query := `SELECT ` + reservationColumns + `
		FROM reservations WHERE reference_type = $1 AND reference_id = $2
		ORDER BY created_at, id`
	return r.list(ctx, query, referenceType, referenceID)
}

func (r *ReservationRepo) get(ctx context.Context, query string, args ...any) (*entity.Reservation, error) {
	res, err := scanReservation(r.q.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get reservation: %w", err)
	}
	return res, nil
}

func (r *ReservationRepo) list(ctx context.Context, query string, args ...any) ([]entity.Reservation, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list reservations: %w", err)
	}
	defer rows.Close()
	var list []entity.Reservation
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, fmt.Errorf("scan reservation: %w", err)
		}
		list = append(list, *res)
	}
	return list, rows.Err()
}

func scanReservation(row pgx.Row) (*entity.Reservation, error) {
	var res entity.Reservation
	err := row.Scan(
		&res.ID, &res.ItemID, &res.LocationID, &res.LotID, &res.Quantity, &res.ReservedBy, &res.ReferenceType,
		&res.ReferenceID, &res.Reason, &res.Status, &res.ExpiresAt, &res.MovementID, &res.ReleasedAt,
		&res.CreatedAt, &res.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &res, nil
}
