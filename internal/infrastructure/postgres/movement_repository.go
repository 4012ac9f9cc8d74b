package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/stock-engine/internal/domain"
	"github.com/jhoicas/stock-engine/internal/domain/entity"
	"github.com/jhoicas/stock-engine/internal/domain/repository"
)

var _ repository.MovementRepository = (*MovementRepo)(nil)

const movementColumns = `id, type, custom_type, item_id, location_id, source_location_id,
	destination_location_id, quantity, lot_id, reference_type, reference_id, reason,
	performed_by, workspace_id, status, metadata, created_at, updated_at, completed_at`

// MovementRepo implementación sobre PostgreSQL del log de movimientos (usable con pool o tx).
type MovementRepo struct {
	q Querier
}

// NewMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewMovementRepository(q Querier) *MovementRepo {
	return &MovementRepo{q: q}
}

// Create persiste un movimiento.
func (r *MovementRepo) Create(ctx context.Context, m entity.Movement) error {
	query := `
		INSERT INTO stock_movements (` + movementColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)`
	_, err := r.q.Exec(ctx, query,
		m.ID, m.Type, m.CustomType, m.ItemID, m.LocationID, m.SourceLocationID,
		m.DestinationLocationID, m.Quantity, m.LotID, m.ReferenceType, m.ReferenceID, m.Reason,
		m.PerformedBy, m.WorkspaceID, m.Status, metadataOrEmpty(m.Metadata), m.CreatedAt, m.UpdatedAt, m.CompletedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("movimiento %s: %w", m.ID, domain.ErrDuplicate)
		}
		return fmt.Errorf("create movement: %w", err)
	}
	return nil
}

// Save cierra un movimiento que sigue pending; nunca sobrescribe uno completed o failed.
func (r *MovementRepo) Save(ctx context.Context, m entity.Movement) error {
	query := `
		UPDATE stock_movements
		SET status = $2, metadata = $3, updated_at = $4, completed_at = $5
		WHERE id = $1 AND status = 'pending'`
	tag, err := r.q.Exec(ctx, query, m.ID, m.Status, metadataOrEmpty(m.Metadata), m.UpdatedAt, m.CompletedAt)
	if err != nil {
		return fmt.Errorf("save movement: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("movimiento %s no está pendiente: %w", m.ID, domain.ErrConflict)
	}
	return nil
}

// GetByID obtiene un movimiento por ID; (nil, nil) si no existe.
func (r *MovementRepo) GetByID(ctx context.Context, id string) (*entity.Movement, error) {
	query := `SELECT ` + movementColumns + ` FROM stock_movements WHERE id = $1`
	m, err := scanMovement(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get movement: %w", err)
	}
	return m, nil
}

// List historial filtrado, más recientes primero.
func (r *MovementRepo) List(ctx context.Context, f repository.MovementFilter) ([]entity.Movement, error) {
	query := `SELECT ` + movementColumns + ` FROM stock_movements WHERE 1=1`
	var args []any
	pos := 1
	if f.ItemID != "" {
		query += fmt.Sprintf(" AND item_id = $%d", pos)
		args = append(args, f.ItemID)
		pos++
	}
	if f.LocationID != "" {
		query += fmt.Sprintf(" AND location_id = $%d", pos)
		args = append(args, f.LocationID)
		pos++
	}
	if f.From != nil {
		query += fmt.Sprintf(" AND created_at >= $%d", pos)
		args = append(args, *f.From)
		pos++
	}
	if f.To != nil {
		query += fmt.Sprintf(" AND created_at <= $%d", pos)
		args = append(args, *f.To)
		pos++
	}
	query += fmt.Sprintf(" ORDER BY created_at DESC, id LIMIT $%d OFFSET $%d", pos, pos+1)
	args = append(args, f.Limit, f.Offset)
	return r.list(ctx, query, args...)
}

// ListByReference movimientos de un documento, en orden cronológico.
func (r *MovementRepo) ListByReference(ctx context.Context, referenceType, referenceID string) ([]entity.Movement, error) {
	query := `SELECT ` + movementColumns + `
		FROM stock_movements WHERE reference_type = $1 AND reference_id = $2
		ORDER BY created_at, id`
	return r.list(ctx, query, referenceType, referenceID)
}

func (r *MovementRepo) list(ctx context.Context, query string, args ...any) ([]entity.Movement, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list movements: %w", err)
	}
	defer rows.Close()
	var list []entity.Movement
	for rows.Next() {
		m, err := scanMovement(rows)
		if err != nil {
			return nil, fmt.Errorf("scan movement: %w", err)
		}
		list = append(list, *m)
	}
	return list, rows.Err()
}

func scanMovement(row pgx.Row) (*entity.Movement, error) {
	var m entity.Movement
	err := row.Scan(
		&m.ID, &m.Type, &m.CustomType, &m.ItemID, &m.LocationID, &m.SourceLocationID,
		&m.DestinationLocationID, &m.Quantity, &m.LotID, &m.ReferenceType, &m.ReferenceID, &m.Reason,
		&m.PerformedBy, &m.WorkspaceID, &m.Status, &m.Metadata, &m.CreatedAt, &m.UpdatedAt, &m.CompletedAt,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// metadataOrEmpty la columna jsonb es NOT NULL.
func metadataOrEmpty(md map[string]any) map[string]any {
	if md == nil {
		return map[string]any{}
	}
	return md
}
