package inventory

import (
	"context"
	"fmt"

	"github.com/jhoicas/stock-engine/internal/domain"
	"github.com/jhoicas/stock-engine/internal/domain/entity"
)

// SubmitPending registra un movimiento en estado pending sin tocar el stock
// (flujos con aprobación). Se aplica después con ProcessPending.
func (a *MovementApplicator) SubmitPending(ctx context.Context, m entity.Movement) (entity.Movement, error) {
	m.Status = entity.MovementStatusPending
	m = a.prepare(m)
	if err := checkSubmittable(m); err != nil {
		return entity.Movement{}, err
	}
	err := a.txRunner.Run(ctx, func(ctx context.Context, repos TxRepos) error {
		return repos.Movements.Create(ctx, m)
	})
	if err != nil {
		return entity.Movement{}, fmt.Errorf("registrar movimiento pendiente: %w", err)
	}
	a.log.Info().Str("movement_id", m.ID).Str("type", string(m.Type)).Msg("movimiento pendiente registrado")
	return m, nil
}

// ProcessPending aplica un movimiento pending ya almacenado. Si las reglas lo rechazan
// queda marcado como failed; un movimiento completed o failed nunca se reprocesa.
func (a *MovementApplicator) ProcessPending(ctx context.Context, movementID string) (*ProcessResult, error) {
	var stored *entity.Movement
	err := a.txRunner.Run(ctx, func(ctx context.Context, repos TxRepos) error {
		var err error
		stored, err = repos.Movements.GetByID(ctx, movementID)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("obtener movimiento %s: %w", movementID, err)
	}
	if stored == nil {
		return nil, domain.ErrNotFound
	}

	result, err := a.Process(ctx, *stored, asPersisted())
	if err != nil {
		return nil, err
	}
	if result.Success || !stored.CanProcess() {
		return result, nil
	}

	failed := stored.Fail(a.now())
	err = a.txRunner.Run(ctx, func(ctx context.Context, repos TxRepos) error {
		return repos.Movements.Save(ctx, failed)
	})
	if err != nil {
		return nil, fmt.Errorf("marcar movimiento %s como fallido: %w", movementID, err)
	}
	result.Movement = failed
	return result, nil
}

func checkSubmittable(m entity.Movement) error {
	switch {
	case !m.Type.Valid():
		return fmt.Errorf("%w: tipo de movimiento desconocido %q", domain.ErrInvalidInput, m.Type)
	case m.ItemID == "" || m.LocationID == "":
		return fmt.Errorf("%w: item_id y location_id son obligatorios", domain.ErrInvalidInput)
	case m.Quantity.IsNegative():
		return fmt.Errorf("%w: la cantidad no puede ser negativa", domain.ErrInvalidInput)
	case m.Type == entity.MovementCustom && m.CustomType == "":
		return fmt.Errorf("%w: custom_type es obligatorio", domain.ErrInvalidInput)
	}
	return nil
}
