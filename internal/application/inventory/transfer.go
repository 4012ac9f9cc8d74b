package inventory

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/jhoicas/stock-engine/internal/domain"
	"github.com/jhoicas/stock-engine/internal/domain/entity"
)

// TransferInput traslado entre dos ubicaciones del mismo producto (y lote).
type TransferInput struct {
	ItemID                string
	SourceLocationID      string
	DestinationLocationID string
	LotID                 string
	Quantity              decimal.Decimal
	ReferenceType         string
	ReferenceID           string
	Reason                string
	PerformedBy           string
	WorkspaceID           string
}

// TransferResult las dos patas del traslado. Out e In son nil si la validación lo rechazó.
type TransferResult struct {
	Success    bool
	TransferID string
	Out        *ProcessResult
	In         *ProcessResult
	Errors     []string
	Warnings   []string
}

// Transfer registra transfer_out en origen y transfer_in en destino en una sola transacción.
// Los dos saldos se bloquean en orden de key para evitar deadlocks entre traslados cruzados.
func (a *MovementApplicator) Transfer(ctx context.Context, in TransferInput) (*TransferResult, error) {
	if in.ItemID == "" || in.SourceLocationID == "" || in.DestinationLocationID == "" {
		return nil, fmt.Errorf("%w: item_id, origen y destino son obligatorios", domain.ErrInvalidInput)
	}
	if in.SourceLocationID == in.DestinationLocationID {
		return nil, fmt.Errorf("%w: origen y destino deben ser distintos", domain.ErrInvalidInput)
	}
	if !in.Quantity.IsPositive() {
		return nil, fmt.Errorf("%w: la cantidad debe ser mayor que cero", domain.ErrInvalidInput)
	}

	transferID := uuid.New().String()
	out, inbound := a.transferLegs(transferID, in)

	ctx, span := tracer.Start(ctx, "inventory.Transfer", trace.WithAttributes(
		attribute.String("transfer.id", transferID),
		attribute.String("stock.item_id", in.ItemID),
		attribute.String("transfer.source", in.SourceLocationID),
		attribute.String("transfer.destination", in.DestinationLocationID),
	))
	defer span.End()

	srcPolicy, err := a.policyFor(ctx, in.SourceLocationID)
	if err != nil {
		return nil, err
	}
	dstPolicy, err := a.policyFor(ctx, in.DestinationLocationID)
	if err != nil {
		return nil, err
	}

	var result *TransferResult
	for attempt := 1; attempt <= maxApplyAttempts; attempt++ {
		result, err = a.transferOnce(ctx, transferID, out, inbound, srcPolicy, dstPolicy)
		if !errors.Is(err, domain.ErrConcurrentModification) {
			break
		}
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		a.log.Error().Err(err).Str("transfer_id", transferID).Msg("fallo en traslado")
		return nil, err
	}
	if !result.Success {
		a.log.Info().Str("transfer_id", transferID).Strs("errors", result.Errors).Msg("traslado rechazado")
		return result, nil
	}

	a.log.Info().
		Str("transfer_id", transferID).
		Str("item_id", in.ItemID).
		Str("from", in.SourceLocationID).
		Str("to", in.DestinationLocationID).
		Str("quantity", in.Quantity.String()).
		Msg("traslado aplicado")
	a.publish(ctx, result.Out)
	a.publish(ctx, result.In)
	return result, nil
}

func (a *MovementApplicator) transferOnce(
	ctx context.Context,
	transferID string,
	out, inbound entity.Movement,
	srcPolicy, dstPolicy entity.LocationSettings,
) (*TransferResult, error) {
	result := &TransferResult{TransferID: transferID}
	err := a.txRunner.Run(ctx, func(ctx context.Context, repos TxRepos) error {
		first, second := out.StockKey(), inbound.StockKey()
		if second.String() < first.String() {
			first, second = second, first
		}
		for _, key := range []entity.StockKey{first, second} {
			if _, err := repos.Stock.GetForUpdate(ctx, key); err != nil {
				return fmt.Errorf("bloquear saldo %s: %w", key, err)
			}
		}

		outRes, err := a.applyInTx(ctx, repos, out, srcPolicy, processConfig{})
		if err != nil {
			if outRes != nil {
				result.Errors = append(result.Errors, outRes.Errors...)
				result.Warnings = append(result.Warnings, outRes.Warnings...)
			}
			return err
		}
		inRes, err := a.applyInTx(ctx, repos, inbound, dstPolicy, processConfig{})
		if err != nil {
			if inRes != nil {
				result.Errors = append(result.Errors, inRes.Errors...)
				result.Warnings = append(result.Warnings, inRes.Warnings...)
			}
			return err
		}
		result.Out, result.In = outRes, inRes
		result.Warnings = append(append(result.Warnings, outRes.Warnings...), inRes.Warnings...)
		return nil
	})
	if errors.Is(err, errValidationFailed) {
		return result, nil
	}
	if err != nil {
		return nil, err
	}
	result.Success = true
	return result, nil
}

// transferLegs construye las dos patas con referencia común al traslado.
func (a *MovementApplicator) transferLegs(transferID string, in TransferInput) (entity.Movement, entity.Movement) {
	refType, refID := in.ReferenceType, in.ReferenceID
	if refType == "" {
		refType, refID = "transfer", transferID
	}
	base := entity.Movement{
		ItemID:                in.ItemID,
		SourceLocationID:      in.SourceLocationID,
		DestinationLocationID: in.DestinationLocationID,
		LotID:                 in.LotID,
		Quantity:              in.Quantity,
		ReferenceType:         refType,
		ReferenceID:           refID,
		Reason:                in.Reason,
		PerformedBy:           in.PerformedBy,
		WorkspaceID:           in.WorkspaceID,
	}
	out := base
	out.Type = entity.MovementTransferOut
	out.LocationID = in.SourceLocationID
	out.Metadata = map[string]any{"transfer_id": transferID}

	inbound := base
	inbound.Type = entity.MovementTransferIn
	inbound.LocationID = in.DestinationLocationID
	inbound.Metadata = map[string]any{"transfer_id": transferID}

	return a.prepare(out), a.prepare(inbound)
}
