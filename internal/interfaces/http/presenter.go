package http

import (
	"github.com/jhoicas/stock-engine/internal/application/dto"
	appinv "github.com/jhoicas/stock-engine/internal/application/inventory"
	"github.com/jhoicas/stock-engine/internal/domain/entity"
	"github.com/jhoicas/stock-engine/internal/domain/inventory"
)

func toMovementResponse(m entity.Movement) dto.MovementResponse {
	return dto.MovementResponse{
		ID:                    m.ID,
		Type:                  string(m.Type),
		CustomType:            m.CustomType,
		ItemID:                m.ItemID,
		LocationID:            m.LocationID,
		SourceLocationID:      m.SourceLocationID,
		DestinationLocationID: m.DestinationLocationID,
		LotID:                 m.LotID,
		Quantity:              m.Quantity,
		ReferenceType:         m.ReferenceType,
		ReferenceID:           m.ReferenceID,
		Reason:                m.Reason,
		PerformedBy:           m.PerformedBy,
		WorkspaceID:           m.WorkspaceID,
		Status:                string(m.Status),
		Metadata:              m.Metadata,
		CreatedAt:             m.CreatedAt,
		UpdatedAt:             m.UpdatedAt,
		CompletedAt:           m.CompletedAt,
	}
}

func toMovementList(list []entity.Movement) []dto.MovementResponse {
	out := make([]dto.MovementResponse, 0, len(list))
	for _, m := range list {
		out = append(out, toMovementResponse(m))
	}
	return out
}

func toStockItemResponse(s entity.StockItem) *dto.StockItemResponse {
	return &dto.StockItemResponse{
		ID:                s.ID,
		ItemID:            s.ItemID,
		LocationID:        s.LocationID,
		LotID:             s.LotID,
		UnitOfMeasureID:   s.UnitOfMeasureID,
		Quantity:          s.Quantity,
		ReservedQuantity:  s.ReservedQuantity,
		AvailableQuantity: s.AvailableQuantity(),
		Version:           s.Version,
		UpdatedAt:         s.UpdatedAt,
	}
}

func toStockList(list []entity.StockItem) []dto.StockItemResponse {
	out := make([]dto.StockItemResponse, 0, len(list))
	for _, s := range list {
		out = append(out, *toStockItemResponse(s))
	}
	return out
}

func toProcessResultResponse(r *appinv.ProcessResult) *dto.ProcessResultResponse {
	if r == nil {
		return nil
	}
	out := &dto.ProcessResultResponse{
		Success:         r.Success,
		Movement:        toMovementResponse(r.Movement),
		PreviousBalance: r.PreviousBalance,
		NewBalance:      r.NewBalance,
		StockCreated:    r.StockCreated,
		Errors:          r.Errors,
		Warnings:        r.Warnings,
	}
	// saldo sin persistir (rechazo sobre key inexistente): no se expone
	if r.PreviousStock.ID != "" {
		out.PreviousStock = toStockItemResponse(r.PreviousStock)
	}
	if r.Stock.ID != "" {
		out.Stock = toStockItemResponse(r.Stock)
	}
	return out
}

func toTransferResponse(r *appinv.TransferResult) dto.TransferResponse {
	return dto.TransferResponse{
		Success:    r.Success,
		TransferID: r.TransferID,
		Out:        toProcessResultResponse(r.Out),
		In:         toProcessResultResponse(r.In),
		Errors:     r.Errors,
		Warnings:   r.Warnings,
	}
}

func toRollupList(list []entity.StockRollup) []dto.StockRollupResponse {
	out := make([]dto.StockRollupResponse, 0, len(list))
	for _, ru := range list {
		item := dto.StockRollupResponse{
			ItemID:            ru.ItemID,
			UnitOfMeasureID:   ru.UnitOfMeasureID,
			Quantity:          ru.Quantity,
			ReservedQuantity:  ru.ReservedQuantity,
			AvailableQuantity: ru.AvailableQuantity(),
			Locations:         ru.Locations,
		}
		if ru.Item != nil {
			item.SKU = ru.Item.SKU
			item.Name = ru.Item.Name
		}
		out = append(out, item)
	}
	return out
}

func toCatalogList(list []entity.CatalogItem) []dto.CatalogItemResponse {
	out := make([]dto.CatalogItemResponse, 0, len(list))
	for _, it := range list {
		out = append(out, dto.CatalogItemResponse{ID: it.ID, SKU: it.SKU, Name: it.Name, UnitOfMeasureID: it.UnitOfMeasureID})
	}
	return out
}

func toReservationCheckResponse(chk inventory.ReservationCheck) dto.ReservationCheckResponse {
	return dto.ReservationCheckResponse{
		CanReserve:      chk.CanReserve,
		Requested:       chk.Requested,
		Quantity:        chk.Quantity,
		CurrentReserved: chk.CurrentReserved,
		Available:       chk.Available,
		Ceiling:         chk.Ceiling,
		Errors:          chk.Errors,
		Warnings:        chk.Warnings,
	}
}

func toReservationResponse(r *entity.Reservation) *dto.ReservationResponse {
	if r == nil {
		return nil
	}
	return &dto.ReservationResponse{
		ID:            r.ID,
		ItemID:        r.ItemID,
		LocationID:    r.LocationID,
		LotID:         r.LotID,
		Quantity:      r.Quantity,
		ReservedBy:    r.ReservedBy,
		ReferenceType: r.ReferenceType,
		ReferenceID:   r.ReferenceID,
		Reason:        r.Reason,
		Status:        string(r.Status),
		ExpiresAt:     r.ExpiresAt,
		MovementID:    r.MovementID,
		ReleasedAt:    r.ReleasedAt,
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}
}

func toReservationResultResponse(r *appinv.ReservationResult) dto.ReservationResultResponse {
	return dto.ReservationResultResponse{
		Success:     r.Success,
		Reservation: toReservationResponse(r.Reservation),
		Movement:    toProcessResultResponse(r.Movement),
		Errors:      r.Errors,
		Warnings:    r.Warnings,
	}
}
