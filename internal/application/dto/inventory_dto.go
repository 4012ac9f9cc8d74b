package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// RegisterMovementRequest body para POST /api/inventory/movements y /movements/pending.
type RegisterMovementRequest struct {
	Type          string          `json:"type" validate:"required"`
	CustomType    string          `json:"custom_type,omitempty"`
	ItemID        string          `json:"item_id" validate:"required"`
	LocationID    string          `json:"location_id" validate:"required"`
	LotID         string          `json:"lot_id,omitempty"`
	Quantity      decimal.Decimal `json:"quantity"`
	ReferenceType string          `json:"reference_type,omitempty"`
	ReferenceID   string          `json:"reference_id,omitempty"`
	Reason        string          `json:"reason,omitempty"`
	Metadata      map[string]any  `json:"metadata,omitempty"` // ej. lot_expires_at, counted_quantity
}

// TransferRequest body para POST /api/inventory/transfers.
type TransferRequest struct {
	ItemID                string          `json:"item_id" validate:"required"`
	SourceLocationID      string          `json:"source_location_id" validate:"required"`
	DestinationLocationID string          `json:"destination_location_id" validate:"required"`
	LotID                 string          `json:"lot_id,omitempty"`
	Quantity              decimal.Decimal `json:"quantity"`
	ReferenceType         string          `json:"reference_type,omitempty"`
	ReferenceID           string          `json:"reference_id,omitempty"`
	Reason                string          `json:"reason,omitempty"`
}

// MovementResponse salida de un movimiento.
type MovementResponse struct {
	ID                    string          `json:"id"`
	Type                  string          `json:"type"`
	CustomType            string          `json:"custom_type,omitempty"`
	ItemID                string          `json:"item_id"`
	LocationID            string          `json:"location_id"`
	SourceLocationID      string          `json:"source_location_id,omitempty"`
	DestinationLocationID string          `json:"destination_location_id,omitempty"`
	LotID                 string          `json:"lot_id,omitempty"`
	Quantity              decimal.Decimal `json:"quantity"`
	ReferenceType         string          `json:"reference_type,omitempty"`
	ReferenceID           string          `json:"reference_id,omitempty"`
	Reason                string          `json:"reason,omitempty"`
	PerformedBy           string          `json:"performed_by,omitempty"`
	WorkspaceID           string          `json:"workspace_id,omitempty"`
	Status                string          `json:"status"`
	Metadata              map[string]any  `json:"metadata,omitempty"`
	CreatedAt             time.Time       `json:"created_at"`
	UpdatedAt             time.Time       `json:"updated_at"`
	CompletedAt           *time.Time      `json:"completed_at,omitempty"`
}

// MovementListResponse historial paginado.
type MovementListResponse struct {
	Items []MovementResponse `json:"items"`
	Page  PageResponse       `json:"page"`
}

// StockItemResponse saldo con el disponible calculado.
type StockItemResponse struct {
	ID                string          `json:"id"`
	ItemID            string          `json:"item_id"`
	LocationID        string          `json:"location_id"`
	LotID             string          `json:"lot_id,omitempty"`
	UnitOfMeasureID   string          `json:"unit_of_measure_id,omitempty"`
	Quantity          decimal.Decimal `json:"quantity"`
	ReservedQuantity  decimal.Decimal `json:"reserved_quantity"`
	AvailableQuantity decimal.Decimal `json:"available_quantity"`
	Version           int64           `json:"version"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

// ProcessResultResponse resultado de aplicar un movimiento.
type ProcessResultResponse struct {
	Success         bool               `json:"success"`
	Movement        MovementResponse   `json:"movement"`
	PreviousStock   *StockItemResponse `json:"previous_stock,omitempty"`
	Stock           *StockItemResponse `json:"stock,omitempty"`
	PreviousBalance decimal.Decimal    `json:"previous_balance"`
	NewBalance      decimal.Decimal    `json:"new_balance"`
	StockCreated    bool               `json:"stock_created"`
	Errors          []string           `json:"errors,omitempty"`
	Warnings        []string           `json:"warnings,omitempty"`
}

// TransferResponse las dos patas del traslado.
type TransferResponse struct {
	Success    bool                   `json:"success"`
	TransferID string                 `json:"transfer_id"`
	Out        *ProcessResultResponse `json:"out,omitempty"`
	In         *ProcessResultResponse `json:"in,omitempty"`
	Errors     []string               `json:"errors,omitempty"`
	Warnings   []string               `json:"warnings,omitempty"`
}

// StockRollupResponse saldo agregado de un subárbol por producto y unidad de medida.
type StockRollupResponse struct {
	ItemID            string          `json:"item_id"`
	SKU               string          `json:"sku,omitempty"`
	Name              string          `json:"name,omitempty"`
	UnitOfMeasureID   string          `json:"unit_of_measure_id"`
	Quantity          decimal.Decimal `json:"quantity"`
	ReservedQuantity  decimal.Decimal `json:"reserved_quantity"`
	AvailableQuantity decimal.Decimal `json:"available_quantity"`
	Locations         int             `json:"locations"`
}

// CatalogItemResponse producto del catálogo externo.
type CatalogItemResponse struct {
	ID              string `json:"id"`
	SKU             string `json:"sku"`
	Name            string `json:"name"`
	UnitOfMeasureID string `json:"unit_of_measure_id"`
}
