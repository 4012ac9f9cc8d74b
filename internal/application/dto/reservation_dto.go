package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ReservationCheckRequest body para POST /api/reservations/validate.
type ReservationCheckRequest struct {
	ItemID     string          `json:"item_id" validate:"required"`
	LocationID string          `json:"location_id" validate:"required"`
	LotID      string          `json:"lot_id,omitempty"`
	Quantity   decimal.Decimal `json:"quantity"`
}

// ReservationCheckResponse factibilidad de una reserva (sin efectos).
type ReservationCheckResponse struct {
	CanReserve      bool             `json:"can_reserve"`
	Requested       decimal.Decimal  `json:"requested"`
	Quantity        decimal.Decimal  `json:"quantity"`
	CurrentReserved decimal.Decimal  `json:"current_reserved"`
	Available       decimal.Decimal  `json:"available"`
	Ceiling         *decimal.Decimal `json:"ceiling,omitempty"`
	Errors          []string         `json:"errors,omitempty"`
	Warnings        []string         `json:"warnings,omitempty"`
}

// CreateReservationRequest body para POST /api/reservations.
type CreateReservationRequest struct {
	ItemID          string          `json:"item_id" validate:"required"`
	LocationID      string          `json:"location_id" validate:"required"`
	LotID           string          `json:"lot_id,omitempty"`
	Quantity        decimal.Decimal `json:"quantity"`
	ReferenceType   string          `json:"reference_type,omitempty"`
	ReferenceID     string          `json:"reference_id,omitempty"`
	Reason          string          `json:"reason,omitempty"`
	ExpiresAt       *time.Time      `json:"expires_at,omitempty"`
	RequireApproval bool            `json:"require_approval"`
	Validate        bool            `json:"validate"`
}

// ReleaseReservationRequest body para POST /api/reservations/release.
// Con reservation_id el resto de campos es opcional.
type ReleaseReservationRequest struct {
	ReservationID string          `json:"reservation_id,omitempty"`
	ItemID        string          `json:"item_id,omitempty"`
	LocationID    string          `json:"location_id,omitempty"`
	LotID         string          `json:"lot_id,omitempty"`
	Quantity      decimal.Decimal `json:"quantity"`
	Reason        string          `json:"reason,omitempty"`
}

// ReservationResponse salida de una reserva.
type ReservationResponse struct {
	ID            string          `json:"id"`
	ItemID        string          `json:"item_id"`
	LocationID    string          `json:"location_id"`
	LotID         string          `json:"lot_id,omitempty"`
	Quantity      decimal.Decimal `json:"quantity"`
	ReservedBy    string          `json:"reserved_by,omitempty"`
	ReferenceType string          `json:"reference_type,omitempty"`
	ReferenceID   string          `json:"reference_id,omitempty"`
	Reason        string          `json:"reason,omitempty"`
	Status        string          `json:"status"`
	ExpiresAt     *time.Time      `json:"expires_at,omitempty"`
	MovementID    string          `json:"movement_id,omitempty"`
	ReleasedAt    *time.Time      `json:"released_at,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// ReservationResultResponse resultado de crear, liberar o aprobar una reserva.
type ReservationResultResponse struct {
	Success     bool                   `json:"success"`
	Reservation *ReservationResponse   `json:"reservation,omitempty"`
	Movement    *ProcessResultResponse `json:"movement,omitempty"`
	Errors      []string               `json:"errors,omitempty"`
	Warnings    []string               `json:"warnings,omitempty"`
}
