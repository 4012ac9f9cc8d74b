package kafka

import (
	"time"

	appinv "github.com/jhoicas/stock-engine/internal/application/inventory"
)

// MovementMessage contrato JSON del evento. Cantidades como texto decimal exacto.
type MovementMessage struct {
	EventType       string         `json:"event_type"`
	MovementID      string         `json:"movement_id"`
	Type            string         `json:"type"`
	CustomType      string         `json:"custom_type,omitempty"`
	ItemID          string         `json:"item_id"`
	LocationID      string         `json:"location_id"`
	LotID           string         `json:"lot_id,omitempty"`
	Quantity        string         `json:"quantity"`
	ReferenceType   string         `json:"reference_type,omitempty"`
	ReferenceID     string         `json:"reference_id,omitempty"`
	PerformedBy     string         `json:"performed_by,omitempty"`
	WorkspaceID     string         `json:"workspace_id,omitempty"`
	PreviousBalance string         `json:"previous_balance"`
	NewBalance      string         `json:"new_balance"`
	Reserved        string         `json:"reserved_quantity"`
	Available       string         `json:"available_quantity"`
	Metadata        map[string]any `json:"metadata,omitempty"`
	OccurredAt      time.Time      `json:"occurred_at"`
}

// NewMovementMessage proyecta el evento de aplicación al contrato publicado.
func NewMovementMessage(evt appinv.MovementEvent) MovementMessage {
	m := evt.Movement
	return MovementMessage{
		EventType:       EventMovementCompleted,
		MovementID:      m.ID,
		Type:            string(m.Type),
		CustomType:      m.CustomType,
		ItemID:          m.ItemID,
		LocationID:      m.LocationID,
		LotID:           m.LotID,
		Quantity:        m.Quantity.String(),
		ReferenceType:   m.ReferenceType,
		ReferenceID:     m.ReferenceID,
		PerformedBy:     m.PerformedBy,
		WorkspaceID:     m.WorkspaceID,
		PreviousBalance: evt.PreviousStock.Quantity.String(),
		NewBalance:      evt.Stock.Quantity.String(),
		Reserved:        evt.Stock.ReservedQuantity.String(),
		Available:       evt.Stock.AvailableQuantity().String(),
		Metadata:        m.Metadata,
		OccurredAt:      evt.OccurredAt,
	}
}
