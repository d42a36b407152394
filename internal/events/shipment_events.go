package events

import "time"

const (
	ShipmentStatusChangedTopic = "fleet.shipment.status.v1"
	ShipmentCompletedTopic     = "fleet.shipment.completed.v1"

	ShipmentStatusChanged = "shipment_status_changed"
	ShipmentCompleted     = "shipment_completed"
)

type ShipmentStatusChangedEvent struct {
	EventType  string    `json:"event_type"`
	RequestID  string    `json:"request_id,omitempty"`
	ShipmentID string    `json:"shipment_id"`
	DropID     string    `json:"drop_id,omitempty"`
	Phase      string    `json:"phase"`
	Status     string    `json:"status"`
	ActorID    string    `json:"actor_id"`
	OccurredAt time.Time `json:"occurred_at"`
}

type ShipmentCompletedEvent struct {
	EventType    string    `json:"event_type"`
	RequestID    string    `json:"request_id,omitempty"`
	ShipmentID   string    `json:"shipment_id"`
	DeliveryDate string    `json:"delivery_date,omitempty"`
	CompletedAt  time.Time `json:"completed_at"`
}
