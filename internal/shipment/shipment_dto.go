package shipment

import (
	"encoding/json"
	"time"
)

type DropRequest struct {
	Name     string `json:"name" binding:"required,max=255"`
	Location string `json:"location"`
}

type CreateShipmentRequest struct {
	DestinationName     string        `json:"destination_name" binding:"required,max=255"`
	DestinationLocation string        `json:"destination_location"`
	VehicleID           string        `json:"vehicle_id" binding:"required,uuid"`
	DriverID            string        `json:"driver_id" binding:"required,uuid"`
	HelperID            *string       `json:"helper_id" binding:"omitempty,uuid"`
	LoadingDate         *string       `json:"loading_date" binding:"omitempty,datetime=2006-01-02"`
	DeliveryDate        *string       `json:"delivery_date" binding:"omitempty,datetime=2006-01-02"`
	Drops               []DropRequest `json:"drops" binding:"omitempty,dive"`
}

type UpdateShipmentRequest struct {
	DestinationName     *string       `json:"destination_name" binding:"omitempty,max=255"`
	DestinationLocation *string       `json:"destination_location"`
	VehicleID           *string       `json:"vehicle_id" binding:"omitempty,uuid"`
	DriverID            *string       `json:"driver_id" binding:"omitempty,uuid"`
	HelperID            *string       `json:"helper_id" binding:"omitempty,uuid"`
	ClearHelper         bool          `json:"clear_helper"`
	LoadingDate         *string       `json:"loading_date" binding:"omitempty,datetime=2006-01-02"`
	DeliveryDate        *string       `json:"delivery_date" binding:"omitempty,datetime=2006-01-02"`
	Drops               []DropRequest `json:"drops" binding:"omitempty,dive"`
}

type ListFilter struct {
	Category string `form:"category"`
	DriverID string `form:"driver_id" binding:"omitempty,uuid"`
	Archived bool   `form:"archived"`
	Q        string `form:"q"`
	Page     int    `form:"page"`
	PageSize int    `form:"page_size"`
}

type UpdateStatusRequest struct {
	Phase          string     `json:"phase" binding:"required"`
	DropID         *string    `json:"drop_id" binding:"omitempty,uuid"`
	Remarks        *string    `json:"remarks" binding:"omitempty,max=1000"`
	Latitude       *float64   `json:"latitude" binding:"omitempty,latitude"`
	Longitude      *float64   `json:"longitude" binding:"omitempty,longitude"`
	OccurredAt     *time.Time `json:"occurred_at"`
	ClientActionID *string    `json:"client_action_id" binding:"omitempty,max=64"`
}

type DropResponse struct {
	ID       string `json:"id"`
	Sequence int    `json:"sequence"`
	Name     string `json:"name"`
	Location string `json:"location"`
}

type StepResponse struct {
	Phase      string  `json:"phase"`
	Track      string  `json:"track"`
	DropID     *string `json:"drop_id"`
	DropSeq    int     `json:"drop_seq,omitempty"`
	DropName   string  `json:"drop_name,omitempty"`
	State      string  `json:"state"`
	OccurredAt *string `json:"occurred_at,omitempty"`
}

type ShipmentResponse struct {
	ID                  string         `json:"id"`
	Reference           string         `json:"reference"`
	DestinationName     string         `json:"destination_name"`
	DestinationLocation string         `json:"destination_location"`
	VehicleID           string         `json:"vehicle_id"`
	DriverID            string         `json:"driver_id"`
	HelperID            *string        `json:"helper_id"`
	LoadingDate         *string        `json:"loading_date"`
	DeliveryDate        *string        `json:"delivery_date"`
	CurrentStatus       string         `json:"current_status"`
	CurrentDropID       *string        `json:"current_drop_id"`
	Category            string         `json:"category"`
	IsArchived          bool           `json:"is_archived"`
	CompletedAt         *string        `json:"completed_at"`
	Drops               []DropResponse `json:"drops"`
	Timeline            []StepResponse `json:"timeline,omitempty"`
}

// StatusSnapshot is the lightweight payload field clients poll.
type StatusSnapshot struct {
	ShipmentID    string  `json:"shipment_id"`
	CurrentStatus string  `json:"current_status"`
	CurrentDropID *string `json:"current_drop_id"`
	DropSeq       int     `json:"drop_seq"`
	IsArchived    bool    `json:"is_archived"`
	CompletedAt   *string `json:"completed_at"`
	UpdatedAt     string  `json:"updated_at"`
	DriverID      string  `json:"driver_id"`
	HelperID      *string `json:"helper_id"`
}

type UpdateStatusResponse struct {
	Applied        bool          `json:"applied"`
	ShipmentID     string        `json:"shipment_id"`
	Phase          string        `json:"phase"`
	DropID         *string       `json:"drop_id"`
	CurrentStatus  string        `json:"current_status"`
	CurrentDropID  *string       `json:"current_drop_id"`
	Completed      bool          `json:"completed"`
	ClientActionID *string       `json:"client_action_id,omitempty"`
	NextStep       *StepResponse `json:"next_step,omitempty"`
}

type StatusLogResponse struct {
	ID             string          `json:"id"`
	Phase          string          `json:"phase"`
	DropID         *string         `json:"drop_id"`
	DropName       string          `json:"drop_name,omitempty"`
	ActorID        string          `json:"actor_id"`
	ActorName      string          `json:"actor_name"`
	Remarks        *string         `json:"remarks"`
	OccurredAt     string          `json:"occurred_at"`
	ClientActionID *string         `json:"client_action_id,omitempty"`
	Location       json.RawMessage `json:"location,omitempty"`
}
