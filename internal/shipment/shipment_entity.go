package shipment

import (
	"time"

	"go-fleetpay/internal/phase"

	"github.com/google/uuid"
)

type Shipment struct {
	ID                  uuid.UUID   `gorm:"column:id;type:uuid;primaryKey"`
	Reference           string      `gorm:"column:reference;type:varchar(32);not null;uniqueIndex:idx_shipments_reference"`
	DestinationName     string      `gorm:"column:destination_name;type:varchar(255);not null"`
	DestinationLocation string      `gorm:"column:destination_location;type:text"`
	VehicleID           uuid.UUID   `gorm:"column:vehicle_id;type:uuid;not null;index"`
	DriverID            uuid.UUID   `gorm:"column:driver_id;type:uuid;not null;index"`
	HelperID            *uuid.UUID  `gorm:"column:helper_id;type:uuid;index"`
	LoadingDate         *time.Time  `gorm:"column:loading_date;type:date"`
	DeliveryDate        *time.Time  `gorm:"column:delivery_date;type:date;index"`
	CurrentStatus       phase.Phase `gorm:"column:current_status;type:varchar(32);not null;index"`
	CurrentDropID       *uuid.UUID  `gorm:"column:current_drop_id;type:uuid"`
	IsArchived          bool        `gorm:"column:is_archived;not null"`
	CompletedAt         *time.Time  `gorm:"column:completed_at"`
	CreatedBy           *uuid.UUID  `gorm:"column:created_by;type:uuid"`
	CreatedAt           time.Time   `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt           time.Time   `gorm:"column:updated_at;autoUpdateTime"`

	Drops []Drop `gorm:"foreignKey:ShipmentID"`
}

func (Shipment) TableName() string {
	return "shipments"
}

// CrewIDs returns the driver followed by the helper, when assigned.
func (s Shipment) CrewIDs() []uuid.UUID {
	ids := []uuid.UUID{s.DriverID}
	if s.HelperID != nil {
		ids = append(ids, *s.HelperID)
	}
	return ids
}

func (s Shipment) HasCrew(userID string) bool {
	for _, id := range s.CrewIDs() {
		if id.String() == userID {
			return true
		}
	}
	return false
}

type Drop struct {
	ID         uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	ShipmentID uuid.UUID `gorm:"column:shipment_id;type:uuid;not null;uniqueIndex:idx_drops_shipment_seq,priority:1"`
	Sequence   int       `gorm:"column:sequence;not null;uniqueIndex:idx_drops_shipment_seq,priority:2"`
	Name       string    `gorm:"column:name;type:varchar(255);not null"`
	Location   string    `gorm:"column:location;type:text"`
}

func (Drop) TableName() string {
	return "shipment_drops"
}

// StatusLog is one recorded lifecycle step. Rows are never updated.
type StatusLog struct {
	ID             uuid.UUID   `gorm:"column:id;type:uuid;primaryKey"`
	ShipmentID     uuid.UUID   `gorm:"column:shipment_id;type:uuid;not null;uniqueIndex:idx_status_logs_step,priority:1"`
	DropID         *uuid.UUID  `gorm:"column:drop_id;type:uuid"`
	Phase          phase.Phase `gorm:"column:phase;type:varchar(32);not null"`
	StepKey        string      `gorm:"column:step_key;type:varchar(80);not null;uniqueIndex:idx_status_logs_step,priority:2"`
	OccurredAt     time.Time   `gorm:"column:occurred_at;not null;index"`
	ActorID        uuid.UUID   `gorm:"column:actor_id;type:uuid;not null"`
	Remarks        *string     `gorm:"column:remarks;type:text"`
	Latitude       *float64    `gorm:"column:latitude"`
	Longitude      *float64    `gorm:"column:longitude"`
	ClientActionID *string     `gorm:"column:client_action_id;type:varchar(64);index"`
	CreatedAt      time.Time   `gorm:"column:created_at;autoCreateTime"`
}

func (StatusLog) TableName() string {
	return "shipment_status_logs"
}

// StepKey identifies a (phase, drop) step within a shipment.
func StepKey(p phase.Phase, dropID *uuid.UUID) string {
	if dropID == nil {
		return p.String() + "@-"
	}
	return p.String() + "@" + dropID.String()
}
