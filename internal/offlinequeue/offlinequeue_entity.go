// Package offlinequeue is the field client's durable action queue. Phase
// updates recorded without connectivity are stored locally, projected
// optimistically, and replayed against the API in FIFO order.
package offlinequeue

import (
	"time"

	"go-fleetpay/internal/phase"
)

const (
	ActionPending = "PENDING"
	ActionDropped = "DROPPED"
)

// Action is one queued phase update.
type Action struct {
	Seq            uint64      `gorm:"column:seq;primaryKey;autoIncrement"`
	ClientActionID string      `gorm:"column:client_action_id;type:varchar(64);not null;uniqueIndex"`
	ShipmentID     string      `gorm:"column:shipment_id;type:varchar(64);not null;index"`
	DropID         *string     `gorm:"column:drop_id;type:varchar(64)"`
	DropSeq        int         `gorm:"column:drop_seq;not null;default:0"`
	Phase          phase.Phase `gorm:"column:phase;type:varchar(32);not null"`
	Remarks        *string     `gorm:"column:remarks;type:text"`
	Latitude       *float64    `gorm:"column:latitude"`
	Longitude      *float64    `gorm:"column:longitude"`
	QueuedAt       time.Time   `gorm:"column:queued_at;not null"`
	Status         string      `gorm:"column:status;type:varchar(16);not null;index"`
	Attempts       int         `gorm:"column:attempts;not null;default:0"`
	LastError      *string     `gorm:"column:last_error;type:text"`
	UpdatedAt      time.Time   `gorm:"column:updated_at;autoUpdateTime"`
}

func (Action) TableName() string {
	return "offline_shipment_queue"
}

// Acknowledgement marks a shipment notification as seen on this device.
type Acknowledgement struct {
	ShipmentID     string    `gorm:"column:shipment_id;type:varchar(64);primaryKey"`
	AcknowledgedAt time.Time `gorm:"column:acknowledged_at;not null"`
}

func (Acknowledgement) TableName() string {
	return "acknowledged_shipments"
}

// Projection is the device's view of a shipment's progress: the last server
// position with the shipment's pending actions folded on top.
type Projection struct {
	ShipmentID    string      `gorm:"column:shipment_id;type:varchar(64);primaryKey"`
	Phase         phase.Phase `gorm:"column:phase;type:varchar(32);not null"`
	DropSeq       int         `gorm:"column:drop_seq;not null;default:0"`
	ServerPhase   phase.Phase `gorm:"column:server_phase;type:varchar(32)"`
	ServerDropSeq int         `gorm:"column:server_drop_seq;not null;default:0"`
	Optimistic    bool        `gorm:"column:optimistic;not null"`
	SyncedAt      *time.Time  `gorm:"column:synced_at"`
	UpdatedAt     time.Time   `gorm:"column:updated_at;autoUpdateTime"`
}

func (Projection) TableName() string {
	return "local_shipment_projections"
}

func (p Projection) Position() phase.Position {
	return phase.Position{Phase: p.Phase, DropSeq: p.DropSeq}
}

// Server is the position last confirmed by the API.
func (p Projection) Server() phase.Position {
	return phase.Position{Phase: p.ServerPhase, DropSeq: p.ServerDropSeq}
}

func (p *Projection) setServer(pos phase.Position) {
	p.ServerPhase = pos.Phase
	p.ServerDropSeq = pos.DropSeq
}

// Models lists the tables the local store migrates.
func Models() []any {
	return []any{&Action{}, &Acknowledgement{}, &Projection{}}
}
