package payroll

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	PeriodOpen   = "OPEN"
	PeriodClosed = "CLOSED"

	AdjustmentBonus     = "BONUS"
	AdjustmentDeduction = "DEDUCTION"

	SourceManual    = "MANUAL"
	SourceCarryOver = "CARRY_OVER"

	StatusActive    = "ACTIVE"
	StatusVoid      = "VOID"
	StatusCompleted = "COMPLETED"

	CrewDriver = "DRIVER"
	CrewHelper = "HELPER"
)

type Period struct {
	ID        uuid.UUID  `gorm:"column:id;type:uuid;primaryKey"`
	Name      string     `gorm:"column:name;type:varchar(120);not null;uniqueIndex:idx_payroll_periods_name"`
	StartDate time.Time  `gorm:"column:start_date;type:date;not null;index"`
	EndDate   time.Time  `gorm:"column:end_date;type:date;not null;index"`
	Status    string     `gorm:"column:status;type:varchar(16);not null"`
	ClosedAt  *time.Time `gorm:"column:closed_at"`
	ClosedBy  *uuid.UUID `gorm:"column:closed_by;type:uuid"`
	CreatedAt time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

func (Period) TableName() string {
	return "payroll_periods"
}

func (p Period) IsClosed() bool {
	return p.Status == PeriodClosed
}

// Contains reports whether the calendar date d falls within the period.
func (p Period) Contains(d time.Time) bool {
	return !d.Before(p.StartDate) && !d.After(p.EndDate)
}

// LineItem is the pay one crew member earns for one completed shipment.
type LineItem struct {
	ID         uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	ShipmentID uuid.UUID       `gorm:"column:shipment_id;type:uuid;not null;uniqueIndex:idx_shipment_payrolls_crew,priority:1"`
	CrewID     uuid.UUID       `gorm:"column:crew_id;type:uuid;not null;uniqueIndex:idx_shipment_payrolls_crew,priority:2;index"`
	CrewRole   string          `gorm:"column:crew_role;type:varchar(16);not null"`
	PeriodID   uuid.UUID       `gorm:"column:period_id;type:uuid;not null;index"`
	BaseFee    decimal.Decimal `gorm:"column:base_fee;type:numeric(14,2);not null"`
	Allowance  decimal.Decimal `gorm:"column:allowance;type:numeric(14,2);not null"`
	RateID     *uuid.UUID      `gorm:"column:rate_id;type:uuid"`
	CreatedAt  time.Time       `gorm:"column:created_at;autoCreateTime"`
}

func (LineItem) TableName() string {
	return "shipment_payrolls"
}

type Adjustment struct {
	ID             uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	UserID         uuid.UUID       `gorm:"column:user_id;type:uuid;not null;index"`
	PeriodID       uuid.UUID       `gorm:"column:period_id;type:uuid;not null;index"`
	Type           string          `gorm:"column:type;type:varchar(16);not null"`
	Amount         decimal.Decimal `gorm:"column:amount;type:numeric(14,2);not null"`
	Reason         string          `gorm:"column:reason;type:text;not null"`
	Source         string          `gorm:"column:source;type:varchar(16);not null;index"`
	SourcePeriodID *uuid.UUID      `gorm:"column:source_period_id;type:uuid"`
	Status         string          `gorm:"column:status;type:varchar(16);not null;index"`
	CreatedBy      *uuid.UUID      `gorm:"column:created_by;type:uuid"`
	VoidedBy       *uuid.UUID      `gorm:"column:voided_by;type:uuid"`
	VoidedAt       *time.Time      `gorm:"column:voided_at"`
	VoidReason     *string         `gorm:"column:void_reason;type:text"`
	CreatedAt      time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

func (Adjustment) TableName() string {
	return "payroll_adjustments"
}

type Payment struct {
	ID         uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	UserID     uuid.UUID       `gorm:"column:user_id;type:uuid;not null;index"`
	PeriodID   uuid.UUID       `gorm:"column:period_id;type:uuid;not null;index"`
	Amount     decimal.Decimal `gorm:"column:amount;type:numeric(14,2);not null"`
	Notes      *string         `gorm:"column:notes;type:text"`
	Status     string          `gorm:"column:status;type:varchar(16);not null;index"`
	PaidAt     time.Time       `gorm:"column:paid_at;not null"`
	CreatedBy  *uuid.UUID      `gorm:"column:created_by;type:uuid"`
	VoidedBy   *uuid.UUID      `gorm:"column:voided_by;type:uuid"`
	VoidedAt   *time.Time      `gorm:"column:voided_at"`
	VoidReason *string         `gorm:"column:void_reason;type:text"`
	CreatedAt  time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

func (Payment) TableName() string {
	return "payroll_payments"
}
