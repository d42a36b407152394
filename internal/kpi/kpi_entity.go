package kpi

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Entry struct {
	ID           uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	PeriodID     uuid.UUID       `gorm:"column:period_id;type:uuid;not null;index:idx_kpi_entries_period_file,priority:1"`
	UserID       *uuid.UUID      `gorm:"column:user_id;type:uuid;index"`
	EmployeeName string          `gorm:"column:employee_name;type:varchar(255);not null"`
	Trips        int             `gorm:"column:trips;not null"`
	OnTimeRate   decimal.Decimal `gorm:"column:on_time_rate;type:numeric(5,2);not null"`
	Score        decimal.Decimal `gorm:"column:score;type:numeric(7,2);not null"`
	SourceFile   string          `gorm:"column:source_file;type:varchar(255);not null;index:idx_kpi_entries_period_file,priority:2"`
	UploadedBy   *uuid.UUID      `gorm:"column:uploaded_by;type:uuid"`
	CreatedAt    time.Time       `gorm:"column:created_at;autoCreateTime"`
}

func (Entry) TableName() string {
	return "kpi_entries"
}
