package vehicle

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Vehicle struct {
	ID          uuid.UUID      `gorm:"column:id;type:uuid;primaryKey"`
	PlateNumber string         `gorm:"column:plate_number;type:varchar(32);not null;uniqueIndex:idx_vehicles_plate_number"`
	VehicleType string         `gorm:"column:vehicle_type;type:varchar(64);not null;index"`
	Description string         `gorm:"column:description;type:text"`
	IsActive    bool           `gorm:"column:is_active;not null"`
	CreatedAt   time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time      `gorm:"column:updated_at;autoUpdateTime"`
	DeletedAt   gorm.DeletedAt `gorm:"column:deleted_at;index"`
}

func (Vehicle) TableName() string {
	return "vehicles"
}
