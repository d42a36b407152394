package rate

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PayrollRate prices one trip for a route cluster and vehicle type.
type PayrollRate struct {
	ID            uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	RouteCluster  string          `gorm:"column:route_cluster;type:varchar(255);not null;uniqueIndex:idx_payroll_rates_route_vehicle,priority:1"`
	VehicleType   string          `gorm:"column:vehicle_type;type:varchar(64);not null;uniqueIndex:idx_payroll_rates_route_vehicle,priority:2"`
	DriverBaseFee decimal.Decimal `gorm:"column:driver_base_fee;type:numeric(14,2);not null"`
	HelperBaseFee decimal.Decimal `gorm:"column:helper_base_fee;type:numeric(14,2);not null"`
	FoodAllowance decimal.Decimal `gorm:"column:food_allowance;type:numeric(14,2);not null"`
	CreatedAt     time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

func (PayrollRate) TableName() string {
	return "payroll_rates"
}
