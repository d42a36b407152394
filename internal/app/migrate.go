package app

import (
	"go-fleetpay/internal/activity"
	"go-fleetpay/internal/kpi"
	"go-fleetpay/internal/messaging/kafka"
	"go-fleetpay/internal/payroll"
	"go-fleetpay/internal/rate"
	"go-fleetpay/internal/shared/counter"
	"go-fleetpay/internal/shipment"
	"go-fleetpay/internal/user"
	"go-fleetpay/internal/vehicle"

	"gorm.io/gorm"
)

// Models lists every table the API owns, parents before children.
func Models() []any {
	return []any{
		&user.User{},
		&vehicle.Vehicle{},
		&counter.ReferenceCounter{},
		&shipment.Shipment{},
		&shipment.Drop{},
		&shipment.StatusLog{},
		&rate.PayrollRate{},
		&payroll.Period{},
		&payroll.LineItem{},
		&payroll.Adjustment{},
		&payroll.Payment{},
		&kpi.Entry{},
		&activity.ActivityLog{},
		&kafka.OutboxEvent{},
	}
}

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(Models()...)
}
