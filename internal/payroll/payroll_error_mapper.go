package payroll

import (
	"errors"

	payrollerrors "go-fleetpay/internal/payroll/errors"
	"go-fleetpay/internal/shared/database"

	"gorm.io/gorm"
)

func mapPeriodError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return payrollerrors.ErrPeriodNotFound
	}
	if database.IsUniqueViolation(err, "idx_payroll_periods_name") {
		return payrollerrors.ErrPeriodNameTaken
	}
	return err
}

func mapRecordError(err error, notFound error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFound
	}
	return err
}
