package vehicle

import (
	"errors"

	"go-fleetpay/internal/shared/database"
	vehicleerrors "go-fleetpay/internal/vehicle/errors"

	"gorm.io/gorm"
)

func mapRepositoryError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return vehicleerrors.ErrVehicleNotFound
	}
	if database.IsUniqueViolation(err, "") {
		return vehicleerrors.ErrPlateAlreadyExists
	}
	return err
}
