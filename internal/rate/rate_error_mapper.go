package rate

import (
	"errors"

	rateerrors "go-fleetpay/internal/rate/errors"
	"go-fleetpay/internal/shared/database"

	"gorm.io/gorm"
)

func mapRepositoryError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return rateerrors.ErrRateNotFound
	}
	if database.IsUniqueViolation(err, "") {
		return rateerrors.ErrDuplicateRate
	}
	return err
}
