package shipment

import (
	"errors"

	shipmenterrors "go-fleetpay/internal/shipment/errors"

	"gorm.io/gorm"
)

func mapRepositoryError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return shipmenterrors.ErrShipmentNotFound
	}
	return err
}
