package user

import (
	"errors"

	"go-fleetpay/internal/shared/database"
	usererrors "go-fleetpay/internal/user/errors"

	"gorm.io/gorm"
)

func mapRepositoryError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return usererrors.ErrUserNotFound
	}
	if database.IsUniqueViolation(err, "") {
		return usererrors.ErrUserAlreadyExists
	}
	return err
}
