package apperror_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"go-fleetpay/internal/shared/apperror"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
)

func TestToHTTP(t *testing.T) {
	t.Run("app error keeps status and code", func(t *testing.T) {
		err := apperror.New(apperror.CodeConflict, "vehicle has active shipments", http.StatusConflict)

		got := apperror.ToHTTP(fmt.Errorf("delete vehicle: %w", err))

		assert.Equal(t, http.StatusConflict, got.Status)
		assert.Equal(t, apperror.CodeConflict, got.Code)
		assert.Equal(t, "vehicle has active shipments", got.Message)
	})

	t.Run("unknown error hides the cause", func(t *testing.T) {
		got := apperror.ToHTTP(errors.New("pq: connection refused"))

		assert.Equal(t, http.StatusInternalServerError, got.Status)
		assert.Equal(t, apperror.CodeInternalError, got.Code)
		assert.NotContains(t, got.Message, "connection refused")
	})
}

func TestAppError_IsMatchesWrappedCopy(t *testing.T) {
	sentinel := apperror.New(apperror.CodeInvalidState, "period is closed", http.StatusBadRequest)

	err := sentinel.WithCause(errors.New("generate"))

	assert.ErrorIs(t, err, sentinel)
	assert.Equal(t, "period is closed: generate", err.Error())
}

func TestMapValidationError(t *testing.T) {
	type payload struct {
		DeliveryDate string `validate:"required"`
		Amount       int    `validate:"gt=0"`
	}
	v := validator.New()

	err := v.Struct(payload{Amount: 1})
	mapped := apperror.MapValidationError(err)
	assert.Equal(t, apperror.CodeValidation, mapped.Code)
	assert.Equal(t, "Deliverydate is required", mapped.Message)

	err = v.Struct(payload{DeliveryDate: "2024-01-01"})
	mapped = apperror.MapValidationError(err)
	assert.Equal(t, "Amount is invalid", mapped.Message)
	assert.Equal(t, http.StatusBadRequest, mapped.HTTPStatus)
}
