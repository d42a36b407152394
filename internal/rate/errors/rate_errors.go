package rateerrors

import (
	"net/http"

	"go-fleetpay/internal/shared/apperror"
)

var (
	ErrRateNotFound = apperror.New(
		apperror.CodeNotFound,
		"Rate not found",
		http.StatusNotFound,
	)
	ErrDuplicateRate = apperror.New(
		"DUPLICATE_RATE",
		"A rate for this route cluster and vehicle type already exists",
		http.StatusBadRequest,
	)
	ErrInvalidRateID = apperror.New(
		apperror.CodeInvalidInput,
		"Invalid rate ID",
		http.StatusBadRequest,
	)
	ErrNegativeFee = apperror.New(
		apperror.CodeValidation,
		"Fees and allowance must not be negative",
		http.StatusBadRequest,
	)
	ErrBlankField = apperror.New(
		apperror.CodeValidation,
		"Route cluster and vehicle type must not be blank",
		http.StatusBadRequest,
	)
)
