package activityerrors

import (
	"net/http"

	"go-fleetpay/internal/shared/apperror"
)

var (
	ErrInvalidDate = apperror.New(
		apperror.CodeInvalidInput,
		"invalid date format, expected YYYY-MM-DD",
		http.StatusBadRequest,
	)
	ErrBeforeRequired = apperror.RequiredField("Before")
)
