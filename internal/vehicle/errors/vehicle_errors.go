package vehicleerrors

import (
	"net/http"

	"go-fleetpay/internal/shared/apperror"
)

var (
	ErrVehicleNotFound = apperror.New(
		apperror.CodeNotFound,
		"Vehicle not found",
		http.StatusNotFound,
	)
	ErrPlateAlreadyExists = apperror.New(
		apperror.CodeConflict,
		"Vehicle with the same plate number already exists",
		http.StatusConflict,
	)
	ErrInvalidVehicleID = apperror.New(
		apperror.CodeInvalidInput,
		"Invalid vehicle ID",
		http.StatusBadRequest,
	)
	ErrHasActiveShipments = apperror.New(
		apperror.CodeConflict,
		"Vehicle is assigned to active shipments",
		http.StatusConflict,
	)
)
