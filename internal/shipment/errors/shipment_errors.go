package shipmenterrors

import (
	"net/http"

	"go-fleetpay/internal/shared/apperror"
)

var (
	ErrShipmentNotFound = apperror.New(
		apperror.CodeNotFound,
		"Shipment not found",
		http.StatusNotFound,
	)
	ErrInvalidShipmentID = apperror.New(
		apperror.CodeInvalidInput,
		"Invalid shipment ID",
		http.StatusBadRequest,
	)
	ErrDropNotFound = apperror.New(
		apperror.CodeNotFound,
		"Drop not found on this shipment",
		http.StatusNotFound,
	)
	ErrInvalidDateRange = apperror.New(
		apperror.CodeValidation,
		"Loading date must not be after delivery date",
		http.StatusBadRequest,
	)
	ErrInvalidDate = apperror.New(
		apperror.CodeValidation,
		"Invalid date format, expected YYYY-MM-DD",
		http.StatusBadRequest,
	)
	ErrInvalidCategory = apperror.New(
		apperror.CodeInvalidInput,
		"Category must be one of active, upcoming, delayed, completed",
		http.StatusBadRequest,
	)
	ErrInvalidPhase = apperror.New(
		apperror.CodeInvalidInput,
		"Unknown or non-recordable phase",
		http.StatusBadRequest,
	)
	ErrDropRequired = apperror.New(
		apperror.CodeInvalidInput,
		"drop_id is required for store phases",
		http.StatusBadRequest,
	)
	ErrDropNotAllowed = apperror.New(
		apperror.CodeInvalidInput,
		"drop_id must be empty for warehouse phases",
		http.StatusBadRequest,
	)
	ErrVehicleUnavailable = apperror.New(
		apperror.CodeInvalidInput,
		"Vehicle does not exist or is inactive",
		http.StatusBadRequest,
	)
	ErrDriverInvalid = apperror.New(
		apperror.CodeInvalidInput,
		"Driver does not exist, is inactive or is not a DRIVER",
		http.StatusBadRequest,
	)
	ErrHelperInvalid = apperror.New(
		apperror.CodeInvalidInput,
		"Helper does not exist, is inactive or is not a HELPER",
		http.StatusBadRequest,
	)
	ErrArchived = apperror.New(
		apperror.CodeInvalidState,
		"Shipment is archived",
		http.StatusConflict,
	)
	ErrTerminal = apperror.New(
		apperror.CodeInvalidState,
		"Shipment is already completed or cancelled",
		http.StatusConflict,
	)
	ErrAlreadyCompleted = apperror.New(
		apperror.CodeInvalidState,
		"Completed shipments cannot be cancelled",
		http.StatusConflict,
	)
	ErrStepNotActive = apperror.New(
		apperror.CodeInvalidState,
		"Only the active step can be recorded",
		http.StatusConflict,
	)
	ErrTooEarly = apperror.New(
		apperror.CodeInvalidState,
		"This step cannot be recorded before its scheduled date",
		http.StatusBadRequest,
	)
	ErrNotPending = apperror.New(
		apperror.CodeInvalidState,
		"Only pending shipments without recorded steps can be deleted",
		http.StatusConflict,
	)
	ErrDropsLocked = apperror.New(
		apperror.CodeInvalidState,
		"Drops can only change before the first step is recorded",
		http.StatusConflict,
	)
	ErrNotCrew = apperror.New(
		apperror.CodeForbidden,
		"You are not assigned to this shipment",
		http.StatusForbidden,
	)
	ErrNoRows = apperror.New(
		apperror.CodeNotFound,
		"No shipments match the export filter",
		http.StatusNotFound,
	)
)
