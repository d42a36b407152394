package payrollerrors

import (
	"net/http"

	"go-fleetpay/internal/shared/apperror"
)

var (
	ErrInvalidPeriodID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid period id",
		http.StatusBadRequest,
	)
	ErrInvalidUserID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid user id",
		http.StatusBadRequest,
	)
	ErrInvalidID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid id",
		http.StatusBadRequest,
	)
	ErrInvalidDateFormat = apperror.New(
		apperror.CodeInvalidInput,
		"invalid date format, expected YYYY-MM-DD",
		http.StatusBadRequest,
	)
	ErrInvalidDateRange = apperror.New(
		apperror.CodeInvalidInput,
		"start_date must be before or equal end_date",
		http.StatusBadRequest,
	)
	ErrPeriodOverlap = apperror.New(
		apperror.CodeConflict,
		"period overlaps an existing period",
		http.StatusConflict,
	)
	ErrPeriodNameTaken = apperror.New(
		apperror.CodeConflict,
		"period name already exists",
		http.StatusConflict,
	)
	ErrPeriodNotFound = apperror.New(
		apperror.CodeNotFound,
		"payroll period not found",
		http.StatusNotFound,
	)
	ErrPeriodClosed = apperror.New(
		apperror.CodeInvalidState,
		"payroll period is closed",
		http.StatusBadRequest,
	)
	ErrUserNotFound = apperror.New(
		apperror.CodeNotFound,
		"user not found",
		http.StatusNotFound,
	)
	ErrAdjustmentNotFound = apperror.New(
		apperror.CodeNotFound,
		"adjustment not found",
		http.StatusNotFound,
	)
	ErrPaymentNotFound = apperror.New(
		apperror.CodeNotFound,
		"payment not found",
		http.StatusNotFound,
	)
	ErrInvalidAmount = apperror.New(
		apperror.CodeValidation,
		"amount must be greater than zero",
		http.StatusBadRequest,
	)
	ErrInvalidAdjustmentType = apperror.New(
		apperror.CodeValidation,
		"type must be BONUS or DEDUCTION",
		http.StatusBadRequest,
	)
	ErrAlreadyVoid = apperror.New(
		apperror.CodeInvalidState,
		"record is already void",
		http.StatusBadRequest,
	)
	ErrNoRows = apperror.New(
		apperror.CodeNotFound,
		"period has no payroll rows",
		http.StatusNotFound,
	)
	ErrForbidden = apperror.New(
		apperror.CodeForbidden,
		"payroll records belong to another user",
		http.StatusForbidden,
	)
	ErrConcurrentGeneration = apperror.New(
		apperror.CodeConflict,
		"payroll is being generated concurrently, retry",
		http.StatusConflict,
	)
)
