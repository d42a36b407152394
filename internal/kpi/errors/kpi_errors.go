package kpierrors

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
	ErrPeriodNotFound = apperror.New(
		apperror.CodeNotFound,
		"payroll period not found",
		http.StatusNotFound,
	)
	ErrFileRequired = apperror.New(
		apperror.CodeValidation,
		"file is required",
		http.StatusBadRequest,
	)
	ErrNotXLSX = apperror.New(
		apperror.CodeValidation,
		"only .xlsx files are accepted",
		http.StatusBadRequest,
	)
	ErrUnreadable = apperror.New(
		apperror.CodeInvalidInput,
		"workbook could not be read",
		http.StatusBadRequest,
	)
	ErrHeaderNotFound = apperror.New(
		apperror.CodeInvalidInput,
		"no header row with a Name, Employee or Driver column in the first 10 rows",
		http.StatusBadRequest,
	)
	ErrNoRows = apperror.New(
		apperror.CodeInvalidInput,
		"workbook has no KPI rows",
		http.StatusBadRequest,
	)
)
