package autherrors

import (
	"net/http"

	"go-fleetpay/internal/shared/apperror"
)

var (
	ErrInvalidCredentials = apperror.New(
		apperror.CodeUnauthorized,
		"invalid email or password",
		http.StatusUnauthorized,
	)
	ErrUserInactive = apperror.New(
		apperror.CodeForbidden,
		"user account is inactive",
		http.StatusForbidden,
	)
	ErrTokenMissing = apperror.New(
		apperror.CodeUnauthorized,
		"token not found",
		http.StatusUnauthorized,
	)
	ErrInvalidToken = apperror.New(
		"INVALID_TOKEN",
		"invalid token",
		http.StatusUnauthorized,
	)
	ErrTokenExpired = apperror.New(
		"TOKEN_EXPIRED",
		"token has expired",
		http.StatusUnauthorized,
	)
	ErrSessionSuperseded = apperror.New(
		apperror.CodeSessionSuperseded,
		"this session was ended by a newer login",
		http.StatusUnauthorized,
	)
	ErrSessionUnavailable = apperror.New(
		apperror.CodeServiceUnavailable,
		"session store unavailable",
		http.StatusServiceUnavailable,
	)
	ErrUserNotFound = apperror.New(
		apperror.CodeNotFound,
		"user not found",
		http.StatusNotFound,
	)
	ErrForbidden = apperror.ErrForbidden
	ErrTooManyAttempts = apperror.New(
		apperror.CodeTooManyRequests,
		"too many login attempts, try again later",
		http.StatusTooManyRequests,
	)
)
