package dto

import (
	"net/http"
	"strings"
)

// Error categories exposed by the API. Domain error codes map onto one
// of these six; the category decides the HTTP status.
const (
	ErrCodeNotFound         = "NOT_FOUND"
	ErrCodeUnauthorized     = "UNAUTHORIZED"
	ErrCodeForbidden        = "FORBIDDEN"
	ErrCodeValidationFailed = "VALIDATION_FAILED"
	ErrCodeConflict         = "CONFLICT"
	ErrCodeInternal         = "INTERNAL"
	ErrCodeRateLimited      = "RATE_LIMITED"
)

var categoryStatus = map[string]int{
	ErrCodeNotFound:         http.StatusNotFound,
	ErrCodeUnauthorized:     http.StatusUnauthorized,
	ErrCodeForbidden:        http.StatusForbidden,
	ErrCodeValidationFailed: http.StatusBadRequest,
	ErrCodeConflict:         http.StatusConflict,
	ErrCodeInternal:         http.StatusInternalServerError,
	ErrCodeRateLimited:      http.StatusTooManyRequests,
}

// domainErrorStatus maps the domain error codes that are not plain
// validation failures. Codes absent here fall through to heuristics in
// GetHTTPStatus: INVALID_* and COUPON_* read as bad input.
var domainErrorStatus = map[string]int{
	"NOT_FOUND":      http.StatusNotFound,
	"USER_NOT_FOUND": http.StatusNotFound,

	"UNAUTHORIZED":        http.StatusUnauthorized,
	"INVALID_CREDENTIALS": http.StatusUnauthorized,
	"TOKEN_EXPIRED":       http.StatusUnauthorized,
	"TOKEN_INVALID":       http.StatusUnauthorized,
	"TOKEN_REVOKED":       http.StatusUnauthorized,
	"TOKEN_ERROR":         http.StatusUnauthorized,

	"FORBIDDEN":         http.StatusForbidden,
	"PURCHASE_REQUIRED": http.StatusForbidden,

	"EMAIL_TAKEN":      http.StatusConflict,
	"CODE_TAKEN":       http.StatusConflict,
	"ALREADY_EXISTS":   http.StatusConflict,
	"ALREADY_REVIEWED": http.StatusConflict,
	"COUPON_EXHAUSTED": http.StatusConflict,

	// Oversell and bad status transitions are validation failures to the
	// client, not conflicts.
	"INSUFFICIENT_STOCK":   http.StatusBadRequest,
	"INVALID_STATE":        http.StatusBadRequest,
	"RETURN_WINDOW_CLOSED": http.StatusBadRequest,
	"PRODUCT_UNAVAILABLE":  http.StatusBadRequest,
	"MISSING_ADDRESS":      http.StatusBadRequest,
	"EMPTY_ORDER":          http.StatusBadRequest,
	"NO_ITEMS":             http.StatusBadRequest,

	"INTERNAL_ERROR":      http.StatusInternalServerError,
	"PASSWORD_HASH_ERROR": http.StatusInternalServerError,
}

// GetHTTPStatus resolves the status code for a domain or category error
// code. Unknown codes with an INVALID_ or COUPON_ prefix are treated as
// bad input; anything else is an internal error so bugs surface as 500s.
func GetHTTPStatus(code string) int {
	if status, ok := categoryStatus[code]; ok {
		return status
	}
	if status, ok := domainErrorStatus[code]; ok {
		return status
	}
	if strings.HasPrefix(code, "INVALID_") || strings.HasPrefix(code, "COUPON_") {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
