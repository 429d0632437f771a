package dto

import (
	"net/http"
	"strings"
)

// Error codes surfaced by the HTTP layer itself. Domain errors keep their
// own codes (NOT_FOUND, INVALID_TRANSITION, ...) and are mapped to status
// codes below without renaming, so API consumers see the same code the
// domain produced.
const (
	ErrCodeInternal   = "INTERNAL_ERROR"
	ErrCodeBadRequest = "BAD_REQUEST"
	ErrCodeValidation = "VALIDATION_ERROR"
	ErrCodeTenant     = "TENANT_REQUIRED"
	ErrCodeRateLimit  = "RATE_LIMIT_EXCEEDED"
	ErrCodeBodyLimit  = "REQUEST_TOO_LARGE"
	ErrCodeDuplicate  = "DUPLICATE_REQUEST"
)

// domainCodeHTTPStatus maps domain error codes to HTTP status codes
var domainCodeHTTPStatus = map[string]int{
	"NOT_FOUND":      http.StatusNotFound,
	"ALREADY_EXISTS": http.StatusConflict,

	"INVALID_INPUT": http.StatusBadRequest,
	ErrCodeBadRequest: http.StatusBadRequest,
	ErrCodeValidation: http.StatusBadRequest,

	"CONCURRENT_MODIFICATION": http.StatusConflict,

	// business rule violations
	"INVALID_TRANSITION":     http.StatusUnprocessableEntity,
	"INVALID_STATE":          http.StatusUnprocessableEntity,
	"UNBALANCED_TRANSACTION": http.StatusUnprocessableEntity,
	"INSUFFICIENT_STOCK":     http.StatusUnprocessableEntity,
	"INSUFFICIENT_BALANCE":   http.StatusUnprocessableEntity,

	ErrCodeTenant:    http.StatusUnauthorized,
	ErrCodeDuplicate: http.StatusConflict,
	ErrCodeRateLimit: http.StatusTooManyRequests,
	ErrCodeBodyLimit: http.StatusRequestEntityTooLarge,
	ErrCodeInternal:  http.StatusInternalServerError,
}

// GetHTTPStatus returns the HTTP status for a domain or transport error
// code. Domain validation codes follow the INVALID_/DUPLICATE_ naming
// convention and fall through to 422; anything unknown is a 500.
func GetHTTPStatus(code string) int {
	if status, ok := domainCodeHTTPStatus[code]; ok {
		return status
	}
	if strings.HasPrefix(code, "INVALID_") || strings.HasPrefix(code, "DUPLICATE_") {
		return http.StatusUnprocessableEntity
	}
	if strings.HasSuffix(code, "_NOT_FOUND") {
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}
