package dto

import "net/http"

// General error codes
const (
	// ErrCodeInternal is used for internal server errors
	ErrCodeInternal = "INTERNAL_ERROR"
	// ErrCodeBadRequest is used for malformed requests
	ErrCodeBadRequest = "BAD_REQUEST"
	// ErrCodeUnauthorized is used when authentication is required but missing/invalid
	ErrCodeUnauthorized = "UNAUTHORIZED"
	// ErrCodeNotFound is used when a resource is not found
	ErrCodeNotFound = "NOT_FOUND"
	// ErrCodeValidation is used when request body validation fails
	ErrCodeValidation = "VALIDATION_ERROR"
)

// ErrorCodeHTTPStatus maps domain error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeInternal:     http.StatusInternalServerError,
	ErrCodeBadRequest:   http.StatusBadRequest,
	ErrCodeUnauthorized: http.StatusUnauthorized,
	ErrCodeValidation:   http.StatusBadRequest,

	// Input validation -> 400 Bad Request
	"INVALID_CODE":  http.StatusBadRequest,
	"INVALID_NAME":  http.StatusBadRequest,
	"INVALID_INPUT": http.StatusBadRequest,

	// Missing resources -> 404 Not Found
	"NOT_FOUND":        http.StatusNotFound,
	"PARENT_NOT_FOUND": http.StatusNotFound,

	// Access errors
	"FORBIDDEN": http.StatusForbidden,

	// Optimistic locking -> 409 Conflict
	"CONCURRENCY_CONFLICT": http.StatusConflict,

	// Hierarchy and state conflicts -> 409 Conflict
	"ALREADY_EXISTS":     http.StatusConflict,
	"CIRCULAR_REFERENCE": http.StatusConflict,
	"MAX_DEPTH_EXCEEDED": http.StatusConflict,
	"ALREADY_DELETED":    http.StatusConflict,
	"INVALID_STATE":      http.StatusConflict,
}

// GetHTTPStatus returns the HTTP status code for an error code
// Returns 500 Internal Server Error if the error code is not found
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}
