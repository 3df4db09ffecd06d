package dto

import "net/http"

// Error code constants organized by category
// Format: ERR_<CATEGORY>_<DESCRIPTION>

// General error codes
const (
	ErrCodeUnknown  = "ERR_UNKNOWN"
	ErrCodeInternal = "ERR_INTERNAL"
)

// Validation error codes
const (
	ErrCodeValidation   = "ERR_VALIDATION"
	ErrCodeBadRequest   = "ERR_BAD_REQUEST"
	ErrCodeInvalidInput = "ERR_INVALID_INPUT"
	ErrCodeInvalidJSON  = "ERR_INVALID_JSON"
	ErrCodeTooLarge     = "ERR_REQUEST_TOO_LARGE"
)

// Authentication error codes
const (
	// ErrCodeUnauthorized is used when the session is not logged in
	ErrCodeUnauthorized = "ERR_UNAUTHORIZED"
	ErrCodeForbidden    = "ERR_FORBIDDEN"
	// ErrCodeSessionExpired is used when the backend rejected the session's token
	ErrCodeSessionExpired = "ERR_SESSION_EXPIRED"
)

// Resource error codes
const (
	ErrCodeNotFound      = "ERR_NOT_FOUND"
	ErrCodeDraftNotFound = "ERR_DRAFT_NOT_FOUND"
	ErrCodeConflict      = "ERR_CONFLICT"
)

// Business rule error codes
const (
	ErrCodeInvalidState      = "ERR_INVALID_STATE"
	ErrCodeInvalidTransition = "ERR_INVALID_STATUS_TRANSITION"
	ErrCodeNoActiveSection   = "ERR_NO_ACTIVE_SECTION"
	ErrCodeEmptyQuotation    = "ERR_EMPTY_QUOTATION"
)

// Backend error codes
const (
	ErrCodeBackendRejected    = "ERR_BACKEND_REJECTED"
	ErrCodeBackendUnavailable = "ERR_BACKEND_UNAVAILABLE"
)

// Rate limiting error codes
const (
	ErrCodeRateLimited = "ERR_RATE_LIMITED"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeUnknown:  http.StatusInternalServerError,
	ErrCodeInternal: http.StatusInternalServerError,

	ErrCodeValidation:   http.StatusBadRequest,
	ErrCodeBadRequest:   http.StatusBadRequest,
	ErrCodeInvalidInput: http.StatusBadRequest,
	ErrCodeInvalidJSON:  http.StatusBadRequest,
	ErrCodeTooLarge:     http.StatusRequestEntityTooLarge,

	ErrCodeUnauthorized:   http.StatusUnauthorized,
	ErrCodeForbidden:      http.StatusForbidden,
	ErrCodeSessionExpired: http.StatusUnauthorized,

	ErrCodeNotFound:      http.StatusNotFound,
	ErrCodeDraftNotFound: http.StatusNotFound,
	ErrCodeConflict:      http.StatusConflict,

	ErrCodeInvalidState:      http.StatusUnprocessableEntity,
	ErrCodeInvalidTransition: http.StatusUnprocessableEntity,
	ErrCodeNoActiveSection:   http.StatusUnprocessableEntity,
	ErrCodeEmptyQuotation:    http.StatusUnprocessableEntity,

	ErrCodeBackendRejected:    http.StatusUnprocessableEntity,
	ErrCodeBackendUnavailable: http.StatusBadGateway,

	ErrCodeRateLimited: http.StatusTooManyRequests,
}

// GetHTTPStatus returns the HTTP status code for an error code
// Returns 500 Internal Server Error if the error code is not found
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// DomainErrorCodeMapping maps domain error codes to API error codes
var DomainErrorCodeMapping = map[string]string{
	"NOT_FOUND":         ErrCodeNotFound,
	"SECTION_NOT_FOUND": ErrCodeNotFound,
	"GROUP_NOT_FOUND":   ErrCodeNotFound,
	"ITEM_NOT_FOUND":    ErrCodeNotFound,
	"DRAFT_NOT_FOUND":   ErrCodeDraftNotFound,

	"INVALID_INPUT":     ErrCodeInvalidInput,
	"INVALID_PRICE":     ErrCodeInvalidInput,
	"INVALID_DISCOUNT":  ErrCodeInvalidInput,
	"INVALID_FORMAT":    ErrCodeInvalidInput,
	"INVALID_STATUS":    ErrCodeInvalidInput,
	"INVALID_CATEGORY":  ErrCodeInvalidInput,
	"INVALID_ITEM_NAME": ErrCodeInvalidInput,

	"INVALID_STATE":             ErrCodeInvalidState,
	"INVALID_STATUS_TRANSITION": ErrCodeInvalidTransition,
	"NO_ACTIVE_SECTION":         ErrCodeNoActiveSection,
	"EMPTY_QUOTATION":           ErrCodeEmptyQuotation,

	"UNAUTHORIZED":         ErrCodeUnauthorized,
	"NO_CREDENTIALS":       ErrCodeUnauthorized,
	"FORBIDDEN":            ErrCodeForbidden,
	"BACKEND_UNAUTHORIZED": ErrCodeSessionExpired,

	"BACKEND_REJECTED":       ErrCodeBackendRejected,
	"INVALID_LOGIN_RESPONSE": ErrCodeBackendUnavailable,
	"BACKEND_UNAVAILABLE":    ErrCodeBackendUnavailable,

	"INTERNAL_ERROR": ErrCodeInternal,
}

// NormalizeErrorCode converts a domain error code to the API format.
// Codes already in the API format are returned as-is; unknown codes
// become ERR_UNKNOWN.
func NormalizeErrorCode(code string) string {
	if apiCode, ok := DomainErrorCodeMapping[code]; ok {
		return apiCode
	}
	if _, ok := ErrorCodeHTTPStatus[code]; ok {
		return code
	}
	return ErrCodeUnknown
}
