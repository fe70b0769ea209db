package dto

import "net/http"

// Error code constants organized by category
// Format: ERR_<CATEGORY>_<DESCRIPTION>

// General error codes
const (
	// ErrCodeUnknown is used when the error type is unknown
	ErrCodeUnknown = "ERR_UNKNOWN"
	// ErrCodeInternal is used for internal server errors
	ErrCodeInternal = "ERR_INTERNAL"
)

// Validation error codes
const (
	// ErrCodeValidation is the base code for validation errors
	ErrCodeValidation = "ERR_VALIDATION"
)

// Authentication error codes
const (
	ErrCodeUnauthorized  = "ERR_UNAUTHORIZED"
	ErrCodeForbidden     = "ERR_FORBIDDEN"
	ErrCodeTokenExpired  = "ERR_TOKEN_EXPIRED"
	ErrCodeTokenInvalid  = "ERR_TOKEN_INVALID"
	ErrCodeTenantMissing = "ERR_TENANT_MISSING"
)

// Resource error codes
const (
	// ErrCodeNotFound is used when a resource is not found
	ErrCodeNotFound = "ERR_NOT_FOUND"
	// ErrCodeAlreadyExists is used when trying to create a duplicate resource
	ErrCodeAlreadyExists = "ERR_ALREADY_EXISTS"
	// ErrCodeConflict is used for general resource conflicts
	ErrCodeConflict = "ERR_CONFLICT"
)

// Lifecycle, task and document rule codes
const (
	ErrCodeInvalidState           = "ERR_INVALID_STATE"
	ErrCodeIllegalTransition      = "ERR_ILLEGAL_TRANSITION"
	ErrCodeUnsupportedAction      = "ERR_UNSUPPORTED_ACTION"
	ErrCodeOpenMandatoryTasks     = "ERR_OPEN_MANDATORY_TASKS"
	ErrCodeTaskPreconditionFailed = "ERR_TASK_PRECONDITION_FAILED"
	ErrCodeTaskAlreadyExecuted    = "ERR_TASK_ALREADY_EXECUTED"
	ErrCodeDocumentCompleted      = "ERR_DOCUMENT_COMPLETED"
	ErrCodeMissingPages           = "ERR_MISSING_PAGES"
)

// Input error codes
const (
	// ErrCodeBadRequest is used for malformed requests
	ErrCodeBadRequest = "ERR_BAD_REQUEST"
	// ErrCodeInvalidInput is used for invalid input data
	ErrCodeInvalidInput = "ERR_INVALID_INPUT"
	// ErrCodeInvalidJSON is used when JSON parsing fails
	ErrCodeInvalidJSON = "ERR_INVALID_JSON"
	// ErrCodeRequestTooLarge is used when the body exceeds the configured limit
	ErrCodeRequestTooLarge = "ERR_REQUEST_TOO_LARGE"
)

// Rate limiting error codes
const (
	// ErrCodeRateLimited is used when rate limit is exceeded
	ErrCodeRateLimited = "ERR_RATE_LIMITED"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	// General errors
	ErrCodeUnknown:  http.StatusInternalServerError,
	ErrCodeInternal: http.StatusInternalServerError,

	ErrCodeValidation: http.StatusBadRequest,

	// Auth errors
	ErrCodeUnauthorized:  http.StatusUnauthorized,
	ErrCodeForbidden:     http.StatusForbidden,
	ErrCodeTokenExpired:  http.StatusUnauthorized,
	ErrCodeTokenInvalid:  http.StatusUnauthorized,
	ErrCodeTenantMissing: http.StatusUnauthorized,

	// Resource errors
	ErrCodeNotFound:      http.StatusNotFound,
	ErrCodeAlreadyExists: http.StatusConflict,
	ErrCodeConflict:      http.StatusConflict,

	// Rejected commands on the wrong source state or with missing input -> 400
	ErrCodeIllegalTransition: http.StatusBadRequest,
	ErrCodeUnsupportedAction: http.StatusBadRequest,
	ErrCodeMissingPages:      http.StatusBadRequest,

	// Rejected commands blocked by other state -> 409
	ErrCodeInvalidState:           http.StatusConflict,
	ErrCodeOpenMandatoryTasks:     http.StatusConflict,
	ErrCodeTaskPreconditionFailed: http.StatusConflict,
	ErrCodeTaskAlreadyExecuted:    http.StatusConflict,
	ErrCodeDocumentCompleted:      http.StatusConflict,

	// Input errors -> 400 Bad Request
	ErrCodeBadRequest:      http.StatusBadRequest,
	ErrCodeInvalidInput:    http.StatusBadRequest,
	ErrCodeInvalidJSON:     http.StatusBadRequest,
	ErrCodeRequestTooLarge: http.StatusRequestEntityTooLarge,

	// Rate limiting -> 429 Too Many Requests
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
	"NOT_FOUND":                ErrCodeNotFound,
	"ALREADY_EXISTS":           ErrCodeAlreadyExists,
	"INVALID_INPUT":            ErrCodeInvalidInput,
	"INVALID_STATE":            ErrCodeInvalidState,
	"CONFLICT":                 ErrCodeConflict,
	"ILLEGAL_TRANSITION":       ErrCodeIllegalTransition,
	"UNSUPPORTED_ACTION":       ErrCodeUnsupportedAction,
	"OPEN_MANDATORY_TASKS":     ErrCodeOpenMandatoryTasks,
	"TASK_PRECONDITION_FAILED": ErrCodeTaskPreconditionFailed,
	"TASK_ALREADY_EXECUTED":    ErrCodeTaskAlreadyExecuted,
	"DOCUMENT_COMPLETED":       ErrCodeDocumentCompleted,
	"MISSING_PAGES":            ErrCodeMissingPages,
}

// NormalizeErrorCode converts a domain error code to the API format.
// Codes already in the API format or unknown are returned as-is.
func NormalizeErrorCode(code string) string {
	if apiCode, ok := DomainErrorCodeMapping[code]; ok {
		return apiCode
	}
	return code
}
