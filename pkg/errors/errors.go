package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorCode represents standardized error codes
type ErrorCode string

const (
	CodeBadRequest         ErrorCode = "BAD_REQUEST"
	CodeValidation         ErrorCode = "VALIDATION_ERROR"
	CodeConflict           ErrorCode = "CONFLICT"
	CodeInvalidCredentials ErrorCode = "INVALID_CREDENTIALS"
	CodeInvalidToken       ErrorCode = "INVALID_TOKEN"
	CodeForbidden          ErrorCode = "FORBIDDEN"
	CodeNotFound           ErrorCode = "NOT_FOUND"
	CodeRateLimited        ErrorCode = "RATE_LIMITED"
	CodeIdempotencyInvalid ErrorCode = "INVALID_IDEMPOTENCY_KEY"
	CodeIdempotencyClash   ErrorCode = "IDEMPOTENCY_CONFLICT"
	CodeCleanupIncomplete  ErrorCode = "CLEANUP_INCOMPLETE"
	CodeInternalError      ErrorCode = "INTERNAL_ERROR"

	// Store-layer codes, one per known DynamoDB/S3 failure kind.
	CodeConditionFailed     ErrorCode = "CONDITION_FAILED"
	CodeStoreInternal       ErrorCode = "STORE_INTERNAL_ERROR"
	CodeInvalidEndpoint     ErrorCode = "INVALID_ENDPOINT"
	CodeCollectionTooLarge  ErrorCode = "ITEM_COLLECTION_TOO_LARGE"
	CodeThroughputExceeded  ErrorCode = "THROUGHPUT_EXCEEDED"
	CodeRequestLimit        ErrorCode = "REQUEST_LIMIT_EXCEEDED"
	CodeResourceNotFound    ErrorCode = "RESOURCE_NOT_FOUND"
	CodeTransactionConflict ErrorCode = "TRANSACTION_CONFLICT"
	CodeStoreUnavailable    ErrorCode = "STORE_UNAVAILABLE"
	CodeUnmappedStore       ErrorCode = "UNMAPPED_STORE_ERROR"
)

// HTTPStatusMap maps error codes to HTTP status codes
var HTTPStatusMap = map[ErrorCode]int{
	CodeBadRequest:         http.StatusBadRequest,
	CodeValidation:         http.StatusBadRequest,
	CodeConflict:           http.StatusConflict,
	CodeInvalidCredentials: http.StatusForbidden,
	CodeInvalidToken:       http.StatusForbidden,
	CodeForbidden:          http.StatusForbidden,
	CodeNotFound:           http.StatusNotFound,
	CodeRateLimited:        http.StatusTooManyRequests,
	CodeIdempotencyInvalid: http.StatusBadRequest,
	CodeIdempotencyClash:   http.StatusConflict,
	CodeCleanupIncomplete:  http.StatusInternalServerError,
	CodeInternalError:      http.StatusInternalServerError,

	CodeConditionFailed:     http.StatusBadRequest,
	CodeStoreInternal:       http.StatusInternalServerError,
	CodeInvalidEndpoint:     http.StatusBadRequest,
	CodeCollectionTooLarge:  http.StatusRequestEntityTooLarge,
	CodeThroughputExceeded:  http.StatusTooManyRequests,
	CodeRequestLimit:        http.StatusTooManyRequests,
	CodeResourceNotFound:    http.StatusNotFound,
	CodeTransactionConflict: http.StatusTooEarly,
	CodeStoreUnavailable:    http.StatusInternalServerError,
	CodeUnmappedStore:       http.StatusTeapot,
}

// ErrorResponse represents the standardized error response structure
type ErrorResponse struct {
	Error struct {
		Code    ErrorCode `json:"code"`
		Message string    `json:"message"`
		TraceID string    `json:"trace_id,omitempty"`
	} `json:"error"`
}

// AppError represents an application error with code and message
type AppError struct {
	Code    ErrorCode
	Message string
	Cause   error
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause
func (e *AppError) Unwrap() error {
	return e.Cause
}

// NewAppError creates a new AppError
func NewAppError(code ErrorCode, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// NewAppErrorf creates a new AppError with formatted message
func NewAppErrorf(code ErrorCode, cause error, format string, args ...interface{}) *AppError {
	return &AppError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// ToErrorResponse converts AppError to ErrorResponse
func (e *AppError) ToErrorResponse(traceID string) ErrorResponse {
	resp := ErrorResponse{}
	resp.Error.Code = e.Code
	resp.Error.Message = e.Message
	resp.Error.TraceID = traceID
	return resp
}

// HTTPStatus returns the HTTP status code for this error
func (e *AppError) HTTPStatus() int {
	if status, exists := HTTPStatusMap[e.Code]; exists {
		return status
	}
	return http.StatusInternalServerError
}

// IsRetryable reports whether a client may retry the failed call unchanged.
func (e *AppError) IsRetryable() bool {
	switch e.Code {
	case CodeThroughputExceeded, CodeRequestLimit, CodeTransactionConflict, CodeStoreUnavailable, CodeRateLimited:
		return true
	default:
		return false
	}
}

// As returns the first *AppError in err's chain.
func As(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// HasCode reports whether err carries the given code anywhere in its chain.
func HasCode(err error, code ErrorCode) bool {
	for err != nil {
		var appErr *AppError
		if !errors.As(err, &appErr) {
			return false
		}
		if appErr.Code == code {
			return true
		}
		err = appErr.Cause
	}
	return false
}

func Validation(message string) *AppError {
	return NewAppError(CodeValidation, message, nil)
}

func NotFound(message string) *AppError {
	return NewAppError(CodeNotFound, message, nil)
}

func Forbidden(message string) *AppError {
	return NewAppError(CodeForbidden, message, nil)
}
