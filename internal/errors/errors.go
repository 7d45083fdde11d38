package errors

import (
	"fmt"
	"net/http"

	"github.com/go-chi/render"
)

// Error codes carried by APIError. Each maps to one problem type.
const (
	CodeInvalidRequest     = "INVALID_REQUEST"
	CodeValidationFailed   = "VALIDATION_FAILED"
	CodeInvalidParameter   = "INVALID_PARAMETER"
	CodeInvalidJSON        = "INVALID_JSON"
	CodePayloadTooLarge    = "PAYLOAD_TOO_LARGE"
	CodeNotFound           = "NOT_FOUND"
	CodeViewNotFound       = "VIEW_NOT_FOUND"
	CodeTableNotFound      = "TABLE_NOT_FOUND"
	CodeUnprocessable      = "UNPROCESSABLE_ENTITY"
	CodeChartFailed        = "CHART_FAILED"
	CodeRateLimited        = "RATE_LIMIT_EXCEEDED"
	CodeInternal           = "INTERNAL_SERVER_ERROR"
	CodeServiceUnavailable = "SERVICE_UNAVAILABLE"
)

var codeTypes = map[string]string{
	CodeInvalidRequest:     TypeValidation,
	CodeValidationFailed:   TypeValidation,
	CodeInvalidParameter:   TypeValidation,
	CodeInvalidJSON:        TypeValidation,
	CodePayloadTooLarge:    TypePayloadTooLarge,
	CodeNotFound:           TypeNotFound,
	CodeViewNotFound:       TypeViewNotFound,
	CodeTableNotFound:      TypeNotFound,
	CodeUnprocessable:      TypeAggregationFailed,
	CodeChartFailed:        TypeChartFailed,
	CodeRateLimited:        TypeRateLimit,
	CodeServiceUnavailable: TypeServiceDown,
}

// ProblemType returns the RFC 7807 type for an error code
func ProblemType(code string) string {
	if t, ok := codeTypes[code]; ok {
		return t
	}
	return TypeInternal
}

// APIError is an error raised by a handler with a known status and code
type APIError struct {
	StatusCode int         `json:"status_code"`
	ErrorCode  string      `json:"error_code"`
	Message    string      `json:"message"`
	Details    interface{} `json:"details,omitempty"`
}

func (e *APIError) Error() string {
	return e.Message
}

// Render implements the render.Renderer interface for chi/render
func (e *APIError) Render(w http.ResponseWriter, r *http.Request) error {
	render.Status(r, e.StatusCode)
	return nil
}

// ValidationError describes one rejected field
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationErrors groups every rejected field of a request
type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func New(statusCode int, errorCode, message string) *APIError {
	return &APIError{
		StatusCode: statusCode,
		ErrorCode:  errorCode,
		Message:    message,
	}
}

func NewWithDetails(statusCode int, errorCode, message string, details interface{}) *APIError {
	return &APIError{
		StatusCode: statusCode,
		ErrorCode:  errorCode,
		Message:    message,
		Details:    details,
	}
}

var (
	ErrInvalidRequest      = New(http.StatusBadRequest, CodeInvalidRequest, "Invalid request format")
	ErrValidationFailed    = New(http.StatusBadRequest, CodeValidationFailed, "Request validation failed")
	ErrInvalidParameter    = New(http.StatusBadRequest, CodeInvalidParameter, "Invalid parameter value")
	ErrNotFound            = New(http.StatusNotFound, CodeNotFound, "Resource not found")
	ErrViewNotFound        = New(http.StatusNotFound, CodeViewNotFound, "View not found")
	ErrUnprocessableEntity = New(http.StatusUnprocessableEntity, CodeUnprocessable, "Request could not be processed")
	ErrRateLimitExceeded   = New(http.StatusTooManyRequests, CodeRateLimited, "Rate limit exceeded")
	ErrInternalServer      = New(http.StatusInternalServerError, CodeInternal, "Internal server error")
	ErrServiceUnavailable  = New(http.StatusServiceUnavailable, CodeServiceUnavailable, "Service temporarily unavailable")
)

// InvalidRequestWithError wraps a decoding or parsing failure
func InvalidRequestWithError(err error) *APIError {
	return NewWithDetails(http.StatusBadRequest, CodeInvalidRequest, "Invalid request format", err.Error())
}

// InvalidParameter rejects one query or path parameter
func InvalidParameter(name, reason string) *APIError {
	return NewWithDetails(http.StatusBadRequest, CodeInvalidParameter,
		fmt.Sprintf("invalid %s: %s", name, reason),
		ValidationError{Field: name, Message: reason})
}

// ErrValidation rejects a single field
func ErrValidation(field, message string) *APIError {
	return NewWithDetails(http.StatusBadRequest, CodeValidationFailed, "Request validation failed", ValidationError{
		Field:   field,
		Message: message,
	})
}

// NewValidationErrors rejects several fields at once
func NewValidationErrors(errors []ValidationError) *APIError {
	return NewWithDetails(
		http.StatusBadRequest,
		CodeValidationFailed,
		"Request validation failed",
		ValidationErrors{Errors: errors},
	)
}

func NotFoundError(resource string) *APIError {
	return NewWithDetails(http.StatusNotFound, CodeNotFound, fmt.Sprintf("%s not found", resource), resource)
}

// ViewNotFound lists the views that do exist so clients can recover
func ViewNotFound(view string, available []string) *APIError {
	return NewWithDetails(http.StatusNotFound, CodeViewNotFound,
		fmt.Sprintf("view %q does not exist", view),
		map[string]interface{}{"view": view, "available": available})
}

// TableNotFound rejects a dataset name other than daily or hourly
func TableNotFound(kind string) *APIError {
	return NewWithDetails(http.StatusNotFound, CodeTableNotFound,
		fmt.Sprintf("table %q does not exist", kind),
		map[string]interface{}{"table": kind, "available": []string{"daily", "hourly"}})
}

// NothingToPlot is returned when a view produced no rows to draw
func NothingToPlot(view string) *APIError {
	return NewWithDetails(http.StatusUnprocessableEntity, CodeChartFailed,
		fmt.Sprintf("view %q has no rows to plot", view),
		map[string]interface{}{"view": view})
}
