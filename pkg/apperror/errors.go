package apperror

import (
	"errors"
	"net/http"
)

// AppError represents an application error with HTTP status code
type AppError struct {
	Code    int          `json:"code"`
	Message string       `json:"message"`
	Errors  []FieldError `json:"errors,omitempty"`
}

// FieldError represents a validation error for a specific field
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *AppError) Error() string {
	return e.Message
}

// Common errors
var (
	ErrNotFound       = &AppError{Code: http.StatusNotFound, Message: "Resource not found"}
	ErrUnauthorized   = &AppError{Code: http.StatusUnauthorized, Message: "Unauthorized"}
	ErrForbidden      = &AppError{Code: http.StatusForbidden, Message: "Forbidden"}
	ErrBadRequest     = &AppError{Code: http.StatusBadRequest, Message: "Bad request"}
	ErrInternalServer = &AppError{Code: http.StatusInternalServerError, Message: "Internal server error"}
	ErrConflict       = &AppError{Code: http.StatusConflict, Message: "Resource already exists"}
	ErrUnprocessable  = &AppError{Code: http.StatusUnprocessableEntity, Message: "Unprocessable entity"}
)

// Billing errors. Callers match them with errors.Is.
var (
	// ErrNoTradesInRange: the party has no qualifying trades for the requested range.
	ErrNoTradesInRange = &AppError{Code: http.StatusUnprocessableEntity, Message: "No trades for party in the requested range"}
	// ErrDuplicateInvoice: (firm, fiscal scope, party) already holds an invoice.
	ErrDuplicateInvoice = &AppError{Code: http.StatusConflict, Message: "An invoice already exists for this party and fiscal period"}
	// ErrNumberingConflict: the bill number could not be allocated within the retry budget.
	ErrNumberingConflict = &AppError{Code: http.StatusConflict, Message: "Could not allocate a bill number, please retry"}
	// ErrInvalidReceiptAmount: receipt amount is missing, non-numeric or not positive.
	ErrInvalidReceiptAmount = &AppError{Code: http.StatusUnprocessableEntity, Message: "Receipt amount must be a positive number"}
	ErrInvalidPaymentMode   = &AppError{Code: http.StatusUnprocessableEntity, Message: "Unknown payment mode"}
	ErrInvalidDateRange     = &AppError{Code: http.StatusUnprocessableEntity, Message: "from date must not be after to date"}
	ErrInvoiceNotFound      = &AppError{Code: http.StatusNotFound, Message: "Invoice not found"}
	ErrReceiptNotFound      = &AppError{Code: http.StatusNotFound, Message: "Receipt not found"}
	ErrFirmContextRequired  = &AppError{Code: http.StatusBadRequest, Message: "Missing firm context"}
)

// NewAppError creates a new application error
func NewAppError(code int, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// NewValidationError creates a new validation error
func NewValidationError(fieldErrors []FieldError) *AppError {
	return &AppError{
		Code:    http.StatusUnprocessableEntity,
		Message: "Validation failed",
		Errors:  fieldErrors,
	}
}

// NewNotFoundError creates a not found error with a custom message
func NewNotFoundError(resource string) *AppError {
	return &AppError{
		Code:    http.StatusNotFound,
		Message: resource + " not found",
	}
}

// NewBadRequestError creates a bad request error with a custom message
func NewBadRequestError(message string) *AppError {
	return &AppError{
		Code:    http.StatusBadRequest,
		Message: message,
	}
}

// IsAppError checks if an error is an AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// GetAppError converts an error to AppError if possible. Errors that are not
// AppErrors are reported as a generic 500 so storage details do not leak.
func GetAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return ErrInternalServer
}
