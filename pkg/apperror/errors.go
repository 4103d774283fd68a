package apperror

import (
	"fmt"
	"net/http"
)

// AppError is a structured error that maps to HTTP responses.
type AppError struct {
	Code       string `json:"error_code"`
	Message    string `json:"message"`
	HTTPStatus int    `json:"-"`
	Err        error  `json:"-"` // Wrapped internal error (not exposed to client)
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError.
func New(code string, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
	}
}

// Wrap wraps an internal error with an AppError.
func Wrap(code string, message string, httpStatus int, err error) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Err:        err,
	}
}

// ---- Validation (VAL) ----

// Validation returns a generic bad-input error.
func Validation(message string) *AppError {
	return New("VAL_001", message, http.StatusBadRequest)
}

func ErrInvalidAmount() *AppError {
	return New("VAL_002", "Amount must be greater than zero", http.StatusBadRequest)
}

func ErrInvalidPinFormat() *AppError {
	return New("VAL_003", "PIN must be 4 to 6 decimal digits", http.StatusBadRequest)
}

func ErrPinRequired() *AppError {
	return New("VAL_004", "Transfer PIN is required for this operation", http.StatusBadRequest)
}

// ---- PIN authorization (PIN) ----

func ErrPinNotSet() *AppError {
	return New("PIN_001", "No transfer PIN has been set", http.StatusForbidden)
}

func ErrInvalidPin() *AppError {
	return New("PIN_002", "Incorrect transfer PIN", http.StatusForbidden)
}

func ErrPinSetupRequired() *AppError {
	return New("PIN_003", "PIN entry does not exist for this user", http.StatusConflict)
}

// ---- Ledger business logic (LED) ----

func ErrInsufficientBalance() *AppError {
	return New("LED_001", "Insufficient balance", http.StatusUnprocessableEntity)
}

func ErrRecipientNotFound() *AppError {
	return New("LED_002", "Recipient not found", http.StatusNotFound)
}

func ErrNotFound(entity string) *AppError {
	return New("LED_003", fmt.Sprintf("%s not found", entity), http.StatusNotFound)
}

func ErrSelfTransfer() *AppError {
	return New("LED_004", "Cannot transfer to your own wallet", http.StatusBadRequest)
}

func ErrNoQuote(asset string) *AppError {
	return New("LED_005", fmt.Sprintf("No usable price quote for %s", asset), http.StatusUnprocessableEntity)
}

// ---- Authentication (AUTH) ----

func ErrInvalidToken() *AppError {
	return New("AUTH_001", "Invalid or expired token", http.StatusUnauthorized)
}

func ErrAdminOnly() *AppError {
	return New("AUTH_002", "Administrator privileges required", http.StatusForbidden)
}

func ErrUsernameExists() *AppError {
	return New("AUTH_003", "Username already exists", http.StatusConflict)
}

// ---- Rate Limiting (RATE) ----

func ErrRateLimitExceeded() *AppError {
	return New("RATE_001", "Rate limit exceeded", http.StatusTooManyRequests)
}

// ---- System & Infrastructure (SYS) ----

// InternalError wraps an internal error as a SYS_001 error.
func InternalError(err error) *AppError {
	return Wrap("SYS_001", "Internal server error", http.StatusInternalServerError, err)
}

func ErrDatabaseError(err error) *AppError {
	return Wrap("SYS_002", "Internal database error", http.StatusInternalServerError, err)
}
