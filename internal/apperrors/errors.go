package apperrors

import (
	"errors"
	"fmt"
)

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrForbidden indicates the caller is authenticated but may not act on the resource.
var ErrForbidden = errors.New("forbidden")

// ErrUnauthorized indicates missing or invalid credentials.
var ErrUnauthorized = errors.New("unauthorized")

// ErrConflict indicates the request conflicts with the current state of the resource.
var ErrConflict = errors.New("conflict")

// ErrInternal indicates an unexpected infrastructure failure.
var ErrInternal = errors.New("internal error")

// Banking error taxonomy. Each wraps one of the generic sentinels above so
// callers can match either the specific or the generic error with errors.Is.
var (
	ErrInsufficientFunds    = fmt.Errorf("insufficient funds: %w", ErrValidation)
	ErrAccountInactive      = fmt.Errorf("account is not active: %w", ErrValidation)
	ErrUnsupportedAsset     = fmt.Errorf("unsupported crypto asset: %w", ErrValidation)
	ErrSelfTransferRejected = fmt.Errorf("sender and recipient wallet are the same: %w", ErrValidation)

	ErrAccountNotFound     = fmt.Errorf("account: %w", ErrNotFound)
	ErrWalletNotFound      = fmt.Errorf("crypto wallet: %w", ErrNotFound)
	ErrClientNotFound      = fmt.Errorf("client: %w", ErrNotFound)
	ErrTransactionNotFound = fmt.Errorf("transaction: %w", ErrNotFound)

	ErrAccessDenied       = fmt.Errorf("access denied: %w", ErrForbidden)
	ErrDuplicateIdentity  = fmt.Errorf("identity already in use: %w", ErrDuplicate)
	ErrInvalidTransition  = fmt.Errorf("invalid status transition: %w", ErrConflict)
	ErrIDExhaustion       = fmt.Errorf("could not allocate a unique identifier: %w", ErrInternal)
	ErrInvalidCredentials = fmt.Errorf("invalid username or password: %w", ErrUnauthorized)

	// Recovered internally and never returned to callers.
	ErrRateProviderUnavailable = errors.New("rate provider unavailable")
	ErrConfigMissing           = errors.New("configuration value missing")
)

// AppError carries an HTTP-ish status code alongside the wrapped cause.
type AppError struct {
	Code    int
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError builds an AppError.
func NewAppError(code int, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}
