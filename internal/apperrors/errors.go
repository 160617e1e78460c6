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

// ErrConflict indicates the request conflicts with the current state of a resource.
var ErrConflict = errors.New("resource state conflict")

// ErrInternal indicates an unexpected internal failure.
var ErrInternal = errors.New("internal error")

// ErrUnbalanced indicates a journal whose debit total does not equal its credit total.
var ErrUnbalanced = errors.New("journal debits and credits are not equal")

// ErrInvalidState indicates an illegal lifecycle transition was attempted,
// such as posting a journal that is not a draft or finalizing a trial
// balance twice.
var ErrInvalidState = errors.New("operation not allowed in current state")

// ErrPeriodClosed indicates a posting was rejected because the target
// accounting period or fiscal year is closed.
var ErrPeriodClosed = errors.New("accounting period is closed")

// ErrAlreadyClosed indicates an attempt to close a period or fiscal year
// that is already closed.
var ErrAlreadyClosed = errors.New("already closed")

// ErrNotPostable indicates the target account cannot receive postings
// (inactive, control account, or non-leaf).
var ErrNotPostable = errors.New("account is not postable")

// ErrDuplicatePosting indicates the same journal entry was applied to the
// ledger twice. Callers may treat this as a safe retry signal rather than
// a failure.
var ErrDuplicatePosting = errors.New("journal entry already posted to ledger")

// ErrImbalancedLedger indicates the general ledger itself does not balance.
// This is an internal integrity failure, never a user error.
var ErrImbalancedLedger = errors.New("general ledger integrity violation: debits do not equal credits")

// AppError wraps an underlying error with an HTTP-like status code and a
// human-readable message for the API layer.
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

// NewAppError creates a new AppError.
func NewAppError(code int, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

// NewNotFoundError creates an AppError that unwraps to ErrNotFound.
func NewNotFoundError(message string) *AppError {
	return &AppError{Code: 404, Message: message, Err: ErrNotFound}
}
