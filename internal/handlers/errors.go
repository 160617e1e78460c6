package handlers

import (
	"errors"
	"net/http"

	"github.com/retailops/ledger_service/internal/apperrors"
)

// statusFromError maps service-layer sentinel errors to HTTP status codes.
// Unknown errors fall through to 500 and must not leak internals to the
// client.
func statusFromError(err error) int {
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperrors.ErrValidation),
		errors.Is(err, apperrors.ErrUnbalanced):
		return http.StatusBadRequest
	case errors.Is(err, apperrors.ErrNotPostable),
		errors.Is(err, apperrors.ErrPeriodClosed):
		return http.StatusUnprocessableEntity
	case errors.Is(err, apperrors.ErrDuplicate),
		errors.Is(err, apperrors.ErrDuplicatePosting),
		errors.Is(err, apperrors.ErrConflict),
		errors.Is(err, apperrors.ErrAlreadyClosed),
		errors.Is(err, apperrors.ErrInvalidState):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// clientErrorMessage returns the error text for client-caused failures and a
// generic message for everything else.
func clientErrorMessage(err error, fallback string) string {
	if statusFromError(err) < http.StatusInternalServerError {
		return err.Error()
	}
	return fallback
}
