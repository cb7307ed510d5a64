package http

import (
	"errors"
	"net/http"

	"paystream/internal/core/domain"
	apperrors "paystream/pkg/errors"
)

// mapDomainError translates engine sentinels into taxonomy errors with an
// HTTP status. Unknown errors become opaque 500s so internal detail never
// leaks to clients.
func mapDomainError(err error) *apperrors.AppError {
	switch {
	case errors.Is(err, domain.ErrStreamNotFound):
		return apperrors.Wrap(err, apperrors.ErrCodeStreamNotFound, apperrors.CategoryState, "stream not found", http.StatusNotFound)
	case errors.Is(err, domain.ErrStreamNotActive):
		return apperrors.Wrap(err, apperrors.ErrCodeStreamNotActive, apperrors.CategoryState, "stream is not active", http.StatusConflict)
	case errors.Is(err, domain.ErrUnauthorized):
		return apperrors.Wrap(err, apperrors.ErrCodeUnauthorized, apperrors.CategoryAuth, "caller not authorized for this operation", http.StatusForbidden)
	case errors.Is(err, domain.ErrInvalidTimeRange):
		return apperrors.Wrap(err, apperrors.ErrCodeInvalidTimeRange, apperrors.CategoryValidation, "end time must be after start time", http.StatusBadRequest)
	case errors.Is(err, domain.ErrDurationOutOfBounds):
		return apperrors.Wrap(err, apperrors.ErrCodeDurationOutOfBounds, apperrors.CategoryValidation, "stream duration out of bounds", http.StatusBadRequest)
	case errors.Is(err, domain.ErrStartTimeOutOfRange):
		return apperrors.Wrap(err, apperrors.ErrCodeStartTimeOutOfRange, apperrors.CategoryValidation, "start time too far from current time", http.StatusBadRequest)
	case errors.Is(err, domain.ErrInvalidAmount):
		return apperrors.Wrap(err, apperrors.ErrCodeInvalidAmount, apperrors.CategoryValidation, "amount must be positive and within bounds", http.StatusBadRequest)
	case errors.Is(err, domain.ErrInvalidAddress), errors.Is(err, domain.ErrSelfStream):
		return apperrors.Wrap(err, apperrors.ErrCodeInvalidAddress, apperrors.CategoryValidation, err.Error(), http.StatusBadRequest)
	case errors.Is(err, domain.ErrInsufficientUnlockedBalance):
		return apperrors.Wrap(err, apperrors.ErrCodeInsufficientUnlocked, apperrors.CategoryFunds, "requested amount exceeds unlocked balance", http.StatusUnprocessableEntity)
	case errors.Is(err, domain.ErrNothingToWithdraw):
		return apperrors.Wrap(err, apperrors.ErrCodeNothingToWithdraw, apperrors.CategoryFunds, "no unlocked balance available", http.StatusUnprocessableEntity)
	case errors.Is(err, domain.ErrInsufficientFunds):
		return apperrors.Wrap(err, apperrors.ErrCodeInsufficientFunds, apperrors.CategoryFunds, "insufficient token balance", http.StatusUnprocessableEntity)
	case errors.Is(err, domain.ErrInsufficientAllowance):
		return apperrors.Wrap(err, apperrors.ErrCodeInsufficientAllowance, apperrors.CategoryFunds, "insufficient token allowance", http.StatusUnprocessableEntity)
	case errors.Is(err, domain.ErrArithmeticOverflow):
		return apperrors.Wrap(err, apperrors.ErrCodeArithmeticOverflow, apperrors.CategoryArithmetic, "arithmetic overflow", http.StatusBadRequest)
	case errors.Is(err, domain.ErrArithmeticUnderflow):
		return apperrors.Wrap(err, apperrors.ErrCodeArithmeticUnderflow, apperrors.CategoryArithmetic, "arithmetic underflow", http.StatusBadRequest)
	default:
		return apperrors.NewInternal(err)
	}
}
