package errors

import (
	"fmt"
	"net/http"
)

// ErrorCode is a stable, machine-readable failure kind. Codes are part of the
// API contract: clients distinguish "retry later" failures (funds category)
// from "never valid" ones (validation, authorization).
type ErrorCode string

const (
	// Lookup / state
	ErrCodeStreamNotFound  ErrorCode = "STREAM_NOT_FOUND"
	ErrCodeStreamNotActive ErrorCode = "STREAM_NOT_ACTIVE"

	// Authorization
	ErrCodeUnauthorized ErrorCode = "UNAUTHORIZED"

	// Validation
	ErrCodeInvalidTimeRange    ErrorCode = "INVALID_TIME_RANGE"
	ErrCodeDurationOutOfBounds ErrorCode = "DURATION_OUT_OF_BOUNDS"
	ErrCodeStartTimeOutOfRange ErrorCode = "START_TIME_OUT_OF_RANGE"
	ErrCodeInvalidAmount       ErrorCode = "INVALID_AMOUNT"
	ErrCodeInvalidAddress      ErrorCode = "INVALID_ADDRESS"
	ErrCodeInvalidInput        ErrorCode = "INVALID_INPUT"

	// Funds
	ErrCodeInsufficientUnlocked  ErrorCode = "INSUFFICIENT_UNLOCKED_BALANCE"
	ErrCodeNothingToWithdraw     ErrorCode = "NOTHING_TO_WITHDRAW"
	ErrCodeInsufficientFunds     ErrorCode = "INSUFFICIENT_FUNDS"
	ErrCodeInsufficientAllowance ErrorCode = "INSUFFICIENT_ALLOWANCE"

	// Arithmetic
	ErrCodeArithmeticOverflow  ErrorCode = "ARITHMETIC_OVERFLOW"
	ErrCodeArithmeticUnderflow ErrorCode = "ARITHMETIC_UNDERFLOW"

	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

// Category groups error codes for metrics and test coverage.
type Category string

const (
	CategoryState      Category = "state"
	CategoryAuth       Category = "authorization"
	CategoryValidation Category = "validation"
	CategoryFunds      Category = "funds"
	CategoryArithmetic Category = "arithmetic"
	CategoryInternal   Category = "internal"
)

// AppError carries a taxonomy code plus transport mapping for the HTTP layer.
type AppError struct {
	Code       ErrorCode
	Category   Category
	Message    string
	HTTPStatus int
	Cause      error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

func New(code ErrorCode, category Category, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Category:   category,
		Message:    message,
		HTTPStatus: httpStatus,
	}
}

// Wrap attaches a cause to a taxonomy error.
func Wrap(err error, code ErrorCode, category Category, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Category:   category,
		Message:    message,
		HTTPStatus: httpStatus,
		Cause:      err,
	}
}

func NewInvalidInput(message string) *AppError {
	return New(ErrCodeInvalidInput, CategoryValidation, message, http.StatusBadRequest)
}

func NewUnauthorized(message string) *AppError {
	return New(ErrCodeUnauthorized, CategoryAuth, message, http.StatusForbidden)
}

func NewInternal(err error) *AppError {
	return Wrap(err, ErrCodeInternal, CategoryInternal, "internal error", http.StatusInternalServerError)
}

// GetAppError extracts an AppError from an error chain, or nil.
func GetAppError(err error) *AppError {
	for err != nil {
		if appErr, ok := err.(*AppError); ok {
			return appErr
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return nil
		}
		err = u.Unwrap()
	}
	return nil
}
