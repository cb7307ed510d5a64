package domain

import "errors"

// Closed failure vocabulary shared by guards, engine, store and ledger.
// Every engine operation returns a success value or exactly one of these;
// no operation both reports failure and mutates persisted state.
var (
	// Lookup / state
	ErrStreamNotFound  = errors.New("stream not found")
	ErrStreamNotActive = errors.New("stream not active")

	// Authorization
	ErrUnauthorized = errors.New("caller not authorized for this operation")

	// Validation
	ErrInvalidTimeRange    = errors.New("end time must be after start time")
	ErrDurationOutOfBounds = errors.New("stream duration exceeds configured maximum")
	ErrStartTimeOutOfRange = errors.New("start time too far from current time")
	ErrInvalidAmount       = errors.New("amount must be positive and within bounds")
	ErrInvalidAddress      = errors.New("invalid account address")
	ErrSelfStream          = errors.New("sender and receiver must differ")

	// Funds
	ErrInsufficientUnlockedBalance = errors.New("requested amount exceeds unlocked balance")
	ErrNothingToWithdraw           = errors.New("no unlocked balance available to withdraw")
	ErrInsufficientFunds           = errors.New("insufficient token balance")
	ErrInsufficientAllowance       = errors.New("insufficient token allowance")

	// Arithmetic
	ErrArithmeticOverflow  = errors.New("arithmetic overflow")
	ErrArithmeticUnderflow = errors.New("arithmetic underflow")

	// Auth service
	ErrUserNotFound      = errors.New("user not found")
	ErrUserAlreadyExists = errors.New("user already exists")
	ErrInvalidCredential = errors.New("invalid credentials")
)
