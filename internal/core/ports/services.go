package ports

import (
	"context"
	"time"

	"paystream/internal/core/domain"
)

// CreateStreamParams carries every creation input; validation happens in the
// engine's guard layer, not here.
type CreateStreamParams struct {
	Sender        domain.Address
	Receiver      domain.Address
	Token         domain.TokenID
	TotalAmount   uint64
	StartTime     uint64
	EndTime       uint64
	CancellableBy domain.CancellableBy
}

// WithdrawResult reports what a successful withdrawal actually moved.
type WithdrawResult struct {
	Amount    uint64
	Remaining uint64
	Status    domain.StreamStatus
}

// CancelResult reports the pro-rated settlement of a cancellation.
type CancelResult struct {
	ReceiverDue  uint64
	SenderRefund uint64
}

type StreamService interface {
	// CreateStream pulls TotalAmount into custody and records a new Active
	// stream. Nothing is written when the custody transfer fails.
	CreateStream(ctx context.Context, p CreateStreamParams) (*domain.Stream, error)
	GetStream(ctx context.Context, id domain.StreamID) (*domain.Stream, error)
	// UnlockedAmount is a pure query of the vested portion at the oracle's
	// current time.
	UnlockedAmount(ctx context.Context, id domain.StreamID) (uint64, error)
	// Withdraw releases requested base units to the receiver. requested == 0
	// means the entirety of the currently available balance.
	Withdraw(ctx context.Context, id domain.StreamID, caller domain.Address, requested uint64) (*WithdrawResult, error)
	// Cancel settles unlocked-minus-withdrawn to the receiver and refunds the
	// unearned remainder to the sender, then closes the stream.
	Cancel(ctx context.Context, id domain.StreamID, caller domain.Address) (*CancelResult, error)
	ListByAddress(ctx context.Context, addr domain.Address) (*domain.UserProfile, error)
}

// TokenLedger is the external fungible-asset ledger the engine issues
// transfer instructions to. Implementations must fail distinguishably with
// domain.ErrInsufficientFunds vs domain.ErrInsufficientAllowance; the engine
// treats any failure as non-retryable within the surrounding operation.
type TokenLedger interface {
	Transfer(ctx context.Context, token domain.TokenID, from, to domain.Address, amount uint64) error
	TransferFrom(ctx context.Context, token domain.TokenID, owner, spender, to domain.Address, amount uint64) error
	BalanceOf(ctx context.Context, token domain.TokenID, addr domain.Address) (uint64, error)
	Approve(ctx context.Context, token domain.TokenID, owner, spender domain.Address, amount uint64) error
}

// Clock is the host time oracle. The engine reads it exactly once per
// operation and never caches the value across calls.
type Clock interface {
	Now() time.Time
}

// EventPublisher receives one structured event per successful operation.
// Publication is advisory: a publish failure never fails the operation.
type EventPublisher interface {
	Publish(ctx context.Context, event *domain.StreamEvent) error
}
