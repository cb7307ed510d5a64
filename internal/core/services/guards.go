package services

import (
	"time"

	"paystream/internal/core/domain"
	"paystream/internal/core/ports"
)

// GuardConfig bounds stream shape and amount magnitude. Values come from the
// limits section of the service configuration.
type GuardConfig struct {
	MaxAmount      uint64
	MaxDuration    time.Duration
	MaxStartBehind time.Duration
	MaxStartAhead  time.Duration
}

// The guard layer is pure: each predicate inspects its inputs and returns a
// specific taxonomy error or nil, with no side effects. The engine runs
// guards eagerly and aborts on the first failure, so no partial mutation can
// ever be observed.

func guardParties(p ports.CreateStreamParams) error {
	if p.Sender == "" || p.Receiver == "" {
		return domain.ErrInvalidAddress
	}
	if p.Sender == p.Receiver {
		return domain.ErrSelfStream
	}
	if !p.CancellableBy.Valid() {
		return domain.ErrInvalidAddress
	}
	return nil
}

func guardAmount(total uint64, cfg GuardConfig) error {
	if total == 0 || total > cfg.MaxAmount {
		return domain.ErrInvalidAmount
	}
	return nil
}

func guardSchedule(start, end, now uint64, cfg GuardConfig) error {
	if end <= start {
		return domain.ErrInvalidTimeRange
	}
	if end-start > uint64(cfg.MaxDuration/time.Second) {
		return domain.ErrDurationOutOfBounds
	}
	behind := uint64(cfg.MaxStartBehind / time.Second)
	ahead := uint64(cfg.MaxStartAhead / time.Second)
	if start < now && now-start > behind {
		return domain.ErrStartTimeOutOfRange
	}
	if start > now && start-now > ahead {
		return domain.ErrStartTimeOutOfRange
	}
	return nil
}

func guardActive(stream *domain.Stream) error {
	if !stream.IsActive() {
		return domain.ErrStreamNotActive
	}
	return nil
}

func guardWithdrawer(stream *domain.Stream, caller domain.Address) error {
	if caller != stream.Receiver {
		return domain.ErrUnauthorized
	}
	return nil
}

func guardCanceller(stream *domain.Stream, caller domain.Address) error {
	if !stream.CancellableBy.Permits(caller, stream.Sender, stream.Receiver) {
		return domain.ErrUnauthorized
	}
	return nil
}
