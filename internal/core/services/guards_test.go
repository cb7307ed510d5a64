package services

import (
	"testing"
	"time"

	"paystream/internal/core/domain"

	"github.com/stretchr/testify/assert"
)

var testGuards = GuardConfig{
	MaxAmount:      1_000_000,
	MaxDuration:    100 * time.Second,
	MaxStartBehind: 60 * time.Second,
	MaxStartAhead:  60 * time.Second,
}

func TestGuardAmount(t *testing.T) {
	assert.NoError(t, guardAmount(1, testGuards))
	assert.NoError(t, guardAmount(1_000_000, testGuards))
	assert.ErrorIs(t, guardAmount(0, testGuards), domain.ErrInvalidAmount)
	assert.ErrorIs(t, guardAmount(1_000_001, testGuards), domain.ErrInvalidAmount)
}

func TestGuardSchedule(t *testing.T) {
	const now = uint64(10_000)

	tests := []struct {
		name    string
		start   uint64
		end     uint64
		wantErr error
	}{
		{"valid window", now, now + 100, nil},
		{"start slightly behind", now - 60, now + 10, nil},
		{"start slightly ahead", now + 60, now + 100, nil},
		{"end equals start", now, now, domain.ErrInvalidTimeRange},
		{"end before start", now + 50, now, domain.ErrInvalidTimeRange},
		{"duration too long", now, now + 101, domain.ErrDurationOutOfBounds},
		{"start too far behind", now - 61, now, domain.ErrStartTimeOutOfRange},
		{"start too far ahead", now + 61, now + 120, domain.ErrStartTimeOutOfRange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := guardSchedule(tt.start, tt.end, now, testGuards)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestGuardActive(t *testing.T) {
	assert.NoError(t, guardActive(&domain.Stream{Status: domain.StreamActive}))
	assert.ErrorIs(t, guardActive(&domain.Stream{Status: domain.StreamCancelled}), domain.ErrStreamNotActive)
	assert.ErrorIs(t, guardActive(&domain.Stream{Status: domain.StreamCompleted}), domain.ErrStreamNotActive)
}

func TestGuardWithdrawer(t *testing.T) {
	stream := &domain.Stream{Sender: "alice", Receiver: "bob"}

	assert.NoError(t, guardWithdrawer(stream, "bob"))
	assert.ErrorIs(t, guardWithdrawer(stream, "alice"), domain.ErrUnauthorized)
	assert.ErrorIs(t, guardWithdrawer(stream, "mallory"), domain.ErrUnauthorized)
}
