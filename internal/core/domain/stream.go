package domain

import (
	"time"
)

type StreamID uint64

// Address is an authenticated account identity on the host ledger.
type Address string

type TokenID string

type StreamStatus string

const (
	StreamActive    StreamStatus = "active"
	StreamCancelled StreamStatus = "cancelled"
	StreamCompleted StreamStatus = "completed"
)

// CancellableBy selects which party may cancel a stream. Fixed at creation.
type CancellableBy string

const (
	CancelBySender   CancellableBy = "sender"
	CancelByReceiver CancellableBy = "receiver"
	CancelByEither   CancellableBy = "either"
)

func (c CancellableBy) Valid() bool {
	switch c {
	case CancelBySender, CancelByReceiver, CancelByEither:
		return true
	}
	return false
}

// Permits reports whether caller may cancel a stream with the given parties.
func (c CancellableBy) Permits(caller, sender, receiver Address) bool {
	switch c {
	case CancelBySender:
		return caller == sender
	case CancelByReceiver:
		return caller == receiver
	case CancelByEither:
		return caller == sender || caller == receiver
	}
	return false
}

// Stream is a custody commitment to release TotalAmount of Token linearly
// between StartTime and EndTime (unix seconds). Amounts are base units.
// Records are never deleted; terminal streams remain as audit records.
type Stream struct {
	ID              StreamID      `json:"id"`
	Sender          Address       `json:"sender"`
	Receiver        Address       `json:"receiver"`
	Token           TokenID       `json:"token"`
	TotalAmount     uint64        `json:"total_amount"`
	StartTime       uint64        `json:"start_time"`
	EndTime         uint64        `json:"end_time"`
	WithdrawnAmount uint64        `json:"withdrawn_amount"`
	CancellableBy   CancellableBy `json:"cancellable_by"`
	Status          StreamStatus  `json:"status"`
	// Seq increases by one on every state mutation; events carry it so an
	// indexer can replay idempotently keyed by (stream id, seq).
	Seq       uint64    `json:"seq"`
	CreatedAt time.Time `json:"created_at"`
}

func (s *Stream) IsActive() bool {
	return s.Status == StreamActive
}

// Duration returns EndTime - StartTime in seconds. Creation guards guarantee
// it is non-zero for any stored stream.
func (s *Stream) Duration() uint64 {
	return s.EndTime - s.StartTime
}

// UserProfile aggregates the stream ids an address participates in. It is a
// best-effort enumeration index, never authoritative for balances.
type UserProfile struct {
	Address     Address    `json:"address"`
	AsSender    []StreamID `json:"as_sender"`
	AsReceiver  []StreamID `json:"as_receiver"`
	LastUpdated time.Time  `json:"last_updated"`
}
