package domain

import "time"

type EventType string

const (
	EventStreamCreated   EventType = "stream.created"
	EventStreamWithdrawn EventType = "stream.withdrawn"
	EventStreamCancelled EventType = "stream.cancelled"
)

// StreamEvent is the record emitted once per successful engine operation.
// (StreamID, Seq) is unique and monotonically increasing per stream, so an
// off-chain indexer can reprocess from any checkpoint without double counting.
type StreamEvent struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	StreamID  StreamID  `json:"stream_id"`
	Seq       uint64    `json:"seq"`
	Sender    Address   `json:"sender"`
	Receiver  Address   `json:"receiver"`
	Token     TokenID   `json:"token"`
	Timestamp time.Time `json:"timestamp"`

	// Payload fields, set per event type.
	TotalAmount  uint64 `json:"total_amount,omitempty"`
	Amount       uint64 `json:"amount,omitempty"`
	ReceiverDue  uint64 `json:"receiver_due,omitempty"`
	SenderRefund uint64 `json:"sender_refund,omitempty"`
}
