package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"paystream/internal/core/domain"
	"paystream/internal/core/ports"
	"paystream/pkg/fixedpoint"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Recorder receives operational metrics from the engine. The prometheus
// collector implements it; tests pass a nop.
type Recorder interface {
	StreamCreated(token domain.TokenID, total uint64)
	StreamWithdrawn(token domain.TokenID, amount uint64)
	StreamCompleted(token domain.TokenID)
	StreamCancelled(token domain.TokenID, receiverDue, senderRefund uint64)
	OperationObserved(op string, d time.Duration)
}

type nopRecorder struct{}

func (nopRecorder) StreamCreated(domain.TokenID, uint64)           {}
func (nopRecorder) StreamWithdrawn(domain.TokenID, uint64)         {}
func (nopRecorder) StreamCompleted(domain.TokenID)                 {}
func (nopRecorder) StreamCancelled(domain.TokenID, uint64, uint64) {}
func (nopRecorder) OperationObserved(string, time.Duration)        {}

// NopRecorder returns a Recorder that discards everything.
func NopRecorder() Recorder { return nopRecorder{} }

type streamService struct {
	streams  ports.StreamRepository
	profiles ports.ProfileRepository
	ledger   ports.TokenLedger
	clock    ports.Clock
	events   ports.EventPublisher
	metrics  Recorder
	guards   GuardConfig
	custody  domain.Address
	log      *zap.SugaredLogger

	// Per-stream serialization point. The host model guarantees one writer
	// per stream per logical operation; within this process the keyed mutex
	// provides it.
	locksMu sync.Mutex
	locks   map[domain.StreamID]*sync.Mutex
}

func NewStreamService(
	streams ports.StreamRepository,
	profiles ports.ProfileRepository,
	ledger ports.TokenLedger,
	clock ports.Clock,
	events ports.EventPublisher,
	metrics Recorder,
	guards GuardConfig,
	custody domain.Address,
	log *zap.SugaredLogger,
) ports.StreamService {
	if metrics == nil {
		metrics = NopRecorder()
	}
	return &streamService{
		streams:  streams,
		profiles: profiles,
		ledger:   ledger,
		clock:    clock,
		events:   events,
		metrics:  metrics,
		guards:   guards,
		custody:  custody,
		log:      log,
		locks:    make(map[domain.StreamID]*sync.Mutex),
	}
}

func (s *streamService) lock(id domain.StreamID) *sync.Mutex {
	s.locksMu.Lock()
	defer s.locksMu.Unlock()
	mu, ok := s.locks[id]
	if !ok {
		mu = &sync.Mutex{}
		s.locks[id] = mu
	}
	return mu
}

// unlockedAt computes the vested portion of a stream at the given instant.
// Pure function of (stream, now); the linear formula with floor rounding.
func unlockedAt(stream *domain.Stream, now uint64) (uint64, error) {
	if now <= stream.StartTime {
		return 0, nil
	}
	if now >= stream.EndTime {
		return stream.TotalAmount, nil
	}
	elapsed := now - stream.StartTime
	unlocked, err := fixedpoint.MulDiv(stream.TotalAmount, elapsed, stream.Duration())
	if err != nil {
		return 0, domain.ErrArithmeticOverflow
	}
	return unlocked, nil
}

func (s *streamService) CreateStream(ctx context.Context, p ports.CreateStreamParams) (*domain.Stream, error) {
	started := s.clock.Now()
	now := uint64(started.Unix())

	if err := guardParties(p); err != nil {
		return nil, err
	}
	if err := guardAmount(p.TotalAmount, s.guards); err != nil {
		return nil, err
	}
	if err := guardSchedule(p.StartTime, p.EndTime, now, s.guards); err != nil {
		return nil, err
	}

	// Pull the committed amount into custody before any record exists. A
	// failed pull leaves no trace.
	if err := s.ledger.TransferFrom(ctx, p.Token, p.Sender, s.custody, s.custody, p.TotalAmount); err != nil {
		return nil, err
	}

	id, err := s.streams.NextID(ctx)
	if err != nil {
		s.refundCustody(ctx, p.Token, p.Sender, p.TotalAmount)
		return nil, fmt.Errorf("failed to allocate stream id: %w", err)
	}

	stream := &domain.Stream{
		ID:              id,
		Sender:          p.Sender,
		Receiver:        p.Receiver,
		Token:           p.Token,
		TotalAmount:     p.TotalAmount,
		StartTime:       p.StartTime,
		EndTime:         p.EndTime,
		WithdrawnAmount: 0,
		CancellableBy:   p.CancellableBy,
		Status:          domain.StreamActive,
		Seq:             1,
		CreatedAt:       started,
	}

	if err := s.streams.Put(ctx, stream); err != nil {
		s.refundCustody(ctx, p.Token, p.Sender, p.TotalAmount)
		return nil, fmt.Errorf("failed to persist stream: %w", err)
	}

	if err := s.profiles.Index(ctx, stream); err != nil {
		// Enumeration index is best-effort, never authoritative.
		s.log.Warnw("failed to index stream parties", "stream_id", id, "error", err)
	}

	s.publish(ctx, &domain.StreamEvent{
		ID:          uuid.NewString(),
		Type:        domain.EventStreamCreated,
		StreamID:    stream.ID,
		Seq:         stream.Seq,
		Sender:      stream.Sender,
		Receiver:    stream.Receiver,
		Token:       stream.Token,
		Timestamp:   started,
		TotalAmount: stream.TotalAmount,
	})

	s.metrics.StreamCreated(stream.Token, stream.TotalAmount)
	s.metrics.OperationObserved("create", s.clock.Now().Sub(started))

	s.log.Infow("stream created",
		"stream_id", id,
		"sender", stream.Sender,
		"receiver", stream.Receiver,
		"token", stream.Token,
		"total_amount", stream.TotalAmount,
	)

	return stream, nil
}

// refundCustody undoes a custody pull when persistence fails after the
// transfer succeeded. Failure here is logged loudly; funds sit in custody
// until an operator reconciles.
func (s *streamService) refundCustody(ctx context.Context, token domain.TokenID, sender domain.Address, amount uint64) {
	if err := s.ledger.Transfer(ctx, token, s.custody, sender, amount); err != nil {
		s.log.Errorw("failed to refund custody after aborted creation",
			"sender", sender,
			"token", token,
			"amount", amount,
			"error", err,
		)
	}
}

func (s *streamService) GetStream(ctx context.Context, id domain.StreamID) (*domain.Stream, error) {
	return s.streams.Get(ctx, id)
}

func (s *streamService) UnlockedAmount(ctx context.Context, id domain.StreamID) (uint64, error) {
	stream, err := s.streams.Get(ctx, id)
	if err != nil {
		return 0, err
	}
	return unlockedAt(stream, uint64(s.clock.Now().Unix()))
}

func (s *streamService) Withdraw(ctx context.Context, id domain.StreamID, caller domain.Address, requested uint64) (*ports.WithdrawResult, error) {
	mu := s.lock(id)
	mu.Lock()
	defer mu.Unlock()

	started := s.clock.Now()
	now := uint64(started.Unix())

	stream, err := s.streams.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := guardActive(stream); err != nil {
		return nil, err
	}
	if err := guardWithdrawer(stream, caller); err != nil {
		return nil, err
	}

	unlocked, err := unlockedAt(stream, now)
	if err != nil {
		return nil, err
	}
	available, err := fixedpoint.CheckedSub(unlocked, stream.WithdrawnAmount)
	if err != nil {
		return nil, domain.ErrArithmeticUnderflow
	}

	amount := requested
	if amount == 0 {
		amount = available
	}
	if amount == 0 {
		return nil, domain.ErrNothingToWithdraw
	}
	if amount > available {
		return nil, domain.ErrInsufficientUnlockedBalance
	}

	withdrawn, err := fixedpoint.CheckedAdd(stream.WithdrawnAmount, amount)
	if err != nil {
		return nil, domain.ErrArithmeticOverflow
	}

	// Transfer before the record write: a failed payout must leave the
	// record untouched.
	if err := s.ledger.Transfer(ctx, stream.Token, s.custody, stream.Receiver, amount); err != nil {
		return nil, err
	}

	stream.WithdrawnAmount = withdrawn
	if withdrawn == stream.TotalAmount && now >= stream.EndTime {
		stream.Status = domain.StreamCompleted
	}
	stream.Seq++

	if err := s.streams.Put(ctx, stream); err != nil {
		// The payout already happened; the record is stale until the backend
		// recovers. Surface loudly.
		s.log.Errorw("payout succeeded but record write failed",
			"stream_id", id, "amount", amount, "error", err)
		return nil, fmt.Errorf("failed to persist withdrawal: %w", err)
	}

	s.publish(ctx, &domain.StreamEvent{
		ID:        uuid.NewString(),
		Type:      domain.EventStreamWithdrawn,
		StreamID:  stream.ID,
		Seq:       stream.Seq,
		Sender:    stream.Sender,
		Receiver:  stream.Receiver,
		Token:     stream.Token,
		Timestamp: started,
		Amount:    amount,
	})

	s.metrics.StreamWithdrawn(stream.Token, amount)
	if stream.Status == domain.StreamCompleted {
		s.metrics.StreamCompleted(stream.Token)
	}
	s.metrics.OperationObserved("withdraw", s.clock.Now().Sub(started))

	s.log.Infow("withdrawal settled",
		"stream_id", id,
		"amount", amount,
		"withdrawn_total", stream.WithdrawnAmount,
		"status", stream.Status,
	)

	return &ports.WithdrawResult{
		Amount:    amount,
		Remaining: stream.TotalAmount - stream.WithdrawnAmount,
		Status:    stream.Status,
	}, nil
}

func (s *streamService) Cancel(ctx context.Context, id domain.StreamID, caller domain.Address) (*ports.CancelResult, error) {
	mu := s.lock(id)
	mu.Lock()
	defer mu.Unlock()

	started := s.clock.Now()
	now := uint64(started.Unix())

	stream, err := s.streams.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := guardActive(stream); err != nil {
		return nil, err
	}
	if err := guardCanceller(stream, caller); err != nil {
		return nil, err
	}

	unlocked, err := unlockedAt(stream, now)
	if err != nil {
		return nil, err
	}
	receiverDue, err := fixedpoint.CheckedSub(unlocked, stream.WithdrawnAmount)
	if err != nil {
		return nil, domain.ErrArithmeticUnderflow
	}
	// Everything not yet vested goes back to the sender; truncation dust from
	// the floor rounding lands here.
	senderRefund, err := fixedpoint.CheckedSub(stream.TotalAmount, unlocked)
	if err != nil {
		return nil, domain.ErrArithmeticUnderflow
	}

	if receiverDue > 0 {
		if err := s.ledger.Transfer(ctx, stream.Token, s.custody, stream.Receiver, receiverDue); err != nil {
			return nil, err
		}
	}
	if senderRefund > 0 {
		if err := s.ledger.Transfer(ctx, stream.Token, s.custody, stream.Sender, senderRefund); err != nil {
			// Receiver leg already paid; record the failure before bailing.
			s.log.Errorw("receiver paid but sender refund failed",
				"stream_id", id, "receiver_due", receiverDue, "sender_refund", senderRefund, "error", err)
			return nil, err
		}
	}

	stream.WithdrawnAmount += receiverDue
	stream.Status = domain.StreamCancelled
	stream.Seq++

	if err := s.streams.Put(ctx, stream); err != nil {
		s.log.Errorw("settlement paid but record write failed",
			"stream_id", id, "error", err)
		return nil, fmt.Errorf("failed to persist cancellation: %w", err)
	}

	s.publish(ctx, &domain.StreamEvent{
		ID:           uuid.NewString(),
		Type:         domain.EventStreamCancelled,
		StreamID:     stream.ID,
		Seq:          stream.Seq,
		Sender:       stream.Sender,
		Receiver:     stream.Receiver,
		Token:        stream.Token,
		Timestamp:    started,
		ReceiverDue:  receiverDue,
		SenderRefund: senderRefund,
	})

	s.metrics.StreamCancelled(stream.Token, receiverDue, senderRefund)
	s.metrics.OperationObserved("cancel", s.clock.Now().Sub(started))

	s.log.Infow("stream cancelled",
		"stream_id", id,
		"caller", caller,
		"receiver_due", receiverDue,
		"sender_refund", senderRefund,
	)

	return &ports.CancelResult{
		ReceiverDue:  receiverDue,
		SenderRefund: senderRefund,
	}, nil
}

func (s *streamService) ListByAddress(ctx context.Context, addr domain.Address) (*domain.UserProfile, error) {
	return s.profiles.Get(ctx, addr)
}

func (s *streamService) publish(ctx context.Context, event *domain.StreamEvent) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(ctx, event); err != nil {
		s.log.Warnw("failed to publish event",
			"type", event.Type,
			"stream_id", event.StreamID,
			"seq", event.Seq,
			"error", err,
		)
	}
}
