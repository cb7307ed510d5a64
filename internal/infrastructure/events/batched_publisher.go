package events

import (
	"context"
	"time"

	"paystream/internal/core/domain"
	"paystream/internal/core/ports"
	"paystream/pkg/batch"

	"go.uber.org/zap"
)

// BatchedPublisher buffers events and forwards them to the underlying bus in
// batches. Safe for this event stream: indexers key state by (stream id, seq)
// and tolerate delayed delivery, never reordered meaning.
type BatchedPublisher struct {
	bus     Bus
	batcher *batch.Batcher
	log     *zap.SugaredLogger
}

type publishOperation struct {
	bus   Bus
	event *domain.StreamEvent
}

func (op *publishOperation) Execute(ctx context.Context) error {
	return op.bus.Publish(ctx, op.event)
}

type publishProcessor struct {
	log *zap.SugaredLogger
}

func (p *publishProcessor) ProcessBatch(ctx context.Context, operations []batch.Operation) error {
	for _, op := range operations {
		if err := op.Execute(ctx); err != nil {
			// Advisory delivery: log and keep draining the batch.
			p.log.Warnw("failed to publish batched event", "error", err)
		}
	}
	return nil
}

func NewBatchedPublisher(bus Bus, batchSize int, batchInterval time.Duration, log *zap.SugaredLogger) *BatchedPublisher {
	return &BatchedPublisher{
		bus:     bus,
		batcher: batch.NewBatcher(batchSize, batchInterval, &publishProcessor{log: log}),
		log:     log,
	}
}

func (p *BatchedPublisher) Publish(ctx context.Context, event *domain.StreamEvent) error {
	return p.batcher.Add(&publishOperation{bus: p.bus, event: event})
}

// Flush forces out everything buffered, for shutdown paths.
func (p *BatchedPublisher) Flush(ctx context.Context) error {
	return p.batcher.Flush(ctx)
}

func (p *BatchedPublisher) Stop() {
	p.batcher.Stop()
}

var _ ports.EventPublisher = (*BatchedPublisher)(nil)
