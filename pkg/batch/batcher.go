package batch

import (
	"context"
	"sync"
	"time"
)

// Operation is a unit of deferred work.
type Operation interface {
	Execute(ctx context.Context) error
}

// Processor handles a drained batch in one call.
type Processor interface {
	ProcessBatch(ctx context.Context, operations []Operation) error
}

// Batcher accumulates operations and hands them to the processor when the
// batch fills or the interval elapses. A final flush runs on Stop.
type Batcher struct {
	size      int
	interval  time.Duration
	processor Processor

	mu      sync.Mutex
	pending []Operation

	kick chan struct{}
	done chan struct{}
}

func NewBatcher(size int, interval time.Duration, processor Processor) *Batcher {
	b := &Batcher{
		size:      size,
		interval:  interval,
		processor: processor,
		pending:   make([]Operation, 0, size),
		kick:      make(chan struct{}, 1),
		done:      make(chan struct{}),
	}
	go b.loop()
	return b
}

// Add queues an operation and triggers a flush when the batch is full.
func (b *Batcher) Add(op Operation) error {
	b.mu.Lock()
	b.pending = append(b.pending, op)
	full := len(b.pending) >= b.size
	b.mu.Unlock()

	if full {
		select {
		case b.kick <- struct{}{}:
		default:
		}
	}
	return nil
}

// Flush processes everything currently pending.
func (b *Batcher) Flush(ctx context.Context) error {
	b.mu.Lock()
	if len(b.pending) == 0 {
		b.mu.Unlock()
		return nil
	}
	ops := b.pending
	b.pending = make([]Operation, 0, b.size)
	b.mu.Unlock()

	return b.processor.ProcessBatch(ctx, ops)
}

// PendingCount returns the number of queued operations.
func (b *Batcher) PendingCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.pending)
}

// Stop flushes the remaining operations and stops the background loop.
func (b *Batcher) Stop() {
	close(b.done)
}

func (b *Batcher) loop() {
	ticker := time.NewTicker(b.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			_ = b.Flush(context.Background())
		case <-b.kick:
			_ = b.Flush(context.Background())
		case <-b.done:
			_ = b.Flush(context.Background())
			return
		}
	}
}
