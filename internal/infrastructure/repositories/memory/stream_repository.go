package memory

import (
	"context"
	"sync"

	"paystream/internal/core/domain"
	"paystream/internal/core/ports"
	"paystream/pkg/optimize"
)

type MemoryStreamRepository struct {
	streams map[domain.StreamID]domain.Stream
	nextID  domain.StreamID
	mu      sync.RWMutex
}

func NewMemoryStreamRepository() ports.StreamRepository {
	return &MemoryStreamRepository{
		streams: make(map[domain.StreamID]domain.Stream),
	}
}

func (r *MemoryStreamRepository) NextID(ctx context.Context) (domain.StreamID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	return r.nextID, nil
}

func (r *MemoryStreamRepository) Get(ctx context.Context, id domain.StreamID) (*domain.Stream, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stream, exists := r.streams[id]
	if !exists {
		return nil, domain.ErrStreamNotFound
	}

	// Copy out so callers never mutate the stored record directly.
	return &stream, nil
}

func (r *MemoryStreamRepository) Put(ctx context.Context, stream *domain.Stream) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.streams[stream.ID] = *stream
	return nil
}

func (r *MemoryStreamRepository) List(ctx context.Context) ([]*domain.Stream, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	streams := optimize.PreAllocateSlice[*domain.Stream](0, len(r.streams))
	for id := range r.streams {
		stream := r.streams[id]
		streams = append(streams, &stream)
	}
	return streams, nil
}
