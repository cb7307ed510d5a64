package memory

import (
	"context"
	"sync"
	"time"

	"paystream/internal/core/domain"
	"paystream/internal/core/ports"
)

type MemoryProfileRepository struct {
	profiles map[domain.Address]*domain.UserProfile
	mu       sync.RWMutex
}

func NewMemoryProfileRepository() ports.ProfileRepository {
	return &MemoryProfileRepository{
		profiles: make(map[domain.Address]*domain.UserProfile),
	}
}

func (r *MemoryProfileRepository) Index(ctx context.Context, stream *domain.Stream) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.add(stream.Sender, stream.ID, true)
	r.add(stream.Receiver, stream.ID, false)
	return nil
}

func (r *MemoryProfileRepository) add(addr domain.Address, id domain.StreamID, asSender bool) {
	profile, ok := r.profiles[addr]
	if !ok {
		profile = &domain.UserProfile{Address: addr}
		r.profiles[addr] = profile
	}
	if asSender {
		profile.AsSender = append(profile.AsSender, id)
	} else {
		profile.AsReceiver = append(profile.AsReceiver, id)
	}
	profile.LastUpdated = time.Now()
}

func (r *MemoryProfileRepository) Get(ctx context.Context, addr domain.Address) (*domain.UserProfile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	profile, ok := r.profiles[addr]
	if !ok {
		return &domain.UserProfile{Address: addr}, nil
	}

	out := &domain.UserProfile{
		Address:     profile.Address,
		AsSender:    append([]domain.StreamID(nil), profile.AsSender...),
		AsReceiver:  append([]domain.StreamID(nil), profile.AsReceiver...),
		LastUpdated: profile.LastUpdated,
	}
	return out, nil
}
