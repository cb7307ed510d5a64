package memory

import (
	"context"
	"sync"

	"paystream/internal/core/domain"
	"paystream/internal/core/ports"
)

type MemoryUserRepository struct {
	byUsername map[string]*domain.User
	byAddress  map[domain.Address]*domain.User
	mu         sync.RWMutex
}

func NewMemoryUserRepository() ports.UserRepository {
	return &MemoryUserRepository{
		byUsername: make(map[string]*domain.User),
		byAddress:  make(map[domain.Address]*domain.User),
	}
}

func (r *MemoryUserRepository) Create(ctx context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byUsername[user.Username]; exists {
		return domain.ErrUserAlreadyExists
	}
	if _, exists := r.byAddress[user.Address]; exists {
		return domain.ErrUserAlreadyExists
	}

	r.byUsername[user.Username] = user
	r.byAddress[user.Address] = user
	return nil
}

func (r *MemoryUserRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, exists := r.byUsername[username]
	if !exists {
		return nil, domain.ErrUserNotFound
	}
	return user, nil
}

func (r *MemoryUserRepository) GetByAddress(ctx context.Context, addr domain.Address) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, exists := r.byAddress[addr]
	if !exists {
		return nil, domain.ErrUserNotFound
	}
	return user, nil
}
