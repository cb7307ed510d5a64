package ports

import (
	"context"

	"paystream/internal/core/domain"
)

// StreamRepository is the persisted stream table. Put is the only mutation
// primitive; callers serialize access to a given stream id, so a backend
// needs no locking beyond whole-record atomicity.
type StreamRepository interface {
	NextID(ctx context.Context) (domain.StreamID, error)
	Get(ctx context.Context, id domain.StreamID) (*domain.Stream, error)
	Put(ctx context.Context, stream *domain.Stream) error
	// List enumerates every stored stream, for snapshots and audits. Order is
	// unspecified.
	List(ctx context.Context) ([]*domain.Stream, error)
}

// ProfileRepository maintains the per-address enumeration index. Best-effort:
// engine operations tolerate its failures after the authoritative write.
type ProfileRepository interface {
	Index(ctx context.Context, stream *domain.Stream) error
	Get(ctx context.Context, addr domain.Address) (*domain.UserProfile, error)
}

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	GetByAddress(ctx context.Context, addr domain.Address) (*domain.User, error)
}
