package services

import (
	"context"
	"fmt"
	"time"

	"paystream/internal/core/domain"
	"paystream/internal/core/ports"
	"paystream/pkg/cache"
)

// CachedStreamService wraps a StreamService with read caching. Stream records
// and profiles are cached briefly; mutations invalidate their entries.
// UnlockedAmount is never cached: it is a function of the current time.
type CachedStreamService struct {
	baseService ports.StreamService
	cache       *cache.CacheWithFallback
	streamTTL   time.Duration
	profileTTL  time.Duration
}

func NewCachedStreamService(
	baseService ports.StreamService,
	streamTTL time.Duration,
	profileTTL time.Duration,
) ports.StreamService {
	return &CachedStreamService{
		baseService: baseService,
		cache:       cache.NewCacheWithFallback(streamTTL),
		streamTTL:   streamTTL,
		profileTTL:  profileTTL,
	}
}

func streamKey(id domain.StreamID) string {
	return fmt.Sprintf("stream:%d", id)
}

func profileKey(addr domain.Address) string {
	return fmt.Sprintf("profile:%s", addr)
}

func (s *CachedStreamService) CreateStream(ctx context.Context, p ports.CreateStreamParams) (*domain.Stream, error) {
	stream, err := s.baseService.CreateStream(ctx, p)
	if err != nil {
		return nil, err
	}

	s.cache.Invalidate(profileKey(p.Sender))
	s.cache.Invalidate(profileKey(p.Receiver))
	return stream, nil
}

func (s *CachedStreamService) GetStream(ctx context.Context, id domain.StreamID) (*domain.Stream, error) {
	value, err := s.cache.GetOrSet(ctx, streamKey(id), func(ctx context.Context) (interface{}, error) {
		return s.baseService.GetStream(ctx, id)
	}, s.streamTTL)
	if err != nil {
		return nil, err
	}
	return value.(*domain.Stream), nil
}

func (s *CachedStreamService) UnlockedAmount(ctx context.Context, id domain.StreamID) (uint64, error) {
	return s.baseService.UnlockedAmount(ctx, id)
}

func (s *CachedStreamService) Withdraw(ctx context.Context, id domain.StreamID, caller domain.Address, requested uint64) (*ports.WithdrawResult, error) {
	result, err := s.baseService.Withdraw(ctx, id, caller, requested)
	if err != nil {
		return nil, err
	}

	s.cache.Invalidate(streamKey(id))
	return result, nil
}

func (s *CachedStreamService) Cancel(ctx context.Context, id domain.StreamID, caller domain.Address) (*ports.CancelResult, error) {
	result, err := s.baseService.Cancel(ctx, id, caller)
	if err != nil {
		return nil, err
	}

	s.cache.Invalidate(streamKey(id))
	return result, nil
}

func (s *CachedStreamService) ListByAddress(ctx context.Context, addr domain.Address) (*domain.UserProfile, error) {
	value, err := s.cache.GetOrSet(ctx, profileKey(addr), func(ctx context.Context) (interface{}, error) {
		return s.baseService.ListByAddress(ctx, addr)
	}, s.profileTTL)
	if err != nil {
		return nil, err
	}
	return value.(*domain.UserProfile), nil
}
