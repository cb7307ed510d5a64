package postgres

import (
	"context"
	"fmt"
	"time"

	"paystream/internal/core/domain"
	"paystream/internal/core/ports"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresProfileRepository enumerates streams by party straight off the
// streams table indexes; no separate index table is needed.
type PostgresProfileRepository struct {
	db *pgxpool.Pool
}

func NewPostgresProfileRepository(pool *pgxpool.Pool) ports.ProfileRepository {
	return &PostgresProfileRepository{db: pool}
}

func (r *PostgresProfileRepository) Index(ctx context.Context, stream *domain.Stream) error {
	// The authoritative row already carries sender and receiver.
	return nil
}

func (r *PostgresProfileRepository) Get(ctx context.Context, addr domain.Address) (*domain.UserProfile, error) {
	asSender, err := r.idsWhere(ctx, "sender", addr)
	if err != nil {
		return nil, err
	}
	asReceiver, err := r.idsWhere(ctx, "receiver", addr)
	if err != nil {
		return nil, err
	}

	return &domain.UserProfile{
		Address:     addr,
		AsSender:    asSender,
		AsReceiver:  asReceiver,
		LastUpdated: time.Now(),
	}, nil
}

func (r *PostgresProfileRepository) idsWhere(ctx context.Context, column string, addr domain.Address) ([]domain.StreamID, error) {
	sql := fmt.Sprintf(`SELECT id FROM streams WHERE %s = $1 ORDER BY id`, column)

	rows, err := r.db.Query(ctx, sql, string(addr))
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate streams by %s: %w", column, err)
	}
	defer rows.Close()

	var ids []domain.StreamID
	for rows.Next() {
		var id uint64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan stream id: %w", err)
		}
		ids = append(ids, domain.StreamID(id))
	}
	return ids, rows.Err()
}
