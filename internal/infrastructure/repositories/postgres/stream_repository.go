package postgres

import (
	"context"
	"errors"
	"fmt"

	"paystream/internal/core/domain"
	"paystream/internal/core/ports"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

const migrationSQL = `
CREATE SEQUENCE IF NOT EXISTS stream_ids;

CREATE TABLE IF NOT EXISTS streams (
	id               BIGINT PRIMARY KEY,
	sender           TEXT NOT NULL,
	receiver         TEXT NOT NULL,
	token            TEXT NOT NULL,
	total_amount     NUMERIC(20,0) NOT NULL CHECK (total_amount > 0),
	start_time       BIGINT NOT NULL,
	end_time         BIGINT NOT NULL CHECK (end_time > start_time),
	withdrawn_amount NUMERIC(20,0) NOT NULL DEFAULT 0,
	cancellable_by   TEXT NOT NULL,
	status           TEXT NOT NULL,
	seq              BIGINT NOT NULL DEFAULT 1,
	created_at       TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS streams_sender_idx ON streams (sender);
CREATE INDEX IF NOT EXISTS streams_receiver_idx ON streams (receiver);
`

type PostgresStreamRepository struct {
	db *pgxpool.Pool
}

// NewPool connects, pings and migrates the schema.
func NewPool(ctx context.Context, dsn string, logger *zap.SugaredLogger) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	if _, err := pool.Exec(ctx, migrationSQL); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	if logger != nil {
		logger.Infow("connected to Postgres")
	}
	return pool, nil
}

func NewPostgresStreamRepository(pool *pgxpool.Pool) ports.StreamRepository {
	return &PostgresStreamRepository{db: pool}
}

func (r *PostgresStreamRepository) NextID(ctx context.Context) (domain.StreamID, error) {
	var id uint64
	if err := r.db.QueryRow(ctx, `SELECT nextval('stream_ids')`).Scan(&id); err != nil {
		return 0, fmt.Errorf("failed to allocate stream id: %w", err)
	}
	return domain.StreamID(id), nil
}

func (r *PostgresStreamRepository) Get(ctx context.Context, id domain.StreamID) (*domain.Stream, error) {
	sql := `
        SELECT id, sender, receiver, token, total_amount, start_time, end_time,
               withdrawn_amount, cancellable_by, status, seq, created_at
        FROM streams
        WHERE id = $1`

	stream := &domain.Stream{}
	err := r.db.QueryRow(ctx, sql, uint64(id)).Scan(
		&stream.ID,
		&stream.Sender,
		&stream.Receiver,
		&stream.Token,
		&stream.TotalAmount,
		&stream.StartTime,
		&stream.EndTime,
		&stream.WithdrawnAmount,
		&stream.CancellableBy,
		&stream.Status,
		&stream.Seq,
		&stream.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrStreamNotFound
		}
		return nil, fmt.Errorf("failed to get stream: %w", err)
	}
	return stream, nil
}

func (r *PostgresStreamRepository) Put(ctx context.Context, stream *domain.Stream) error {
	sql := `
        INSERT INTO streams (id, sender, receiver, token, total_amount, start_time,
                             end_time, withdrawn_amount, cancellable_by, status, seq, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
        ON CONFLICT (id) DO UPDATE SET
            withdrawn_amount = EXCLUDED.withdrawn_amount,
            status           = EXCLUDED.status,
            seq              = EXCLUDED.seq`

	_, err := r.db.Exec(ctx, sql,
		uint64(stream.ID),
		string(stream.Sender),
		string(stream.Receiver),
		string(stream.Token),
		stream.TotalAmount,
		stream.StartTime,
		stream.EndTime,
		stream.WithdrawnAmount,
		string(stream.CancellableBy),
		string(stream.Status),
		stream.Seq,
		stream.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to put stream: %w", err)
	}
	return nil
}

func (r *PostgresStreamRepository) List(ctx context.Context) ([]*domain.Stream, error) {
	sql := `
        SELECT id, sender, receiver, token, total_amount, start_time, end_time,
               withdrawn_amount, cancellable_by, status, seq, created_at
        FROM streams
        ORDER BY id`

	rows, err := r.db.Query(ctx, sql)
	if err != nil {
		return nil, fmt.Errorf("failed to list streams: %w", err)
	}
	defer rows.Close()

	var streams []*domain.Stream
	for rows.Next() {
		stream := &domain.Stream{}
		if err := rows.Scan(
			&stream.ID,
			&stream.Sender,
			&stream.Receiver,
			&stream.Token,
			&stream.TotalAmount,
			&stream.StartTime,
			&stream.EndTime,
			&stream.WithdrawnAmount,
			&stream.CancellableBy,
			&stream.Status,
			&stream.Seq,
			&stream.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan stream: %w", err)
		}
		streams = append(streams, stream)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate streams: %w", err)
	}
	return streams, nil
}
