package backup

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"paystream/internal/core/ports"
	"paystream/pkg/backup"

	"go.uber.org/zap"
)

// Scheduler snapshots the stream table on an interval. Streams are audit
// records that never shrink, so a snapshot is always a superset of the
// previous one.
type Scheduler struct {
	backupService *backup.BackupService
	streamRepo    ports.StreamRepository
	interval      time.Duration
	retentionDays int
	logger        *zap.SugaredLogger
	stopChan      chan struct{}
}

type Config struct {
	Interval      time.Duration
	RetentionDays int
}

func NewScheduler(
	backupService *backup.BackupService,
	streamRepo ports.StreamRepository,
	cfg Config,
	logger *zap.SugaredLogger,
) *Scheduler {
	return &Scheduler{
		backupService: backupService,
		streamRepo:    streamRepo,
		interval:      cfg.Interval,
		retentionDays: cfg.RetentionDays,
		logger:        logger,
		stopChan:      make(chan struct{}),
	}
}

// Start runs the scheduler until Stop or context cancellation.
func (s *Scheduler) Start(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.runBackup(ctx)

	for {
		select {
		case <-ticker.C:
			s.runBackup(ctx)
		case <-s.stopChan:
			return
		case <-ctx.Done():
			return
		}
	}
}

func (s *Scheduler) Stop() {
	close(s.stopChan)
}

func (s *Scheduler) runBackup(ctx context.Context) {
	data, err := s.collectData(ctx)
	if err != nil {
		s.logger.Errorw("failed to collect backup data", "error", err)
		return
	}

	backupName, err := s.backupService.CreateBackup(ctx, data)
	if err != nil {
		s.logger.Errorw("failed to create backup", "error", err)
		return
	}

	s.logger.Infow("backup created", "backup_name", backupName, "streams", len(data.Streams))

	if err := s.cleanupOldBackups(ctx); err != nil {
		s.logger.Warnw("failed to cleanup old backups", "error", err)
	}
}

func (s *Scheduler) collectData(ctx context.Context) (*backup.BackupData, error) {
	streams, err := s.streamRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list streams: %w", err)
	}

	data := &backup.BackupData{
		Streams:  make(map[string]json.RawMessage, len(streams)),
		Metadata: make(map[string]interface{}),
	}

	for _, stream := range streams {
		raw, err := json.Marshal(stream)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal stream %d: %w", stream.ID, err)
		}
		data.Streams[strconv.FormatUint(uint64(stream.ID), 10)] = raw
	}

	data.Metadata["stream_count"] = len(data.Streams)
	data.Metadata["backup_type"] = "scheduled"

	return data, nil
}

func (s *Scheduler) cleanupOldBackups(ctx context.Context) error {
	backups, err := s.backupService.ListBackups(ctx)
	if err != nil {
		return fmt.Errorf("failed to list backups: %w", err)
	}

	cutoffTime := time.Now().AddDate(0, 0, -s.retentionDays)

	for _, backupName := range backups {
		// Name format: backup-20060102-150405.json
		if len(backupName) < 22 {
			continue
		}
		timestamp, err := time.Parse("20060102-150405", backupName[7:22])
		if err != nil {
			s.logger.Warnw("failed to parse backup timestamp", "backup_name", backupName, "error", err)
			continue
		}

		if timestamp.Before(cutoffTime) {
			if err := s.backupService.DeleteBackup(ctx, backupName); err != nil {
				s.logger.Warnw("failed to delete old backup", "backup_name", backupName, "error", err)
				continue
			}
			s.logger.Infow("deleted old backup", "backup_name", backupName)
		}
	}

	return nil
}
