package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rizkyhp/medremind/internal/observability"
	"github.com/rizkyhp/medremind/internal/repository"
	"go.uber.org/zap"
)

const (
	defaultScanInterval = time.Minute
	defaultScanLimit    = 500
)

// Armer schedules a one-shot fire unless one is already tracked.
type Armer interface {
	Arm(logID string, at time.Time) bool
}

// ScanLoop periodically re-derives today's reminder fires from durable
// state. Nothing is lost across restarts because every tick starts from the
// record store, not from memory.
type ScanLoop struct {
	logs     repository.LogEntryRepository
	fires    Armer
	logger   *zap.Logger
	metrics  *observability.Metrics
	interval time.Duration
	limit    int
	now      func() time.Time
}

func NewScanLoop(
	logs repository.LogEntryRepository,
	fires Armer,
	interval time.Duration,
	limit int,
	logger *zap.Logger,
) (*ScanLoop, error) {
	if logs == nil {
		return nil, fmt.Errorf("log entry repository is required")
	}
	if fires == nil {
		return nil, fmt.Errorf("fire queue is required")
	}
	if interval <= 0 {
		interval = defaultScanInterval
	}
	if limit <= 0 {
		limit = defaultScanLimit
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &ScanLoop{
		logs:     logs,
		fires:    fires,
		logger:   logger,
		interval: interval,
		limit:    limit,
		now:      time.Now,
	}, nil
}

func (s *ScanLoop) SetMetrics(metrics *observability.Metrics) {
	if s == nil {
		return
	}
	s.metrics = metrics
}

func (s *ScanLoop) Start(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	// Run an initial scan so pending entries do not wait for the first
	// ticker edge.
	if err := s.scanToday(ctx); err != nil && ctx.Err() == nil {
		s.logger.Error("scan loop initial scan failed", zap.Error(err))
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := s.scanToday(ctx); err != nil {
				if ctx.Err() != nil {
					return nil
				}
				// Skipped tick is self-healing: the next one re-derives
				// everything from the store.
				s.logger.Error("scan loop tick failed", zap.Error(err))
			}
		}
	}
}

func (s *ScanLoop) scanToday(ctx context.Context) error {
	started := s.now()

	entries, err := s.logs.GetPendingForDate(ctx, started, s.limit)
	if err != nil {
		return fmt.Errorf("failed to fetch pending log entries: %w", err)
	}

	armed := 0
	for i := range entries {
		entry := entries[i]

		fireAt, err := entry.FireTimeOn(started)
		if err != nil {
			s.logger.Warn("skipping log entry with unparseable reminder time",
				zap.String("logId", entry.ID),
				zap.String("reminderTime", entry.ReminderTime),
			)
			continue
		}

		if s.fires.Arm(entry.ID, fireAt) {
			armed++
			if s.metrics != nil {
				s.metrics.IncFireArmed()
			}
		}
	}

	if armed > 0 {
		s.logger.Info("scan tick armed fires",
			zap.Int("armed", armed),
			zap.Int("pending", len(entries)),
		)
	}
	if s.metrics != nil {
		s.metrics.ObserveScanDuration(s.now().Sub(started))
	}

	return nil
}
