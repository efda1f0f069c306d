package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rizkyhp/medremind/internal/domain"
	"github.com/rizkyhp/medremind/internal/observability"
	"github.com/rizkyhp/medremind/internal/repository"
	"go.uber.org/zap"
)

const defaultSnoozeDelay = 15 * time.Minute

// FireScheduler is the scheduling surface the action handler needs: snooze
// re-arms a fire, terminal decisions release tracking.
type FireScheduler interface {
	Rearm(logID string, at time.Time)
	Forget(logID string)
}

// ActionService applies a user's response to a log entry. All mutation goes
// through the record store; the service itself holds no per-entry state, so
// concurrent responses are safe as long as the store's per-row updates are.
type ActionService struct {
	logs        repository.LogEntryRepository
	fires       FireScheduler
	logger      *zap.Logger
	metrics     *observability.Metrics
	snoozeDelay time.Duration
	now         func() time.Time
}

func NewActionService(
	logs repository.LogEntryRepository,
	fires FireScheduler,
	snoozeDelay time.Duration,
	logger *zap.Logger,
) (*ActionService, error) {
	if logs == nil {
		return nil, fmt.Errorf("log entry repository is required")
	}
	if fires == nil {
		return nil, fmt.Errorf("fire scheduler is required")
	}
	if snoozeDelay <= 0 {
		snoozeDelay = defaultSnoozeDelay
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &ActionService{
		logs:        logs,
		fires:       fires,
		logger:      logger,
		snoozeDelay: snoozeDelay,
		now:         time.Now,
	}, nil
}

func (s *ActionService) SetMetrics(metrics *observability.Metrics) {
	if s == nil {
		return
	}
	s.metrics = metrics
}

// Apply executes one action against one log entry. Store failures propagate
// to the caller; a silent failure here would leave the user's response
// un-persisted with no feedback.
func (s *ActionService) Apply(ctx context.Context, logID string, action domain.Action) error {
	if strings.TrimSpace(logID) == "" {
		return fmt.Errorf("%w: log entry id is required", domain.ErrValidation)
	}

	switch action {
	case domain.ActionTaken:
		return s.markTaken(ctx, logID)
	case domain.ActionNotTaken:
		return s.markNotTaken(ctx, logID)
	case domain.ActionRemind:
		return s.snooze(ctx, logID)
	default:
		return fmt.Errorf("%w: invalid action %q", domain.ErrValidation, action)
	}
}

func (s *ActionService) markTaken(ctx context.Context, logID string) error {
	stock, err := s.logs.MarkTaken(ctx, logID, s.now())
	if err != nil {
		return err
	}

	// Intentional: stock may go negative when the log references a
	// medication whose quantity was never topped up.
	if stock < 0 {
		s.logger.Warn("medication stock went negative",
			zap.String("logId", logID),
			zap.Int("stock", stock),
		)
	}

	s.fires.Forget(logID)
	if s.metrics != nil {
		s.metrics.IncAction(domain.ActionTaken.String())
	}
	s.logger.Info("log entry marked taken",
		zap.String("logId", logID),
		zap.Int("stockAfter", stock),
	)

	return nil
}

func (s *ActionService) markNotTaken(ctx context.Context, logID string) error {
	stock, err := s.logs.MarkNotTaken(ctx, logID)
	if err != nil {
		return err
	}

	if s.metrics != nil {
		s.metrics.IncAction(domain.ActionNotTaken.String())
	}
	s.logger.Info("log entry reverted to not taken",
		zap.String("logId", logID),
		zap.Int("stockAfter", stock),
	)

	return nil
}

func (s *ActionService) snooze(ctx context.Context, logID string) error {
	// Snooze leaves taken status untouched; it only re-arms the fire. The
	// pre-send recheck drops the fire if the entry was taken meanwhile.
	if _, err := s.logs.GetByID(ctx, logID); err != nil {
		return err
	}

	fireAt := s.now().Add(s.snoozeDelay)
	s.fires.Rearm(logID, fireAt)

	if s.metrics != nil {
		s.metrics.IncSnooze()
		s.metrics.IncAction(domain.ActionRemind.String())
	}
	s.logger.Info("reminder snoozed",
		zap.String("logId", logID),
		zap.Time("fireAt", fireAt),
	)

	return nil
}
