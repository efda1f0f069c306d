package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rizkyhp/medremind/internal/domain"
	"github.com/rizkyhp/medremind/internal/observability"
	"github.com/rizkyhp/medremind/internal/queue"
	"github.com/rizkyhp/medremind/internal/repository"
	"go.uber.org/zap"
)

// LogService upserts log entries and emits change-capture events for the
// event-driven notifier.
type LogService struct {
	logs      repository.LogEntryRepository
	publisher queue.Publisher
	logger    *zap.Logger
}

func NewLogService(
	logs repository.LogEntryRepository,
	publisher queue.Publisher,
	logger *zap.Logger,
) (*LogService, error) {
	if logs == nil {
		return nil, fmt.Errorf("log entry repository is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &LogService{
		logs:      logs,
		publisher: publisher,
		logger:    logger,
	}, nil
}

// CreateOrUpdate upserts a log entry keyed by its schedule and publishes a
// log-created event. A publish failure is logged but does not fail the
// upsert: the scan loop still covers delivery at the reminder time.
func (s *LogService) CreateOrUpdate(ctx context.Context, entry *domain.LogEntry) (*domain.LogEntry, error) {
	if err := prepareLogEntryForUpsert(entry); err != nil {
		return nil, err
	}

	if err := s.logs.Upsert(ctx, entry); err != nil {
		return nil, err
	}

	if s.publisher != nil {
		correlationID, _ := observability.CorrelationIDFromContext(ctx)
		msg := queue.LogCreatedMessage{
			LogID:         entry.ID,
			UserID:        entry.UserID,
			MedicationID:  entry.MedicationID,
			MedName:       entry.MedName,
			Dosage:        entry.Dosage,
			Instructions:  entry.Instructions,
			CorrelationID: correlationID,
		}
		if err := s.publisher.Publish(ctx, queue.LogCreatedQueue, msg); err != nil {
			s.logger.Warn("failed to publish log-created event",
				zap.String("logId", entry.ID),
				zap.Error(err),
			)
		}
	}

	return entry, nil
}

func (s *LogService) GetByID(ctx context.Context, id string) (*domain.LogEntry, error) {
	if strings.TrimSpace(id) == "" {
		return nil, fmt.Errorf("%w: log entry id is required", domain.ErrValidation)
	}
	return s.logs.GetByID(ctx, strings.TrimSpace(id))
}

func (s *LogService) List(ctx context.Context, params repository.ListParams) ([]domain.LogEntry, error) {
	return s.logs.List(ctx, params)
}

func prepareLogEntryForUpsert(entry *domain.LogEntry) error {
	if entry == nil {
		return fmt.Errorf("%w: log entry is required", domain.ErrValidation)
	}

	entry.UserID = strings.TrimSpace(entry.UserID)
	entry.MedicationID = strings.TrimSpace(entry.MedicationID)
	entry.MedName = strings.TrimSpace(entry.MedName)
	entry.Dosage = strings.TrimSpace(entry.Dosage)
	entry.ReminderTime = strings.TrimSpace(entry.ReminderTime)

	entry.ID = strings.TrimSpace(entry.ID)
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.TakenStatus == "" {
		entry.TakenStatus = domain.StatusPending
	}
	entry.TakenAt = nil

	return entry.Validate()
}
