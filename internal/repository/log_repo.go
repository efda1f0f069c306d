package repository

import (
	"context"
	"errors"
	"time"

	"github.com/rizkyhp/medremind/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ListParams filters log entry listings.
type ListParams struct {
	UserID string
	Date   *time.Time
}

type LogEntryRepository interface {
	Upsert(ctx context.Context, e *domain.LogEntry) error
	GetByID(ctx context.Context, id string) (*domain.LogEntry, error)
	GetPendingForDate(ctx context.Context, day time.Time, limit int) ([]domain.LogEntry, error)
	List(ctx context.Context, params ListParams) ([]domain.LogEntry, error)
	MarkTaken(ctx context.Context, id string, takenAt time.Time) (int, error)
	MarkNotTaken(ctx context.Context, id string) (int, error)
}

type GormLogEntryRepo struct {
	db *gorm.DB
}

func NewGormLogEntryRepo(db *gorm.DB) *GormLogEntryRepo {
	return &GormLogEntryRepo{db: db}
}

// Upsert inserts or updates a log entry keyed by the schedule uniqueness
// constraint (user, medication, date, reminder time). On conflict the stored
// row is refreshed with the latest values.
func (r *GormLogEntryRepo) Upsert(ctx context.Context, e *domain.LogEntry) error {
	model := logEntryModelFromDomain(e)
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{
				{Name: "user_id"},
				{Name: "medication_id"},
				{Name: "scheduled_date"},
				{Name: "reminder_time"},
			},
			DoUpdates: clause.AssignmentColumns([]string{
				"med_name", "dosage", "taken_status", "instructions", "updated_at",
			}),
		}).
		Create(model).Error
	if err != nil {
		return err
	}

	// A conflicting insert keeps the existing row id; reload so the caller
	// always sees the stored row.
	var stored LogEntryModel
	err = r.db.WithContext(ctx).
		Where(
			"user_id = ? AND medication_id = ? AND scheduled_date = ? AND reminder_time = ?",
			model.UserID, model.MedicationID, model.ScheduledDate, model.ReminderTime,
		).
		First(&stored).Error
	if err != nil {
		return err
	}

	if e != nil {
		*e = *logEntryModelToDomain(&stored)
	}
	return nil
}

func (r *GormLogEntryRepo) GetByID(ctx context.Context, id string) (*domain.LogEntry, error) {
	var model LogEntryModel
	err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return logEntryModelToDomain(&model), nil
}

// GetPendingForDate returns log entries still awaiting a decision on the
// given calendar day, ordered by reminder time.
func (r *GormLogEntryRepo) GetPendingForDate(ctx context.Context, day time.Time, limit int) ([]domain.LogEntry, error) {
	var models []LogEntryModel
	err := r.db.WithContext(ctx).
		Where("taken_status = ? AND scheduled_date = ?", domain.StatusPending, dateOnly(day)).
		Order("reminder_time ASC").
		Limit(limit).
		Find(&models).Error
	if err != nil {
		return nil, err
	}

	entries := make([]domain.LogEntry, 0, len(models))
	for i := range models {
		entries = append(entries, *logEntryModelToDomain(&models[i]))
	}

	return entries, nil
}

func (r *GormLogEntryRepo) List(ctx context.Context, params ListParams) ([]domain.LogEntry, error) {
	query := r.db.WithContext(ctx).Model(&LogEntryModel{})

	if params.UserID != "" {
		query = query.Where("user_id = ?", params.UserID)
	}
	if params.Date != nil {
		query = query.Where("scheduled_date = ?", dateOnly(*params.Date))
	}

	var models []LogEntryModel
	err := query.
		Order("scheduled_date DESC, reminder_time ASC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}

	entries := make([]domain.LogEntry, 0, len(models))
	for i := range models {
		entries = append(entries, *logEntryModelToDomain(&models[i]))
	}

	return entries, nil
}

// MarkTaken flips a pending or reverted entry to TAKEN and decrements the
// referenced medication's stock by its dose quantity, both inside one
// transaction. The status flip is a conditional single-statement update, so
// two concurrent callers cannot double-decrement stock. Returns the stock
// after the decrement; stock is allowed to go negative.
func (r *GormLogEntryRepo) MarkTaken(ctx context.Context, id string, takenAt time.Time) (int, error) {
	var stockAfter int
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&LogEntryModel{}).
			Where("id = ? AND taken_status IN ?", id, []domain.TakenStatus{domain.StatusPending, domain.StatusNotTaken}).
			Updates(map[string]any{
				"taken_status": domain.StatusTaken,
				"taken_at":     takenAt,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return transitionError(tx, id)
		}

		return tx.Raw(
			`UPDATE medications
			 SET stock = stock - dose_quantity, updated_at = NOW()
			 WHERE id = (SELECT medication_id FROM medication_logs WHERE id = ?)
			 RETURNING stock`,
			id,
		).Scan(&stockAfter).Error
	})
	if err != nil {
		return 0, err
	}
	return stockAfter, nil
}

// MarkNotTaken reverts a TAKEN entry and restores the medication's stock by
// the same dose quantity, compensating the earlier decrement exactly.
func (r *GormLogEntryRepo) MarkNotTaken(ctx context.Context, id string) (int, error) {
	var stockAfter int
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&LogEntryModel{}).
			Where("id = ? AND taken_status = ?", id, domain.StatusTaken).
			Updates(map[string]any{
				"taken_status": domain.StatusNotTaken,
				"taken_at":     nil,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return transitionError(tx, id)
		}

		return tx.Raw(
			`UPDATE medications
			 SET stock = stock + dose_quantity, updated_at = NOW()
			 WHERE id = (SELECT medication_id FROM medication_logs WHERE id = ?)
			 RETURNING stock`,
			id,
		).Scan(&stockAfter).Error
	})
	if err != nil {
		return 0, err
	}
	return stockAfter, nil
}

// transitionError distinguishes a missing row from an invalid state
// transition after a conditional update matched nothing.
func transitionError(tx *gorm.DB, id string) error {
	var count int64
	if err := tx.Model(&LogEntryModel{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return domain.ErrNotFound
	}
	return domain.ErrConflict
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
