package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rizkyhp/medremind/internal/domain"
	"github.com/rizkyhp/medremind/internal/observability"
	"github.com/rizkyhp/medremind/internal/provider"
	"github.com/rizkyhp/medremind/internal/queue"
	"github.com/rizkyhp/medremind/internal/ratelimit"
	"github.com/rizkyhp/medremind/internal/repository"
	"go.uber.org/zap"
)

// Metric label values for the two delivery trigger paths.
const (
	sourceScan  = "scan"
	sourceEvent = "event"
)

// Push failure reasons.
const (
	reasonNoPushTarget   = "no_push_target"
	reasonTransientError = "transient_error"
	reasonPermanentError = "permanent_error"
)

const pushRateScope = "push"

// Forgetter drops fire tracking for a log entry.
type Forgetter interface {
	Forget(logID string)
}

// ReminderDispatcher executes one armed fire: re-verifies the log entry is
// still pending, resolves the user's delivery address, and sends exactly one
// push. Failures are terminal for this fire; the next scan cycle or snooze
// is the de facto retry.
type ReminderDispatcher struct {
	logs     repository.LogEntryRepository
	profiles repository.ProfileRepository
	provider provider.PushProvider
	limiter  ratelimit.RateLimiter
	fires    Forgetter
	logger   *zap.Logger
	metrics  *observability.Metrics
	now      func() time.Time
}

func NewReminderDispatcher(
	logs repository.LogEntryRepository,
	profiles repository.ProfileRepository,
	pushProvider provider.PushProvider,
	limiter ratelimit.RateLimiter,
	fires Forgetter,
	logger *zap.Logger,
) (*ReminderDispatcher, error) {
	if logs == nil {
		return nil, fmt.Errorf("log entry repository is required")
	}
	if profiles == nil {
		return nil, fmt.Errorf("profile repository is required")
	}
	if pushProvider == nil {
		return nil, fmt.Errorf("push provider is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &ReminderDispatcher{
		logs:     logs,
		profiles: profiles,
		provider: pushProvider,
		limiter:  limiter,
		fires:    fires,
		logger:   logger,
		now:      time.Now,
	}, nil
}

func (d *ReminderDispatcher) SetMetrics(metrics *observability.Metrics) {
	if d == nil {
		return
	}
	d.metrics = metrics
}

// Dispatch sends the reminder for one log entry. A log that was taken (or
// re-dated) since the fire was armed is dropped silently; the user already
// acted on it.
func (d *ReminderDispatcher) Dispatch(ctx context.Context, logID string) error {
	entry, err := d.logs.GetByID(ctx, logID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			d.logger.Warn("armed fire references a missing log entry, dropping",
				zap.String("logId", logID),
			)
			d.forget(logID)
			return nil
		}
		return fmt.Errorf("failed to load log entry for fire: %w", err)
	}

	if entry.TakenStatus != domain.StatusPending || !entry.ScheduledOn(d.now()) {
		if d.metrics != nil {
			d.metrics.IncStaleFireSkipped()
		}
		d.logger.Info("skipping stale fire",
			zap.String("logId", logID),
			zap.String("takenStatus", entry.TakenStatus.String()),
		)
		d.forget(logID)
		return nil
	}

	profile, err := d.profiles.GetByUserID(ctx, entry.UserID)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("failed to load user profile: %w", err)
	}

	target, ok := profile.PushTarget()
	if !ok {
		// Hard precondition, not a retryable error. The user has to
		// re-register their device outside this service.
		if d.metrics != nil {
			d.metrics.IncPushFailed(sourceScan, reasonNoPushTarget)
		}
		d.logger.Warn("no push target for user, reminder dropped",
			zap.String("logId", logID),
			zap.String("userId", entry.UserID),
		)
		return nil
	}

	if d.limiter != nil {
		if err := d.limiter.Wait(ctx, pushRateScope); err != nil {
			return fmt.Errorf("rate limiter wait failed: %w", err)
		}
	}

	receipt, err := d.provider.Send(ctx, provider.PushMessage{
		To:    target,
		Title: entry.NotificationTitle(),
		Body:  entry.NotificationBody(),
		Data: map[string]string{
			"logId":   entry.ID,
			"medName": entry.MedName,
		},
	})
	if err != nil {
		reason := reasonPermanentError
		if provider.IsTransient(err) {
			reason = reasonTransientError
		}
		if d.metrics != nil {
			d.metrics.IncPushFailed(sourceScan, reason)
		}
		return fmt.Errorf("failed to send reminder push: %w", err)
	}

	if d.metrics != nil {
		d.metrics.IncPushSent(sourceScan)
	}
	d.logger.Info("reminder push sent",
		zap.String("logId", entry.ID),
		zap.String("userId", entry.UserID),
		zap.String("ticketId", receipt.TicketID),
	)

	return nil
}

// HandleLogCreated is the event-driven delivery path: it reacts to a freshly
// inserted log entry without waiting for the scan loop. It neither sets nor
// checks taken status; it is a delivery trigger only.
func (d *ReminderDispatcher) HandleLogCreated(ctx context.Context, msg queue.LogCreatedMessage) error {
	profile, err := d.profiles.GetByUserID(ctx, msg.UserID)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("failed to load user profile: %w", err)
	}

	target, ok := profile.PushTarget()
	if !ok {
		if d.metrics != nil {
			d.metrics.IncPushFailed(sourceEvent, reasonNoPushTarget)
		}
		d.logger.Warn("no push target for user, event notification dropped",
			zap.String("logId", msg.LogID),
			zap.String("userId", msg.UserID),
		)
		return nil
	}

	if d.limiter != nil {
		if err := d.limiter.Wait(ctx, pushRateScope); err != nil {
			return fmt.Errorf("rate limiter wait failed: %w", err)
		}
	}

	receipt, err := d.provider.Send(ctx, provider.PushMessage{
		To:    target,
		Title: domain.NotificationTitle(msg.Dosage, msg.MedName),
		Body:  domain.NotificationBody(msg.Instructions),
		Data: map[string]string{
			"logId":   msg.LogID,
			"medName": msg.MedName,
		},
	})
	if err != nil {
		reason := reasonPermanentError
		if provider.IsTransient(err) {
			reason = reasonTransientError
		}
		if d.metrics != nil {
			d.metrics.IncPushFailed(sourceEvent, reason)
		}
		// One failed event push is not retried; the scan loop still covers
		// this entry at its reminder time.
		d.logger.Error("event notification send failed",
			zap.String("logId", msg.LogID),
			zap.String("reason", reason),
			zap.Error(err),
		)
		return nil
	}

	if d.metrics != nil {
		d.metrics.IncPushSent(sourceEvent)
	}
	d.logger.Info("event notification sent",
		zap.String("logId", msg.LogID),
		zap.String("ticketId", receipt.TicketID),
	)

	return nil
}

func (d *ReminderDispatcher) forget(logID string) {
	if d.fires != nil {
		d.fires.Forget(logID)
	}
}
