package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rizkyhp/medremind/internal/domain"
)

func actionFixture(t *testing.T, repo *fakeLogRepo) (*ActionService, *fakeScheduler) {
	t.Helper()

	fires := newFakeScheduler()
	svc, err := NewActionService(repo, fires, 15*time.Minute, nil)
	if err != nil {
		t.Fatalf("NewActionService() error = %v", err)
	}
	return svc, fires
}

func TestApplyTakenDecrementsStockAndReleasesFire(t *testing.T) {
	t.Parallel()

	repo := newFakeLogRepo()
	repo.put(pendingEntry("log-1", "08:00", time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)))
	repo.markTakenStock = 29

	svc, fires := actionFixture(t, repo)

	if err := svc.Apply(context.Background(), "log-1", domain.ActionTaken); err != nil {
		t.Fatalf("Apply(TAKEN) error = %v", err)
	}

	if len(repo.markTakenCalls) != 1 || repo.markTakenCalls[0] != "log-1" {
		t.Fatalf("MarkTaken calls = %v, want [log-1]", repo.markTakenCalls)
	}
	if len(fires.forgot) != 1 || fires.forgot[0] != "log-1" {
		t.Fatalf("forgot = %v, want [log-1]", fires.forgot)
	}
}

func TestApplyTakenAllowsNegativeStock(t *testing.T) {
	t.Parallel()

	repo := newFakeLogRepo()
	repo.put(pendingEntry("log-1", "08:00", time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)))
	repo.markTakenStock = -1

	svc, _ := actionFixture(t, repo)

	// Negative stock is recorded, not rejected.
	if err := svc.Apply(context.Background(), "log-1", domain.ActionTaken); err != nil {
		t.Fatalf("Apply(TAKEN) with negative stock error = %v", err)
	}
}

func TestApplyTakenPropagatesStoreErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		err     error
		wantErr error
	}{
		{name: "missing entry", err: domain.ErrNotFound, wantErr: domain.ErrNotFound},
		{name: "already taken", err: domain.ErrConflict, wantErr: domain.ErrConflict},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			repo := newFakeLogRepo()
			repo.markTakenErr = tt.err
			svc, fires := actionFixture(t, repo)

			err := svc.Apply(context.Background(), "log-1", domain.ActionTaken)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Apply(TAKEN) error = %v, want %v", err, tt.wantErr)
			}
			if len(fires.forgot) != 0 {
				t.Fatal("fire released despite store failure")
			}
		})
	}
}

func TestApplyNotTakenRestoresStock(t *testing.T) {
	t.Parallel()

	repo := newFakeLogRepo()
	entry := pendingEntry("log-1", "08:00", time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC))
	entry.TakenStatus = domain.StatusTaken
	repo.put(entry)
	repo.markNotTakenStock = 30

	svc, _ := actionFixture(t, repo)

	if err := svc.Apply(context.Background(), "log-1", domain.ActionNotTaken); err != nil {
		t.Fatalf("Apply(NOT_TAKEN) error = %v", err)
	}
	if len(repo.markNotTakenCalls) != 1 {
		t.Fatalf("MarkNotTaken calls = %v, want one", repo.markNotTakenCalls)
	}
}

func TestApplyRemindRearmsFifteenMinutesLater(t *testing.T) {
	t.Parallel()

	repo := newFakeLogRepo()
	repo.put(pendingEntry("log-1", "08:00", time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)))

	svc, fires := actionFixture(t, repo)

	now := time.Date(2026, 3, 10, 8, 5, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	if err := svc.Apply(context.Background(), "log-1", domain.ActionRemind); err != nil {
		t.Fatalf("Apply(REMIND) error = %v", err)
	}

	want := now.Add(15 * time.Minute)
	if got := fires.rearmed["log-1"]; !got.Equal(want) {
		t.Fatalf("rearmed at = %v, want %v", got, want)
	}

	// Snooze never touches taken status.
	stored, err := repo.GetByID(context.Background(), "log-1")
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if stored.TakenStatus != domain.StatusPending {
		t.Fatalf("TakenStatus after snooze = %s, want PENDING", stored.TakenStatus)
	}
}

func TestApplyRemindFailsForMissingEntry(t *testing.T) {
	t.Parallel()

	repo := newFakeLogRepo()
	svc, fires := actionFixture(t, repo)

	err := svc.Apply(context.Background(), "log-gone", domain.ActionRemind)
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("Apply(REMIND) error = %v, want ErrNotFound", err)
	}
	if len(fires.rearmed) != 0 {
		t.Fatal("fire rearmed for a missing entry")
	}
}

func TestApplyRejectsInvalidInput(t *testing.T) {
	t.Parallel()

	repo := newFakeLogRepo()
	svc, _ := actionFixture(t, repo)

	tests := []struct {
		name   string
		logID  string
		action domain.Action
	}{
		{name: "empty log id", logID: " ", action: domain.ActionTaken},
		{name: "unknown action", logID: "log-1", action: domain.Action("SKIP")},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := svc.Apply(context.Background(), tt.logID, tt.action)
			if !errors.Is(err, domain.ErrValidation) {
				t.Fatalf("Apply() error = %v, want ErrValidation", err)
			}
		})
	}
}
