package domain

import (
	"fmt"
	"strings"
	"time"
)

// TakenStatus represents the intake decision state of a log entry.
type TakenStatus string

const (
	StatusPending  TakenStatus = "PENDING"
	StatusTaken    TakenStatus = "TAKEN"
	StatusNotTaken TakenStatus = "NOT_TAKEN"
)

func (s TakenStatus) String() string { return string(s) }

func (s TakenStatus) IsValid() bool {
	switch s {
	case StatusPending, StatusTaken, StatusNotTaken:
		return true
	}
	return false
}

func ParseTakenStatusFromString(s string) (TakenStatus, error) {
	st := TakenStatus(strings.ToUpper(strings.TrimSpace(s)))
	if !st.IsValid() {
		return "", fmt.Errorf("%w: invalid taken status %q", ErrValidation, s)
	}
	return st, nil
}

// Action is a user response to a fired reminder.
type Action string

const (
	ActionTaken    Action = "TAKEN"
	ActionRemind   Action = "REMIND"
	ActionNotTaken Action = "NOT_TAKEN"
)

func (a Action) String() string { return string(a) }

func (a Action) IsValid() bool {
	switch a {
	case ActionTaken, ActionRemind, ActionNotTaken:
		return true
	}
	return false
}

func ParseActionFromString(s string) (Action, error) {
	a := Action(strings.ToUpper(strings.TrimSpace(s)))
	if !a.IsValid() {
		return "", fmt.Errorf("%w: invalid action %q", ErrValidation, s)
	}
	return a, nil
}

// ReminderTimeLayout is the wall-clock format stored on log entries.
const ReminderTimeLayout = "15:04"

// DefaultReminderBody is used when a log entry carries no instructions.
const DefaultReminderBody = "Waktunya minum obatmu!"

// LogEntry is one schedulable medication-intake occurrence: one user, one
// medication, one calendar day, one reminder time.
type LogEntry struct {
	ID            string
	UserID        string
	MedicationID  string
	MedName       string
	Dosage        string
	ScheduledDate time.Time
	ReminderTime  string
	TakenStatus   TakenStatus
	TakenAt       *time.Time
	Instructions  *string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (e *LogEntry) Validate() error {
	if strings.TrimSpace(e.UserID) == "" {
		return fmt.Errorf("%w: user id is required", ErrValidation)
	}
	if strings.TrimSpace(e.MedicationID) == "" {
		return fmt.Errorf("%w: medication id is required", ErrValidation)
	}
	if strings.TrimSpace(e.MedName) == "" {
		return fmt.Errorf("%w: medication name is required", ErrValidation)
	}
	if strings.TrimSpace(e.Dosage) == "" {
		return fmt.Errorf("%w: dosage is required", ErrValidation)
	}
	if e.ScheduledDate.IsZero() {
		return fmt.Errorf("%w: scheduled date is required", ErrValidation)
	}
	if _, err := time.Parse(ReminderTimeLayout, e.ReminderTime); err != nil {
		return fmt.Errorf("%w: invalid reminder time %q, expected HH:MM", ErrValidation, e.ReminderTime)
	}
	if !e.TakenStatus.IsValid() {
		return fmt.Errorf("%w: invalid taken status %q", ErrValidation, e.TakenStatus)
	}
	return nil
}

// FireTimeOn combines the entry's reminder time-of-day with the given
// calendar day in that day's location.
func (e *LogEntry) FireTimeOn(day time.Time) (time.Time, error) {
	clock, err := time.Parse(ReminderTimeLayout, e.ReminderTime)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: invalid reminder time %q", ErrValidation, e.ReminderTime)
	}
	return time.Date(
		day.Year(), day.Month(), day.Day(),
		clock.Hour(), clock.Minute(), 0, 0,
		day.Location(),
	), nil
}

// ScheduledOn reports whether the entry is scheduled on the same calendar
// day as t.
func (e *LogEntry) ScheduledOn(t time.Time) bool {
	y1, m1, d1 := e.ScheduledDate.Date()
	y2, m2, d2 := t.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}

// NotificationTitle builds the push title for a reminder.
func NotificationTitle(dosage, medName string) string {
	return fmt.Sprintf("%s %s sekarang!", dosage, medName)
}

// NotificationBody returns the instructions text, or the default phrase when
// no instructions are set.
func NotificationBody(instructions *string) string {
	if instructions == nil {
		return DefaultReminderBody
	}
	body := strings.TrimSpace(*instructions)
	if body == "" {
		return DefaultReminderBody
	}
	return body
}

func (e *LogEntry) NotificationTitle() string { return NotificationTitle(e.Dosage, e.MedName) }

func (e *LogEntry) NotificationBody() string { return NotificationBody(e.Instructions) }
