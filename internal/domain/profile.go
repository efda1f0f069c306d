package domain

import (
	"fmt"
	"strings"
	"time"
)

// UserProfile holds a user's push-delivery state. PushToken is nil until the
// device registers one; reminders must never be attempted without it.
type UserProfile struct {
	UserID               string
	PushToken            *string
	NotificationsEnabled bool
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

func (p *UserProfile) Validate() error {
	if strings.TrimSpace(p.UserID) == "" {
		return fmt.Errorf("%w: user id is required", ErrValidation)
	}
	return nil
}

// PushTarget returns the delivery address and whether a push may be sent to
// this profile at all. A missing token or disabled notifications is a hard
// precondition failure, not a retryable error.
func (p *UserProfile) PushTarget() (string, bool) {
	if p == nil || !p.NotificationsEnabled || p.PushToken == nil {
		return "", false
	}
	token := strings.TrimSpace(*p.PushToken)
	if token == "" {
		return "", false
	}
	return token, true
}
