package domain

import (
	"fmt"
	"strings"
	"time"
)

// Medication is a medication definition with its remaining stock. Stock is
// adjusted by the configured dose quantity each time an intake is confirmed
// or reverted; it is allowed to go negative.
type Medication struct {
	ID           string
	UserID       string
	Name         string
	Dosage       string
	DoseQuantity int
	Stock        int
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (m *Medication) Validate() error {
	if strings.TrimSpace(m.UserID) == "" {
		return fmt.Errorf("%w: user id is required", ErrValidation)
	}
	if strings.TrimSpace(m.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrValidation)
	}
	if strings.TrimSpace(m.Dosage) == "" {
		return fmt.Errorf("%w: dosage is required", ErrValidation)
	}
	if m.DoseQuantity < 1 {
		return fmt.Errorf("%w: dose quantity must be at least 1", ErrValidation)
	}
	return nil
}
