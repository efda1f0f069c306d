package queue

import (
	"fmt"
	"strings"
)

// LogCreatedMessage is the broker payload emitted when a log entry is
// created. It carries enough denormalized context to build the notification
// without a record-store lookup.
type LogCreatedMessage struct {
	LogID         string  `json:"logId"`
	UserID        string  `json:"userId"`
	MedicationID  string  `json:"medicationId"`
	MedName       string  `json:"medName"`
	Dosage        string  `json:"dosage"`
	Instructions  *string `json:"instructions,omitempty"`
	CorrelationID string  `json:"correlationId,omitempty"`
}

func (m LogCreatedMessage) Validate() error {
	if strings.TrimSpace(m.LogID) == "" {
		return fmt.Errorf("logId is required")
	}
	if strings.TrimSpace(m.UserID) == "" {
		return fmt.Errorf("userId is required")
	}
	if strings.TrimSpace(m.MedName) == "" {
		return fmt.Errorf("medName is required")
	}
	if strings.TrimSpace(m.Dosage) == "" {
		return fmt.Errorf("dosage is required")
	}
	return nil
}
