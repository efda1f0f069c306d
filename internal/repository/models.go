package repository

import (
	"time"

	"github.com/rizkyhp/medremind/internal/domain"
)

// LogEntryModel is the persistence model for the medication_logs table.
type LogEntryModel struct {
	ID            string             `gorm:"type:uuid;primaryKey"`
	UserID        string             `gorm:"type:uuid;not null"`
	MedicationID  string             `gorm:"type:uuid;not null"`
	MedName       string             `gorm:"type:varchar(255);not null"`
	Dosage        string             `gorm:"type:varchar(64);not null"`
	ScheduledDate time.Time          `gorm:"type:date;not null"`
	ReminderTime  string             `gorm:"type:varchar(5);not null"`
	TakenStatus   domain.TakenStatus `gorm:"type:varchar(20);not null"`
	TakenAt       *time.Time
	Instructions  *string `gorm:"type:text"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (LogEntryModel) TableName() string {
	return "medication_logs"
}

// MedicationModel is the persistence model for the medications table.
type MedicationModel struct {
	ID           string `gorm:"type:uuid;primaryKey"`
	UserID       string `gorm:"type:uuid;not null"`
	Name         string `gorm:"type:varchar(255);not null"`
	Dosage       string `gorm:"type:varchar(64);not null"`
	DoseQuantity int    `gorm:"not null;default:1"`
	Stock        int    `gorm:"not null;default:0"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (MedicationModel) TableName() string {
	return "medications"
}

// UserProfileModel is the persistence model for the user_profiles table.
type UserProfileModel struct {
	UserID               string  `gorm:"type:uuid;primaryKey"`
	PushToken            *string `gorm:"type:varchar(255)"`
	NotificationsEnabled bool    `gorm:"not null;default:false"`
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

func (UserProfileModel) TableName() string {
	return "user_profiles"
}

func logEntryModelFromDomain(e *domain.LogEntry) *LogEntryModel {
	if e == nil {
		return nil
	}

	return &LogEntryModel{
		ID:            e.ID,
		UserID:        e.UserID,
		MedicationID:  e.MedicationID,
		MedName:       e.MedName,
		Dosage:        e.Dosage,
		ScheduledDate: e.ScheduledDate,
		ReminderTime:  e.ReminderTime,
		TakenStatus:   e.TakenStatus,
		TakenAt:       e.TakenAt,
		Instructions:  e.Instructions,
		CreatedAt:     e.CreatedAt,
		UpdatedAt:     e.UpdatedAt,
	}
}

func logEntryModelToDomain(m *LogEntryModel) *domain.LogEntry {
	if m == nil {
		return nil
	}

	return &domain.LogEntry{
		ID:            m.ID,
		UserID:        m.UserID,
		MedicationID:  m.MedicationID,
		MedName:       m.MedName,
		Dosage:        m.Dosage,
		ScheduledDate: m.ScheduledDate,
		ReminderTime:  m.ReminderTime,
		TakenStatus:   m.TakenStatus,
		TakenAt:       m.TakenAt,
		Instructions:  m.Instructions,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
}

func medicationModelFromDomain(med *domain.Medication) *MedicationModel {
	if med == nil {
		return nil
	}

	return &MedicationModel{
		ID:           med.ID,
		UserID:       med.UserID,
		Name:         med.Name,
		Dosage:       med.Dosage,
		DoseQuantity: med.DoseQuantity,
		Stock:        med.Stock,
		CreatedAt:    med.CreatedAt,
		UpdatedAt:    med.UpdatedAt,
	}
}

func medicationModelToDomain(m *MedicationModel) *domain.Medication {
	if m == nil {
		return nil
	}

	return &domain.Medication{
		ID:           m.ID,
		UserID:       m.UserID,
		Name:         m.Name,
		Dosage:       m.Dosage,
		DoseQuantity: m.DoseQuantity,
		Stock:        m.Stock,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

func userProfileModelFromDomain(p *domain.UserProfile) *UserProfileModel {
	if p == nil {
		return nil
	}

	return &UserProfileModel{
		UserID:               p.UserID,
		PushToken:            p.PushToken,
		NotificationsEnabled: p.NotificationsEnabled,
		CreatedAt:            p.CreatedAt,
		UpdatedAt:            p.UpdatedAt,
	}
}

func userProfileModelToDomain(m *UserProfileModel) *domain.UserProfile {
	if m == nil {
		return nil
	}

	return &domain.UserProfile{
		UserID:               m.UserID,
		PushToken:            m.PushToken,
		NotificationsEnabled: m.NotificationsEnabled,
		CreatedAt:            m.CreatedAt,
		UpdatedAt:            m.UpdatedAt,
	}
}
