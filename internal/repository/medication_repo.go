package repository

import (
	"context"
	"errors"

	"github.com/rizkyhp/medremind/internal/domain"
	"gorm.io/gorm"
)

type MedicationRepository interface {
	Create(ctx context.Context, m *domain.Medication) error
	GetByID(ctx context.Context, id string) (*domain.Medication, error)
}

type GormMedicationRepo struct {
	db *gorm.DB
}

func NewGormMedicationRepo(db *gorm.DB) *GormMedicationRepo {
	return &GormMedicationRepo{db: db}
}

func (r *GormMedicationRepo) Create(ctx context.Context, m *domain.Medication) error {
	model := medicationModelFromDomain(m)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return err
	}
	if m != nil {
		*m = *medicationModelToDomain(model)
	}
	return nil
}

func (r *GormMedicationRepo) GetByID(ctx context.Context, id string) (*domain.Medication, error) {
	var model MedicationModel
	err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return medicationModelToDomain(&model), nil
}
