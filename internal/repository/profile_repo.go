package repository

import (
	"context"
	"errors"

	"github.com/rizkyhp/medremind/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProfileRepository interface {
	Upsert(ctx context.Context, p *domain.UserProfile) error
	GetByUserID(ctx context.Context, userID string) (*domain.UserProfile, error)
}

type GormProfileRepo struct {
	db *gorm.DB
}

func NewGormProfileRepo(db *gorm.DB) *GormProfileRepo {
	return &GormProfileRepo{db: db}
}

// Upsert registers or refreshes a user's push delivery state.
func (r *GormProfileRepo) Upsert(ctx context.Context, p *domain.UserProfile) error {
	model := userProfileModelFromDomain(p)
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"push_token", "notifications_enabled", "updated_at",
			}),
		}).
		Create(model).Error
	if err != nil {
		return err
	}
	if p != nil {
		*p = *userProfileModelToDomain(model)
	}
	return nil
}

func (r *GormProfileRepo) GetByUserID(ctx context.Context, userID string) (*domain.UserProfile, error) {
	var model UserProfileModel
	err := r.db.WithContext(ctx).First(&model, "user_id = ?", userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return userProfileModelToDomain(&model), nil
}
