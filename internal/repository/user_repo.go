package repository

import (
	"context"

	"github.com/careconnect/caregiver-booking/internal/models"
	"gorm.io/gorm"
)

type UserRepository interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
	FindCaregiverProfile(ctx context.Context, userID string) (*models.CaregiverProfile, error)
}

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Preload("CaregiverProfile").First(&user, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FindCaregiverProfile(ctx context.Context, userID string) (*models.CaregiverProfile, error) {
	var profile models.CaregiverProfile
	if err := r.db.WithContext(ctx).First(&profile, "user_id = ?", userID).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}
