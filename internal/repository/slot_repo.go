package repository

import (
	"context"
	"time"

	"github.com/careconnect/caregiver-booking/internal/models"
	"gorm.io/gorm"
)

// SlotFilter narrows GetAvailableSlots. Zero values mean "no constraint".
// DateFrom/DateTo are inclusive calendar days (UTC-midnight normalized).
type SlotFilter struct {
	CaregiverID  string
	DateFrom     time.Time
	DateTo       time.Time
	Status       models.SlotStatus
	MinAvailable int
}

type SlotRepository interface {
	Create(ctx context.Context, slot *models.AvailabilitySlot) error
	FindByID(ctx context.Context, id string) (*models.AvailabilitySlot, error)
	FindByIDForUpdate(ctx context.Context, tx *gorm.DB, id string) (*models.AvailabilitySlot, error)
	FindByCaregiverDateStart(ctx context.Context, caregiverID string, date, start time.Time) (*models.AvailabilitySlot, error)
	FindByCaregiverAndDate(ctx context.Context, caregiverID string, date time.Time) ([]models.AvailabilitySlot, error)
	FindAvailable(ctx context.Context, filter SlotFilter) ([]models.AvailabilitySlot, error)
	Save(ctx context.Context, tx *gorm.DB, slot *models.AvailabilitySlot) error
	UpdateStatus(ctx context.Context, tx *gorm.DB, slotID string, status models.SlotStatus) error
	Delete(ctx context.Context, id string) error
	GetDB() *gorm.DB
}

type slotRepository struct {
	db *gorm.DB
}

func NewSlotRepository(db *gorm.DB) SlotRepository {
	return &slotRepository{db: db}
}

func (r *slotRepository) GetDB() *gorm.DB {
	return r.db
}

func (r *slotRepository) Create(ctx context.Context, slot *models.AvailabilitySlot) error {
	return r.db.WithContext(ctx).Create(slot).Error
}

func (r *slotRepository) FindByID(ctx context.Context, id string) (*models.AvailabilitySlot, error) {
	var slot models.AvailabilitySlot
	if err := r.db.WithContext(ctx).First(&slot, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &slot, nil
}

// FindByIDForUpdate acquires a row-level lock on the slot within the given
// transaction. Every capacity mutation goes through this.
func (r *slotRepository) FindByIDForUpdate(ctx context.Context, tx *gorm.DB, id string) (*models.AvailabilitySlot, error) {
	var slot models.AvailabilitySlot
	if err := tx.WithContext(ctx).
		Set("gorm:query_option", "FOR UPDATE").
		First(&slot, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &slot, nil
}

func (r *slotRepository) FindByCaregiverDateStart(ctx context.Context, caregiverID string, date, start time.Time) (*models.AvailabilitySlot, error) {
	var slot models.AvailabilitySlot
	err := r.db.WithContext(ctx).
		Where("caregiver_id = ? AND date = ? AND start_time = ?", caregiverID, date, start).
		First(&slot).Error
	if err != nil {
		return nil, err
	}
	return &slot, nil
}

func (r *slotRepository) FindByCaregiverAndDate(ctx context.Context, caregiverID string, date time.Time) ([]models.AvailabilitySlot, error) {
	var slots []models.AvailabilitySlot
	err := r.db.WithContext(ctx).
		Where("caregiver_id = ? AND date = ?", caregiverID, date).
		Order("start_time ASC").
		Find(&slots).Error
	if err != nil {
		return nil, err
	}
	return slots, nil
}

func (r *slotRepository) FindAvailable(ctx context.Context, filter SlotFilter) ([]models.AvailabilitySlot, error) {
	q := r.db.WithContext(ctx).Preload("Caregiver")

	if filter.CaregiverID != "" {
		q = q.Where("caregiver_id = ?", filter.CaregiverID)
	}
	if !filter.DateFrom.IsZero() {
		q = q.Where("date >= ?", filter.DateFrom)
	}
	if !filter.DateTo.IsZero() {
		q = q.Where("date <= ?", filter.DateTo)
	}
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.MinAvailable > 0 {
		q = q.Where("available_spots >= ?", filter.MinAvailable)
	}

	var slots []models.AvailabilitySlot
	if err := q.Order("date ASC, start_time ASC").Find(&slots).Error; err != nil {
		return nil, err
	}
	return slots, nil
}

func (r *slotRepository) Save(ctx context.Context, tx *gorm.DB, slot *models.AvailabilitySlot) error {
	return tx.WithContext(ctx).Save(slot).Error
}

func (r *slotRepository) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Delete(&models.AvailabilitySlot{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *slotRepository) UpdateStatus(ctx context.Context, tx *gorm.DB, slotID string, status models.SlotStatus) error {
	return tx.WithContext(ctx).
		Model(&models.AvailabilitySlot{}).
		Where("id = ?", slotID).
		Update("status", status).Error
}
