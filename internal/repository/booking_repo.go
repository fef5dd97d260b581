package repository

import (
	"context"
	"time"

	"github.com/careconnect/caregiver-booking/internal/models"
	"gorm.io/gorm"
)

type BookingRepository interface {
	Create(ctx context.Context, tx *gorm.DB, booking *models.Booking) error
	FindByID(ctx context.Context, id string) (*models.Booking, error)
	FindDuplicate(ctx context.Context, tx *gorm.DB, parentID, caregiverID string, start, end time.Time) (*models.Booking, error)
	FindByParentID(ctx context.Context, parentID string, status *models.BookingStatus) ([]models.Booking, error)
	FindByCaregiverID(ctx context.Context, caregiverID string, status *models.BookingStatus) ([]models.Booking, error)
	UpdateStatus(ctx context.Context, tx *gorm.DB, bookingID string, status models.BookingStatus) error
	CreateSlotBooking(ctx context.Context, tx *gorm.DB, slotBooking *models.SlotBooking) error
	CountSlotBookingsBySlot(ctx context.Context, slotID string) (int64, error)
	GetDB() *gorm.DB
}

type bookingRepository struct {
	db *gorm.DB
}

func NewBookingRepository(db *gorm.DB) BookingRepository {
	return &bookingRepository{db: db}
}

func (r *bookingRepository) GetDB() *gorm.DB {
	return r.db
}

func (r *bookingRepository) Create(ctx context.Context, tx *gorm.DB, booking *models.Booking) error {
	return tx.WithContext(ctx).Create(booking).Error
}

func (r *bookingRepository) FindByID(ctx context.Context, id string) (*models.Booking, error) {
	var booking models.Booking
	if err := r.db.WithContext(ctx).Preload("SlotBookings").First(&booking, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &booking, nil
}

// FindDuplicate matches retried submissions: same parties, same window, not
// cancelled. Runs inside the caller's transaction so the check and the insert
// see the same state.
func (r *bookingRepository) FindDuplicate(ctx context.Context, tx *gorm.DB, parentID, caregiverID string, start, end time.Time) (*models.Booking, error) {
	var booking models.Booking
	err := tx.WithContext(ctx).
		Where("parent_id = ? AND caregiver_id = ? AND start_time = ? AND end_time = ? AND status <> ?",
			parentID, caregiverID, start, end, models.BookingCancelled).
		First(&booking).Error
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

func (r *bookingRepository) FindByParentID(ctx context.Context, parentID string, status *models.BookingStatus) ([]models.Booking, error) {
	return r.findByParty(ctx, "parent_id", parentID, status)
}

func (r *bookingRepository) FindByCaregiverID(ctx context.Context, caregiverID string, status *models.BookingStatus) ([]models.Booking, error) {
	return r.findByParty(ctx, "caregiver_id", caregiverID, status)
}

func (r *bookingRepository) findByParty(ctx context.Context, column, id string, status *models.BookingStatus) ([]models.Booking, error) {
	var bookings []models.Booking
	q := r.db.WithContext(ctx).Where(column+" = ?", id)
	if status != nil {
		q = q.Where("status = ?", *status)
	}
	if err := q.Order("start_time ASC").Find(&bookings).Error; err != nil {
		return nil, err
	}
	return bookings, nil
}

func (r *bookingRepository) UpdateStatus(ctx context.Context, tx *gorm.DB, bookingID string, status models.BookingStatus) error {
	return tx.WithContext(ctx).
		Model(&models.Booking{}).
		Where("id = ?", bookingID).
		Update("status", status).Error
}

func (r *bookingRepository) CreateSlotBooking(ctx context.Context, tx *gorm.DB, slotBooking *models.SlotBooking) error {
	return tx.WithContext(ctx).Create(slotBooking).Error
}

func (r *bookingRepository) CountSlotBookingsBySlot(ctx context.Context, slotID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.SlotBooking{}).
		Where("slot_id = ?", slotID).
		Count(&count).Error
	return count, err
}
