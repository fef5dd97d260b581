package repository

import (
	"context"
	"time"

	"github.com/careconnect/caregiver-booking/internal/models"
	"gorm.io/gorm"
)

type ReservationRepository interface {
	Create(ctx context.Context, tx *gorm.DB, reservation *models.BookingReservation) error
	FindByID(ctx context.Context, id string) (*models.BookingReservation, error)
	FindByIDForUpdate(ctx context.Context, tx *gorm.DB, id string) (*models.BookingReservation, error)
	FindActiveBySlotIDs(ctx context.Context, slotIDs []string) ([]models.BookingReservation, error)
	FindExpired(ctx context.Context, now time.Time) ([]models.BookingReservation, error)
	UpdateStatus(ctx context.Context, tx *gorm.DB, id string, status models.ReservationStatus) error
	MarkConverted(ctx context.Context, tx *gorm.DB, id, bookingID string) error
}

type reservationRepository struct {
	db *gorm.DB
}

func NewReservationRepository(db *gorm.DB) ReservationRepository {
	return &reservationRepository{db: db}
}

func (r *reservationRepository) Create(ctx context.Context, tx *gorm.DB, reservation *models.BookingReservation) error {
	return tx.WithContext(ctx).Create(reservation).Error
}

func (r *reservationRepository) FindByID(ctx context.Context, id string) (*models.BookingReservation, error) {
	var reservation models.BookingReservation
	if err := r.db.WithContext(ctx).First(&reservation, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &reservation, nil
}

// FindByIDForUpdate locks the reservation row so release and conversion
// cannot race each other into a double credit.
func (r *reservationRepository) FindByIDForUpdate(ctx context.Context, tx *gorm.DB, id string) (*models.BookingReservation, error) {
	var reservation models.BookingReservation
	if err := tx.WithContext(ctx).
		Set("gorm:query_option", "FOR UPDATE").
		First(&reservation, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &reservation, nil
}

func (r *reservationRepository) FindActiveBySlotIDs(ctx context.Context, slotIDs []string) ([]models.BookingReservation, error) {
	if len(slotIDs) == 0 {
		return nil, nil
	}
	var reservations []models.BookingReservation
	err := r.db.WithContext(ctx).
		Where("slot_id IN ? AND status = ?", slotIDs, models.ReservationActive).
		Find(&reservations).Error
	if err != nil {
		return nil, err
	}
	return reservations, nil
}

func (r *reservationRepository) FindExpired(ctx context.Context, now time.Time) ([]models.BookingReservation, error) {
	var reservations []models.BookingReservation
	err := r.db.WithContext(ctx).
		Where("status = ? AND expires_at < ?", models.ReservationActive, now).
		Order("expires_at ASC").
		Find(&reservations).Error
	if err != nil {
		return nil, err
	}
	return reservations, nil
}

func (r *reservationRepository) UpdateStatus(ctx context.Context, tx *gorm.DB, id string, status models.ReservationStatus) error {
	return tx.WithContext(ctx).
		Model(&models.BookingReservation{}).
		Where("id = ?", id).
		Update("status", status).Error
}

func (r *reservationRepository) MarkConverted(ctx context.Context, tx *gorm.DB, id, bookingID string) error {
	return tx.WithContext(ctx).
		Model(&models.BookingReservation{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":     models.ReservationConverted,
			"booking_id": bookingID,
		}).Error
}
