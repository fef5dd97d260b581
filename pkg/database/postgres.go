package database

import (
	"github.com/careconnect/caregiver-booking/internal/models"
	applog "github.com/careconnect/caregiver-booking/pkg/logger"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func NewPostgresDB(dsn string) *gorm.DB {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		applog.Get().Fatal("failed to connect to database", zap.Error(err))
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.CaregiverProfile{},
		&models.AvailabilitySlot{},
		&models.BookingReservation{},
		&models.Booking{},
		&models.SlotBooking{},
	); err != nil {
		applog.Get().Fatal("failed to auto-migrate", zap.Error(err))
	}

	// One slot per caregiver/date/start triple.
	db.Exec(`
		CREATE UNIQUE INDEX IF NOT EXISTS idx_slot_caregiver_date_start
		ON availability_slots (caregiver_id, date, start_time)
	`)

	// Partial unique index: a parent cannot hold two live bookings for the
	// same caregiver and window. Backstops the in-transaction duplicate check.
	db.Exec(`
		CREATE UNIQUE INDEX IF NOT EXISTS idx_booking_dedupe
		ON bookings (parent_id, caregiver_id, start_time, end_time)
		WHERE status <> 'CANCELLED'
	`)

	return db
}
