//go:build integration

package integration

import (
	"fmt"
	"log"
	"os"
	"testing"
	"time"

	"github.com/careconnect/caregiver-booking/internal/models"
	"github.com/careconnect/caregiver-booking/internal/repository"
	"github.com/careconnect/caregiver-booking/internal/service"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var testDB *gorm.DB

func TestMain(m *testing.M) {
	dsn := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		getEnv("TEST_DB_HOST", "localhost"),
		getEnv("TEST_DB_PORT", "5434"),
		getEnv("TEST_DB_USER", "postgres"),
		getEnv("TEST_DB_PASSWORD", "postgres"),
		getEnv("TEST_DB_NAME", "caregiver_booking_test"),
	)

	var err error
	testDB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		log.Fatalf("failed to connect to test database: %v", err)
	}

	dropTables()

	if err := testDB.AutoMigrate(
		&models.User{},
		&models.CaregiverProfile{},
		&models.AvailabilitySlot{},
		&models.BookingReservation{},
		&models.Booking{},
		&models.SlotBooking{},
	); err != nil {
		log.Fatalf("failed to auto-migrate test database: %v", err)
	}

	testDB.Exec(`
		CREATE UNIQUE INDEX IF NOT EXISTS idx_slot_caregiver_date_start
		ON availability_slots (caregiver_id, date, start_time)
	`)
	testDB.Exec(`
		CREATE UNIQUE INDEX IF NOT EXISTS idx_booking_dedupe
		ON bookings (parent_id, caregiver_id, start_time, end_time)
		WHERE status <> 'CANCELLED'
	`)

	code := m.Run()

	dropTables()

	os.Exit(code)
}

func dropTables() {
	testDB.Exec("DROP TABLE IF EXISTS slot_bookings")
	testDB.Exec("DROP TABLE IF EXISTS bookings")
	testDB.Exec("DROP TABLE IF EXISTS booking_reservations")
	testDB.Exec("DROP TABLE IF EXISTS availability_slots")
	testDB.Exec("DROP TABLE IF EXISTS caregiver_profiles")
	testDB.Exec("DROP TABLE IF EXISTS users")
}

func cleanTables() {
	testDB.Exec("DELETE FROM slot_bookings")
	testDB.Exec("DELETE FROM bookings")
	testDB.Exec("DELETE FROM booking_reservations")
	testDB.Exec("DELETE FROM availability_slots")
	testDB.Exec("DELETE FROM caregiver_profiles")
	testDB.Exec("DELETE FROM users")
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// --- Fixtures ---

type engine struct {
	slots        service.SlotService
	reservations service.ReservationService
	bookings     service.BookingService
	availability service.AvailabilityService
	pricing      service.PricingService
}

func newEngine(holdTTL time.Duration) engine {
	slotRepo := repository.NewSlotRepository(testDB)
	reservationRepo := repository.NewReservationRepository(testDB)
	bookingRepo := repository.NewBookingRepository(testDB)
	userRepo := repository.NewUserRepository(testDB)

	return engine{
		slots:        service.NewSlotService(slotRepo, bookingRepo, userRepo),
		reservations: service.NewReservationService(reservationRepo, slotRepo, userRepo, holdTTL),
		bookings:     service.NewBookingService(bookingRepo, reservationRepo, slotRepo, userRepo, nil),
		availability: service.NewAvailabilityService(slotRepo, reservationRepo),
		pricing:      service.NewPricingService(slotRepo, userRepo),
	}
}

func createTestCaregiver(t *testing.T, dynamicPricing bool) *models.User {
	t.Helper()
	user := &models.User{
		ID:    uuid.NewString(),
		Name:  "Test Caregiver",
		Email: uuid.NewString() + "@example.com",
		Role:  models.RoleCaregiver,
	}
	require.NoError(t, testDB.Create(user).Error)

	profile := &models.CaregiverProfile{
		ID:                    uuid.NewString(),
		UserID:                user.ID,
		DailyCapacity:         4,
		HourlyRate:            25,
		DynamicPricingEnabled: dynamicPricing,
		Timezone:              "America/New_York",
	}
	require.NoError(t, testDB.Create(profile).Error)

	user.CaregiverProfile = profile
	return user
}

func createTestParent(t *testing.T) *models.User {
	t.Helper()
	user := &models.User{
		ID:    uuid.NewString(),
		Name:  "Test Parent",
		Email: uuid.NewString() + "@example.com",
		Role:  models.RoleParent,
	}
	require.NoError(t, testDB.Create(user).Error)
	return user
}

func createTestSlot(t *testing.T, caregiverID string, capacity int, rate float64) *models.AvailabilitySlot {
	t.Helper()
	date := time.Date(2025, 8, 19, 0, 0, 0, 0, time.UTC)
	slot := &models.AvailabilitySlot{
		ID:               uuid.NewString(),
		CaregiverID:      caregiverID,
		Date:             date,
		StartTime:        time.Date(2025, 8, 19, 13, 0, 0, 0, time.UTC),
		EndTime:          time.Date(2025, 8, 19, 21, 0, 0, 0, time.UTC),
		TotalCapacity:    capacity,
		CurrentOccupancy: 0,
		AvailableSpots:   capacity,
		BaseRate:         rate,
		CurrentRate:      rate,
		Status:           models.SlotAvailable,
	}
	require.NoError(t, testDB.Create(slot).Error)
	return slot
}

func createTestBooking(t *testing.T, parentID, caregiverID string) *models.Booking {
	t.Helper()
	booking := &models.Booking{
		ID:            uuid.NewString(),
		ParentID:      parentID,
		CaregiverID:   caregiverID,
		StartTime:     time.Date(2025, 8, 19, 13, 0, 0, 0, time.UTC),
		EndTime:       time.Date(2025, 8, 19, 21, 0, 0, 0, time.UTC),
		ChildrenCount: 1,
		HourlyRate:    25,
		TotalHours:    8,
		Subtotal:      200,
		PlatformFee:   20,
		TotalAmount:   220,
		Status:        models.BookingPending,
	}
	require.NoError(t, testDB.Create(booking).Error)
	return booking
}

func reloadSlot(t *testing.T, id string) *models.AvailabilitySlot {
	t.Helper()
	var slot models.AvailabilitySlot
	require.NoError(t, testDB.First(&slot, "id = ?", id).Error)
	return &slot
}
