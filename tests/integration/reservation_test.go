//go:build integration

package integration

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/careconnect/caregiver-booking/internal/models"
	"github.com/careconnect/caregiver-booking/internal/service"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 20 parents race for 5 spots. Exactly 5 holds may be granted; the rest get
// ErrInsufficientCapacity and the slot never oversells.
func TestConcurrentReservations_NoOverselling(t *testing.T) {
	cleanTables()
	caregiver := createTestCaregiver(t, false)
	slot := createTestSlot(t, caregiver.ID, 5, 25)
	eng := newEngine(0)

	totalParents := 20
	var wg sync.WaitGroup
	results := make(chan *models.BookingReservation, totalParents)
	errs := make(chan error, totalParents)

	wg.Add(totalParents)
	for i := 0; i < totalParents; i++ {
		go func() {
			defer wg.Done()
			reservation, err := eng.reservations.ReserveSpots(context.Background(), slot.ID, uuid.NewString(), 1, 1)
			if err != nil {
				errs <- err
				return
			}
			results <- reservation
		}()
	}
	wg.Wait()
	close(results)
	close(errs)

	granted := 0
	for range results {
		granted++
	}
	rejected := 0
	for err := range errs {
		assert.ErrorIs(t, err, service.ErrInsufficientCapacity)
		rejected++
	}

	assert.Equal(t, 5, granted, "exactly capacity holds should be granted")
	assert.Equal(t, 15, rejected)

	reloaded := reloadSlot(t, slot.ID)
	assert.Equal(t, 0, reloaded.AvailableSpots)
	assert.Equal(t, models.SlotFull, reloaded.Status)

	var active int64
	testDB.Model(&models.BookingReservation{}).
		Where("slot_id = ? AND status = ?", slot.ID, models.ReservationActive).
		Count(&active)
	assert.Equal(t, int64(5), active)
}

// Capacity 2: X holds and converts, Y holds and converts, Z is turned away.
func TestReserveConvertSequence(t *testing.T) {
	cleanTables()
	caregiver := createTestCaregiver(t, false)
	slot := createTestSlot(t, caregiver.ID, 2, 25)
	eng := newEngine(0)
	ctx := context.Background()

	resX, err := eng.reservations.ReserveSpots(ctx, slot.ID, uuid.NewString(), 1, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, reloadSlot(t, slot.ID).AvailableSpots)

	bookingX := createTestBooking(t, uuid.NewString(), caregiver.ID)
	converted, err := eng.bookings.ConvertReservationToBooking(ctx, resX.ID, bookingX.ID)
	require.NoError(t, err)
	require.NotNil(t, converted.BookingID)
	assert.Equal(t, bookingX.ID, *converted.BookingID)

	reloaded := reloadSlot(t, slot.ID)
	assert.Equal(t, 1, reloaded.CurrentOccupancy)
	assert.Equal(t, 1, reloaded.AvailableSpots, "conversion must not release the held spot")

	resY, err := eng.reservations.ReserveSpots(ctx, slot.ID, uuid.NewString(), 1, 1)
	require.NoError(t, err)
	assert.Equal(t, 0, reloadSlot(t, slot.ID).AvailableSpots)

	bookingY := createTestBooking(t, uuid.NewString(), caregiver.ID)
	_, err = eng.bookings.ConvertReservationToBooking(ctx, resY.ID, bookingY.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, reloadSlot(t, slot.ID).CurrentOccupancy)

	_, err = eng.reservations.ReserveSpots(ctx, slot.ID, uuid.NewString(), 1, 1)
	assert.ErrorIs(t, err, service.ErrInsufficientCapacity)
}

// Cancelling twice (or sweeping after cancel) credits the spots exactly once.
func TestIdempotentRelease(t *testing.T) {
	cleanTables()
	caregiver := createTestCaregiver(t, false)
	slot := createTestSlot(t, caregiver.ID, 3, 25)
	eng := newEngine(0)
	ctx := context.Background()

	reservation, err := eng.reservations.ReserveSpots(ctx, slot.ID, uuid.NewString(), 2, 2)
	require.NoError(t, err)
	assert.Equal(t, 1, reloadSlot(t, slot.ID).AvailableSpots)

	first, err := eng.reservations.CancelReservation(ctx, reservation.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ReservationCancelled, first.Status)
	assert.Equal(t, 3, reloadSlot(t, slot.ID).AvailableSpots)

	second, err := eng.reservations.CancelReservation(ctx, reservation.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ReservationCancelled, second.Status)
	assert.Equal(t, 3, reloadSlot(t, slot.ID).AvailableSpots, "double cancel must not double credit")

	processed, err := eng.reservations.CleanupExpiredReservations(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, processed)
	assert.Equal(t, 3, reloadSlot(t, slot.ID).AvailableSpots)
}

// A reservation converts at most once.
func TestConversionExclusivity(t *testing.T) {
	cleanTables()
	caregiver := createTestCaregiver(t, false)
	slot := createTestSlot(t, caregiver.ID, 2, 25)
	eng := newEngine(0)
	ctx := context.Background()

	reservation, err := eng.reservations.ReserveSpots(ctx, slot.ID, uuid.NewString(), 1, 1)
	require.NoError(t, err)

	booking := createTestBooking(t, uuid.NewString(), caregiver.ID)
	_, err = eng.bookings.ConvertReservationToBooking(ctx, reservation.ID, booking.ID)
	require.NoError(t, err)

	other := createTestBooking(t, uuid.NewString(), caregiver.ID)
	_, err = eng.bookings.ConvertReservationToBooking(ctx, reservation.ID, other.ID)
	assert.ErrorIs(t, err, service.ErrReservationNotActive)

	assert.Equal(t, 1, reloadSlot(t, slot.ID).CurrentOccupancy, "occupancy incremented exactly once")
}

// A cancelled reservation cannot convert either.
func TestConvertCancelledReservation(t *testing.T) {
	cleanTables()
	caregiver := createTestCaregiver(t, false)
	slot := createTestSlot(t, caregiver.ID, 2, 25)
	eng := newEngine(0)
	ctx := context.Background()

	reservation, err := eng.reservations.ReserveSpots(ctx, slot.ID, uuid.NewString(), 1, 1)
	require.NoError(t, err)
	_, err = eng.reservations.CancelReservation(ctx, reservation.ID)
	require.NoError(t, err)

	booking := createTestBooking(t, uuid.NewString(), caregiver.ID)
	_, err = eng.bookings.ConvertReservationToBooking(ctx, reservation.ID, booking.ID)
	assert.ErrorIs(t, err, service.ErrReservationNotActive)
	assert.Equal(t, 0, reloadSlot(t, slot.ID).CurrentOccupancy)
}

// A lapsed hold stops counting against availability before any sweep runs,
// is not convertible, and the sweep then restores the persisted column.
func TestExpiredHold_SelfHealingAvailability(t *testing.T) {
	cleanTables()
	caregiver := createTestCaregiver(t, false)
	slot := createTestSlot(t, caregiver.ID, 2, 25)
	eng := newEngine(time.Millisecond)
	ctx := context.Background()

	reservation, err := eng.reservations.ReserveSpots(ctx, slot.ID, uuid.NewString(), 1, 1)
	require.NoError(t, err)
	time.Sleep(20 * time.Millisecond)

	// The persisted column stays stale until a sweep runs.
	assert.Equal(t, 1, reloadSlot(t, slot.ID).AvailableSpots)

	// Real-time availability already discounts the lapsed hold.
	availability, err := eng.availability.GetRealTimeAvailability(ctx, caregiver.ID, slot.Date)
	require.NoError(t, err)
	require.Len(t, availability, 1)
	assert.Equal(t, 2, availability[0].Available)
	assert.Equal(t, 0, availability[0].ActiveReservations)

	booking := createTestBooking(t, uuid.NewString(), caregiver.ID)
	_, err = eng.bookings.ConvertReservationToBooking(ctx, reservation.ID, booking.ID)
	assert.ErrorIs(t, err, service.ErrReservationNotActive)

	processed, err := eng.reservations.CleanupExpiredReservations(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, processed)
	assert.Equal(t, 2, reloadSlot(t, slot.ID).AvailableSpots)

	var swept models.BookingReservation
	require.NoError(t, testDB.First(&swept, "id = ?", reservation.ID).Error)
	assert.Equal(t, models.ReservationExpired, swept.Status)

	// Sweeping again is a no-op.
	processed, err = eng.reservations.CleanupExpiredReservations(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, processed)
	assert.Equal(t, 2, reloadSlot(t, slot.ID).AvailableSpots)
}

// Active holds are visible in real-time availability with their counts.
func TestRealTimeAvailability_ReportsHolds(t *testing.T) {
	cleanTables()
	caregiver := createTestCaregiver(t, false)
	slot := createTestSlot(t, caregiver.ID, 4, 25)
	eng := newEngine(0)
	ctx := context.Background()

	_, err := eng.reservations.ReserveSpots(ctx, slot.ID, uuid.NewString(), 1, 1)
	require.NoError(t, err)
	_, err = eng.reservations.ReserveSpots(ctx, slot.ID, uuid.NewString(), 2, 2)
	require.NoError(t, err)

	availability, err := eng.availability.GetRealTimeAvailability(ctx, caregiver.ID, slot.Date)
	require.NoError(t, err)
	require.Len(t, availability, 1)
	assert.Equal(t, 1, availability[0].Available)
	assert.Equal(t, 3, availability[0].ReservedSpots)
	assert.Equal(t, 2, availability[0].ActiveReservations)
}

// Occupancy always equals the sum of spots consumed by slot bookings.
func TestOccupancyMatchesSlotBookings(t *testing.T) {
	cleanTables()
	caregiver := createTestCaregiver(t, false)
	slot := createTestSlot(t, caregiver.ID, 4, 25)
	eng := newEngine(0)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		reservation, err := eng.reservations.ReserveSpots(ctx, slot.ID, uuid.NewString(), 1, 1)
		require.NoError(t, err)
		booking := createTestBooking(t, uuid.NewString(), caregiver.ID)
		_, err = eng.bookings.ConvertReservationToBooking(ctx, reservation.ID, booking.ID)
		require.NoError(t, err)
	}

	reloaded := reloadSlot(t, slot.ID)

	var spotsUsed int64
	testDB.Model(&models.SlotBooking{}).
		Where("slot_id = ?", slot.ID).
		Select("COALESCE(SUM(spots_used), 0)").
		Scan(&spotsUsed)

	assert.Equal(t, int64(reloaded.CurrentOccupancy), spotsUsed)
	assert.Equal(t, 3, reloaded.CurrentOccupancy)
}
