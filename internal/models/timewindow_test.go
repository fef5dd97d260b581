package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTimeWindow_ResolvesCaregiverTimezone(t *testing.T) {
	w, err := NewTimeWindow("2025-08-19", "09:00", "17:00", "America/New_York")
	require.NoError(t, err)

	// 9am New York is 13:00 UTC during DST.
	assert.Equal(t, time.Date(2025, 8, 19, 13, 0, 0, 0, time.UTC), w.Start.UTC())
	assert.Equal(t, time.Date(2025, 8, 19, 21, 0, 0, 0, time.UTC), w.End.UTC())
	assert.Equal(t, time.Date(2025, 8, 19, 0, 0, 0, 0, time.UTC), w.Date)
}

func TestNewTimeWindow_SameInputsSameInstants(t *testing.T) {
	a, err := NewTimeWindow("2025-08-19", "09:00", "17:00", "Europe/Berlin")
	require.NoError(t, err)
	b, err := NewTimeWindow("2025-08-19", "09:00:00", "17:00:00", "Europe/Berlin")
	require.NoError(t, err)

	assert.True(t, a.Start.Equal(b.Start))
	assert.True(t, a.End.Equal(b.End))
	assert.True(t, a.Date.Equal(b.Date))
}

func TestNewTimeWindow_EndBeforeStart(t *testing.T) {
	_, err := NewTimeWindow("2025-08-19", "17:00", "09:00", "UTC")
	assert.Error(t, err)
}

func TestNewTimeWindow_BadInputs(t *testing.T) {
	_, err := NewTimeWindow("19/08/2025", "09:00", "17:00", "UTC")
	assert.Error(t, err)

	_, err = NewTimeWindow("2025-08-19", "9am", "17:00", "UTC")
	assert.Error(t, err)

	_, err = NewTimeWindow("2025-08-19", "09:00", "17:00", "Mars/Olympus")
	assert.Error(t, err)
}

func TestNormalizeDate_CollapsesToCalendarDay(t *testing.T) {
	loc, err := time.LoadLocation("Asia/Tokyo")
	require.NoError(t, err)

	late := time.Date(2025, 8, 19, 23, 45, 0, 0, loc)
	assert.Equal(t, time.Date(2025, 8, 19, 0, 0, 0, 0, time.UTC), NormalizeDate(late))
}

func TestReservationLapsed(t *testing.T) {
	now := time.Now()
	r := &BookingReservation{Status: ReservationActive, ExpiresAt: now.Add(time.Minute)}
	assert.False(t, r.Lapsed(now))
	assert.True(t, r.Holding(now))

	r.ExpiresAt = now.Add(-time.Second)
	assert.True(t, r.Lapsed(now))
	assert.False(t, r.Holding(now))

	r.ExpiresAt = now.Add(time.Minute)
	r.Status = ReservationCancelled
	assert.False(t, r.Holding(now))
}
