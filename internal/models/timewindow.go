package models

import (
	"fmt"
	"time"
)

const (
	DateLayout  = "2006-01-02"
	ClockLayout = "15:04"
)

// TimeWindow is the single unambiguous representation of a slot's schedule:
// the calendar day plus the exact start/end instants resolved in the
// caregiver's timezone. It is built once at the request boundary; nothing
// downstream re-parses date or time strings.
type TimeWindow struct {
	Date  time.Time // calendar day, normalized to UTC midnight
	Start time.Time
	End   time.Time
}

// NewTimeWindow resolves "2006-01-02" date and "15:04" wall-clock inputs in
// the given IANA timezone into exact instants. The same inputs always yield
// the same instants regardless of the server's local timezone.
func NewTimeWindow(dateStr, startStr, endStr, tz string) (TimeWindow, error) {
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return TimeWindow{}, fmt.Errorf("invalid timezone %q: %w", tz, err)
	}

	day, err := time.ParseInLocation(DateLayout, dateStr, loc)
	if err != nil {
		return TimeWindow{}, fmt.Errorf("invalid date %q: %w", dateStr, err)
	}

	start, err := parseClock(startStr)
	if err != nil {
		return TimeWindow{}, fmt.Errorf("invalid start time %q: %w", startStr, err)
	}
	end, err := parseClock(endStr)
	if err != nil {
		return TimeWindow{}, fmt.Errorf("invalid end time %q: %w", endStr, err)
	}

	w := TimeWindow{
		Date:  NormalizeDate(day),
		Start: time.Date(day.Year(), day.Month(), day.Day(), start.Hour(), start.Minute(), 0, 0, loc),
		End:   time.Date(day.Year(), day.Month(), day.Day(), end.Hour(), end.Minute(), 0, 0, loc),
	}
	if !w.End.After(w.Start) {
		return TimeWindow{}, fmt.Errorf("end time %s must be after start time %s", endStr, startStr)
	}
	return w, nil
}

// NormalizeDate collapses any instant to its calendar day at UTC midnight,
// keyed on the instant's own location. Slots created for "2025-08-19" compare
// equal on Date no matter how the day was serialized.
func NormalizeDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// ParseDate resolves a bare "2006-01-02" string to its UTC-midnight day.
func ParseDate(dateStr string) (time.Time, error) {
	day, err := time.Parse(DateLayout, dateStr)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", dateStr, err)
	}
	return day, nil
}

func parseClock(s string) (time.Time, error) {
	if t, err := time.Parse(ClockLayout, s); err == nil {
		return t, nil
	}
	return time.Parse("15:04:05", s)
}
