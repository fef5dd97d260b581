package service

import "errors"

var (
	ErrSlotNotFound         = errors.New("slot not found")
	ErrSlotNotBookable      = errors.New("slot is not open for booking")
	ErrDuplicateSlot        = errors.New("slot already exists for this caregiver, date and start time")
	ErrInsufficientCapacity = errors.New("not enough available spots in this slot")
	ErrReservationNotFound  = errors.New("reservation not found")
	ErrReservationNotActive = errors.New("reservation is not active")
	ErrBookingNotFound      = errors.New("booking not found")
	ErrCaregiverNotFound    = errors.New("caregiver not found")
	ErrNotACaregiver        = errors.New("user has no caregiver profile")
	ErrSlotHasBookings      = errors.New("slot has bookings and can only be retired")
	ErrInvalidTransition    = errors.New("invalid booking status transition")
)
