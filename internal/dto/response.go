package dto

import (
	"time"

	"github.com/careconnect/caregiver-booking/internal/models"
	"github.com/careconnect/caregiver-booking/internal/service"
)

type CaregiverSummary struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type SlotResponse struct {
	ID               string            `json:"id"`
	CaregiverID      string            `json:"caregiver_id"`
	Date             string            `json:"date"`
	StartTime        time.Time         `json:"start_time"`
	EndTime          time.Time         `json:"end_time"`
	TotalCapacity    int               `json:"total_capacity"`
	CurrentOccupancy int               `json:"current_occupancy"`
	AvailableSpots   int               `json:"available_spots"`
	BaseRate         float64           `json:"base_rate"`
	CurrentRate      float64           `json:"current_rate"`
	Status           models.SlotStatus `json:"status"`
	Notes            string            `json:"notes,omitempty"`
	Caregiver        *CaregiverSummary `json:"caregiver,omitempty"`
}

type ReservationResponse struct {
	ID            string                   `json:"id"`
	SlotID        string                   `json:"slot_id"`
	ParentID      string                   `json:"parent_id"`
	ChildrenCount int                      `json:"children_count"`
	ReservedSpots int                      `json:"reserved_spots"`
	Status        models.ReservationStatus `json:"status"`
	ExpiresAt     time.Time                `json:"expires_at"`
	BookingID     *string                  `json:"booking_id,omitempty"`
	CreatedAt     time.Time                `json:"created_at"`
}

type BookingResponse struct {
	ID            string               `json:"id"`
	ParentID      string               `json:"parent_id"`
	CaregiverID   string               `json:"caregiver_id"`
	StartTime     time.Time            `json:"start_time"`
	EndTime       time.Time            `json:"end_time"`
	ChildrenCount int                  `json:"children_count"`
	HourlyRate    float64              `json:"hourly_rate"`
	TotalHours    float64              `json:"total_hours"`
	Subtotal      float64              `json:"subtotal"`
	PlatformFee   float64              `json:"platform_fee"`
	TotalAmount   float64              `json:"total_amount"`
	Status        models.BookingStatus `json:"status"`
	CreatedAt     time.Time            `json:"created_at"`
}

type AvailabilityResponse struct {
	SlotID             string    `json:"slot_id"`
	StartTime          time.Time `json:"start_time"`
	EndTime            time.Time `json:"end_time"`
	TotalCapacity      int       `json:"total_capacity"`
	CurrentOccupancy   int       `json:"current_occupancy"`
	Available          int       `json:"available"`
	ReservedSpots      int       `json:"reserved_spots"`
	ActiveReservations int       `json:"active_reservations"`
	CurrentRate        float64   `json:"current_rate"`
}

type SweepResponse struct {
	Processed int `json:"processed"`
}

type ErrorResponse struct {
	Message string `json:"message"`
}

func ToSlotResponse(s *models.AvailabilitySlot) SlotResponse {
	resp := SlotResponse{
		ID:               s.ID,
		CaregiverID:      s.CaregiverID,
		Date:             s.Date.Format(models.DateLayout),
		StartTime:        s.StartTime,
		EndTime:          s.EndTime,
		TotalCapacity:    s.TotalCapacity,
		CurrentOccupancy: s.CurrentOccupancy,
		AvailableSpots:   s.AvailableSpots,
		BaseRate:         s.BaseRate,
		CurrentRate:      s.CurrentRate,
		Status:           s.Status,
		Notes:            s.Notes,
	}
	if s.Caregiver != nil {
		resp.Caregiver = &CaregiverSummary{ID: s.Caregiver.ID, Name: s.Caregiver.Name}
	}
	return resp
}

func ToReservationResponse(r *models.BookingReservation) ReservationResponse {
	return ReservationResponse{
		ID:            r.ID,
		SlotID:        r.SlotID,
		ParentID:      r.ParentID,
		ChildrenCount: r.ChildrenCount,
		ReservedSpots: r.ReservedSpots,
		Status:        r.Status,
		ExpiresAt:     r.ExpiresAt,
		BookingID:     r.BookingID,
		CreatedAt:     r.CreatedAt,
	}
}

func ToBookingResponse(b *models.Booking) BookingResponse {
	return BookingResponse{
		ID:            b.ID,
		ParentID:      b.ParentID,
		CaregiverID:   b.CaregiverID,
		StartTime:     b.StartTime,
		EndTime:       b.EndTime,
		ChildrenCount: b.ChildrenCount,
		HourlyRate:    b.HourlyRate,
		TotalHours:    b.TotalHours,
		Subtotal:      b.Subtotal,
		PlatformFee:   b.PlatformFee,
		TotalAmount:   b.TotalAmount,
		Status:        b.Status,
		CreatedAt:     b.CreatedAt,
	}
}

func ToAvailabilityResponse(a service.SlotAvailability) AvailabilityResponse {
	return AvailabilityResponse{
		SlotID:             a.Slot.ID,
		StartTime:          a.Slot.StartTime,
		EndTime:            a.Slot.EndTime,
		TotalCapacity:      a.Slot.TotalCapacity,
		CurrentOccupancy:   a.Slot.CurrentOccupancy,
		Available:          a.Available,
		ReservedSpots:      a.ReservedSpots,
		ActiveReservations: a.ActiveReservations,
		CurrentRate:        a.Slot.CurrentRate,
	}
}
