package dto

import "time"

type CreateSlotRequest struct {
	CaregiverID string `json:"caregiver_id"`
	Date        string `json:"date"`
	StartTime   string `json:"start_time"`
	EndTime     string `json:"end_time"`

	// Optional overrides; defaults come from the caregiver profile.
	TotalCapacity       *int     `json:"total_capacity,omitempty"`
	BaseRate            *float64 `json:"base_rate,omitempty"`
	IsRecurring         bool     `json:"is_recurring,omitempty"`
	RecurringPattern    string   `json:"recurring_pattern,omitempty"`
	SpecialRequirements string   `json:"special_requirements,omitempty"`
	Notes               string   `json:"notes,omitempty"`
}

type UpdateSlotStatusRequest struct {
	Status string `json:"status"`
}

type ReserveSpotsRequest struct {
	SlotID        string `json:"slot_id"`
	ParentID      string `json:"parent_id"`
	ChildrenCount int    `json:"children_count"`
	ReservedSpots int    `json:"reserved_spots"`
}

type ConvertReservationRequest struct {
	BookingID string `json:"booking_id"`
}

type CreateBookingRequest struct {
	ParentID      string    `json:"parent_id"`
	CaregiverID   string    `json:"caregiver_id"`
	StartTime     time.Time `json:"start_time"`
	EndTime       time.Time `json:"end_time"`
	ChildrenCount int       `json:"children_count"`

	// Optional slot linkage; capacity is enforced when present.
	SlotID      string `json:"slot_id,omitempty"`
	SpotsNeeded int    `json:"spots_needed,omitempty"`

	// Pricing as computed by the payment collaborator.
	HourlyRate  float64 `json:"hourly_rate"`
	TotalHours  float64 `json:"total_hours"`
	Subtotal    float64 `json:"subtotal"`
	PlatformFee float64 `json:"platform_fee"`
	TotalAmount float64 `json:"total_amount"`
}

type UpdateBookingStatusRequest struct {
	Status string `json:"status"`
}
