package models

import "time"

type SlotStatus string

const (
	SlotAvailable SlotStatus = "AVAILABLE"
	SlotFull      SlotStatus = "FULL"
	SlotBlocked   SlotStatus = "BLOCKED"
	SlotExpired   SlotStatus = "EXPIRED"
)

// AvailabilitySlot is one caregiver's bookable window. Date is the calendar
// day at UTC midnight; StartTime/EndTime are the exact instants derived from
// the caregiver's timezone when the slot was created (see TimeWindow).
type AvailabilitySlot struct {
	ID          string    `gorm:"primaryKey;type:uuid" json:"id"`
	CaregiverID string    `gorm:"type:uuid;not null;index" json:"caregiver_id"`
	Date        time.Time `gorm:"not null;index" json:"date"`
	StartTime   time.Time `gorm:"not null" json:"start_time"`
	EndTime     time.Time `gorm:"not null" json:"end_time"`

	TotalCapacity    int `gorm:"not null" json:"total_capacity"`
	CurrentOccupancy int `gorm:"not null;default:0" json:"current_occupancy"`
	// AvailableSpots is decremented the moment a hold is granted, so it can
	// run ahead of CurrentOccupancy. It may be stale between a hold lapsing
	// and the sweeper reclaiming it; real-time reads recompute instead.
	AvailableSpots int `gorm:"not null" json:"available_spots"`

	BaseRate    float64    `gorm:"not null" json:"base_rate"`
	CurrentRate float64    `gorm:"not null" json:"current_rate"`
	Status      SlotStatus `gorm:"type:varchar(20);not null;default:'AVAILABLE'" json:"status"`

	IsRecurring         bool   `gorm:"not null;default:false" json:"is_recurring"`
	RecurringPattern    string `json:"recurring_pattern,omitempty"`
	SpecialRequirements string `json:"special_requirements,omitempty"`
	Notes               string `json:"notes,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Caregiver *User `gorm:"foreignKey:CaregiverID" json:"caregiver,omitempty"`
}

// Bookable reports whether the slot accepts new holds or bookings at all;
// capacity is checked separately under lock.
func (s *AvailabilitySlot) Bookable() bool {
	return s.Status == SlotAvailable || s.Status == SlotFull
}
