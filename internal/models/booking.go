package models

import "time"

type BookingStatus string

const (
	BookingPending    BookingStatus = "PENDING"
	BookingConfirmed  BookingStatus = "CONFIRMED"
	BookingInProgress BookingStatus = "IN_PROGRESS"
	BookingCompleted  BookingStatus = "COMPLETED"
	BookingCancelled  BookingStatus = "CANCELLED"
	BookingDisputed   BookingStatus = "DISPUTED"
)

type Booking struct {
	ID          string    `gorm:"primaryKey;type:uuid" json:"id"`
	ParentID    string    `gorm:"type:uuid;not null;index" json:"parent_id"`
	CaregiverID string    `gorm:"type:uuid;not null;index" json:"caregiver_id"`
	StartTime   time.Time `gorm:"not null" json:"start_time"`
	EndTime     time.Time `gorm:"not null" json:"end_time"`

	ChildrenCount int `gorm:"not null;default:1" json:"children_count"`

	// Pricing fields are supplied by the payment collaborator and persisted
	// as given; this engine does not validate them.
	HourlyRate  float64 `gorm:"not null" json:"hourly_rate"`
	TotalHours  float64 `gorm:"not null" json:"total_hours"`
	Subtotal    float64 `gorm:"not null" json:"subtotal"`
	PlatformFee float64 `gorm:"not null" json:"platform_fee"`
	TotalAmount float64 `gorm:"not null" json:"total_amount"`

	Status    BookingStatus `gorm:"type:varchar(20);not null;default:'PENDING'" json:"status"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`

	SlotBookings []SlotBooking `gorm:"foreignKey:BookingID" json:"slot_bookings,omitempty"`
}

// SlotBooking links a booking to the slot whose capacity it consumed.
// Written once in the same transaction as the booking and the occupancy
// increment, never mutated afterwards. RateApplied freezes the slot rate in
// effect at conversion time; later repricing does not touch it.
type SlotBooking struct {
	ID            string    `gorm:"primaryKey;type:uuid" json:"id"`
	BookingID     string    `gorm:"type:uuid;not null;index" json:"booking_id"`
	SlotID        string    `gorm:"type:uuid;not null;index" json:"slot_id"`
	SpotsUsed     int       `gorm:"not null" json:"spots_used"`
	ChildrenCount int       `gorm:"not null" json:"children_count"`
	RateApplied   float64   `gorm:"not null" json:"rate_applied"`
	CreatedAt     time.Time `json:"created_at"`
}
