package models

import "time"

type ReservationStatus string

const (
	ReservationActive    ReservationStatus = "ACTIVE"
	ReservationConverted ReservationStatus = "CONVERTED_TO_BOOKING"
	ReservationCancelled ReservationStatus = "CANCELLED"
	ReservationExpired   ReservationStatus = "EXPIRED"
)

// BookingReservation is a time-boxed claim on slot capacity. The claimed
// spots are subtracted from the slot the moment the hold is granted and
// returned on cancel, expiry, or kept permanently on conversion.
type BookingReservation struct {
	ID            string            `gorm:"primaryKey;type:uuid" json:"id"`
	SlotID        string            `gorm:"type:uuid;not null;index" json:"slot_id"`
	ParentID      string            `gorm:"type:uuid;not null;index" json:"parent_id"`
	ChildrenCount int               `gorm:"not null" json:"children_count"`
	ReservedSpots int               `gorm:"not null" json:"reserved_spots"`
	Status        ReservationStatus `gorm:"type:varchar(30);not null;default:'ACTIVE'" json:"status"`
	ExpiresAt     time.Time         `gorm:"not null;index" json:"expires_at"`
	BookingID     *string           `gorm:"type:uuid" json:"booking_id,omitempty"`
	CreatedAt     time.Time         `json:"created_at"`
	UpdatedAt     time.Time         `json:"updated_at"`

	Slot *AvailabilitySlot `gorm:"foreignKey:SlotID" json:"slot,omitempty"`
}

// Lapsed reports whether the hold's deadline has passed. A lapsed hold is
// treated as expired everywhere even if no sweep has marked it yet.
func (r *BookingReservation) Lapsed(now time.Time) bool {
	return now.After(r.ExpiresAt)
}

// Holding reports whether the reservation still counts against capacity.
func (r *BookingReservation) Holding(now time.Time) bool {
	return r.Status == ReservationActive && !r.Lapsed(now)
}
