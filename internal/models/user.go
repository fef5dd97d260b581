package models

import "time"

type UserRole string

const (
	RoleParent    UserRole = "parent"
	RoleCaregiver UserRole = "caregiver"
)

type User struct {
	ID        string    `gorm:"primaryKey;type:uuid" json:"id"`
	Name      string    `gorm:"not null" json:"name"`
	Email     string    `gorm:"not null;uniqueIndex" json:"email"`
	Role      UserRole  `gorm:"type:varchar(20);not null" json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	CaregiverProfile *CaregiverProfile `gorm:"foreignKey:UserID" json:"caregiver_profile,omitempty"`
}

// CaregiverProfile holds scheduling defaults for users offering care.
// A user without one cannot own slots or receive bookings.
type CaregiverProfile struct {
	ID                    string    `gorm:"primaryKey;type:uuid" json:"id"`
	UserID                string    `gorm:"type:uuid;not null;uniqueIndex" json:"user_id"`
	DailyCapacity         int       `gorm:"not null;default:4" json:"daily_capacity"`
	HourlyRate            float64   `gorm:"not null" json:"hourly_rate"`
	DynamicPricingEnabled bool      `gorm:"not null;default:false" json:"dynamic_pricing_enabled"`
	Timezone              string    `gorm:"not null;default:'UTC'" json:"timezone"`
	CreatedAt             time.Time `json:"created_at"`
	UpdatedAt             time.Time `json:"updated_at"`
}
