package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/careconnect/caregiver-booking/internal/models"
	"github.com/careconnect/caregiver-booking/internal/repository"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SlotConfig enumerates the recognized overrides for slot creation. Nil
// pointer fields fall back to the caregiver's profile defaults at call time.
type SlotConfig struct {
	TotalCapacity       *int
	BaseRate            *float64
	IsRecurring         bool
	RecurringPattern    string
	SpecialRequirements string
	Notes               string
}

// CreateSlotInput carries the raw boundary inputs: date and times as
// wall-clock strings, resolved against the caregiver's timezone exactly once.
type CreateSlotInput struct {
	CaregiverID string
	Date        string
	StartTime   string
	EndTime     string
	Config      SlotConfig
}

type SlotService interface {
	CreateSlot(ctx context.Context, input CreateSlotInput) (*models.AvailabilitySlot, error)
	GetSlot(ctx context.Context, id string) (*models.AvailabilitySlot, error)
	GetAvailableSlots(ctx context.Context, filter repository.SlotFilter) ([]models.AvailabilitySlot, error)
	UpdateSlotStatus(ctx context.Context, slotID string, status models.SlotStatus) (*models.AvailabilitySlot, error)
	RetireSlot(ctx context.Context, slotID string) error
}

type slotService struct {
	slotRepo    repository.SlotRepository
	bookingRepo repository.BookingRepository
	userRepo    repository.UserRepository
}

func NewSlotService(slotRepo repository.SlotRepository, bookingRepo repository.BookingRepository, userRepo repository.UserRepository) SlotService {
	return &slotService{slotRepo: slotRepo, bookingRepo: bookingRepo, userRepo: userRepo}
}

func (s *slotService) CreateSlot(ctx context.Context, input CreateSlotInput) (*models.AvailabilitySlot, error) {
	user, err := s.userRepo.FindByID(ctx, input.CaregiverID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCaregiverNotFound
		}
		return nil, err
	}
	profile := user.CaregiverProfile
	if profile == nil {
		return nil, ErrNotACaregiver
	}

	window, err := models.NewTimeWindow(input.Date, input.StartTime, input.EndTime, profile.Timezone)
	if err != nil {
		return nil, err
	}

	if existing, err := s.slotRepo.FindByCaregiverDateStart(ctx, input.CaregiverID, window.Date, window.Start); err == nil {
		return nil, fmt.Errorf("%w: existing slot %s runs %s - %s",
			ErrDuplicateSlot, existing.ID,
			existing.StartTime.Format("15:04"), existing.EndTime.Format("15:04"))
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	capacity := profile.DailyCapacity
	if input.Config.TotalCapacity != nil {
		capacity = *input.Config.TotalCapacity
	}
	if capacity <= 0 {
		return nil, fmt.Errorf("total capacity must be positive, got %d", capacity)
	}
	rate := profile.HourlyRate
	if input.Config.BaseRate != nil {
		rate = *input.Config.BaseRate
	}

	slot := &models.AvailabilitySlot{
		ID:                  uuid.NewString(),
		CaregiverID:         input.CaregiverID,
		Date:                window.Date,
		StartTime:           window.Start,
		EndTime:             window.End,
		TotalCapacity:       capacity,
		CurrentOccupancy:    0,
		AvailableSpots:      capacity,
		BaseRate:            rate,
		CurrentRate:         rate,
		Status:              models.SlotAvailable,
		IsRecurring:         input.Config.IsRecurring,
		RecurringPattern:    input.Config.RecurringPattern,
		SpecialRequirements: input.Config.SpecialRequirements,
		Notes:               input.Config.Notes,
	}

	if err := s.slotRepo.Create(ctx, slot); err != nil {
		return nil, fmt.Errorf("create slot: %w", err)
	}
	return slot, nil
}

func (s *slotService) GetSlot(ctx context.Context, id string) (*models.AvailabilitySlot, error) {
	slot, err := s.slotRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSlotNotFound
		}
		return nil, err
	}
	return slot, nil
}

func (s *slotService) GetAvailableSlots(ctx context.Context, filter repository.SlotFilter) ([]models.AvailabilitySlot, error) {
	return s.slotRepo.FindAvailable(ctx, filter)
}

func (s *slotService) UpdateSlotStatus(ctx context.Context, slotID string, status models.SlotStatus) (*models.AvailabilitySlot, error) {
	var result *models.AvailabilitySlot

	err := s.slotRepo.GetDB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		slot, err := s.slotRepo.FindByIDForUpdate(ctx, tx, slotID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrSlotNotFound
			}
			return err
		}
		slot.Status = status
		if err := s.slotRepo.Save(ctx, tx, slot); err != nil {
			return err
		}
		result = slot
		return nil
	})

	return result, err
}

// RetireSlot removes a slot from circulation. A slot referenced by bookings
// is never deleted, only soft-retired to BLOCKED.
func (s *slotService) RetireSlot(ctx context.Context, slotID string) error {
	count, err := s.bookingRepo.CountSlotBookingsBySlot(ctx, slotID)
	if err != nil {
		return err
	}
	if count > 0 {
		_, err := s.UpdateSlotStatus(ctx, slotID, models.SlotBlocked)
		return err
	}
	if err := s.slotRepo.Delete(ctx, slotID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrSlotNotFound
		}
		return err
	}
	return nil
}

// refreshCapacityStatus keeps the derived status in step with capacity.
// BLOCKED and EXPIRED are sticky; they are only changed explicitly.
func refreshCapacityStatus(slot *models.AvailabilitySlot) {
	if slot.Status == models.SlotBlocked || slot.Status == models.SlotExpired {
		return
	}
	if slot.AvailableSpots <= 0 {
		slot.Status = models.SlotFull
	} else {
		slot.Status = models.SlotAvailable
	}
}
