package service

import (
	"context"
	"errors"

	"github.com/careconnect/caregiver-booking/internal/models"
	"github.com/careconnect/caregiver-booking/internal/repository"
	"github.com/careconnect/caregiver-booking/pkg/logger"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Demand tiers for opt-in dynamic pricing. Utilization counts both finalized
// occupancy and live holds, since held spots are unavailable to other parents.
const (
	surgeHighThreshold = 0.8
	surgeMidThreshold  = 0.6
	surgeLowThreshold  = 0.4

	surgeHighMultiplier = 1.3
	surgeMidMultiplier  = 1.2
	surgeLowMultiplier  = 1.1
)

// DynamicRate computes the rate a slot should charge at its current
// utilization. Already-written SlotBooking rows keep their frozen RateApplied.
func DynamicRate(baseRate float64, totalCapacity, availableSpots int) float64 {
	if totalCapacity <= 0 {
		return baseRate
	}
	utilization := float64(totalCapacity-availableSpots) / float64(totalCapacity)
	switch {
	case utilization >= surgeHighThreshold:
		return baseRate * surgeHighMultiplier
	case utilization >= surgeMidThreshold:
		return baseRate * surgeMidMultiplier
	case utilization >= surgeLowThreshold:
		return baseRate * surgeLowMultiplier
	default:
		return baseRate
	}
}

// applyDynamicPricing recomputes CurrentRate in place after a capacity event.
// No-op unless the caregiver opted in. Returns true when the rate changed and
// the slot needs persisting.
func applyDynamicPricing(slot *models.AvailabilitySlot, profile *models.CaregiverProfile) bool {
	if profile == nil || !profile.DynamicPricingEnabled {
		return false
	}
	rate := DynamicRate(slot.BaseRate, slot.TotalCapacity, slot.AvailableSpots)
	if rate == slot.CurrentRate {
		return false
	}
	slot.CurrentRate = rate
	return true
}

type PricingService interface {
	UpdateDynamicPricing(ctx context.Context, slotID string) (*models.AvailabilitySlot, error)
}

type pricingService struct {
	slotRepo repository.SlotRepository
	userRepo repository.UserRepository
}

func NewPricingService(slotRepo repository.SlotRepository, userRepo repository.UserRepository) PricingService {
	return &pricingService{slotRepo: slotRepo, userRepo: userRepo}
}

// UpdateDynamicPricing is the standalone repricing entry point; the
// reservation and booking paths run the same computation inside their own
// capacity transactions.
func (s *pricingService) UpdateDynamicPricing(ctx context.Context, slotID string) (*models.AvailabilitySlot, error) {
	var result *models.AvailabilitySlot

	err := s.slotRepo.GetDB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		slot, err := s.slotRepo.FindByIDForUpdate(ctx, tx, slotID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrSlotNotFound
			}
			return err
		}

		profile, err := s.userRepo.FindCaregiverProfile(ctx, slot.CaregiverID)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		if applyDynamicPricing(slot, profile) {
			if err := s.slotRepo.Save(ctx, tx, slot); err != nil {
				return err
			}
			logger.Get().Info("slot repriced",
				zap.String("slot_id", slot.ID),
				zap.Float64("base_rate", slot.BaseRate),
				zap.Float64("current_rate", slot.CurrentRate))
		}

		result = slot
		return nil
	})

	return result, err
}
