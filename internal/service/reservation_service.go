package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/careconnect/caregiver-booking/internal/models"
	"github.com/careconnect/caregiver-booking/internal/repository"
	"github.com/careconnect/caregiver-booking/pkg/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DefaultHoldTTL is how long a hold keeps spots off the market before it
// lapses unconverted.
const DefaultHoldTTL = 15 * time.Minute

type ReservationService interface {
	ReserveSpots(ctx context.Context, slotID, parentID string, childrenCount, reservedSpots int) (*models.BookingReservation, error)
	CancelReservation(ctx context.Context, reservationID string) (*models.BookingReservation, error)
	GetReservation(ctx context.Context, reservationID string) (*models.BookingReservation, error)
	CleanupExpiredReservations(ctx context.Context) (int, error)
}

type reservationService struct {
	reservationRepo repository.ReservationRepository
	slotRepo        repository.SlotRepository
	userRepo        repository.UserRepository
	holdTTL         time.Duration
}

func NewReservationService(reservationRepo repository.ReservationRepository, slotRepo repository.SlotRepository, userRepo repository.UserRepository, holdTTL time.Duration) ReservationService {
	if holdTTL <= 0 {
		holdTTL = DefaultHoldTTL
	}
	return &reservationService{
		reservationRepo: reservationRepo,
		slotRepo:        slotRepo,
		userRepo:        userRepo,
		holdTTL:         holdTTL,
	}
}

// ReserveSpots grants a time-boxed hold. The capacity check, the hold insert
// and the AvailableSpots decrement run under a row lock on the slot, so two
// parents racing for the last spot get exactly one success.
func (s *reservationService) ReserveSpots(ctx context.Context, slotID, parentID string, childrenCount, reservedSpots int) (*models.BookingReservation, error) {
	if reservedSpots <= 0 {
		return nil, fmt.Errorf("reserved spots must be positive, got %d", reservedSpots)
	}

	var result *models.BookingReservation

	err := s.slotRepo.GetDB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		slot, err := s.slotRepo.FindByIDForUpdate(ctx, tx, slotID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrSlotNotFound
			}
			return err
		}

		if !slot.Bookable() {
			return ErrSlotNotBookable
		}
		if slot.AvailableSpots < reservedSpots {
			return ErrInsufficientCapacity
		}

		reservation := &models.BookingReservation{
			ID:            uuid.NewString(),
			SlotID:        slot.ID,
			ParentID:      parentID,
			ChildrenCount: childrenCount,
			ReservedSpots: reservedSpots,
			Status:        models.ReservationActive,
			ExpiresAt:     time.Now().Add(s.holdTTL),
		}
		if err := s.reservationRepo.Create(ctx, tx, reservation); err != nil {
			return err
		}

		slot.AvailableSpots -= reservedSpots
		refreshCapacityStatus(slot)
		s.repriceLocked(ctx, slot)
		if err := s.slotRepo.Save(ctx, tx, slot); err != nil {
			return err
		}

		result = reservation
		return nil
	})

	return result, err
}

// CancelReservation releases a hold's spots back to the slot. Safe on a
// reservation that already reached a terminal state: the spots are credited
// exactly once.
func (s *reservationService) CancelReservation(ctx context.Context, reservationID string) (*models.BookingReservation, error) {
	return s.release(ctx, reservationID, models.ReservationCancelled)
}

func (s *reservationService) GetReservation(ctx context.Context, reservationID string) (*models.BookingReservation, error) {
	reservation, err := s.reservationRepo.FindByID(ctx, reservationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReservationNotFound
		}
		return nil, err
	}
	return reservation, nil
}

// release is shared by explicit cancellation and the expiry sweep. The status
// check runs under the reservation row lock so a concurrent conversion,
// cancel, or sweep sees exactly one of them win.
func (s *reservationService) release(ctx context.Context, reservationID string, to models.ReservationStatus) (*models.BookingReservation, error) {
	var result *models.BookingReservation

	err := s.slotRepo.GetDB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		reservation, err := s.reservationRepo.FindByIDForUpdate(ctx, tx, reservationID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrReservationNotFound
			}
			return err
		}

		// Already terminal: nothing to credit back.
		if reservation.Status != models.ReservationActive {
			result = reservation
			return nil
		}

		slot, err := s.slotRepo.FindByIDForUpdate(ctx, tx, reservation.SlotID)
		if err != nil {
			return err
		}

		if err := s.reservationRepo.UpdateStatus(ctx, tx, reservation.ID, to); err != nil {
			return err
		}
		reservation.Status = to

		slot.AvailableSpots += reservation.ReservedSpots
		refreshCapacityStatus(slot)
		s.repriceLocked(ctx, slot)
		if err := s.slotRepo.Save(ctx, tx, slot); err != nil {
			return err
		}

		result = reservation
		return nil
	})

	return result, err
}

// CleanupExpiredReservations reclaims capacity from holds nobody converted.
// Runs on a cron cadence; correctness does not depend on it because every
// availability read discounts lapsed holds on its own.
func (s *reservationService) CleanupExpiredReservations(ctx context.Context) (int, error) {
	expired, err := s.reservationRepo.FindExpired(ctx, time.Now())
	if err != nil {
		return 0, err
	}

	processed := 0
	for _, reservation := range expired {
		if _, err := s.release(ctx, reservation.ID, models.ReservationExpired); err != nil {
			logger.Get().Warn("failed to release expired reservation",
				zap.String("reservation_id", reservation.ID),
				zap.Error(err))
			continue
		}
		processed++
	}

	if processed > 0 {
		logger.Get().Info("expired reservations swept", zap.Int("count", processed))
	}
	return processed, nil
}

// repriceLocked recomputes dynamic pricing for a slot already held under a
// row lock. Pricing failures never abort a capacity change.
func (s *reservationService) repriceLocked(ctx context.Context, slot *models.AvailabilitySlot) {
	profile, err := s.userRepo.FindCaregiverProfile(ctx, slot.CaregiverID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Get().Warn("could not load caregiver profile for repricing",
				zap.String("slot_id", slot.ID), zap.Error(err))
		}
		return
	}
	applyDynamicPricing(slot, profile)
}
