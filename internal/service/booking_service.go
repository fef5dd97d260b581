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

// BookingEventPublisher delivers best-effort signals to external
// collaborators (chat room creation, lifecycle events). Matches the rabbitmq
// publisher; a nil publisher disables messaging entirely.
type BookingEventPublisher interface {
	Publish(routingKey string, payload any) error
}

// CreateBookingInput is the direct booking path's request. Pricing numbers
// come from the payment collaborator and are persisted as given. SlotID is
// optional; when present the slot's capacity is enforced.
type CreateBookingInput struct {
	ParentID      string
	CaregiverID   string
	StartTime     time.Time
	EndTime       time.Time
	ChildrenCount int
	SlotID        string
	SpotsNeeded   int

	HourlyRate  float64
	TotalHours  float64
	Subtotal    float64
	PlatformFee float64
	TotalAmount float64
}

type BookingService interface {
	ConvertReservationToBooking(ctx context.Context, reservationID, bookingID string) (*models.BookingReservation, error)
	// CreateBooking returns false when a duplicate submission was suppressed
	// and the pre-existing booking returned instead.
	CreateBooking(ctx context.Context, input CreateBookingInput) (*models.Booking, bool, error)
	GetBooking(ctx context.Context, id string) (*models.Booking, error)
	ListBookingsByParent(ctx context.Context, parentID string, status *models.BookingStatus) ([]models.Booking, error)
	ListBookingsByCaregiver(ctx context.Context, caregiverID string, status *models.BookingStatus) ([]models.Booking, error)
	UpdateBookingStatus(ctx context.Context, bookingID string, status models.BookingStatus) (*models.Booking, error)
}

type bookingService struct {
	bookingRepo     repository.BookingRepository
	reservationRepo repository.ReservationRepository
	slotRepo        repository.SlotRepository
	userRepo        repository.UserRepository
	publisher       BookingEventPublisher
}

func NewBookingService(
	bookingRepo repository.BookingRepository,
	reservationRepo repository.ReservationRepository,
	slotRepo repository.SlotRepository,
	userRepo repository.UserRepository,
	publisher BookingEventPublisher,
) BookingService {
	return &bookingService{
		bookingRepo:     bookingRepo,
		reservationRepo: reservationRepo,
		slotRepo:        slotRepo,
		userRepo:        userRepo,
		publisher:       publisher,
	}
}

// ConvertReservationToBooking finalizes a hold: the reservation flips to
// CONVERTED_TO_BOOKING, the slot's occupancy absorbs the held spots, and the
// slot-booking linkage freezes the rate in effect right now. One transaction;
// a reservation converts at most once. Holds past their deadline are not
// convertible even if no sweep has marked them yet.
func (s *bookingService) ConvertReservationToBooking(ctx context.Context, reservationID, bookingID string) (*models.BookingReservation, error) {
	var result *models.BookingReservation

	err := s.bookingRepo.GetDB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		reservation, err := s.reservationRepo.FindByIDForUpdate(ctx, tx, reservationID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrReservationNotFound
			}
			return err
		}

		if reservation.Status != models.ReservationActive || reservation.Lapsed(time.Now()) {
			return ErrReservationNotActive
		}

		slot, err := s.slotRepo.FindByIDForUpdate(ctx, tx, reservation.SlotID)
		if err != nil {
			return err
		}

		if err := s.reservationRepo.MarkConverted(ctx, tx, reservation.ID, bookingID); err != nil {
			return err
		}
		reservation.Status = models.ReservationConverted
		reservation.BookingID = &bookingID

		// The hold already subtracted from AvailableSpots; conversion only
		// moves the spots into permanent occupancy.
		slot.CurrentOccupancy += reservation.ReservedSpots
		refreshCapacityStatus(slot)
		if err := s.slotRepo.Save(ctx, tx, slot); err != nil {
			return err
		}

		slotBooking := &models.SlotBooking{
			ID:            uuid.NewString(),
			BookingID:     bookingID,
			SlotID:        slot.ID,
			SpotsUsed:     reservation.ReservedSpots,
			ChildrenCount: reservation.ChildrenCount,
			RateApplied:   slot.CurrentRate,
		}
		if err := s.bookingRepo.CreateSlotBooking(ctx, tx, slotBooking); err != nil {
			return err
		}

		result = reservation
		return nil
	})

	return result, err
}

// CreateBooking is the direct path used when no prior hold exists. It still
// enforces slot capacity and suppresses duplicate submissions by returning
// the pre-existing booking.
func (s *bookingService) CreateBooking(ctx context.Context, input CreateBookingInput) (*models.Booking, bool, error) {
	user, err := s.userRepo.FindByID(ctx, input.CaregiverID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, ErrCaregiverNotFound
		}
		return nil, false, err
	}
	if user.CaregiverProfile == nil {
		return nil, false, ErrNotACaregiver
	}

	var result *models.Booking
	created := false

	err = s.bookingRepo.GetDB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, err := s.bookingRepo.FindDuplicate(ctx, tx, input.ParentID, input.CaregiverID, input.StartTime, input.EndTime)
		if err == nil {
			result = existing
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		childrenCount := input.ChildrenCount
		if childrenCount <= 0 {
			childrenCount = 1
		}

		booking := &models.Booking{
			ID:            uuid.NewString(),
			ParentID:      input.ParentID,
			CaregiverID:   input.CaregiverID,
			StartTime:     input.StartTime,
			EndTime:       input.EndTime,
			ChildrenCount: childrenCount,
			HourlyRate:    input.HourlyRate,
			TotalHours:    input.TotalHours,
			Subtotal:      input.Subtotal,
			PlatformFee:   input.PlatformFee,
			TotalAmount:   input.TotalAmount,
			Status:        models.BookingPending,
		}
		if err := s.bookingRepo.Create(ctx, tx, booking); err != nil {
			return err
		}

		if input.SlotID != "" {
			if err := s.consumeSlotCapacity(ctx, tx, booking, input.SlotID, input.SpotsNeeded); err != nil {
				return err
			}
		}

		result = booking
		created = true
		return nil
	})
	if err != nil {
		return nil, false, err
	}

	if created {
		s.requestChatRoom(result)
	}
	return result, created, nil
}

// consumeSlotCapacity applies the same capacity discipline as ReserveSpots
// inside the booking transaction: lock, check, write. The direct path never
// bypasses the invariant the reservation path enforces.
func (s *bookingService) consumeSlotCapacity(ctx context.Context, tx *gorm.DB, booking *models.Booking, slotID string, spotsNeeded int) error {
	if spotsNeeded <= 0 {
		spotsNeeded = 1
	}

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
	if slot.AvailableSpots < spotsNeeded || slot.CurrentOccupancy+spotsNeeded > slot.TotalCapacity {
		return ErrInsufficientCapacity
	}

	slot.AvailableSpots -= spotsNeeded
	slot.CurrentOccupancy += spotsNeeded
	refreshCapacityStatus(slot)

	profile, err := s.userRepo.FindCaregiverProfile(ctx, slot.CaregiverID)
	if err == nil {
		applyDynamicPricing(slot, profile)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	if err := s.slotRepo.Save(ctx, tx, slot); err != nil {
		return err
	}

	slotBooking := &models.SlotBooking{
		ID:            uuid.NewString(),
		BookingID:     booking.ID,
		SlotID:        slot.ID,
		SpotsUsed:     spotsNeeded,
		ChildrenCount: booking.ChildrenCount,
		RateApplied:   slot.CurrentRate,
	}
	return s.bookingRepo.CreateSlotBooking(ctx, tx, slotBooking)
}

func (s *bookingService) GetBooking(ctx context.Context, id string) (*models.Booking, error) {
	booking, err := s.bookingRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}
	return booking, nil
}

func (s *bookingService) ListBookingsByParent(ctx context.Context, parentID string, status *models.BookingStatus) ([]models.Booking, error) {
	return s.bookingRepo.FindByParentID(ctx, parentID, status)
}

func (s *bookingService) ListBookingsByCaregiver(ctx context.Context, caregiverID string, status *models.BookingStatus) ([]models.Booking, error) {
	return s.bookingRepo.FindByCaregiverID(ctx, caregiverID, status)
}

// validTransitions encodes the booking lifecycle:
// PENDING → CONFIRMED/IN_PROGRESS → COMPLETED, with CANCELLED and DISPUTED
// as side exits.
var validTransitions = map[models.BookingStatus][]models.BookingStatus{
	models.BookingPending:    {models.BookingConfirmed, models.BookingCancelled},
	models.BookingConfirmed:  {models.BookingInProgress, models.BookingCancelled, models.BookingDisputed},
	models.BookingInProgress: {models.BookingCompleted, models.BookingDisputed},
	models.BookingCompleted:  {models.BookingDisputed},
}

func (s *bookingService) UpdateBookingStatus(ctx context.Context, bookingID string, status models.BookingStatus) (*models.Booking, error) {
	booking, err := s.GetBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	allowed := false
	for _, next := range validTransitions[booking.Status] {
		if next == status {
			allowed = true
			break
		}
	}
	if !allowed {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, booking.Status, status)
	}

	if err := s.bookingRepo.UpdateStatus(ctx, s.bookingRepo.GetDB(), bookingID, status); err != nil {
		return nil, err
	}
	booking.Status = status
	return booking, nil
}

// requestChatRoom signals the messaging collaborator to open a parent to
// caregiver channel for the booking. Fire and forget: the booking is already
// committed and a messaging outage must not unwind it.
func (s *bookingService) requestChatRoom(booking *models.Booking) {
	if s.publisher == nil {
		return
	}
	payload := map[string]string{
		"booking_id":   booking.ID,
		"parent_id":    booking.ParentID,
		"caregiver_id": booking.CaregiverID,
	}
	if err := s.publisher.Publish("booking.chat_requested", payload); err != nil {
		logger.Get().Warn("chat room request failed, messaging collaborator may retry",
			zap.String("booking_id", booking.ID),
			zap.Error(err))
	}
}
