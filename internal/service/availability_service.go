package service

import (
	"context"
	"time"

	"github.com/careconnect/caregiver-booking/internal/models"
	"github.com/careconnect/caregiver-booking/internal/repository"
)

// SlotAvailability is the authoritative "can I book this right now" answer
// for one slot. Available is recomputed from occupancy plus live holds; the
// persisted AvailableSpots column is deliberately not trusted here because it
// can lag behind a hold's expiry until the sweeper runs.
type SlotAvailability struct {
	Slot               models.AvailabilitySlot `json:"slot"`
	Available          int                     `json:"available"`
	ReservedSpots      int                     `json:"reserved_spots"`
	ActiveReservations int                     `json:"active_reservations"`
}

type AvailabilityService interface {
	GetRealTimeAvailability(ctx context.Context, caregiverID string, date time.Time) ([]SlotAvailability, error)
}

type availabilityService struct {
	slotRepo        repository.SlotRepository
	reservationRepo repository.ReservationRepository
}

func NewAvailabilityService(slotRepo repository.SlotRepository, reservationRepo repository.ReservationRepository) AvailabilityService {
	return &availabilityService{slotRepo: slotRepo, reservationRepo: reservationRepo}
}

func (s *availabilityService) GetRealTimeAvailability(ctx context.Context, caregiverID string, date time.Time) ([]SlotAvailability, error) {
	slots, err := s.slotRepo.FindByCaregiverAndDate(ctx, caregiverID, models.NormalizeDate(date))
	if err != nil {
		return nil, err
	}
	if len(slots) == 0 {
		return []SlotAvailability{}, nil
	}

	slotIDs := make([]string, len(slots))
	for i, slot := range slots {
		slotIDs[i] = slot.ID
	}

	reservations, err := s.reservationRepo.FindActiveBySlotIDs(ctx, slotIDs)
	if err != nil {
		return nil, err
	}

	// Holds past their deadline stop counting the moment they lapse, even if
	// no sweep has reclaimed them. This keeps the answer self-healing.
	now := time.Now()
	type holdTally struct {
		spots int
		count int
	}
	held := make(map[string]holdTally, len(slots))
	for _, reservation := range reservations {
		if !reservation.Holding(now) {
			continue
		}
		tally := held[reservation.SlotID]
		tally.spots += reservation.ReservedSpots
		tally.count++
		held[reservation.SlotID] = tally
	}

	result := make([]SlotAvailability, len(slots))
	for i, slot := range slots {
		tally := held[slot.ID]
		available := slot.TotalCapacity - slot.CurrentOccupancy - tally.spots
		if available < 0 {
			available = 0
		}
		result[i] = SlotAvailability{
			Slot:               slot,
			Available:          available,
			ReservedSpots:      tally.spots,
			ActiveReservations: tally.count,
		}
	}
	return result, nil
}
