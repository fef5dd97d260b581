package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/careconnect/caregiver-booking/internal/dto"
	"github.com/careconnect/caregiver-booking/internal/models"
	"github.com/careconnect/caregiver-booking/internal/repository"
	"github.com/careconnect/caregiver-booking/internal/service"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

// --- Mock SlotService ---

type mockSlotService struct {
	createFn       func(ctx context.Context, input service.CreateSlotInput) (*models.AvailabilitySlot, error)
	getFn          func(ctx context.Context, id string) (*models.AvailabilitySlot, error)
	getAvailableFn func(ctx context.Context, filter repository.SlotFilter) ([]models.AvailabilitySlot, error)
	updateStatusFn func(ctx context.Context, slotID string, status models.SlotStatus) (*models.AvailabilitySlot, error)
	retireFn       func(ctx context.Context, slotID string) error
}

func (m *mockSlotService) CreateSlot(ctx context.Context, input service.CreateSlotInput) (*models.AvailabilitySlot, error) {
	return m.createFn(ctx, input)
}
func (m *mockSlotService) GetSlot(ctx context.Context, id string) (*models.AvailabilitySlot, error) {
	return m.getFn(ctx, id)
}
func (m *mockSlotService) GetAvailableSlots(ctx context.Context, filter repository.SlotFilter) ([]models.AvailabilitySlot, error) {
	return m.getAvailableFn(ctx, filter)
}
func (m *mockSlotService) UpdateSlotStatus(ctx context.Context, slotID string, status models.SlotStatus) (*models.AvailabilitySlot, error) {
	return m.updateStatusFn(ctx, slotID, status)
}
func (m *mockSlotService) RetireSlot(ctx context.Context, slotID string) error {
	return m.retireFn(ctx, slotID)
}

// --- Mock AvailabilityService ---

type mockAvailabilityService struct {
	getFn func(ctx context.Context, caregiverID string, date time.Time) ([]service.SlotAvailability, error)
}

func (m *mockAvailabilityService) GetRealTimeAvailability(ctx context.Context, caregiverID string, date time.Time) ([]service.SlotAvailability, error) {
	return m.getFn(ctx, caregiverID, date)
}

func sampleSlot() *models.AvailabilitySlot {
	return &models.AvailabilitySlot{
		ID:               "s-1",
		CaregiverID:      "c-1",
		Date:             time.Date(2025, 8, 19, 0, 0, 0, 0, time.UTC),
		StartTime:        time.Date(2025, 8, 19, 9, 0, 0, 0, time.UTC),
		EndTime:          time.Date(2025, 8, 19, 17, 0, 0, 0, time.UTC),
		TotalCapacity:    4,
		CurrentOccupancy: 0,
		AvailableSpots:   4,
		BaseRate:         25,
		CurrentRate:      25,
		Status:           models.SlotAvailable,
	}
}

// --- Tests ---

func TestCreateSlot_Handler_Success(t *testing.T) {
	svc := &mockSlotService{
		createFn: func(ctx context.Context, input service.CreateSlotInput) (*models.AvailabilitySlot, error) {
			assert.Equal(t, "c-1", input.CaregiverID)
			assert.Equal(t, "2025-08-19", input.Date)
			if assert.NotNil(t, input.Config.TotalCapacity) {
				assert.Equal(t, 4, *input.Config.TotalCapacity)
			}
			return sampleSlot(), nil
		},
	}

	e := echo.New()
	body := `{"caregiver_id":"c-1","date":"2025-08-19","start_time":"09:00","end_time":"17:00","total_capacity":4}`
	c, rec := postJSON(e, "/api/v1/slots", body)

	h := NewSlotHandler(svc, nil, nil)
	err := h.CreateSlot(c)

	assert.NoError(t, err)
	assert.Equal(t, http.StatusCreated, rec.Code)

	var resp dto.SlotResponse
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "2025-08-19", resp.Date)
	assert.Equal(t, 4, resp.AvailableSpots)
}

func TestCreateSlot_Handler_Duplicate(t *testing.T) {
	svc := &mockSlotService{
		createFn: func(ctx context.Context, input service.CreateSlotInput) (*models.AvailabilitySlot, error) {
			return nil, service.ErrDuplicateSlot
		},
	}

	e := echo.New()
	body := `{"caregiver_id":"c-1","date":"2025-08-19","start_time":"09:00","end_time":"17:00"}`
	c, _ := postJSON(e, "/api/v1/slots", body)

	h := NewSlotHandler(svc, nil, nil)
	err := h.CreateSlot(c)

	he, ok := err.(*echo.HTTPError)
	assert.True(t, ok)
	assert.Equal(t, http.StatusConflict, he.Code)
}

func TestCreateSlot_Handler_MissingFields(t *testing.T) {
	e := echo.New()
	c, _ := postJSON(e, "/api/v1/slots", `{"caregiver_id":"c-1"}`)

	h := NewSlotHandler(nil, nil, nil)
	err := h.CreateSlot(c)

	he, ok := err.(*echo.HTTPError)
	assert.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, he.Code)
}

func TestGetAvailableSlots_Handler_Filters(t *testing.T) {
	svc := &mockSlotService{
		getAvailableFn: func(ctx context.Context, filter repository.SlotFilter) ([]models.AvailabilitySlot, error) {
			assert.Equal(t, "c-1", filter.CaregiverID)
			assert.Equal(t, time.Date(2025, 8, 18, 0, 0, 0, 0, time.UTC), filter.DateFrom)
			assert.Equal(t, time.Date(2025, 8, 20, 0, 0, 0, 0, time.UTC), filter.DateTo)
			assert.Equal(t, 2, filter.MinAvailable)
			return []models.AvailabilitySlot{*sampleSlot()}, nil
		},
	}

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/slots?caregiver_id=c-1&date_from=2025-08-18&date_to=2025-08-20&min_available=2", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	h := NewSlotHandler(svc, nil, nil)
	assert.NoError(t, h.GetAvailableSlots(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp []dto.SlotResponse
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp, 1)
}

func TestGetRealTimeAvailability_Handler(t *testing.T) {
	availabilitySvc := &mockAvailabilityService{
		getFn: func(ctx context.Context, caregiverID string, date time.Time) ([]service.SlotAvailability, error) {
			assert.Equal(t, "c-1", caregiverID)
			slot := sampleSlot()
			slot.CurrentOccupancy = 1
			return []service.SlotAvailability{{
				Slot:               *slot,
				Available:          2,
				ReservedSpots:      1,
				ActiveReservations: 1,
			}}, nil
		},
	}

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/caregivers/c-1/availability?date=2025-08-19", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("c-1")

	h := NewSlotHandler(nil, availabilitySvc, nil)
	assert.NoError(t, h.GetRealTimeAvailability(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp []dto.AvailabilityResponse
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	if assert.Len(t, resp, 1) {
		assert.Equal(t, 2, resp[0].Available)
		assert.Equal(t, 1, resp[0].ReservedSpots)
		assert.Equal(t, 1, resp[0].ActiveReservations)
	}
}

func TestUpdateSlotStatus_Handler_UnknownStatus(t *testing.T) {
	e := echo.New()
	c, _ := postJSON(e, "/api/v1/slots/s-1/status", `{"status":"NONSENSE"}`)
	c.SetParamNames("id")
	c.SetParamValues("s-1")

	h := NewSlotHandler(nil, nil, nil)
	err := h.UpdateSlotStatus(c)

	he, ok := err.(*echo.HTTPError)
	assert.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, he.Code)
}
