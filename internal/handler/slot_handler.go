package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/careconnect/caregiver-booking/internal/dto"
	"github.com/careconnect/caregiver-booking/internal/models"
	"github.com/careconnect/caregiver-booking/internal/repository"
	"github.com/careconnect/caregiver-booking/internal/service"
	"github.com/labstack/echo/v4"
)

type SlotHandler struct {
	slotSvc         service.SlotService
	availabilitySvc service.AvailabilityService
	pricingSvc      service.PricingService
}

func NewSlotHandler(slotSvc service.SlotService, availabilitySvc service.AvailabilityService, pricingSvc service.PricingService) *SlotHandler {
	return &SlotHandler{slotSvc: slotSvc, availabilitySvc: availabilitySvc, pricingSvc: pricingSvc}
}

func (h *SlotHandler) RegisterRoutes(e *echo.Echo) {
	slots := e.Group("/api/v1/slots")
	slots.POST("", h.CreateSlot)
	slots.GET("", h.GetAvailableSlots)
	slots.GET("/:id", h.GetSlot)
	slots.PATCH("/:id/status", h.UpdateSlotStatus)
	slots.DELETE("/:id", h.RetireSlot)
	slots.POST("/:id/reprice", h.Reprice)

	e.GET("/api/v1/caregivers/:id/availability", h.GetRealTimeAvailability)
}

func (h *SlotHandler) CreateSlot(c echo.Context) error {
	var req dto.CreateSlotRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.CaregiverID == "" || req.Date == "" || req.StartTime == "" || req.EndTime == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "caregiver_id, date, start_time and end_time are required")
	}

	slot, err := h.slotSvc.CreateSlot(c.Request().Context(), service.CreateSlotInput{
		CaregiverID: req.CaregiverID,
		Date:        req.Date,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		Config: service.SlotConfig{
			TotalCapacity:       req.TotalCapacity,
			BaseRate:            req.BaseRate,
			IsRecurring:         req.IsRecurring,
			RecurringPattern:    req.RecurringPattern,
			SpecialRequirements: req.SpecialRequirements,
			Notes:               req.Notes,
		},
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrCaregiverNotFound):
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		case errors.Is(err, service.ErrNotACaregiver):
			return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
		case errors.Is(err, service.ErrDuplicateSlot):
			return echo.NewHTTPError(http.StatusConflict, err.Error())
		default:
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
	}

	return c.JSON(http.StatusCreated, dto.ToSlotResponse(slot))
}

func (h *SlotHandler) GetSlot(c echo.Context) error {
	slot, err := h.slotSvc.GetSlot(c.Request().Context(), c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "slot not found")
	}
	return c.JSON(http.StatusOK, dto.ToSlotResponse(slot))
}

func (h *SlotHandler) GetAvailableSlots(c echo.Context) error {
	filter := repository.SlotFilter{
		CaregiverID: c.QueryParam("caregiver_id"),
	}

	if s := c.QueryParam("date_from"); s != "" {
		day, err := models.ParseDate(s)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid date_from")
		}
		filter.DateFrom = day
	}
	if s := c.QueryParam("date_to"); s != "" {
		day, err := models.ParseDate(s)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid date_to")
		}
		filter.DateTo = day
	}
	if s := c.QueryParam("status"); s != "" {
		filter.Status = models.SlotStatus(s)
	}
	if s := c.QueryParam("min_available"); s != "" {
		var minAvail int
		if err := echo.QueryParamsBinder(c).Int("min_available", &minAvail).BindError(); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid min_available")
		}
		filter.MinAvailable = minAvail
	}

	slots, err := h.slotSvc.GetAvailableSlots(c.Request().Context(), filter)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	resp := make([]dto.SlotResponse, len(slots))
	for i, slot := range slots {
		resp[i] = dto.ToSlotResponse(&slot)
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *SlotHandler) UpdateSlotStatus(c echo.Context) error {
	var req dto.UpdateSlotStatusRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	status := models.SlotStatus(req.Status)
	switch status {
	case models.SlotAvailable, models.SlotFull, models.SlotBlocked, models.SlotExpired:
	default:
		return echo.NewHTTPError(http.StatusBadRequest, "unknown slot status")
	}

	slot, err := h.slotSvc.UpdateSlotStatus(c.Request().Context(), c.Param("id"), status)
	if err != nil {
		if errors.Is(err, service.ErrSlotNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, dto.ToSlotResponse(slot))
}

func (h *SlotHandler) RetireSlot(c echo.Context) error {
	if err := h.slotSvc.RetireSlot(c.Request().Context(), c.Param("id")); err != nil {
		if errors.Is(err, service.ErrSlotNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *SlotHandler) Reprice(c echo.Context) error {
	slot, err := h.pricingSvc.UpdateDynamicPricing(c.Request().Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, service.ErrSlotNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, dto.ToSlotResponse(slot))
}

func (h *SlotHandler) GetRealTimeAvailability(c echo.Context) error {
	caregiverID := c.Param("id")

	dateStr := c.QueryParam("date")
	date := time.Now()
	if dateStr != "" {
		day, err := models.ParseDate(dateStr)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid date")
		}
		date = day
	}

	availability, err := h.availabilitySvc.GetRealTimeAvailability(c.Request().Context(), caregiverID, date)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	resp := make([]dto.AvailabilityResponse, len(availability))
	for i, a := range availability {
		resp[i] = dto.ToAvailabilityResponse(a)
	}
	return c.JSON(http.StatusOK, resp)
}
