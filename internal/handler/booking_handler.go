package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/careconnect/caregiver-booking/internal/dto"
	"github.com/careconnect/caregiver-booking/internal/models"
	"github.com/careconnect/caregiver-booking/internal/service"
	"github.com/labstack/echo/v4"
)

type BookingHandler struct {
	svc service.BookingService
}

func NewBookingHandler(svc service.BookingService) *BookingHandler {
	return &BookingHandler{svc: svc}
}

func (h *BookingHandler) RegisterRoutes(e *echo.Echo) {
	bookings := e.Group("/api/v1/bookings")
	bookings.POST("", h.CreateBooking)
	bookings.GET("/:id", h.GetBooking)
	bookings.PATCH("/:id/status", h.UpdateBookingStatus)

	e.GET("/api/v1/parents/:id/bookings", h.ListParentBookings)
	e.GET("/api/v1/caregivers/:id/bookings", h.ListCaregiverBookings)
}

func (h *BookingHandler) CreateBooking(c echo.Context) error {
	var req dto.CreateBookingRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.ParentID == "" || req.CaregiverID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "parent_id and caregiver_id are required")
	}
	if !req.EndTime.After(req.StartTime) {
		return echo.NewHTTPError(http.StatusBadRequest, "end_time must be after start_time")
	}

	booking, created, err := h.svc.CreateBooking(c.Request().Context(), service.CreateBookingInput{
		ParentID:      req.ParentID,
		CaregiverID:   req.CaregiverID,
		StartTime:     req.StartTime,
		EndTime:       req.EndTime,
		ChildrenCount: req.ChildrenCount,
		SlotID:        req.SlotID,
		SpotsNeeded:   req.SpotsNeeded,
		HourlyRate:    req.HourlyRate,
		TotalHours:    req.TotalHours,
		Subtotal:      req.Subtotal,
		PlatformFee:   req.PlatformFee,
		TotalAmount:   req.TotalAmount,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrCaregiverNotFound):
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		case errors.Is(err, service.ErrNotACaregiver):
			return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
		case errors.Is(err, service.ErrSlotNotFound):
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		case errors.Is(err, service.ErrInsufficientCapacity), errors.Is(err, service.ErrSlotNotBookable):
			return echo.NewHTTPError(http.StatusConflict, err.Error())
		default:
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
	}

	// Duplicate submissions return the pre-existing booking with 200.
	code := http.StatusCreated
	if !created {
		code = http.StatusOK
	}
	return c.JSON(code, dto.ToBookingResponse(booking))
}

func (h *BookingHandler) GetBooking(c echo.Context) error {
	booking, err := h.svc.GetBooking(c.Request().Context(), c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "booking not found")
	}
	return c.JSON(http.StatusOK, dto.ToBookingResponse(booking))
}

func (h *BookingHandler) UpdateBookingStatus(c echo.Context) error {
	var req dto.UpdateBookingStatusRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	booking, err := h.svc.UpdateBookingStatus(c.Request().Context(), c.Param("id"), models.BookingStatus(req.Status))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrBookingNotFound):
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		case errors.Is(err, service.ErrInvalidTransition):
			return echo.NewHTTPError(http.StatusConflict, err.Error())
		default:
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
	}
	return c.JSON(http.StatusOK, dto.ToBookingResponse(booking))
}

func (h *BookingHandler) ListParentBookings(c echo.Context) error {
	return h.listBookings(c, h.svc.ListBookingsByParent)
}

func (h *BookingHandler) ListCaregiverBookings(c echo.Context) error {
	return h.listBookings(c, h.svc.ListBookingsByCaregiver)
}

func (h *BookingHandler) listBookings(c echo.Context, list func(ctx context.Context, id string, status *models.BookingStatus) ([]models.Booking, error)) error {
	var status *models.BookingStatus
	if s := c.QueryParam("status"); s != "" {
		bs := models.BookingStatus(s)
		status = &bs
	}

	bookings, err := list(c.Request().Context(), c.Param("id"), status)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	resp := make([]dto.BookingResponse, len(bookings))
	for i, b := range bookings {
		resp[i] = dto.ToBookingResponse(&b)
	}
	return c.JSON(http.StatusOK, resp)
}
