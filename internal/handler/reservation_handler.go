package handler

import (
	"errors"
	"net/http"

	"github.com/careconnect/caregiver-booking/internal/dto"
	"github.com/careconnect/caregiver-booking/internal/service"
	"github.com/labstack/echo/v4"
)

type ReservationHandler struct {
	reservationSvc service.ReservationService
	bookingSvc     service.BookingService
}

func NewReservationHandler(reservationSvc service.ReservationService, bookingSvc service.BookingService) *ReservationHandler {
	return &ReservationHandler{reservationSvc: reservationSvc, bookingSvc: bookingSvc}
}

func (h *ReservationHandler) RegisterRoutes(e *echo.Echo) {
	reservations := e.Group("/api/v1/reservations")
	reservations.POST("", h.ReserveSpots)
	reservations.GET("/:id", h.GetReservation)
	reservations.DELETE("/:id", h.CancelReservation)
	reservations.POST("/:id/convert", h.ConvertToBooking)

	e.POST("/api/v1/maintenance/sweep", h.Sweep)
}

func (h *ReservationHandler) ReserveSpots(c echo.Context) error {
	var req dto.ReserveSpotsRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.SlotID == "" || req.ParentID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "slot_id and parent_id are required")
	}
	if req.ReservedSpots <= 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "reserved_spots must be greater than zero")
	}

	reservation, err := h.reservationSvc.ReserveSpots(c.Request().Context(), req.SlotID, req.ParentID, req.ChildrenCount, req.ReservedSpots)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrSlotNotFound):
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		case errors.Is(err, service.ErrInsufficientCapacity):
			return echo.NewHTTPError(http.StatusConflict, err.Error())
		case errors.Is(err, service.ErrSlotNotBookable):
			return echo.NewHTTPError(http.StatusConflict, err.Error())
		default:
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
	}

	return c.JSON(http.StatusCreated, dto.ToReservationResponse(reservation))
}

func (h *ReservationHandler) GetReservation(c echo.Context) error {
	reservation, err := h.reservationSvc.GetReservation(c.Request().Context(), c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "reservation not found")
	}
	return c.JSON(http.StatusOK, dto.ToReservationResponse(reservation))
}

func (h *ReservationHandler) CancelReservation(c echo.Context) error {
	reservation, err := h.reservationSvc.CancelReservation(c.Request().Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, service.ErrReservationNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, dto.ToReservationResponse(reservation))
}

func (h *ReservationHandler) ConvertToBooking(c echo.Context) error {
	var req dto.ConvertReservationRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.BookingID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "booking_id is required")
	}

	reservation, err := h.bookingSvc.ConvertReservationToBooking(c.Request().Context(), c.Param("id"), req.BookingID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrReservationNotFound):
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		case errors.Is(err, service.ErrReservationNotActive):
			return echo.NewHTTPError(http.StatusConflict, err.Error())
		default:
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
	}

	return c.JSON(http.StatusOK, dto.ToReservationResponse(reservation))
}

func (h *ReservationHandler) Sweep(c echo.Context) error {
	processed, err := h.reservationSvc.CleanupExpiredReservations(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, dto.SweepResponse{Processed: processed})
}
