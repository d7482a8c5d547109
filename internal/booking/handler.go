package booking

import (
	"net/http"

	"GHXPortal/internal/auth"
	"GHXPortal/pkg/request"
	"GHXPortal/pkg/response"

	"github.com/labstack/echo/v4"
)

type BookingHandler struct {
	service *BookingService
}

func NewBookingHandler(service *BookingService) *BookingHandler {
	return &BookingHandler{service: service}
}

func (h *BookingHandler) ListBookings(c echo.Context) error {
	userID, err := auth.CurrentUserID(c)
	if err != nil {
		return err
	}
	items, err := h.service.ListMine(c.Request().Context(), userID, c.QueryParam("upcoming") == "true")
	if err != nil {
		return err
	}
	return response.OK(c, http.StatusOK, ToBookingResponses(items), "")
}

func (h *BookingHandler) CreateBooking(c echo.Context) error {
	userID, err := auth.CurrentUserID(c)
	if err != nil {
		return err
	}
	var req CreateBookingRequest
	if err := request.Bind(c, &req); err != nil {
		return err
	}
	b, err := h.service.CreateBooking(c.Request().Context(), userID, req)
	if err != nil {
		return err
	}
	return response.OK(c, http.StatusCreated, ToBookingResponse(b), "Session booked successfully")
}

func (h *BookingHandler) CancelBooking(c echo.Context) error {
	userID, err := auth.CurrentUserID(c)
	if err != nil {
		return err
	}
	id, err := request.ObjectID(c, "id")
	if err != nil {
		return err
	}
	b, err := h.service.CancelBooking(c.Request().Context(), userID, id)
	if err != nil {
		return err
	}
	return response.OK(c, http.StatusOK, ToBookingResponse(b), "Booking cancelled")
}
