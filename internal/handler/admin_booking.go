package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/journey-booking/internal/ledger"
	"github.com/iliyamo/journey-booking/internal/repository"
	"github.com/iliyamo/journey-booking/internal/service"
)

// AdminBookingHandler lets administrators inspect and correct
// bookings, including the deliberate-overbooking escape hatch.
type AdminBookingHandler struct {
	Bookings *repository.BookingRepo
	Svc      *service.BookingService
}

func NewAdminBookingHandler(bookings *repository.BookingRepo, svc *service.BookingService) *AdminBookingHandler {
	return &AdminBookingHandler{Bookings: bookings, Svc: svc}
}

type overrideSeatsReq struct {
	Seats int `json:"seats"`
}

type adminBookingView struct {
	bookingView
	UserID uint64 `json:"user_id"`
}

// List returns every booking in the system, newest first.
func (h *AdminBookingHandler) List(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	bookings, err := h.Bookings.ListAll(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	out := make([]adminBookingView, 0, len(bookings))
	for _, b := range bookings {
		out = append(out, adminBookingView{
			bookingView: bookingView{
				ID: b.ID, JourneyID: b.JourneyID, Seats: b.Seats,
				PickupLat: b.PickupLat, PickupLng: b.PickupLng, CreatedAt: b.CreatedAt,
			},
			UserID: b.UserID,
		})
	}
	return c.JSON(http.StatusOK, echo.Map{"bookings": out})
}

// OverrideSeats rewrites a booking's seat count with no capacity
// check. This is the administrative escape hatch; availability may go
// negative afterwards.
func (h *AdminBookingHandler) OverrideSeats(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
	}
	var req overrideSeatsReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	b, err := h.Svc.AdminOverrideSeats(ctx, id, req.Seats)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrBookingNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
		case errors.Is(err, ledger.ErrInvalidSeatCount):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "seats must be positive"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "override failed"})
	}
	return c.JSON(http.StatusOK, adminBookingView{
		bookingView: bookingView{
			ID: b.ID, JourneyID: b.JourneyID, Seats: b.Seats,
			PickupLat: b.PickupLat, PickupLng: b.PickupLng, CreatedAt: b.CreatedAt,
		},
		UserID: b.UserID,
	})
}

// Delete removes any booking regardless of owner or journey state.
func (h *AdminBookingHandler) Delete(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Svc.AdminCancelBooking(ctx, id); err != nil {
		if errors.Is(err, repository.ErrBookingNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete booking failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "booking deleted"})
}
