package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/journey-booking/internal/ledger"
	"github.com/iliyamo/journey-booking/internal/model"
	"github.com/iliyamo/journey-booking/internal/queue"
	"github.com/iliyamo/journey-booking/internal/repository"
	"github.com/iliyamo/journey-booking/internal/service"
)

// TravellerHandler serves booking endpoints for authenticated
// travellers.
type TravellerHandler struct {
	Svc      *service.BookingService
	Bookings *repository.BookingRepo
	Journeys *repository.JourneyRepo
	Cities   *repository.CityRepo

	// RabbitURL is the broker for booking events; empty disables
	// publishing.
	RabbitURL string
}

func NewTravellerHandler(svc *service.BookingService, bookings *repository.BookingRepo, journeys *repository.JourneyRepo, cities *repository.CityRepo, rabbitURL string) *TravellerHandler {
	return &TravellerHandler{Svc: svc, Bookings: bookings, Journeys: journeys, Cities: cities, RabbitURL: rabbitURL}
}

type createBookingReq struct {
	JourneyID uint64  `json:"journey_id"`
	Seats     int     `json:"seats"`
	PickupLat float64 `json:"pickup_lat"`
	PickupLng float64 `json:"pickup_lng"`
}

type bookingView struct {
	ID        uint64    `json:"id"`
	JourneyID uint64    `json:"journey_id"`
	Seats     int       `json:"seats"`
	PickupLat float64   `json:"pickup_lat"`
	PickupLng float64   `json:"pickup_lng"`
	CreatedAt time.Time `json:"created_at"`
}

// CreateBooking reserves seats on a journey for the current traveller.
func (h *TravellerHandler) CreateBooking(c echo.Context) error {
	uid, ok := getUserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req createBookingReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	b, err := h.Svc.CreateBooking(ctx, uid, req.JourneyID, req.Seats, req.PickupLat, req.PickupLng)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrJourneyNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "journey not found"})
		case errors.Is(err, service.ErrPastJourney):
			return c.JSON(http.StatusConflict, echo.Map{"error": "journey already departed"})
		case errors.Is(err, ledger.ErrInvalidSeatCount):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "seats must be positive"})
		case errors.Is(err, service.ErrInvalidPickupPoint):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid pickup coordinates"})
		case errors.Is(err, ledger.ErrInsufficientCapacity):
			return c.JSON(http.StatusConflict, echo.Map{"error": "not enough seats available"})
		case errors.Is(err, service.ErrPickupOutOfRange):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "pickup point outside origin city radius"})
		case errors.Is(err, repository.ErrDuplicateBooking):
			return c.JSON(http.StatusConflict, echo.Map{"error": "already booked on this journey"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create booking failed"})
	}

	h.publishEvent(queue.EventBookingCreated, b)

	return c.JSON(http.StatusCreated, bookingView{
		ID: b.ID, JourneyID: b.JourneyID, Seats: b.Seats,
		PickupLat: b.PickupLat, PickupLng: b.PickupLng, CreatedAt: b.CreatedAt,
	})
}

// MyBookings lists the traveller's bookings, newest first.
func (h *TravellerHandler) MyBookings(c echo.Context) error {
	uid, ok := getUserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	bookings, err := h.Bookings.ListByUser(ctx, uid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	out := make([]bookingView, 0, len(bookings))
	for _, b := range bookings {
		out = append(out, bookingView{
			ID: b.ID, JourneyID: b.JourneyID, Seats: b.Seats,
			PickupLat: b.PickupLat, PickupLng: b.PickupLng, CreatedAt: b.CreatedAt,
		})
	}
	return c.JSON(http.StatusOK, echo.Map{"bookings": out})
}

// CancelBooking cancels the traveller's own booking and frees its
// seats.
func (h *TravellerHandler) CancelBooking(c echo.Context) error {
	uid, ok := getUserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	// Snapshot before deletion so the cancelled event still has data.
	b, err := h.Bookings.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrBookingNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	if err := h.Svc.CancelBooking(ctx, uid, id); err != nil {
		switch {
		case errors.Is(err, repository.ErrBookingNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
		case errors.Is(err, repository.ErrForbidden):
			return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
		case errors.Is(err, service.ErrJourneyDeparted):
			return c.JSON(http.StatusConflict, echo.Map{"error": "journey already departed"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "cancel booking failed"})
	}

	h.publishEvent(queue.EventBookingCancelled, b)

	return c.JSON(http.StatusOK, echo.Map{"message": "booking cancelled"})
}

// publishEvent pushes a booking event to the broker in the background.
// Failures are logged inside the publisher and never surface to the
// client.
func (h *TravellerHandler) publishEvent(evType queue.EventType, b *model.Booking) {
	if h.RabbitURL == "" {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		ev := queue.BookingEvent{
			Type:       evType,
			BookingID:  b.ID,
			JourneyID:  b.JourneyID,
			UserID:     b.UserID,
			Seats:      b.Seats,
			OccurredAt: time.Now().UTC().Format(time.RFC3339),
		}
		if j, err := h.Journeys.GetByID(ctx, b.JourneyID); err == nil {
			ev.DepartureTime = j.DepartureTime.Format(time.RFC3339)
			if origin, err := h.Cities.GetByID(ctx, j.OriginCityID); err == nil {
				ev.OriginCity = origin.Name
			}
			if dest, err := h.Cities.GetByID(ctx, j.DestinationCityID); err == nil {
				ev.DestinationCity = dest.Name
			}
		}
		_ = queue.PublishBookingEvent(ctx, h.RabbitURL, ev)
	}()
}
