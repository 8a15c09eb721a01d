package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/journey-booking/internal/repository"
)

// DriverHandler serves the driver-facing endpoints: assigned journeys
// and the passenger manifest with pickup points.
type DriverHandler struct {
	Journeys *repository.JourneyRepo
	Bookings *repository.BookingRepo
}

func NewDriverHandler(journeys *repository.JourneyRepo, bookings *repository.BookingRepo) *DriverHandler {
	return &DriverHandler{Journeys: journeys, Bookings: bookings}
}

type driverJourneyView struct {
	ID                uint64    `json:"id"`
	OriginCityID      uint64    `json:"origin_city_id"`
	DestinationCityID uint64    `json:"destination_city_id"`
	DepartureTime     time.Time `json:"departure_time"`
	TotalSeats        int       `json:"total_seats"`
}

type passengerView struct {
	BookingID     uint64  `json:"booking_id"`
	PassengerName string  `json:"passenger_name"`
	Seats         int     `json:"seats"`
	PickupLat     float64 `json:"pickup_lat"`
	PickupLng     float64 `json:"pickup_lng"`
}

// MyJourneys lists journeys assigned to the current driver.
func (h *DriverHandler) MyJourneys(c echo.Context) error {
	uid, ok := getUserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	journeys, err := h.Journeys.ListByDriver(ctx, uid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	out := make([]driverJourneyView, 0, len(journeys))
	for _, j := range journeys {
		out = append(out, driverJourneyView{
			ID: j.ID, OriginCityID: j.OriginCityID, DestinationCityID: j.DestinationCityID,
			DepartureTime: j.DepartureTime, TotalSeats: j.TotalSeats,
		})
	}
	return c.JSON(http.StatusOK, echo.Map{"journeys": out})
}

// Passengers returns the manifest for one of the driver's journeys.
// Drivers only see journeys assigned to them.
func (h *DriverHandler) Passengers(c echo.Context) error {
	uid, ok := getUserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid journey id"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	j, err := h.Journeys.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrJourneyNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "journey not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if j.DriverID == nil || *j.DriverID != uid {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "journey not assigned to you"})
	}

	passengers, err := h.Bookings.PassengersByJourney(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	out := make([]passengerView, 0, len(passengers))
	for _, p := range passengers {
		out = append(out, passengerView{
			BookingID: p.BookingID, PassengerName: p.PassengerName,
			Seats: p.Seats, PickupLat: p.PickupLat, PickupLng: p.PickupLng,
		})
	}
	return c.JSON(http.StatusOK, echo.Map{"journey_id": id, "passengers": out})
}
