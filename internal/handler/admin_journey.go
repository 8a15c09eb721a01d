package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/journey-booking/internal/model"
	"github.com/iliyamo/journey-booking/internal/repository"
	"github.com/iliyamo/journey-booking/internal/service"
)

// AdminJourneyHandler serves journey management for administrators.
type AdminJourneyHandler struct {
	Journeys *repository.JourneyRepo
	Cities   *repository.CityRepo
	Bookings *repository.BookingRepo
	Users    *repository.UserRepo
	Svc      *service.BookingService
}

func NewAdminJourneyHandler(journeys *repository.JourneyRepo, cities *repository.CityRepo, bookings *repository.BookingRepo, users *repository.UserRepo, svc *service.BookingService) *AdminJourneyHandler {
	return &AdminJourneyHandler{Journeys: journeys, Cities: cities, Bookings: bookings, Users: users, Svc: svc}
}

type journeyReq struct {
	OriginCityID      uint64    `json:"origin_city_id"`
	DestinationCityID uint64    `json:"destination_city_id"`
	DepartureTime     time.Time `json:"departure_time"`
	TotalSeats        int       `json:"total_seats"`
}

type assignDriverReq struct {
	DriverID *uint64 `json:"driver_id"` // null unassigns
}

type adminJourneyView struct {
	ID                uint64    `json:"id"`
	OriginCityID      uint64    `json:"origin_city_id"`
	DestinationCityID uint64    `json:"destination_city_id"`
	DepartureTime     time.Time `json:"departure_time"`
	TotalSeats        int       `json:"total_seats"`
	AvailableSeats    int       `json:"available_seats"`
	DriverID          *uint64   `json:"driver_id"`
	CreatedAt         time.Time `json:"created_at"`
}

// validateJourney checks the shared create/update constraints. A zero
// error string means the request is acceptable.
func (h *AdminJourneyHandler) validateJourney(c echo.Context, req *journeyReq) string {
	if req.OriginCityID == 0 || req.DestinationCityID == 0 {
		return "origin and destination required"
	}
	if req.OriginCityID == req.DestinationCityID {
		return "origin and destination must differ"
	}
	if req.TotalSeats <= 0 {
		return "total_seats must be positive"
	}
	if req.DepartureTime.IsZero() {
		return "departure_time required"
	}

	ctx, cancel := reqCtx(c)
	defer cancel()
	for _, id := range []uint64{req.OriginCityID, req.DestinationCityID} {
		if _, err := h.Cities.GetByID(ctx, id); err != nil {
			return "unknown city"
		}
	}
	return ""
}

// Create registers a journey between two cities.
func (h *AdminJourneyHandler) Create(c echo.Context) error {
	var req journeyReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if msg := h.validateJourney(c, &req); msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	j := &model.Journey{
		OriginCityID:      req.OriginCityID,
		DestinationCityID: req.DestinationCityID,
		DepartureTime:     req.DepartureTime.UTC(),
		TotalSeats:        req.TotalSeats,
	}
	if err := h.Journeys.Create(ctx, j); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create journey failed"})
	}
	return c.JSON(http.StatusCreated, h.view(c, j))
}

// Update replaces a journey's route, departure and capacity. Shrinking
// total seats below the booked count is allowed; existing bookings are
// never revoked and availability goes negative instead.
func (h *AdminJourneyHandler) Update(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid journey id"})
	}
	var req journeyReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if msg := h.validateJourney(c, &req); msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
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

	j.OriginCityID = req.OriginCityID
	j.DestinationCityID = req.DestinationCityID
	j.DepartureTime = req.DepartureTime.UTC()
	j.TotalSeats = req.TotalSeats
	if err := h.Journeys.Update(ctx, j); err != nil {
		if errors.Is(err, repository.ErrJourneyNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "journey not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update journey failed"})
	}
	return c.JSON(http.StatusOK, h.view(c, j))
}

// Delete removes a journey; its bookings go with it via the foreign
// key cascade.
func (h *AdminJourneyHandler) Delete(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid journey id"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Journeys.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrJourneyNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "journey not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete journey failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "journey deleted"})
}

// List returns every journey, departed ones included, with
// availability.
func (h *AdminJourneyHandler) List(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	journeys, err := h.Journeys.List(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	out := make([]adminJourneyView, 0, len(journeys))
	for i := range journeys {
		out = append(out, h.view(c, &journeys[i]))
	}
	return c.JSON(http.StatusOK, echo.Map{"journeys": out})
}

// AssignDriver sets or clears the journey's driver. The target user
// must hold the driver role.
func (h *AdminJourneyHandler) AssignDriver(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid journey id"})
	}
	var req assignDriverReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if req.DriverID != nil {
		u, err := h.Users.GetByID(ctx, *req.DriverID)
		if err != nil {
			if errors.Is(err, repository.ErrUserNotFound) {
				return c.JSON(http.StatusNotFound, echo.Map{"error": "driver not found"})
			}
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
		}
		if u.Role != model.RoleDriver {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "user is not a driver"})
		}
	}

	if err := h.Journeys.AssignDriver(ctx, id, req.DriverID); err != nil {
		if errors.Is(err, repository.ErrJourneyNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "journey not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "assign driver failed"})
	}
	if req.DriverID == nil {
		return c.JSON(http.StatusOK, echo.Map{"message": "driver unassigned"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "driver assigned"})
}

// Passengers returns the manifest for any journey, no assignment check.
func (h *AdminJourneyHandler) Passengers(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid journey id"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if _, err := h.Journeys.GetByID(ctx, id); err != nil {
		if errors.Is(err, repository.ErrJourneyNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "journey not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
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

func (h *AdminJourneyHandler) view(c echo.Context, j *model.Journey) adminJourneyView {
	ctx, cancel := reqCtx(c)
	defer cancel()

	avail, err := h.Svc.AvailableSeats(ctx, j.ID)
	if err != nil {
		avail = 0
	}
	return adminJourneyView{
		ID:                j.ID,
		OriginCityID:      j.OriginCityID,
		DestinationCityID: j.DestinationCityID,
		DepartureTime:     j.DepartureTime,
		TotalSeats:        j.TotalSeats,
		AvailableSeats:    avail,
		DriverID:          j.DriverID,
		CreatedAt:         j.CreatedAt,
	}
}
