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

// PublicHandler serves the unauthenticated catalogue: cities and
// upcoming journeys with live availability.
type PublicHandler struct {
	Cities   *repository.CityRepo
	Journeys *repository.JourneyRepo
	Svc      *service.BookingService
}

func NewPublicHandler(cities *repository.CityRepo, journeys *repository.JourneyRepo, svc *service.BookingService) *PublicHandler {
	return &PublicHandler{Cities: cities, Journeys: journeys, Svc: svc}
}

type cityView struct {
	ID             uint64  `json:"id"`
	Name           string  `json:"name"`
	CenterLat      float64 `json:"center_lat"`
	CenterLng      float64 `json:"center_lng"`
	PickupRadiusKm float64 `json:"pickup_radius_km"`
}

type journeyView struct {
	ID              uint64    `json:"id"`
	OriginCity      string    `json:"origin_city"`
	DestinationCity string    `json:"destination_city"`
	DepartureTime   time.Time `json:"departure_time"`
	TotalSeats      int       `json:"total_seats"`
	AvailableSeats  int       `json:"available_seats"`
	HasDriver       bool      `json:"has_driver"`
}

// ListCities returns all cities ordered by name.
func (h *PublicHandler) ListCities(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	cities, err := h.Cities.List(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	out := make([]cityView, 0, len(cities))
	for _, ct := range cities {
		out = append(out, cityView{
			ID: ct.ID, Name: ct.Name,
			CenterLat: ct.CenterLat, CenterLng: ct.CenterLng,
			PickupRadiusKm: ct.PickupRadiusKm,
		})
	}
	return c.JSON(http.StatusOK, echo.Map{"cities": out})
}

// ListJourneys returns upcoming journeys with seat availability. Past
// journeys are filtered out; travellers cannot book them anyway.
func (h *PublicHandler) ListJourneys(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	journeys, err := h.Journeys.List(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	names, err := h.cityNames(c)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	now := time.Now().UTC()
	out := make([]journeyView, 0, len(journeys))
	for i := range journeys {
		j := &journeys[i]
		if j.Departed(now) {
			continue
		}
		avail, err := h.Svc.AvailableSeats(ctx, j.ID)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
		}
		out = append(out, viewOf(j, avail, names))
	}
	return c.JSON(http.StatusOK, echo.Map{"journeys": out})
}

// GetJourney returns one journey with availability, departed or not.
func (h *PublicHandler) GetJourney(c echo.Context) error {
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
	avail, err := h.Svc.AvailableSeats(ctx, j.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	names, err := h.cityNames(c)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, viewOf(j, avail, names))
}

func (h *PublicHandler) cityNames(c echo.Context) (map[uint64]string, error) {
	ctx, cancel := reqCtx(c)
	defer cancel()

	cities, err := h.Cities.List(ctx)
	if err != nil {
		return nil, err
	}
	names := make(map[uint64]string, len(cities))
	for _, ct := range cities {
		names[ct.ID] = ct.Name
	}
	return names, nil
}

func viewOf(j *model.Journey, avail int, names map[uint64]string) journeyView {
	return journeyView{
		ID:              j.ID,
		OriginCity:      names[j.OriginCityID],
		DestinationCity: names[j.DestinationCityID],
		DepartureTime:   j.DepartureTime,
		TotalSeats:      j.TotalSeats,
		AvailableSeats:  avail,
		HasDriver:       j.DriverID != nil,
	}
}
