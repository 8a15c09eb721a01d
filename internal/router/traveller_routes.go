package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/journey-booking/internal/middleware"
	"github.com/iliyamo/journey-booking/internal/model"
)

func registerTraveller(e *echo.Echo, d Deps) {
	g := e.Group("/v1/bookings",
		middleware.JWTAuth(d.JWTSecret),
		middleware.RequireRole(model.RoleTraveller),
		middleware.RateLimitByUser(d.TravellerLimiter),
	)
	g.POST("", d.Traveller.CreateBooking)
	g.GET("", d.Traveller.MyBookings)
	g.DELETE("/:id", d.Traveller.CancelBooking)
}
