package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/journey-booking/internal/middleware"
	"github.com/iliyamo/journey-booking/internal/model"
)

func registerDriver(e *echo.Echo, d Deps) {
	g := e.Group("/v1/driver",
		middleware.JWTAuth(d.JWTSecret),
		middleware.RequireRole(model.RoleDriver),
		middleware.RateLimitByUser(d.DriverLimiter),
	)
	g.GET("/journeys", d.Driver.MyJourneys)
	g.GET("/journeys/:id/passengers", d.Driver.Passengers)
}
