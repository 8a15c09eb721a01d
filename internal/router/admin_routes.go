package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/journey-booking/internal/middleware"
	"github.com/iliyamo/journey-booking/internal/model"
)

// Admin routes carry no role budget; administrators are only subject
// to the global pre-auth bucket.
func registerAdmin(e *echo.Echo, d Deps) {
	g := e.Group("/v1/admin",
		middleware.JWTAuth(d.JWTSecret),
		middleware.RequireRole(model.RoleAdmin),
	)

	g.POST("/journeys", d.AdminJourneys.Create)
	g.GET("/journeys", d.AdminJourneys.List)
	g.PUT("/journeys/:id", d.AdminJourneys.Update)
	g.DELETE("/journeys/:id", d.AdminJourneys.Delete)
	g.PUT("/journeys/:id/driver", d.AdminJourneys.AssignDriver)
	g.GET("/journeys/:id/passengers", d.AdminJourneys.Passengers)

	g.POST("/drivers", d.AdminDrivers.CreateDriver)
	g.GET("/drivers", d.AdminDrivers.ListDrivers)
	g.DELETE("/drivers/:id", d.AdminDrivers.DeleteDriver)

	g.GET("/bookings", d.AdminBookings.List)
	g.PUT("/bookings/:id/seats", d.AdminBookings.OverrideSeats)
	g.DELETE("/bookings/:id", d.AdminBookings.Delete)
}
