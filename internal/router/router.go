// Package router wires handlers, middleware and rate-limit budgets
// onto the Echo instance.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/journey-booking/internal/handler"
	"github.com/iliyamo/journey-booking/internal/middleware"
	"github.com/iliyamo/journey-booking/internal/ratelimit"
)

// Deps carries everything the route tree needs. Limiters may be nil,
// which disables the corresponding budget; Cache may be nil to skip
// response caching.
type Deps struct {
	JWTSecret string

	Auth          *handler.AuthHandler
	Public        *handler.PublicHandler
	Traveller     *handler.TravellerHandler
	Driver        *handler.DriverHandler
	AdminJourneys *handler.AdminJourneyHandler
	AdminDrivers  *handler.AdminDriverHandler
	AdminBookings *handler.AdminBookingHandler

	// GlobalLimiter is keyed by client address and applied to every
	// request before authentication. The role limiters are keyed by
	// user; administrators carry no role budget.
	GlobalLimiter    *ratelimit.Limiter
	PublicLimiter    *ratelimit.Limiter
	TravellerLimiter *ratelimit.Limiter
	DriverLimiter    *ratelimit.Limiter

	Cache echo.MiddlewareFunc
}

// Register sets up the full route tree.
func Register(e *echo.Echo, d Deps) {
	e.Use(middleware.RateLimitByIP(d.GlobalLimiter))

	e.GET("/healthz", handler.Health)

	registerAuth(e, d)
	registerPublic(e, d)
	registerTraveller(e, d)
	registerDriver(e, d)
	registerAdmin(e, d)
}

func registerAuth(e *echo.Echo, d Deps) {
	g := e.Group("/v1/auth", middleware.RateLimitByUser(d.PublicLimiter))
	g.POST("/register", d.Auth.Register)
	g.POST("/login", d.Auth.Login)
	g.POST("/refresh", d.Auth.Refresh)
	g.POST("/refresh-access", d.Auth.RefreshAccess)
	// Logout works with a refresh token in the body; no JWT required.
	g.POST("/logout", d.Auth.Logout)

	me := e.Group("/v1", middleware.JWTAuth(d.JWTSecret))
	me.GET("/me", d.Auth.Me)
	me.POST("/logout", d.Auth.Logout)
}

func registerPublic(e *echo.Echo, d Deps) {
	mws := []echo.MiddlewareFunc{middleware.RateLimitByUser(d.PublicLimiter)}
	if d.Cache != nil {
		mws = append(mws, d.Cache)
	}
	g := e.Group("/v1", mws...)
	g.GET("/cities", d.Public.ListCities)
	g.GET("/journeys", d.Public.ListJourneys)
	g.GET("/journeys/:id", d.Public.GetJourney)
}
