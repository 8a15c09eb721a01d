package main

import (
	"log"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/journey-booking/internal/config"
	"github.com/iliyamo/journey-booking/internal/database"
	"github.com/iliyamo/journey-booking/internal/handler"
	"github.com/iliyamo/journey-booking/internal/ledger"
	"github.com/iliyamo/journey-booking/internal/middleware"
	"github.com/iliyamo/journey-booking/internal/queue"
	"github.com/iliyamo/journey-booking/internal/ratelimit"
	"github.com/iliyamo/journey-booking/internal/repository"
	"github.com/iliyamo/journey-booking/internal/router"
	"github.com/iliyamo/journey-booking/internal/service"
)

func main() {
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// Redis is optional; without it the public catalogue is served
	// uncached.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Println("redis unavailable, response cache disabled")
	}

	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	cities := repository.NewCityRepo(db)
	journeys := repository.NewJourneyRepo(db)
	bookings := repository.NewBookingRepo(db)

	led := ledger.New(bookings)
	svc := service.NewBookingService(journeys, cities, bookings, led)

	limits := config.LoadRateLimits()
	global := newLimiter(limits.Global)
	public := newLimiter(limits.Public)
	traveller := newLimiter(limits.Traveller)
	driver := newLimiter(limits.Driver)
	go pruneLoop(limits, global, public, traveller, driver)

	// Background consumer appends booking events to logs/booking.log.
	go queue.StartBookingConsumer(cfg.RabbitURL)

	e := echo.New()
	e.HideBanner = true

	router.Register(e, router.Deps{
		JWTSecret: cfg.JWTSecret,

		Auth:          handler.NewAuthHandler(cfg, users, tokens),
		Public:        handler.NewPublicHandler(cities, journeys, svc),
		Traveller:     handler.NewTravellerHandler(svc, bookings, journeys, cities, cfg.RabbitURL),
		Driver:        handler.NewDriverHandler(journeys, bookings),
		AdminJourneys: handler.NewAdminJourneyHandler(journeys, cities, bookings, users, svc),
		AdminDrivers:  handler.NewAdminDriverHandler(cfg, users, journeys),
		AdminBookings: handler.NewAdminBookingHandler(bookings, svc),

		GlobalLimiter:    global,
		PublicLimiter:    public,
		TravellerLimiter: traveller,
		DriverLimiter:    driver,

		Cache: middleware.NewRedisCache(config.LoadCacheConfig(), rdb),
	})

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}

// newLimiter builds a token bucket from config, or nil when the budget
// is disabled.
func newLimiter(cfg config.RateLimitConfig) *ratelimit.Limiter {
	if !cfg.Enabled {
		return nil
	}
	return ratelimit.New(cfg.Capacity, cfg.RefillTokens, cfg.RefillInterval)
}

// pruneLoop periodically drops idle, fully-refilled buckets so the
// limiter maps stay bounded by active clients.
func pruneLoop(limits config.RateLimits, limiters ...*ratelimit.Limiter) {
	ticker := time.NewTicker(limits.PruneInterval)
	defer ticker.Stop()
	for range ticker.C {
		for _, l := range limiters {
			if l != nil {
				l.PruneIdle(limits.PruneAfter)
			}
		}
	}
}
