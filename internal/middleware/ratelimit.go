package middleware

import (
	"math"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/journey-booking/internal/ratelimit"
)

// RateLimit admits requests through the given token bucket, keyed by
// keyFn. Every response carries X-RateLimit-Limit and
// X-RateLimit-Remaining; a rejected request gets 429 with a
// Retry-After header. A nil limiter disables the middleware, matching
// how the cache degrades when redis is absent.
func RateLimit(l *ratelimit.Limiter, keyFn func(echo.Context) string) echo.MiddlewareFunc {
	if l == nil {
		return func(next echo.HandlerFunc) echo.HandlerFunc {
			return func(c echo.Context) error { return next(c) }
		}
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			d := l.Take(keyFn(c))

			c.Response().Header().Set("X-RateLimit-Limit", strconv.Itoa(d.Limit))
			c.Response().Header().Set("X-RateLimit-Remaining", strconv.Itoa(d.Remaining))

			if !d.Allowed {
				secs := int(math.Ceil(d.RetryAfter.Seconds()))
				if secs < 0 {
					secs = 0
				}
				c.Response().Header().Set("Retry-After", strconv.Itoa(secs))
				return c.JSON(http.StatusTooManyRequests, echo.Map{
					"error":       "too_many_requests",
					"message":     "rate limit exceeded",
					"retry_after": secs,
				})
			}
			return next(c)
		}
	}
}

// RateLimitByIP applies a bucket per client address. Used for the
// global pre-auth budget.
func RateLimitByIP(l *ratelimit.Limiter) echo.MiddlewareFunc {
	return RateLimit(l, ipKey)
}

// RateLimitByUser applies a bucket per authenticated user, falling
// back to the client address for anonymous traffic. Used for the
// per-role budgets.
func RateLimitByUser(l *ratelimit.Limiter) echo.MiddlewareFunc {
	return RateLimit(l, identityKey)
}
