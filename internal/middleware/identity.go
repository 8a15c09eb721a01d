package middleware

import (
	"strconv"

	"github.com/labstack/echo/v4"
)

// identityKey returns a stable per-user rate-limit key, or the client
// IP when the request carries no authenticated user. Role buckets key
// authenticated traffic by user so a traveller cannot dodge their
// budget by rotating addresses.
func identityKey(c echo.Context) string {
	if id, ok := c.Get(CtxUserID).(uint64); ok {
		return "user:" + strconv.FormatUint(id, 10)
	}
	ip := c.RealIP()
	if ip == "" {
		ip = "unknown"
	}
	return "ip:" + ip
}

// ipKey returns the client address key used by the pre-auth global
// bucket.
func ipKey(c echo.Context) string {
	ip := c.RealIP()
	if ip == "" {
		ip = "unknown"
	}
	return "ip:" + ip
}
