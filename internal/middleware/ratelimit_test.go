package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/journey-booking/internal/middleware"
	"github.com/iliyamo/journey-booking/internal/ratelimit"
)

func okHandler(c echo.Context) error { return c.String(http.StatusOK, "ok") }

func doRequest(t *testing.T, h echo.HandlerFunc, ip string, uid uint64) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = ip + ":12345"
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if uid != 0 {
		c.Set(middleware.CtxUserID, uid)
	}
	require.NoError(t, h(c))
	return rec
}

func TestRateLimitAllowsBurstThenRejects(t *testing.T) {
	h := middleware.RateLimitByIP(ratelimit.New(2, 2, time.Minute))(okHandler)

	for i := 0; i < 2; i++ {
		rec := doRequest(t, h, "10.0.0.1", 0)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "2", rec.Header().Get("X-RateLimit-Limit"))
	}

	rec := doRequest(t, h, "10.0.0.1", 0)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "0", rec.Header().Get("X-RateLimit-Remaining"))
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
	assert.Contains(t, rec.Body.String(), "too_many_requests")
}

func TestRateLimitKeysAddressesIndependently(t *testing.T) {
	h := middleware.RateLimitByIP(ratelimit.New(1, 1, time.Minute))(okHandler)

	assert.Equal(t, http.StatusOK, doRequest(t, h, "10.0.0.1", 0).Code)
	assert.Equal(t, http.StatusTooManyRequests, doRequest(t, h, "10.0.0.1", 0).Code)

	// A different client still has its full budget.
	assert.Equal(t, http.StatusOK, doRequest(t, h, "10.0.0.2", 0).Code)
}

func TestRateLimitByUserIgnoresAddress(t *testing.T) {
	h := middleware.RateLimitByUser(ratelimit.New(1, 1, time.Minute))(okHandler)

	assert.Equal(t, http.StatusOK, doRequest(t, h, "10.0.0.1", 7).Code)
	// Same user from a new address shares the exhausted bucket.
	assert.Equal(t, http.StatusTooManyRequests, doRequest(t, h, "10.0.0.9", 7).Code)
	// A different user is unaffected.
	assert.Equal(t, http.StatusOK, doRequest(t, h, "10.0.0.9", 8).Code)
}

func TestRateLimitNilLimiterPassesThrough(t *testing.T) {
	h := middleware.RateLimitByIP(nil)(okHandler)

	for i := 0; i < 5; i++ {
		assert.Equal(t, http.StatusOK, doRequest(t, h, "10.0.0.1", 0).Code)
	}
}
