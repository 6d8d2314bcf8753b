package services

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRateLimitService(t *testing.T) (*RateLimitService, *testClock) {
	t.Helper()

	clock := newTestClock(time.Date(2024, time.March, 1, 12, 0, 0, 0, time.UTC))
	svc := NewRateLimitService(newTestDatabase(t))
	svc.now = clock.Now

	return svc, clock
}

func TestRateLimitService_BlocksAfterMaxRequests(t *testing.T) {
	svc, clock := newTestRateLimitService(t)

	for i := 1; i <= 5; i++ {
		allowed, info, err := svc.IsAllowed("10.0.0.1", EndpointSignup)
		require.NoError(t, err)
		require.True(t, allowed, "request %d", i)
		assert.Equal(t, 5-i, info.Remaining)
	}

	allowed, info, err := svc.IsAllowed("10.0.0.1", EndpointSignup)
	require.NoError(t, err)
	assert.False(t, allowed)
	require.NotNil(t, info.BlockedUntil)
	assert.Equal(t, clock.Now().Add(time.Hour), *info.BlockedUntil)

	// other callers keep their own counters
	allowed, _, err = svc.IsAllowed("10.0.0.2", EndpointSignup)
	require.NoError(t, err)
	assert.True(t, allowed)

	clock.Set(clock.Now().Add(30 * time.Minute))
	allowed, _, err = svc.IsAllowed("10.0.0.1", EndpointSignup)
	require.NoError(t, err)
	assert.False(t, allowed)

	clock.Set(clock.Now().Add(31 * time.Minute))
	allowed, info, err = svc.IsAllowed("10.0.0.1", EndpointSignup)
	require.NoError(t, err)
	assert.True(t, allowed)
	assert.Equal(t, 4, info.Remaining)
	assert.Nil(t, info.BlockedUntil)
}

func TestRateLimitService_WindowResets(t *testing.T) {
	svc, clock := newTestRateLimitService(t)

	for i := 0; i < 3; i++ {
		_, _, err := svc.IsAllowed("user-1", EndpointPinCheck)
		require.NoError(t, err)
	}

	clock.Set(clock.Now().Add(16 * time.Minute))

	allowed, info, err := svc.IsAllowed("user-1", EndpointPinCheck)
	require.NoError(t, err)
	assert.True(t, allowed)
	assert.Equal(t, 4, info.Remaining)
	assert.Equal(t, clock.Now().Add(15*time.Minute), *info.ResetTime)
}

func TestRateLimitService_UnknownEndpointIsUnlimited(t *testing.T) {
	svc, _ := newTestRateLimitService(t)

	allowed, info, err := svc.IsAllowed("10.0.0.1", "unknown")
	require.NoError(t, err)
	assert.True(t, allowed)
	assert.Equal(t, -1, info.Remaining)
}

func TestRateLimitService_Reset(t *testing.T) {
	svc, _ := newTestRateLimitService(t)

	for i := 0; i < 6; i++ {
		_, _, err := svc.IsAllowed("user-1", EndpointPinCheck)
		require.NoError(t, err)
	}
	require.NoError(t, svc.ResetRateLimit("user-1", EndpointPinCheck))

	allowed, info, err := svc.IsAllowed("user-1", EndpointPinCheck)
	require.NoError(t, err)
	assert.True(t, allowed)
	assert.Equal(t, 4, info.Remaining)
}

func TestRateLimitService_IPMiddleware(t *testing.T) {
	svc, _ := newTestRateLimitService(t)

	app := fiber.New()
	app.Post("/signup", svc.IPRateLimit(EndpointSignup), func(c *fiber.Ctx) error {
		return c.SendStatus(http.StatusCreated)
	})

	send := func(ip string) *http.Response {
		req := httptest.NewRequest(http.MethodPost, "/signup", nil)
		req.Header.Set("X-Forwarded-For", ip+", 172.16.0.1")
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		return resp
	}

	for i := 1; i <= 5; i++ {
		resp := send("203.0.113.7")
		require.Equal(t, http.StatusCreated, resp.StatusCode)
		assert.Equal(t, strconv.Itoa(5-i), resp.Header.Get("X-RateLimit-Remaining"))
	}

	resp := send("203.0.113.7")
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	assert.Equal(t, "3600", resp.Header.Get("Retry-After"))

	resp = send("198.51.100.1")
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
}
