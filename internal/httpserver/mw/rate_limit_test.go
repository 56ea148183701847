package mw

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrSnakeDoc/savelater/internal/logger"
)

func TestLimiterReserve(t *testing.T) {
	now := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)
	l := newLimiter(RateLimitConfig{Burst: 2, PerMinute: 60}, now)

	ok, remaining, _ := l.reserve("10.0.0.1", now)
	assert.True(t, ok)
	assert.Equal(t, 1, remaining)

	ok, remaining, _ = l.reserve("10.0.0.1", now)
	assert.True(t, ok)
	assert.Equal(t, 0, remaining)

	ok, _, retry := l.reserve("10.0.0.1", now)
	assert.False(t, ok)
	assert.Equal(t, 1, retry)

	ok, _, _ = l.reserve("10.0.0.2", now)
	assert.True(t, ok, "clients are limited independently")

	ok, _, _ = l.reserve("10.0.0.1", now.Add(time.Second))
	assert.True(t, ok, "one token refills per second at 60/min")
}

func TestLimiterSweepsIdleClients(t *testing.T) {
	now := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)
	l := newLimiter(RateLimitConfig{Burst: 1, PerMinute: 1, IdleTTL: time.Minute}, now)

	l.reserve("10.0.0.1", now)
	l.reserve("10.0.0.2", now.Add(2*time.Minute))

	l.mu.Lock()
	defer l.mu.Unlock()
	assert.NotContains(t, l.clients, "10.0.0.1")
	assert.Contains(t, l.clients, "10.0.0.2")
}

func TestRateLimit(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	t.Run("disabled", func(t *testing.T) {
		h := RateLimit(RateLimitConfig{}, logger.Nop())(ok)
		for i := 0; i < 5; i++ {
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/hyperlinks", nil))
			require.Equal(t, http.StatusOK, rec.Code)
		}
	})

	t.Run("rejects over burst", func(t *testing.T) {
		h := RateLimit(RateLimitConfig{Burst: 1, PerMinute: 1}, logger.Nop())(ok)

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/hyperlinks", nil))
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "1", rec.Header().Get("X-RateLimit-Limit"))

		rec = httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/hyperlinks", nil))
		assert.Equal(t, http.StatusTooManyRequests, rec.Code)
		assert.NotEmpty(t, rec.Header().Get("Retry-After"))
	})
}
