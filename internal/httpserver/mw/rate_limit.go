package mw

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/MrSnakeDoc/savelater/internal/logger"
	"github.com/MrSnakeDoc/savelater/internal/utils"
)

// RateLimitConfig sizes the per-device limits on /api. Devices are told
// apart by client IP.
type RateLimitConfig struct {
	Burst      int // 0 => disabled
	PerMinute  int
	MaxClients int           // tracked clients before an early sweep
	IdleTTL    time.Duration // forget clients idle this long
	TrustProxy bool
}

type client struct {
	lim      *rate.Limiter
	lastSeen time.Time
}

type limiter struct {
	cfg   RateLimitConfig
	every rate.Limit

	mu        sync.Mutex
	clients   map[string]*client
	lastSweep time.Time
}

func newLimiter(cfg RateLimitConfig, now time.Time) *limiter {
	if cfg.PerMinute < 1 {
		cfg.PerMinute = 1
	}
	if cfg.IdleTTL <= 0 {
		cfg.IdleTTL = 15 * time.Minute
	}
	return &limiter{
		cfg:       cfg,
		every:     rate.Limit(float64(cfg.PerMinute) / 60),
		clients:   make(map[string]*client),
		lastSweep: now,
	}
}

// reserve takes one token for key. When none is available it returns the
// wait before the next one, rounded up to whole seconds.
func (l *limiter) reserve(key string, now time.Time) (ok bool, remaining, retryAfter int) {
	l.mu.Lock()
	if now.Sub(l.lastSweep) >= l.cfg.IdleTTL ||
		(l.cfg.MaxClients > 0 && len(l.clients) >= l.cfg.MaxClients) {
		l.sweep(now)
	}
	c := l.clients[key]
	if c == nil {
		c = &client{lim: rate.NewLimiter(l.every, l.cfg.Burst)}
		l.clients[key] = c
	}
	c.lastSeen = now
	l.mu.Unlock()

	r := c.lim.ReserveN(now, 1)
	if delay := r.DelayFrom(now); delay > 0 {
		r.CancelAt(now)
		return false, 0, max(1, int(math.Ceil(delay.Seconds())))
	}
	return true, max(0, int(c.lim.TokensAt(now))), 0
}

func (l *limiter) sweep(now time.Time) {
	for key, c := range l.clients {
		if now.Sub(c.lastSeen) > l.cfg.IdleTTL {
			delete(l.clients, key)
		}
	}
	l.lastSweep = now
}

// RateLimit throttles /api per client. A zero Burst disables it.
func RateLimit(cfg RateLimitConfig, log logger.Logger) func(http.Handler) http.Handler {
	if cfg.Burst <= 0 {
		log.Debug("RateLimit: disabled, passthrough mode")
		return func(next http.Handler) http.Handler { return next }
	}

	l := newLimiter(cfg, time.Now())
	limit := strconv.Itoa(cfg.Burst)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := utils.ClientIP(r, cfg.TrustProxy)

			ok, remaining, retry := l.reserve(key, time.Now())
			w.Header().Set("X-RateLimit-Limit", limit)
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
			if !ok {
				log.Warn("rate limit exceeded",
					logger.String("client_ip", key),
					logger.Int("retry_after_s", retry))
				w.Header().Set("Retry-After", strconv.Itoa(retry))
				http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
