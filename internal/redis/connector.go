// Package redis opens the go-redis client used by the key-value LocalStore.
package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/savelater/internal/logger"
)

// ConnectOptions defines Redis connection retry behavior.
type ConnectOptions struct {
	Addr           string        // Redis address (ex: "localhost:6379")
	User           string        // Optional username
	Password       string        // Optional password
	RedisDB        int           // Redis DB number
	DialTimeout    time.Duration // Redis dial timeout
	ReadTimeout    time.Duration // Redis read timeout
	WriteTimeout   time.Duration // Redis write timeout
	PoolSize       int           // Redis connection pool size
	ConnectTimeout time.Duration // Total time allowed for connection attempts (ex: 10s)
	RetryInterval  time.Duration // Initial wait between retries (grows exponentially)
	MaxWait        time.Duration // max wait between retries (ex: 5s)
	PingTimeout    time.Duration // timeout for each ping attempt (ex: 2s)
	WarnThreshold  int           // warn after this many attempts
}

func (o ConnectOptions) validate() error {
	if o.Addr == "" {
		return fmt.Errorf("Addr must be set")
	}
	if o.ConnectTimeout <= 0 {
		return fmt.Errorf("ConnectTimeout must be > 0, got %v", o.ConnectTimeout)
	}
	if o.RetryInterval <= 0 {
		return fmt.Errorf("RetryInterval must be > 0, got %v", o.RetryInterval)
	}
	if o.MaxWait <= 0 {
		return fmt.Errorf("MaxWait must be > 0, got %v", o.MaxWait)
	}
	if o.PingTimeout <= 0 {
		return fmt.Errorf("PingTimeout must be > 0, got %v", o.PingTimeout)
	}
	if o.WarnThreshold < 0 {
		return fmt.Errorf("WarnThreshold must be >= 0, got %d", o.WarnThreshold)
	}
	return nil
}

// New creates a Redis client and pings it until it answers or
// ConnectTimeout elapses. The wait between pings grows exponentially up to MaxWait.
func New(ctx context.Context, opts ConnectOptions, log logger.Logger) (*redis.Client, error) {
	if err := opts.validate(); err != nil {
		log.Error("invalid redis options", logger.Error(err))
		return nil, err
	}

	client := redis.NewClient(&redis.Options{
		Addr:         opts.Addr,
		Username:     opts.User,
		Password:     opts.Password,
		DB:           opts.RedisDB,
		DialTimeout:  opts.DialTimeout,
		ReadTimeout:  opts.ReadTimeout,
		WriteTimeout: opts.WriteTimeout,
		PoolSize:     opts.PoolSize,
	})

	if err := connectWithRetry(ctx, client, opts, log); err != nil {
		_ = client.Close()
		return nil, err
	}
	return client, nil
}

func newBackOff(opts ConnectOptions) *backoff.ExponentialBackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = opts.RetryInterval
	b.MaxInterval = opts.MaxWait
	b.MaxElapsedTime = opts.ConnectTimeout
	b.Multiplier = 2
	b.RandomizationFactor = 0
	b.Reset()
	return b
}

func connectWithRetry(ctx context.Context, client *redis.Client, opts ConnectOptions, log logger.Logger) error {
	log = log.With(logger.String("addr", opts.Addr))
	log.Info("connecting to redis", logger.Duration("timeout", opts.ConnectTimeout))

	start := time.Now()
	attempt := 0

	ping := func() error {
		attempt++
		pingCtx, cancel := context.WithTimeout(ctx, opts.PingTimeout)
		defer cancel()
		return client.Ping(pingCtx).Err()
	}

	notify := func(err error, next time.Duration) {
		fields := []logger.Field{
			logger.Int("attempt", attempt),
			logger.Duration("next_retry_in", next),
			logger.Error(err),
		}
		if attempt <= opts.WarnThreshold {
			log.Warn("redis connection failed, retrying", fields...)
			return
		}
		log.Error("redis still unavailable - connection attempts failing", fields...)
	}

	err := backoff.RetryNotify(ping, backoff.WithContext(newBackOff(opts), ctx), notify)
	if err != nil {
		log.Error("redis unavailable - failed to connect after timeout",
			logger.Int("attempts", attempt),
			logger.Duration("timeout", opts.ConnectTimeout),
			logger.Error(err))
		return fmt.Errorf("redis unavailable at %s after %d attempts (timeout: %v): %w",
			opts.Addr, attempt, opts.ConnectTimeout, err)
	}

	if attempt > 1 {
		log.Warn("connected to redis after retry",
			logger.Int("attempts", attempt),
			logger.Duration("elapsed", time.Since(start)))
	} else {
		log.Info("connected to redis")
	}
	return nil
}
