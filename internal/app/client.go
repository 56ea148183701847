package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/MrSnakeDoc/savelater/internal/config"
	"github.com/MrSnakeDoc/savelater/internal/logger"
	"github.com/MrSnakeDoc/savelater/internal/redis"
	"github.com/MrSnakeDoc/savelater/internal/remote"
	"github.com/MrSnakeDoc/savelater/internal/repository"
	"github.com/MrSnakeDoc/savelater/internal/scheduler"
	"github.com/MrSnakeDoc/savelater/internal/store"
	"github.com/MrSnakeDoc/savelater/internal/store/memory"
	redisstore "github.com/MrSnakeDoc/savelater/internal/store/redis"
	"github.com/MrSnakeDoc/savelater/internal/store/sqlite"
	"github.com/MrSnakeDoc/savelater/internal/syncer"
)

// Client wires the device side: local store, optional remote, repository.
type Client struct {
	cfg    *config.Client
	logger logger.Logger
	local  store.LocalStore
	repo   *repository.Repository
}

// NewClient opens and initializes the configured local store. Sync is
// enabled only when both a remote URL and an owner are configured.
func NewClient(ctx context.Context, cfg *config.Client, log logger.Logger) (*Client, error) {
	local, err := OpenLocalStore(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	if err := local.Init(ctx); err != nil {
		_ = local.Close()
		return nil, fmt.Errorf("failed to initialize %s store: %w", cfg.Store, err)
	}

	opts := []repository.Option{repository.WithLogger(log)}
	switch {
	case cfg.RemoteURL != "" && cfg.Owner != "":
		rc := remote.NewHTTPClient(cfg.RemoteURL, remote.WithToken(cfg.RemoteToken))
		opts = append(opts, repository.WithSynchronizer(syncer.New(local, rc, cfg.Owner,
			syncer.WithCallTimeout(cfg.RemoteTimeout),
			syncer.WithLogger(log),
		)))
		log.Debug("sync enabled",
			logger.String("remote", cfg.RemoteURL),
			logger.String("owner", cfg.Owner))
	case cfg.RemoteURL != "":
		log.Warn("remote configured without SAVELATER_OWNER, sync disabled")
	default:
		log.Debug("no remote configured, offline only")
	}

	return &Client{
		cfg:    cfg,
		logger: log,
		local:  local,
		repo:   repository.New(local, cfg.Owner, opts...),
	}, nil
}

// OpenLocalStore builds the backend named by cfg.Store. Init is left to the caller.
func OpenLocalStore(ctx context.Context, cfg *config.Client, log logger.Logger) (store.LocalStore, error) {
	switch cfg.Store {
	case config.StoreSQLite:
		return sqlite.New(cfg.SQLitePath), nil
	case config.StoreMemory:
		return memory.New(), nil
	case config.StoreRedis:
		log.Infof("Connecting to Redis at %s", cfg.RedisAddr)
		client, err := redis.New(ctx, redis.ConnectOptions{
			Addr:           cfg.RedisAddr,
			User:           cfg.RedisUser,
			Password:       cfg.RedisPassword,
			RedisDB:        cfg.RedisDB,
			DialTimeout:    cfg.RedisDT,
			ReadTimeout:    cfg.RedisRT,
			WriteTimeout:   cfg.RedisWT,
			PoolSize:       cfg.RedisPoolSize,
			ConnectTimeout: cfg.RedisConnectTimeout,
			RetryInterval:  cfg.RedisRetryInterval,
			MaxWait:        cfg.RedisMaxWait,
			PingTimeout:    cfg.RedisPingTimeout,
			WarnThreshold:  cfg.RedisWarnThreshold,
		}, log)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		return redisstore.NewStore(client, cfg.RedisNamespace), nil
	default:
		return nil, fmt.Errorf("unknown store %q", cfg.Store)
	}
}

func (c *Client) Repository() *repository.Repository { return c.repo }

// SyncEnabled reports whether a remote and an owner are configured.
func (c *Client) SyncEnabled() bool {
	return c.cfg.RemoteURL != "" && c.cfg.Owner != ""
}

// RunDaemon keeps the local store in sync until SIGINT/SIGTERM.
// SIGHUP triggers an immediate cycle.
func (c *Client) RunDaemon(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	loop := scheduler.NewSyncLoop(c.repo, c.logger, c.cfg.SyncInterval, 0, c.cfg.SyncMaxBackoff)
	gc := scheduler.NewTombstoneCollector(c.repo, c.logger, c.cfg.GCInterval, c.cfg.TombstoneTTL)

	if err := loop.Start(ctx); err != nil {
		return fmt.Errorf("failed to start sync loop: %w", err)
	}
	c.logger.Info("sync loop started",
		logger.Duration("interval", c.cfg.SyncInterval),
		logger.Bool("remote", c.SyncEnabled()))

	if err := gc.Start(ctx); err != nil {
		loop.Stop()
		return fmt.Errorf("failed to start tombstone collector: %w", err)
	}

	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	defer signal.Stop(hup)

	for {
		select {
		case <-hup:
			if !loop.Trigger() {
				c.logger.Info("sync already pending")
			}
		case <-ctx.Done():
			c.logger.Info("⏳ Stopping daemon...")
			gc.Stop()
			loop.Stop()
			c.logger.Info("✅ daemon stopped cleanly")
			return nil
		}
	}
}

// Close releases the local store.
func (c *Client) Close() error {
	return c.local.Close()
}
