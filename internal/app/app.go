package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/MrSnakeDoc/savelater/internal/config"
	"github.com/MrSnakeDoc/savelater/internal/httpserver"
	"github.com/MrSnakeDoc/savelater/internal/httpserver/deps"
	"github.com/MrSnakeDoc/savelater/internal/httpserver/handlers"
	"github.com/MrSnakeDoc/savelater/internal/httpserver/mw"
	"github.com/MrSnakeDoc/savelater/internal/hyperlinkdb"
	"github.com/MrSnakeDoc/savelater/internal/logger"
	"github.com/MrSnakeDoc/savelater/internal/utils"
	"github.com/MrSnakeDoc/savelater/internal/version"
)

// App is the remote store server.
type App struct {
	cfg    *config.Server
	logger logger.Logger
	server *httpserver.Server
	store  hyperlinkdb.Store
}

func New() (*App, error) {
	cfg := config.LoadServer()

	loggerClient := logger.New(cfg.LogLevel, cfg.PrettyLog)

	store, err := openServerStore(context.Background(), cfg, loggerClient)
	if err != nil {
		return nil, err
	}

	// Dependencies passed to routes (extend as needed).
	d := deps.Deps{
		Logger:       loggerClient,
		StartTime:    time.Now(),
		Version:      version.Version,
		Commit:       version.Commit,
		BuildDate:    version.BuildDate,
		GoVersion:    version.GoVersion,
		TimeNow:      time.Now,
		AllowedCIDRS: cfg.AllowedCIDRS,
		TrustProxy:   cfg.TrustProxy,
		AuthToken:    cfg.AuthToken,
		Store:        store,
		Validate:     handlers.NewValidate(),
		RateLimit: mw.RateLimitConfig{
			Burst:      cfg.RateLimitBurst,
			PerMinute:  cfg.RateLimitPerMin,
			MaxClients: 10000,
			TrustProxy: cfg.TrustProxy,
		},
	}

	return &App{
		cfg:    cfg,
		logger: loggerClient,
		server: httpserver.New(cfg, loggerClient, d),
		store:  store,
	}, nil
}

func openServerStore(ctx context.Context, cfg *config.Server, log logger.Logger) (hyperlinkdb.Store, error) {
	if cfg.Store == config.ServerStoreMemory {
		log.Warn("using the memory store, records are lost on restart")
		return hyperlinkdb.NewMemoryStore(), nil
	}

	if cfg.MigrateOnStart {
		log.Info("applying database migrations")
		if err := hyperlinkdb.RunMigrations(cfg.DatabaseURL); err != nil {
			return nil, err
		}
	}

	// Fail fast if the database is unavailable
	db, err := hyperlinkdb.Connect(ctx, cfg.DatabaseURL,
		hyperlinkdb.WithMaxOpenConns(cfg.DBMaxOpenConns),
		hyperlinkdb.WithMaxIdleConns(cfg.DBMaxIdleConns),
		hyperlinkdb.WithConnMaxLifetime(cfg.DBConnMaxLife),
		hyperlinkdb.WithConnMaxIdleTime(cfg.DBConnMaxIdle),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}
	log.Info("postgres initialized successfully")

	return hyperlinkdb.NewPostgresStore(db), nil
}

func (a *App) Run() error {
	a.logger.Infof("🚀 Starting savelater-server v%s on %s", version.Version, a.cfg.ListenPort)
	a.logger.Info(version.String("savelater-server"))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	defer utils.MustClose(a.logger, "store", a.store)

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := a.server.Start(); err != nil {
			return fmt.Errorf("http server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		a.logger.Info("⏳ Shutting down gracefully...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
		defer cancel()
		if err := a.server.Stop(shutdownCtx); err != nil {
			return fmt.Errorf("failed to stop server: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}

	a.logger.Info("✅ savelater-server stopped cleanly")
	return nil
}
