package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/MrSnakeDoc/smartbookmark/internal/auth"
	"github.com/MrSnakeDoc/smartbookmark/internal/bookmarks"
	"github.com/MrSnakeDoc/smartbookmark/internal/config"
	"github.com/MrSnakeDoc/smartbookmark/internal/gateway"
	"github.com/MrSnakeDoc/smartbookmark/internal/httpserver"
	"github.com/MrSnakeDoc/smartbookmark/internal/httpserver/deps"
	"github.com/MrSnakeDoc/smartbookmark/internal/logger"
	"github.com/MrSnakeDoc/smartbookmark/internal/redis"
	"github.com/MrSnakeDoc/smartbookmark/internal/scheduler"
	redisstore "github.com/MrSnakeDoc/smartbookmark/internal/store/redis"
	"github.com/MrSnakeDoc/smartbookmark/internal/utils"
	"github.com/MrSnakeDoc/smartbookmark/internal/version"
)

type App struct {
	cfg          *config.Config
	logger       logger.Logger
	server       *httpserver.Server
	backend      gateway.Backend
	closeBackend utils.CloserFunc
	sweeper      *scheduler.PendingSweeper
}

// NewBackend opens the configured bookmark backend. The returned closer
// releases its connections.
func NewBackend(ctx context.Context, cfg *config.Config, loggerClient logger.Logger) (gateway.Backend, utils.CloserFunc, error) {
	switch cfg.Backend {
	case config.BackendMemory:
		loggerClient.Warn("using in-memory backend, bookmarks are lost on restart")
		return gateway.NewMemoryBackend(cfg.SubscriptionBuffer), nil, nil

	case config.BackendRedis:
		// Fail fast if Redis is unavailable
		loggerClient.Infof("Connecting to Redis at %s", cfg.RedisAddr)
		client, err := redis.New(ctx, redis.OptionsFromConfig(cfg), loggerClient)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		loggerClient.Info("Redis initialized successfully")
		store := redisstore.NewStore(client, loggerClient, cfg.SubscriptionBuffer)
		return store, client.Close, nil

	default:
		return nil, nil, fmt.Errorf("unknown backend %q", cfg.Backend)
	}
}

func New(ctx context.Context, cfg *config.Config, loggerClient logger.Logger) (*App, error) {
	authenticator, err := auth.New(cfg.JWTSecret, cfg.JWTIssuer, cfg.TokenTTL)
	if err != nil {
		return nil, err
	}

	backend, closeBackend, err := NewBackend(ctx, cfg, loggerClient)
	if err != nil {
		return nil, err
	}

	pending := bookmarks.NewPendingDeletes(cfg.DeleteConfirmTTL)
	sweeper := scheduler.NewPendingSweeper(pending, loggerClient, cfg.SweepInterval)

	// Dependencies passed to routes (extend as needed).
	d := deps.Deps{
		Logger:          loggerClient,
		StartTime:       time.Now(),
		Version:         version.Version,
		Commit:          version.Commit,
		BuildDate:       version.BuildDate,
		GoVersion:       version.GoVersion,
		TimeNow:         time.Now,
		AllowedHosts:    cfg.AllowedHosts,
		AllowedCIDRS:    cfg.AllowedCIDRS,
		TrustProxy:      cfg.TrustProxy,
		Backend:         backend,
		Auth:            authenticator,
		Pending:         pending,
		SnapshotLimit:   cfg.SnapshotLimit,
		RecentLimit:     cfg.RecentLimit,
		Location:        cfg.Location,
		RequestTimeout:  cfg.RequestTimeout,
		WSPingInterval:  cfg.WSPingInterval,
		RateLimitBurst:  cfg.RateLimitBurst,
		RateLimitPerMin: cfg.RateLimitPerMin,
		LiveSessions:    &atomic.Int64{},
	}

	return &App{
		cfg:          cfg,
		logger:       loggerClient,
		server:       httpserver.New(cfg, loggerClient, d),
		backend:      backend,
		closeBackend: closeBackend,
		sweeper:      sweeper,
	}, nil
}

func (a *App) Run(parent context.Context) error {
	a.logger.Infof("🚀 Starting %s %s on %s (backend=%s)",
		version.AppName, version.Version, a.cfg.ListenPort, a.backend.Kind())
	a.logger.Infof("%s %s (commit=%s, built=%s, go=%s)",
		version.AppName, version.Version, version.Commit, version.BuildDate, version.GoVersion)

	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	a.sweeper.Start(ctx)
	a.logger.Info("pending delete sweeper started",
		logger.Duration("interval", a.cfg.SweepInterval),
		logger.Duration("confirm_ttl", a.cfg.DeleteConfirmTTL))

	errCh := make(chan error, 1)
	go func() {
		if err := a.server.Start(); err != nil {
			errCh <- fmt.Errorf("http server error: %w", err)
		}
	}()

	var runErr error
	select {
	case <-ctx.Done():
		a.logger.Info("⏳ Shutting down gracefully...")
	case runErr = <-errCh:
	}

	a.sweeper.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()
	if err := a.server.Stop(shutdownCtx); err != nil && runErr == nil {
		runErr = fmt.Errorf("failed to stop server: %w", err)
	}

	utils.MustClose(a.closeBackend, a.logger, a.backend.Kind()+" backend")

	if runErr != nil {
		return runErr
	}
	a.logger.Infof("✅ %s stopped cleanly", version.AppName)
	return nil
}
