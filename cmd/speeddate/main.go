package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/speeddate-dev/speeddate/db"
	"github.com/speeddate-dev/speeddate/internal/auth"
	"github.com/speeddate-dev/speeddate/internal/authz"
	"github.com/speeddate-dev/speeddate/internal/config"
	"github.com/speeddate-dev/speeddate/internal/handlers"
	"github.com/speeddate-dev/speeddate/internal/logging"
	"github.com/speeddate-dev/speeddate/internal/middleware"
	"github.com/speeddate-dev/speeddate/internal/realtime"
	"github.com/speeddate-dev/speeddate/internal/router"
	"github.com/speeddate-dev/speeddate/internal/scheduler"
	"github.com/speeddate-dev/speeddate/internal/supervisor"
)

func main() {
	if err := run(); err != nil {
		logging.Fatal().Err(err).Msg("speeddate exited")
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logging.Init(logging.Config{Level: cfg.Logging.Level, Format: cfg.Logging.Format})

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := db.ConnectDatabase(cfg.Database.Driver, cfg.DSN()); err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	if err := db.MigrateDatabase(); err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}
	logging.Info().Str("driver", cfg.Database.Driver).Msg("database ready")

	var (
		store auth.SessionStore
		jobs  []scheduler.Job
	)

	switch cfg.Session.Store {
	case "memory":
		store = auth.NewMemorySessionStore()
	default:
		bdb, err := auth.OpenBadger(cfg.Session.StorePath)
		if err != nil {
			return fmt.Errorf("open session store: %w", err)
		}
		badgerStore := auth.NewBadgerSessionStore(bdb, cfg.Session.StoreTTL)
		defer func() {
			if err := badgerStore.Close(); err != nil {
				logging.Error().Err(err).Msg("failed to close session store")
			}
		}()
		store = badgerStore
		jobs = append(jobs, scheduler.ValueLogGCJob(badgerStore))
	}
	jobs = append(jobs, scheduler.SessionCleanupJob(store))

	codec, err := auth.NewCookieCodec(cfg.Session.Secret)
	if err != nil {
		return err
	}

	sessions := auth.NewSessionManager(store, codec, cfg.Session.TTL, auth.CookieOptions{
		Name:     cfg.Session.CookieName,
		Secure:   cfg.CookieSecure(),
		SameSite: cfg.CookieSameSite(),
	})

	enforcer, err := authz.NewEnforcer()
	if err != nil {
		return fmt.Errorf("load authorization policy: %w", err)
	}

	bus := realtime.NewBus()
	defer func() {
		if err := bus.Close(); err != nil {
			logging.Warn().Err(err).Msg("failed to close notification bus")
		}
	}()
	hub := realtime.NewHub(bus)

	if err := os.MkdirAll(cfg.Uploads.Dir, 0o755); err != nil {
		return fmt.Errorf("create upload dir: %w", err)
	}

	h := handlers.New(handlers.Config{
		Sessions:       sessions,
		Secret:         cfg.Session.Secret,
		Enforcer:       enforcer,
		Notifier:       realtime.NewNotifier(bus),
		Hub:            hub,
		AllowedOrigins: cfg.AllowedOrigins(),
		UploadDir:      cfg.Uploads.Dir,
		MaxUploadBytes: cfg.Uploads.MaxBytes,
	})

	var limiter *middleware.RateLimiter
	if !cfg.RateLimit.Disabled {
		limiter = middleware.NewRateLimiter(cfg.RateLimit.RequestsPerMinute, cfg.RateLimit.Burst)
		jobs = append(jobs, scheduler.LimiterEvictJob(limiter))
	}

	engine := router.New(router.Deps{
		Handler:        h,
		Sessions:       sessions,
		AllowedOrigins: cfg.AllowedOrigins(),
		APIPath:        cfg.Server.APIPath,
		Limiter:        limiter,
		UploadDir:      cfg.Uploads.Dir,
	})

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	tree := supervisor.NewTree(supervisor.TreeConfig{ShutdownTimeout: cfg.Server.ShutdownTimeout})
	tree.AddMessagingService(supervisor.ServiceFunc{Name: "realtime-hub", Fn: hub.Serve})
	tree.AddMessagingService(scheduler.New(jobs...))
	tree.AddAPIService(supervisor.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logging.Info().
		Int("port", cfg.Server.Port).
		Str("environment", cfg.Server.Environment).
		Str("session_store", cfg.Session.Store).
		Msg("speeddate starting")

	if err := tree.Serve(ctx); err != nil && ctx.Err() == nil {
		return err
	}

	logging.Info().Msg("speeddate stopped")
	return nil
}
