// tracker-service
//
// Intern-AI application tracker. Exposes a REST API and a gRPC service for:
//   - listing, creating and deleting internship applications
//   - moving an application along Applied → Interview → Offer | Rejected
//   - follow-up dates and notes, and the dashboard summary
//   - the AI assistant endpoints, proxied to the hosted Intern-AI API
//
// Publishes tracker events to Redis or NATS and announces due follow-ups
// from a cron scan.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"google.golang.org/grpc"

	"github.com/NavDevs/AI-InternShip/internal/aiclient"
	"github.com/NavDevs/AI-InternShip/internal/api"
	"github.com/NavDevs/AI-InternShip/internal/auth"
	"github.com/NavDevs/AI-InternShip/internal/cache"
	"github.com/NavDevs/AI-InternShip/internal/config"
	"github.com/NavDevs/AI-InternShip/internal/db"
	"github.com/NavDevs/AI-InternShip/internal/events"
	"github.com/NavDevs/AI-InternShip/internal/grpcserver"
	"github.com/NavDevs/AI-InternShip/internal/logger"
	"github.com/NavDevs/AI-InternShip/internal/scheduler"
	"github.com/NavDevs/AI-InternShip/internal/store"
	"github.com/NavDevs/AI-InternShip/internal/telemetry"
	"github.com/NavDevs/AI-InternShip/internal/tracker"
)

const (
	serviceName = "tracker-service"
	version     = "1.0.0"
)

func main() {
	if err := run(); err != nil {
		slog.Error("tracker-service failed", "err", err)
		os.Exit(1)
	}
}

func run() error {
	// ── Config ──────────────────────────────────────────────────────────────
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	level, err := logger.ParseLevel(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	logger.Setup(os.Stdout, cfg.LogFormat, level)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ── Tracing ─────────────────────────────────────────────────────────────
	if cfg.OTELCollectorURL != "" {
		shutdown, err := telemetry.InitTracer(ctx, serviceName, version, cfg.OTELCollectorURL)
		if err != nil {
			return err
		}
		defer shutdown()
		slog.Info("tracing enabled", "collector", cfg.OTELCollectorURL)
	}

	// ── Record store ────────────────────────────────────────────────────────
	var st tracker.Store
	switch cfg.StoreDriver {
	case config.DriverPostgres:
		slog.Info("connecting to PostgreSQL")
		pool, err := db.NewPostgresPool(ctx, cfg.DatabaseURL, cfg.DatabaseMaxConn)
		if err != nil {
			return fmt.Errorf("postgres: %w", err)
		}
		defer pool.Close()
		pg := store.NewPostgres(pool)
		if err := pg.Migrate(ctx); err != nil {
			return fmt.Errorf("postgres migrate: %w", err)
		}
		st = pg
	case config.DriverSQLite:
		slog.Info("opening SQLite", "path", cfg.SQLitePath)
		sqlDB, err := db.OpenSQLite(ctx, cfg.SQLitePath)
		if err != nil {
			return fmt.Errorf("sqlite: %w", err)
		}
		defer sqlDB.Close()
		lite := store.NewSQLite(sqlDB)
		if err := lite.Migrate(ctx); err != nil {
			return fmt.Errorf("sqlite migrate: %w", err)
		}
		st = lite
	}
	slog.Info("record store ready", "driver", cfg.StoreDriver)

	// ── Redis (events and AI cache) ─────────────────────────────────────────
	var aiCache cache.Cache = cache.NewMemory()
	var pub tracker.Publisher
	if cfg.RedisURL != "" {
		rdb, err := db.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("redis: %w", err)
		}
		defer rdb.Close()
		aiCache = cache.NewRedis(rdb, "intern-ai:")
		if cfg.EventBus == config.BusRedis {
			pub = events.NewRedisPublisher(rdb)
		}
		slog.Info("redis connected")
	}

	// ── NATS ────────────────────────────────────────────────────────────────
	if cfg.EventBus == config.BusNATS {
		conn, err := db.NewNATSConn(cfg.NATSURL, serviceName)
		if err != nil {
			return fmt.Errorf("nats: %w", err)
		}
		np := events.NewNATSPublisher(conn)
		defer np.Close()
		pub = np
		slog.Info("nats connected", "url", cfg.NATSURL)
	}
	slog.Info("event bus", "bus", cfg.EventBus)

	// ── Services ────────────────────────────────────────────────────────────
	svc := tracker.NewService(st, pub)
	authn := auth.NewAuthenticator(cfg.JWTSecret)
	if cfg.JWTSecret == "" {
		slog.Warn("JWT_SECRET not set, trusting the X-User-ID header from the gateway")
	}
	ai := aiclient.New(cfg.AIBaseURL,
		aiclient.WithTimeout(cfg.AITimeout),
		aiclient.WithCache(aiCache, cfg.AICacheTTL),
	)

	// ── Follow-up scheduler ─────────────────────────────────────────────────
	sched := scheduler.New(svc, cfg.FollowUpScanInterval)
	if err := sched.Start(ctx); err != nil {
		return fmt.Errorf("scheduler: %w", err)
	}
	defer sched.Stop()

	// ── gRPC server ─────────────────────────────────────────────────────────
	lis, err := net.Listen("tcp", ":"+cfg.GRPCPort)
	if err != nil {
		return fmt.Errorf("grpc listen: %w", err)
	}
	gs := grpc.NewServer()
	grpcserver.Register(gs, grpcserver.NewServer(svc, authn))
	go func() {
		slog.Info("grpc listening", "port", cfg.GRPCPort)
		if err := gs.Serve(lis); err != nil {
			slog.Error("grpc server error", "err", err)
			stop()
		}
	}()

	// ── HTTP server ─────────────────────────────────────────────────────────
	handler := api.NewRouter(api.Routes{
		Tracker: tracker.NewHandler(svc),
		AI:      api.NewAIHandler(ai, cfg.JobRedFlags),
	}, authn, serviceName, version)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.AITimeout + 10*time.Second,
	}
	go func() {
		slog.Info("http listening", "version", version, "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("http server error", "err", err)
			stop()
		}
	}()

	// ── Graceful shutdown ───────────────────────────────────────────────────
	<-ctx.Done()
	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Warn("http shutdown error", "err", err)
	}
	gs.GracefulStop()
	slog.Info("stopped")
	return nil
}
