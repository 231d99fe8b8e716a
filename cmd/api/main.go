// Package main is the entry point for the HaulTrackr API server.
// Its sole responsibility is wiring dependencies together and starting the server.
// No business logic belongs here.
package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" database/sql driver for goose

	"github.com/bridgitkanini/haultrackrbackend/internal/auth"
	"github.com/bridgitkanini/haultrackrbackend/internal/config"
	"github.com/bridgitkanini/haultrackrbackend/internal/events"
	"github.com/bridgitkanini/haultrackrbackend/internal/handler"
	"github.com/bridgitkanini/haultrackrbackend/internal/hos"
	"github.com/bridgitkanini/haultrackrbackend/internal/metrics"
	"github.com/bridgitkanini/haultrackrbackend/internal/middleware"
	"github.com/bridgitkanini/haultrackrbackend/internal/repo"
	"github.com/bridgitkanini/haultrackrbackend/internal/routing"
	"github.com/bridgitkanini/haultrackrbackend/internal/service"
	"github.com/bridgitkanini/haultrackrbackend/migrations"
)

func main() {
	// --- Config -----------------------------------------------------------
	cfg, err := config.Load()
	if err != nil {
		// Use plain stderr before the logger is configured.
		slog.Error("configuration error", "error", err)
		os.Exit(1)
	}

	// --- Logger -----------------------------------------------------------
	var logLevel slog.Level
	if err := logLevel.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		logLevel = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, logger *slog.Logger) error {
	ctx := context.Background()

	rules := hosRules(cfg.HOS)
	if err := rules.Validate(); err != nil {
		return fmt.Errorf("hours-of-service rules: %w", err)
	}

	// --- Database ---------------------------------------------------------
	// New() does not open connections immediately; the first query does.
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("create database pool: %w", err)
	}
	defer pool.Close()

	// Verify the DB is reachable before accepting traffic.
	if err := pool.Ping(ctx); err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	slog.Info("database connection established")

	if cfg.RunMigrations {
		if err := migrateUp(ctx, cfg.DatabaseURL); err != nil {
			return err
		}
	}

	// --- Routing, events, metrics -----------------------------------------
	m := metrics.New()

	routingOpts := []routing.Option{
		routing.WithRequestsPerHour(cfg.Routing.RequestsPerHour),
		routing.WithRecorder(m.ObserveRouting),
	}
	if cfg.Routing.RedisAddr != "" {
		cache := routing.NewRedisCache(cfg.Routing.RedisAddr, cfg.Routing.RedisPassword)
		defer cache.Close()
		if err := cache.Ping(ctx); err != nil {
			slog.Warn("redis unreachable, routing responses will not be cached until it recovers", "error", err)
		}
		routingOpts = append(routingOpts, routing.WithCache(cache, cfg.Routing.CacheTTL))
	} else {
		routingOpts = append(routingOpts, routing.WithCache(routing.NewMemoryCache(), cfg.Routing.CacheTTL))
	}
	if cfg.Routing.APIKey == "" {
		slog.Warn("ORS_API_KEY is not set, trip planning will fail upstream")
	}
	router := routing.NewClient(cfg.Routing.BaseURL, cfg.Routing.APIKey, routingOpts...)

	var publisher events.Publisher = events.Nop{}
	if len(cfg.Events.KafkaBrokers) > 0 {
		publisher = events.NewKafkaPublisher(cfg.Events.KafkaBrokers, cfg.Events.KafkaTopic)
		slog.Info("publishing trip events", "brokers", cfg.Events.KafkaBrokers, "topic", cfg.Events.KafkaTopic)
	}
	defer publisher.Close()

	// --- Services ---------------------------------------------------------
	tokens := auth.NewTokens(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTL, cfg.Auth.RefreshTokenTTL)

	users := repo.NewUserRepo(pool)
	trips := repo.NewTripRepo(pool)
	stops := repo.NewRestStopRepo(pool)
	sheets := repo.NewLogSheetRepo(pool)
	statuses := repo.NewDutyStatusRepo(pool)
	plans := repo.NewPlanRepo(pool)

	srv := handler.NewServer(handler.Services{
		Auth:     service.NewAuthService(users, tokens),
		Trips:    service.NewTripService(trips, cfg.HOS.MaxCycleHours),
		Plans:    service.NewPlanService(trips, plans, router, publisher, rules, m.ObservePlan),
		Stops:    service.NewRestStopService(trips, stops),
		Logs:     service.NewLogSheetService(trips, stops, sheets, statuses, plans, rules.PreTrip),
		Statuses: service.NewDutyStatusService(sheets, statuses),
		DB:       pool,
	})

	// --- Router -----------------------------------------------------------
	// Middleware is applied in order: RequestID → RealIP → StripSlashes →
	// Logger → Metrics → Recoverer → CORS → MaxBodySize.
	// SlogLogger sits outside Recoverer so panics are logged as 500s.
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.StripSlashes)
	r.Use(middleware.NewSlogLogger(logger))
	r.Use(m.Middleware)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.NewCORSHandler(cfg.CORSOrigins))
	r.Use(middleware.NewMaxBodySizeHandler(cfg.MaxBodyBytes))

	r.Handle("/metrics", m.Handler())
	r.Mount("/", srv.Routes(middleware.NewAuthenticator(tokens)))

	// --- HTTP Server ------------------------------------------------------
	// Explicit timeouts prevent slowloris and resource exhaustion attacks.
	// WriteTimeout leaves room for a plan's upstream routing calls.
	httpSrv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 45 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown: wait for OS signal, then give in-flight requests
	// up to 15 seconds to complete before forcefully closing.
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	serveErr := make(chan error, 1)
	go func() {
		slog.Info("server starting", "addr", httpSrv.Addr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		return fmt.Errorf("listen: %w", err)
	case <-stop:
	}
	slog.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	slog.Info("server stopped")
	return nil
}

// migrateUp applies pending migrations over a short-lived database/sql
// connection; goose does not speak pgxpool.
func migrateUp(ctx context.Context, dsn string) error {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return fmt.Errorf("open migration connection: %w", err)
	}
	defer db.Close()

	provider, err := migrations.NewProvider(db)
	if err != nil {
		return err
	}
	results, err := provider.Up(ctx)
	if err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}
	for _, res := range results {
		slog.Info("migration applied", "version", res.Source.Version, "duration", res.Duration)
	}
	return nil
}

func hosRules(c config.HOSConfig) hos.Rules {
	rules := hos.DefaultRules()
	rules.MaxDriving = hos.Hours(c.MaxDrivingHours)
	rules.MaxOnDutyWindow = hos.Hours(c.MaxOnDutyHours)
	rules.RequiredRest = hos.Hours(c.RequiredRestHours)
	rules.MaxCycle = hos.Hours(c.MaxCycleHours)
	rules.FuelIntervalMiles = c.FuelStopIntervalMiles
	return rules
}
