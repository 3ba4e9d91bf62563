// main is the entry point of the registration API.
//
// STARTUP SEQUENCE:
//  1. Load configuration from a YAML file
//  2. Initialise the logger
//  3. Build the message catalog and the validation policies
//  4. Connect to Redis when a component needs it
//  5. Open the configured user store
//  6. Register all HTTP routes
//  7. Serve until SIGINT/SIGTERM, then shut down gracefully
//
// RUNNING THE SERVER:
//
//	go run ./cmd/registration-api --config=config/local.yaml
//
// or (with the environment variable):
//
//	CONFIG_PATH=config/local.yaml go run ./cmd/registration-api
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	"github.com/aanand-mishra/registration-api/internal/config"
	"github.com/aanand-mishra/registration-api/internal/errorstore"
	"github.com/aanand-mishra/registration-api/internal/form"
	"github.com/aanand-mishra/registration-api/internal/http/handlers"
	"github.com/aanand-mishra/registration-api/internal/http/router"
	"github.com/aanand-mishra/registration-api/internal/i18n"
	"github.com/aanand-mishra/registration-api/internal/metrics"
	"github.com/aanand-mishra/registration-api/internal/redisclient"
	"github.com/aanand-mishra/registration-api/internal/storage"
	"github.com/aanand-mishra/registration-api/internal/storage/kv"
	"github.com/aanand-mishra/registration-api/internal/storage/remote"
	"github.com/aanand-mishra/registration-api/internal/storage/sqlite"
	"github.com/aanand-mishra/registration-api/internal/validation"
)

func main() {
	// ── 1. Load Config ────────────────────────────────────────────────────
	cfg := config.MustLoad()

	// ── 2. Initialise Logger ──────────────────────────────────────────────
	log := setupLogger(cfg.Env)
	slog.SetDefault(log)

	log.Info("starting registration-api",
		slog.String("env", cfg.Env),
		slog.String("locale", cfg.Locale),
		slog.String("storage", cfg.Storage.Driver),
	)

	if err := run(cfg, log); err != nil {
		log.Error("registration-api stopped", slog.String("error", err.Error()))
		os.Exit(1)
	}

	log.Info("server stopped gracefully")
}

func run(cfg *config.Config, log *slog.Logger) error {
	// ── 3. Catalog and validation policies ────────────────────────────────
	catalog, err := i18n.New(i18n.Locale(cfg.Locale))
	if err != nil {
		return err
	}

	postal, err := validation.ParsePostalFormat(cfg.Validation.PostalCodeFormat)
	if err != nil {
		return err
	}

	validator := validation.NewValidator(catalog,
		validation.WithPostalFormat(postal),
		validation.WithIdentityMinLength(cfg.Validation.IdentityMinLength),
	)
	calculator := validation.NewCalculator(catalog,
		validation.WithMinimumAge(cfg.Validation.MinimumAge),
	)
	structs, err := validation.NewStructValidator(catalog, validator)
	if err != nil {
		return err
	}

	// ── 4. Redis (kv store, redis form errors) ────────────────────────────
	var rdb *redis.Client
	if cfg.NeedsRedis() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		rdb, err = redisclient.Connect(ctx, cfg.Redis.URL)
		cancel()
		if err != nil {
			return err
		}
		defer rdb.Close()
		log.Info("redis connected")
	}

	// ── 5. User store ─────────────────────────────────────────────────────
	// Stored as the storage.Storage interface: nothing past this point
	// knows which backend is behind it.
	store, closer, err := openStorage(cfg, rdb)
	if err != nil {
		return fmt.Errorf("failed to initialise storage: %w", err)
	}
	defer closer.Close()

	log.Info("storage initialised", slog.String("driver", cfg.Storage.Driver))

	var formErrors errorstore.Provider = errorstore.NewMemory()
	if cfg.FormErrors.Driver == "redis" {
		formErrors = errorstore.NewRedis(rdb, errorstore.WithTTL(cfg.FormErrors.TTL))
	}

	// ── 6. Routes ─────────────────────────────────────────────────────────
	deps := handlers.Deps{
		Store:    store,
		Form:     form.New(validator, calculator, catalog),
		Errors:   formErrors,
		Validate: structs,
		Catalog:  catalog,
		Metrics:  metrics.New(prometheus.DefaultRegisterer),
		Logger:   log,
	}

	server := &http.Server{
		Addr:    cfg.Addr,
		Handler: router.New(deps, prometheus.DefaultGatherer),

		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// ── 7. Serve and wait for a shutdown signal ───────────────────────────
	serveErr := make(chan error, 1)
	go func() {
		log.Info("server started", slog.String("address", cfg.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serveErr:
		return fmt.Errorf("server encountered an error: %w", err)
	case <-done:
	}

	log.Info("shutdown signal received, stopping server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown server gracefully: %w", err)
	}
	return nil
}

// openStorage returns the configured user store and what to close on exit.
func openStorage(cfg *config.Config, rdb *redis.Client) (storage.Storage, io.Closer, error) {
	switch cfg.Storage.Driver {
	case storage.DriverSQLite:
		s, err := sqlite.New(cfg)
		if err != nil {
			return nil, nil, err
		}
		return s, s, nil
	case storage.DriverKV:
		return kv.New(rdb, cfg.Storage.Key), nopCloser{}, nil
	case storage.DriverRemote:
		return remote.New(cfg.Storage.RemoteURL, cfg.Storage.RemoteTimeout), nopCloser{}, nil
	default:
		return nil, nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// setupLogger returns a *slog.Logger configured for the given environment.
//
// Development (dev): human-readable text output at DEBUG level.
// Production (prod): machine-readable JSON output at INFO level.
func setupLogger(env string) *slog.Logger {
	switch env {
	case "prod":
		return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	case "staging":
		return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	default:
		return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
}
