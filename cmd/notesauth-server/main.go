// Command notesauth-server runs the notes backend: the auth endpoints backed
// by notesauth.Engine and the bearer-guarded notes API.
//
// Configuration is read from an optional YAML file (-config or NOTES_CONFIG)
// and NOTES_* environment variables. NOTES_SECRET_KEY is required for HMAC
// signing.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/redis/go-redis/v9"

	"github.com/ancorit/notesauth"
	"github.com/ancorit/notesauth/directory"
	"github.com/ancorit/notesauth/internal/config"
	"github.com/ancorit/notesauth/internal/httpapi"
	"github.com/ancorit/notesauth/internal/logging"
	promexport "github.com/ancorit/notesauth/metrics/export/prometheus"
	"github.com/ancorit/notesauth/notes"
	"github.com/ancorit/notesauth/password"
	"github.com/ancorit/notesauth/provider"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := logging.Setup(os.Stdout, cfg.Logging.Level, cfg.Logging.Format)

	matcher, err := password.New(cfg.Auth.PasswordMatcher, password.DefaultArgon2Config())
	if err != nil {
		return fmt.Errorf("creating password matcher: %w", err)
	}

	dirOpts := []directory.Option{directory.WithMatcher(matcher)}
	if cfg.Auth.SeedUser {
		dirOpts = append(dirOpts, directory.WithSeed())
		logger.Info("seed user enabled", "email", directory.SeedUserEmail)
	}
	dir, err := directory.NewMemory(dirOpts...)
	if err != nil {
		return fmt.Errorf("creating directory: %w", err)
	}

	builder := notesauth.New().
		WithConfig(cfg.EngineConfig()).
		WithDirectory(dir).
		WithLogger(logger).
		WithAuditSink(auditSink(cfg, logger))

	if cfg.Refresh.Backend == "redis" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Refresh.RedisAddr,
			Password: cfg.Refresh.RedisPassword,
			DB:       cfg.Refresh.RedisDB,
		})
		defer rdb.Close()

		if err := rdb.Ping(context.Background()).Err(); err != nil {
			return fmt.Errorf("connecting to redis at %s: %w", cfg.Refresh.RedisAddr, err)
		}
		builder = builder.WithRedis(rdb)
		logger.Info("refresh store", "backend", "redis", "addr", cfg.Refresh.RedisAddr)
	} else {
		logger.Info("refresh store", "backend", "memory")
	}

	engine, err := builder.Build()
	if err != nil {
		return fmt.Errorf("creating auth engine: %w", err)
	}
	defer engine.Close()

	authProvider, err := provider.New(cfg.Auth.Provider, engine, logger)
	if err != nil {
		return fmt.Errorf("creating auth provider: %w", err)
	}

	deps := &httpapi.RouterDeps{
		Auth:               engine,
		Provider:           authProvider,
		Notes:              notes.NewService(notes.NewMemoryRepository()),
		Logger:             logger,
		CORSAllowedOrigins: cfg.Server.CORSOrigins,
	}
	if cfg.Observability.Metrics.Enabled {
		h, err := promexport.NewExporter(engine).Handler()
		if err != nil {
			return fmt.Errorf("creating metrics handler: %w", err)
		}
		deps.Metrics = h
		deps.MetricsPath = cfg.Observability.Metrics.Path
	}

	srv := &http.Server{
		Addr:         ":" + strconv.Itoa(cfg.Server.Port),
		Handler:      httpapi.NewRouter(deps),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting",
			"port", cfg.Server.Port,
			"auth_provider", cfg.Auth.Provider,
			"signing_method", cfg.Auth.SigningMethod)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutting down gracefully")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

func auditSink(cfg *config.Config, logger *slog.Logger) notesauth.AuditSink {
	if !cfg.Observability.Audit.Enabled {
		return nil
	}
	if cfg.Observability.Audit.Sink == "stdout" {
		return notesauth.NewJSONWriterSink(os.Stdout)
	}
	return notesauth.NewSlogSink(logger.With("component", "audit"))
}
