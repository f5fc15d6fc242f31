// Rankengine - Graph-Based Product Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rankengine

// Package main is the entry point for the rankengine server.
//
// # Application Architecture
//
// The server initializes components in the following order:
//
//  1. Configuration: defaults, optional YAML file and RANKENGINE_* variables (Koanf v2)
//  2. Logging: zerolog, with an slog bridge for the supervisor
//  3. Journal: BadgerDB ingestion log, replayed into the engine
//  4. Shared cache (optional): Redis behind a circuit breaker
//  5. Engine: graph, similarity caches and recommenders
//  6. Supervisor tree: journal GC, scheduled training and the HTTP API
//
// # Flags
//
//	--config      YAML config file (default: CONFIG_PATH or ./config.yaml)
//	--addr        listen address, overrides http.addr
//	--log-level   overrides logging.level
//	--in-memory   keep the journal in memory
//
// # Signal Handling
//
// SIGINT and SIGTERM cancel the root context. The supervisor stops the HTTP
// server gracefully, then the journal is closed.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/tomtom215/rankengine/internal/api"
	"github.com/tomtom215/rankengine/internal/cache"
	"github.com/tomtom215/rankengine/internal/journal"
	"github.com/tomtom215/rankengine/internal/logging"
	"github.com/tomtom215/rankengine/internal/recommend"
	"github.com/tomtom215/rankengine/internal/supervisor"
	"github.com/tomtom215/rankengine/internal/supervisor/services"
)

func main() {
	opts, err := parseFlags(os.Args[1:])
	if err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, opts); err != nil {
		logging.Error().Err(err).Msg("rankengine exited with error")
		stop()
		os.Exit(1)
	}
}

// run wires every component and blocks until ctx is canceled.
//
//nolint:gocyclo // sequential setup steps
func run(ctx context.Context, opts *options) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}

	logging.Init(logging.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		Caller:    cfg.Logging.Caller,
		Timestamp: true,
	})
	logging.Info().
		Str("addr", cfg.HTTP.Addr).
		Bool("journal_in_memory", cfg.Journal.InMemory).
		Bool("redis", cfg.Redis.Enabled).
		Msg("Starting rankengine")

	// ========== Journal ==========
	j, err := journal.Open(cfg.Journal, logging.Logger())
	if err != nil {
		return fmt.Errorf("open journal: %w", err)
	}
	defer func() {
		if err := j.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing journal")
		}
	}()

	// ========== Engine ==========
	engineOpts := []recommend.Option{recommend.WithJournal(j)}
	if cfg.Redis.Enabled {
		store, err := cache.NewRedisStore(ctx, cfg.Redis.Store(), logging.Logger())
		if err != nil {
			// The engine works without the shared cache.
			logging.Warn().Err(err).Str("addr", cfg.Redis.Addr).Msg("Redis unavailable, using in-process caches only")
		} else {
			defer func() {
				if err := store.Close(); err != nil {
					logging.Error().Err(err).Msg("Error closing Redis client")
				}
			}()
			engineOpts = append(engineOpts, recommend.WithRemoteCache(store))
		}
	}

	engine, err := recommend.NewEngine(&cfg.Recommend, logging.Logger(), engineOpts...)
	if err != nil {
		return fmt.Errorf("create engine: %w", err)
	}

	replayed, err := engine.Replay(ctx, j)
	if err != nil {
		return fmt.Errorf("replay journal: %w", err)
	}
	stats := engine.Stats()
	logging.Info().
		Int("records", replayed).
		Int("users", stats.Users).
		Int("products", stats.Products).
		Int("interactions", stats.Interactions).
		Msg("Journal replayed")

	// ========== Supervisor Tree ==========
	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger("supervisor"), supervisor.DefaultTreeConfig())
	if err != nil {
		return fmt.Errorf("create supervisor tree: %w", err)
	}

	if !cfg.Journal.InMemory {
		tree.AddStorageService(services.NewJournalGCService(j, logging.Logger()))
	}

	switch {
	case cfg.Training.Interval > 0:
		tree.AddModelService(services.NewTrainingService(engine, services.TrainingConfig{
			Interval:        cfg.Training.Interval,
			OnStartup:       cfg.Training.OnStartup,
			MinInteractions: cfg.Training.MinInteractions,
		}, logging.Logger()))
	case cfg.Training.OnStartup:
		go func() {
			if err := engine.Train(ctx); err != nil {
				logging.Warn().Err(err).Msg("Startup training failed")
			}
		}()
	default:
		logging.Info().Msg("Scheduled training disabled")
	}

	router := api.NewRouter(engine, cfg.HTTP, logging.Logger(), api.WithBaseContext(ctx))
	server := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      router.Handler(),
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.HTTP.ShutdownTimeout, logging.Logger()))

	if cfg.HTTP.RateLimitDisabled {
		logging.Warn().Msg("Rate limiting is DISABLED (RANKENGINE_DISABLE_RATE_LIMIT=true)")
	}

	logging.Info().Msg("Starting supervisor tree...")
	errCh := tree.ServeBackground(ctx)

	var serveErr error
	select {
	case <-ctx.Done():
		logging.Info().Msg("Shutdown signal received")
		serveErr = <-errCh
	case serveErr = <-errCh:
	}
	if serveErr != nil && !errors.Is(serveErr, context.Canceled) {
		logging.Error().Err(serveErr).Msg("Supervisor shutdown error")
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	if len(unstopped) > 0 {
		logging.Warn().Int("count", len(unstopped)).Msg("Services failed to stop within timeout")
		for _, svc := range unstopped {
			logging.Warn().Str("service", svc.Name).Msg("Service failed to stop")
		}
	}

	logging.Info().Msg("Application stopped gracefully")
	return nil
}
