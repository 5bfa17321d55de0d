package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Veraticus/budget-mapper/internal/engine"
	"github.com/Veraticus/budget-mapper/internal/llm"
	"github.com/Veraticus/budget-mapper/internal/model"
	"github.com/Veraticus/budget-mapper/internal/storage"
	"github.com/Veraticus/budget-mapper/internal/telemetry"
)

const shutdownTimeout = 5 * time.Second

// app bundles the services a command needs. Commands that never talk to the
// model backend only use the store.
type app struct {
	store     storage.Store
	tracing   *telemetry.Provider
	collector *telemetry.Collector
	logger    *slog.Logger
}

// initStorage opens and migrates the configured database.
func initStorage(ctx context.Context) (storage.Store, error) {
	store, err := storage.NewSQLiteStorage(settings.Database.Path)
	if err != nil {
		return nil, err
	}

	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return store, nil
}

func newApp(ctx context.Context) (*app, error) {
	store, err := initStorage(ctx)
	if err != nil {
		return nil, err
	}
	return &app{store: store, logger: slog.Default()}, nil
}

// close releases the store and flushes telemetry.
func (a *app) close() {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if a.tracing != nil {
		a.tracing.Shutdown(ctx)
	}
	if a.collector != nil {
		if err := a.collector.Shutdown(ctx); err != nil {
			a.logger.Warn("failed to shut down metrics", "error", err)
		}
	}
	if err := a.store.Close(); err != nil {
		a.logger.Error("failed to close database", "error", err)
	}
}

// suggester builds the model-backed suggester with tracing and metrics wired in.
func (a *app) suggester(ctx context.Context) (*llm.Suggester, error) {
	client, err := llm.NewOllamaClient(settings.LLM.BaseURL)
	if err != nil {
		return nil, err
	}

	tel := settings.Telemetry
	tel.ServiceVersion = version
	tracing, err := telemetry.New(ctx, tel, a.logger)
	if err != nil {
		return nil, err
	}
	a.tracing = tracing
	a.collector = telemetry.NewCollector(a.logger)

	return llm.NewSuggester(client, settings.SuggesterConfig(),
		llm.WithSink(tracing.Sink()),
		llm.WithMetrics(a.collector.Metrics()),
		llm.WithLogger(a.logger),
	), nil
}

// orchestrator builds the bulk orchestrator around a suggester.
func (a *app) orchestrator(suggester engine.BatchSuggester, progress engine.ProgressFunc) *engine.Orchestrator {
	var metrics *telemetry.Metrics
	if a.collector != nil {
		metrics = a.collector.Metrics()
	}
	return engine.New(suggester, settings.EngineConfig(),
		engine.WithProgress(progress),
		engine.WithLogger(a.logger),
		engine.WithMetrics(metrics),
	)
}

// categoryNames loads the current category names in display order.
func (a *app) categoryNames(ctx context.Context) ([]string, error) {
	cats, err := a.store.GetCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load categories: %w", err)
	}
	return model.CategoryNames(cats), nil
}
