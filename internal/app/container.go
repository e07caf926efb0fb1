// Package app wires the application together. Construction is explicit and
// ordered so a wiring mistake is a compile error, not a runtime surprise.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"

	"go.uber.org/zap"

	"atlas-backend/internal/collab"
	"atlas-backend/internal/config"
	"atlas-backend/internal/engine"
	"atlas-backend/internal/graph"
	"atlas-backend/internal/interfaces/http/handlers"
	"atlas-backend/internal/interfaces/http/rest"
	"atlas-backend/internal/memory"
	"atlas-backend/internal/observability"
	"atlas-backend/internal/semantic"
	"atlas-backend/internal/session"
)

// Container owns every long-lived component of the service.
type Container struct {
	Config   *config.Config
	Logger   *zap.Logger
	LogLevel zap.AtomicLevel
	Graph    *graph.Store
	Matcher  *semantic.Matcher
	Memory   *memory.Service
	Sessions *session.Registry
	Board    *collab.Board
	Metrics  *observability.Collector
	Tracer   *observability.TracerProvider
	Router   http.Handler

	stopCh chan struct{}
}

// NewContainer builds the full dependency graph from configuration.
func NewContainer(cfg *config.Config) (*Container, error) {
	logger, logLevel, err := newLogger(cfg)
	if err != nil {
		return nil, fmt.Errorf("building logger: %w", err)
	}

	tracer, err := observability.InitTracing(cfg.Tracing, string(cfg.Environment))
	if err != nil {
		return nil, fmt.Errorf("initializing tracing: %w", err)
	}

	graphStore := graph.NewStore(logger)
	if cfg.Graph.SeedFile != "" {
		if err := graph.LoadSeed(cfg.Graph.SeedFile, graphStore, logger); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				logger.Warn("graph seed file missing, starting with an empty graph",
					zap.String("path", cfg.Graph.SeedFile))
			} else {
				return nil, fmt.Errorf("loading graph seed: %w", err)
			}
		}
	}

	metrics := observability.NewCollector()

	embedder := semantic.NewBreakerEmbedder(
		semantic.NewHashEmbedder(),
		cfg.Semantic.EmbeddingTimeout,
		metrics,
		logger,
	)
	matcher := semantic.NewMatcher(embedder, cfg.Semantic.SimilarityThreshold, logger)

	memoryService := memory.NewService(memory.NewInMemoryStore(logger), logger)
	suggester := engine.NewSuggester(graphStore, memoryService, logger)

	factory := func(userID string) *engine.Engine {
		return engine.New(userID, graphStore, embedder, matcher, memoryService, suggester, logger)
	}
	sessions := session.NewRegistry(factory, cfg.Session.IdleTTL, logger)

	board := collab.NewBoard(logger)

	navigation := handlers.NewNavigationHandler(sessions, memoryService, metrics, tracer, logger)
	graphHandler := handlers.NewGraphHandler(graphStore, board, logger)
	health := handlers.NewHealthHandler(graphStore, sessions)

	router := rest.NewRouter(rest.Deps{
		Config:     cfg,
		Navigation: navigation,
		Graph:      graphHandler,
		Health:     health,
		Metrics:    metrics,
		Logger:     logger,
	})

	return &Container{
		Config:   cfg,
		Logger:   logger,
		LogLevel: logLevel,
		Graph:    graphStore,
		Matcher:  matcher,
		Memory:   memoryService,
		Sessions: sessions,
		Board:    board,
		Metrics:  metrics,
		Tracer:   tracer,
		Router:   router,
		stopCh:   make(chan struct{}),
	}, nil
}

// Start launches background work: the idle session sweeper.
func (c *Container) Start() {
	go c.Sessions.Run(c.stopCh, c.Config.Session.SweepInterval)
}

// Shutdown stops background work and flushes telemetry.
func (c *Container) Shutdown(ctx context.Context) error {
	close(c.stopCh)
	if err := c.Tracer.Shutdown(ctx); err != nil {
		c.Logger.Warn("tracer shutdown failed", zap.Error(err))
	}
	_ = c.Logger.Sync()
	return nil
}

// ApplyReload pushes the runtime-tunable settings of a reloaded configuration
// into the running components. Anything that cannot change without a restart,
// like the listen address or the auth mode, is left alone.
func (c *Container) ApplyReload(cfg *config.Config) {
	if level, err := zap.ParseAtomicLevel(cfg.Logging.Level); err != nil {
		c.Logger.Warn("ignoring invalid log level from reloaded configuration",
			zap.String("level", cfg.Logging.Level))
	} else if level.Level() != c.LogLevel.Level() {
		c.Logger.Info("log level updated",
			zap.String("from", c.LogLevel.Level().String()),
			zap.String("to", level.Level().String()))
		c.LogLevel.SetLevel(level.Level())
	}

	if v := cfg.Semantic.SimilarityThreshold; v > 0 && v != c.Matcher.Threshold() {
		c.Logger.Info("similarity threshold updated",
			zap.Float64("from", c.Matcher.Threshold()),
			zap.Float64("to", v))
		c.Matcher.SetThreshold(v)
	}
}

// newLogger builds the logger and hands back its level so it can be adjusted
// at runtime. Build keeps the AtomicLevel as the live level enabler.
func newLogger(cfg *config.Config) (*zap.Logger, zap.AtomicLevel, error) {
	var zcfg zap.Config
	if cfg.IsDevelopment() && cfg.Logging.Format == "console" {
		zcfg = zap.NewDevelopmentConfig()
	} else {
		zcfg = zap.NewProductionConfig()
	}
	level, err := zap.ParseAtomicLevel(cfg.Logging.Level)
	if err != nil {
		return nil, zap.AtomicLevel{}, err
	}
	zcfg.Level = level
	logger, err := zcfg.Build()
	if err != nil {
		return nil, zap.AtomicLevel{}, err
	}
	return logger, level, nil
}
