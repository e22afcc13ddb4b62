package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/riverqueue/river"
	"github.com/riverqueue/river/riverdriver/riverpgxv5"
	"go.mongodb.org/mongo-driver/mongo"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"github.com/talentmatch/platform/internal/api"
	"github.com/talentmatch/platform/internal/api/handlers"
	"github.com/talentmatch/platform/internal/config"
	"github.com/talentmatch/platform/internal/embeddings"
	"github.com/talentmatch/platform/internal/gemini"
	"github.com/talentmatch/platform/internal/jobs"
	"github.com/talentmatch/platform/internal/match"
	"github.com/talentmatch/platform/internal/models"
	"github.com/talentmatch/platform/internal/notify"
	"github.com/talentmatch/platform/internal/observability"
	"github.com/talentmatch/platform/internal/profile"
	"github.com/talentmatch/platform/internal/repository"
	"github.com/talentmatch/platform/internal/vectorindex"
	"github.com/talentmatch/platform/internal/workers"
	"github.com/talentmatch/platform/pkg/database"
)

const queryCacheSize = 1000

// App holds all server dependencies and coordinates startup and shutdown.
type App struct {
	cfg           *config.Config
	server        *http.Server
	river         *river.Client[pgx.Tx]
	meterProvider *sdkmetric.MeterProvider
}

// NewApp builds and wires all components. It does not start the HTTP server or
// River; call Run to start and block until shutdown or failure.
func NewApp(ctx context.Context, cfg *config.Config, db *pgxpool.Pool, mongoDB *mongo.Database) (*App, error) {
	var (
		metrics       *observability.Metrics
		meterProvider *sdkmetric.MeterProvider
	)

	if cfg.MetricsEnabled {
		meterProvider = sdkmetric.NewMeterProvider()

		m, err := observability.NewMetrics(meterProvider.Meter("talentmatch"))
		if err != nil {
			return nil, fmt.Errorf("create metrics: %w", err)
		}

		metrics = m
	} else {
		slog.Warn("metrics not enabled (METRICS_ENABLED != true)")
	}

	var (
		matchMetrics  observability.MatchMetrics
		vectorMetrics observability.VectorMetrics
	)
	if metrics != nil {
		matchMetrics = metrics.Match
		vectorMetrics = metrics.Vector
	}

	// Providers.
	embedder, err := embeddings.NewGeminiClient(ctx, cfg.GeminiAPIKey,
		embeddings.WithModel(cfg.EmbeddingModel),
		embeddings.WithDimensions(models.EmbeddingDimensions),
	)
	if err != nil {
		return nil, fmt.Errorf("create embedding client: %w", err)
	}

	generator, err := gemini.NewGenerator(ctx, cfg.GeminiAPIKey, cfg.GenerativeModel,
		gemini.WithTimeout(cfg.GenAITimeout),
		gemini.WithRequestsPerMinute(cfg.GenAIRequestsPerMinute),
	)
	if err != nil {
		return nil, fmt.Errorf("create generative client: %w", err)
	}

	// Vector index.
	pgStore := vectorindex.NewPGStore(db)
	if err := pgStore.EnsureSchema(ctx); err != nil {
		return nil, fmt.Errorf("ensure vector schema: %w", err)
	}

	index, err := vectorindex.New(vectorindex.Params{
		Embedder:       embedder,
		Store:          pgStore,
		CallTimeout:    cfg.EmbedTimeout,
		QueryCacheSize: queryCacheSize,
		Metrics:        vectorMetrics,
		Logger:         slog.Default(),
	})
	if err != nil {
		return nil, fmt.Errorf("create vector index: %w", err)
	}

	// Document repositories.
	usersRepo := repository.NewUsersRepository(mongoDB)
	projectsRepo := repository.NewProjectsRepository(mongoDB)

	// Best-effort notifications; falls back to logging when Redis is not configured.
	var notifier notify.Dispatcher = notify.NewLogDispatcher(slog.Default())

	if cfg.RedisAddr != "" {
		redisClient, err := database.NewRedisClient(ctx, cfg.RedisAddr)
		if err != nil {
			return nil, fmt.Errorf("connect to Redis: %w", err)
		}

		notifier = notify.NewRedisDispatcher(redisClient, slog.Default())
	}

	// Background vector maintenance.
	vectorWorker := workers.NewProfileVectorWorker(workers.ProfileVectorWorkerDeps{
		Users:    usersRepo,
		Index:    index,
		Notifier: notifier,
		Metrics:  vectorMetrics,
		Logger:   slog.Default(),
	})

	riverWorkers := river.NewWorkers()
	river.AddWorker(riverWorkers, vectorWorker)

	riverClient, err := river.NewClient(riverpgxv5.New(db), &river.Config{
		Queues: map[string]river.QueueConfig{
			jobs.VectorsQueueName: {MaxWorkers: cfg.VectorMaxConcurrent},
		},
		Workers:     riverWorkers,
		MaxAttempts: cfg.VectorMaxAttempts,
	})
	if err != nil {
		return nil, fmt.Errorf("create River client: %w", err)
	}

	inserter := jobs.NewRiverJobInserter(riverClient)

	// Services.
	profileService := profile.NewService(usersRepo, inserter, notifier, vectorMetrics, slog.Default())

	analyzer := match.NewAnalyzer(generator, slog.Default())
	ranker := match.NewRanker(generator, slog.Default())

	orchestrator, err := match.NewOrchestrator(match.OrchestratorParams{
		Analyzer:   analyzer,
		Ranker:     ranker,
		Searcher:   index,
		Users:      usersRepo,
		RetrievalK: cfg.MatchTopK,
		Metrics:    matchMetrics,
		Logger:     slog.Default(),
	})
	if err != nil {
		return nil, fmt.Errorf("create orchestrator: %w", err)
	}

	matchService := match.NewService(orchestrator, projectsRepo, matchMetrics, slog.Default())

	// HTTP server.
	router := api.NewRouter(api.RouterDeps{
		Health:  handlers.NewHealthHandler(),
		Matches: handlers.NewMatchesHandler(matchService),
		Profile: handlers.NewProfileHandler(profileService),
		APIKey:  cfg.APIKey,
	})

	const (
		readTimeout  = 15 * time.Second
		writeTimeout = 60 * time.Second
		idleTimeout  = 60 * time.Second
	)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
		IdleTimeout:  idleTimeout,
	}

	return &App{
		cfg:           cfg,
		server:        server,
		river:         riverClient,
		meterProvider: meterProvider,
	}, nil
}

// Run starts River and the HTTP server, then blocks until ctx is cancelled or a
// component fails. Call Shutdown afterwards.
func (a *App) Run(ctx context.Context) error {
	runErr := make(chan error, 1)

	riverCtx, cancelRiver := context.WithCancel(ctx)
	defer cancelRiver()

	if err := a.river.Start(riverCtx); err != nil {
		return fmt.Errorf("start river: %w", err)
	}

	go func() {
		slog.Info("starting server", "port", a.cfg.Port)

		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			select {
			case runErr <- fmt.Errorf("server: %w", err):
			default:
			}
		}
	}()

	select {
	case err := <-runErr:
		cancelRiver()
		return err
	case <-ctx.Done():
		cancelRiver()
		return nil
	}
}

// Shutdown stops the HTTP server and River in order, draining in-flight jobs.
func (a *App) Shutdown(ctx context.Context) error {
	var first error

	if err := a.server.Shutdown(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		first = fmt.Errorf("server shutdown: %w", err)
	}

	if err := a.river.Stop(ctx); err != nil {
		if first == nil {
			first = fmt.Errorf("river stop: %w", err)
		} else {
			slog.Error("river stop", "error", err)
		}
	}

	if a.meterProvider != nil {
		if err := a.meterProvider.Shutdown(ctx); err != nil {
			if first == nil {
				first = fmt.Errorf("meter provider shutdown: %w", err)
			} else {
				slog.Error("meter provider shutdown", "error", err)
			}
		}
	}

	return first
}
