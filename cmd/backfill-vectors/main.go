// backfill-vectors re-embeds every stored user profile and upserts the results
// into the vector index. Run it after changing the embedding model or profile
// text composition; upserts overwrite, so re-running is safe.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	pgxvec "github.com/pgvector/pgvector-go/pgx"

	"github.com/talentmatch/platform/internal/config"
	"github.com/talentmatch/platform/internal/embeddings"
	"github.com/talentmatch/platform/internal/models"
	"github.com/talentmatch/platform/internal/repository"
	"github.com/talentmatch/platform/internal/vectorindex"
	"github.com/talentmatch/platform/pkg/database"
)

const (
	exitSuccess = 0
	exitFailure = 1
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)

		return exitFailure
	}

	ctx := context.Background()

	db, err := database.NewPostgresPool(ctx, cfg.DatabaseURL,
		database.WithAfterConnect(pgxvec.RegisterTypes))
	if err != nil {
		slog.Error("failed to connect to PostgreSQL", "error", err)

		return exitFailure
	}
	defer db.Close()

	mongoClient, mongoDB, err := database.NewMongoDatabase(ctx, cfg.MongoURI, cfg.MongoDB)
	if err != nil {
		slog.Error("failed to connect to MongoDB", "error", err)

		return exitFailure
	}

	defer func() {
		if err := mongoClient.Disconnect(context.Background()); err != nil {
			slog.Error("mongo disconnect", "error", err)
		}
	}()

	embedder, err := embeddings.NewGeminiClient(ctx, cfg.GeminiAPIKey,
		embeddings.WithModel(cfg.EmbeddingModel),
		embeddings.WithDimensions(models.EmbeddingDimensions),
	)
	if err != nil {
		slog.Error("failed to create embedding client", "error", err)

		return exitFailure
	}

	pgStore := vectorindex.NewPGStore(db)
	if err := pgStore.EnsureSchema(ctx); err != nil {
		slog.Error("failed to ensure vector schema", "error", err)

		return exitFailure
	}

	index, err := vectorindex.New(vectorindex.Params{
		Embedder:    embedder,
		Store:       pgStore,
		CallTimeout: cfg.EmbedTimeout,
		Logger:      slog.Default(),
	})
	if err != nil {
		slog.Error("failed to create vector index", "error", err)

		return exitFailure
	}

	users, err := repository.NewUsersRepository(mongoDB).ListAll(ctx)
	if err != nil {
		slog.Error("failed to list users", "error", err)

		return exitFailure
	}

	if err := index.BulkUpsert(ctx, users); err != nil {
		slog.Error("backfill failed", "error", err)

		return exitFailure
	}

	slog.Info("backfill complete", "users", len(users))

	fmt.Printf("Re-embedded %d user profile(s).\n", len(users))

	return exitSuccess
}
