// Package vectorindex maintains the per-user profile vector index and serves
// nearest-neighbor candidate retrieval.
package vectorindex

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"

	"github.com/talentmatch/platform/internal/embeddings"
	"github.com/talentmatch/platform/internal/models"
	"github.com/talentmatch/platform/internal/observability"
)

// bulkChunkSize bounds how many profiles are embedded and written per batch.
// A failed chunk leaves earlier chunks in place; re-running the bulk upsert is
// safe because upserts overwrite.
const bulkChunkSize = 50

// Store persists vector records. Implementations must give read-after-write
// visibility: a completed Upsert is seen by all subsequent Nearest calls.
type Store interface {
	Upsert(ctx context.Context, rec *models.VectorRecord) error
	UpsertBatch(ctx context.Context, recs []*models.VectorRecord) error
	Delete(ctx context.Context, userID string) error
	// Nearest returns up to k hits ordered by descending similarity, never
	// including an id from excludeIDs.
	Nearest(ctx context.Context, embedding []float32, k int, excludeIDs []string) ([]models.VectorHit, error)
}

// Index embeds profile text and keeps exactly one vector record per live user.
type Index struct {
	embedder    embeddings.Client
	store       Store
	callTimeout time.Duration
	queryCache  *lru.Cache[string, []float32]
	queryGroup  singleflight.Group
	metrics     observability.VectorMetrics
	logger      *slog.Logger
}

// Params configures an Index. QueryCacheSize 0 disables query-embedding caching;
// Metrics may be nil when metrics are disabled.
type Params struct {
	Embedder       embeddings.Client
	Store          Store
	CallTimeout    time.Duration
	QueryCacheSize int
	Metrics        observability.VectorMetrics
	Logger         *slog.Logger
}

// New creates an Index.
func New(p Params) (*Index, error) {
	if p.Embedder == nil || p.Store == nil {
		return nil, fmt.Errorf("vectorindex: embedder and store are required")
	}

	logger := p.Logger
	if logger == nil {
		logger = slog.Default()
	}

	var cache *lru.Cache[string, []float32]

	if p.QueryCacheSize > 0 {
		var err error

		cache, err = lru.New[string, []float32](p.QueryCacheSize)
		if err != nil {
			return nil, fmt.Errorf("vectorindex: create query cache: %w", err)
		}
	}

	return &Index{
		embedder:    p.Embedder,
		store:       p.Store,
		callTimeout: p.CallTimeout,
		queryCache:  cache,
		metrics:     p.Metrics,
		logger:      logger,
	}, nil
}

// Upsert embeds the user's profile text and stores/overwrites their vector record.
// The write is visible to all subsequent searches.
func (ix *Index) Upsert(ctx context.Context, user *models.UserProfile) error {
	text := ProfileText(user)
	if text == "" {
		// Nothing embeddable yet; keep the index free of empty vectors.
		return ix.Remove(ctx, user.ID)
	}

	embedCtx, cancel := ix.boundCtx(ctx)
	defer cancel()

	embedding, err := ix.embedder.GetEmbedding(embedCtx, text)
	if err != nil {
		return fmt.Errorf("embed profile %s: %w", user.ID, err)
	}

	storeCtx, cancelStore := ix.boundCtx(ctx)
	defer cancelStore()

	if err := ix.store.Upsert(storeCtx, record(user, embedding)); err != nil {
		return fmt.Errorf("store vector for %s: %w", user.ID, err)
	}

	return nil
}

// BulkUpsert embeds and stores profiles in chunks. On a chunk failure it stops and
// reports the error; chunks already written stay intact and a retry re-upserts them
// idempotently.
func (ix *Index) BulkUpsert(ctx context.Context, users []*models.UserProfile) error {
	for start := 0; start < len(users); start += bulkChunkSize {
		end := min(start+bulkChunkSize, len(users))
		if err := ix.upsertChunk(ctx, users[start:end]); err != nil {
			return fmt.Errorf("bulk upsert chunk %d..%d: %w", start, end, err)
		}
	}

	return nil
}

func (ix *Index) upsertChunk(ctx context.Context, users []*models.UserProfile) error {
	texts := make([]string, 0, len(users))
	withText := make([]*models.UserProfile, 0, len(users))

	for _, u := range users {
		text := ProfileText(u)
		if text == "" {
			continue
		}

		texts = append(texts, text)
		withText = append(withText, u)
	}

	if len(texts) == 0 {
		return nil
	}

	embedCtx, cancel := ix.boundCtx(ctx)
	defer cancel()

	vectors, err := ix.embedder.GetEmbeddings(embedCtx, texts)
	if err != nil {
		return fmt.Errorf("embed batch: %w", err)
	}

	recs := make([]*models.VectorRecord, len(withText))
	for i, u := range withText {
		recs[i] = record(u, vectors[i])
	}

	storeCtx, cancelStore := ix.boundCtx(ctx)
	defer cancelStore()

	if err := ix.store.UpsertBatch(storeCtx, recs); err != nil {
		return fmt.Errorf("store batch: %w", err)
	}

	return nil
}

// Remove deletes the user's vector record so stale matches cannot reference them.
func (ix *Index) Remove(ctx context.Context, userID string) error {
	storeCtx, cancel := ix.boundCtx(ctx)
	defer cancel()

	if err := ix.store.Delete(storeCtx, userID); err != nil {
		return fmt.Errorf("remove vector for %s: %w", userID, err)
	}

	return nil
}

// Search returns up to k candidates by descending similarity to the query text,
// never including an excluded id. Provider or store failures degrade to an empty
// slice: retrieval is advisory, so a missing shortlist beats a failed request.
func (ix *Index) Search(ctx context.Context, queryText string, k int, excludeIDs []string) []models.VectorHit {
	if queryText == "" || k <= 0 {
		return nil
	}

	embedding, err := ix.queryEmbedding(ctx, queryText)
	if err != nil {
		ix.degrade(ctx, "embed query", err)
		return nil
	}

	storeCtx, cancel := ix.boundCtx(ctx)
	defer cancel()

	hits, err := ix.store.Nearest(storeCtx, embedding, k, excludeIDs)
	if err != nil {
		ix.degrade(ctx, "nearest neighbors", err)
		return nil
	}

	return hits
}

// queryEmbedding returns the embedding for a search query, caching by exact query
// text and collapsing concurrent identical lookups.
func (ix *Index) queryEmbedding(ctx context.Context, queryText string) ([]float32, error) {
	if ix.queryCache == nil {
		embedCtx, cancel := ix.boundCtx(ctx)
		defer cancel()

		return ix.embedder.GetEmbedding(embedCtx, queryText)
	}

	if cached, ok := ix.queryCache.Get(queryText); ok {
		return cached, nil
	}

	v, err, _ := ix.queryGroup.Do(queryText, func() (any, error) {
		if cached, ok := ix.queryCache.Get(queryText); ok {
			return cached, nil
		}

		embedCtx, cancel := ix.boundCtx(ctx)
		defer cancel()

		embedding, err := ix.embedder.GetEmbedding(embedCtx, queryText)
		if err != nil {
			return nil, err
		}

		ix.queryCache.Add(queryText, embedding)

		return embedding, nil
	})
	if err != nil {
		return nil, err
	}

	return v.([]float32), nil
}

func (ix *Index) degrade(ctx context.Context, stage string, err error) {
	ix.logger.WarnContext(ctx, "vector search degraded to empty result",
		"stage", stage,
		"error", err,
	)

	if ix.metrics != nil {
		ix.metrics.RecordSearchDegraded(ctx)
	}
}

func (ix *Index) boundCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	if ix.callTimeout <= 0 {
		return ctx, func() {}
	}

	return context.WithTimeout(ctx, ix.callTimeout)
}

func record(u *models.UserProfile, embedding []float32) *models.VectorRecord {
	return &models.VectorRecord{
		UserID:    u.ID,
		Embedding: embedding,
		Meta: models.VectorMeta{
			Name:            u.Name,
			Title:           u.ProfessionalTitle,
			Skills:          u.Skills,
			ExperienceYears: u.ExperienceYears,
			Location:        u.Location,
			HasResume:       u.HasResume(),
		},
		UpdatedAt: time.Now().UTC(),
	}
}
