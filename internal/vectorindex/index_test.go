package vectorindex

import (
	"context"
	"errors"
	"math"
	"sort"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talentmatch/platform/internal/embeddings"
	"github.com/talentmatch/platform/internal/models"
)

// fakeStore is an in-memory Store keyed by user id. Nearest ranks by cosine
// similarity against the stored embeddings, which with the deterministic mock
// embedder gives exact-match queries a score of 1.
type fakeStore struct {
	mu      sync.Mutex
	recs    map[string]*models.VectorRecord
	failAll bool

	upserts int
	deletes int
}

func newFakeStore() *fakeStore {
	return &fakeStore{recs: make(map[string]*models.VectorRecord)}
}

func (s *fakeStore) Upsert(_ context.Context, rec *models.VectorRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failAll {
		return errors.New("store down")
	}

	s.upserts++
	s.recs[rec.UserID] = rec

	return nil
}

func (s *fakeStore) UpsertBatch(ctx context.Context, recs []*models.VectorRecord) error {
	for _, rec := range recs {
		if err := s.Upsert(ctx, rec); err != nil {
			return err
		}
	}

	return nil
}

func (s *fakeStore) Delete(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failAll {
		return errors.New("store down")
	}

	s.deletes++
	delete(s.recs, userID)

	return nil
}

func (s *fakeStore) Nearest(
	_ context.Context, embedding []float32, k int, excludeIDs []string,
) ([]models.VectorHit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failAll {
		return nil, errors.New("store down")
	}

	excluded := make(map[string]bool, len(excludeIDs))
	for _, id := range excludeIDs {
		excluded[id] = true
	}

	var hits []models.VectorHit

	for id, rec := range s.recs {
		if excluded[id] {
			continue
		}

		hits = append(hits, models.VectorHit{UserID: id, Score: cosine(embedding, rec.Embedding)})
	}

	sort.Slice(hits, func(i, j int) bool { return hits[i].Score > hits[j].Score })

	if len(hits) > k {
		hits = hits[:k]
	}

	return hits, nil
}

func cosine(a, b []float32) float64 {
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}

	if na == 0 || nb == 0 {
		return 0
	}

	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

// failingEmbedder always errors, for degradation tests.
type failingEmbedder struct{}

func (failingEmbedder) GetEmbedding(context.Context, string) ([]float32, error) {
	return nil, errors.New("provider unavailable")
}

func (failingEmbedder) GetEmbeddings(context.Context, []string) ([][]float32, error) {
	return nil, errors.New("provider unavailable")
}

func newTestIndex(t *testing.T, store Store) *Index {
	t.Helper()

	ix, err := New(Params{
		Embedder:       embeddings.NewMockClient(),
		Store:          store,
		QueryCacheSize: 16,
	})
	require.NoError(t, err)

	return ix
}

func testUser(id, bio string, skills ...string) *models.UserProfile {
	return &models.UserProfile{
		ID:     id,
		Name:   "User " + id,
		Role:   "user",
		Bio:    bio,
		Skills: skills,
	}
}

func TestIndexUpsertIsIdempotent(t *testing.T) {
	store := newFakeStore()
	ix := newTestIndex(t, store)
	ctx := context.Background()

	user := testUser("u1", "Backend engineer building payment systems", "Go", "Postgres")

	require.NoError(t, ix.Upsert(ctx, user))
	require.NoError(t, ix.Upsert(ctx, user))

	assert.Len(t, store.recs, 1, "same user must stay a single record")
	assert.Equal(t, 2, store.upserts)
	assert.Equal(t, "User u1", store.recs["u1"].Meta.Name)
}

func TestIndexUpsertOverwritesOnProfileChange(t *testing.T) {
	store := newFakeStore()
	ix := newTestIndex(t, store)
	ctx := context.Background()

	user := testUser("u1", "Frontend engineer", "React")
	require.NoError(t, ix.Upsert(ctx, user))
	before := store.recs["u1"].Embedding

	user.Bio = "Machine learning engineer"
	user.Skills = []string{"Python", "PyTorch"}
	require.NoError(t, ix.Upsert(ctx, user))

	assert.Len(t, store.recs, 1)
	assert.NotEqual(t, before, store.recs["u1"].Embedding, "changed profile must re-embed")
	assert.Equal(t, []string{"Python", "PyTorch"}, store.recs["u1"].Meta.Skills)
}

func TestIndexUpsertEmptyProfileRemovesRecord(t *testing.T) {
	store := newFakeStore()
	ix := newTestIndex(t, store)
	ctx := context.Background()

	require.NoError(t, ix.Upsert(ctx, testUser("u1", "Some bio")))
	require.Len(t, store.recs, 1)

	require.NoError(t, ix.Upsert(ctx, testUser("u1", "")))
	assert.Empty(t, store.recs, "profile with no embeddable text leaves the index")
}

func TestIndexBulkUpsert(t *testing.T) {
	store := newFakeStore()
	ix := newTestIndex(t, store)
	ctx := context.Background()

	users := []*models.UserProfile{
		testUser("u1", "Go developer", "Go"),
		testUser("u2", ""), // skipped, nothing to embed
		testUser("u3", "Data engineer", "Spark"),
	}

	require.NoError(t, ix.BulkUpsert(ctx, users))

	assert.Len(t, store.recs, 2)
	assert.Contains(t, store.recs, "u1")
	assert.Contains(t, store.recs, "u3")
}

func TestIndexSearchExcludesIDs(t *testing.T) {
	store := newFakeStore()
	ix := newTestIndex(t, store)
	ctx := context.Background()

	require.NoError(t, ix.Upsert(ctx, testUser("founder", "Go developer", "Go")))
	require.NoError(t, ix.Upsert(ctx, testUser("candidate", "Go developer and distributed systems", "Go")))

	hits := ix.Search(ctx, "Go developer for a distributed system", 10, []string{"founder"})

	require.Len(t, hits, 1)
	assert.Equal(t, "candidate", hits[0].UserID)
}

func TestIndexSearchOrdersByScoreDescending(t *testing.T) {
	store := newFakeStore()
	ix := newTestIndex(t, store)
	ctx := context.Background()

	query := "Senior Rust engineer"

	// One record embedded from the exact query text scores 1 against it.
	exact := testUser("exact", query)
	require.NoError(t, ix.Upsert(ctx, exact))
	require.NoError(t, ix.Upsert(ctx, testUser("other", "Gardener and florist")))

	hits := ix.Search(ctx, "Senior Rust engineer", 10, nil)

	require.Len(t, hits, 2)
	assert.Equal(t, "exact", hits[0].UserID)
	assert.Greater(t, hits[0].Score, hits[1].Score)
}

func TestIndexSearchRespectsK(t *testing.T) {
	store := newFakeStore()
	ix := newTestIndex(t, store)
	ctx := context.Background()

	for _, id := range []string{"a", "b", "c", "d"} {
		require.NoError(t, ix.Upsert(ctx, testUser(id, "Engineer "+id)))
	}

	hits := ix.Search(ctx, "Engineer", 2, nil)
	assert.Len(t, hits, 2)
}

func TestIndexSearchDegradesOnEmbedderFailure(t *testing.T) {
	store := newFakeStore()

	ix, err := New(Params{Embedder: failingEmbedder{}, Store: store})
	require.NoError(t, err)

	hits := ix.Search(context.Background(), "anything", 10, nil)
	assert.Empty(t, hits, "embedder failure must degrade to empty, not error")
}

func TestIndexSearchDegradesOnStoreFailure(t *testing.T) {
	store := newFakeStore()
	ix := newTestIndex(t, store)
	ctx := context.Background()

	require.NoError(t, ix.Upsert(ctx, testUser("u1", "Go developer")))
	store.failAll = true

	hits := ix.Search(ctx, "Go developer", 10, nil)
	assert.Empty(t, hits)
}

func TestIndexSearchEmptyQueryReturnsNothing(t *testing.T) {
	ix := newTestIndex(t, newFakeStore())

	assert.Empty(t, ix.Search(context.Background(), "", 10, nil))
	assert.Empty(t, ix.Search(context.Background(), "query", 0, nil))
}

func TestIndexRemove(t *testing.T) {
	store := newFakeStore()
	ix := newTestIndex(t, store)
	ctx := context.Background()

	require.NoError(t, ix.Upsert(ctx, testUser("u1", "Go developer")))
	require.NoError(t, ix.Remove(ctx, "u1"))

	assert.Empty(t, store.recs)

	// Removing an absent user is still fine.
	require.NoError(t, ix.Remove(ctx, "u1"))
}

func TestIndexQueryEmbeddingCached(t *testing.T) {
	store := newFakeStore()

	counting := &countingEmbedder{inner: embeddings.NewMockClient()}

	ix, err := New(Params{Embedder: counting, Store: store, QueryCacheSize: 16})
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, ix.Upsert(ctx, testUser("u1", "Go developer")))

	callsAfterUpsert := counting.calls

	ix.Search(ctx, "Go developer wanted", 5, nil)
	ix.Search(ctx, "Go developer wanted", 5, nil)
	ix.Search(ctx, "Go developer wanted", 5, nil)

	assert.Equal(t, callsAfterUpsert+1, counting.calls, "repeated identical queries embed once")
}

type countingEmbedder struct {
	inner embeddings.Client
	calls int
}

func (c *countingEmbedder) GetEmbedding(ctx context.Context, text string) ([]float32, error) {
	c.calls++
	return c.inner.GetEmbedding(ctx, text)
}

func (c *countingEmbedder) GetEmbeddings(ctx context.Context, texts []string) ([][]float32, error) {
	c.calls++
	return c.inner.GetEmbeddings(ctx, texts)
}
