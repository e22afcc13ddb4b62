package vectorindex

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"

	"github.com/talentmatch/platform/internal/models"
)

// PGStore persists vector records in Postgres with pgvector. The pool must
// register pgvector types on connect (see database.WithAfterConnect).
type PGStore struct {
	db *pgxpool.Pool
}

// NewPGStore creates a Postgres-backed vector store.
func NewPGStore(db *pgxpool.Pool) *PGStore {
	return &PGStore{db: db}
}

// EnsureSchema creates the vector extension, the user_vectors table, and the
// HNSW cosine index if they do not exist. Safe to run on every startup.
func (s *PGStore) EnsureSchema(ctx context.Context) error {
	stmts := []string{
		`CREATE EXTENSION IF NOT EXISTS vector`,
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS user_vectors (
			user_id text PRIMARY KEY,
			embedding vector(%d) NOT NULL,
			name text NOT NULL DEFAULT '',
			title text NOT NULL DEFAULT '',
			skills text[] NOT NULL DEFAULT '{}',
			experience_years int NOT NULL DEFAULT 0,
			location text NOT NULL DEFAULT '',
			has_resume boolean NOT NULL DEFAULT false,
			updated_at timestamptz NOT NULL DEFAULT now()
		)`, models.EmbeddingDimensions),
		`CREATE INDEX IF NOT EXISTS user_vectors_embedding_idx
			ON user_vectors USING hnsw (embedding vector_cosine_ops)`,
	}

	for _, stmt := range stmts {
		if _, err := s.db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensure user_vectors schema: %w", err)
		}
	}

	return nil
}

const upsertVectorSQL = `
	INSERT INTO user_vectors (user_id, embedding, name, title, skills, experience_years, location, has_resume, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	ON CONFLICT (user_id)
	DO UPDATE SET
		embedding = EXCLUDED.embedding,
		name = EXCLUDED.name,
		title = EXCLUDED.title,
		skills = EXCLUDED.skills,
		experience_years = EXCLUDED.experience_years,
		location = EXCLUDED.location,
		has_resume = EXCLUDED.has_resume,
		updated_at = EXCLUDED.updated_at`

// Upsert inserts or overwrites the vector row for the record's user.
func (s *PGStore) Upsert(ctx context.Context, rec *models.VectorRecord) error {
	_, err := s.db.Exec(ctx, upsertVectorSQL, upsertArgs(rec)...)
	if err != nil {
		return fmt.Errorf("user_vectors upsert %s: %w", rec.UserID, err)
	}

	return nil
}

// UpsertBatch writes all records in one pipelined batch.
func (s *PGStore) UpsertBatch(ctx context.Context, recs []*models.VectorRecord) error {
	if len(recs) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, rec := range recs {
		batch.Queue(upsertVectorSQL, upsertArgs(rec)...)
	}

	results := s.db.SendBatch(ctx, batch)
	defer results.Close()

	for _, rec := range recs {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("user_vectors batch upsert %s: %w", rec.UserID, err)
		}
	}

	return nil
}

// Delete removes the user's vector row. Deleting a missing row is not an error.
func (s *PGStore) Delete(ctx context.Context, userID string) error {
	_, err := s.db.Exec(ctx, `DELETE FROM user_vectors WHERE user_id = $1`, userID)
	if err != nil {
		return fmt.Errorf("user_vectors delete %s: %w", userID, err)
	}

	return nil
}

// Nearest returns up to k rows ordered by cosine distance to the query embedding.
// Score is 1 - distance, so higher means more similar.
func (s *PGStore) Nearest(
	ctx context.Context, embedding []float32, k int, excludeIDs []string,
) ([]models.VectorHit, error) {
	if excludeIDs == nil {
		excludeIDs = []string{}
	}

	rows, err := s.db.Query(ctx, `
		SELECT user_id, (1 - (embedding <=> $1)) AS score
		FROM user_vectors
		WHERE user_id != ALL($2::text[])
		ORDER BY embedding <=> $1
		LIMIT $3`,
		pgvector.NewVector(embedding), excludeIDs, k,
	)
	if err != nil {
		return nil, fmt.Errorf("user_vectors nearest: %w", err)
	}
	defer rows.Close()

	hits := make([]models.VectorHit, 0, k)

	for rows.Next() {
		var hit models.VectorHit
		if err := rows.Scan(&hit.UserID, &hit.Score); err != nil {
			return nil, fmt.Errorf("scan nearest hit: %w", err)
		}

		hits = append(hits, hit)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating nearest hits: %w", err)
	}

	return hits, nil
}

func upsertArgs(rec *models.VectorRecord) []any {
	skills := rec.Meta.Skills
	if skills == nil {
		skills = []string{}
	}

	return []any{
		rec.UserID,
		pgvector.NewVector(rec.Embedding),
		rec.Meta.Name,
		rec.Meta.Title,
		skills,
		rec.Meta.ExperienceYears,
		rec.Meta.Location,
		rec.Meta.HasResume,
		rec.UpdatedAt,
	}
}
