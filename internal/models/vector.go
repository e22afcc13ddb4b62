package models

import "time"

// EmbeddingDimensions is the fixed dimension of every stored profile vector.
// The user_vectors column type and the embedding client's OutputDimensionality
// must both match this value.
const EmbeddingDimensions = 384

// VectorMeta is the metadata projection stored next to each profile vector.
// It exists for filtering and debugging, never for scoring.
type VectorMeta struct {
	Name            string   `json:"name"`
	Title           string   `json:"title"`
	Skills          []string `json:"skills"`
	ExperienceYears int      `json:"experience_years"`
	Location        string   `json:"location"`
	HasResume       bool     `json:"has_resume"`
}

// VectorRecord is one row of the vector index: exactly one per live user,
// upsert semantics (inserting with an existing id overwrites).
type VectorRecord struct {
	UserID    string     `json:"user_id"`
	Embedding []float32  `json:"-"`
	Meta      VectorMeta `json:"meta"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// VectorHit is one nearest-neighbor result. Score is cosine similarity in 0..1,
// higher is more similar.
type VectorHit struct {
	UserID string  `json:"user_id"`
	Score  float64 `json:"score"`
}
