package models

import "time"

// Project lifecycle statuses set by the external review process.
const (
	ProjectStatusPending  = "pending"
	ProjectStatusApproved = "approved"
	ProjectStatusRejected = "rejected"
)

// ProjectRequest is a founder's startup project as stored in the projects collection.
// CachedMatches is written exactly once per cache miss by the matching boundary and is
// authoritative until explicitly invalidated.
type ProjectRequest struct {
	ID              string       `bson:"_id,omitempty" json:"id"`
	FounderID       string       `bson:"founder_id" json:"founder_id"`
	Title           string       `bson:"title" json:"title"`
	Description     string       `bson:"description" json:"description"`
	RequiredSkills  []string     `bson:"required_skills" json:"required_skills"`
	Live            bool         `bson:"live" json:"live"`
	Status          string       `bson:"status" json:"status"`
	CachedMatches   *MatchResult `bson:"cached_matches,omitempty" json:"cached_matches,omitempty"`
	MatchesCachedAt *time.Time   `bson:"matches_cached_at,omitempty" json:"matches_cached_at,omitempty"`
	CreatedAt       time.Time    `bson:"created_at" json:"created_at"`
	UpdatedAt       time.Time    `bson:"updated_at" json:"updated_at"`
}
