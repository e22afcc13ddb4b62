package models

import "time"

// RequirementSet is the structured team-needs analysis derived from a project
// description. It is transient: recomputed on every match request, never persisted,
// so scoring always runs against the live description.
type RequirementSet struct {
	RequiredSkills    []string `json:"required_skills"`
	RequiredRoles     []string `json:"required_roles"`
	KeyCompetencies   []string `json:"key_competencies"`
	FoundingQualities []string `json:"founding_qualities"`
}

// IsEmpty reports whether the analysis produced nothing (extractor fallback value).
func (r RequirementSet) IsEmpty() bool {
	return len(r.RequiredSkills) == 0 &&
		len(r.RequiredRoles) == 0 &&
		len(r.KeyCompetencies) == 0 &&
		len(r.FoundingQualities) == 0
}

// CandidateRanking is one scored candidate as returned by the ranker.
// CandidateIndex references a 0-based position in the exact candidate list sent in
// the ranking prompt; it must be validated against that list before use. A negative
// index marks an entry whose index could not be parsed as an integer.
type CandidateRanking struct {
	CandidateIndex  int      `json:"candidate_index"`
	MatchPercentage int      `json:"match_percentage"`
	Reasoning       string   `json:"reasoning"`
	Strengths       []string `json:"strengths"`
	Concerns        []string `json:"concerns"`
}

// MatchEntry is one enriched candidate in the final match list.
type MatchEntry struct {
	UserID            string   `bson:"user_id" json:"user_id"`
	Name              string   `bson:"name" json:"name"`
	Email             string   `bson:"email" json:"email"`
	ProfessionalTitle string   `bson:"professional_title" json:"professional_title"`
	Skills            []string `bson:"skills" json:"skills"`
	Bio               string   `bson:"bio" json:"bio"`
	ExperienceYears   int      `bson:"experience_years" json:"experience_years"`
	Location          string   `bson:"location" json:"location"`
	MatchPercentage   int      `bson:"match_percentage" json:"match_percentage"`
	Reasoning         string   `bson:"reasoning" json:"reasoning"`
	Strengths         []string `bson:"strengths" json:"strengths"`
	Concerns          []string `bson:"concerns" json:"concerns"`
	Similarity        float64  `bson:"similarity" json:"similarity"`
}

// MatchResult is the ranked shortlist returned to the caller and cached on the
// project: at most five entries, highest match percentage first.
type MatchResult struct {
	ProjectID  string       `bson:"project_id" json:"project_id"`
	Matches    []MatchEntry `bson:"matches" json:"matches"`
	ComputedAt time.Time    `bson:"computed_at" json:"computed_at"`
}
