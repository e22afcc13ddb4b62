package match

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/talentmatch/platform/internal/models"
	"github.com/talentmatch/platform/internal/observability"
)

// maxFinalMatches caps the shortlist returned to the caller.
const maxFinalMatches = 5

// defaultRetrievalK is how many candidates the vector index is asked for.
const defaultRetrievalK = 10

// CandidateSearcher retrieves candidate ids by semantic similarity. A degraded
// backend returns an empty slice rather than an error.
type CandidateSearcher interface {
	Search(ctx context.Context, queryText string, k int, excludeIDs []string) []models.VectorHit
}

// UserFinder resolves user ids to profiles.
type UserFinder interface {
	GetByID(ctx context.Context, id string) (*models.UserProfile, error)
}

// Orchestrator runs the full match pipeline: analyze, retrieve, hydrate, rank,
// reconcile. Every stage degrades to fewer or no matches; nothing here returns
// an error to the caller.
type Orchestrator struct {
	analyzer   *Analyzer
	ranker     *Ranker
	searcher   CandidateSearcher
	users      UserFinder
	retrievalK int
	metrics    observability.MatchMetrics
	logger     *slog.Logger
}

// OrchestratorParams configures an Orchestrator. RetrievalK 0 means the default;
// Metrics may be nil.
type OrchestratorParams struct {
	Analyzer   *Analyzer
	Ranker     *Ranker
	Searcher   CandidateSearcher
	Users      UserFinder
	RetrievalK int
	Metrics    observability.MatchMetrics
	Logger     *slog.Logger
}

// NewOrchestrator creates an Orchestrator.
func NewOrchestrator(p OrchestratorParams) (*Orchestrator, error) {
	if p.Analyzer == nil || p.Ranker == nil || p.Searcher == nil || p.Users == nil {
		return nil, fmt.Errorf("match: analyzer, ranker, searcher and users are all required")
	}

	k := p.RetrievalK
	if k <= 0 {
		k = defaultRetrievalK
	}

	logger := p.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Orchestrator{
		analyzer:   p.Analyzer,
		ranker:     p.Ranker,
		searcher:   p.Searcher,
		users:      p.Users,
		retrievalK: k,
		metrics:    p.Metrics,
		logger:     logger,
	}, nil
}

// FindMatches computes the ranked candidate shortlist for a project. The result
// holds at most five entries sorted by descending match percentage and never
// includes the project's founder. The caller is responsible for persisting the
// result onto the project.
func (o *Orchestrator) FindMatches(ctx context.Context, project *models.ProjectRequest) *models.MatchResult {
	start := time.Now()
	defer func() {
		if o.metrics != nil {
			o.metrics.RecordMatchDuration(ctx, time.Since(start))
		}
	}()

	result := &models.MatchResult{
		ProjectID:  project.ID,
		Matches:    []models.MatchEntry{},
		ComputedAt: time.Now().UTC(),
	}

	// Analyze. An empty requirement set is valid downstream input.
	reqs := o.analyzer.Analyze(ctx, project.Description)

	// Retrieve.
	hits := o.searcher.Search(ctx, searchQuery(project, reqs), o.retrievalK, []string{project.FounderID})
	if len(hits) == 0 {
		o.logger.InfoContext(ctx, "no candidates retrieved", "project_id", project.ID)
		return result
	}

	// Hydrate. Ids that no longer resolve are expected drift between the index
	// and the user store, dropped without failing the request.
	candidates, similarity := o.hydrate(ctx, hits)
	if len(candidates) == 0 {
		return result
	}

	// The ranker prompt covers at most maxRankedCandidates, so the positional
	// map must span exactly the slice the prompt will present. Anything beyond
	// the bound is never shown to the model and must not be resolvable.
	if len(candidates) > maxRankedCandidates {
		candidates = candidates[:maxRankedCandidates]
	}

	// The positional map is the single source of truth for resolving ranker
	// output. Rankings referencing anything outside it are discarded.
	candidateByIndex := make(map[int]*models.UserProfile, len(candidates))
	for i, c := range candidates {
		candidateByIndex[i] = c
	}

	// Rank.
	rankings := o.ranker.Rank(ctx, project, candidates, reqs)

	// Reconcile.
	result.Matches = o.reconcile(ctx, rankings, candidateByIndex, similarity)

	if o.metrics != nil {
		o.metrics.RecordCandidatesEmitted(ctx, int64(len(result.Matches)))
	}

	o.logger.InfoContext(ctx, "match pipeline complete",
		"project_id", project.ID,
		"retrieved", len(hits),
		"hydrated", len(candidates),
		"ranked", len(rankings),
		"emitted", len(result.Matches),
	)

	return result
}

func (o *Orchestrator) hydrate(
	ctx context.Context, hits []models.VectorHit,
) ([]*models.UserProfile, map[string]float64) {
	candidates := make([]*models.UserProfile, 0, len(hits))
	similarity := make(map[string]float64, len(hits))

	for _, hit := range hits {
		user, err := o.users.GetByID(ctx, hit.UserID)
		if err != nil {
			o.logger.DebugContext(ctx, "dropping unresolvable candidate",
				"user_id", hit.UserID, "error", err)
			continue
		}

		candidates = append(candidates, user)
		similarity[user.ID] = hit.Score
	}

	return candidates, similarity
}

func (o *Orchestrator) reconcile(
	ctx context.Context,
	rankings []models.CandidateRanking,
	candidateByIndex map[int]*models.UserProfile,
	similarity map[string]float64,
) []models.MatchEntry {
	matches := make([]models.MatchEntry, 0, maxFinalMatches)
	seen := make(map[string]bool, maxFinalMatches)

	for _, ranking := range rankings {
		candidate, ok := candidateByIndex[ranking.CandidateIndex]
		if !ok {
			o.logger.WarnContext(ctx, "dropping ranking with out-of-range candidate index",
				"candidate_index", ranking.CandidateIndex,
				"candidate_count", len(candidateByIndex),
			)

			if o.metrics != nil {
				o.metrics.RecordRankingDropped(ctx, "invalid_index")
			}

			continue
		}

		if seen[candidate.ID] {
			o.logger.WarnContext(ctx, "dropping duplicate ranking",
				"candidate_index", ranking.CandidateIndex,
				"user_id", candidate.ID,
			)

			if o.metrics != nil {
				o.metrics.RecordRankingDropped(ctx, "duplicate")
			}

			continue
		}

		seen[candidate.ID] = true
		matches = append(matches, entry(candidate, ranking, similarity[candidate.ID]))

		if len(matches) >= maxFinalMatches {
			break
		}
	}

	return matches
}

// searchQuery builds the composite retrieval query from the description and the
// extracted requirements, matching the text shape profiles are embedded in.
func searchQuery(project *models.ProjectRequest, reqs models.RequirementSet) string {
	skills := reqs.RequiredSkills
	if len(skills) == 0 {
		skills = project.RequiredSkills
	}

	return fmt.Sprintf("%s Required skills: %s. Roles: %s",
		project.Description,
		strings.Join(skills, ", "),
		strings.Join(reqs.RequiredRoles, ", "),
	)
}

func entry(candidate *models.UserProfile, ranking models.CandidateRanking, similarity float64) models.MatchEntry {
	strengths := ranking.Strengths
	if strengths == nil {
		strengths = []string{}
	}

	concerns := ranking.Concerns
	if concerns == nil {
		concerns = []string{}
	}

	return models.MatchEntry{
		UserID:            candidate.ID,
		Name:              candidate.Name,
		Email:             candidate.Email,
		ProfessionalTitle: candidate.ProfessionalTitle,
		Skills:            candidate.Skills,
		Bio:               candidate.Bio,
		ExperienceYears:   candidate.ExperienceYears,
		Location:          candidate.Location,
		MatchPercentage:   ranking.MatchPercentage,
		Reasoning:         ranking.Reasoning,
		Strengths:         strengths,
		Concerns:          concerns,
		Similarity:        similarity,
	}
}
