package match

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/talentmatch/platform/internal/models"
	"github.com/talentmatch/platform/internal/observability"
)

// ErrProjectNotLive is returned when matches are requested for a project that is
// not accepting candidates.
var ErrProjectNotLive = errors.New("project is not live")

// ProjectStore is the project persistence the match boundary needs.
type ProjectStore interface {
	GetByID(ctx context.Context, id string) (*models.ProjectRequest, error)
	CacheMatches(ctx context.Context, projectID string, result *models.MatchResult) error
	InvalidateMatches(ctx context.Context, projectID string) error
}

// Service is the caller-facing match boundary: it owns the cache check, runs the
// pipeline on a miss, and writes the result back onto the project.
type Service struct {
	orchestrator *Orchestrator
	projects     ProjectStore
	metrics      observability.MatchMetrics
	logger       *slog.Logger
}

// NewService creates a match Service. Metrics may be nil.
func NewService(
	orchestrator *Orchestrator,
	projects ProjectStore,
	metrics observability.MatchMetrics,
	logger *slog.Logger,
) *Service {
	if logger == nil {
		logger = slog.Default()
	}

	return &Service{
		orchestrator: orchestrator,
		projects:     projects,
		metrics:      metrics,
		logger:       logger,
	}
}

// GetMatches returns the match shortlist for a project. A cached result is
// returned verbatim without re-running any pipeline stage. On a miss the full
// pipeline runs and the result is cached best-effort: a cache write failure is
// logged, the computed result is still returned.
//
// Concurrent misses for the same project both run the pipeline and race to
// write the cache. Last writer wins; the results are equivalent so the race is
// tolerated rather than serialized.
func (s *Service) GetMatches(ctx context.Context, projectID string) (*models.MatchResult, bool, error) {
	project, err := s.projects.GetByID(ctx, projectID)
	if err != nil {
		return nil, false, err
	}

	if !project.Live {
		return nil, false, fmt.Errorf("project %s: %w", projectID, ErrProjectNotLive)
	}

	if project.CachedMatches != nil {
		s.recordRequest(ctx, "hit")
		return project.CachedMatches, true, nil
	}

	s.recordRequest(ctx, "miss")

	result := s.orchestrator.FindMatches(ctx, project)

	if err := s.projects.CacheMatches(ctx, projectID, result); err != nil {
		s.logger.WarnContext(ctx, "failed to cache match result",
			"project_id", projectID, "error", err)
	}

	return result, false, nil
}

// RefreshMatches invalidates the cached shortlist and recomputes it.
func (s *Service) RefreshMatches(ctx context.Context, projectID string) (*models.MatchResult, error) {
	if err := s.projects.InvalidateMatches(ctx, projectID); err != nil {
		return nil, fmt.Errorf("invalidate matches: %w", err)
	}

	result, _, err := s.GetMatches(ctx, projectID)

	return result, err
}

func (s *Service) recordRequest(ctx context.Context, outcome string) {
	if s.metrics != nil {
		s.metrics.RecordMatchRequest(ctx, outcome)
	}
}
