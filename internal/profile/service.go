// Package profile handles user profile mutation and wires it to background
// vector index maintenance.
package profile

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/talentmatch/platform/internal/jobs"
	"github.com/talentmatch/platform/internal/models"
	"github.com/talentmatch/platform/internal/notify"
	"github.com/talentmatch/platform/internal/observability"
)

// embeddingFields are the profile fields that feed the embedding text. A
// mutation touching none of them does not schedule a re-embed.
var embeddingFields = map[string]bool{
	"bio":                true,
	"skills":             true,
	"professional_title": true,
	"experience_years":   true,
	"location":           true,
}

// UserStore is the user persistence the profile service needs.
type UserStore interface {
	Create(ctx context.Context, user *models.UserProfile) (*models.UserProfile, error)
	GetByID(ctx context.Context, id string) (*models.UserProfile, error)
	UpdateProfile(ctx context.Context, id string, updates map[string]any) ([]string, error)
	SetResumeText(ctx context.Context, id, resumeText string) error
	Delete(ctx context.Context, id string) error
}

// Service applies profile mutations and schedules vector reconciliation jobs.
// The persistence write always commits first; job scheduling is best effort and
// never turns a successful mutation into an error.
type Service struct {
	users    UserStore
	inserter jobs.JobInserter
	notifier notify.Dispatcher
	metrics  observability.VectorMetrics
	logger   *slog.Logger
}

// NewService creates a profile Service. Metrics may be nil.
func NewService(
	users UserStore,
	inserter jobs.JobInserter,
	notifier notify.Dispatcher,
	metrics observability.VectorMetrics,
	logger *slog.Logger,
) *Service {
	if logger == nil {
		logger = slog.Default()
	}

	return &Service{
		users:    users,
		inserter: inserter,
		notifier: notifier,
		metrics:  metrics,
		logger:   logger,
	}
}

// CreateUser persists a new profile and schedules its first embedding.
func (s *Service) CreateUser(ctx context.Context, user *models.UserProfile) (*models.UserProfile, error) {
	created, err := s.users.Create(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.scheduleReembed(ctx, created.ID, jobs.ReasonProfileUpdate)

	return created, nil
}

// GetUser returns the profile with the given id.
func (s *Service) GetUser(ctx context.Context, id string) (*models.UserProfile, error) {
	return s.users.GetByID(ctx, id)
}

// UpdateProfile applies field updates. A re-embed job is scheduled only when at
// least one updated field contributes to the embedding text.
func (s *Service) UpdateProfile(ctx context.Context, id string, updates map[string]any) (*models.UserProfile, error) {
	changed, err := s.users.UpdateProfile(ctx, id, updates)
	if err != nil {
		return nil, err
	}

	if touchesEmbedding(changed) {
		s.scheduleReembed(ctx, id, jobs.ReasonProfileUpdate)
	}

	return s.users.GetByID(ctx, id)
}

// SetResume replaces the user's resume text and schedules a re-embed.
func (s *Service) SetResume(ctx context.Context, id, resumeText string) error {
	if err := s.users.SetResumeText(ctx, id, resumeText); err != nil {
		return err
	}

	s.scheduleReembed(ctx, id, jobs.ReasonResumeUpdate)

	return nil
}

// DeleteUser removes the profile and schedules the job that drops the user's
// vector record. The same reconciliation job handles both directions: it
// removes the record once the user no longer resolves.
func (s *Service) DeleteUser(ctx context.Context, id string) error {
	if err := s.users.Delete(ctx, id); err != nil {
		return err
	}

	s.scheduleReembed(ctx, id, jobs.ReasonUserDeleted)

	return nil
}

func (s *Service) scheduleReembed(ctx context.Context, userID, reason string) {
	err := s.inserter.InsertProfileVectorJob(ctx, jobs.ProfileVectorArgs{
		UserID: userID,
		Reason: reason,
	})
	if err != nil {
		// The mutation already committed. Future match quality is affected, the
		// user is told best-effort, and the request still succeeds.
		s.logger.ErrorContext(ctx, "failed to schedule vector job",
			"user_id", userID, "reason", reason, "error", err)

		if s.notifier != nil {
			s.notifier.Notify(ctx, userID, "vector_update", map[string]any{
				"status": "failed",
				"detail": "profile indexing could not be scheduled",
			})
		}

		return
	}

	if s.metrics != nil {
		s.metrics.RecordJobsEnqueued(ctx, 1)
	}
}

func touchesEmbedding(fields []string) bool {
	for _, f := range fields {
		if embeddingFields[f] {
			return true
		}
	}

	return false
}
