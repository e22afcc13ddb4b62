// Package workers contains River workers for background vector maintenance.
package workers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/riverqueue/river"

	"github.com/talentmatch/platform/internal/apperrors"
	"github.com/talentmatch/platform/internal/jobs"
	"github.com/talentmatch/platform/internal/models"
	"github.com/talentmatch/platform/internal/notify"
	"github.com/talentmatch/platform/internal/observability"
)

// VectorIndex is the index maintenance surface the worker needs.
type VectorIndex interface {
	Upsert(ctx context.Context, user *models.UserProfile) error
	Remove(ctx context.Context, userID string) error
}

// UserFinder resolves a user id to a profile.
type UserFinder interface {
	GetByID(ctx context.Context, id string) (*models.UserProfile, error)
}

// ProfileVectorWorkerDeps holds the dependencies for the vector worker.
type ProfileVectorWorkerDeps struct {
	Users    UserFinder
	Index    VectorIndex
	Notifier notify.Dispatcher
	Metrics  observability.VectorMetrics
	Logger   *slog.Logger

	// JobTimeout bounds one job execution. Zero means the default.
	JobTimeout time.Duration
}

const defaultJobTimeout = 60 * time.Second

// ProfileVectorWorker reconciles one user's vector record with their profile:
// re-embeds when the user exists, removes the record when they do not.
type ProfileVectorWorker struct {
	river.WorkerDefaults[jobs.ProfileVectorArgs]
	deps ProfileVectorWorkerDeps
}

// NewProfileVectorWorker creates the worker.
func NewProfileVectorWorker(deps ProfileVectorWorkerDeps) *ProfileVectorWorker {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}

	if deps.JobTimeout <= 0 {
		deps.JobTimeout = defaultJobTimeout
	}

	return &ProfileVectorWorker{deps: deps}
}

// Timeout bounds each job run so a hung provider call cannot pin a worker slot.
func (w *ProfileVectorWorker) Timeout(*river.Job[jobs.ProfileVectorArgs]) time.Duration {
	return w.deps.JobTimeout
}

// Work reconciles the vector record for one user.
func (w *ProfileVectorWorker) Work(ctx context.Context, job *river.Job[jobs.ProfileVectorArgs]) error {
	args := job.Args

	w.deps.Logger.DebugContext(ctx, "processing vector job",
		"job_id", job.ID,
		"user_id", args.UserID,
		"reason", args.Reason,
		"attempt", job.Attempt,
	)

	user, err := w.deps.Users.GetByID(ctx, args.UserID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return w.removeRecord(ctx, job)
		}

		return w.fail(ctx, job, fmt.Errorf("resolve user %s: %w", args.UserID, err))
	}

	if err := w.deps.Index.Upsert(ctx, user); err != nil {
		return w.fail(ctx, job, fmt.Errorf("upsert vector: %w", err))
	}

	w.recordOutcome(ctx, "success")
	w.notifyUser(ctx, args.UserID, "completed")

	w.deps.Logger.InfoContext(ctx, "vector record updated",
		"job_id", job.ID, "user_id", args.UserID, "reason", args.Reason)

	return nil
}

// removeRecord drops the vector record for a user that no longer exists. The
// job completes; a deleted user will not reappear on retry.
func (w *ProfileVectorWorker) removeRecord(ctx context.Context, job *river.Job[jobs.ProfileVectorArgs]) error {
	if err := w.deps.Index.Remove(ctx, job.Args.UserID); err != nil {
		return w.fail(ctx, job, fmt.Errorf("remove vector: %w", err))
	}

	w.recordOutcome(ctx, "removed")

	w.deps.Logger.InfoContext(ctx, "vector record removed for deleted user",
		"job_id", job.ID, "user_id", job.Args.UserID)

	return nil
}

// fail returns the error for retry on intermediate attempts. On the final
// attempt it swallows the error after telling the user, since another retry
// will never come and a discarded job carries no notification.
func (w *ProfileVectorWorker) fail(ctx context.Context, job *river.Job[jobs.ProfileVectorArgs], err error) error {
	lastAttempt := job.Attempt >= job.MaxAttempts

	if !lastAttempt {
		w.recordOutcome(ctx, "retry")

		w.deps.Logger.WarnContext(ctx, "vector job failed, will retry",
			"job_id", job.ID,
			"user_id", job.Args.UserID,
			"attempt", job.Attempt,
			"max_attempts", job.MaxAttempts,
			"error", err,
		)

		return err
	}

	w.recordOutcome(ctx, "failed_final")
	w.notifyUser(ctx, job.Args.UserID, "failed")

	w.deps.Logger.ErrorContext(ctx, "vector job failed permanently",
		"job_id", job.ID,
		"user_id", job.Args.UserID,
		"attempt", job.Attempt,
		"error", err,
	)

	return nil
}

func (w *ProfileVectorWorker) notifyUser(ctx context.Context, userID, status string) {
	if w.deps.Notifier == nil {
		return
	}

	w.deps.Notifier.Notify(ctx, userID, "vector_update", map[string]any{"status": status})
}

func (w *ProfileVectorWorker) recordOutcome(ctx context.Context, status string) {
	if w.deps.Metrics != nil {
		w.deps.Metrics.RecordJobOutcome(ctx, status)
	}
}
