package jobs

import (
	"context"
)

// JobInserter is an interface for enqueueing vector jobs.
// It lets services enqueue work without knowing about River directly.
type JobInserter interface {
	// InsertProfileVectorJob enqueues a vector reconciliation job for one user.
	InsertProfileVectorJob(ctx context.Context, args ProfileVectorArgs) error
}
