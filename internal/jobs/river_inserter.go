package jobs

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/riverqueue/river"
	"github.com/riverqueue/river/rivertype"
)

// RiverJobInserter implements JobInserter using the River client.
type RiverJobInserter struct {
	client *river.Client[pgx.Tx]
}

// NewRiverJobInserter creates a new River-based job inserter.
func NewRiverJobInserter(client *river.Client[pgx.Tx]) *RiverJobInserter {
	return &RiverJobInserter{client: client}
}

// InsertProfileVectorJob enqueues a vector reconciliation job. At most one
// outstanding job exists per user: uniqueness is by user id across every
// not-yet-finished state, so a burst of profile edits produces a single run.
func (r *RiverJobInserter) InsertProfileVectorJob(ctx context.Context, args ProfileVectorArgs) error {
	_, err := r.client.Insert(ctx, args, &river.InsertOpts{
		Queue: VectorsQueueName,
		UniqueOpts: river.UniqueOpts{
			ByArgs: true,
			// JobStatePending is required by River when using ByState.
			ByState: []rivertype.JobState{
				rivertype.JobStatePending,
				rivertype.JobStateAvailable,
				rivertype.JobStateRunning,
				rivertype.JobStateRetryable,
				rivertype.JobStateScheduled,
			},
		},
	})

	return err
}
