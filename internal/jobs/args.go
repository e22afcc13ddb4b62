// Package jobs defines River job arguments and queue wiring for background
// vector index maintenance.
package jobs

// VectorsQueueName is the dedicated queue for profile vector jobs.
const VectorsQueueName = "vectors"

// ProfileVectorArgs requests reconciliation of one user's vector record: re-embed
// when the profile still exists, remove the record when it does not. The job is
// unique by args, so repeated mutations of the same user collapse into one
// outstanding job.
type ProfileVectorArgs struct {
	// UserID is the id of the user whose vector record needs reconciling.
	// Only this field participates in uniqueness.
	UserID string `json:"user_id" river:"unique"`

	// Reason records what triggered the job, for logs only.
	// Valid values: "profile_update", "resume_update", "user_deleted", "backfill".
	Reason string `json:"reason"`
}

// Kind returns the job type identifier for River.
func (ProfileVectorArgs) Kind() string { return "profile_vector" }

// Trigger reasons.
const (
	ReasonProfileUpdate = "profile_update"
	ReasonResumeUpdate  = "resume_update"
	ReasonUserDeleted   = "user_deleted"
	ReasonBackfill      = "backfill"
)
