package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metric names for the matching pipeline and vector maintenance.
const (
	MetricNameMatchRequests   = "match_requests_total"
	MetricNameMatchCandidates = "match_candidates_emitted_total"
	MetricNameRankingsDropped = "match_rankings_dropped_total"
	MetricNameMatchDuration   = "match_pipeline_duration_seconds"

	MetricNameVectorJobsEnqueued = "vector_jobs_enqueued_total"
	MetricNameVectorOutcomes     = "vector_job_outcomes_total"
	MetricNameSearchDegraded     = "vector_search_degraded_total"
)

// MatchMetrics records matching pipeline metrics. Methods accept ctx for future
// exemplar support.
type MatchMetrics interface {
	// RecordMatchRequest counts one match computation by cache outcome ("hit" or "miss").
	RecordMatchRequest(ctx context.Context, cacheOutcome string)
	// RecordCandidatesEmitted counts candidates in a returned match list.
	RecordCandidatesEmitted(ctx context.Context, count int64)
	// RecordRankingDropped counts rankings discarded during reconciliation
	// (reason: "invalid_index" or "duplicate").
	RecordRankingDropped(ctx context.Context, reason string)
	// RecordMatchDuration records the wall time of one full pipeline run.
	RecordMatchDuration(ctx context.Context, duration time.Duration)
}

// VectorMetrics records vector index maintenance metrics.
type VectorMetrics interface {
	RecordJobsEnqueued(ctx context.Context, count int64)
	// RecordJobOutcome counts finished re-embed jobs by status
	// ("success", "removed", "retry", "failed_final").
	RecordJobOutcome(ctx context.Context, status string)
	// RecordSearchDegraded counts searches that returned empty because the
	// embedding provider or vector store was unreachable.
	RecordSearchDegraded(ctx context.Context)
}

// Metrics bundles the pipeline metric groups. Fields are nil when metrics are disabled.
type Metrics struct {
	Match  MatchMetrics
	Vector VectorMetrics
}

// NewMetrics creates all metric groups on the given meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	match, err := newMatchMetrics(meter)
	if err != nil {
		return nil, err
	}

	vector, err := newVectorMetrics(meter)
	if err != nil {
		return nil, err
	}

	return &Metrics{Match: match, Vector: vector}, nil
}

type matchMetrics struct {
	requests   metric.Int64Counter
	candidates metric.Int64Counter
	dropped    metric.Int64Counter
	duration   metric.Float64Histogram
}

func newMatchMetrics(meter metric.Meter) (MatchMetrics, error) {
	requests, err := meter.Int64Counter(
		MetricNameMatchRequests,
		metric.WithDescription("Total match requests by cache outcome"),
	)
	if err != nil {
		return nil, fmt.Errorf("create match requests counter: %w", err)
	}

	candidates, err := meter.Int64Counter(
		MetricNameMatchCandidates,
		metric.WithDescription("Total candidates emitted in match results"),
	)
	if err != nil {
		return nil, fmt.Errorf("create match candidates counter: %w", err)
	}

	dropped, err := meter.Int64Counter(
		MetricNameRankingsDropped,
		metric.WithDescription("Total rankings dropped during reconciliation by reason"),
	)
	if err != nil {
		return nil, fmt.Errorf("create rankings dropped counter: %w", err)
	}

	duration, err := meter.Float64Histogram(
		MetricNameMatchDuration,
		metric.WithDescription("Match pipeline duration (seconds)"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("create match duration histogram: %w", err)
	}

	return &matchMetrics{
		requests:   requests,
		candidates: candidates,
		dropped:    dropped,
		duration:   duration,
	}, nil
}

func (m *matchMetrics) RecordMatchRequest(ctx context.Context, cacheOutcome string) {
	m.requests.Add(ctx, 1, metric.WithAttributes(attribute.String("cache", cacheOutcome)))
}

func (m *matchMetrics) RecordCandidatesEmitted(ctx context.Context, count int64) {
	m.candidates.Add(ctx, count)
}

func (m *matchMetrics) RecordRankingDropped(ctx context.Context, reason string) {
	m.dropped.Add(ctx, 1, metric.WithAttributes(attribute.String("reason", reason)))
}

func (m *matchMetrics) RecordMatchDuration(ctx context.Context, duration time.Duration) {
	m.duration.Record(ctx, duration.Seconds())
}

type vectorMetrics struct {
	jobsEnqueued metric.Int64Counter
	outcomes     metric.Int64Counter
	degraded     metric.Int64Counter
}

func newVectorMetrics(meter metric.Meter) (VectorMetrics, error) {
	jobsEnqueued, err := meter.Int64Counter(
		MetricNameVectorJobsEnqueued,
		metric.WithDescription("Total vector re-embed jobs enqueued"),
	)
	if err != nil {
		return nil, fmt.Errorf("create vector jobs enqueued counter: %w", err)
	}

	outcomes, err := meter.Int64Counter(
		MetricNameVectorOutcomes,
		metric.WithDescription("Total vector job outcomes by status"),
	)
	if err != nil {
		return nil, fmt.Errorf("create vector outcomes counter: %w", err)
	}

	degraded, err := meter.Int64Counter(
		MetricNameSearchDegraded,
		metric.WithDescription("Total vector searches degraded to empty results"),
	)
	if err != nil {
		return nil, fmt.Errorf("create search degraded counter: %w", err)
	}

	return &vectorMetrics{
		jobsEnqueued: jobsEnqueued,
		outcomes:     outcomes,
		degraded:     degraded,
	}, nil
}

func (v *vectorMetrics) RecordJobsEnqueued(ctx context.Context, count int64) {
	v.jobsEnqueued.Add(ctx, count)
}

func (v *vectorMetrics) RecordJobOutcome(ctx context.Context, status string) {
	v.outcomes.Add(ctx, 1, metric.WithAttributes(attribute.String("status", status)))
}

func (v *vectorMetrics) RecordSearchDegraded(ctx context.Context) {
	v.degraded.Add(ctx, 1)
}
