// internal/common/metrics/metrics.go
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"query-intent-workers/internal/intent"
)

var (
	WorkerJobsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_completed_total",
			Help: "Total number of jobs completed by worker",
		},
		[]string{"task_type"},
	)

	WorkerJobsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_failed_total",
			Help: "Total number of jobs failed by worker",
		},
		[]string{"task_type", "error_code"},
	)

	WorkerJobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "worker_job_duration_seconds",
			Help: "Duration of job processing in seconds",
		},
		[]string{"task_type"},
	)

	WorkerJobsActive = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "worker_jobs_active",
			Help: "Number of active jobs per worker",
		},
		[]string{"task_type"},
	)

	ResultCacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "query_result_cache_lookups_total",
			Help: "Record cache lookups by result (hit, miss, error)",
		},
		[]string{"result"},
	)
)

var (
	QueriesBuilt = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "query_intent_queries_total",
			Help: "Queries processed by outcome (success, comparison, incomplete)",
		},
		[]string{"outcome"},
	)

	QueryBuildDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "query_intent_build_duration_seconds",
			Help:    "Time spent turning a query into records",
			Buckets: []float64{.00005, .0001, .00025, .0005, .001, .0025, .005, .01, .05},
		},
		[]string{"outcome"},
	)

	ComponentMatches = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "query_intent_component_matches_total",
			Help: "Entity and metric resolutions by strategy (exact, approximate, none)",
		},
		[]string{"component", "strategy"},
	)

	DateTokens = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "query_intent_date_tokens_total",
			Help: "Date tokens seen by side and kind (absent, relative, absolute)",
		},
		[]string{"side", "kind"},
	)
)

// PipelineRecorder reports builder observations to Prometheus.
type PipelineRecorder struct{}

var _ intent.Recorder = PipelineRecorder{}

func NewPipelineRecorder() PipelineRecorder {
	return PipelineRecorder{}
}

func (PipelineRecorder) RecordExtraction(raw intent.RawMatch) {
	ComponentMatches.WithLabelValues("entity", string(raw.EntityStrategy)).Inc()
	ComponentMatches.WithLabelValues("parameter", string(raw.ParameterStrategy)).Inc()
	DateTokens.WithLabelValues("start", tokenKind(raw.StartDate)).Inc()
	DateTokens.WithLabelValues("end", tokenKind(raw.EndDate)).Inc()
}

func (PipelineRecorder) RecordOutcome(outcome string, elapsed time.Duration) {
	QueriesBuilt.WithLabelValues(outcome).Inc()
	QueryBuildDuration.WithLabelValues(outcome).Observe(elapsed.Seconds())
}

func tokenKind(token string) string {
	switch token {
	case "":
		return "absent"
	case intent.PhraseLastYear, intent.PhraseThisYear, intent.PhraseLastQuarter, intent.PhrasePreviousMonth:
		return "relative"
	default:
		return "absolute"
	}
}
