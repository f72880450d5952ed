// internal/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "trust_safety"

var (
	ScoringRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "scoring_requests_total",
		Help:      "Scoring requests by kind and resulting severity.",
	}, []string{"kind", "severity"})

	ScoringDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "scoring_duration_seconds",
		Help:      "End-to-end scoring latency including model calls.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"kind"})

	CollaboratorFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "collaborator_failures_total",
		Help:      "Model calls that timed out or failed.",
	}, []string{"model", "reason"})

	FlagsCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "flags_created_total",
		Help:      "Flags entered into the triage queue.",
	}, []string{"severity"})

	TriageActions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "triage_actions_total",
		Help:      "Operator actions by action and result.",
	}, []string{"action", "result"})

	NarrativeCache = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "narrative_cache_total",
		Help:      "Narrative cache lookups by tier and result.",
	}, []string{"tier", "result"})
)
