package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ResponsesProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "activity_responses_processed_total",
			Help: "Total number of participant responses accepted per activity kind",
		},
		[]string{"kind"},
	)

	ResponsesRejected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "activity_responses_rejected_total",
			Help: "Total number of participant responses rejected per activity kind",
		},
		[]string{"kind", "error_code"},
	)

	StateTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "activity_state_transitions_total",
			Help: "Total number of activity state transitions per target state",
		},
		[]string{"target_state"},
	)

	ActivitiesExpired = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "activity_auto_expired_total",
			Help: "Total number of activities expired by the automatic sweep",
		},
	)

	ExpirySweepDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name: "activity_expiry_sweep_duration_seconds",
			Help: "Duration of expiry sweep runs in seconds",
		},
	)
)
