// Package metrics provides Prometheus exporters for application metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics for the gamification engine.
var (
	// Counters.
	BadgesAwardedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "badges_awarded_total",
			Help: "Total number of badges awarded",
		},
		[]string{"badge_name", "rarity"},
	)

	BadgeEvaluationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "badge_evaluations_total",
			Help: "Total badge evaluation passes by outcome",
		},
		[]string{"status"},
	)

	XPGrantedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "xp_granted_total",
			Help: "Total experience points granted",
		},
		[]string{"reason"},
	)

	// Gauges.
	ActiveBadgeHolders = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "active_badge_holders",
			Help: "Current number of users holding each badge",
		},
		[]string{"badge_name"},
	)

	// Histograms.
	BadgeEvaluationDurationSeconds = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "badge_evaluation_duration_seconds",
			Help:    "Time taken to run one badge evaluation pass",
			Buckets: prometheus.ExponentialBuckets(0.005, 2, 12), // 5ms to ~20s
		},
	)

	SnapshotCollectionDurationSeconds = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "snapshot_collection_duration_seconds",
			Help:    "Time taken to aggregate a user statistics snapshot",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
		},
	)
)

// Evaluation outcome labels.
const (
	EvaluationStatusSuccess = "success"
	EvaluationStatusError   = "error"
)

// RecordBadgeAwarded records a badge award.
func RecordBadgeAwarded(badgeName, rarity string) {
	BadgesAwardedTotal.WithLabelValues(badgeName, rarity).Inc()
}

// RecordEvaluation records one evaluation pass outcome.
func RecordEvaluation(status string) {
	BadgeEvaluationsTotal.WithLabelValues(status).Inc()
}

// RecordXPGranted records granted experience points.
func RecordXPGranted(reason string, amount int) {
	XPGrantedTotal.WithLabelValues(reason).Add(float64(amount))
}

// SetActiveBadgeHolders sets the current holder count for a badge.
func SetActiveBadgeHolders(badgeName string, count int) {
	ActiveBadgeHolders.WithLabelValues(badgeName).Set(float64(count))
}

// ObserveEvaluationDuration observes the duration of one evaluation pass.
func ObserveEvaluationDuration(d time.Duration) {
	BadgeEvaluationDurationSeconds.Observe(d.Seconds())
}

// ObserveSnapshotDuration observes the duration of one snapshot collection.
func ObserveSnapshotDuration(d time.Duration) {
	SnapshotCollectionDurationSeconds.Observe(d.Seconds())
}
