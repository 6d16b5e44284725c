// Package metrics defines Prometheus metrics for metacontrold.
//
// Metric naming follows Prometheus conventions: a metacontrol_ prefix for
// all custom metrics, a _total suffix for counters, and a _seconds suffix
// for duration histograms. Metrics register against a plain Prometheus
// registry rather than any Kubernetes-controller scaffolding, since
// metacontrold is not a k8s controller.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// RouteResolutionsTotal counts PackageResolver outcomes by resolution
	// kind ("success", "not_found", "not_meta", "verb_not_mapped", "error").
	RouteResolutionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "metacontrol_route_resolutions_total",
			Help: "Total meta-package resolutions by outcome kind.",
		},
		[]string{"outcome"},
	)

	// ActivationClientDurationSeconds is a histogram of backend invocation
	// latency.
	ActivationClientDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "metacontrol_activation_client_duration_seconds",
			Help:    "Duration of ActivationClient backend invocations in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"outcome"},
	)

	// FanoutRuleOutcomesTotal counts individual rule invocation outcomes
	// during trigger fan-out by classification level.
	FanoutRuleOutcomesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "metacontrol_fanout_rule_outcomes_total",
			Help: "Total trigger fan-out rule invocations by log level.",
		},
		[]string{"level"},
	)

	// FanoutDurationSeconds is a histogram of end-to-end fan-out duration
	// for a fired trigger, across all its active rules.
	FanoutDurationSeconds = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "metacontrol_fanout_duration_seconds",
			Help:    "Duration of a trigger's full rule fan-out in seconds.",
			Buckets: prometheus.DefBuckets,
		},
	)

	// ActivationStoreWriteFailuresTotal counts TriggerActivationWriter put
	// failures, which are logged but never retried.
	ActivationStoreWriteFailuresTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "metacontrol_activation_store_write_failures_total",
			Help: "Total trigger activation store write failures.",
		},
	)

	// HousekeepingCompactedTotal counts activation documents deleted by
	// the retention compaction job.
	HousekeepingCompactedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "metacontrol_housekeeping_compacted_total",
			Help: "Total trigger activation documents deleted by retention compaction.",
		},
	)
)

// Registry is the registry metacontrold serves on its /metrics endpoint.
var Registry = prometheus.NewRegistry()

func init() {
	Registry.MustRegister(
		RouteResolutionsTotal,
		ActivationClientDurationSeconds,
		FanoutRuleOutcomesTotal,
		FanoutDurationSeconds,
		ActivationStoreWriteFailuresTotal,
		HousekeepingCompactedTotal,
	)
}

// RecordActivationClientInvoke records one ActivationClient.Invoke call.
func RecordActivationClientInvoke(outcome string, duration time.Duration) {
	ActivationClientDurationSeconds.WithLabelValues(outcome).Observe(duration.Seconds())
}

// RecordRouteResolution records one PackageResolver.Resolve call.
func RecordRouteResolution(outcome string) {
	RouteResolutionsTotal.WithLabelValues(outcome).Inc()
}

// RecordFanoutRuleOutcome records one rule's classification during fan-out.
func RecordFanoutRuleOutcome(level string) {
	FanoutRuleOutcomesTotal.WithLabelValues(level).Inc()
}

// RecordFanoutDuration records the end-to-end duration of one trigger fire.
func RecordFanoutDuration(duration time.Duration) {
	FanoutDurationSeconds.Observe(duration.Seconds())
}

// RecordActivationStoreWriteFailure records one TriggerActivationWriter put
// failure.
func RecordActivationStoreWriteFailure() {
	ActivationStoreWriteFailuresTotal.Inc()
}

// RecordHousekeepingCompacted records n activation documents deleted by one
// compaction run.
func RecordHousekeepingCompacted(n int64) {
	HousekeepingCompactedTotal.Add(float64(n))
}
