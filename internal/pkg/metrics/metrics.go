// Package metrics defines and registers all custom Prometheus metrics for the
// campus locations API. It is the single source of truth for metric names,
// labels, and help strings.
//
// Metrics are registered with the default Prometheus registry on import.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "locations"

// Outcome labels shared by the counters below.
const (
	OutcomeSuccess      = "success"
	OutcomeClientError  = "client_error"
	OutcomeNotFound     = "not_found"
	OutcomeConflict     = "conflict"
	OutcomeUnauthorized = "unauthorized"
	OutcomeError        = "error"
)

// ── Location metrics ──────────────────────────────────────────────────────────

// OperationsTotal counts location use-case invocations.
// Labels:
//   - operation: "list", "get", "create", "update", "delete"
//   - outcome: one of the Outcome* constants
var OperationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "operations_total",
		Help:      "Total number of location operations, by operation and outcome.",
	},
	[]string{"operation", "outcome"},
)

// IdempotentReplaysTotal counts creates answered from a recorded Idempotency-Key.
var IdempotentReplaysTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "idempotent_replays_total",
		Help:      "Total number of create requests answered from an earlier Idempotency-Key.",
	},
)

// ── Auth metrics ──────────────────────────────────────────────────────────────

// LoginsTotal counts login attempts.
// Label:
//   - outcome: "success", "unauthorized", "client_error" or "error"
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of login attempts, by outcome.",
	},
	[]string{"outcome"},
)

// GateRejectionsTotal counts requests stopped by the authorization gate.
// Label:
//   - reason: "missing", "malformed", "invalid", "expired", "forbidden"
var GateRejectionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "gate_rejections_total",
		Help:      "Total number of requests rejected by the authorization gate.",
	},
	[]string{"reason"},
)

// ── Store metrics ─────────────────────────────────────────────────────────────

// StoreCommitDuration measures how long a repository commit takes.
// Labels:
//   - driver: "postgres", "mongo"
//   - result: "ok", "noop" or "error"
var StoreCommitDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "store_commit_duration_seconds",
		Help:      "Duration of repository commits.",
		Buckets:   prometheus.DefBuckets, // .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10
	},
	[]string{"driver", "result"},
)

// ObserveCommit records a commit that started at start and persisted n changes.
func ObserveCommit(driver string, start time.Time, n int, err error) {
	result := "ok"
	switch {
	case err != nil:
		result = "error"
	case n == 0:
		result = "noop"
	}
	StoreCommitDuration.WithLabelValues(driver, result).Observe(time.Since(start).Seconds())
}
