// Package metrics defines and registers all custom Prometheus metrics for
// the marketplace auth service. It is the single source of truth for metric
// names, labels, and help strings.
//
// Metrics are registered with the default registry on first import via
// promauto; the router exposes them on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "marketplace_auth"

// LoginsTotal counts login attempts.
// Labels:
//   - strategy: "directory", "hosted" or "bypass"
//   - result: "ok" or "error"
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of login attempts, by strategy and result.",
	},
	[]string{"strategy", "result"},
)

// RegistrationsTotal counts successful directory registrations by role.
var RegistrationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "registrations_total",
		Help:      "Total number of successful directory registrations, by role.",
	},
	[]string{"role"},
)

// ResolutionsTotal counts session resolution attempts by terminal outcome.
// Label:
//   - outcome: terminal resolver state, or "stale" / "error"
var ResolutionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "resolutions_total",
		Help:      "Total number of session resolution attempts, by outcome.",
	},
	[]string{"outcome"},
)

// ResolutionDuration measures how long one resolution attempt takes.
var ResolutionDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "resolution_duration_seconds",
		Help:      "Duration of session resolution from intake to terminal state.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"outcome"},
)

// PinChecksTotal counts PIN verifications.
// Label:
//   - result: "ok", "mismatch" or "format"
var PinChecksTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "pin_checks_total",
		Help:      "Total number of PIN verification attempts, by result.",
	},
	[]string{"result"},
)
