// Package metrics defines and registers all custom Prometheus metrics for the
// orderdesk console client. It is the single source of truth for metric names,
// labels, and help strings.
//
// Metrics register with the default Prometheus registry at init time; the dev
// backend exposes them on /metrics alongside its own HTTP metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "orderdesk"

// ── Refresh metrics ───────────────────────────────────────────────────────────

// RefreshTotal counts completed token refresh operations.
// Label:
//   - outcome: "success", "expired" (refresh token rejected), or "error"
//     (transport failure)
var RefreshTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "refresh_total",
		Help:      "Total number of token refresh operations, by outcome.",
	},
	[]string{"outcome"},
)

// RefreshCoalescedTotal counts callers that joined an already in-flight
// refresh instead of starting their own.
var RefreshCoalescedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "refresh_coalesced_total",
		Help:      "Total number of refresh callers coalesced into an in-flight operation.",
	},
)

// ── Request metrics ───────────────────────────────────────────────────────────

// RequestsTotal counts backend requests issued by the authenticated client.
// Labels:
//   - method: HTTP method
//   - status: HTTP status code, or "network_error" when no response arrived
var RequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "requests_total",
		Help:      "Total number of backend requests, by method and response status.",
	},
	[]string{"method", "status"},
)

// RequestRetriesTotal counts requests re-issued after a successful refresh.
// Each logical call retries at most once.
var RequestRetriesTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "request_retries_total",
		Help:      "Total number of requests re-issued once after a 401-triggered refresh.",
	},
)

// ── Session metrics ───────────────────────────────────────────────────────────

// SessionChangesTotal counts session state transitions.
// Label:
//   - state: "login", "register", "logout", or "expired"
var SessionChangesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "session_changes_total",
		Help:      "Total number of session state changes, by resulting state.",
	},
	[]string{"state"},
)
