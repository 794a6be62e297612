// Package metrics defines and registers all custom Prometheus metrics for the
// crewboard API. It is the single source of truth for metric names, labels,
// and help strings. Metrics register with the default registry at import time
// via promauto.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "crewboard"

// ── Notification metrics ──────────────────────────────────────────────────────

// NotificationsCreatedTotal counts persisted notification records.
// Label:
//   - type: notification type ("task_assigned", "status_changed", ...)
var NotificationsCreatedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "notifications_created_total",
		Help:      "Total number of notification records created, by type.",
	},
	[]string{"type"},
)

// FanoutErrorsTotal counts per-recipient failures during a project-comment
// fanout. A failed recipient never aborts the remaining fanout.
var FanoutErrorsTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "fanout_errors_total",
		Help:      "Total number of per-recipient failures during notification fanout.",
	},
)

// RemindersTotal counts due-date reminder sweep decisions.
// Label:
//   - result: "sent" (reminder created) or "skipped" (inside the dedup window)
var RemindersTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "reminders_total",
		Help:      "Total number of due-date reminder decisions, by result (sent/skipped).",
	},
	[]string{"result"},
)

// ── Realtime metrics ──────────────────────────────────────────────────────────

// BroadcastsTotal counts events published to live channels.
// Label:
//   - event: broadcast event name ("notification", "task-updated", ...)
var BroadcastsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "broadcasts_total",
		Help:      "Total number of events published to live channels, by event name.",
	},
	[]string{"event"},
)

// SubscribersGauge tracks the number of live channel subscriptions.
var SubscribersGauge = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "live_subscriptions",
		Help:      "Current number of live channel subscriptions.",
	},
)

// ── Authorization metrics ─────────────────────────────────────────────────────

// AccessDenialsTotal counts guard denials.
// Label:
//   - action: the guarded action ("task:update", "project:invite", ...)
var AccessDenialsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "access_denials_total",
		Help:      "Total number of authorization denials, by action.",
	},
	[]string{"action"},
)
