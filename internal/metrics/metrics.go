package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Check cycle metrics
	CheckCyclesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "weatheralert_check_cycles_total",
			Help: "Total number of completed check cycles",
		},
	)

	CheckCycleDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "weatheralert_check_cycle_duration_seconds",
			Help:    "Duration of a full check cycle in seconds",
			Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		},
	)

	DecisionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "weatheralert_decisions_total",
			Help: "Total number of rule decisions by outcome",
		},
		[]string{"outcome"},
	)

	RuleErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "weatheralert_rule_errors_total",
			Help: "Total number of rules skipped due to configuration errors",
		},
		[]string{"reason"}, // reason: unknown_condition, unknown_operator
	)

	// Fetch metrics
	FetchErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "weatheralert_fetch_errors_total",
			Help: "Total number of weather fetch failures per location",
		},
		[]string{"location"},
	)

	// Notification metrics
	NotificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "weatheralert_notifications_total",
			Help: "Total number of notification attempts",
		},
		[]string{"channel", "status"}, // status: sent, failed
	)

	// History store metrics
	HistoryWriteErrorsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "weatheralert_history_write_errors_total",
			Help: "Total number of failed history store writes",
		},
	)
)
