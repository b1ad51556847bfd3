// Package metrics exposes the Prometheus collectors of the ledger service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Registry holds every collector of the service. A dedicated registry keeps tests
// independent from the global default one.
type Registry struct {
	*prometheus.Registry

	HTTPRequestDuration *prometheus.HistogramVec
	LedgerEvents        *prometheus.CounterVec
	LedgerRows          prometheus.Counter
	OrderLockAttempts   *prometheus.CounterVec
	OrderLocksSwept     prometheus.Counter
	SettlementUpdates   *prometheus.CounterVec
	SubscriptionChanges *prometheus.CounterVec
}

// New creates and registers all collectors.
func New() *Registry {
	r := &Registry{
		Registry: prometheus.NewRegistry(),
		HTTPRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "host_ledger",
			Name:      "http_request_duration_seconds",
			Help:      "Duration of HTTP requests by route and status.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
		LedgerEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "host_ledger",
			Name:      "ledger_events_total",
			Help:      "Economic events recorded in the ledger, by kind.",
		}, []string{"kind"}),
		LedgerRows: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "host_ledger",
			Name:      "ledger_rows_total",
			Help:      "Transaction rows written to the ledger.",
		}),
		OrderLockAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "host_ledger",
			Name:      "order_lock_attempts_total",
			Help:      "Order lock attempts by outcome (acquired, contended).",
		}, []string{"outcome"}),
		OrderLocksSwept: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "host_ledger",
			Name:      "order_locks_swept_total",
			Help:      "Stale order locks released by the sweep.",
		}),
		SettlementUpdates: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "host_ledger",
			Name:      "settlement_updates_total",
			Help:      "Debt settlements moved to a new status.",
		}, []string{"status"}),
		SubscriptionChanges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "host_ledger",
			Name:      "platform_subscription_changes_total",
			Help:      "Platform subscriptions created or replaced.",
		}, []string{"action"}),
	}

	r.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		r.HTTPRequestDuration,
		r.LedgerEvents,
		r.LedgerRows,
		r.OrderLockAttempts,
		r.OrderLocksSwept,
		r.SettlementUpdates,
		r.SubscriptionChanges,
	)
	return r
}

// The helpers below are safe on a nil *Registry so services can run without metrics.

// LedgerEventRecorded counts one economic event and the rows it wrote.
func (r *Registry) LedgerEventRecorded(kind string, rows int) {
	if r == nil {
		return
	}
	r.LedgerEvents.WithLabelValues(kind).Inc()
	r.LedgerRows.Add(float64(rows))
}

// OrderLockAttempt counts a lock attempt with its outcome.
func (r *Registry) OrderLockAttempt(outcome string) {
	if r == nil {
		return
	}
	r.OrderLockAttempts.WithLabelValues(outcome).Inc()
}

// OrderLocksCleared counts locks released by the stale sweep.
func (r *Registry) OrderLocksCleared(n int64) {
	if r == nil || n <= 0 {
		return
	}
	r.OrderLocksSwept.Add(float64(n))
}

// SettlementsUpdated counts settlements moved to status.
func (r *Registry) SettlementsUpdated(status string, n int) {
	if r == nil || n <= 0 {
		return
	}
	r.SettlementUpdates.WithLabelValues(status).Add(float64(n))
}

// SubscriptionChanged counts a subscription create or replace.
func (r *Registry) SubscriptionChanged(action string) {
	if r == nil {
		return
	}
	r.SubscriptionChanges.WithLabelValues(action).Inc()
}
