// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	// State store metrics
	ActionsDispatched *prometheus.CounterVec

	// Quote metrics
	QuoteLookups *prometheus.CounterVec
	QuoteLatency prometheus.Histogram

	// Approval metrics
	ApprovalsSubmitted *prometheus.CounterVec
	ApprovalsRejected  *prometheus.CounterVec

	// Execution metrics
	BlendsSubmitted       *prometheus.CounterVec
	TransactionsFinalized *prometheus.CounterVec
}

// NewMetrics creates a new Metrics instance registered on its own registry.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "blend_swap"
	}

	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,

		ActionsDispatched: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "actions_dispatched_total",
			Help:      "Total number of actions dispatched to the state store",
		}, []string{"type"}),

		QuoteLookups: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "quote",
			Name:      "lookups_total",
			Help:      "Total number of best-trade lookups by result",
		}, []string{"result"}),
		QuoteLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "quote",
			Name:      "lookup_duration_seconds",
			Help:      "Latency of a single best-trade lookup",
			Buckets:   prometheus.DefBuckets,
		}),

		ApprovalsSubmitted: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "approval",
			Name:      "submitted_total",
			Help:      "Total number of approval transactions submitted by amount mode",
		}, []string{"mode"}),
		ApprovalsRejected: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "approval",
			Name:      "rejected_total",
			Help:      "Total number of approve calls rejected before submission",
		}, []string{"reason"}),

		BlendsSubmitted: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "blend",
			Name:      "submissions_total",
			Help:      "Total number of blend submissions by result",
		}, []string{"result"}),
		TransactionsFinalized: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "tx",
			Name:      "finalized_total",
			Help:      "Total number of tracked transactions reaching a final status",
		}, []string{"kind", "status"}),
	}
}

// Handler returns an HTTP handler that serves the registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) ObserveAction(actionType string) {
	if m == nil {
		return
	}
	m.ActionsDispatched.WithLabelValues(actionType).Inc()
}

func (m *Metrics) ObserveQuote(result string, d time.Duration) {
	if m == nil {
		return
	}
	m.QuoteLookups.WithLabelValues(result).Inc()
	m.QuoteLatency.Observe(d.Seconds())
}

func (m *Metrics) ObserveApproval(mode string) {
	if m == nil {
		return
	}
	m.ApprovalsSubmitted.WithLabelValues(mode).Inc()
}

func (m *Metrics) ObserveApprovalRejected(reason string) {
	if m == nil {
		return
	}
	m.ApprovalsRejected.WithLabelValues(reason).Inc()
}

func (m *Metrics) ObserveBlend(result string) {
	if m == nil {
		return
	}
	m.BlendsSubmitted.WithLabelValues(result).Inc()
}

func (m *Metrics) ObserveTransaction(kind, status string) {
	if m == nil {
		return
	}
	m.TransactionsFinalized.WithLabelValues(kind, status).Inc()
}
