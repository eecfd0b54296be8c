package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	LedgerRequests  *prometheus.CounterVec
	LedgerDuration  *prometheus.HistogramVec
	ChainSteps      *prometheus.CounterVec
	ChainOutcomes   *prometheus.CounterVec
	UnresolvedChain prometheus.Gauge
	HTTPDuration    *prometheus.HistogramVec
	SessionEnrolls  *prometheus.CounterVec
}

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	return newWith(prometheus.DefaultRegisterer)
}

// NewForTest registers metrics on a private registry so parallel tests do not
// collide on the default registerer.
func NewForTest() *Metrics {
	return newWith(prometheus.NewRegistry())
}

func newWith(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		LedgerRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "maskchain_ledger_requests_total",
			Help: "Ledger transaction calls by transaction name and outcome.",
		}, []string{"transaction", "outcome"}),
		LedgerDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "maskchain_ledger_request_duration_seconds",
			Help:    "Ledger transaction call latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"transaction"}),
		ChainSteps: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "maskchain_chain_steps_total",
			Help: "Settlement chain steps executed, by step and outcome.",
		}, []string{"step", "outcome"}),
		ChainOutcomes: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "maskchain_chain_runs_total",
			Help: "Settlement chain runs by final outcome.",
		}, []string{"outcome"}),
		UnresolvedChain: factory.NewGauge(prometheus.GaugeOpts{
			Name: "maskchain_chain_unresolved",
			Help: "Chains that halted after a partial commit and await resume.",
		}),
		HTTPDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "maskchain_http_request_duration_seconds",
			Help:    "HTTP request latency by route and status class.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "status"}),
		SessionEnrolls: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "maskchain_ledger_session_enrolls_total",
			Help: "Admin session bootstrap attempts by outcome.",
		}, []string{"outcome"}),
	}
}

// ObserveLedgerCall records one gateway call.
func (m *Metrics) ObserveLedgerCall(transaction, outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.LedgerRequests.WithLabelValues(transaction, outcome).Inc()
	m.LedgerDuration.WithLabelValues(transaction).Observe(elapsed.Seconds())
}

// ObserveChainStep records one orchestrator step.
func (m *Metrics) ObserveChainStep(step, outcome string) {
	if m == nil {
		return
	}
	m.ChainSteps.WithLabelValues(step, outcome).Inc()
}

// ObserveChainOutcome records a finished (or halted) chain run.
func (m *Metrics) ObserveChainOutcome(outcome string) {
	if m == nil {
		return
	}
	m.ChainOutcomes.WithLabelValues(outcome).Inc()
}
