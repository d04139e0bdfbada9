package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the credential pipeline.
// Tracks issuance outcomes, per-step durations, and verification outcomes.
type Metrics struct {
	IssuanceSucceeded prometheus.Counter
	IssuanceFailed    *prometheus.CounterVec
	IssuanceDegraded  *prometheus.CounterVec

	AnchorDuration prometheus.Histogram
	RenderDuration prometheus.Histogram
	StoreDuration  prometheus.Histogram

	VerificationResults *prometheus.CounterVec
	Revocations         prometheus.Counter
}

// New creates a Metrics instance with all credential pipeline metrics registered.
func New() *Metrics {
	return &Metrics{
		IssuanceSucceeded: promauto.NewCounter(prometheus.CounterOpts{
			Name: "vouch_issuance_succeeded_total",
			Help: "Total number of committed issuances",
		}),
		IssuanceFailed: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "vouch_issuance_failed_total",
			Help: "Total number of aborted issuances by failing step",
		}, []string{"step"}),
		IssuanceDegraded: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "vouch_issuance_degraded_total",
			Help: "Total number of successful issuances with a best-effort step skipped",
		}, []string{"step"}),
		AnchorDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "vouch_anchor_duration_seconds",
			Help:    "Duration of ledger anchor submissions including signer queue wait",
			Buckets: []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		}),
		RenderDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "vouch_render_duration_seconds",
			Help:    "Duration of document rendering (markup plus headless paint)",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),
		StoreDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "vouch_content_store_duration_seconds",
			Help:    "Duration of content store uploads",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 15},
		}),
		VerificationResults: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "vouch_verification_results_total",
			Help: "Verification outcomes by result and ledger check status",
		}, []string{"result", "ledger_check"}),
		Revocations: promauto.NewCounter(prometheus.CounterOpts{
			Name: "vouch_revocations_total",
			Help: "Total number of credential revocations",
		}),
	}
}

// ObserveAnchor records the duration of a ledger anchor call.
// Call with time.Now() at the start of the operation.
func (m *Metrics) ObserveAnchor(start time.Time) {
	m.AnchorDuration.Observe(time.Since(start).Seconds())
}

// ObserveRender records the duration of a render call.
func (m *Metrics) ObserveRender(start time.Time) {
	m.RenderDuration.Observe(time.Since(start).Seconds())
}

// ObserveStore records the duration of a content store upload.
func (m *Metrics) ObserveStore(start time.Time) {
	m.StoreDuration.Observe(time.Since(start).Seconds())
}

// IncrementIssuanceFailed records an aborted issuance at the named step.
func (m *Metrics) IncrementIssuanceFailed(step string) {
	m.IssuanceFailed.WithLabelValues(step).Inc()
}

// IncrementIssuanceDegraded records a best-effort step that was skipped.
func (m *Metrics) IncrementIssuanceDegraded(step string) {
	m.IssuanceDegraded.WithLabelValues(step).Inc()
}

// IncrementVerification records a verification outcome.
func (m *Metrics) IncrementVerification(result, ledgerCheck string) {
	m.VerificationResults.WithLabelValues(result, ledgerCheck).Inc()
}
