package service

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the domain counters of the signing workflow.
// A nil *Metrics records nothing.
type Metrics struct {
	signaturesPlaced     *prometheus.CounterVec
	signatureTransitions *prometheus.CounterVec
	finalizeMarks        *prometheus.CounterVec
	finalizeDuration     prometheus.Histogram
}

// NewMetrics creates the domain metrics and registers them with reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		signaturesPlaced: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "signdesk_signatures_placed_total",
				Help: "Signature annotations created, by entry mode.",
			},
			[]string{"mode"},
		),
		signatureTransitions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "signdesk_signature_transitions_total",
				Help: "Signature status transitions, by target status.",
			},
			[]string{"status"},
		),
		finalizeMarks: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "signdesk_finalize_marks_total",
				Help: "Signed annotations considered during finalize, by outcome.",
			},
			[]string{"outcome"},
		),
		finalizeDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "signdesk_finalize_duration_seconds",
				Help:    "Time spent producing a final PDF.",
				Buckets: prometheus.DefBuckets,
			},
		),
	}

	for _, c := range []prometheus.Collector{m.signaturesPlaced, m.signatureTransitions, m.finalizeMarks, m.finalizeDuration} {
		if err := reg.Register(c); err != nil {
			return nil, errors.Join(errors.New("register domain metrics"), err)
		}
	}
	return m, nil
}

func (m *Metrics) placed(mode string) {
	if m != nil {
		m.signaturesPlaced.WithLabelValues(mode).Inc()
	}
}

func (m *Metrics) transitioned(status string) {
	if m != nil {
		m.signatureTransitions.WithLabelValues(status).Inc()
	}
}

func (m *Metrics) finalized(drawn, skipped int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.finalizeMarks.WithLabelValues("drawn").Add(float64(drawn))
	m.finalizeMarks.WithLabelValues("skipped").Add(float64(skipped))
	m.finalizeDuration.Observe(elapsed.Seconds())
}
