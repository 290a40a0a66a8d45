// Package metrics exposes prometheus instrumentation for the diagnosis
// runner. The pure pipeline never touches these; the runner records
// outcomes after each run.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/moolen/driftdiag/internal/diagnose"
)

// Metrics holds the runner's instruments, registered against an injected
// registerer so tests can use an isolated registry.
type Metrics struct {
	DiagnosesTotal         *prometheus.CounterVec
	CoherenceWarningsTotal *prometheus.CounterVec
	InvestigationsTotal    *prometheus.CounterVec
	RunDuration            prometheus.Histogram
}

// NewMetrics creates and registers the runner metrics.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		DiagnosesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "driftdiag_diagnoses_total",
			Help: "Diagnoses produced, by decision status and archetype.",
		}, []string{"decision_status", "archetype"}),
		CoherenceWarningsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "driftdiag_coherence_warnings_total",
			Help: "Advisory coherence findings, by check and severity.",
		}, []string{"check", "severity"}),
		InvestigationsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "driftdiag_investigations_total",
			Help: "Investigator consultations, by outcome.",
		}, []string{"outcome"}),
		RunDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "driftdiag_run_duration_seconds",
			Help:    "Wall-clock duration of one diagnosis run.",
			Buckets: prometheus.DefBuckets,
		}),
	}
}

// ObserveDiagnosis records one finished diagnosis.
func (m *Metrics) ObserveDiagnosis(d *diagnose.Diagnosis, durationSeconds float64) {
	m.DiagnosesTotal.WithLabelValues(d.DecisionStatus, d.Archetype.Key).Inc()
	for _, w := range d.Warnings {
		m.CoherenceWarningsTotal.WithLabelValues(w.Check, w.Severity).Inc()
	}
	if d.Investigation != nil && d.Investigation.Consulted {
		m.InvestigationsTotal.WithLabelValues(d.Investigation.Outcome).Inc()
	}
	m.RunDuration.Observe(durationSeconds)
}
