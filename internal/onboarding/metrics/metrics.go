// Package metrics exposes Prometheus instrumentation for the onboarding
// engine.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder bundles the onboarding metric families. One instance is shared by
// service and handler.
type Recorder struct {
	SectionSaves        *prometheus.CounterVec
	Completions         *prometheus.CounterVec
	CoverageEvaluations *prometheus.CounterVec
	EvaluationSeconds   prometheus.Histogram
}

// New registers the onboarding metrics on the default registry.
func New() *Recorder {
	return &Recorder{
		SectionSaves: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "grcadmin",
			Subsystem: "onboarding",
			Name:      "section_saves_total",
			Help:      "Section save attempts by section code and outcome.",
		}, []string{"section", "outcome"}),
		Completions: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "grcadmin",
			Subsystem: "onboarding",
			Name:      "completions_total",
			Help:      "Wizard completion attempts by outcome.",
		}, []string{"outcome"}),
		CoverageEvaluations: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "grcadmin",
			Subsystem: "onboarding",
			Name:      "coverage_evaluations_total",
			Help:      "Coverage evaluations by scope and outcome.",
		}, []string{"scope", "outcome"}),
		EvaluationSeconds: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: "grcadmin",
			Subsystem: "onboarding",
			Name:      "coverage_evaluation_seconds",
			Help:      "Latency of full coverage evaluations.",
			Buckets:   prometheus.DefBuckets,
		}),
	}
}
