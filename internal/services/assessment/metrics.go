package assessment

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// reportsBuilt counts completed reports by overall tier.
	reportsBuilt = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "siterisk",
		Subsystem: "assessment",
		Name:      "reports_total",
		Help:      "Reports built, by overall risk tier",
	}, []string{"overall_risk"})

	// failures counts assessments that produced no report.
	// Labels: kind (unknown_designation, malformed_feature, spatial, no_spatial_source, other)
	failures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "siterisk",
		Subsystem: "assessment",
		Name:      "failures_total",
		Help:      "Assessments that failed, by kind",
	}, []string{"kind"})

	buildDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "siterisk",
		Subsystem: "assessment",
		Name:      "build_duration_seconds",
		Help:      "Time to build a report from features",
		Buckets:   []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1},
	})
)
