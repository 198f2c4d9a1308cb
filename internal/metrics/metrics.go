// Package metrics exposes Prometheus collectors for translation, validation
// and vertex enumeration.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// enumerationDuration tracks vertex enumeration latency by outcome
	enumerationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "portfolio_enumeration_duration_seconds",
		Help:    "Vertex enumeration duration in seconds",
		Buckets: prometheus.ExponentialBuckets(0.0005, 2, 16), // 0.5ms to ~16s
	}, []string{"reason", "incomplete"})

	// enumerationSubsets tracks the number of constraint subsets solved per run
	enumerationSubsets = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "portfolio_enumeration_subsets",
		Help:    "Constraint subsets evaluated per enumeration",
		Buckets: prometheus.ExponentialBuckets(1, 10, 8),
	})

	// enumerationVertices tracks vertex counts per run
	enumerationVertices = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "portfolio_enumeration_vertices",
		Help:    "Vertices found per enumeration",
		Buckets: []float64{0, 1, 2, 4, 8, 16, 64, 256, 1024},
	})

	// enumerationDimensions tracks the problem size d = n*m
	enumerationDimensions = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "portfolio_enumeration_dimensions",
		Help:    "Variable count of enumerated systems",
		Buckets: []float64{1, 2, 3, 4, 6, 8, 12, 16, 20},
	})

	// EnumerationOutcomes counts enumeration runs by result reason, including
	// runs that return before any subset is solved
	EnumerationOutcomes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "portfolio_enumeration_outcomes_total",
		Help: "Vertex enumeration runs by reason",
	}, []string{"reason"})

	// recordsTotal counts accepted and rejected evaluation records by type
	recordsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "portfolio_evaluation_records_total",
		Help: "Evaluation records submitted, by type and result",
	}, []string{"type", "result"})

	// warningsTotal counts validator warnings by code
	warningsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "portfolio_validation_warnings_total",
		Help: "Validator warnings by code",
	}, []string{"code"})

	// geometryCache counts engine cache hits and rebuilds
	geometryCache = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "portfolio_geometry_cache_total",
		Help: "Geometry cache lookups by result",
	}, []string{"result"})
)

// ObserveEnumeration records one vertex enumeration run
func ObserveEnumeration(dimensions int, subsets int64, vertices int, incomplete bool, reason string, elapsed time.Duration) {
	if reason == "" {
		reason = "OK"
	}
	EnumerationOutcomes.WithLabelValues(reason).Inc()
	enumerationDuration.WithLabelValues(reason, strconv.FormatBool(incomplete)).Observe(elapsed.Seconds())
	enumerationSubsets.Observe(float64(subsets))
	enumerationVertices.Observe(float64(vertices))
	enumerationDimensions.Observe(float64(dimensions))
}

// RecordAccepted counts an accepted evaluation record
func RecordAccepted(recordType string) {
	recordsTotal.WithLabelValues(recordType, "accepted").Inc()
}

// RecordRejected counts a rejected evaluation record
func RecordRejected(recordType string) {
	recordsTotal.WithLabelValues(recordType, "rejected").Inc()
}

// Warning counts one validator warning
func Warning(code string) {
	warningsTotal.WithLabelValues(code).Inc()
}

// CacheHit counts a geometry request served from cache
func CacheHit() {
	geometryCache.WithLabelValues("hit").Inc()
}

// CacheRebuild counts a geometry rebuild
func CacheRebuild() {
	geometryCache.WithLabelValues("rebuild").Inc()
}
