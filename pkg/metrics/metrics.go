package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// AnalysesTotal counts completed AML analyses by outcome (clean/suspicious/cached/error)
var AnalysesTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "amlengine_analyses_total",
		Help: "Total number of AML transaction analyses by outcome",
	},
	[]string{"outcome"},
)

// AnalysisLatency records latency distribution of the full analysis fan-out
var AnalysisLatency = prometheus.NewHistogram(
	prometheus.HistogramOpts{
		Name:    "amlengine_analysis_latency_seconds",
		Help:    "Latency in seconds of a complete AML analysis",
		Buckets: prometheus.DefBuckets,
	},
)

// DetectorLatency records per-detector evaluation latency
var DetectorLatency = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "amlengine_detector_latency_seconds",
		Help:    "Latency in seconds of individual pattern detectors",
		Buckets: prometheus.DefBuckets,
	},
	[]string{"detector"},
)

// DetectorFailures counts detector invocations degraded to no-finding on error
var DetectorFailures = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "amlengine_detector_failures_total",
		Help: "Total detector failures swallowed by the fail-open policy",
	},
	[]string{"detector"},
)

// Analysis cache effectiveness
var (
	CacheHits = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "amlengine_analysis_cache_hits_total",
			Help: "Analysis cache hits",
		},
	)

	CacheMisses = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "amlengine_analysis_cache_misses_total",
			Help: "Analysis cache misses",
		},
	)
)

func init() {
	prometheus.MustRegister(AnalysesTotal, AnalysisLatency)
	prometheus.MustRegister(DetectorLatency, DetectorFailures)
	prometheus.MustRegister(CacheHits, CacheMisses)
}
