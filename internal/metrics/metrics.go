// Package metrics holds the Prometheus collectors exported at /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Analysis outcomes
const (
	OutcomeSuccess  = "success"
	OutcomeFailure  = "failure"
	OutcomeRejected = "rejected"
	OutcomeStale    = "stale"
)

var (
	// AnalysisRuns counts analysis runs by outcome
	AnalysisRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cloudsketch_analysis_runs_total",
		Help: "Total analysis runs by outcome",
	}, []string{"outcome"})

	// AnalysisDuration tracks scorer latency
	AnalysisDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "cloudsketch_analysis_duration_seconds",
		Help:    "Analysis duration in seconds, scorer call included",
		Buckets: prometheus.ExponentialBuckets(0.001, 2, 14), // 1ms to ~8s
	})

	// ConnectionRejections counts rejected connections by source kind
	ConnectionRejections = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cloudsketch_connection_rejections_total",
		Help: "Total rejected connection attempts by source node kind",
	}, []string{"source_kind"})

	// ExpansionNodes tracks physical nodes produced per expansion
	ExpansionNodes = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "cloudsketch_expansion_physical_nodes",
		Help:    "Number of physical nodes produced per topology expansion",
		Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500},
	})

	// LogicalNodes is the current number of nodes on the canvas
	LogicalNodes = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "cloudsketch_logical_nodes",
		Help: "Number of logical nodes in the working graph",
	})
)
