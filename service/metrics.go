package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Package-level Prometheus metrics, auto-registered via promauto.
var (
	// parserCallsTotal counts message parses.
	//
	// Labels:
	//   - provider: "gemini", "anthropic", "fallback"
	//   - outcome: "success", "error"
	parserCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "lawpro",
			Subsystem: "parser",
			Name:      "calls_total",
			Help:      "Total number of message parses by provider and outcome.",
		},
		[]string{"provider", "outcome"},
	)

	// locationCorrectionsTotal counts fuzzy corrections by resolving tier.
	//
	// Labels:
	//   - kind: "county", "state"
	//   - tier: "exact", "suggestion", "similarity", "unchanged", "error"
	locationCorrectionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "lawpro",
			Subsystem: "location",
			Name:      "corrections_total",
			Help:      "Total location corrections by kind and resolving tier.",
		},
		[]string{"kind", "tier"},
	)

	// lawyerSearchTotal counts directory search tiers.
	//
	// Labels:
	//   - tier: "ranked", "filtered", "state"
	//   - outcome: "hit", "empty", "error"
	lawyerSearchTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "lawpro",
			Subsystem: "search",
			Name:      "tier_total",
			Help:      "Total lawyer search tier attempts by outcome.",
		},
		[]string{"tier", "outcome"},
	)

	processDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "lawpro",
			Subsystem: "conversation",
			Name:      "process_duration_seconds",
			Help:      "Duration of one message processing pipeline.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
		},
	)
)
