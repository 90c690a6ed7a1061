// Package metrics provides Prometheus metrics for the Fern service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// SearchesTotal tracks faceted property searches by page
	SearchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "fern",
			Subsystem: "search",
			Name:      "queries_total",
			Help:      "Total number of faceted property searches",
		},
		[]string{"page"},
	)

	// SearchDuration tracks search duration in seconds
	SearchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "fern",
			Subsystem: "search",
			Name:      "query_duration_seconds",
			Help:      "Duration of faceted property searches in seconds",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"page"},
	)

	// FilterSyncsTotal tracks property filter syncs by outcome
	FilterSyncsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "fern",
			Subsystem: "associations",
			Name:      "syncs_total",
			Help:      "Total number of property filter syncs by outcome",
		},
		[]string{"status"},
	)

	// FacetCacheHits tracks facet count cache hits and misses
	FacetCacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "fern",
			Subsystem: "facets",
			Name:      "cache_lookups_total",
			Help:      "Facet count cache lookups by result",
		},
		[]string{"result"},
	)

	// CatalogMutationsTotal tracks filter group and value writes
	CatalogMutationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "fern",
			Subsystem: "catalog",
			Name:      "mutations_total",
			Help:      "Filter catalog mutations by entity and action",
		},
		[]string{"entity", "action"},
	)
)
