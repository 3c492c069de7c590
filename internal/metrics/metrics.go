package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "photo_slideshow_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "photo_slideshow_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)
)

// Selection metrics
var (
	SelectionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "photo_slideshow_selections_total",
			Help: "Total number of fairness selections by tier",
		},
		[]string{"tier", "status"},
	)

	SelectionEligible = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "photo_slideshow_selection_eligible_candidates",
			Help:    "Number of eligible candidates per fairness selection",
			Buckets: []float64{1, 2, 5, 10, 25, 50, 100, 250, 500, 1000},
		},
		[]string{"tier"},
	)

	MissingPhotosTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "photo_slideshow_missing_photos_total",
			Help: "Photos present in an index but no longer on disk at selection time",
		},
	)
)

// Index store metrics
var (
	StoreOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "photo_slideshow_store_operations_total",
			Help: "Total number of index document operations",
		},
		[]string{"kind", "operation", "status"},
	)

	StoreResetsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "photo_slideshow_store_playcount_resets_total",
			Help: "Picture index rebuilds that detected content changes and reset play counts",
		},
	)
)

// Geocoding metrics
var (
	GeocodeRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "photo_slideshow_geocode_requests_total",
			Help: "Total number of reverse-geocoding requests by outcome",
		},
		[]string{"outcome"},
	)

	GeocodeRequestDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "photo_slideshow_geocode_request_duration_seconds",
			Help:    "Reverse-geocoding request duration in seconds",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
	)
)

// Enrichment metrics
var (
	EnrichmentRunsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "photo_slideshow_enrichment_runs_total",
			Help: "Total number of enrichment passes",
		},
	)

	EnrichmentPhotosTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "photo_slideshow_enrichment_photos_total",
			Help: "Photos handled by enrichment passes by result",
		},
		[]string{"result"},
	)

	EnrichmentTriggersTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "photo_slideshow_enrichment_triggers_total",
			Help: "Enrichment trigger attempts by result (launched, suppressed)",
		},
		[]string{"result"},
	)

	EnrichmentIsRunning = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "photo_slideshow_enrichment_running",
			Help: "Whether an enrichment pass is currently running (1 or 0)",
		},
	)
)

// Session metrics
var (
	SessionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "photo_slideshow_sessions_active",
			Help: "Number of unexpired browsing sessions in the session store",
		},
	)

	SessionsSweptTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "photo_slideshow_sessions_swept_total",
			Help: "Expired sessions removed by the periodic sweep",
		},
	)
)
