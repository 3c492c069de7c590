// Package metrics defines the Prometheus metrics exported by the slideshow
// application.
//
// Metrics are registered via promauto at package initialization and served
// from the /metrics endpoint. Subsystems covered: HTTP handling, fairness
// selection, the JSON index store, reverse geocoding, enrichment passes,
// and browsing sessions.
package metrics
