package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	catalogEvents = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "rdmcal_catalog_events",
		Help: "Number of canonical events in the loaded catalog",
	})
	catalogTags = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "rdmcal_catalog_tags",
		Help: "Number of distinct tags in the loaded catalog",
	})
	recordsSkipped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "rdmcal_records_skipped_total",
		Help: "Record files or records dropped during load and normalization",
	})
	gridsProjected = promauto.NewCounter(prometheus.CounterOpts{
		Name: "rdmcal_grids_projected_total",
		Help: "Month grids projected",
	})
	exports = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rdmcal_exports_total",
		Help: "Calendar exports by outcome",
	}, []string{"outcome"})
	exportedEvents = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "rdmcal_export_events",
		Help:    "Events per successful export",
		Buckets: []float64{1, 5, 10, 25, 50, 100, 250},
	})
)

// CatalogLoaded records the size of a freshly loaded catalog.
func CatalogLoaded(events, tags, skipped int) {
	catalogEvents.Set(float64(events))
	catalogTags.Set(float64(tags))
	recordsSkipped.Add(float64(skipped))
}

func GridProjected() {
	gridsProjected.Inc()
}

// Exported records a successful export of n events.
func Exported(n int) {
	exports.WithLabelValues("ok").Inc()
	exportedEvents.Observe(float64(n))
}

// ExportEmpty records an export refused because nothing was visible.
func ExportEmpty() {
	exports.WithLabelValues("empty").Inc()
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
