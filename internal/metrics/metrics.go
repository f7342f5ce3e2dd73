// Package metrics holds the Prometheus collectors for a visualization run.
//
// A run is a one-shot batch job with no HTTP listener, so the collectors live
// on a private registry that can be dumped in node-exporter textfile format.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var registry = prometheus.NewRegistry()

var (
	entitiesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "debrisviz_entities_total",
			Help: "Entities processed, by outcome (plotted, empty, skipped, filtered).",
		},
		[]string{"outcome"},
	)

	pointsSelectedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "debrisviz_points_selected_total",
			Help: "Samples selected by the time window across all entities.",
		},
	)

	samplesReadTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "debrisviz_samples_read_total",
			Help: "Samples decoded from entity sources.",
		},
	)

	aggregationDurationSeconds = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "debrisviz_aggregation_duration_seconds",
			Help:    "Wall time to read, window and color every entity.",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 12),
		},
	)

	renderDurationSeconds = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "debrisviz_render_duration_seconds",
			Help:    "Wall time to draw and write the plot artifact.",
			Buckets: prometheus.DefBuckets,
		},
	)

	legendLabels = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "debrisviz_legend_labels",
			Help: "Number of time labels in the rendered legend.",
		},
	)

	readWorkers = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "debrisviz_read_workers",
			Help: "Size of the source read worker pool.",
		},
	)
)

// Entity outcomes.
const (
	OutcomePlotted  = "plotted"
	OutcomeEmpty    = "empty"
	OutcomeSkipped  = "skipped"
	OutcomeFiltered = "filtered"
)

func init() {
	registry.MustRegister(entitiesTotal)
	registry.MustRegister(pointsSelectedTotal)
	registry.MustRegister(samplesReadTotal)
	registry.MustRegister(aggregationDurationSeconds)
	registry.MustRegister(renderDurationSeconds)
	registry.MustRegister(legendLabels)
	registry.MustRegister(readWorkers)
}

// Registry returns the registry holding all run collectors.
func Registry() *prometheus.Registry {
	return registry
}

// IncEntity counts one entity with the given outcome.
func IncEntity(outcome string) {
	entitiesTotal.WithLabelValues(outcome).Inc()
}

// AddSamplesRead counts decoded samples.
func AddSamplesRead(n int) {
	samplesReadTotal.Add(float64(n))
}

// AddPointsSelected counts samples kept by the window.
func AddPointsSelected(n int) {
	pointsSelectedTotal.Add(float64(n))
}

// RecordAggregation observes one aggregation pass.
func RecordAggregation(duration time.Duration) {
	aggregationDurationSeconds.Observe(duration.Seconds())
}

// RecordRender observes one render pass.
func RecordRender(duration time.Duration) {
	renderDurationSeconds.Observe(duration.Seconds())
}

// SetLegendLabels sets the legend label gauge.
func SetLegendLabels(n int) {
	legendLabels.Set(float64(n))
}

// SetReadWorkers sets the read worker pool gauge.
func SetReadWorkers(n int) {
	readWorkers.Set(float64(n))
}

// WriteTextfile writes every collector to path in the text exposition format.
// The file is written atomically.
func WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, registry); err != nil {
		return fmt.Errorf("writing metrics textfile: %w", err)
	}
	return nil
}
