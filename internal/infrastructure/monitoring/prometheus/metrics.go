package prometheus

import (
	"context"
	"time"

	"github.com/turtacn/rxncenter/internal/intelligence/reaction_center"
)

// FeaturizerMetrics holds all featurization metrics.
type FeaturizerMetrics struct {
	// Parsing
	MoleculesParsedTotal CounterVec

	// Batching
	BatchesTotal        CounterVec
	BatchItemsTotal     CounterVec
	BatchMaxAtoms       HistogramVec
	FeaturizeDuration   HistogramVec
	PositiveLabelsTotal CounterVec

	// Export
	ExportsTotal   CounterVec
	ExportDuration HistogramVec

	// Runs
	RunsInProgress GaugeVec
	ErrorsTotal    CounterVec
}

// Default Buckets
var (
	DefaultFeaturizeDurationBuckets = []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5}
	DefaultAtomBuckets              = []float64{8, 16, 32, 48, 64, 96, 128, 192, 256}
	DefaultExportDurationBuckets    = []float64{.005, .01, .05, .1, .25, .5, 1, 5, 10, 30}
)

// NewFeaturizerMetrics registers all metrics and returns FeaturizerMetrics struct.
func NewFeaturizerMetrics(collector MetricsCollector) *FeaturizerMetrics {
	m := &FeaturizerMetrics{}

	m.MoleculesParsedTotal = collector.RegisterCounter("molecules_parsed_total", "Molecule parse attempts", "status")

	m.BatchesTotal = collector.RegisterCounter("batches_total", "Featurized batches", "kind", "status")
	m.BatchItemsTotal = collector.RegisterCounter("batch_items_total", "Reactions featurized", "kind")
	m.BatchMaxAtoms = collector.RegisterHistogram("batch_max_atoms", "Padded atom count per batch", DefaultAtomBuckets, "kind")
	m.FeaturizeDuration = collector.RegisterHistogram("featurize_duration_seconds", "Batch featurization duration", DefaultFeaturizeDurationBuckets, "kind")
	m.PositiveLabelsTotal = collector.RegisterCounter("positive_labels_total", "Reaction-center pairs labelled 1")

	m.ExportsTotal = collector.RegisterCounter("exports_total", "Batch exports", "sink", "status")
	m.ExportDuration = collector.RegisterHistogram("export_duration_seconds", "Batch export duration", DefaultExportDurationBuckets, "sink")

	m.RunsInProgress = collector.RegisterGauge("runs_in_progress", "Featurization runs in progress")
	m.ErrorsTotal = collector.RegisterCounter("errors_total", "Total errors", "component", "code")

	return m
}

var _ reaction_center.Metrics = (*FeaturizerMetrics)(nil)

func statusLabel(success bool) string {
	if success {
		return "success"
	}
	return "failure"
}

// RecordParse implements reaction_center.Metrics.
func (m *FeaturizerMetrics) RecordParse(success bool) {
	m.MoleculesParsedTotal.WithLabelValues(statusLabel(success)).Inc()
}

// RecordBatch implements reaction_center.Metrics.  Item, atom and label
// series only move for successful batches.
func (m *FeaturizerMetrics) RecordBatch(_ context.Context, p *reaction_center.BatchMetricParams) {
	if p == nil {
		return
	}
	m.BatchesTotal.WithLabelValues(p.Kind, statusLabel(p.Success)).Inc()
	m.FeaturizeDuration.WithLabelValues(p.Kind).Observe(p.DurationMs / 1000.0)
	if !p.Success {
		return
	}
	m.BatchItemsTotal.WithLabelValues(p.Kind).Add(float64(p.Size))
	m.BatchMaxAtoms.WithLabelValues(p.Kind).Observe(float64(p.MaxAtoms))
	if p.Positives > 0 {
		m.PositiveLabelsTotal.WithLabelValues().Add(float64(p.Positives))
	}
}

// RecordExport counts one export to sink.
func (m *FeaturizerMetrics) RecordExport(sink string, success bool, duration time.Duration) {
	m.ExportsTotal.WithLabelValues(sink, statusLabel(success)).Inc()
	m.ExportDuration.WithLabelValues(sink).Observe(duration.Seconds())
}

// RunStarted marks a featurization run as in progress.
func (m *FeaturizerMetrics) RunStarted() {
	m.RunsInProgress.WithLabelValues().Inc()
}

// RunFinished undoes RunStarted.
func (m *FeaturizerMetrics) RunFinished() {
	m.RunsInProgress.WithLabelValues().Dec()
}

// RecordError counts an error by component and error code.
func (m *FeaturizerMetrics) RecordError(component, code string) {
	m.ErrorsTotal.WithLabelValues(component, code).Inc()
}

//Personal.AI order the ending
