package reaction_center

import (
	"context"
	"sync"
)

// Metrics is the observation hook of the featurizer.  The Prometheus
// implementation lives in internal/infrastructure/monitoring/prometheus.
type Metrics interface {
	// RecordParse counts one molecule parse attempt.
	RecordParse(success bool)
	// RecordBatch records one AllBatch or FeatureBatch call.
	RecordBatch(ctx context.Context, p *BatchMetricParams)
}

// BatchMetricParams describes a finished batch call.
type BatchMetricParams struct {
	Kind       string
	Size       int
	MaxAtoms   int
	Positives  int
	DurationMs float64
	Success    bool
}

// ---------------------------------------------------------------------------
// Noop
// ---------------------------------------------------------------------------

type noopMetrics struct{}

// NewNoopMetrics returns a Metrics that records nothing.
func NewNoopMetrics() Metrics { return noopMetrics{} }

func (noopMetrics) RecordParse(bool)                                {}
func (noopMetrics) RecordBatch(context.Context, *BatchMetricParams) {}

// ---------------------------------------------------------------------------
// InMemory
// ---------------------------------------------------------------------------

// InMemoryMetrics keeps every observation, for tests.
type InMemoryMetrics struct {
	mu          sync.Mutex
	parseOK     int
	parseFailed int
	batches     []BatchMetricParams
}

// NewInMemoryMetrics returns an empty InMemoryMetrics.
func NewInMemoryMetrics() *InMemoryMetrics { return &InMemoryMetrics{} }

// RecordParse implements Metrics.
func (m *InMemoryMetrics) RecordParse(success bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if success {
		m.parseOK++
	} else {
		m.parseFailed++
	}
}

// RecordBatch implements Metrics.
func (m *InMemoryMetrics) RecordBatch(_ context.Context, p *BatchMetricParams) {
	if p == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.batches = append(m.batches, *p)
}

// Parses returns the successful and failed parse counts.
func (m *InMemoryMetrics) Parses() (ok, failed int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.parseOK, m.parseFailed
}

// Batches returns a copy of the recorded batches.
func (m *InMemoryMetrics) Batches() []BatchMetricParams {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]BatchMetricParams, len(m.batches))
	copy(out, m.batches)
	return out
}

//Personal.AI order the ending
