package npy

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/rxncenter/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/rxncenter/internal/intelligence/reaction_center"
	"github.com/turtacn/rxncenter/internal/testutil"
	"github.com/turtacn/rxncenter/pkg/errors"
)

// memorySink keeps blobs in memory and can fail on a chosen name.
type memorySink struct {
	mu     sync.Mutex
	blobs  map[string][]byte
	order  []string
	failOn string
}

func newMemorySink() *memorySink { return &memorySink{blobs: map[string][]byte{}} }

func (s *memorySink) Put(_ context.Context, name string, data []byte) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if name == s.failOn {
		return "", errors.New(errors.CodeExportFailed, "boom")
	}
	s.blobs[name] = data
	s.order = append(s.order, name)
	return "mem://" + name, nil
}

func sampleTrainingBatch() *reaction_center.TrainingBatch {
	const n = 2
	features := make([]float32, n*n*reaction_center.BinaryFDim)
	features[reaction_center.BinaryFDim+1] = 1
	return &reaction_center.TrainingBatch{
		Size:     1,
		MaxAtoms: n,
		Features: features,
		Labels:   []int32{-1, 1, 1, -1},
		Sparse:   [][]int{{1, 2}},
	}
}

func newTestExporter(t *testing.T, sink Sink) *Exporter {
	t.Helper()
	e, err := NewExporter(sink, logging.NewNopLogger())
	require.NoError(t, err)
	e.now = func() time.Time { return time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC) }
	return e
}

func TestNewExporter_NilSink(t *testing.T) {
	_, err := NewExporter(nil, nil)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeInvalidParam))
}

func TestExportTraining_WritesAllFiles(t *testing.T) {
	sink := newMemorySink()
	e := newTestExporter(t, sink)
	batch := sampleTrainingBatch()

	res, err := e.ExportTraining(context.Background(), "run/batch-0000", batch)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"run/batch-0000/features.npy",
		"run/batch-0000/labels.npy",
		"run/batch-0000/sparse.json",
		"run/batch-0000/manifest.json",
	}, sink.order)
	assert.Equal(t, "mem://run/batch-0000/manifest.json", res.Manifest)
	assert.Len(t, res.Locations, 4)
	assert.Positive(t, res.Bytes)

	var features []float32
	require.NoError(t, Decode(bytes.NewReader(sink.blobs["run/batch-0000/features.npy"]), &features))
	assert.Equal(t, batch.Features, features)

	var labels []int32
	require.NoError(t, Decode(bytes.NewReader(sink.blobs["run/batch-0000/labels.npy"]), &labels))
	assert.Equal(t, batch.Labels, labels)

	var sparse [][]int
	require.NoError(t, json.Unmarshal(sink.blobs["run/batch-0000/sparse.json"], &sparse))
	assert.Equal(t, batch.Sparse, sparse)

	var m Manifest
	require.NoError(t, json.Unmarshal(sink.blobs["run/batch-0000/manifest.json"], &m))
	assert.Equal(t, reaction_center.KindTraining, m.Kind)
	assert.Equal(t, 1, m.Size)
	assert.Equal(t, 2, m.MaxAtoms)
	assert.Equal(t, reaction_center.BinaryFDim, m.BinaryFDim)
	assert.Equal(t, 2, m.Positives)
	assert.Equal(t, []int{1, 2, 2, reaction_center.BinaryFDim}, m.Arrays["features"].Shape)
	assert.Equal(t, []int{1, 4}, m.Arrays["labels"].Shape)
	assert.Equal(t, "int32", m.Arrays["labels"].DType)
	assert.Equal(t, SparseFile, m.SparseFile)
	assert.Equal(t, 2024, m.CreatedAt.Year())
}

func TestExportFeatures_WritesFeaturesAndManifest(t *testing.T) {
	sink := newMemorySink()
	e := newTestExporter(t, sink)
	batch := &reaction_center.FeatureBatch{
		Size:     2,
		MaxAtoms: 1,
		Features: make([]float32, 2*reaction_center.BinaryFDim),
	}

	res, err := e.ExportFeatures(context.Background(), "p", batch)
	require.NoError(t, err)
	assert.Equal(t, []string{"p/features.npy", "p/manifest.json"}, sink.order)
	assert.Equal(t, "p", res.Prefix)

	var m Manifest
	require.NoError(t, json.Unmarshal(sink.blobs["p/manifest.json"], &m))
	assert.Equal(t, reaction_center.KindInference, m.Kind)
	assert.Empty(t, m.SparseFile)
	assert.NotContains(t, m.Arrays, "labels")
}

func TestExportTraining_LogsExport(t *testing.T) {
	logger := testutil.NewMockLogger()
	e, err := NewExporter(newMemorySink(), logger)
	require.NoError(t, err)

	_, err = e.ExportTraining(context.Background(), "run/batch-0003", sampleTrainingBatch())
	require.NoError(t, err)

	msg, ok := logger.Find("debug", "batch exported")
	require.True(t, ok)
	prefix, _ := msg.Field("prefix")
	assert.Equal(t, "run/batch-0003", prefix)
	kind, _ := msg.Field("kind")
	assert.Equal(t, reaction_center.KindTraining, kind)
}

func TestExport_NilBatch(t *testing.T) {
	e := newTestExporter(t, newMemorySink())
	_, err := e.ExportTraining(context.Background(), "p", nil)
	assert.True(t, errors.IsCode(err, errors.CodeInvalidParam))
	_, err = e.ExportFeatures(context.Background(), "p", nil)
	assert.True(t, errors.IsCode(err, errors.CodeInvalidParam))
}

func TestExport_SinkFailureSkipsManifest(t *testing.T) {
	sink := newMemorySink()
	sink.failOn = "p/labels.npy"
	e := newTestExporter(t, sink)

	_, err := e.ExportTraining(context.Background(), "p", sampleTrainingBatch())
	require.Error(t, err)
	assert.Equal(t, errors.CodeExportFailed, errors.GetCode(err))
	assert.Contains(t, err.Error(), "file=p/labels.npy")
	assert.NotContains(t, sink.blobs, "p/manifest.json")
}

func TestExportTraining_DirSink(t *testing.T) {
	root := t.TempDir()
	e := newTestExporter(t, NewDirSink(root))

	res, err := e.ExportTraining(context.Background(), "run-1/batch-0000", sampleTrainingBatch())
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "run-1", "batch-0000", ManifestFile), res.Manifest)

	f, err := os.Open(filepath.Join(root, "run-1", "batch-0000", FeaturesFile))
	require.NoError(t, err)
	defer f.Close()
	shape, _, err := Shape(f)
	require.NoError(t, err)
	assert.Equal(t, []int{4 * reaction_center.BinaryFDim}, shape)
}

func TestDirSink_RejectsEscapingNames(t *testing.T) {
	s := NewDirSink(t.TempDir())
	for _, name := range []string{"", "../x", "/etc/passwd", "a/../../x"} {
		_, err := s.Put(context.Background(), name, []byte("x"))
		require.Error(t, err, name)
		assert.True(t, errors.IsCode(err, errors.CodeInvalidParam), name)
	}
}

func TestDirSink_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewDirSink(t.TempDir()).Put(ctx, "a", nil)
	assert.True(t, errors.IsCode(err, errors.CodeCancelled))
}

//Personal.AI order the ending
