package npy

import (
	"context"
	"encoding/json"
	"path"
	"time"

	"github.com/turtacn/rxncenter/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/rxncenter/internal/intelligence/reaction_center"
	"github.com/turtacn/rxncenter/pkg/errors"
)

// File names written below each export prefix.
const (
	FeaturesFile = "features.npy"
	LabelsFile   = "labels.npy"
	SparseFile   = "sparse.json"
	ManifestFile = "manifest.json"
)

// ArrayInfo describes one exported array.  The .npy header is always 1-D;
// Shape is the logical tensor shape to reshape to.
type ArrayInfo struct {
	File  string `json:"file"`
	DType string `json:"dtype"`
	Shape []int  `json:"shape"`
}

// Manifest is written last, so its presence marks a complete export.
type Manifest struct {
	Kind       string               `json:"kind"`
	Size       int                  `json:"size"`
	MaxAtoms   int                  `json:"max_atoms"`
	BinaryFDim int                  `json:"binary_fdim"`
	Positives  int                  `json:"positives"`
	Arrays     map[string]ArrayInfo `json:"arrays"`
	SparseFile string               `json:"sparse_file,omitempty"`
	CreatedAt  time.Time            `json:"created_at"`
}

// ExportResult lists where each file of one export went.
type ExportResult struct {
	Prefix    string            `json:"prefix"`
	Manifest  string            `json:"manifest"`
	Locations map[string]string `json:"locations"`
	Bytes     int               `json:"bytes"`
}

// Exporter writes featurized batches to a Sink.
type Exporter struct {
	sink   Sink
	logger logging.Logger
	now    func() time.Time
}

// NewExporter creates an Exporter.  A nil logger falls back to the default.
func NewExporter(sink Sink, logger logging.Logger) (*Exporter, error) {
	if sink == nil {
		return nil, errors.InvalidParam("sink is required")
	}
	return &Exporter{sink: sink, logger: logging.OrDefault(logger), now: time.Now}, nil
}

// ExportTraining writes features.npy, labels.npy, sparse.json and
// manifest.json below prefix.
func (e *Exporter) ExportTraining(ctx context.Context, prefix string, b *reaction_center.TrainingBatch) (*ExportResult, error) {
	if b == nil {
		return nil, errors.InvalidParam("training batch is nil")
	}
	features, err := Encode(b.Features)
	if err != nil {
		return nil, err
	}
	labels, err := Encode(b.Labels)
	if err != nil {
		return nil, err
	}
	sparse, err := json.Marshal(b.Sparse)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeSerialization, "sparse labels encode failed")
	}

	m := &Manifest{
		Kind:       reaction_center.KindTraining,
		Size:       b.Size,
		MaxAtoms:   b.MaxAtoms,
		BinaryFDim: reaction_center.BinaryFDim,
		Positives:  b.Positives(),
		Arrays: map[string]ArrayInfo{
			"features": {File: FeaturesFile, DType: "float32", Shape: b.FeatureShape()},
			"labels":   {File: LabelsFile, DType: "int32", Shape: b.LabelShape()},
		},
		SparseFile: SparseFile,
	}
	return e.write(ctx, prefix, m, []blob{
		{FeaturesFile, features},
		{LabelsFile, labels},
		{SparseFile, sparse},
	})
}

// ExportFeatures writes features.npy and manifest.json below prefix.
func (e *Exporter) ExportFeatures(ctx context.Context, prefix string, b *reaction_center.FeatureBatch) (*ExportResult, error) {
	if b == nil {
		return nil, errors.InvalidParam("feature batch is nil")
	}
	features, err := Encode(b.Features)
	if err != nil {
		return nil, err
	}

	m := &Manifest{
		Kind:       reaction_center.KindInference,
		Size:       b.Size,
		MaxAtoms:   b.MaxAtoms,
		BinaryFDim: reaction_center.BinaryFDim,
		Arrays: map[string]ArrayInfo{
			"features": {File: FeaturesFile, DType: "float32", Shape: b.FeatureShape()},
		},
	}
	return e.write(ctx, prefix, m, []blob{{FeaturesFile, features}})
}

type blob struct {
	name string
	data []byte
}

func (e *Exporter) write(ctx context.Context, prefix string, m *Manifest, blobs []blob) (*ExportResult, error) {
	m.CreatedAt = e.now().UTC()
	manifest, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeSerialization, "manifest encode failed")
	}
	blobs = append(blobs, blob{ManifestFile, manifest})

	res := &ExportResult{Prefix: prefix, Locations: make(map[string]string, len(blobs))}
	for _, b := range blobs {
		loc, err := e.sink.Put(ctx, path.Join(prefix, b.name), b.data)
		if err != nil {
			return nil, errors.Wrap(err, errors.CodeExportFailed, "export failed").WithDetailf("file=%s", path.Join(prefix, b.name))
		}
		res.Locations[b.name] = loc
		res.Bytes += len(b.data)
	}
	res.Manifest = res.Locations[ManifestFile]

	e.logger.Debug("batch exported",
		logging.String("prefix", prefix),
		logging.String("kind", m.Kind),
		logging.Int("size", m.Size),
		logging.Int("bytes", res.Bytes))
	return res, nil
}

//Personal.AI order the ending
