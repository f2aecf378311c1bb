// Package featurization runs reaction files through the pairwise featurizer
// in fixed-size chunks and exports every chunk as one tensor batch.
package featurization

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/turtacn/rxncenter/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/rxncenter/internal/infrastructure/storage/npy"
	"github.com/turtacn/rxncenter/internal/intelligence/reaction_center"
	"github.com/turtacn/rxncenter/pkg/errors"
)

// DefaultBatchSize is used when neither the request nor Config sets one.
const DefaultBatchSize = 64

// Service defines the featurization use case.
type Service interface {
	Run(ctx context.Context, req *Request) (*Result, error)
}

// Exporter persists featurized batches.  *npy.Exporter implements it.
type Exporter interface {
	ExportTraining(ctx context.Context, prefix string, b *reaction_center.TrainingBatch) (*npy.ExportResult, error)
	ExportFeatures(ctx context.Context, prefix string, b *reaction_center.FeatureBatch) (*npy.ExportResult, error)
}

// RunMetrics observes runs and exports.  The Prometheus FeaturizerMetrics
// implements it.
type RunMetrics interface {
	RunStarted()
	RunFinished()
	RecordExport(sink string, success bool, duration time.Duration)
	RecordError(component, code string)
}

type noopRunMetrics struct{}

func (noopRunMetrics) RunStarted()                              {}
func (noopRunMetrics) RunFinished()                             {}
func (noopRunMetrics) RecordExport(string, bool, time.Duration) {}
func (noopRunMetrics) RecordError(string, string)               {}

// Config holds service defaults.
type Config struct {
	BatchSize int
	// Sink names the export target in logs and metrics ("dir", "minio").
	Sink string
}

// Request is one featurization run.
type Request struct {
	Items []reaction_center.ReactionEdits
	// Inference skips labels and exports features only.
	Inference bool
	// BatchSize overrides Config.BatchSize when positive.
	BatchSize int
	// RunID names the export prefix; a UUID is generated when empty.
	RunID string
}

// ChunkSummary describes one exported batch.
type ChunkSummary struct {
	Index     int    `json:"index"`
	Size      int    `json:"size"`
	MaxAtoms  int    `json:"max_atoms"`
	Positives int    `json:"positives"`
	Prefix    string `json:"prefix"`
	Manifest  string `json:"manifest"`
	Bytes     int    `json:"bytes"`
}

// Result summarises a finished run.
type Result struct {
	RunID     string         `json:"run_id"`
	Kind      string         `json:"kind"`
	Reactions int            `json:"reactions"`
	Positives int            `json:"positives"`
	Chunks    []ChunkSummary `json:"chunks"`
	Duration  time.Duration  `json:"duration"`
}

type serviceImpl struct {
	featurizer *reaction_center.Featurizer
	exporter   Exporter
	cfg        Config
	metrics    RunMetrics
	logger     logging.Logger
}

// NewService creates a featurization service.  Nil metrics and logger select
// no-op implementations.
func NewService(
	featurizer *reaction_center.Featurizer,
	exporter Exporter,
	cfg Config,
	metrics RunMetrics,
	logger logging.Logger,
) (Service, error) {
	if featurizer == nil {
		return nil, errors.InvalidParam("featurizer is required")
	}
	if exporter == nil {
		return nil, errors.InvalidParam("exporter is required")
	}
	if cfg.BatchSize < 0 {
		return nil, errors.InvalidParam("batch size must be >= 0")
	}
	if cfg.BatchSize == 0 {
		cfg.BatchSize = DefaultBatchSize
	}
	if metrics == nil {
		metrics = noopRunMetrics{}
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &serviceImpl{
		featurizer: featurizer,
		exporter:   exporter,
		cfg:        cfg,
		metrics:    metrics,
		logger:     logger,
	}, nil
}

// Run featurizes req.Items chunk by chunk.  Chunks already exported stay in
// place when a later chunk fails.
func (s *serviceImpl) Run(ctx context.Context, req *Request) (*Result, error) {
	if req == nil || len(req.Items) == 0 {
		return nil, errors.New(errors.CodeEmptyBatch, "no reactions to featurize")
	}
	size := s.cfg.BatchSize
	if req.BatchSize > 0 {
		size = req.BatchSize
	}
	runID := req.RunID
	if runID == "" {
		runID = uuid.NewString()
	}
	kind := reaction_center.KindTraining
	if req.Inference {
		kind = reaction_center.KindInference
	}

	s.metrics.RunStarted()
	defer s.metrics.RunFinished()

	start := time.Now()
	log := s.logger.With(logging.String("run_id", runID), logging.String("kind", kind))
	log.Info("featurization started",
		logging.Int("reactions", len(req.Items)),
		logging.Int("batch_size", size))

	res := &Result{RunID: runID, Kind: kind, Reactions: len(req.Items)}
	for i, chunk := range lo.Chunk(req.Items, size) {
		if err := ctx.Err(); err != nil {
			return nil, errors.Wrap(err, errors.CodeCancelled, "featurization cancelled")
		}
		summary, err := s.runChunk(ctx, runID, i, chunk, req.Inference)
		if err != nil {
			s.metrics.RecordError("featurization", errors.GetCode(err).String())
			log.Error("chunk failed", logging.Int("chunk", i), logging.Err(err))
			return nil, errors.Wrap(err, errors.CodeUnknown, fmt.Sprintf("chunk %d", i))
		}
		res.Chunks = append(res.Chunks, *summary)
		res.Positives += summary.Positives
		log.Info("chunk exported",
			logging.Int("chunk", i),
			logging.Int("size", summary.Size),
			logging.Int("max_atoms", summary.MaxAtoms),
			logging.String("manifest", summary.Manifest))
	}

	res.Duration = time.Since(start)
	log.Info("featurization finished",
		logging.Int("chunks", len(res.Chunks)),
		logging.Int("positives", res.Positives),
		logging.Duration("took", res.Duration))
	return res, nil
}

func (s *serviceImpl) runChunk(ctx context.Context, runID string, index int, items []reaction_center.ReactionEdits, inference bool) (*ChunkSummary, error) {
	prefix := fmt.Sprintf("%s/batch-%04d", runID, index)
	summary := &ChunkSummary{Index: index, Size: len(items), Prefix: prefix}

	var (
		exported *npy.ExportResult
		err      error
	)
	if inference {
		reactions := lo.Map(items, func(it reaction_center.ReactionEdits, _ int) string { return it.Reaction })
		batch, ferr := s.featurizer.FeatureBatch(ctx, reactions)
		if ferr != nil {
			return nil, ferr
		}
		summary.MaxAtoms = batch.MaxAtoms
		exported, err = s.export(func() (*npy.ExportResult, error) {
			return s.exporter.ExportFeatures(ctx, prefix, batch)
		})
	} else {
		batch, ferr := s.featurizer.AllBatch(ctx, items)
		if ferr != nil {
			return nil, ferr
		}
		summary.MaxAtoms = batch.MaxAtoms
		summary.Positives = batch.Positives()
		exported, err = s.export(func() (*npy.ExportResult, error) {
			return s.exporter.ExportTraining(ctx, prefix, batch)
		})
	}
	if err != nil {
		return nil, err
	}
	summary.Manifest = exported.Manifest
	summary.Bytes = exported.Bytes
	return summary, nil
}

func (s *serviceImpl) export(fn func() (*npy.ExportResult, error)) (*npy.ExportResult, error) {
	start := time.Now()
	res, err := fn()
	s.metrics.RecordExport(s.cfg.Sink, err == nil, time.Since(start))
	return res, err
}

//Personal.AI order the ending
