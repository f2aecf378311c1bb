package reaction_center

import (
	"context"
	"fmt"
	"time"

	"github.com/samber/lo"

	"github.com/turtacn/rxncenter/internal/domain/molecule"
	"github.com/turtacn/rxncenter/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/rxncenter/pkg/errors"
)

// AllBatch featurizes training items.  Every item is padded to the largest
// atom count in items.  A failing item fails the whole call.
func (f *Featurizer) AllBatch(ctx context.Context, items []ReactionEdits) (batch *TrainingBatch, err error) {
	start := time.Now()
	defer func() {
		p := &BatchMetricParams{
			Kind:       KindTraining,
			Size:       len(items),
			DurationMs: float64(time.Since(start).Microseconds()) / 1000.0,
			Success:    err == nil,
		}
		if batch != nil {
			p.MaxAtoms = batch.MaxAtoms
			p.Positives = batch.Positives()
		}
		f.metrics.RecordBatch(ctx, p)
	}()

	reactions := lo.Map(items, func(it ReactionEdits, _ int) string { return it.Reaction })
	mols, maxAtoms, err := f.measure(ctx, reactions)
	if err != nil {
		return nil, err
	}

	cells := maxAtoms * maxAtoms
	batch = &TrainingBatch{
		Size:     len(items),
		MaxAtoms: maxAtoms,
		Features: make([]float32, len(items)*cells*BinaryFDim),
		Labels:   make([]int32, len(items)*cells),
		Sparse:   make([][]int, len(items)),
	}

	for k, it := range items {
		if err := ctx.Err(); err != nil {
			return nil, errors.Wrap(err, errors.CodeCancelled, "training batch cancelled")
		}
		edits, err := ParseEdits(it.Edits)
		if err != nil {
			return nil, itemError(k, err)
		}
		sparse, err := labelsInto(batch.Labels[k*cells:(k+1)*cells], edits, mols[k].NumAtoms(), maxAtoms)
		if err != nil {
			return nil, itemError(k, err)
		}
		batch.Sparse[k] = sparse

		feat := batch.Features[k*cells*BinaryFDim : (k+1)*cells*BinaryFDim]
		if err := f.featuresInto(feat, mols[k], it.Reaction, maxAtoms); err != nil {
			return nil, itemError(k, err)
		}
	}

	f.logger.Debug("training batch featurized",
		logging.Int("size", batch.Size),
		logging.Int("max_atoms", maxAtoms),
		logging.Int("positives", batch.Positives()),
		logging.Duration("took", time.Since(start)))
	return batch, nil
}

// FeatureBatch featurizes reactions for inference, without labels.
func (f *Featurizer) FeatureBatch(ctx context.Context, reactions []string) (batch *FeatureBatch, err error) {
	start := time.Now()
	defer func() {
		p := &BatchMetricParams{
			Kind:       KindInference,
			Size:       len(reactions),
			DurationMs: float64(time.Since(start).Microseconds()) / 1000.0,
			Success:    err == nil,
		}
		if batch != nil {
			p.MaxAtoms = batch.MaxAtoms
		}
		f.metrics.RecordBatch(ctx, p)
	}()

	mols, maxAtoms, err := f.measure(ctx, reactions)
	if err != nil {
		return nil, err
	}

	size := maxAtoms * maxAtoms * BinaryFDim
	batch = &FeatureBatch{
		Size:     len(reactions),
		MaxAtoms: maxAtoms,
		Features: make([]float32, len(reactions)*size),
	}
	for k, r := range reactions {
		if err := ctx.Err(); err != nil {
			return nil, errors.Wrap(err, errors.CodeCancelled, "feature batch cancelled")
		}
		if err := f.featuresInto(batch.Features[k*size:(k+1)*size], mols[k], r, maxAtoms); err != nil {
			return nil, itemError(k, err)
		}
	}

	f.logger.Debug("feature batch featurized",
		logging.Int("size", batch.Size),
		logging.Int("max_atoms", maxAtoms),
		logging.Duration("took", time.Since(start)))
	return batch, nil
}

// measure parses every reaction and returns the molecules together with the
// largest atom count.
func (f *Featurizer) measure(ctx context.Context, reactions []string) ([]*molecule.Molecule, int, error) {
	if len(reactions) == 0 {
		return nil, 0, errors.New(errors.CodeEmptyBatch, "batch is empty")
	}
	mols := make([]*molecule.Molecule, len(reactions))
	counts := make([]int, len(reactions))
	for k, r := range reactions {
		if err := ctx.Err(); err != nil {
			return nil, 0, errors.Wrap(err, errors.CodeCancelled, "batch cancelled")
		}
		m, err := f.parse(r)
		if err != nil {
			return nil, 0, itemError(k, err)
		}
		mols[k] = m
		counts[k] = m.NumAtoms()
	}

	maxAtoms := lo.Max(counts)
	if f.cfg.MaxAtomsLimit > 0 && maxAtoms > f.cfg.MaxAtomsLimit {
		return nil, 0, errors.AtomLimitExceeded(
			fmt.Sprintf("batch max atom count %d exceeds limit %d", maxAtoms, f.cfg.MaxAtomsLimit))
	}
	return mols, maxAtoms, nil
}

func itemError(k int, err error) error {
	return errors.Wrap(err, errors.CodeUnknown, fmt.Sprintf("batch item %d", k))
}

//Personal.AI order the ending
