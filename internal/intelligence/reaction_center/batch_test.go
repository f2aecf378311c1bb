package reaction_center

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/turtacn/rxncenter/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/rxncenter/pkg/errors"
)

type BatchSuite struct {
	suite.Suite
	metrics *InMemoryMetrics
	logs    *observer.ObservedLogs
	f       *Featurizer
}

func (s *BatchSuite) SetupTest() {
	core, logs := observer.New(zapcore.DebugLevel)
	s.logs = logs
	s.metrics = NewInMemoryMetrics()
	f, err := NewFeaturizer(nil, FeaturizerConfig{}, s.metrics, logging.NewLoggerFromCore(core))
	s.Require().NoError(err)
	s.f = f
}

func TestBatchSuite(t *testing.T) {
	suite.Run(t, new(BatchSuite))
}

func (s *BatchSuite) TestAllBatch_PadsToLargestItem() {
	items := []ReactionEdits{
		{Reaction: ethane, Edits: "1-2"},
		{Reaction: twoComp, Edits: "2-3"},
	}
	batch, err := s.f.AllBatch(context.Background(), items)
	s.Require().NoError(err)

	s.Equal(2, batch.Size)
	s.Equal(3, batch.MaxAtoms)
	s.Equal([]int{2, 3, 3, BinaryFDim}, batch.FeatureShape())
	s.Equal([]int{2, 9}, batch.LabelShape())
	s.Len(batch.Features, 2*9*BinaryFDim)
	s.Len(batch.Labels, 2*9)
	s.Equal([][]int{{1, 3}, {5, 7}}, batch.Sparse)
	s.Equal(4, batch.Positives())

	// Every slice of the stack matches the single-item computation.
	for k, it := range items {
		pf, err := s.f.BinaryFeatures(it.Reaction, batch.MaxAtoms)
		s.Require().NoError(err)
		s.Equal(pf.Data, batch.Features[k*9*BinaryFDim:(k+1)*9*BinaryFDim])

		labels, sparse, err := s.f.BondLabels(it.Reaction, it.Edits, batch.MaxAtoms)
		s.Require().NoError(err)
		s.Equal(labels.Data, batch.Labels[k*9:(k+1)*9])
		s.Equal(sparse, batch.Sparse[k])
	}
}

func (s *BatchSuite) TestAllBatch_RecordsMetricsAndLogs() {
	_, err := s.f.AllBatch(context.Background(), []ReactionEdits{{Reaction: ethane, Edits: "1-2"}})
	s.Require().NoError(err)

	batches := s.metrics.Batches()
	s.Require().Len(batches, 1)
	s.Equal(KindTraining, batches[0].Kind)
	s.Equal(1, batches[0].Size)
	s.Equal(2, batches[0].MaxAtoms)
	s.Equal(2, batches[0].Positives)
	s.True(batches[0].Success)

	ok, failed := s.metrics.Parses()
	s.Positive(ok)
	s.Zero(failed)

	s.Equal(1, s.logs.FilterMessage("training batch featurized").Len())
}

func (s *BatchSuite) TestAllBatch_ItemFailureFailsBatch() {
	items := []ReactionEdits{
		{Reaction: ethane, Edits: "1-2"},
		{Reaction: "[CH3:1](", Edits: ""},
	}
	batch, err := s.f.AllBatch(context.Background(), items)
	s.Nil(batch)
	s.Require().Error(err)
	s.True(errors.IsCode(err, errors.CodeInvalidSMILES))
	s.Contains(err.Error(), "batch item 1")

	batches := s.metrics.Batches()
	s.Require().Len(batches, 1)
	s.False(batches[0].Success)
	_, failed := s.metrics.Parses()
	s.Equal(1, failed)
}

func (s *BatchSuite) TestAllBatch_BadEdit() {
	_, err := s.f.AllBatch(context.Background(), []ReactionEdits{{Reaction: ethane, Edits: "1-x"}})
	s.True(errors.IsCode(err, errors.CodeInvalidEdit))
	s.Contains(err.Error(), "batch item 0")
}

func (s *BatchSuite) TestAllBatch_Empty() {
	_, err := s.f.AllBatch(context.Background(), nil)
	s.True(errors.IsCode(err, errors.CodeEmptyBatch))

	_, err = s.f.FeatureBatch(context.Background(), []string{})
	s.True(errors.IsCode(err, errors.CodeEmptyBatch))
}

func (s *BatchSuite) TestAllBatch_Cancelled() {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := s.f.AllBatch(ctx, []ReactionEdits{{Reaction: ethane, Edits: "1-2"}})
	s.True(errors.IsCode(err, errors.CodeCancelled))
	s.ErrorIs(err, context.Canceled)
}

func (s *BatchSuite) TestMaxAtomsLimit() {
	f, err := NewFeaturizer(nil, FeaturizerConfig{MaxAtomsLimit: 2}, nil, nil)
	s.Require().NoError(err)

	_, err = f.FeatureBatch(context.Background(), []string{ethane})
	s.NoError(err)

	_, err = f.FeatureBatch(context.Background(), []string{ethane, twoComp})
	s.True(errors.IsCode(err, errors.CodeAtomLimitExceeded))
}

func (s *BatchSuite) TestFeatureBatch_MatchesSingleItems() {
	reactions := []string{saltPair, permuted, ethane}
	batch, err := s.f.FeatureBatch(context.Background(), reactions)
	s.Require().NoError(err)

	s.Equal(3, batch.Size)
	s.Equal(6, batch.MaxAtoms)
	s.Equal([]int{3, 6, 6, BinaryFDim}, batch.FeatureShape())

	cell := 36 * BinaryFDim
	for k, r := range reactions {
		pf, err := s.f.BinaryFeatures(r, 6)
		s.Require().NoError(err)
		s.Equal(pf.Data, batch.Features[k*cell:(k+1)*cell])
	}

	batches := s.metrics.Batches()
	s.Require().Len(batches, 1)
	s.Equal(KindInference, batches[0].Kind)
	s.Equal(6, batches[0].MaxAtoms)
}

//Personal.AI order the ending
