// Package reaction_center builds the pairwise atom features and bond-change
// labels consumed by reaction-center prediction models.
//
// Every reaction string is indexed by atom-map number: map number k becomes
// row/column k-1 of the pair tensors.  All outputs are padded to a caller
// supplied (or batch derived) maximum atom count.
package reaction_center

import (
	"github.com/turtacn/rxncenter/internal/domain/molecule"
)

// ---------------------------------------------------------------------------
// Feature layout
// ---------------------------------------------------------------------------

// BinaryFDim is the width of one pair feature vector.
//
// Layout:
//   [0]              No bond between the pair
//   [1..BondFDim]    Bond descriptor (see molecule.BondFDim)
//   [BinaryFDim-4]   Atoms sit in different components
//   [BinaryFDim-3]   Atoms sit in the same component
//   [BinaryFDim-2]   Reaction has a single component
//   [BinaryFDim-1]   Reaction has several components
//
// BinaryFDim-4 is also the last descriptor slot (in ring); the component
// flag is written after the descriptor and overwrites it.
const BinaryFDim = 4 + molecule.BondFDim

// InvalidBond labels the diagonal and the padding region.
const InvalidBond int32 = -1

const (
	offNoBond          = 0
	offDescriptor      = 1
	offDiffComponent   = BinaryFDim - 4
	offSameComponent   = BinaryFDim - 3
	offSingleComponent = BinaryFDim - 2
	offMultiComponent  = BinaryFDim - 1
)

// Batch kinds used in logs and metrics.
const (
	KindTraining  = "training"
	KindInference = "inference"
)

// ---------------------------------------------------------------------------
// Per-reaction tensors
// ---------------------------------------------------------------------------

// PairFeatures is a (MaxAtoms, MaxAtoms, BinaryFDim) tensor stored row-major.
type PairFeatures struct {
	MaxAtoms int       `json:"max_atoms"`
	NumAtoms int       `json:"num_atoms"`
	Data     []float32 `json:"data"`
}

// Shape returns the tensor dimensions.
func (p *PairFeatures) Shape() []int {
	return []int{p.MaxAtoms, p.MaxAtoms, BinaryFDim}
}

// At returns the feature vector of pair (i, j).  The slice aliases Data.
func (p *PairFeatures) At(i, j int) []float32 {
	off := (i*p.MaxAtoms + j) * BinaryFDim
	return p.Data[off : off+BinaryFDim]
}

// LabelMatrix is a flattened (MaxAtoms * MaxAtoms) label array, row-major.
type LabelMatrix struct {
	MaxAtoms int     `json:"max_atoms"`
	NumAtoms int     `json:"num_atoms"`
	Data     []int32 `json:"data"`
}

// At returns the label of pair (i, j).
func (l *LabelMatrix) At(i, j int) int32 {
	return l.Data[i*l.MaxAtoms+j]
}

// Edit is one bond change between two zero-based atom indices.
type Edit struct {
	A int `json:"a"`
	B int `json:"b"`
}

// ReactionEdits pairs a reaction-side SMILES with its edit annotation, a
// ";"-separated list of "x-y" atom-map pairs.
type ReactionEdits struct {
	Reaction string `json:"reaction"`
	Edits    string `json:"edits"`
}

// ---------------------------------------------------------------------------
// Batches
// ---------------------------------------------------------------------------

// TrainingBatch stacks the features and labels of several reactions padded
// to a shared MaxAtoms.
type TrainingBatch struct {
	Size     int `json:"size"`
	MaxAtoms int `json:"max_atoms"`
	// Features has shape (Size, MaxAtoms, MaxAtoms, BinaryFDim).
	Features []float32 `json:"-"`
	// Labels has shape (Size, MaxAtoms*MaxAtoms).
	Labels []int32 `json:"-"`
	// Sparse holds, per item, the flat indices i*MaxAtoms+j whose label is 1.
	Sparse [][]int `json:"sparse"`
}

// FeatureShape returns the shape of Features.
func (b *TrainingBatch) FeatureShape() []int {
	return []int{b.Size, b.MaxAtoms, b.MaxAtoms, BinaryFDim}
}

// LabelShape returns the shape of Labels.
func (b *TrainingBatch) LabelShape() []int {
	return []int{b.Size, b.MaxAtoms * b.MaxAtoms}
}

// Positives returns the total number of positive labels in the batch.
func (b *TrainingBatch) Positives() int {
	n := 0
	for _, s := range b.Sparse {
		n += len(s)
	}
	return n
}

// FeatureBatch stacks inference features padded to a shared MaxAtoms.
type FeatureBatch struct {
	Size     int `json:"size"`
	MaxAtoms int `json:"max_atoms"`
	// Features has shape (Size, MaxAtoms, MaxAtoms, BinaryFDim).
	Features []float32 `json:"-"`
}

// FeatureShape returns the shape of Features.
func (b *FeatureBatch) FeatureShape() []int {
	return []int{b.Size, b.MaxAtoms, b.MaxAtoms, BinaryFDim}
}

//Personal.AI order the ending
