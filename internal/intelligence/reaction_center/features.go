package reaction_center

import (
	"fmt"

	"github.com/turtacn/rxncenter/internal/domain/molecule"
	"github.com/turtacn/rxncenter/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/rxncenter/pkg/errors"
)

// ---------------------------------------------------------------------------
// Featurizer
// ---------------------------------------------------------------------------

// FeaturizerConfig tunes the featurizer.
type FeaturizerConfig struct {
	// MaxAtomsLimit rejects batches whose largest reaction exceeds it.
	// 0 disables the check.
	MaxAtomsLimit int `json:"max_atoms_limit" mapstructure:"max_atoms_limit"`
}

// Featurizer computes pair features, bond labels and their batches.  It
// holds only immutable collaborators and is safe for concurrent use.
type Featurizer struct {
	parser  molecule.Parser
	cfg     FeaturizerConfig
	metrics Metrics
	logger  logging.Logger
}

// NewFeaturizer creates a Featurizer.  A nil parser selects the SMILES
// parser; nil metrics and logger select no-op implementations.
func NewFeaturizer(
	parser molecule.Parser,
	cfg FeaturizerConfig,
	metrics Metrics,
	logger logging.Logger,
) (*Featurizer, error) {
	if cfg.MaxAtomsLimit < 0 {
		return nil, errors.InvalidParam("max_atoms_limit must be >= 0")
	}
	if parser == nil {
		parser = molecule.NewSMILESParser()
	}
	if metrics == nil {
		metrics = NewNoopMetrics()
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Featurizer{
		parser:  parser,
		cfg:     cfg,
		metrics: metrics,
		logger:  logger,
	}, nil
}

func (f *Featurizer) parse(smiles string) (*molecule.Molecule, error) {
	m, err := f.parser.Parse(smiles)
	f.metrics.RecordParse(err == nil)
	return m, err
}

// NumAtoms returns the atom count of a reaction string.
func (f *Featurizer) NumAtoms(reaction string) (int, error) {
	m, err := f.parse(reaction)
	if err != nil {
		return 0, err
	}
	return m.NumAtoms(), nil
}

// BinaryFeatures computes the (maxAtoms, maxAtoms, BinaryFDim) pair tensor of
// reaction.  Pairs on the diagonal or in the padding region are all zero,
// component flags included.
func (f *Featurizer) BinaryFeatures(reaction string, maxAtoms int) (*PairFeatures, error) {
	mol, err := f.parse(reaction)
	if err != nil {
		return nil, err
	}
	n := mol.NumAtoms()
	if err := checkMaxAtoms(n, maxAtoms); err != nil {
		return nil, err
	}
	out := &PairFeatures{
		MaxAtoms: maxAtoms,
		NumAtoms: n,
		Data:     make([]float32, maxAtoms*maxAtoms*BinaryFDim),
	}
	if err := f.featuresInto(out.Data, mol, reaction, maxAtoms); err != nil {
		return nil, err
	}
	return out, nil
}

// featuresInto writes the pair tensor of an already parsed reaction into dst,
// which must be zeroed and hold maxAtoms*maxAtoms*BinaryFDim values.
func (f *Featurizer) featuresInto(dst []float32, mol *molecule.Molecule, reaction string, maxAtoms int) error {
	index, err := atomIndexByMap(mol)
	if err != nil {
		return err
	}
	comp, err := BuildComponentIndex(f.parser, reaction)
	if err != nil {
		return err
	}

	n := mol.NumAtoms()
	for i := 0; i < n; i++ {
		if _, ok := comp.ByAtom[i]; !ok {
			return errors.InvalidAtomMap(fmt.Sprintf("atom index %d missing from component index", i))
		}
	}

	// Symmetric pair -> bond lookup keyed by map-derived indices.
	bonds := mol.Bonds()
	bondAt := make([]int, n*n)
	for k := range bondAt {
		bondAt[k] = -1
	}
	for _, b := range bonds {
		a1, a2 := index[b.Begin], index[b.End]
		bondAt[a1*n+a2] = b.Index
		bondAt[a2*n+a1] = b.Index
	}

	single := comp.SingleComponent()
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if i == j {
				continue
			}
			off := (i*maxAtoms + j) * BinaryFDim
			v := dst[off : off+BinaryFDim]

			if bi := bondAt[i*n+j]; bi >= 0 {
				molecule.EncodeBondFeatures(v[offDescriptor:offDescriptor+molecule.BondFDim], bonds[bi])
			} else {
				v[offNoBond] = 1
			}

			diff := comp.ByAtom[i] != comp.ByAtom[j]
			v[offDiffComponent] = flag(diff)
			v[offSameComponent] = flag(!diff)
			v[offSingleComponent] = flag(single)
			v[offMultiComponent] = flag(!single)
		}
	}
	return nil
}

func flag(b bool) float32 {
	if b {
		return 1
	}
	return 0
}

func checkMaxAtoms(n, maxAtoms int) error {
	if maxAtoms < n {
		return errors.AtomLimitExceeded(
			fmt.Sprintf("reaction has %d atoms but max_atoms is %d", n, maxAtoms))
	}
	return nil
}

//Personal.AI order the ending
