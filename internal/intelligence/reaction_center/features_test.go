package reaction_center

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/rxncenter/pkg/errors"
)

const (
	ethane    = "[CH3:1][CH3:2]"
	twoComp   = "[CH3:1][OH:2].[NH3:3]"
	benzene   = "[cH:1]1[cH:2][cH:3][cH:4][cH:5][cH:6]1"
	permuted  = "[CH3:2][C:1](=[O:3])[OH:4].[CH3:5][OH:6]"
	saltPair  = "[Na+:1].[Cl-:2]"
	biphenyl  = "[cH:1]1[cH:2][cH:3][cH:4][cH:5][c:6]1-[c:7]1[cH:8][cH:9][cH:10][cH:11][cH:12]1"
	threeComp = "[CH4:1].[OH2:2].[NH3:3]"
)

var propertyReactions = []string{ethane, twoComp, benzene, permuted, saltPair, biphenyl, threeComp}

func newTestFeaturizer(t *testing.T) *Featurizer {
	t.Helper()
	f, err := NewFeaturizer(nil, FeaturizerConfig{}, nil, nil)
	require.NoError(t, err)
	return f
}

func sum(v []float32) float32 {
	var s float32
	for _, x := range v {
		s += x
	}
	return s
}

func TestNewFeaturizer_RejectsNegativeLimit(t *testing.T) {
	_, err := NewFeaturizer(nil, FeaturizerConfig{MaxAtomsLimit: -1}, nil, nil)
	assert.True(t, errors.IsCode(err, errors.CodeInvalidParam))
}

func TestBinaryFeatures_Ethane(t *testing.T) {
	f := newTestFeaturizer(t)

	pf, err := f.BinaryFeatures(ethane, 2)
	require.NoError(t, err)
	assert.Equal(t, []int{2, 2, BinaryFDim}, pf.Shape())
	assert.Len(t, pf.Data, 2*2*BinaryFDim)
	assert.Equal(t, 2, pf.NumAtoms)

	// no-bond, single, double, triple, aromatic, conjugated, in-ring/diff,
	// same, single-component, multi-component
	want := []float32{0, 1, 0, 0, 0, 0, 0, 1, 1, 0}
	assert.Equal(t, want, pf.At(0, 1))
	assert.Equal(t, want, pf.At(1, 0))
	assert.Equal(t, make([]float32, BinaryFDim), pf.At(0, 0))
	assert.Equal(t, make([]float32, BinaryFDim), pf.At(1, 1))
}

func TestBinaryFeatures_MultiComponent(t *testing.T) {
	f := newTestFeaturizer(t)

	pf, err := f.BinaryFeatures(twoComp, 4)
	require.NoError(t, err)

	// C-O bonded, same component.
	assert.Equal(t, []float32{0, 1, 0, 0, 0, 0, 0, 1, 0, 1}, pf.At(0, 1))
	// O and N: no bond, different components.
	assert.Equal(t, []float32{1, 0, 0, 0, 0, 0, 1, 0, 0, 1}, pf.At(1, 2))
	// Padding row and column.
	for k := 0; k < 4; k++ {
		assert.Zero(t, sum(pf.At(3, k)))
		assert.Zero(t, sum(pf.At(k, 3)))
	}
}

func TestBinaryFeatures_IndexedByMapNumber(t *testing.T) {
	f := newTestFeaturizer(t)

	pf, err := f.BinaryFeatures(permuted, 6)
	require.NoError(t, err)

	// map 1 (carbonyl C) = 3 (O) is a conjugated double bond.
	v := pf.At(0, 2)
	assert.Equal(t, float32(0), v[offNoBond])
	assert.Equal(t, float32(1), v[offDescriptor+1])
	assert.Equal(t, float32(1), v[offDescriptor+4])

	// map 2 (methyl) - map 1 single bond.
	assert.Equal(t, float32(1), pf.At(1, 0)[offDescriptor])
	// map 2 and map 3 are not bonded.
	assert.Equal(t, float32(1), pf.At(1, 2)[offNoBond])
	// map 5 and map 6 are bonded in the second component.
	assert.Equal(t, float32(1), pf.At(4, 5)[offDescriptor])
	assert.Equal(t, float32(1), pf.At(0, 4)[offDiffComponent])
}

func TestBinaryFeatures_AromaticRing(t *testing.T) {
	f := newTestFeaturizer(t)

	pf, err := f.BinaryFeatures(benzene, 6)
	require.NoError(t, err)
	v := pf.At(0, 5)
	assert.Equal(t, float32(1), v[offDescriptor+3])
	assert.Equal(t, float32(1), v[offDescriptor+4])
	assert.Equal(t, float32(1), pf.At(0, 3)[offNoBond])
}

func TestBinaryFeatures_Properties(t *testing.T) {
	f := newTestFeaturizer(t)

	for _, rxn := range propertyReactions {
		t.Run(rxn, func(t *testing.T) {
			n, err := f.NumAtoms(rxn)
			require.NoError(t, err)
			comp, err := BuildComponentIndex(nil, rxn)
			require.NoError(t, err)

			for _, maxAtoms := range []int{n, n + 3} {
				pf, err := f.BinaryFeatures(rxn, maxAtoms)
				require.NoError(t, err)
				require.Len(t, pf.Data, maxAtoms*maxAtoms*BinaryFDim)

				for i := 0; i < maxAtoms; i++ {
					for j := 0; j < maxAtoms; j++ {
						v := pf.At(i, j)
						if i == j || i >= n || j >= n {
							assert.Zero(t, sum(v), "pair (%d,%d)", i, j)
							continue
						}
						bondType := sum(v[offDescriptor : offDescriptor+4])
						assert.True(t, (v[offNoBond] == 1) != (bondType == 1),
							"pair (%d,%d) must be either bonded or not", i, j)
						assert.Equal(t, float32(1), v[offDiffComponent]+v[offSameComponent])
						assert.Equal(t, float32(1), v[offSingleComponent]+v[offMultiComponent])
						assert.Equal(t, comp.SingleComponent(), v[offSingleComponent] == 1)
						assert.Equal(t, v, pf.At(j, i), "pair (%d,%d) must be symmetric", i, j)
					}
				}
			}
		})
	}
}

func TestBinaryFeatures_Errors(t *testing.T) {
	f := newTestFeaturizer(t)

	cases := []struct {
		name     string
		reaction string
		max      int
		code     errors.ErrorCode
	}{
		{"max below atom count", twoComp, 2, errors.CodeAtomLimitExceeded},
		{"missing map number", "[CH3:1]C", 2, errors.CodeAtomMapInvalid},
		{"duplicate map number", "[CH3:1][CH3:1]", 2, errors.CodeAtomMapInvalid},
		{"map number gap", "[CH3:1][CH3:3]", 3, errors.CodeAtomMapInvalid},
		{"invalid smiles", "[CH3:1](", 2, errors.CodeInvalidSMILES},
		{"ring spanning components", "[CH2:1]1.[CH2:2]1", 2, errors.CodeInvalidSMILES},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.BinaryFeatures(tc.reaction, tc.max)
			require.Error(t, err)
			assert.True(t, errors.IsCode(err, tc.code), err.Error())
		})
	}
}

func TestBuildComponentIndex(t *testing.T) {
	idx, err := BuildComponentIndex(nil, permuted)
	require.NoError(t, err)
	assert.Equal(t, 2, idx.Count)
	assert.Equal(t, map[int]int{0: 0, 1: 0, 2: 0, 3: 0, 4: 1, 5: 1}, idx.ByAtom)
	assert.False(t, idx.SingleComponent())

	c, ok := idx.Component(5)
	assert.True(t, ok)
	assert.Equal(t, 1, c)
	_, ok = idx.Component(9)
	assert.False(t, ok)

	idx, err = BuildComponentIndex(nil, ethane)
	require.NoError(t, err)
	assert.True(t, idx.SingleComponent())
}

func TestBuildComponentIndex_Errors(t *testing.T) {
	_, err := BuildComponentIndex(nil, "[CH3:1].C")
	assert.True(t, errors.IsCode(err, errors.CodeAtomMapInvalid))

	_, err = BuildComponentIndex(nil, "[CH3:1]..[OH2:2]")
	assert.True(t, errors.IsCode(err, errors.CodeInvalidSMILES))
	assert.Contains(t, err.Error(), "component 1")
}

func TestBinaryFeatures_KekuleBenzeneMatchesAromatic(t *testing.T) {
	f := newTestFeaturizer(t)

	arom, err := f.BinaryFeatures(benzene, 6)
	require.NoError(t, err)
	kek, err := f.BinaryFeatures("[CH:1]1=[CH:2][CH:3]=[CH:4][CH:5]=[CH:6]1", 6)
	require.NoError(t, err)
	assert.Equal(t, arom.Data, kek.Data)
}

//Personal.AI order the ending
