package reaction_center

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/turtacn/rxncenter/pkg/errors"
)

// ParseEdits decodes a ";"-separated list of "x-y" atom-map pairs into
// zero-based edits.  The empty string is an empty edit list.
func ParseEdits(edits string) ([]Edit, error) {
	edits = strings.TrimSpace(edits)
	if edits == "" {
		return nil, nil
	}
	tokens := strings.Split(edits, ";")
	out := make([]Edit, 0, len(tokens))
	for _, tok := range tokens {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			return nil, errors.InvalidEdit("edit token is empty").WithDetail(edits)
		}
		parts := strings.Split(tok, "-")
		if len(parts) != 2 {
			return nil, errors.InvalidEdit(fmt.Sprintf("edit %q is not of the form x-y", tok))
		}
		x, err := parseMapNumber(parts[0])
		if err != nil {
			return nil, errors.InvalidEdit(fmt.Sprintf("edit %q: %v", tok, err))
		}
		y, err := parseMapNumber(parts[1])
		if err != nil {
			return nil, errors.InvalidEdit(fmt.Sprintf("edit %q: %v", tok, err))
		}
		out = append(out, Edit{A: x - 1, B: y - 1})
	}
	return out, nil
}

func parseMapNumber(s string) (int, error) {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("%q is not an integer", s)
	}
	if v < 1 {
		return 0, fmt.Errorf("map number %d is below 1", v)
	}
	return v, nil
}

// BondLabels computes the flattened (maxAtoms*maxAtoms) label array of
// reaction under edits and the ascending flat indices of its positive labels.
// Pairs on the diagonal or in the padding region are InvalidBond.
func (f *Featurizer) BondLabels(reaction, edits string, maxAtoms int) (*LabelMatrix, []int, error) {
	n, err := f.NumAtoms(reaction)
	if err != nil {
		return nil, nil, err
	}
	if err := checkMaxAtoms(n, maxAtoms); err != nil {
		return nil, nil, err
	}
	parsed, err := ParseEdits(edits)
	if err != nil {
		return nil, nil, err
	}
	out := &LabelMatrix{
		MaxAtoms: maxAtoms,
		NumAtoms: n,
		Data:     make([]int32, maxAtoms*maxAtoms),
	}
	sparse, err := labelsInto(out.Data, parsed, n, maxAtoms)
	if err != nil {
		return nil, nil, err
	}
	return out, sparse, nil
}

// labelsInto fills dst with the labels of an n-atom reaction padded to
// maxAtoms and returns the positive flat indices.  Edits that land in the
// padding region are accepted and have no visible effect.
func labelsInto(dst []int32, edits []Edit, n, maxAtoms int) ([]int, error) {
	changed := make([]bool, maxAtoms*maxAtoms)
	for _, e := range edits {
		if e.A >= maxAtoms || e.B >= maxAtoms {
			return nil, errors.InvalidEdit(
				fmt.Sprintf("edit %d-%d outside max_atoms %d", e.A+1, e.B+1, maxAtoms))
		}
		changed[e.A*maxAtoms+e.B] = true
		changed[e.B*maxAtoms+e.A] = true
	}

	sparse := make([]int, 0, 2*len(edits))
	for i := 0; i < maxAtoms; i++ {
		for j := 0; j < maxAtoms; j++ {
			k := i*maxAtoms + j
			switch {
			case i == j || i >= n || j >= n:
				dst[k] = InvalidBond
			case changed[k]:
				dst[k] = 1
				sparse = append(sparse, k)
			default:
				dst[k] = 0
			}
		}
	}
	return sparse, nil
}

//Personal.AI order the ending
