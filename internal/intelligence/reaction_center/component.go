package reaction_center

import (
	"fmt"
	"strings"

	"github.com/turtacn/rxncenter/internal/domain/molecule"
	"github.com/turtacn/rxncenter/pkg/errors"
)

// ComponentIndex maps zero-based atom indices to the position of the
// "."-separated molecule that contains them.
type ComponentIndex struct {
	ByAtom map[int]int `json:"by_atom"`
	Count  int         `json:"count"`
}

// Component returns the component id of atom i.
func (c *ComponentIndex) Component(i int) (int, bool) {
	id, ok := c.ByAtom[i]
	return id, ok
}

// SingleComponent reports whether the reaction string holds one molecule.
func (c *ComponentIndex) SingleComponent() bool { return c.Count == 1 }

// BuildComponentIndex parses every "."-separated molecule of reaction on its
// own and records, for each atom, map number - 1 -> molecule position.  Bonds
// are not considered.
func BuildComponentIndex(p molecule.Parser, reaction string) (*ComponentIndex, error) {
	if p == nil {
		p = molecule.NewSMILESParser()
	}
	parts := strings.Split(reaction, ".")
	idx := &ComponentIndex{
		ByAtom: make(map[int]int),
		Count:  len(parts),
	}
	for ci, part := range parts {
		mol, err := p.Parse(part)
		if err != nil {
			return nil, errors.Wrap(err, errors.CodeUnknown, fmt.Sprintf("component %d", ci))
		}
		for _, atom := range mol.Atoms() {
			if !atom.HasMapNum() {
				return nil, errors.InvalidAtomMap(
					fmt.Sprintf("atom %d (%s) of component %d has no map number", atom.Index, atom.Symbol, ci))
			}
			idx.ByAtom[atom.MapNum-1] = ci
		}
	}
	return idx, nil
}

// atomIndexByMap validates that the map numbers of m are a permutation of
// 1..NumAtoms and returns, per parse position, the zero-based pair index.
func atomIndexByMap(m *molecule.Molecule) ([]int, error) {
	n := m.NumAtoms()
	out := make([]int, n)
	seen := make([]bool, n)
	for i, atom := range m.Atoms() {
		switch {
		case !atom.HasMapNum():
			return nil, errors.InvalidAtomMap(
				fmt.Sprintf("atom %d (%s) has no map number", i, atom.Symbol))
		case atom.MapNum > n:
			return nil, errors.InvalidAtomMap(
				fmt.Sprintf("map number %d exceeds atom count %d", atom.MapNum, n))
		case seen[atom.MapNum-1]:
			return nil, errors.InvalidAtomMap(
				fmt.Sprintf("duplicate map number %d", atom.MapNum))
		}
		seen[atom.MapNum-1] = true
		out[i] = atom.MapNum - 1
	}
	return out, nil
}

//Personal.AI order the ending
