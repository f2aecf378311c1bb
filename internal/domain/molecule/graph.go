// Package molecule is the cheminformatics collaborator of rxncenter: it
// parses atom-mapped SMILES into an in-memory molecular graph, perceives ring
// membership, aromatic bonds and conjugation, and encodes bonds into the
// fixed-width descriptor consumed by the pairwise featurizer.
//
// Atoms keep the order in which they appear in the SMILES string.  Atom-map
// numbers (the ":n" class inside bracket atoms) are exposed untouched; the
// translation to zero-based indices belongs to the callers.
package molecule

import "fmt"

// ─────────────────────────────────────────────────────────────────────────────
// Bond types
// ─────────────────────────────────────────────────────────────────────────────

// BondType enumerates SMILES bond orders.
type BondType int

const (
	BondNone BondType = iota
	BondSingle
	BondDouble
	BondTriple
	BondQuadruple
	BondAromatic
)

// String returns the SMILES-style name of the bond type.
func (t BondType) String() string {
	switch t {
	case BondNone:
		return "NONE"
	case BondSingle:
		return "SINGLE"
	case BondDouble:
		return "DOUBLE"
	case BondTriple:
		return "TRIPLE"
	case BondQuadruple:
		return "QUADRUPLE"
	case BondAromatic:
		return "AROMATIC"
	default:
		return fmt.Sprintf("UNKNOWN(%d)", int(t))
	}
}

// IsMultiple reports whether the bond carries a pi component.
func (t BondType) IsMultiple() bool {
	switch t {
	case BondDouble, BondTriple, BondQuadruple, BondAromatic:
		return true
	}
	return false
}

// ─────────────────────────────────────────────────────────────────────────────
// Atom / Bond
// ─────────────────────────────────────────────────────────────────────────────

// Atom is a parsed atom.
type Atom struct {
	Index     int    `json:"index"`
	Symbol    string `json:"symbol"` // element symbol in canonical case, "*" for a wildcard
	AtomicNum int    `json:"atomic_num"`
	Aromatic  bool   `json:"aromatic"`
	Isotope   int    `json:"isotope,omitempty"`
	Charge    int    `json:"charge,omitempty"`
	// HCount is the explicit hydrogen count of a bracket atom, -1 for
	// organic-subset atoms whose hydrogens are implicit.
	HCount    int    `json:"h_count"`
	Chirality string `json:"chirality,omitempty"`
	// MapNum is the atom-map number, 0 when absent.
	MapNum int `json:"map_num,omitempty"`
	// Fragment is the position of the "."-separated fragment that holds the atom.
	Fragment int `json:"fragment"`
}

// HasMapNum reports whether the atom carries an atom-map number.
func (a Atom) HasMapNum() bool { return a.MapNum > 0 }

// Bond is a parsed bond between two atom indices.
type Bond struct {
	Index      int      `json:"index"`
	Begin      int      `json:"begin"`
	End        int      `json:"end"`
	Type       BondType `json:"type"`
	Stereo     byte     `json:"-"` // '/' or '\\' for directional single bonds
	InRing     bool     `json:"in_ring"`
	Conjugated bool     `json:"conjugated"`

	implicit bool
}

// Other returns the atom at the opposite end of the bond from atom.
func (b Bond) Other(atom int) int {
	if b.Begin == atom {
		return b.End
	}
	return b.Begin
}

// ─────────────────────────────────────────────────────────────────────────────
// Molecule
// ─────────────────────────────────────────────────────────────────────────────

// Molecule is an immutable parsed molecular graph.  Slices returned by its
// accessors must be treated as read-only.
type Molecule struct {
	smiles    string
	atoms     []Atom
	bonds     []Bond
	adjacency [][]int // atom index -> bond indices
	fragments int
}

func newMolecule(smiles string, atoms []Atom, bonds []Bond, fragments int) *Molecule {
	m := &Molecule{
		smiles:    smiles,
		atoms:     atoms,
		bonds:     bonds,
		adjacency: make([][]int, len(atoms)),
		fragments: fragments,
	}
	for i := range m.bonds {
		b := &m.bonds[i]
		b.Index = i
		m.adjacency[b.Begin] = append(m.adjacency[b.Begin], i)
		m.adjacency[b.End] = append(m.adjacency[b.End], i)
	}
	return m
}

// SMILES returns the input string the molecule was parsed from.
func (m *Molecule) SMILES() string { return m.smiles }

// NumAtoms returns the number of atoms.
func (m *Molecule) NumAtoms() int { return len(m.atoms) }

// NumBonds returns the number of bonds.
func (m *Molecule) NumBonds() int { return len(m.bonds) }

// NumFragments returns the number of "."-separated fragments.
func (m *Molecule) NumFragments() int { return m.fragments }

// Atoms returns all atoms in input order.
func (m *Molecule) Atoms() []Atom { return m.atoms }

// Bonds returns all bonds in input order.
func (m *Molecule) Bonds() []Bond { return m.bonds }

// Atom returns the atom at index i.
func (m *Molecule) Atom(i int) Atom { return m.atoms[i] }

// BondBetween returns the bond joining atoms a and b.
func (m *Molecule) BondBetween(a, b int) (Bond, bool) {
	if a < 0 || a >= len(m.atoms) {
		return Bond{}, false
	}
	for _, bi := range m.adjacency[a] {
		if m.bonds[bi].Other(a) == b {
			return m.bonds[bi], true
		}
	}
	return Bond{}, false
}

// MapNumbers returns the atom-map number of every atom in input order
// (0 where absent).
func (m *Molecule) MapNumbers() []int {
	out := make([]int, len(m.atoms))
	for i, a := range m.atoms {
		out[i] = a.MapNum
	}
	return out
}

//Personal.AI order the ending
