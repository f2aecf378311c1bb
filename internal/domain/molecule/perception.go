package molecule

import (
	"fmt"
	"sort"
)

// perceive fills in the graph properties that SMILES leaves implicit: ring
// membership, aromaticity, the order of unmarked bonds and conjugation.  It
// runs once per parse, before the Molecule is shared.
func perceive(m *Molecule) {
	markRingBonds(m)
	markAromaticRings(m, findRings(m))
	markConjugation(m)
}

// markRingBonds flags every bond that is not a bridge.  A bond lies on a
// cycle exactly when removing it keeps its endpoints connected.
func markRingBonds(m *Molecule) {
	n := len(m.atoms)
	disc := make([]int, n)
	low := make([]int, n)
	for i := range disc {
		disc[i] = -1
	}
	bridge := make([]bool, len(m.bonds))
	timer := 0

	type frame struct {
		atom     int
		viaBond  int
		nextEdge int
	}

	for root := 0; root < n; root++ {
		if disc[root] >= 0 {
			continue
		}
		disc[root], low[root] = timer, timer
		timer++
		stack := []frame{{atom: root, viaBond: -1}}

		for len(stack) > 0 {
			top := &stack[len(stack)-1]
			if top.nextEdge < len(m.adjacency[top.atom]) {
				bi := m.adjacency[top.atom][top.nextEdge]
				top.nextEdge++
				if bi == top.viaBond {
					continue
				}
				nb := m.bonds[bi].Other(top.atom)
				if disc[nb] < 0 {
					disc[nb], low[nb] = timer, timer
					timer++
					stack = append(stack, frame{atom: nb, viaBond: bi})
				} else if disc[nb] < low[top.atom] {
					low[top.atom] = disc[nb]
				}
				continue
			}

			done := *top
			stack = stack[:len(stack)-1]
			if len(stack) == 0 {
				continue
			}
			parent := stack[len(stack)-1].atom
			if low[done.atom] < low[parent] {
				low[parent] = low[done.atom]
			}
			if low[done.atom] > disc[parent] {
				bridge[done.viaBond] = true
			}
		}
	}

	for i := range m.bonds {
		m.bonds[i].InRing = !bridge[i]
	}
}

// Aromatic rings hold between 3 and maxAromaticRing atoms.
const maxAromaticRing = 8

// findRings returns the smallest cycle through every ring bond, each cycle
// once, as atom indices in walking order.  For fused and spiro systems this
// is the smallest set of smallest rings.
func findRings(m *Molecule) [][]int {
	seen := make(map[string]bool)
	var rings [][]int
	for bi := range m.bonds {
		if !m.bonds[bi].InRing {
			continue
		}
		ring := m.shortestCycle(bi)
		if ring == nil {
			continue
		}
		key := append([]int(nil), ring...)
		sort.Ints(key)
		if k := fmt.Sprint(key); !seen[k] {
			seen[k] = true
			rings = append(rings, ring)
		}
	}
	return rings
}

// shortestCycle walks ring bonds breadth-first from one end of bond bi to
// the other without using bi, and returns the path End..Begin.
func (m *Molecule) shortestCycle(bi int) []int {
	const unseen = -2
	b := m.bonds[bi]
	prev := make([]int, len(m.atoms))
	for i := range prev {
		prev[i] = unseen
	}
	prev[b.Begin] = -1
	queue := []int{b.Begin}
	for len(queue) > 0 && prev[b.End] == unseen {
		cur := queue[0]
		queue = queue[1:]
		for _, ni := range m.adjacency[cur] {
			if ni == bi || !m.bonds[ni].InRing {
				continue
			}
			nb := m.bonds[ni].Other(cur)
			if prev[nb] != unseen {
				continue
			}
			prev[nb] = cur
			queue = append(queue, nb)
		}
	}
	if prev[b.End] == unseen {
		return nil
	}
	var path []int
	for a := b.End; a != -1; a = prev[a] {
		path = append(path, a)
	}
	return path
}

// ringBonds returns the bond indices joining consecutive atoms of ring.
func (m *Molecule) ringBonds(ring []int) ([]int, bool) {
	out := make([]int, len(ring))
	for k, a := range ring {
		b, ok := m.BondBetween(a, ring[(k+1)%len(ring)])
		if !ok {
			return nil, false
		}
		out[k] = b.Index
	}
	return out, true
}

// markAromaticRings types ring bonds of aromatic rings as aromatic and flags
// their atoms, so lowercase and Kekule input describe the same molecule.  A
// ring written entirely in lowercase is aromatic as given.  A ring written
// entirely in uppercase is aromatic when every atom is sp2 and the ring holds
// 4n+2 pi electrons.  Unmarked bonds outside aromatic rings are single
// (biphenyl's "cc" link, fluorene's five-membered ring).
func markAromaticRings(m *Molecule, rings [][]int) {
	lowercase := make([]bool, len(m.atoms))
	for i, a := range m.atoms {
		lowercase[i] = a.Aromatic
	}

	aromatic := make([]bool, len(m.bonds))
	for _, ring := range rings {
		if len(ring) < 3 || len(ring) > maxAromaticRing {
			continue
		}
		bonds, ok := m.ringBonds(ring)
		if !ok {
			continue
		}
		lower := 0
		for _, a := range ring {
			if lowercase[a] {
				lower++
			}
		}
		switch {
		case lower == len(ring):
		case lower == 0 && m.huckel(ring):
		default:
			continue
		}
		for _, bi := range bonds {
			aromatic[bi] = true
		}
		for _, a := range ring {
			m.atoms[a].Aromatic = true
		}
	}

	for i := range m.bonds {
		b := &m.bonds[i]
		switch {
		case aromatic[i] && (b.implicit || b.Type == BondSingle || b.Type == BondDouble):
			b.Type = BondAromatic
		case b.implicit:
			b.Type = BondSingle
		}
	}
}

// huckel reports whether a Kekule ring is aromatic under the 4n+2 rule.
func (m *Molecule) huckel(ring []int) bool {
	total := 0
	for _, a := range ring {
		e, ok := m.piElectrons(a)
		if !ok {
			return false
		}
		total += e
	}
	return total >= 2 && (total-2)%4 == 0
}

// piElectrons counts the electrons a Kekule ring atom puts into the ring's pi
// system.  A double bond inside the ring system gives one, an exocyclic
// double bond to N, O or S gives none, and a lone pair gives two.  ok is
// false for atoms that cannot be sp2 ring members.
func (m *Molecule) piElectrons(atom int) (n int, ok bool) {
	a := m.atoms[atom]
	if !piElements[a.AtomicNum] {
		return 0, false
	}
	doubles := 0
	for _, bi := range m.adjacency[atom] {
		b := m.bonds[bi]
		switch b.Type {
		case BondSingle:
			continue
		case BondDouble:
		default:
			return 0, false
		}
		doubles++
		switch {
		case b.InRing:
			n = 1
		case lonePairDonors[m.atoms[b.Other(atom)].AtomicNum]:
			n = 0
		default:
			return 0, false
		}
	}
	switch {
	case doubles > 1:
		return 0, false
	case doubles == 1:
		return n, true
	case a.AtomicNum == 6 && a.Charge < 0:
		return 2, true
	case a.AtomicNum == 6 && a.Charge > 0:
		return 0, true
	case a.AtomicNum != 6 && a.Charge <= 0:
		return 2, true
	}
	return 0, false
}

// markConjugation flags bonds that belong to a delocalised pi system.
// Aromatic bonds are always conjugated.  A single bond is conjugated when it
// links a pi system to another pi system or to a neutral N, O or S lone-pair
// donor.  A multiple bond is conjugated when it touches an aromatic or a
// conjugated single bond.
func markConjugation(m *Molecule) {
	for i := range m.bonds {
		if m.bonds[i].Type == BondAromatic {
			m.bonds[i].Conjugated = true
		}
	}

	for i := range m.bonds {
		b := &m.bonds[i]
		if b.Type != BondSingle {
			continue
		}
		piBegin := m.hasPiBond(b.Begin, i)
		piEnd := m.hasPiBond(b.End, i)
		switch {
		case piBegin && piEnd:
			b.Conjugated = true
		case piBegin && m.isLonePairDonor(b.End):
			b.Conjugated = true
		case piEnd && m.isLonePairDonor(b.Begin):
			b.Conjugated = true
		}
	}

	for i := range m.bonds {
		b := &m.bonds[i]
		if b.Type == BondSingle || b.Type == BondAromatic || b.Type == BondNone {
			continue
		}
		if m.touchesConjugated(b.Begin, i) || m.touchesConjugated(b.End, i) {
			b.Conjugated = true
		}
	}
}

// hasPiBond reports whether atom carries a multiple or aromatic bond other
// than the bond at index skip.
func (m *Molecule) hasPiBond(atom, skip int) bool {
	for _, bi := range m.adjacency[atom] {
		if bi != skip && m.bonds[bi].Type.IsMultiple() {
			return true
		}
	}
	return false
}

func (m *Molecule) touchesConjugated(atom, skip int) bool {
	for _, bi := range m.adjacency[atom] {
		if bi == skip {
			continue
		}
		nb := m.bonds[bi]
		if nb.Type == BondAromatic || (nb.Type == BondSingle && nb.Conjugated) {
			return true
		}
	}
	return false
}

func (m *Molecule) isLonePairDonor(atom int) bool {
	a := m.atoms[atom]
	return lonePairDonors[a.AtomicNum] && a.Charge <= 0
}

//Personal.AI order the ending
