package molecule

// ---------------------------------------------------------------------------
// Bond descriptor
// ---------------------------------------------------------------------------

// BondFDim is the width of the bond descriptor.
//
// Features:
//   [0..3]  Bond type one-hot (single, double, triple, aromatic)
//   [4]     Is conjugated (binary)
//   [5]     Is in ring (binary)
const BondFDim = 6

const (
	featSingle = iota
	featDouble
	featTriple
	featAromatic
	featConjugated
	featInRing
)

// BondFeatures returns the descriptor of b as a fresh slice.
func BondFeatures(b Bond) []float32 {
	out := make([]float32, BondFDim)
	EncodeBondFeatures(out, b)
	return out
}

// EncodeBondFeatures writes the descriptor of b into dst[:BondFDim].
// Quadruple bonds have no type bit set.  dst must hold at least BondFDim
// values; entries are overwritten, not accumulated.
func EncodeBondFeatures(dst []float32, b Bond) {
	dst = dst[:BondFDim]
	for i := range dst {
		dst[i] = 0
	}
	switch b.Type {
	case BondSingle:
		dst[featSingle] = 1
	case BondDouble:
		dst[featDouble] = 1
	case BondTriple:
		dst[featTriple] = 1
	case BondAromatic:
		dst[featAromatic] = 1
	}
	if b.Conjugated {
		dst[featConjugated] = 1
	}
	if b.InRing {
		dst[featInRing] = 1
	}
}

//Personal.AI order the ending
