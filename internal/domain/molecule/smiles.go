package molecule

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/turtacn/rxncenter/pkg/errors"
)

// Parser turns a SMILES string into a Molecule.
type Parser interface {
	Parse(smiles string) (*Molecule, error)
}

// DefaultMaxLength bounds the accepted SMILES length.
const DefaultMaxLength = 5000

// smilesPattern is the character-level precheck run before parsing.
var smilesPattern = regexp.MustCompile(`^[A-Za-z0-9@+\-\[\]()=#$:/\\.%*]+$`)

// balancedBrackets checks that [ ] and ( ) are balanced and correctly nested.
func balancedBrackets(s string) bool {
	var stack []rune
	for _, ch := range s {
		switch ch {
		case '[', '(':
			stack = append(stack, ch)
		case ']':
			if len(stack) == 0 || stack[len(stack)-1] != '[' {
				return false
			}
			stack = stack[:len(stack)-1]
		case ')':
			if len(stack) == 0 || stack[len(stack)-1] != '(' {
				return false
			}
			stack = stack[:len(stack)-1]
		}
	}
	return len(stack) == 0
}

// ValidateSMILES performs the lightweight structural checks shared by every
// parse: non-empty, bounded length, allowed characters, balanced brackets.
func ValidateSMILES(smiles string) error {
	return validate(smiles, DefaultMaxLength)
}

func validate(smiles string, maxLen int) error {
	if smiles == "" {
		return errors.InvalidSMILES("SMILES string is empty")
	}
	if maxLen > 0 && len(smiles) > maxLen {
		return errors.InvalidSMILES(fmt.Sprintf("SMILES string exceeds maximum length (%d)", maxLen))
	}
	if !smilesPattern.MatchString(smiles) {
		return errors.InvalidSMILES("SMILES contains invalid characters").WithDetail(smiles)
	}
	if !balancedBrackets(smiles) {
		return errors.InvalidSMILES("SMILES has unbalanced brackets").WithDetail(smiles)
	}
	return nil
}

// ---------------------------------------------------------------------------
// SMILESParser
// ---------------------------------------------------------------------------

// SMILESParser parses OpenSMILES strings, including bracket atoms with
// atom-map classes, ring closures and dot-separated fragments.  It keeps no
// state between calls and is safe for concurrent use.
type SMILESParser struct {
	// MaxLength bounds the input length; 0 disables the bound.
	MaxLength int
}

// NewSMILESParser returns a parser with the default length bound.
func NewSMILESParser() *SMILESParser {
	return &SMILESParser{MaxLength: DefaultMaxLength}
}

var defaultParser = NewSMILESParser()

// ParseSMILES parses smiles with the default parser.
func ParseSMILES(smiles string) (*Molecule, error) {
	return defaultParser.Parse(smiles)
}

// Parse implements Parser.
func (p *SMILESParser) Parse(smiles string) (*Molecule, error) {
	smiles = strings.TrimSpace(smiles)
	if err := validate(smiles, p.MaxLength); err != nil {
		return nil, err
	}

	st := &parseState{
		src:   smiles,
		prev:  -1,
		rings: make(map[int]ringOpening),
		seen:  make(map[[2]int]bool),
	}
	if err := st.run(); err != nil {
		return nil, err
	}

	m := newMolecule(smiles, st.atoms, st.bonds, st.fragment+1)
	perceive(m)
	return m, nil
}

// ---------------------------------------------------------------------------
// Parse state machine
// ---------------------------------------------------------------------------

type pendingBond struct {
	set    bool
	typ    BondType
	stereo byte
	pos    int
}

type ringOpening struct {
	atom int
	bond pendingBond
	pos  int
}

type parseState struct {
	src string
	pos int

	atoms []Atom
	bonds []Bond

	prev     int
	branches []int
	bond     pendingBond
	rings    map[int]ringOpening
	seen     map[[2]int]bool

	fragment      int
	fragmentAtoms int
}

func (s *parseState) fail(pos int, format string, args ...interface{}) error {
	return errors.InvalidSMILES(fmt.Sprintf(format, args...)).
		WithDetailf("smiles=%s pos=%d", s.src, pos)
}

func (s *parseState) run() error {
	for s.pos < len(s.src) {
		ch := s.src[s.pos]

		switch {
		case ch == '(':
			if s.prev < 0 {
				return s.fail(s.pos, "branch opened without a preceding atom")
			}
			if s.bond.set {
				return s.fail(s.pos, "bond symbol before '('")
			}
			s.branches = append(s.branches, s.prev)
			s.pos++

		case ch == ')':
			if len(s.branches) == 0 {
				return s.fail(s.pos, "unbalanced ')'")
			}
			if s.bond.set {
				return s.fail(s.pos, "bond symbol without a following atom")
			}
			s.prev = s.branches[len(s.branches)-1]
			s.branches = s.branches[:len(s.branches)-1]
			s.pos++

		case isBondSymbol(ch):
			if s.prev < 0 {
				return s.fail(s.pos, "bond symbol %q without a preceding atom", ch)
			}
			if s.bond.set {
				return s.fail(s.pos, "consecutive bond symbols")
			}
			s.bond = pendingBond{set: true, typ: bondTypeOf(ch), pos: s.pos}
			if ch == '/' || ch == '\\' {
				s.bond.stereo = ch
			}
			s.pos++

		case ch == '.':
			if s.bond.set {
				return s.fail(s.pos, "bond symbol before '.'")
			}
			if len(s.branches) > 0 {
				return s.fail(s.pos, "'.' inside a branch")
			}
			if s.fragmentAtoms == 0 {
				return s.fail(s.pos, "empty fragment")
			}
			s.prev = -1
			s.fragment++
			s.fragmentAtoms = 0
			s.pos++

		case ch >= '0' && ch <= '9':
			if err := s.ringClosure(int(ch-'0'), s.pos); err != nil {
				return err
			}
			s.pos++

		case ch == '%':
			if s.pos+2 >= len(s.src) || !isDigit(s.src[s.pos+1]) || !isDigit(s.src[s.pos+2]) {
				return s.fail(s.pos, "'%%' must be followed by two digits")
			}
			num := int(s.src[s.pos+1]-'0')*10 + int(s.src[s.pos+2]-'0')
			if err := s.ringClosure(num, s.pos); err != nil {
				return err
			}
			s.pos += 3

		case ch == '[':
			end := strings.IndexByte(s.src[s.pos:], ']')
			if end < 0 {
				return s.fail(s.pos, "unclosed '['")
			}
			atom, err := s.parseBracket(s.src[s.pos+1:s.pos+end], s.pos)
			if err != nil {
				return err
			}
			if err := s.addAtom(atom); err != nil {
				return err
			}
			s.pos += end + 1

		default:
			atom, n, ok := organicAtom(s.src[s.pos:])
			if !ok {
				return s.fail(s.pos, "unexpected character %q", ch)
			}
			if err := s.addAtom(atom); err != nil {
				return err
			}
			s.pos += n
		}
	}

	if s.bond.set {
		return s.fail(s.bond.pos, "bond symbol without a following atom")
	}
	if len(s.branches) > 0 {
		return s.fail(len(s.src), "unbalanced '('")
	}
	if len(s.rings) > 0 {
		first := -1
		for num, open := range s.rings {
			if first < 0 || open.pos < s.rings[first].pos {
				first = num
			}
		}
		return s.fail(s.rings[first].pos, "unclosed ring %d", first)
	}
	if len(s.atoms) == 0 {
		return s.fail(0, "no atoms found in SMILES")
	}
	if s.fragmentAtoms == 0 {
		return s.fail(len(s.src), "empty fragment")
	}
	return nil
}

func (s *parseState) addAtom(a Atom) error {
	a.Index = len(s.atoms)
	a.Fragment = s.fragment
	s.atoms = append(s.atoms, a)
	s.fragmentAtoms++
	if s.prev >= 0 {
		if err := s.addBond(s.prev, a.Index, s.bond, s.pos); err != nil {
			return err
		}
	}
	s.bond = pendingBond{}
	s.prev = a.Index
	return nil
}

func (s *parseState) addBond(a, b int, pb pendingBond, pos int) error {
	if a == b {
		return s.fail(pos, "atom %d bonded to itself", a)
	}
	key := [2]int{a, b}
	if a > b {
		key = [2]int{b, a}
	}
	if s.seen[key] {
		return s.fail(pos, "duplicate bond between atoms %d and %d", a, b)
	}
	s.seen[key] = true

	bond := Bond{Begin: a, End: b, Type: BondSingle}
	if pb.set {
		bond.Type = pb.typ
		bond.Stereo = pb.stereo
	} else {
		bond.implicit = true
	}
	s.bonds = append(s.bonds, bond)
	return nil
}

func (s *parseState) ringClosure(num, pos int) error {
	if s.prev < 0 {
		return s.fail(pos, "ring closure %d without a preceding atom", num)
	}
	open, ok := s.rings[num]
	if !ok {
		s.rings[num] = ringOpening{atom: s.prev, bond: s.bond, pos: pos}
		s.bond = pendingBond{}
		return nil
	}
	delete(s.rings, num)

	pb := open.bond
	if s.bond.set {
		if pb.set && pb.typ != s.bond.typ {
			return s.fail(pos, "conflicting bond symbols on ring closure %d", num)
		}
		pb = s.bond
	}
	s.bond = pendingBond{}
	return s.addBond(open.atom, s.prev, pb, pos)
}

// parseBracket parses the content of a bracket atom:
// isotope? symbol chirality? hcount? charge? (':' class)?
func (s *parseState) parseBracket(body string, pos int) (Atom, error) {
	atom := Atom{}
	i := 0

	for i < len(body) && isDigit(body[i]) {
		atom.Isotope = atom.Isotope*10 + int(body[i]-'0')
		i++
	}

	symbol, aromatic, n := bracketSymbol(body[i:])
	if n == 0 {
		return Atom{}, s.fail(pos, "unknown element in bracket atom [%s]", body)
	}
	atom.Symbol = symbol
	atom.Aromatic = aromatic
	atom.AtomicNum = elements[symbol]
	i += n

	if i < len(body) && body[i] == '@' {
		start := i
		for i < len(body) && body[i] == '@' {
			i++
		}
		// @TH1, @AL2, @SP3, @TB10, @OH25
		if i+1 < len(body) && isUpper(body[i]) && isUpper(body[i+1]) {
			i += 2
			for i < len(body) && isDigit(body[i]) {
				i++
			}
		}
		atom.Chirality = body[start:i]
	}

	if i < len(body) && body[i] == 'H' {
		i++
		atom.HCount = 1
		if i < len(body) && isDigit(body[i]) {
			atom.HCount = 0
			for i < len(body) && isDigit(body[i]) {
				atom.HCount = atom.HCount*10 + int(body[i]-'0')
				i++
			}
		}
	}

	if i < len(body) && (body[i] == '+' || body[i] == '-') {
		sign := 1
		if body[i] == '-' {
			sign = -1
		}
		sym := body[i]
		i++
		switch {
		case i < len(body) && isDigit(body[i]):
			mag := 0
			for i < len(body) && isDigit(body[i]) {
				mag = mag*10 + int(body[i]-'0')
				i++
			}
			atom.Charge = sign * mag
		default:
			mag := 1
			for i < len(body) && body[i] == sym {
				mag++
				i++
			}
			atom.Charge = sign * mag
		}
	}

	if i < len(body) && body[i] == ':' {
		i++
		start := i
		for i < len(body) && isDigit(body[i]) {
			atom.MapNum = atom.MapNum*10 + int(body[i]-'0')
			i++
		}
		if i == start {
			return Atom{}, s.fail(pos, "atom class without digits in [%s]", body)
		}
	}

	if i != len(body) {
		return Atom{}, s.fail(pos, "unexpected %q in bracket atom [%s]", body[i:], body)
	}
	return atom, nil
}

// bracketSymbol matches the element symbol at the start of body.
func bracketSymbol(body string) (symbol string, aromatic bool, n int) {
	if body == "" {
		return "", false, 0
	}
	if body[0] == '*' {
		return "*", false, 1
	}
	if isLower(body[0]) {
		if len(body) >= 2 {
			if sym, ok := aromaticBracket[body[:2]]; ok {
				return sym, true, 2
			}
		}
		if sym, ok := aromaticBracket[body[:1]]; ok {
			return sym, true, 1
		}
		return "", false, 0
	}
	if !isUpper(body[0]) {
		return "", false, 0
	}
	if len(body) >= 2 && isLower(body[1]) {
		if _, ok := elements[body[:2]]; ok {
			return body[:2], false, 2
		}
	}
	if _, ok := elements[body[:1]]; ok {
		return body[:1], false, 1
	}
	return "", false, 0
}

// organicAtom matches an organic-subset, aromatic or wildcard atom written
// outside brackets.
func organicAtom(src string) (Atom, int, bool) {
	if src[0] == '*' {
		return Atom{Symbol: "*", HCount: -1}, 1, true
	}
	if sym, ok := aromaticOrganic[src[0]]; ok {
		return Atom{Symbol: sym, AtomicNum: elements[sym], Aromatic: true, HCount: -1}, 1, true
	}
	for _, sym := range organicSubset {
		if strings.HasPrefix(src, sym) {
			return Atom{Symbol: sym, AtomicNum: elements[sym], HCount: -1}, len(sym), true
		}
	}
	return Atom{}, 0, false
}

func isBondSymbol(ch byte) bool {
	switch ch {
	case '-', '=', '#', '$', ':', '/', '\\':
		return true
	}
	return false
}

func bondTypeOf(ch byte) BondType {
	switch ch {
	case '=':
		return BondDouble
	case '#':
		return BondTriple
	case '$':
		return BondQuadruple
	case ':':
		return BondAromatic
	default:
		return BondSingle
	}
}

func isDigit(ch byte) bool { return ch >= '0' && ch <= '9' }
func isUpper(ch byte) bool { return ch >= 'A' && ch <= 'Z' }
func isLower(ch byte) bool { return ch >= 'a' && ch <= 'z' }

//Personal.AI order the ending
