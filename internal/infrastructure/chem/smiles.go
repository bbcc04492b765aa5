package chem

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/turtacn/SymRxn/internal/domain/molecule"
)

type openRing struct {
	atom  int
	order molecule.BondOrder
	set   bool
}

type smilesParser struct {
	s       string
	pos     int
	g       *molecule.Graph
	fixedH  []bool
	rings   map[int]openRing
	pending molecule.BondOrder
	hasBond bool
}

// parseSMILES reads one SMILES string into a graph with implicit hydrogens
// filled in and aromaticity perceived. Parsing stops at the first blank, so
// a trailing title is ignored. Stereo marks are read and dropped.
func parseSMILES(s string) (*molecule.Graph, error) {
	s = strings.TrimLeft(s, " \t\r\n")
	if i := strings.IndexAny(s, " \t\r\n"); i >= 0 {
		s = s[:i]
	}
	if s == "" {
		return nil, fmt.Errorf("empty SMILES")
	}
	p := &smilesParser{s: s, g: molecule.NewGraph(""), rings: make(map[int]openRing)}
	if err := p.parse(); err != nil {
		return nil, err
	}
	fillImplicitHydrogens(p.g, p.fixedH)
	if err := checkValences(p.g); err != nil {
		return nil, err
	}
	perceiveAromaticity(p.g)
	return p.g, nil
}

func (p *smilesParser) errorf(format string, args ...interface{}) error {
	return fmt.Errorf("position %d: %s", p.pos, fmt.Sprintf(format, args...))
}

func (p *smilesParser) parse() error {
	prev := -1
	var branches []int
	for p.pos < len(p.s) {
		c := p.s[p.pos]
		switch {
		case c == '(':
			if prev < 0 {
				return p.errorf("branch without a preceding atom")
			}
			branches = append(branches, prev)
			p.pos++
		case c == ')':
			if len(branches) == 0 {
				return p.errorf("unbalanced parenthesis")
			}
			if p.hasBond {
				return p.errorf("dangling bond")
			}
			prev = branches[len(branches)-1]
			branches = branches[:len(branches)-1]
			p.pos++
		case c == '-' || c == '=' || c == '#' || c == ':' || c == '/' || c == '\\':
			if p.hasBond {
				return p.errorf("consecutive bond symbols")
			}
			p.pending, p.hasBond = bondFromSymbol(c), true
			p.pos++
		case c == '$':
			return p.errorf("quadruple bonds are not supported")
		case c == '.':
			if p.hasBond {
				return p.errorf("dangling bond")
			}
			prev = -1
			p.pos++
		case c == '%' || (c >= '0' && c <= '9'):
			if prev < 0 {
				return p.errorf("ring closure without a preceding atom")
			}
			label, err := p.ringLabel()
			if err != nil {
				return err
			}
			if err := p.ring(prev, label); err != nil {
				return err
			}
		default:
			atom, err := p.atom()
			if err != nil {
				return err
			}
			if prev >= 0 {
				if err := p.connect(prev, atom, p.pending, p.hasBond); err != nil {
					return err
				}
			} else if p.hasBond {
				return p.errorf("bond without a preceding atom")
			}
			p.hasBond = false
			prev = atom
		}
	}
	switch {
	case len(branches) > 0:
		return p.errorf("unbalanced parenthesis")
	case len(p.rings) > 0:
		return p.errorf("unclosed ring")
	case p.hasBond:
		return p.errorf("dangling bond")
	case p.g.IsEmpty():
		return p.errorf("no atoms")
	}
	return nil
}

func bondFromSymbol(c byte) molecule.BondOrder {
	switch c {
	case '=':
		return molecule.BondDouble
	case '#':
		return molecule.BondTriple
	case ':':
		return molecule.BondAromatic
	default:
		return molecule.BondSingle
	}
}

func (p *smilesParser) ringLabel() (int, error) {
	if p.s[p.pos] != '%' {
		d := int(p.s[p.pos] - '0')
		p.pos++
		return d, nil
	}
	if p.pos+2 >= len(p.s) || !isDigit(p.s[p.pos+1]) || !isDigit(p.s[p.pos+2]) {
		return 0, p.errorf("'%%' must be followed by two digits")
	}
	d := int(p.s[p.pos+1]-'0')*10 + int(p.s[p.pos+2]-'0')
	p.pos += 3
	return d, nil
}

func (p *smilesParser) ring(atom, label int) error {
	open, ok := p.rings[label]
	if !ok {
		p.rings[label] = openRing{atom: atom, order: p.pending, set: p.hasBond}
		p.hasBond = false
		return nil
	}
	delete(p.rings, label)
	order, set := p.pending, p.hasBond
	if open.set {
		if set && order != open.order {
			return p.errorf("conflicting bond orders on ring closure %d", label)
		}
		order, set = open.order, true
	}
	p.hasBond = false
	return p.connect(open.atom, atom, order, set)
}

func (p *smilesParser) connect(a, b int, order molecule.BondOrder, explicit bool) error {
	if !explicit {
		order = molecule.BondSingle
		if p.g.Atoms[a].Aromatic && p.g.Atoms[b].Aromatic {
			order = molecule.BondAromatic
		}
	}
	if _, err := p.g.AddBond(a, b, order); err != nil {
		return p.errorf("%v", err)
	}
	return nil
}

// atom reads an organic-subset atom or a bracket atom.
func (p *smilesParser) atom() (int, error) {
	if p.s[p.pos] == '[' {
		return p.bracketAtom()
	}
	rest := p.s[p.pos:]
	for _, two := range []string{"Cl", "Br"} {
		if strings.HasPrefix(rest, two) {
			p.pos += 2
			return p.add(newAtom(two, false), false), nil
		}
	}
	c := string(rest[0])
	switch {
	case c == "*":
		p.pos++
		return p.add(newAtom("*", false), false), nil
	case organicSubset[c]:
		p.pos++
		return p.add(newAtom(c, false), false), nil
	case aromaticSymbols[c] != "":
		p.pos++
		return p.add(newAtom(aromaticSymbols[c], true), false), nil
	}
	return 0, p.errorf("unexpected character %q", rest[0])
}

func (p *smilesParser) bracketAtom() (int, error) {
	p.pos++
	isotope := 0
	if isDigit(p.peek()) {
		n, err := p.number("isotope", maxIsotope)
		if err != nil {
			return 0, err
		}
		isotope = n
	}

	sym, aromatic, err := p.bracketSymbol()
	if err != nil {
		return 0, err
	}
	a := newAtom(sym, aromatic)
	a.Isotope = isotope

	for p.pos < len(p.s) && p.s[p.pos] == '@' {
		p.pos++
	}
	if p.peek() == 'H' {
		p.pos++
		a.HCount = 1
		if isDigit(p.peek()) {
			if a.HCount, err = p.number("hydrogen count", maxHCount); err != nil {
				return 0, err
			}
		}
	}
	if a.Charge, err = p.charge(); err != nil {
		return 0, err
	}
	if p.peek() == ':' {
		p.pos++
		if !isDigit(p.peek()) {
			return 0, p.errorf("atom map without a number")
		}
		if a.MapNum, err = p.number("atom map", maxMapNum); err != nil {
			return 0, err
		}
	}
	if p.peek() != ']' {
		return 0, p.errorf("unterminated bracket atom")
	}
	p.pos++
	return p.add(a, true), nil
}

// bracketSymbol reads an element symbol inside brackets, preferring the
// two-letter form when it names a known element.
func (p *smilesParser) bracketSymbol() (string, bool, error) {
	rest := p.s[p.pos:]
	if rest == "" {
		return "", false, p.errorf("unterminated bracket atom")
	}
	if rest[0] == '*' {
		p.pos++
		return "*", false, nil
	}
	if unicode.IsLower(rune(rest[0])) {
		if len(rest) >= 2 {
			if el, ok := aromaticSymbols[rest[:2]]; ok {
				p.pos += 2
				return el, true, nil
			}
		}
		if el, ok := aromaticSymbols[rest[:1]]; ok {
			p.pos++
			return el, true, nil
		}
		return "", false, p.errorf("unknown aromatic symbol %q", rest[:1])
	}
	if len(rest) >= 2 && unicode.IsLower(rune(rest[1])) && isElement(rest[:2]) {
		p.pos += 2
		return rest[:2], false, nil
	}
	if isElement(rest[:1]) {
		p.pos++
		return rest[:1], false, nil
	}
	return "", false, p.errorf("unknown element at %q", rest)
}

func (p *smilesParser) charge() (int, error) {
	sign := 0
	switch p.peek() {
	case '+':
		sign = 1
	case '-':
		sign = -1
	default:
		return 0, nil
	}
	sym := p.s[p.pos]
	p.pos++
	if isDigit(p.peek()) {
		n, err := p.number("charge", maxCharge)
		return sign * n, err
	}
	n := 1
	for p.pos < len(p.s) && p.s[p.pos] == sym {
		n++
		p.pos++
	}
	if n > maxCharge {
		return 0, p.errorf("charge %d out of range 0..%d", n, maxCharge)
	}
	return sign * n, nil
}

func (p *smilesParser) number(field string, max int) (int, error) {
	n, end, err := scanNumber(p.s, p.pos, field, max)
	if err != nil {
		return 0, p.errorf("%v", err)
	}
	p.pos = end
	return n, nil
}

func (p *smilesParser) peek() byte {
	if p.pos < len(p.s) {
		return p.s[p.pos]
	}
	return 0
}

func (p *smilesParser) add(a molecule.Atom, bracket bool) int {
	p.fixedH = append(p.fixedH, bracket)
	return p.g.AddAtom(a)
}

func newAtom(sym string, aromatic bool) molecule.Atom {
	return molecule.Atom{Symbol: sym, AtomicNum: elementTable[sym].num, Aromatic: aromatic}
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

// Bounds for numeric fields of bracket atoms.
const (
	maxIsotope    = 999
	maxHCount     = 9
	maxCharge     = 15
	maxMapNum     = 99999
	maxAtomicNum  = 118
	maxQueryCount = 99
)

// scanNumber reads the digit run of s at pos and checks it against max. It
// returns the value and the position after the digits.
func scanNumber(s string, pos int, field string, max int) (int, int, error) {
	end := pos
	for end < len(s) && isDigit(s[end]) {
		end++
	}
	n, err := strconv.Atoi(s[pos:end])
	if err != nil || n > max {
		return 0, pos, fmt.Errorf("%s %q out of range 0..%d", field, s[pos:end], max)
	}
	return n, end, nil
}

//Personal.AI order the ending
