package chem

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/turtacn/SymRxn/internal/domain/molecule"
)

// expr is a node of an atom or bond query expression. Leaves carry a test;
// inner nodes combine their children with op.
type expr struct {
	op   byte // 0 leaf, '!', '&', ','
	kids []*expr
	test func(v *targetView, idx int) bool
	prim primitive
}

func (e *expr) eval(v *targetView, idx int) bool {
	switch e.op {
	case '!':
		return !e.kids[0].eval(v, idx)
	case '&':
		for _, k := range e.kids {
			if !k.eval(v, idx) {
				return false
			}
		}
		return true
	case ',':
		for _, k := range e.kids {
			if k.eval(v, idx) {
				return true
			}
		}
		return false
	}
	return e.test(v, idx)
}

type primKind int

const (
	primNone primKind = iota
	primElement
	primAromatic
	primCharge
	primHCount
	primIsotope
	primBondOrder
)

// primitive keeps what a leaf asserts, so product templates can turn their
// queries back into concrete atoms and bonds.
type primitive struct {
	kind     primKind
	value    int
	symbol   string
	aromatic bool
}

// atomProps are the concrete properties asserted along the non-negated path
// of an expression. For a disjunction only the first alternative counts.
type atomProps struct {
	symbol      string
	atomicNum   int
	aromatic    bool
	aromaticSet bool
	charge      int
	chargeSet   bool
	hCount      int
	hSet        bool
	isotope     int
}

func (e *expr) collect(p *atomProps) {
	switch e.op {
	case '!':
		return
	case '&':
		for _, k := range e.kids {
			k.collect(p)
		}
		return
	case ',':
		e.kids[0].collect(p)
		return
	}
	switch e.prim.kind {
	case primElement:
		p.symbol, p.atomicNum = e.prim.symbol, e.prim.value
		p.aromatic, p.aromaticSet = e.prim.aromatic, true
	case primAromatic:
		p.aromatic, p.aromaticSet = e.prim.aromatic, true
	case primCharge:
		p.charge, p.chargeSet = e.prim.value, true
	case primHCount:
		p.hCount, p.hSet = e.prim.value, true
	case primIsotope:
		p.isotope = e.prim.value
	}
}

// bondOrder returns the order asserted by a bond expression, or 0.
func (e *expr) bondOrder() molecule.BondOrder {
	switch e.op {
	case '!':
		return 0
	case '&', ',':
		for _, k := range e.kids {
			if o := k.bondOrder(); o != 0 {
				return o
			}
			if e.op == ',' {
				return 0
			}
		}
		return 0
	}
	if e.prim.kind == primBondOrder {
		return molecule.BondOrder(e.prim.value)
	}
	return 0
}

type queryAtom struct {
	expr   *expr
	mapNum int
	props  atomProps
}

type queryBond struct {
	begin, end int
	// expr is nil for an implicit bond: single or aromatic.
	expr  *expr
	order molecule.BondOrder
}

// query is a compiled SMARTS pattern.
type query struct {
	atoms []queryAtom
	bonds []queryBond
	adj   [][]neighbor
}

func (q *query) bondBetween(a, b int) int {
	for _, nb := range q.adj[a] {
		if nb.atom == b {
			return nb.bond
		}
	}
	return -1
}

type smartsRing struct {
	atom int
	bond *expr
}

type smartsParser struct {
	s     string
	pos   int
	q     *query
	rings map[int]smartsRing
}

// parseSMARTS compiles a SMARTS pattern. Component-level grouping, recursive
// SMARTS and chirality are not supported; '@' in atoms is ignored.
func parseSMARTS(s string) (*query, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, fmt.Errorf("empty pattern")
	}
	p := &smartsParser{s: s, q: &query{}, rings: make(map[int]smartsRing)}
	if err := p.parse(); err != nil {
		return nil, err
	}
	p.q.adj = make([][]neighbor, len(p.q.atoms))
	for i, b := range p.q.bonds {
		p.q.adj[b.begin] = append(p.q.adj[b.begin], neighbor{atom: b.end, bond: i})
		p.q.adj[b.end] = append(p.q.adj[b.end], neighbor{atom: b.begin, bond: i})
	}
	return p.q, nil
}

func (p *smartsParser) errorf(format string, args ...interface{}) error {
	return fmt.Errorf("position %d: %s", p.pos, fmt.Sprintf(format, args...))
}

func (p *smartsParser) parse() error {
	prev := -1
	var branches []int
	var bond *expr
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
			if bond != nil {
				return p.errorf("dangling bond")
			}
			prev = branches[len(branches)-1]
			branches = branches[:len(branches)-1]
			p.pos++
		case c == '.':
			if bond != nil {
				return p.errorf("dangling bond")
			}
			prev = -1
			p.pos++
		case isBondChar(c):
			if bond != nil {
				return p.errorf("consecutive bond expressions")
			}
			b, err := p.bondExpr()
			if err != nil {
				return err
			}
			bond = b
		case c == '%' || isDigit(c):
			if prev < 0 {
				return p.errorf("ring closure without a preceding atom")
			}
			label, err := p.ringLabel()
			if err != nil {
				return err
			}
			open, ok := p.rings[label]
			if !ok {
				p.rings[label] = smartsRing{atom: prev, bond: bond}
				bond = nil
				continue
			}
			delete(p.rings, label)
			if bond == nil {
				bond = open.bond
			}
			if err := p.connect(open.atom, prev, bond); err != nil {
				return err
			}
			bond = nil
		default:
			atom, err := p.atom()
			if err != nil {
				return err
			}
			if prev >= 0 {
				if err := p.connect(prev, atom, bond); err != nil {
					return err
				}
			} else if bond != nil {
				return p.errorf("bond without a preceding atom")
			}
			bond = nil
			prev = atom
		}
	}
	switch {
	case len(branches) > 0:
		return p.errorf("unbalanced parenthesis")
	case len(p.rings) > 0:
		return p.errorf("unclosed ring")
	case bond != nil:
		return p.errorf("dangling bond")
	case len(p.q.atoms) == 0:
		return p.errorf("no atoms")
	}
	return nil
}

func (p *smartsParser) ringLabel() (int, error) {
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

func (p *smartsParser) connect(a, b int, bond *expr) error {
	if a == b {
		return p.errorf("atom %d bonded to itself", a)
	}
	for _, qb := range p.q.bonds {
		if (qb.begin == a && qb.end == b) || (qb.begin == b && qb.end == a) {
			return p.errorf("atoms %d and %d bonded twice", a, b)
		}
	}
	qb := queryBond{begin: a, end: b, expr: bond}
	if bond != nil {
		qb.order = bond.bondOrder()
	}
	p.q.bonds = append(p.q.bonds, qb)
	return nil
}

func isBondChar(c byte) bool {
	return strings.IndexByte(`-=#:~@/\!`, c) >= 0
}

// bondExpr reads a bond expression made of bond primitives, '!', '&', ','
// and ';'.
func (p *smartsParser) bondExpr() (*expr, error) {
	return p.logic(p.bondPrimitive, func(c byte) bool { return isBondChar(c) })
}

func (p *smartsParser) bondPrimitive() (*expr, error) {
	c := p.s[p.pos]
	p.pos++
	switch c {
	case '-', '/', '\\':
		return bondOrderLeaf(molecule.BondSingle), nil
	case '=':
		return bondOrderLeaf(molecule.BondDouble), nil
	case '#':
		return bondOrderLeaf(molecule.BondTriple), nil
	case ':':
		return bondOrderLeaf(molecule.BondAromatic), nil
	case '~':
		return &expr{test: func(*targetView, int) bool { return true }}, nil
	case '@':
		return &expr{test: func(v *targetView, b int) bool { return v.ring.bond[b] }}, nil
	}
	p.pos--
	return nil, p.errorf("unexpected bond character %q", c)
}

func bondOrderLeaf(o molecule.BondOrder) *expr {
	return &expr{
		prim: primitive{kind: primBondOrder, value: int(o)},
		test: func(v *targetView, b int) bool { return v.g.Bonds[b].Order == o },
	}
}

// logic parses an expression with SMARTS precedence: '!' binds tightest,
// then '&' or juxtaposition, then ',', then ';'.
func (p *smartsParser) logic(leaf func() (*expr, error), starts func(byte) bool) (*expr, error) {
	return p.binary(';', p.orLevel(leaf, starts))
}

func (p *smartsParser) orLevel(leaf func() (*expr, error), starts func(byte) bool) func() (*expr, error) {
	return func() (*expr, error) {
		return p.binary(',', p.andLevel(leaf, starts))
	}
}

func (p *smartsParser) andLevel(leaf func() (*expr, error), starts func(byte) bool) func() (*expr, error) {
	return func() (*expr, error) {
		first, err := p.not(leaf)
		if err != nil {
			return nil, err
		}
		kids := []*expr{first}
		for p.pos < len(p.s) {
			c := p.s[p.pos]
			if c == '&' {
				p.pos++
			} else if c == ',' || c == ';' || !starts(c) {
				break
			}
			k, err := p.not(leaf)
			if err != nil {
				return nil, err
			}
			kids = append(kids, k)
		}
		if len(kids) == 1 {
			return first, nil
		}
		return &expr{op: '&', kids: kids}, nil
	}
}

func (p *smartsParser) binary(sep byte, next func() (*expr, error)) (*expr, error) {
	first, err := next()
	if err != nil {
		return nil, err
	}
	kids := []*expr{first}
	for p.pos < len(p.s) && p.s[p.pos] == sep {
		p.pos++
		k, err := next()
		if err != nil {
			return nil, err
		}
		kids = append(kids, k)
	}
	if len(kids) == 1 {
		return first, nil
	}
	op := byte('&')
	if sep == ',' {
		op = ','
	}
	return &expr{op: op, kids: kids}, nil
}

func (p *smartsParser) not(leaf func() (*expr, error)) (*expr, error) {
	if p.pos < len(p.s) && p.s[p.pos] == '!' {
		p.pos++
		k, err := p.not(leaf)
		if err != nil {
			return nil, err
		}
		return &expr{op: '!', kids: []*expr{k}}, nil
	}
	if p.pos >= len(p.s) {
		return nil, p.errorf("unexpected end of pattern")
	}
	return leaf()
}

func (p *smartsParser) atom() (int, error) {
	if p.s[p.pos] == '[' {
		return p.bracketAtom()
	}
	rest := p.s[p.pos:]
	for _, two := range []string{"Cl", "Br"} {
		if strings.HasPrefix(rest, two) {
			p.pos += 2
			return p.add(elementLeaf(two, false), 0), nil
		}
	}
	c := string(rest[0])
	p.pos++
	switch {
	case c == "*":
		return p.add(anyLeaf(), 0), nil
	case c == "a":
		return p.add(aromaticLeaf(true), 0), nil
	case c == "A":
		return p.add(aromaticLeaf(false), 0), nil
	case organicSubset[c]:
		return p.add(elementLeaf(c, false), 0), nil
	case aromaticSymbols[c] != "":
		return p.add(elementLeaf(aromaticSymbols[c], true), 0), nil
	}
	p.pos--
	return 0, p.errorf("unexpected character %q", rest[0])
}

func (p *smartsParser) add(e *expr, mapNum int) int {
	qa := queryAtom{expr: e, mapNum: mapNum}
	e.collect(&qa.props)
	p.q.atoms = append(p.q.atoms, qa)
	return len(p.q.atoms) - 1
}

func (p *smartsParser) bracketAtom() (int, error) {
	p.pos++
	start := p.pos
	leaf := func() (*expr, error) { return p.atomPrimitive(start) }
	e, err := p.logic(leaf, func(c byte) bool {
		return c != ']' && c != ':' && c != ')' && c != '('
	})
	if err != nil {
		return 0, err
	}
	mapNum := 0
	if p.pos < len(p.s) && p.s[p.pos] == ':' {
		p.pos++
		if p.pos >= len(p.s) || !isDigit(p.s[p.pos]) {
			return 0, p.errorf("atom map without a number")
		}
		n, err := p.number("atom map", maxMapNum)
		if err != nil {
			return 0, err
		}
		mapNum = n
	}
	if p.pos >= len(p.s) || p.s[p.pos] != ']' {
		return 0, p.errorf("unterminated bracket atom")
	}
	p.pos++
	return p.add(e, mapNum), nil
}

func (p *smartsParser) number(field string, max int) (int, error) {
	n, end, err := scanNumber(p.s, p.pos, field, max)
	if err != nil {
		return 0, p.errorf("%v", err)
	}
	p.pos = end
	return n, nil
}

func (p *smartsParser) optNumber(def int, field string, max int) (int, error) {
	if p.pos < len(p.s) && isDigit(p.s[p.pos]) {
		return p.number(field, max)
	}
	return def, nil
}

// atomPrimitive reads one primitive inside brackets. H names the element
// when only an isotope precedes it and it is followed by ']', a charge or a
// map. Two-letter element symbols win over one-letter primitives.
func (p *smartsParser) atomPrimitive(start int) (*expr, error) {
	c := p.s[p.pos]
	if rest := p.s[p.pos:]; len(rest) >= 2 && unicode.IsUpper(rune(c)) &&
		unicode.IsLower(rune(rest[1])) && isElement(rest[:2]) {
		p.pos += 2
		return elementLeaf(rest[:2], false), nil
	}
	switch {
	case isDigit(c):
		iso, err := p.number("isotope", maxIsotope)
		if err != nil {
			return nil, err
		}
		return &expr{
			prim: primitive{kind: primIsotope, value: iso},
			test: func(v *targetView, i int) bool { return v.g.Atoms[i].Isotope == iso },
		}, nil
	case c == '*':
		p.pos++
		return anyLeaf(), nil
	case c == '#':
		p.pos++
		if p.pos >= len(p.s) || !isDigit(p.s[p.pos]) {
			return nil, p.errorf("'#' without an atomic number")
		}
		num, err := p.number("atomic number", maxAtomicNum)
		if err != nil {
			return nil, err
		}
		return &expr{
			prim: primitive{kind: primElement, value: num, symbol: symbolByNum[num]},
			test: func(v *targetView, i int) bool { return v.g.Atoms[i].AtomicNum == num },
		}, nil
	case c == '$':
		return nil, p.errorf("recursive SMARTS is not supported")
	case c == '@':
		for p.pos < len(p.s) && p.s[p.pos] == '@' {
			p.pos++
		}
		return anyLeaf(), nil
	case c == '+' || c == '-':
		p.pos++
		sign := 1
		if c == '-' {
			sign = -1
		}
		n := 1
		if p.pos < len(p.s) && isDigit(p.s[p.pos]) {
			var err error
			if n, err = p.number("charge", maxCharge); err != nil {
				return nil, err
			}
		} else {
			for p.pos < len(p.s) && p.s[p.pos] == c {
				n++
				p.pos++
			}
			if n > maxCharge {
				return nil, p.errorf("charge %d out of range 0..%d", n, maxCharge)
			}
		}
		charge := sign * n
		return &expr{
			prim: primitive{kind: primCharge, value: charge},
			test: func(v *targetView, i int) bool { return v.g.Atoms[i].Charge == charge },
		}, nil
	case c == 'H':
		next := byte(0)
		if p.pos+1 < len(p.s) {
			next = p.s[p.pos+1]
		}
		if onlyIsotopeBefore(p.s[start:p.pos]) && (next == ']' || next == '+' || next == '-' || next == ':') {
			p.pos++
			return elementLeaf("H", false), nil
		}
		p.pos++
		n, err := p.optNumber(1, "hydrogen count", maxHCount)
		if err != nil {
			return nil, err
		}
		return &expr{
			prim: primitive{kind: primHCount, value: n},
			test: func(v *targetView, i int) bool { return v.totalH[i] == n },
		}, nil
	case c == 'D':
		p.pos++
		n, err := p.optNumber(1, "degree", maxQueryCount)
		if err != nil {
			return nil, err
		}
		return &expr{test: func(v *targetView, i int) bool { return len(v.adj[i]) == n }}, nil
	case c == 'X':
		p.pos++
		n, err := p.optNumber(1, "connectivity", maxQueryCount)
		if err != nil {
			return nil, err
		}
		return &expr{test: func(v *targetView, i int) bool { return len(v.adj[i])+v.g.Atoms[i].HCount == n }}, nil
	case c == 'R':
		p.pos++
		if p.pos < len(p.s) && isDigit(p.s[p.pos]) {
			n, err := p.number("ring count", maxQueryCount)
			if err != nil {
				return nil, err
			}
			if n == 0 {
				return &expr{test: func(v *targetView, i int) bool { return !v.ring.atom[i] }}, nil
			}
			return &expr{test: func(v *targetView, i int) bool { return v.ring.count[i] == n }}, nil
		}
		return &expr{test: func(v *targetView, i int) bool { return v.ring.atom[i] }}, nil
	case c == 'a':
		p.pos++
		if p.pos < len(p.s) && p.s[p.pos] == 's' {
			p.pos++
			return elementLeaf("As", true), nil
		}
		return aromaticLeaf(true), nil
	case c == 'A':
		p.pos++
		return aromaticLeaf(false), nil
	}

	rest := p.s[p.pos:]
	if unicode.IsUpper(rune(c)) {
		if isElement(rest[:1]) {
			p.pos++
			return elementLeaf(rest[:1], false), nil
		}
	}
	if unicode.IsLower(rune(c)) {
		if len(rest) >= 2 {
			if el, ok := aromaticSymbols[rest[:2]]; ok {
				p.pos += 2
				return elementLeaf(el, true), nil
			}
		}
		if el, ok := aromaticSymbols[rest[:1]]; ok {
			p.pos++
			return elementLeaf(el, true), nil
		}
	}
	return nil, p.errorf("unknown atom primitive %q", c)
}

func onlyIsotopeBefore(s string) bool {
	for i := 0; i < len(s); i++ {
		if !isDigit(s[i]) {
			return false
		}
	}
	return true
}

func anyLeaf() *expr {
	return &expr{test: func(*targetView, int) bool { return true }}
}

func aromaticLeaf(aromatic bool) *expr {
	return &expr{
		prim: primitive{kind: primAromatic, aromatic: aromatic},
		test: func(v *targetView, i int) bool { return v.g.Atoms[i].Aromatic == aromatic },
	}
}

func elementLeaf(sym string, aromatic bool) *expr {
	num := elementTable[sym].num
	return &expr{
		prim: primitive{kind: primElement, value: num, symbol: sym, aromatic: aromatic},
		test: func(v *targetView, i int) bool {
			a := v.g.Atoms[i]
			return a.AtomicNum == num && a.Aromatic == aromatic
		},
	}
}

//Personal.AI order the ending
