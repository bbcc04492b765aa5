package chem

import (
	"strings"

	"github.com/turtacn/SymRxn/internal/domain/molecule"
	"github.com/turtacn/SymRxn/internal/domain/reaction"
	"github.com/turtacn/SymRxn/pkg/errors"
)

// DefaultMaxProducts caps the reactant-match combinations one application
// may expand.
const DefaultMaxProducts = 1000

type mappedAtom struct {
	reactant int
	atom     int
}

// compiledReaction is a parsed reaction pattern of the form
// reactants>agents>products. Agents are ignored.
type compiledReaction struct {
	pattern   string
	reactants []*query
	products  []*query
	byMap     map[int]mappedAtom
}

var _ reaction.Compiled = (*compiledReaction)(nil)

func (r *compiledReaction) Pattern() string   { return r.pattern }
func (r *compiledReaction) NumReactants() int { return len(r.reactants) }
func (r *compiledReaction) NumProducts() int  { return len(r.products) }

// compileReaction parses and validates pattern.
func compileReaction(pattern string) (*compiledReaction, error) {
	parts := splitOutsideBrackets(pattern, '>')
	if len(parts) != 3 {
		return nil, errors.PatternError(pattern, "reaction pattern must have the form reactants>>products")
	}
	rxn := &compiledReaction{pattern: pattern, byMap: make(map[int]mappedAtom)}

	for _, side := range []struct {
		text string
		dst  *[]*query
		name string
	}{
		{parts[0], &rxn.reactants, "reactant"},
		{parts[2], &rxn.products, "product"},
	} {
		comps := splitComponents(side.text)
		if len(comps) == 0 {
			return nil, errors.PatternError(pattern, "reaction has no "+side.name+"s")
		}
		for _, c := range comps {
			q, err := parseSMARTS(c)
			if err != nil {
				return nil, errors.PatternError(pattern, side.name+" "+c+": "+err.Error())
			}
			*side.dst = append(*side.dst, q)
		}
	}

	for ri, q := range rxn.reactants {
		for ai, a := range q.atoms {
			if a.mapNum == 0 {
				continue
			}
			if _, dup := rxn.byMap[a.mapNum]; dup {
				return nil, errors.PatternError(pattern, "reactant map number used twice")
			}
			rxn.byMap[a.mapNum] = mappedAtom{reactant: ri, atom: ai}
		}
	}
	seen := make(map[int]bool)
	for _, q := range rxn.products {
		for _, a := range q.atoms {
			if a.mapNum != 0 {
				if seen[a.mapNum] {
					return nil, errors.PatternError(pattern, "product map number used twice")
				}
				seen[a.mapNum] = true
				if _, ok := rxn.byMap[a.mapNum]; ok {
					continue
				}
			}
			if a.props.atomicNum == 0 {
				return nil, errors.PatternError(pattern, "unmapped product atom needs an element")
			}
		}
	}
	return rxn, nil
}

// splitOutsideBrackets splits s at sep wherever sep is not inside [...].
func splitOutsideBrackets(s string, sep byte) []string {
	var parts []string
	depth, last := 0, 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '[':
			depth++
		case ']':
			depth--
		case sep:
			if depth == 0 {
				parts = append(parts, s[last:i])
				last = i + 1
			}
		}
	}
	return append(parts, s[last:])
}

// splitComponents splits one side of a reaction into molecule templates at
// top-level dots. A template wrapped in parentheses may hold dots of its own.
func splitComponents(side string) []string {
	side = strings.TrimSpace(side)
	if side == "" {
		return nil
	}
	var comps []string
	paren, bracket, last := 0, 0, 0
	flush := func(end int) {
		c := strings.TrimSpace(side[last:end])
		if len(c) >= 2 && c[0] == '(' && closingParen(c) == len(c)-1 {
			c = c[1 : len(c)-1]
		}
		comps = append(comps, c)
	}
	for i := 0; i < len(side); i++ {
		switch side[i] {
		case '[':
			bracket++
		case ']':
			bracket--
		case '(':
			if bracket == 0 {
				paren++
			}
		case ')':
			if bracket == 0 {
				paren--
			}
		case '.':
			if paren == 0 && bracket == 0 {
				flush(i)
				last = i + 1
			}
		}
	}
	flush(len(side))
	return comps
}

func closingParen(s string) int {
	depth := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// apply runs rxn on the reactants. Each combination of one match per
// reactant yields one product tuple, up to maxProducts combinations. The
// bool result reports whether the cap cut enumeration short.
func (r *compiledReaction) apply(reactants []reaction.Reactant, maxProducts int) ([][]*molecule.Graph, applyStats, error) {
	var st applyStats
	if len(reactants) != len(r.reactants) {
		return nil, st, errors.Newf(errors.ErrCodeBadRequest,
			"reaction expects %d reactants, got %d", len(r.reactants), len(reactants))
	}
	views := make([]*targetView, len(reactants))
	matches := make([][][]int, len(reactants))
	for i, rc := range reactants {
		if rc.Graph.IsEmpty() {
			return nil, st, nil
		}
		views[i] = newTargetView(rc.Graph)
		matches[i] = r.reactants[i].matches(views[i], rc.Excluded, maxProducts)
		if len(matches[i]) == 0 {
			return nil, st, nil
		}
	}

	var out [][]*molecule.Graph
	combo := make([][]int, len(reactants))
	var walk func(i int) bool
	walk = func(i int) bool {
		if i == len(reactants) {
			if maxProducts > 0 && len(out) >= maxProducts {
				st.truncated = true
				return false
			}
			tuple := make([]*molecule.Graph, len(r.products))
			for pi := range r.products {
				tuple[pi] = r.buildProduct(pi, views, combo)
				if err := checkValences(tuple[pi]); err != nil {
					st.invalid++
					if st.reason == nil {
						st.reason = err
					}
					return true
				}
			}
			out = append(out, tuple)
			return true
		}
		for _, m := range matches[i] {
			combo[i] = m
			if !walk(i + 1) {
				return false
			}
		}
		return true
	}
	walk(0)
	return out, st, nil
}

// applyStats reports what one apply call left out: match combinations past
// the product limit, and products whose atoms exceed their valence.
type applyStats struct {
	truncated bool
	invalid   int
	reason    error
}

// buildProduct assembles product template pi for one match combination.
func (r *compiledReaction) buildProduct(pi int, views []*targetView, combo [][]int) *molecule.Graph {
	pq := r.products[pi]
	inProduct := make(map[int]bool)
	for _, a := range pq.atoms {
		if _, ok := r.byMap[a.mapNum]; ok && a.mapNum != 0 {
			inProduct[a.mapNum] = true
		}
	}

	g := molecule.NewGraph("")
	index := make([]map[int]int, len(views))
	oldValence := make(map[int]int)
	oldH := make(map[int]int)

	for ri, v := range views {
		rq := r.reactants[ri]
		carried := false
		deleted := make(map[int]bool)
		for qa, t := range combo[ri] {
			if m := rq.atoms[qa].mapNum; m != 0 && inProduct[m] {
				carried = true
			} else {
				deleted[t] = true
			}
		}
		if !carried {
			continue
		}
		comp, _ := components(v.g, v.adj)
		keepComp := make(map[int]bool)
		for qa, t := range combo[ri] {
			if m := rq.atoms[qa].mapNum; m != 0 && inProduct[m] {
				keepComp[comp[t]] = true
			}
		}
		index[ri] = make(map[int]int)
		for t, a := range v.g.Atoms {
			if !keepComp[comp[t]] || deleted[t] {
				continue
			}
			a.MapNum = 0
			idx := g.AddAtom(a)
			index[ri][t] = idx
			oldH[idx] = a.HCount
			for _, nb := range v.adj[t] {
				oldValence[idx] += v.g.Bonds[nb.bond].Order.Valence()
			}
		}
		// Bonds covered by the template are rewritten from the product side.
		templated := make(map[int]bool)
		for _, qb := range rq.bonds {
			if tb := v.g.BondBetween(combo[ri][qb.begin], combo[ri][qb.end]); tb >= 0 {
				templated[tb] = true
			}
		}
		for bi, b := range v.g.Bonds {
			ib, okB := index[ri][b.Begin]
			ie, okE := index[ri][b.End]
			if okB && okE && !templated[bi] {
				g.Bonds = append(g.Bonds, molecule.Bond{Begin: ib, End: ie, Order: b.Order})
			}
		}
	}

	productIdx := make([]int, len(pq.atoms))
	mapped := make([]bool, len(pq.atoms))
	var fixedH []int
	for pa, qa := range pq.atoms {
		if src, ok := r.byMap[qa.mapNum]; ok && qa.mapNum != 0 {
			productIdx[pa] = index[src.reactant][combo[src.reactant][src.atom]]
			mapped[pa] = true
			if qa.props.chargeSet {
				g.Atoms[productIdx[pa]].Charge = qa.props.charge
			}
			continue
		}
		p := qa.props
		idx := g.AddAtom(molecule.Atom{
			Symbol:    elementSymbol(p),
			AtomicNum: p.atomicNum,
			Aromatic:  p.aromaticSet && p.aromatic,
			Charge:    p.charge,
			Isotope:   p.isotope,
			HCount:    p.hCount,
		})
		productIdx[pa] = idx
		if p.hSet {
			fixedH = append(fixedH, idx)
		}
	}

	for _, qb := range pq.bonds {
		a, b := productIdx[qb.begin], productIdx[qb.end]
		order := qb.order
		if order == 0 {
			order = r.inferOrder(pq, qb, mapped, views, combo)
		}
		if existing := g.BondBetween(a, b); existing >= 0 {
			g.Bonds[existing].Order = order
			continue
		}
		g.Bonds = append(g.Bonds, molecule.Bond{Begin: a, End: b, Order: order})
	}

	adj := adjacency(g)
	fixed := make(map[int]bool, len(fixedH))
	for _, idx := range fixedH {
		fixed[idx] = true
	}
	for idx := range g.Atoms {
		if old, ok := oldValence[idx]; ok {
			now := 0
			for _, nb := range adj[idx] {
				now += g.Bonds[nb.bond].Order.Valence()
			}
			// A negative count is left for checkValences to reject.
			h := oldH[idx] - (now - old)
			if h < 0 && len(elementTable[g.Atoms[idx].Symbol].valences) == 0 {
				h = 0
			}
			g.Atoms[idx].HCount = h
			continue
		}
		if !fixed[idx] {
			g.Atoms[idx].HCount = implicitHydrogens(g, adj, idx)
		}
	}
	return g
}

// inferOrder resolves a product bond written without an explicit order. A
// bond between two mapped atoms keeps its reactant order; a bond between two
// new aromatic atoms is aromatic; anything else is single.
func (r *compiledReaction) inferOrder(pq *query, qb queryBond, mapped []bool, views []*targetView, combo [][]int) molecule.BondOrder {
	qa, qc := pq.atoms[qb.begin], pq.atoms[qb.end]
	if mapped[qb.begin] && mapped[qb.end] {
		sa, sc := r.byMap[qa.mapNum], r.byMap[qc.mapNum]
		if sa.reactant == sc.reactant {
			v := views[sa.reactant]
			if tb := v.g.BondBetween(combo[sa.reactant][sa.atom], combo[sc.reactant][sc.atom]); tb >= 0 {
				return v.g.Bonds[tb].Order
			}
		}
		return molecule.BondSingle
	}
	if !mapped[qb.begin] && !mapped[qb.end] && qa.props.aromatic && qc.props.aromatic {
		return molecule.BondAromatic
	}
	return molecule.BondSingle
}

func elementSymbol(p atomProps) string {
	if p.symbol != "" {
		return p.symbol
	}
	return symbolByNum[p.atomicNum]
}

//Personal.AI order the ending
