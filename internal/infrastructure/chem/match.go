package chem

import (
	"github.com/turtacn/SymRxn/internal/domain/molecule"
)

// targetView caches what query primitives read from a target graph.
type targetView struct {
	g      *molecule.Graph
	adj    [][]neighbor
	ring   *ringInfo
	totalH []int
}

func newTargetView(g *molecule.Graph) *targetView {
	adj := adjacency(g)
	v := &targetView{g: g, adj: adj, ring: perceiveRings(g, adj), totalH: make([]int, len(g.Atoms))}
	for i, a := range g.Atoms {
		v.totalH[i] = a.HCount
		for _, nb := range adj[i] {
			if g.Atoms[nb.atom].IsHydrogen() {
				v.totalH[i]++
			}
		}
	}
	return v
}

// matchBond tests a query bond against target bond b.
func matchBond(v *targetView, qb queryBond, b int) bool {
	if qb.expr == nil {
		o := v.g.Bonds[b].Order
		return o == molecule.BondSingle || o == molecule.BondAromatic
	}
	return qb.expr.eval(v, b)
}

// matches returns every embedding of q into the target, as target atom
// indices per query atom, in lexicographic order of the search. Excluded
// atoms are never used. The search stops after limit embeddings when
// limit > 0.
func (q *query) matches(v *targetView, excluded *molecule.AtomMask, limit int) [][]int {
	nq := len(q.atoms)
	if nq == 0 || len(v.g.Atoms) == 0 {
		return nil
	}

	order, parent := q.searchOrder()
	mapping := make([]int, nq)
	for i := range mapping {
		mapping[i] = -1
	}
	used := make([]bool, len(v.g.Atoms))
	var out [][]int

	var extend func(k int) bool
	try := func(k, qa, t int) bool {
		if used[t] || excluded.Excluded(t) || !q.atoms[qa].expr.eval(v, t) {
			return true
		}
		for _, nb := range q.adj[qa] {
			other := mapping[nb.atom]
			if other < 0 {
				continue
			}
			tb := v.g.BondBetween(t, other)
			if tb < 0 || !matchBond(v, q.bonds[nb.bond], tb) {
				return true
			}
		}
		mapping[qa], used[t] = t, true
		more := extend(k + 1)
		mapping[qa], used[t] = -1, false
		return more
	}
	extend = func(k int) bool {
		if k == nq {
			out = append(out, append([]int(nil), mapping...))
			return limit <= 0 || len(out) < limit
		}
		qa := order[k]
		if p := parent[qa]; p >= 0 {
			for _, nb := range v.adj[mapping[p]] {
				if !try(k, qa, nb.atom) {
					return false
				}
			}
			return true
		}
		for t := range v.g.Atoms {
			if !try(k, qa, t) {
				return false
			}
		}
		return true
	}
	extend(0)
	return out
}

// searchOrder lists query atoms depth-first, component by component, with
// the already-placed neighbour each atom is reached from.
func (q *query) searchOrder() ([]int, []int) {
	n := len(q.atoms)
	order := make([]int, 0, n)
	parent := make([]int, n)
	seen := make([]bool, n)
	var visit func(u int)
	visit = func(u int) {
		seen[u] = true
		order = append(order, u)
		for _, nb := range q.adj[u] {
			if !seen[nb.atom] {
				parent[nb.atom] = u
				visit(nb.atom)
			}
		}
	}
	for i := 0; i < n; i++ {
		if !seen[i] {
			parent[i] = -1
			visit(i)
		}
	}
	return order, parent
}

//Personal.AI order the ending
