package chem

import (
	"sort"
	"strconv"
	"strings"

	"github.com/turtacn/SymRxn/internal/domain/molecule"
)

// maxSearchNodes bounds the backtracking of one automorphism search. A search
// that runs out keeps the two atoms together.
const maxSearchNodes = 20000

// splitOrbits turns refined ranks into automorphism orbits. Refinement alone
// cannot separate some atoms of regular graphs; every class with more than
// one atom is checked by an explicit search for automorphisms.
func splitOrbits(g *molecule.Graph, adj [][]neighbor, ranks []int) []int {
	n := len(ranks)
	if countClasses(ranks) == n {
		return ranks
	}
	s := newAutSearch(g, adj, ranks)

	classes := make(map[int][]int)
	for i, r := range ranks {
		classes[r] = append(classes[r], i)
	}
	split := false
	for _, members := range classes {
		if len(members) < 2 {
			continue
		}
		var reps []int
		for _, v := range members {
			placed := false
			for _, r := range reps {
				if s.find(r) == s.find(v) || s.automorphic(r, v) {
					placed = true
					break
				}
			}
			if !placed {
				reps = append(reps, v)
			}
		}
		if len(reps) > 1 {
			split = true
		}
	}
	if !split {
		return ranks
	}

	// Orbits of one class are ordered by a structural certificate. Only
	// orbits with equal certificates fall back to their lowest atom index.
	type orbitKey struct {
		cert string
		low  int
	}
	keyOf := make(map[int]orbitKey)
	for i := 0; i < n; i++ {
		root := s.find(i)
		k, ok := keyOf[root]
		if !ok {
			k = orbitKey{cert: s.certificate(i), low: i}
		} else if i < k.low {
			k.low = i
		}
		keyOf[root] = k
	}
	byClass := make(map[int][]orbitKey)
	for _, k := range keyOf {
		r := ranks[k.low]
		byClass[r] = append(byClass[r], k)
	}
	sub := make(map[int]int, len(keyOf))
	for _, ks := range byClass {
		sort.Slice(ks, func(a, b int) bool {
			if ks[a].cert != ks[b].cert {
				return ks[a].cert < ks[b].cert
			}
			return ks[a].low < ks[b].low
		})
		for pos, k := range ks {
			sub[k.low] = pos
		}
	}
	keys := make([][]int, n)
	for i := 0; i < n; i++ {
		keys[i] = []int{ranks[i], sub[keyOf[s.find(i)].low]}
	}
	return denseRank(keys)
}

// autSearch looks for automorphisms on two copies of one graph held side by
// side: atom i of the first copy is atom i+n of the second.
type autSearch struct {
	g      *molecule.Graph
	adj    [][]neighbor
	union  [][]neighbor
	ranks  []int
	parent []int
	nodes  int
}

func newAutSearch(g *molecule.Graph, adj [][]neighbor, ranks []int) *autSearch {
	n := len(ranks)
	union := make([][]neighbor, 2*n)
	for i := 0; i < n; i++ {
		union[i] = adj[i]
		shifted := make([]neighbor, len(adj[i]))
		for k, nb := range adj[i] {
			shifted[k] = neighbor{atom: nb.atom + n, bond: nb.bond}
		}
		union[i+n] = shifted
	}
	parent := make([]int, n)
	for i := range parent {
		parent[i] = i
	}
	return &autSearch{g: g, adj: adj, union: union, ranks: ranks, parent: parent}
}

func (s *autSearch) find(i int) int {
	for s.parent[i] != i {
		s.parent[i] = s.parent[s.parent[i]]
		i = s.parent[i]
	}
	return i
}

func (s *autSearch) join(a, b int) {
	ra, rb := s.find(a), s.find(b)
	if ra == rb {
		return
	}
	if rb < ra {
		ra, rb = rb, ra
	}
	s.parent[rb] = ra
}

// automorphic reports whether some automorphism maps u to v. Every cycle of
// an automorphism found on the way is merged into the orbits.
func (s *autSearch) automorphic(u, v int) bool {
	n := len(s.ranks)
	start := make([]int, 2*n)
	copy(start, s.ranks)
	copy(start[n:], s.ranks)
	s.nodes = 0
	perm, exhausted := s.search(individualize(start, u, v+n))
	if perm == nil {
		if exhausted {
			s.join(u, v)
			return true
		}
		return false
	}
	for a, b := range perm {
		s.join(a, b)
	}
	return true
}

// search refines the paired partition and extends it until every cell holds
// one atom of each copy. It returns the mapping of the first copy onto the
// second, or nil. exhausted reports that the node budget ran out.
func (s *autSearch) search(ranks []int) (perm []int, exhausted bool) {
	s.nodes++
	if s.nodes > maxSearchNodes {
		return nil, true
	}
	n := len(s.ranks)
	ranks = refine(s.g, s.union, ranks)

	left := make(map[int][]int)
	right := make(map[int][]int)
	for i, r := range ranks {
		if i < n {
			left[r] = append(left[r], i)
		} else {
			right[r] = append(right[r], i-n)
		}
	}
	cell := -1
	for r, as := range left {
		if len(as) != len(right[r]) {
			return nil, false
		}
		if len(as) > 1 && (cell < 0 || r < cell) {
			cell = r
		}
	}
	if len(left) != len(right) {
		return nil, false
	}

	if cell < 0 {
		perm = make([]int, n)
		for r, as := range left {
			perm[as[0]] = right[r][0]
		}
		if s.preservesBonds(perm) {
			return perm, false
		}
		return nil, false
	}

	x := left[cell][0]
	for _, y := range right[cell] {
		perm, exhausted = s.search(individualize(ranks, x, y+n))
		if perm != nil || exhausted {
			return perm, exhausted
		}
	}
	return nil, false
}

// preservesBonds reports whether perm maps every bond onto a bond of the
// same order.
func (s *autSearch) preservesBonds(perm []int) bool {
	for _, b := range s.g.Bonds {
		found := false
		for _, nb := range s.adj[perm[b.Begin]] {
			if nb.atom == perm[b.End] && s.g.Bonds[nb.bond].Order == b.Order {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// certificate describes the partition reached by fixing atom x and refining:
// each atom contributes its class and the classes and orders of its
// neighbours. Automorphic atoms give equal certificates.
func (s *autSearch) certificate(x int) string {
	fixed := make([]int, len(s.ranks))
	copy(fixed, s.ranks)
	ranks := refine(s.g, s.adj, individualize(fixed, x, x))

	rows := make([]string, len(ranks))
	for i, r := range ranks {
		nbs := make([]int, 0, len(s.adj[i]))
		for _, nb := range s.adj[i] {
			nbs = append(nbs, ranks[nb.atom]*8+int(s.g.Bonds[nb.bond].Order))
		}
		sort.Ints(nbs)
		parts := make([]string, 0, len(nbs)+1)
		parts = append(parts, strconv.Itoa(r))
		for _, v := range nbs {
			parts = append(parts, strconv.Itoa(v))
		}
		rows[i] = strings.Join(parts, ",")
	}
	sort.Strings(rows)
	return strings.Join(rows, ";")
}

// individualize gives atoms a and b a shared class of their own.
func individualize(ranks []int, a, b int) []int {
	out := make([]int, len(ranks))
	top := 0
	for i, r := range ranks {
		out[i] = r
		if r > top {
			top = r
		}
	}
	out[a] = top + 1
	out[b] = top + 1
	return out
}

//Personal.AI order the ending
