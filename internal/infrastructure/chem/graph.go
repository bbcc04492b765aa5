package chem

import (
	"sort"

	"github.com/turtacn/SymRxn/internal/domain/molecule"
)

type neighbor struct {
	atom int
	bond int
}

// adjacency indexes g's bonds per atom, in bond order.
func adjacency(g *molecule.Graph) [][]neighbor {
	adj := make([][]neighbor, len(g.Atoms))
	for i, b := range g.Bonds {
		adj[b.Begin] = append(adj[b.Begin], neighbor{atom: b.End, bond: i})
		adj[b.End] = append(adj[b.End], neighbor{atom: b.Begin, bond: i})
	}
	return adj
}

// components labels each atom with a connected-component id. Ids are
// assigned in order of each component's lowest atom index.
func components(g *molecule.Graph, adj [][]neighbor) ([]int, int) {
	comp := make([]int, len(g.Atoms))
	for i := range comp {
		comp[i] = -1
	}
	n := 0
	for start := range g.Atoms {
		if comp[start] >= 0 {
			continue
		}
		stack := []int{start}
		comp[start] = n
		for len(stack) > 0 {
			u := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			for _, nb := range adj[u] {
				if comp[nb.atom] < 0 {
					comp[nb.atom] = n
					stack = append(stack, nb.atom)
				}
			}
		}
		n++
	}
	return comp, n
}

// subgraph copies the atoms selected by keep, preserving their order, and
// every bond between kept atoms. It returns the old→new index map (-1 when dropped).
func subgraph(g *molecule.Graph, keep func(int) bool) (*molecule.Graph, []int) {
	out := molecule.NewGraph(g.Name)
	remap := make([]int, len(g.Atoms))
	for i, a := range g.Atoms {
		if keep(i) {
			remap[i] = out.AddAtom(a)
		} else {
			remap[i] = -1
		}
	}
	for _, b := range g.Bonds {
		if remap[b.Begin] >= 0 && remap[b.End] >= 0 {
			out.Bonds = append(out.Bonds, molecule.Bond{Begin: remap[b.Begin], End: remap[b.End], Order: b.Order})
		}
	}
	return out, remap
}

// ringInfo describes ring membership of atoms and bonds.
type ringInfo struct {
	bond   []bool
	atom   []bool
	count  []int
	cycles [][]int
}

const maxPerceivedRing = 8

// perceiveRings finds ring bonds as the non-bridges of the graph and lists
// every simple cycle of up to maxPerceivedRing atoms.
func perceiveRings(g *molecule.Graph, adj [][]neighbor) *ringInfo {
	n := len(g.Atoms)
	ri := &ringInfo{
		bond:  make([]bool, len(g.Bonds)),
		atom:  make([]bool, n),
		count: make([]int, n),
	}
	for i := range ri.bond {
		ri.bond[i] = true
	}

	disc := make([]int, n)
	low := make([]int, n)
	for i := range disc {
		disc[i] = -1
	}
	timer := 0
	var dfs func(u, parentBond int)
	dfs = func(u, parentBond int) {
		disc[u] = timer
		low[u] = timer
		timer++
		for _, nb := range adj[u] {
			if nb.bond == parentBond {
				continue
			}
			if disc[nb.atom] < 0 {
				dfs(nb.atom, nb.bond)
				if low[nb.atom] < low[u] {
					low[u] = low[nb.atom]
				}
				if low[nb.atom] > disc[u] {
					ri.bond[nb.bond] = false
				}
			} else if disc[nb.atom] < low[u] {
				low[u] = disc[nb.atom]
			}
		}
	}
	for i := 0; i < n; i++ {
		if disc[i] < 0 {
			dfs(i, -1)
		}
	}
	for i, b := range g.Bonds {
		if ri.bond[i] {
			ri.atom[b.Begin] = true
			ri.atom[b.End] = true
		}
	}

	ri.cycles = simpleCycles(adj, ri, maxPerceivedRing)
	for _, c := range ri.cycles {
		for _, a := range c {
			ri.count[a]++
		}
	}
	return ri
}

// simpleCycles enumerates cycles through ring bonds. Each cycle starts at its
// lowest atom and is reported once.
func simpleCycles(adj [][]neighbor, ri *ringInfo, maxLen int) [][]int {
	var out [][]int
	n := len(adj)
	onPath := make([]bool, n)
	var path []int
	var walk func(start, u int)
	walk = func(start, u int) {
		for _, nb := range adj[u] {
			if !ri.bond[nb.bond] {
				continue
			}
			v := nb.atom
			if v == start && len(path) >= 3 {
				if path[1] < path[len(path)-1] {
					out = append(out, append([]int(nil), path...))
				}
				continue
			}
			if v <= start || onPath[v] || len(path) >= maxLen {
				continue
			}
			onPath[v] = true
			path = append(path, v)
			walk(start, v)
			path = path[:len(path)-1]
			onPath[v] = false
		}
	}
	for s := 0; s < n; s++ {
		if !ri.atom[s] {
			continue
		}
		onPath[s] = true
		path = append(path[:0], s)
		walk(s, s)
		onPath[s] = false
	}
	sort.SliceStable(out, func(i, j int) bool { return len(out[i]) < len(out[j]) })
	return out
}

//Personal.AI order the ending
