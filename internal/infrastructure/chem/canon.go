package chem

import (
	"sort"

	"github.com/turtacn/SymRxn/internal/domain/molecule"
)

// canonicalRanks computes symmetry classes by iterative refinement of atom
// invariants over neighbour ranks, then splits any class whose atoms no
// automorphism relates. Ranks are dense, start at zero and depend only on
// graph structure. Tied atoms are symmetry equivalent.
func canonicalRanks(g *molecule.Graph) []int {
	if g.IsEmpty() {
		return nil
	}
	adj := adjacency(g)
	ri := perceiveRings(g, adj)

	keys := make([][]int, len(g.Atoms))
	for i, a := range g.Atoms {
		heavy, hs := 0, a.HCount
		for _, nb := range adj[i] {
			if g.Atoms[nb.atom].IsHydrogen() {
				hs++
			} else {
				heavy++
			}
		}
		keys[i] = []int{
			a.AtomicNum,
			a.Isotope,
			a.Charge,
			boolInt(a.Aromatic),
			heavy,
			hs,
			boolInt(ri.atom[i]),
			a.MapNum,
		}
	}
	return splitOrbits(g, adj, refine(g, adj, denseRank(keys)))
}

// refine splits classes by the multiset of (neighbour rank, bond order) until
// the number of classes stops growing.
func refine(g *molecule.Graph, adj [][]neighbor, ranks []int) []int {
	classes := countClasses(ranks)
	for {
		keys := make([][]int, len(ranks))
		for i := range ranks {
			nbs := make([]int, 0, len(adj[i]))
			for _, nb := range adj[i] {
				nbs = append(nbs, ranks[nb.atom]*8+int(g.Bonds[nb.bond].Order))
			}
			sort.Ints(nbs)
			keys[i] = append([]int{ranks[i]}, nbs...)
		}
		next := denseRank(keys)
		n := countClasses(next)
		if n == classes {
			return next
		}
		ranks, classes = next, n
	}
}

// canonicalOrder breaks the remaining ties of canonicalRanks: the lowest-index
// atom of the lowest tied class is promoted and the ranks refined again, until
// every atom has its own rank.
func canonicalOrder(g *molecule.Graph) []int {
	ranks := canonicalRanks(g)
	if ranks == nil {
		return nil
	}
	adj := adjacency(g)
	for countClasses(ranks) < len(ranks) {
		size := make(map[int]int)
		for _, r := range ranks {
			size[r]++
		}
		tied := -1
		for _, r := range ranks {
			if size[r] > 1 && (tied < 0 || r < tied) {
				tied = r
			}
		}
		pick := -1
		for i, r := range ranks {
			if r == tied {
				pick = i
				break
			}
		}
		keys := make([][]int, len(ranks))
		for i, r := range ranks {
			flag := 0
			if r == tied && i != pick {
				flag = 1
			}
			keys[i] = []int{r, flag}
		}
		ranks = refine(g, adj, denseRank(keys))
	}
	return ranks
}

// denseRank orders keys lexicographically and assigns 0..k-1, equal keys
// sharing a rank.
func denseRank(keys [][]int) []int {
	idx := make([]int, len(keys))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool { return compareInts(keys[idx[a]], keys[idx[b]]) < 0 })
	ranks := make([]int, len(keys))
	r := 0
	for k, i := range idx {
		if k > 0 && compareInts(keys[idx[k-1]], keys[i]) != 0 {
			r++
		}
		ranks[i] = r
	}
	return ranks
}

func compareInts(a, b []int) int {
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i] != b[i] {
			if a[i] < b[i] {
				return -1
			}
			return 1
		}
	}
	return len(a) - len(b)
}

func countClasses(ranks []int) int {
	seen := make(map[int]struct{}, len(ranks))
	for _, r := range ranks {
		seen[r] = struct{}{}
	}
	return len(seen)
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

//Personal.AI order the ending
