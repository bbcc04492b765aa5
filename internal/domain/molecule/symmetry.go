package molecule

import (
	"sort"

	"github.com/samber/lo"
)

// Orbit is a set of atoms sharing one canonical rank.
type Orbit struct {
	Rank int
	// Members is sorted ascending; Members[0] is the representative.
	Members []int
}

// Representative returns the lowest-index member.
func (o Orbit) Representative() int { return o.Members[0] }

// Size returns the number of members.
func (o Orbit) Size() int { return len(o.Members) }

// Pairs returns every unordered member pair (i < j) in ascending order.
func (o Orbit) Pairs() [][2]int {
	var out [][2]int
	for a := 0; a < len(o.Members); a++ {
		for b := a + 1; b < len(o.Members); b++ {
			out = append(out, [2]int{o.Members[a], o.Members[b]})
		}
	}
	return out
}

// ExclusionMask excludes every member except the representative.
// The mask is sized for n atoms.
func (o Orbit) ExclusionMask(n int) *AtomMask {
	m := NewAtomMask(n)
	for _, a := range o.Members[1:] {
		m.Exclude(a)
	}
	return m
}

// Partition is the disjoint, covering set of orbits of a graph, ordered by
// ascending representative.
type Partition []Orbit

// AnalyzeOrbits groups atom indices by equal rank. Members are collected in
// ascending atom index, so the representative never depends on map order.
func AnalyzeOrbits(ranks []int) Partition {
	index := make(map[int]int, len(ranks))
	var p Partition
	for atom, r := range ranks {
		if at, ok := index[r]; ok {
			p[at].Members = append(p[at].Members, atom)
			continue
		}
		index[r] = len(p)
		p = append(p, Orbit{Rank: r, Members: []int{atom}})
	}
	sort.SliceStable(p, func(i, j int) bool { return p[i].Representative() < p[j].Representative() })
	return p
}

// Symmetric returns the orbits with at least two members. It is empty when
// every atom is distinct.
func (p Partition) Symmetric() Partition {
	return lo.Filter(p, func(o Orbit, _ int) bool { return o.Size() >= 2 })
}

// SymmetricOrbits is shorthand for AnalyzeOrbits(ranks).Symmetric().
func SymmetricOrbits(ranks []int) Partition {
	return AnalyzeOrbits(ranks).Symmetric()
}

// PairCount returns Σ k(k−1)/2 over all orbits.
func (p Partition) PairCount() int {
	return lo.SumBy(p, func(o Orbit) int { return o.Size() * (o.Size() - 1) / 2 })
}

// OrbitOf returns the orbit containing atom and true, or false if absent.
func (p Partition) OrbitOf(atom int) (Orbit, bool) {
	for _, o := range p {
		if lo.Contains(o.Members, atom) {
			return o, true
		}
	}
	return Orbit{}, false
}

// Representatives returns the representative of each orbit, ascending.
func (p Partition) Representatives() []int {
	return lo.Map(p, func(o Orbit, _ int) int { return o.Representative() })
}

// NumAtoms returns the number of atoms covered by the partition.
func (p Partition) NumAtoms() int {
	return lo.SumBy(p, func(o Orbit) int { return o.Size() })
}

//Personal.AI order the ending
