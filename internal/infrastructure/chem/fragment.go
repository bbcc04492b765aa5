package chem

import (
	"fmt"
	"sort"

	"github.com/turtacn/SymRxn/internal/domain/molecule"
	"github.com/turtacn/SymRxn/pkg/errors"
)

// fragmentAtBonds removes the given bonds and caps both open ends with a
// dummy atom. The dummy on atom u replaces its partner v, so it carries v's
// index as isotope label, and it keeps the order of the cut bond. Pieces are
// returned in order of their lowest original atom.
func fragmentAtBonds(g *molecule.Graph, bonds []int) ([]*molecule.Graph, error) {
	if g.IsEmpty() {
		return nil, errors.New(errors.ErrCodeFragmentationFailed, "cannot fragment an empty molecule")
	}
	cut := make(map[int]bool, len(bonds))
	for _, b := range bonds {
		if b < 0 || b >= len(g.Bonds) {
			return nil, errors.New(errors.ErrCodeFragmentationFailed, "fragmentation failed").
				WithDetail(fmt.Sprintf("bond=%d bonds=%d", b, len(g.Bonds)))
		}
		if cut[b] {
			return nil, errors.New(errors.ErrCodeFragmentationFailed, "fragmentation failed").
				WithDetail(fmt.Sprintf("bond=%d listed twice", b))
		}
		cut[b] = true
	}

	work := g.Clone()
	work.Bonds = work.Bonds[:0]
	for i, b := range g.Bonds {
		if !cut[i] {
			work.Bonds = append(work.Bonds, b)
		}
	}
	sorted := append([]int(nil), bonds...)
	sort.Ints(sorted)
	for _, bi := range sorted {
		b := g.Bonds[bi]
		for _, end := range [][2]int{{b.Begin, b.End}, {b.End, b.Begin}} {
			d := work.AddAtom(molecule.Atom{Symbol: "*", Isotope: end[1]})
			work.Bonds = append(work.Bonds, molecule.Bond{Begin: end[0], End: d, Order: b.Order})
		}
	}

	adj := adjacency(work)
	comp, n := components(work, adj)
	frags := make([]*molecule.Graph, 0, n)
	for c := 0; c < n; c++ {
		f, _ := subgraph(work, func(i int) bool { return comp[i] == c })
		frags = append(frags, f)
	}
	return frags, nil
}

// chooseLargestFragment prefers more atoms, then more heavy atoms, then the
// earlier fragment.
func chooseLargestFragment(frags []*molecule.Graph) *molecule.Graph {
	var best *molecule.Graph
	for _, f := range frags {
		if f == nil {
			continue
		}
		if best == nil || f.NumAtoms() > best.NumAtoms() ||
			(f.NumAtoms() == best.NumAtoms() && f.HeavyAtomCount() > best.HeavyAtomCount()) {
			best = f
		}
	}
	return best
}

//Personal.AI order the ending
