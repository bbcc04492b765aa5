package chem

import (
	"sort"
	"strconv"
	"strings"

	"github.com/turtacn/SymRxn/internal/domain/molecule"
)

type ringEnd struct {
	partner int
	bond    int
}

// smilesWriter emits SMILES by a depth-first walk that visits neighbours in
// rank order. With canonical ranks the output is canonical.
type smilesWriter struct {
	g        *molecule.Graph
	adj      [][]neighbor
	rank     []int
	children [][]int
	opens    [][]ringEnd
	closes   [][]ringEnd
	digit    map[int]int
	inUse    map[int]bool
	sb       strings.Builder
}

// writeSMILES serialises g, traversing atoms by ascending rank. rank must
// hold one distinct value per atom.
func writeSMILES(g *molecule.Graph, rank []int) string {
	if g.IsEmpty() {
		return ""
	}
	n := len(g.Atoms)
	w := &smilesWriter{
		g:        g,
		adj:      adjacency(g),
		rank:     rank,
		children: make([][]int, n),
		opens:    make([][]ringEnd, n),
		closes:   make([][]ringEnd, n),
		digit:    make(map[int]int),
		inUse:    make(map[int]bool),
	}
	for i := range w.adj {
		nbs := w.adj[i]
		sort.SliceStable(nbs, func(a, b int) bool { return rank[nbs[a].atom] < rank[nbs[b].atom] })
	}

	byRank := make([]int, n)
	for i := range byRank {
		byRank[i] = i
	}
	sort.SliceStable(byRank, func(a, b int) bool { return rank[byRank[a]] < rank[byRank[b]] })

	visited := make([]bool, n)
	handled := make([]bool, len(g.Bonds))
	var roots []int
	for _, start := range byRank {
		if visited[start] {
			continue
		}
		roots = append(roots, start)
		w.plan(start, -1, visited, handled)
	}
	for k, root := range roots {
		if k > 0 {
			w.sb.WriteByte('.')
		}
		w.emit(root)
	}
	return w.sb.String()
}

// plan records the spanning tree and the ring closures of one component.
func (w *smilesWriter) plan(u, parentBond int, visited, handled []bool) {
	visited[u] = true
	for _, nb := range w.adj[u] {
		if nb.bond == parentBond || handled[nb.bond] {
			continue
		}
		handled[nb.bond] = true
		if visited[nb.atom] {
			w.opens[nb.atom] = append(w.opens[nb.atom], ringEnd{partner: u, bond: nb.bond})
			w.closes[u] = append(w.closes[u], ringEnd{partner: nb.atom, bond: nb.bond})
			continue
		}
		w.children[u] = append(w.children[u], nb.atom)
		w.plan(nb.atom, nb.bond, visited, handled)
	}
}

func (w *smilesWriter) emit(u int) {
	w.sb.WriteString(w.atomToken(u))

	var released []int
	for _, c := range w.closes[u] {
		d := w.digit[c.bond]
		w.sb.WriteString(ringLabel(d))
		released = append(released, d)
	}
	for _, o := range w.opens[u] {
		d := 1
		for w.inUse[d] {
			d++
		}
		w.inUse[d] = true
		w.digit[o.bond] = d
		w.sb.WriteString(w.bondToken(o.bond))
		w.sb.WriteString(ringLabel(d))
	}
	for _, d := range released {
		delete(w.inUse, d)
	}

	for k, c := range w.children[u] {
		bond := w.g.BondBetween(u, c)
		last := k == len(w.children[u])-1
		if !last {
			w.sb.WriteByte('(')
		}
		w.sb.WriteString(w.bondToken(bond))
		w.emit(c)
		if !last {
			w.sb.WriteByte(')')
		}
	}
}

func ringLabel(d int) string {
	if d < 10 {
		return strconv.Itoa(d)
	}
	return "%" + strconv.Itoa(d)
}

func (w *smilesWriter) bondToken(bond int) string {
	b := w.g.Bonds[bond]
	bothAromatic := w.g.Atoms[b.Begin].Aromatic && w.g.Atoms[b.End].Aromatic
	switch b.Order {
	case molecule.BondDouble:
		return "="
	case molecule.BondTriple:
		return "#"
	case molecule.BondAromatic:
		if bothAromatic {
			return ""
		}
		return ":"
	default:
		if bothAromatic {
			return "-"
		}
		return ""
	}
}

func (w *smilesWriter) atomToken(u int) string {
	a := w.g.Atoms[u]
	sym := a.Symbol
	if a.Aromatic {
		sym = strings.ToLower(sym)
	}
	plain := a.Charge == 0 && a.Isotope == 0 && a.MapNum == 0 &&
		a.HCount == implicitHydrogens(w.g, w.adj, u)
	if a.IsDummy() {
		plain = plain && !a.Aromatic
	} else if a.Aromatic {
		_, ok := aromaticSymbols[sym]
		plain = plain && ok && len(sym) == 1
	} else {
		plain = plain && organicSubset[sym]
	}
	if plain {
		return sym
	}

	var sb strings.Builder
	sb.WriteByte('[')
	if a.Isotope != 0 {
		sb.WriteString(strconv.Itoa(a.Isotope))
	}
	sb.WriteString(sym)
	switch {
	case a.HCount == 1:
		sb.WriteByte('H')
	case a.HCount > 1:
		sb.WriteString("H" + strconv.Itoa(a.HCount))
	}
	switch {
	case a.Charge == 1:
		sb.WriteByte('+')
	case a.Charge == -1:
		sb.WriteByte('-')
	case a.Charge > 1:
		sb.WriteString("+" + strconv.Itoa(a.Charge))
	case a.Charge < -1:
		sb.WriteString(strconv.Itoa(a.Charge))
	}
	if a.MapNum != 0 {
		sb.WriteString(":" + strconv.Itoa(a.MapNum))
	}
	sb.WriteByte(']')
	return sb.String()
}

// canonicalSMILES folds ordinary hydrogens and writes g in canonical order.
func canonicalSMILES(g *molecule.Graph) string {
	if g.IsEmpty() {
		return ""
	}
	h := removeHydrogens(g)
	return writeSMILES(h, canonicalOrder(h))
}

//Personal.AI order the ending
