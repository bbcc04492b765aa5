package chem

import (
	"fmt"

	"github.com/turtacn/SymRxn/internal/domain/molecule"
)

// implicitHydrogens returns the hydrogens needed to bring atom i to its
// lowest default valence that covers its bonds. Elements without default
// valences get none.
func implicitHydrogens(g *molecule.Graph, adj [][]neighbor, i int) int {
	a := g.Atoms[i]
	el, ok := elementTable[a.Symbol]
	if !ok || len(el.valences) == 0 {
		return 0
	}
	used, aromaticBonds := 0, 0
	for _, nb := range adj[i] {
		o := g.Bonds[nb.bond].Order
		if o == molecule.BondAromatic {
			aromaticBonds++
		}
		used += o.Valence()
	}
	if a.Aromatic && aromaticBonds > 0 {
		switch a.Symbol {
		case "B", "C", "N", "P", "As":
			used++
		}
	}
	for _, v := range el.valences {
		v = chargedValence(a.Symbol, v, a.Charge)
		if v >= used {
			return v - used
		}
	}
	return 0
}

// chargedValence shifts a default valence for a formal charge: pnictogens and
// chalcogens gain valence with positive charge, the rest lose one per unit.
func chargedValence(symbol string, v, charge int) int {
	if charge == 0 {
		return v
	}
	switch symbol {
	case "N", "P", "As", "O", "S", "Se", "Te":
		return v + charge
	}
	if charge < 0 {
		charge = -charge
	}
	return v - charge
}

// valenceExcess returns how far atom i's bonds and hydrogens go past the
// largest default valence of its element. A negative hydrogen count is
// bonding the atom had no hydrogens for. Elements without default valences
// never exceed.
func valenceExcess(g *molecule.Graph, adj [][]neighbor, i int) int {
	a := g.Atoms[i]
	el, ok := elementTable[a.Symbol]
	if !ok || len(el.valences) == 0 {
		return 0
	}
	if a.HCount < 0 {
		return -a.HCount
	}
	used, aromaticBonds := a.HCount, 0
	for _, nb := range adj[i] {
		o := g.Bonds[nb.bond].Order
		if o == molecule.BondAromatic {
			aromaticBonds++
		}
		used += o.Valence()
	}
	if a.Aromatic && aromaticBonds > 0 {
		switch a.Symbol {
		case "B", "C", "N", "P", "As":
			used++
		}
	}
	limit := chargedValence(a.Symbol, el.valences[len(el.valences)-1], a.Charge)
	if used > limit {
		return used - limit
	}
	return 0
}

// checkValences reports the first atom that exceeds every default valence
// of its element.
func checkValences(g *molecule.Graph) error {
	adj := adjacency(g)
	for i, a := range g.Atoms {
		if n := valenceExcess(g, adj, i); n > 0 {
			return fmt.Errorf("atom %d (%s) exceeds its valence by %d", i, a.Symbol, n)
		}
	}
	return nil
}

// fillImplicitHydrogens sets HCount on every atom not flagged in fixed.
func fillImplicitHydrogens(g *molecule.Graph, fixed []bool) {
	adj := adjacency(g)
	for i := range g.Atoms {
		if fixed != nil && fixed[i] {
			continue
		}
		g.Atoms[i].HCount = implicitHydrogens(g, adj, i)
	}
}

// addHydrogens returns a copy of g where implicit hydrogens are explicit
// atoms, appended after the existing atoms in owner order.
func addHydrogens(g *molecule.Graph) *molecule.Graph {
	out := g.Clone()
	for i := range g.Atoms {
		n := out.Atoms[i].HCount
		out.Atoms[i].HCount = 0
		for k := 0; k < n; k++ {
			h := out.AddAtom(molecule.Atom{Symbol: "H", AtomicNum: 1})
			out.Bonds = append(out.Bonds, molecule.Bond{Begin: i, End: h, Order: molecule.BondSingle})
		}
	}
	return out
}

// removeHydrogens folds plain terminal hydrogens into their neighbour's
// implicit count. Charged, isotopic, mapped, bridging and H–H hydrogens stay.
func removeHydrogens(g *molecule.Graph) *molecule.Graph {
	adj := adjacency(g)
	drop := make([]bool, len(g.Atoms))
	owner := make([]int, len(g.Atoms))
	for i, a := range g.Atoms {
		if !a.IsHydrogen() || a.Isotope != 0 || a.Charge != 0 || a.MapNum != 0 || a.HCount != 0 || len(adj[i]) != 1 {
			continue
		}
		nb := adj[i][0]
		if g.Atoms[nb.atom].IsHydrogen() || g.Bonds[nb.bond].Order != molecule.BondSingle {
			continue
		}
		drop[i] = true
		owner[i] = nb.atom
	}
	out, remap := subgraph(g, func(i int) bool { return !drop[i] })
	for i := range g.Atoms {
		if drop[i] {
			out.Atoms[remap[owner[i]]].HCount++
		}
	}
	return out
}

//Personal.AI order the ending
