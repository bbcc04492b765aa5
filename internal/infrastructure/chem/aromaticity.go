package chem

import (
	"github.com/turtacn/SymRxn/internal/domain/molecule"
)

// perceiveAromaticity marks 5-, 6- and 7-membered rings that satisfy the
// 4n+2 rule as aromatic. Atoms already flagged aromatic stay aromatic.
// Rings fused to an aromatic ring are re-examined until nothing changes,
// so naphthalene-like systems are caught whatever their Kekulé form.
func perceiveAromaticity(g *molecule.Graph) {
	adj := adjacency(g)
	ri := perceiveRings(g, adj)

	var cycles [][]int
	for _, c := range ri.cycles {
		if len(c) >= 5 && len(c) <= 7 {
			cycles = append(cycles, c)
		}
	}
	done := make([]bool, len(cycles))

	for changed := true; changed; {
		changed = false
		for ci, c := range cycles {
			if done[ci] {
				continue
			}
			if cycleAlreadyAromatic(g, c) {
				done[ci] = true
				continue
			}
			if !isAromaticCycle(g, adj, c) {
				continue
			}
			markAromatic(g, c)
			done[ci] = true
			changed = true
		}
	}
}

func cycleBonds(g *molecule.Graph, c []int) []int {
	out := make([]int, 0, len(c))
	for k := range c {
		b := g.BondBetween(c[k], c[(k+1)%len(c)])
		out = append(out, b)
	}
	return out
}

func cycleAlreadyAromatic(g *molecule.Graph, c []int) bool {
	for _, a := range c {
		if !g.Atoms[a].Aromatic {
			return false
		}
	}
	for _, b := range cycleBonds(g, c) {
		if b < 0 || g.Bonds[b].Order != molecule.BondAromatic {
			return false
		}
	}
	return true
}

func isAromaticCycle(g *molecule.Graph, adj [][]neighbor, c []int) bool {
	inCycle := make(map[int]bool, len(c))
	for _, a := range c {
		inCycle[a] = true
	}
	for _, b := range cycleBonds(g, c) {
		if b < 0 {
			return false
		}
		switch g.Bonds[b].Order {
		case molecule.BondSingle, molecule.BondDouble, molecule.BondAromatic:
		default:
			return false
		}
	}
	total := 0
	for _, a := range c {
		e, ok := piElectrons(g, adj, inCycle, a)
		if !ok {
			return false
		}
		total += e
	}
	return total%4 == 2
}

// piElectrons returns the atom's contribution to a ring's pi system.
func piElectrons(g *molecule.Graph, adj [][]neighbor, inCycle map[int]bool, i int) (int, bool) {
	a := g.Atoms[i]
	switch a.Symbol {
	case "C", "N", "O", "S", "P", "Se", "As", "Te":
	default:
		return 0, false
	}
	inRingPi, exoDouble := false, false
	for _, nb := range adj[i] {
		switch g.Bonds[nb.bond].Order {
		case molecule.BondTriple:
			return 0, false
		case molecule.BondDouble, molecule.BondAromatic:
			if inCycle[nb.atom] {
				inRingPi = true
			} else if g.Bonds[nb.bond].Order == molecule.BondDouble {
				exoDouble = true
			}
		}
	}
	if inRingPi {
		return 1, true
	}
	if exoDouble {
		return 0, false
	}
	connections := len(adj[i]) + a.HCount
	switch a.Symbol {
	case "N", "P", "As":
		if a.Charge == 0 && connections == 3 {
			return 2, true
		}
	case "O", "S", "Se", "Te":
		if a.Charge == 0 && connections == 2 {
			return 2, true
		}
	case "C":
		if a.Charge == -1 && connections == 3 {
			return 2, true
		}
		if a.Charge == 1 && connections == 3 {
			return 0, true
		}
	}
	return 0, false
}

func markAromatic(g *molecule.Graph, c []int) {
	for _, a := range c {
		g.Atoms[a].Aromatic = true
	}
	for _, b := range cycleBonds(g, c) {
		g.Bonds[b].Order = molecule.BondAromatic
	}
}

//Personal.AI order the ending
