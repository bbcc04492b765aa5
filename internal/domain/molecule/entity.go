// Package molecule provides the molecular graph model used by the reaction
// enumeration pipeline: atoms, bonds, call-scoped exclusion masks and the
// symmetry partition derived from canonical ranks.
package molecule

import (
	"fmt"
	"sort"
	"strings"

	"github.com/turtacn/SymRxn/pkg/errors"
)

// BondOrder is the multiplicity of a bond.
type BondOrder int

const (
	BondSingle   BondOrder = 1
	BondDouble   BondOrder = 2
	BondTriple   BondOrder = 3
	BondAromatic BondOrder = 4
)

// Valence returns the bond's contribution to an atom's explicit valence.
// Aromatic bonds count as one; the extra pi electron is accounted per atom.
func (o BondOrder) Valence() int {
	switch o {
	case BondDouble:
		return 2
	case BondTriple:
		return 3
	default:
		return 1
	}
}

func (o BondOrder) String() string {
	switch o {
	case BondSingle:
		return "single"
	case BondDouble:
		return "double"
	case BondTriple:
		return "triple"
	case BondAromatic:
		return "aromatic"
	default:
		return fmt.Sprintf("order(%d)", int(o))
	}
}

// Atom is a vertex of a molecular graph.
type Atom struct {
	// Symbol is the element symbol with canonical capitalisation ("C", "Cl"),
	// or "*" for an attachment dummy.
	Symbol    string
	AtomicNum int
	Aromatic  bool
	Charge    int
	// Isotope doubles as the label of attachment dummies.
	Isotope int
	// HCount is the number of implicit hydrogens.
	HCount int
	MapNum int
}

// IsHydrogen reports whether the atom is a hydrogen.
func (a Atom) IsHydrogen() bool { return a.AtomicNum == 1 }

// IsDummy reports whether the atom is an attachment dummy.
func (a Atom) IsDummy() bool { return a.AtomicNum == 0 }

// Bond is an undirected edge between two atoms.
type Bond struct {
	Begin int
	End   int
	Order BondOrder
}

// Other returns the endpoint of b that is not atom, or -1 when atom is not on b.
func (b Bond) Other(atom int) int {
	switch atom {
	case b.Begin:
		return b.End
	case b.End:
		return b.Begin
	default:
		return -1
	}
}

// Graph is a molecular graph. It is plain data: it carries no caches and no
// exclusion state, so concurrent readers need no locking. Writers own their
// graph; take a Clone before mutating a graph received from elsewhere.
type Graph struct {
	Name  string
	Atoms []Atom
	Bonds []Bond
}

// NewGraph returns an empty graph with the given title.
func NewGraph(name string) *Graph {
	return &Graph{Name: name}
}

// NumAtoms returns the number of atoms; a nil graph has none.
func (g *Graph) NumAtoms() int {
	if g == nil {
		return 0
	}
	return len(g.Atoms)
}

// NumBonds returns the number of bonds.
func (g *Graph) NumBonds() int {
	if g == nil {
		return 0
	}
	return len(g.Bonds)
}

// IsEmpty reports whether g is nil or has no atoms.
func (g *Graph) IsEmpty() bool { return g.NumAtoms() == 0 }

// AddAtom appends a and returns its index.
func (g *Graph) AddAtom(a Atom) int {
	g.Atoms = append(g.Atoms, a)
	return len(g.Atoms) - 1
}

// AddBond connects two existing atoms and returns the bond index.
func (g *Graph) AddBond(begin, end int, order BondOrder) (int, error) {
	if begin < 0 || begin >= len(g.Atoms) || end < 0 || end >= len(g.Atoms) {
		return -1, errors.Newf(errors.ErrCodeAtomIndexOutOfRange, "bond %d-%d references a missing atom", begin, end)
	}
	if begin == end {
		return -1, errors.Newf(errors.ErrCodeBondInvalid, "atom %d cannot bond to itself", begin)
	}
	if g.BondBetween(begin, end) >= 0 {
		return -1, errors.Newf(errors.ErrCodeBondInvalid, "atoms %d and %d are already bonded", begin, end)
	}
	g.Bonds = append(g.Bonds, Bond{Begin: begin, End: end, Order: order})
	return len(g.Bonds) - 1, nil
}

// BondBetween returns the index of the bond joining a and b, or -1.
func (g *Graph) BondBetween(a, b int) int {
	for i, bd := range g.Bonds {
		if (bd.Begin == a && bd.End == b) || (bd.Begin == b && bd.End == a) {
			return i
		}
	}
	return -1
}

// IncidentBonds returns the indices of bonds touching atom, in bond order.
func (g *Graph) IncidentBonds(atom int) []int {
	var out []int
	for i, bd := range g.Bonds {
		if bd.Begin == atom || bd.End == atom {
			out = append(out, i)
		}
	}
	return out
}

// Neighbors returns the atoms bonded to atom, in bond order.
func (g *Graph) Neighbors(atom int) []int {
	var out []int
	for _, bd := range g.Bonds {
		if o := bd.Other(atom); o >= 0 {
			out = append(out, o)
		}
	}
	return out
}

// Degree returns the number of explicit bonds on atom.
func (g *Graph) Degree(atom int) int {
	n := 0
	for _, bd := range g.Bonds {
		if bd.Begin == atom || bd.End == atom {
			n++
		}
	}
	return n
}

// TotalHCount returns implicit plus explicit hydrogens on atom.
func (g *Graph) TotalHCount(atom int) int {
	n := g.Atoms[atom].HCount
	for _, nb := range g.Neighbors(atom) {
		if g.Atoms[nb].IsHydrogen() {
			n++
		}
	}
	return n
}

// TerminalHydrogenBonds returns the bonds from atom to hydrogens that carry no
// other bond.
func (g *Graph) TerminalHydrogenBonds(atom int) []int {
	var out []int
	for _, bi := range g.IncidentBonds(atom) {
		h := g.Bonds[bi].Other(atom)
		if g.Atoms[h].IsHydrogen() && g.Degree(h) == 1 {
			out = append(out, bi)
		}
	}
	return out
}

// HeavyAtomCount returns the number of non-hydrogen atoms.
func (g *Graph) HeavyAtomCount() int {
	if g == nil {
		return 0
	}
	n := 0
	for _, a := range g.Atoms {
		if !a.IsHydrogen() {
			n++
		}
	}
	return n
}

// Clone returns a deep copy of g.
func (g *Graph) Clone() *Graph {
	if g == nil {
		return nil
	}
	c := &Graph{Name: g.Name}
	c.Atoms = append([]Atom(nil), g.Atoms...)
	c.Bonds = append([]Bond(nil), g.Bonds...)
	return c
}

// Formula returns a Hill-order molecular formula including implicit hydrogens.
func (g *Graph) Formula() string {
	if g.IsEmpty() {
		return ""
	}
	counts := map[string]int{}
	for _, a := range g.Atoms {
		counts[a.Symbol]++
		if a.HCount > 0 {
			counts["H"] += a.HCount
		}
	}
	var sb strings.Builder
	write := func(sym string) {
		n, ok := counts[sym]
		if !ok {
			return
		}
		sb.WriteString(sym)
		if n > 1 {
			fmt.Fprintf(&sb, "%d", n)
		}
		delete(counts, sym)
	}
	if _, hasC := counts["C"]; hasC {
		write("C")
		write("H")
	}
	rest := make([]string, 0, len(counts))
	for sym := range counts {
		rest = append(rest, sym)
	}
	sort.Strings(rest)
	for _, sym := range rest {
		write(sym)
	}
	return sb.String()
}

//Personal.AI order the ending
