// Package reaction holds reaction templates, reaction keys and product sets,
// together with the reaction side of the molecular oracle.
package reaction

import "github.com/turtacn/SymRxn/internal/domain/molecule"

// Compiled is an engine-specific, validated reaction.
type Compiled interface {
	// Pattern returns the source reaction pattern.
	Pattern() string
	NumReactants() int
	NumProducts() int
}

// Reactant is one reactant graph together with its call-scoped exclusion mask.
type Reactant struct {
	Graph    *molecule.Graph
	Excluded *molecule.AtomMask
}

// Engine compiles and applies reaction patterns.
type Engine interface {
	// BuildReaction compiles pattern; malformed syntax yields a PatternError.
	BuildReaction(pattern string) (Compiled, error)
	// ApplyReaction returns one product tuple per reactant-match combination.
	// Masked atoms are never matched. Reactants are not modified.
	ApplyReaction(rxn Compiled, reactants []Reactant) ([][]*molecule.Graph, error)
}

//Personal.AI order the ending
