package molecule

// Toolkit is the graph side of the molecular oracle: parsing, ranking,
// hydrogen handling, fragmentation and canonical serialization.
// Implementations must be deterministic and safe for concurrent use.
type Toolkit interface {
	// ParseFile reads the first molecule of a .mol/.mdl/.sdf or .smi file.
	ParseFile(path string) (*Graph, error)
	// ParseSMILES parses a SMILES string.
	ParseSMILES(smiles string) (*Graph, error)
	// CanonicalRank returns one rank per atom; equal ranks mark symmetry-
	// equivalent atoms. Ties are kept.
	CanonicalRank(g *Graph) []int
	// AddHydrogens returns a copy with every implicit hydrogen made explicit.
	// New hydrogens follow the existing atoms.
	AddHydrogens(g *Graph) *Graph
	// RemoveHydrogens returns a copy with ordinary explicit hydrogens folded
	// into their neighbour's implicit count.
	RemoveHydrogens(g *Graph) *Graph
	// FragmentAtBonds cuts the given bonds, capping each open end with a dummy
	// atom whose isotope is the index of the atom it replaces, and returns the
	// connected pieces.
	FragmentAtBonds(g *Graph, bonds []int) ([]*Graph, error)
	// ChooseLargestFragment picks the fragment with most atoms, then most
	// heavy atoms, then the first.
	ChooseLargestFragment(frags []*Graph) *Graph
	// CanonicalSerialize returns canonical SMILES.
	CanonicalSerialize(g *Graph) string
}

//Personal.AI order the ending
