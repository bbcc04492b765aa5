package chem

import (
	"bytes"
	stderrors "errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/turtacn/SymRxn/internal/domain/molecule"
	"github.com/turtacn/SymRxn/internal/domain/reaction"
	"github.com/turtacn/SymRxn/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/SymRxn/pkg/errors"
)

// Oracle is the molecular graph oracle: it implements molecule.Toolkit and
// reaction.Engine on the native chemistry engine of this package. It holds no
// mutable state and is safe for concurrent use.
type Oracle struct {
	logger      logging.Logger
	maxProducts int
}

var (
	_ molecule.Toolkit = (*Oracle)(nil)
	_ reaction.Engine  = (*Oracle)(nil)
)

// Option configures an Oracle.
type Option func(*Oracle)

// WithLogger sets the logger. The default discards output.
func WithLogger(l logging.Logger) Option {
	return func(o *Oracle) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithMaxProducts caps the match combinations expanded by one ApplyReaction
// call. Values below 1 keep DefaultMaxProducts.
func WithMaxProducts(n int) Option {
	return func(o *Oracle) {
		if n > 0 {
			o.maxProducts = n
		}
	}
}

// NewOracle returns an Oracle.
func NewOracle(opts ...Option) *Oracle {
	o := &Oracle{logger: logging.NewNopLogger(), maxProducts: DefaultMaxProducts}
	for _, opt := range opts {
		opt(o)
	}
	o.logger = o.logger.Named("chem")
	return o
}

// ParseFile reads the first molecule of a molfile, SD file or SMILES file.
// The graph is titled with the file's record title, or its base name.
func (o *Oracle) ParseFile(path string) (*molecule.Graph, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if stderrors.Is(err, fs.ErrNotExist) {
			return nil, errors.NotFound("molecule file not found").WithDetail("path=" + path)
		}
		return nil, errors.Wrap(err, errors.ErrCodeFileUnreadable, "cannot read molecule file").WithDetail("path=" + path)
	}

	var g *molecule.Graph
	switch strings.ToLower(filepath.Ext(path)) {
	case ".mol", ".mdl", ".sdf", ".sd":
		g, err = parseMolfile(bytes.NewReader(data))
	case ".smi", ".smiles":
		g, err = parseSMILESFile(data)
	default:
		if !bytes.Contains(data, []byte("V2000")) {
			return nil, errors.New(errors.ErrCodeMoleculeFormatUnsupported, "unsupported molecule file format").
				WithDetail("path=" + path)
		}
		g, err = parseMolfile(bytes.NewReader(data))
	}
	if err != nil {
		o.logger.Debug("molecule file rejected", logging.String("path", path), logging.Err(err))
		return nil, errors.ParseError(path, err)
	}
	g = removeHydrogens(g)
	if g.Name == "" {
		g.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return g, nil
}

// parseSMILESFile reads the first line of a SMILES file; text after the
// SMILES token is the title.
func parseSMILESFile(data []byte) (*molecule.Graph, error) {
	line := string(data)
	if i := strings.IndexByte(line, '\n'); i >= 0 {
		line = line[:i]
	}
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil, stderrors.New("SMILES file is empty")
	}
	g, err := parseSMILES(fields[0])
	if err != nil {
		return nil, err
	}
	if len(fields) > 1 {
		g.Name = strings.Join(fields[1:], " ")
	}
	return g, nil
}

// ParseSMILES parses s and folds ordinary explicit hydrogens.
func (o *Oracle) ParseSMILES(s string) (*molecule.Graph, error) {
	g, err := parseSMILES(s)
	if err != nil {
		return nil, errors.ParseError(s, err)
	}
	return removeHydrogens(g), nil
}

// CanonicalRank returns symmetry classes; see canonicalRanks.
func (o *Oracle) CanonicalRank(g *molecule.Graph) []int {
	return canonicalRanks(g)
}

func (o *Oracle) AddHydrogens(g *molecule.Graph) *molecule.Graph {
	if g == nil {
		return nil
	}
	return addHydrogens(g)
}

func (o *Oracle) RemoveHydrogens(g *molecule.Graph) *molecule.Graph {
	if g == nil {
		return nil
	}
	return removeHydrogens(g)
}

func (o *Oracle) FragmentAtBonds(g *molecule.Graph, bonds []int) ([]*molecule.Graph, error) {
	return fragmentAtBonds(g, bonds)
}

func (o *Oracle) ChooseLargestFragment(frags []*molecule.Graph) *molecule.Graph {
	return chooseLargestFragment(frags)
}

// CanonicalSerialize returns canonical SMILES, or "" for an empty graph.
func (o *Oracle) CanonicalSerialize(g *molecule.Graph) string {
	return canonicalSMILES(g)
}

// BuildReaction compiles a reaction SMARTS.
func (o *Oracle) BuildReaction(pattern string) (reaction.Compiled, error) {
	rxn, err := compileReaction(pattern)
	if err != nil {
		return nil, err
	}
	return rxn, nil
}

// ApplyReaction runs a compiled reaction. rxn must come from BuildReaction.
// Product sets in which an atom exceeds its valence are dropped and logged.
func (o *Oracle) ApplyReaction(rxn reaction.Compiled, reactants []reaction.Reactant) ([][]*molecule.Graph, error) {
	cr, ok := rxn.(*compiledReaction)
	if !ok || cr == nil {
		return nil, errors.InvalidTemplate("reaction was not compiled by this engine")
	}
	products, st, err := cr.apply(reactants, o.maxProducts)
	if err != nil {
		return nil, err
	}
	if st.truncated {
		o.logger.Warn("reaction product limit reached",
			logging.String(logging.FieldPattern, cr.pattern),
			logging.Int("limit", o.maxProducts))
	}
	if st.invalid > 0 {
		o.logger.Debug("products dropped for impossible valence",
			logging.String(logging.FieldPattern, cr.pattern),
			logging.Int("dropped", st.invalid),
			logging.Err(st.reason))
	}
	return products, nil
}

//Personal.AI order the ending
