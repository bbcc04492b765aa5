package reaction

import (
	"github.com/google/uuid"

	"github.com/turtacn/SymRxn/pkg/errors"
)

// templateNamespace scopes template IDs derived from their pattern.
var templateNamespace = uuid.MustParse("5b0e4c1f-7a4e-4d8e-9a49-3c1f6d2a8e10")

// Template is an immutable, validated reaction template. The zero value is
// the only uninitialized state; NewTemplate never returns one.
type Template struct {
	id          string
	pattern     string
	ligand      string
	attachments [2]int
	compiled    Compiled
}

// TemplateOption customises NewTemplate.
type TemplateOption func(*Template)

// WithLigand records the core fragment the template was derived from.
func WithLigand(smiles string) TemplateOption {
	return func(t *Template) { t.ligand = smiles }
}

// WithAttachments records the attachment atom indices of the source molecule.
func WithAttachments(i, j int) TemplateOption {
	return func(t *Template) { t.attachments = [2]int{i, j} }
}

// NewTemplate compiles pattern with engine and validates the result.
func NewTemplate(engine Engine, pattern string, opts ...TemplateOption) (*Template, error) {
	if engine == nil {
		return nil, errors.InvalidTemplate("no reaction engine")
	}
	compiled, err := engine.BuildReaction(pattern)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeUnknown, "compile reaction pattern")
	}
	t := &Template{
		id:          uuid.NewSHA1(templateNamespace, []byte(pattern)).String(),
		pattern:     pattern,
		attachments: [2]int{-1, -1},
		compiled:    compiled,
	}
	for _, opt := range opts {
		opt(t)
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}

// Validate reports InvalidTemplate for nil, zero-value or product-less templates.
func (t *Template) Validate() error {
	if t == nil || t.compiled == nil {
		return errors.InvalidTemplate("reaction template is not initialized")
	}
	if t.compiled.NumReactants() < 1 || t.compiled.NumProducts() < 1 {
		return errors.InvalidTemplate("reaction template needs reactants and products").
			WithDetail("pattern=" + t.pattern)
	}
	return nil
}

// ID is a stable identifier derived from the pattern.
func (t *Template) ID() string { return t.id }

// Pattern returns the source pattern string.
func (t *Template) Pattern() string { return t.pattern }

// Ligand returns the core fragment SMILES, if recorded.
func (t *Template) Ligand() string { return t.ligand }

// Attachments returns the source attachment atoms, or -1s when unknown.
func (t *Template) Attachments() (int, int) { return t.attachments[0], t.attachments[1] }

// Compiled returns the engine representation.
func (t *Template) Compiled() Compiled { return t.compiled }

// NumReactants returns the number of reactant templates.
func (t *Template) NumReactants() int {
	if t == nil || t.compiled == nil {
		return 0
	}
	return t.compiled.NumReactants()
}

func (t *Template) String() string {
	if t == nil {
		return "<nil>"
	}
	return t.pattern
}

//Personal.AI order the ending
