package chem_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/SymRxn/internal/domain/molecule"
	"github.com/turtacn/SymRxn/internal/domain/reaction"
	"github.com/turtacn/SymRxn/internal/infrastructure/chem"
	"github.com/turtacn/SymRxn/internal/testutil"
	"github.com/turtacn/SymRxn/pkg/errors"
)

const methoxideMolBlock = `methoxide
  SymRxn

  2  1  0  0  0  0  0  0  0  0999 V2000
    0.0000    0.0000    0.0000 C   0  0  0  0  0  0  0  0  0  0  0  0
    1.4000    0.0000    0.0000 O   0  0  0  0  0  0  0  0  0  0  0  0
  1  2  1  0
M  CHG  1   2  -1
M  END
`

func TestOracle_ParseFile_Molfile(t *testing.T) {
	o := chem.NewOracle()

	g, err := o.ParseFile(testutil.WriteFile(t, "benzene.mol", testutil.BenzeneMolBlock))
	require.NoError(t, err)
	assert.Equal(t, "benzene", g.Name)
	assert.Equal(t, "c1ccccc1", o.CanonicalSerialize(g))

	g, err = o.ParseFile(testutil.WriteFile(t, "ethanol.mdl", testutil.EthanolMolBlock))
	require.NoError(t, err)
	assert.Equal(t, "ethanol", g.Name)
	assert.Equal(t, "CCO", o.CanonicalSerialize(g))

	g, err = o.ParseFile(testutil.WriteFile(t, "methoxide.sdf", methoxideMolBlock+"$$$$\n"))
	require.NoError(t, err)
	assert.Equal(t, "C[O-]", o.CanonicalSerialize(g))
}

func TestOracle_ParseFile_SniffsMolfile(t *testing.T) {
	o := chem.NewOracle()
	g, err := o.ParseFile(testutil.WriteFile(t, "benzene.txt", testutil.BenzeneMolBlock))
	require.NoError(t, err)
	assert.Equal(t, 6, g.NumAtoms())
}

func TestOracle_ParseFile_SMILES(t *testing.T) {
	o := chem.NewOracle()
	g, err := o.ParseFile(testutil.WriteFile(t, "input.smi", "OCC ethyl alcohol\nCCCC\n"))
	require.NoError(t, err)
	assert.Equal(t, "ethyl alcohol", g.Name)
	assert.Equal(t, "CCO", o.CanonicalSerialize(g))

	g, err = o.ParseFile(testutil.WriteFile(t, "anon.smi", "c1ccccc1"))
	require.NoError(t, err)
	assert.Equal(t, "anon", g.Name)
}

func TestOracle_ParseFile_Errors(t *testing.T) {
	o := chem.NewOracle()

	_, err := o.ParseFile("/nonexistent/dir/missing.mol")
	assert.True(t, errors.IsNotFound(err))

	_, err = o.ParseFile(testutil.WriteFile(t, "notes.txt", "hello"))
	assert.True(t, errors.IsCode(err, errors.ErrCodeMoleculeFormatUnsupported))

	tests := map[string]string{
		"short.mol":   "title\n\n",
		"counts.mol":  "t\n\n\n  x  y\nM  END\n",
		"v3000.mol":   "t\n\n\n  0  0  0     0  0            999 V3000\nM  END\n",
		"atoms.mol":   "t\n\n\n  2  0  0  0  0  0  0  0  0  0999 V2000\n    0.0 0.0 0.0 C 0 0\nM  END\n",
		"elem.mol":    "t\n\n\n  1  0  0  0  0  0  0  0  0  0999 V2000\n    0.0000    0.0000    0.0000 Xq  0  0\nM  END\n",
		"neg.mol":     "t\n\n\n -5  0  0  0  0  0  0  0  0  0999 V2000\nM  END\n",
		"negbond.mol": "t\n\n\n  1 -2  0  0  0  0  0  0  0  0999 V2000\n    0.0000    0.0000    0.0000 C   0  0\nM  END\n",
		"huge.mol":    "t\n\n\n12345 0\nM  END\n",
		"valence.mol": "t\n\n\n  4  3  0  0  0  0  0  0  0  0999 V2000\n" +
			"    0.0000    0.0000    0.0000 O   0  0\n    1.0000    0.0000    0.0000 C   0  0\n" +
			"    0.0000    1.0000    0.0000 C   0  0\n   -1.0000    0.0000    0.0000 C   0  0\n" +
			"  1  2  1  0\n  1  3  1  0\n  1  4  1  0\nM  END\n",
		"valence.smi": "C#C=C overbonded\n",
		"bad.smi":     "C1CC",
		"empty.smi":   "\n",
	}
	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := o.ParseFile(testutil.WriteFile(t, name, content))
			assert.True(t, errors.IsCode(err, errors.ErrCodeParseError), "%v", err)
		})
	}
}

func TestOracle_ParseSMILES(t *testing.T) {
	o := chem.NewOracle()
	g, err := o.ParseSMILES("[H]C([H])([H])[H]")
	require.NoError(t, err)
	assert.Equal(t, 1, g.NumAtoms())
	assert.Equal(t, 4, g.Atoms[0].HCount)

	_, err = o.ParseSMILES("C(")
	assert.True(t, errors.IsCode(err, errors.ErrCodeParseError))
}

func TestOracle_CanonicalRank(t *testing.T) {
	o := chem.NewOracle()
	g, err := o.ParseSMILES("Cc1ccc(C)cc1")
	require.NoError(t, err)
	p := molecule.SymmetricOrbits(o.CanonicalRank(g))
	require.Len(t, p, 3)
	assert.Equal(t, []int{0, 5}, p[0].Members)
	assert.Equal(t, []int{1, 4}, p[1].Members)
	assert.Equal(t, []int{2, 3, 6, 7}, p[2].Members)
}

func TestOracle_CanonicalRank_TwoOrbitSizes(t *testing.T) {
	o := chem.NewOracle()
	g, err := o.ParseSMILES("CC(C)C(C)C")
	require.NoError(t, err)

	orbits := molecule.SymmetricOrbits(o.CanonicalRank(g))
	require.Len(t, orbits, 2)
	assert.Equal(t, []int{0, 2, 4, 5}, orbits[0].Members)
	assert.Equal(t, []int{1, 3}, orbits[1].Members)
	assert.Equal(t, 7, orbits.PairCount())
}

func TestOracle_Hydrogens(t *testing.T) {
	o := chem.NewOracle()
	g, err := o.ParseSMILES("CC")
	require.NoError(t, err)
	h := o.AddHydrogens(g)
	assert.Equal(t, 8, h.NumAtoms())
	assert.Equal(t, 2, o.RemoveHydrogens(h).NumAtoms())
	assert.Nil(t, o.AddHydrogens(nil))
	assert.Nil(t, o.RemoveHydrogens(nil))
}

func TestOracle_BuildAndApply(t *testing.T) {
	o := chem.NewOracle(chem.WithMaxProducts(100), chem.WithLogger(testutil.NewMockLogger()))
	rxn, err := o.BuildReaction("([cH1:1]).([cH1:2])>>[cH1:1]/C=C/[cH1:2]")
	require.NoError(t, err)

	benzene, err := o.ParseSMILES("c1ccccc1")
	require.NoError(t, err)
	products, err := o.ApplyReaction(rxn, []reaction.Reactant{{Graph: benzene}, {Graph: benzene}})
	require.NoError(t, err)
	assert.Len(t, products, 36)

	stilbene, err := o.ParseSMILES("C(=Cc1ccccc1)c1ccccc1")
	require.NoError(t, err)
	assert.Equal(t, o.CanonicalSerialize(stilbene), o.CanonicalSerialize(products[0][0]))

	_, err = o.BuildReaction("not a reaction")
	assert.True(t, errors.IsCode(err, errors.ErrCodePatternError))
}

func TestOracle_ApplyReaction_LimitIsLogged(t *testing.T) {
	log := testutil.NewMockLogger()
	o := chem.NewOracle(chem.WithMaxProducts(4), chem.WithLogger(log))
	rxn, err := o.BuildReaction("([cH1:1]).([cH1:2])>>[cH1:1]/C=C/[cH1:2]")
	require.NoError(t, err)
	benzene, err := o.ParseSMILES("c1ccccc1")
	require.NoError(t, err)

	products, err := o.ApplyReaction(rxn, []reaction.Reactant{{Graph: benzene}, {Graph: benzene}})
	require.NoError(t, err)
	assert.Len(t, products, 4)
	assert.True(t, log.HasMessage("warn", "reaction product limit reached"))
}

type foreignCompiled struct{}

func (foreignCompiled) Pattern() string   { return "" }
func (foreignCompiled) NumReactants() int { return 0 }
func (foreignCompiled) NumProducts() int  { return 0 }

func TestOracle_ApplyReaction_DropsOverValentProducts(t *testing.T) {
	log := testutil.NewMockLogger()
	o := chem.NewOracle(chem.WithLogger(log))
	rxn, err := o.BuildReaction("[c:1]>>[c:1]Cl")
	require.NoError(t, err)
	toluene, err := o.ParseSMILES("Cc1ccccc1")
	require.NoError(t, err)

	products, err := o.ApplyReaction(rxn, []reaction.Reactant{{Graph: toluene}})
	require.NoError(t, err)
	assert.Len(t, products, 5)
	entries := log.Find("debug", "products dropped for impossible valence")
	require.Len(t, entries, 1)
	dropped, ok := entries[0].Field("dropped")
	require.True(t, ok)
	assert.Equal(t, 1, dropped)
}

func TestOracle_ApplyReaction_ForeignCompiled(t *testing.T) {
	_, err := chem.NewOracle().ApplyReaction(foreignCompiled{}, nil)
	assert.True(t, errors.IsCode(err, errors.ErrCodeInvalidTemplate))
}

func TestOracle_Fragments(t *testing.T) {
	o := chem.NewOracle()
	g, err := o.ParseSMILES("CCO")
	require.NoError(t, err)
	frags, err := o.FragmentAtBonds(g, []int{1})
	require.NoError(t, err)
	require.Len(t, frags, 2)
	assert.Same(t, frags[0], o.ChooseLargestFragment(frags))
}

//Personal.AI order the ending
