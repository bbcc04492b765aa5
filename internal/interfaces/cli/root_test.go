package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/SymRxn/internal/application/enumeration"
	"github.com/turtacn/SymRxn/internal/infrastructure/chem"
	"github.com/turtacn/SymRxn/internal/interfaces/http/handlers"
	"github.com/turtacn/SymRxn/internal/testutil"
	"github.com/turtacn/SymRxn/pkg/errors"
)

const stilbeneBridge = "([cH1:1]).([cH1:2])>>[cH1:1]/C=C/[cH1:2]"

const baseConfig = `log:
  level: error
  format: json
metrics:
  enabled: false
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o600))
	return p
}

// execute runs the root command with a temporary config file.
func execute(t *testing.T, cfg string, args ...string) (string, string, error) {
	t.Helper()
	cfgPath := writeFile(t, t.TempDir(), "symrxn.yaml", cfg)

	var stdout, stderr bytes.Buffer
	cmd := NewRootCommand()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(append([]string{"--config", cfgPath}, args...))
	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func canonical(t *testing.T, smiles string) string {
	t.Helper()
	oracle := chem.NewOracle()
	g, err := oracle.ParseSMILES(smiles)
	require.NoError(t, err)
	return oracle.CanonicalSerialize(g)
}

func TestNewRootCommand_Structure(t *testing.T) {
	cmd := NewRootCommand()
	assert.Equal(t, "symrxn", cmd.Use)
	assert.NotEmpty(t, cmd.Short)
	assert.NotEmpty(t, cmd.Long)

	var names []string
	for _, sub := range cmd.Commands() {
		names = append(names, sub.Name())
	}
	assert.ElementsMatch(t, []string{"generate", "run", "rank"}, names)

	for _, flag := range []string{"config", "log-level", "output", "verbose", "timeout", "watch-config", "status-addr"} {
		assert.NotNil(t, cmd.PersistentFlags().Lookup(flag), flag)
	}
	assert.Equal(t, "text", cmd.PersistentFlags().Lookup("output").DefValue)
}

func TestRoot_InvalidOutputFormat(t *testing.T) {
	dir := t.TempDir()
	mol := writeFile(t, dir, "benzene.smi", "c1ccccc1 benzene\n")
	_, _, err := execute(t, baseConfig, "--output", "xml", "rank", mol)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeBadRequest))
}

func TestRoot_InvalidLogLevel(t *testing.T) {
	dir := t.TempDir()
	mol := writeFile(t, dir, "benzene.smi", "c1ccccc1\n")
	_, _, err := execute(t, baseConfig, "--log-level", "loud", "rank", mol)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeBadRequest))
}

func TestRoot_InvalidConfig(t *testing.T) {
	dir := t.TempDir()
	mol := writeFile(t, dir, "benzene.smi", "c1ccccc1\n")
	_, _, err := execute(t, "cache:\n  backend: disk\n", "rank", mol)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeConfigInvalid))
}

func TestGenerate_Benzene(t *testing.T) {
	dir := t.TempDir()
	mol := writeFile(t, dir, "benzene.smi", "c1ccccc1 benzene\n")

	stdout, _, err := execute(t, baseConfig, "-o", "json", "generate", mol)
	require.NoError(t, err)

	var res GenerateResult
	require.NoError(t, json.Unmarshal([]byte(stdout), &res))
	require.Len(t, res.Templates, 1)
	assert.Equal(t, stilbeneBridge, res.Templates[0].Pattern)
	assert.Equal(t, [2]int{0, 1}, res.Templates[0].Attachments)
	assert.Equal(t, canonical(t, "c1ccc(cc1)C=Cc1ccccc1"), res.Templates[0].Key)
	assert.Len(t, res.Templates[0].ID, 36)
	assert.Equal(t, 1, res.Molecules)
	assert.Equal(t, 15, res.PairsConsidered)
	assert.Equal(t, 15, res.Built)
	assert.Equal(t, 14, res.Duplicates)
	assert.Empty(t, res.BadFiles)
}

func TestGenerate_Molfiles(t *testing.T) {
	benzene := testutil.WriteFile(t, "benzene.mol", testutil.BenzeneMolBlock)
	ethanol := testutil.WriteFile(t, "ethanol.mol", testutil.EthanolMolBlock)

	stdout, _, err := execute(t, baseConfig, "-o", "json", "generate", benzene, ethanol)
	require.NoError(t, err)

	var res GenerateResult
	require.NoError(t, json.Unmarshal([]byte(stdout), &res))
	assert.Equal(t, 2, res.Molecules)
	require.Len(t, res.Templates, 1)
	assert.Equal(t, stilbeneBridge, res.Templates[0].Pattern)
}

func TestGenerate_TextAndTable(t *testing.T) {
	dir := t.TempDir()
	mol := writeFile(t, dir, "benzene.smi", "c1ccccc1\n")

	stdout, _, err := execute(t, baseConfig, "generate", mol)
	require.NoError(t, err)
	assert.Contains(t, stdout, stilbeneBridge)
	assert.Contains(t, stdout, "1 template(s) from 1 molecule(s)")

	stdout, _, err = execute(t, baseConfig, "-o", "table", "generate", mol)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(stdout), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "KEY"))
	assert.Contains(t, lines[2], "0,1")
}

func TestGenerate_Flags(t *testing.T) {
	dir := t.TempDir()
	mol := writeFile(t, dir, "benzene.smi", "c1ccccc1\n")

	stdout, _, err := execute(t, baseConfig, "-o", "json", "generate", "--linker", "ligand", mol)
	require.NoError(t, err)
	var res GenerateResult
	require.NoError(t, json.Unmarshal([]byte(stdout), &res))
	assert.Len(t, res.Templates, 3)
	for _, tmpl := range res.Templates {
		assert.NotEmpty(t, tmpl.Ligand)
	}

	stdout, _, err = execute(t, baseConfig, "-o", "json", "generate", "--max-pairs", "2", mol)
	require.NoError(t, err)
	res = GenerateResult{}
	require.NoError(t, json.Unmarshal([]byte(stdout), &res))
	assert.Equal(t, 13, res.Skipped["pair_limit"])

	_, _, err = execute(t, baseConfig, "generate", "--linker", "C=C", mol)
	assert.True(t, errors.IsCode(err, errors.ErrCodeLinkerInvalid))

	_, _, err = execute(t, baseConfig, "generate", "--max-pairs", "-1", mol)
	assert.True(t, errors.IsCode(err, errors.ErrCodeBadRequest))
}

func TestGenerate_BadFilesAreListed(t *testing.T) {
	dir := t.TempDir()
	mol := writeFile(t, dir, "benzene.smi", "c1ccccc1\n")
	missing := filepath.Join(dir, "missing.mol")
	garbage := writeFile(t, dir, "garbage.smi", "C1CC\n")

	stdout, stderr, err := execute(t, baseConfig, "-o", "json", "generate", missing, mol, garbage)
	require.NoError(t, err)
	assert.Contains(t, stderr, "Cannot read 2 file(s)")
	assert.Contains(t, stderr, missing)

	var res GenerateResult
	require.NoError(t, json.Unmarshal([]byte(stdout), &res))
	require.Len(t, res.BadFiles, 2)
	assert.Equal(t, string(errors.ErrCodeNotFound), res.BadFiles[0].Code)
	assert.Equal(t, garbage, res.BadFiles[1].Path)
	assert.Len(t, res.Templates, 1)

	_, _, err = execute(t, baseConfig, "generate", missing)
	assert.True(t, errors.IsCode(err, errors.ErrCodeFileUnreadable))
}

func TestGenerate_RedisKeyCache(t *testing.T) {
	mr := miniredis.RunT(t)
	dir := t.TempDir()
	mol := writeFile(t, dir, "benzene.smi", "c1ccccc1\n")
	cfg := baseConfig + "cache:\n  backend: redis\n  redis:\n    addr: " + mr.Addr() + "\n"

	_, _, err := execute(t, cfg, "generate", mol)
	require.NoError(t, err)

	keys := mr.Keys()
	require.Len(t, keys, 1)
	assert.True(t, strings.HasPrefix(keys[0], "symrxn:key:"))
	stored, err := mr.Get(keys[0])
	require.NoError(t, err)
	assert.Equal(t, canonical(t, "c1ccc(cc1)C=Cc1ccccc1"), stored)
}

func TestGenerate_RedisUnavailableFallsBack(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	dir := t.TempDir()
	mol := writeFile(t, dir, "benzene.smi", "c1ccccc1\n")
	cfg := baseConfig + "cache:\n  backend: redis\n  redis:\n    addr: " + addr + "\n    dial_timeout: 200ms\n"

	stdout, _, err := execute(t, cfg, "generate", mol)
	require.NoError(t, err)
	assert.Contains(t, stdout, stilbeneBridge)
}

func TestRun_ExplicitReaction(t *testing.T) {
	dir := t.TempDir()
	mol := writeFile(t, dir, "benzene.smi", "c1ccccc1 benzene\n")

	stdout, _, err := execute(t, baseConfig, "-o", "json", "run", "--reaction", stilbeneBridge, mol)
	require.NoError(t, err)

	var res RunResult
	require.NoError(t, json.Unmarshal([]byte(stdout), &res))
	assert.Len(t, res.RunID, 36)
	assert.Equal(t, []string{canonical(t, "c1ccc(cc1)C=Cc1ccccc1")}, res.ProductKeys())
	assert.Equal(t, "C14H12", res.Products[0].Formula)
	require.Len(t, res.Units, 1)
	assert.Equal(t, "benzene", res.Units[0].Molecule)
	assert.Equal(t, stilbeneBridge, res.Units[0].Reaction)
	assert.Len(t, res.Units[0].TemplateID, 36)
	assert.Empty(t, res.InvalidReactions)
	assert.Zero(t, res.Failed)
}

func TestRun_DefaultReaction(t *testing.T) {
	dir := t.TempDir()
	mol := writeFile(t, dir, "benzene.smi", "c1ccccc1\n")

	stdout, _, err := execute(t, baseConfig, "-o", "json", "run", mol)
	require.NoError(t, err)
	var res RunResult
	require.NoError(t, json.Unmarshal([]byte(stdout), &res))
	require.Len(t, res.Units, 1)
	assert.Equal(t, DefaultReaction, res.Units[0].Reaction)
	assert.Len(t, res.Products, 1)
}

func TestRun_ReactionFileAndProgress(t *testing.T) {
	dir := t.TempDir()
	benzene := writeFile(t, dir, "benzene.smi", "c1ccccc1\n")
	chloro := writeFile(t, dir, "chloropropane.smi", "CCCl\n")
	rxns := writeFile(t, dir, "reactions.txt",
		"# bridges\n"+stilbeneBridge+"\n\n[C:1]Cl>>[C:1]O  hydrolysis\n"+stilbeneBridge+"\n")

	stdout, stderr, err := execute(t, baseConfig, "-o", "json", "-v", "run", "-r", rxns, "-p", "2", benzene, chloro)
	require.NoError(t, err)

	var res RunResult
	require.NoError(t, json.Unmarshal([]byte(stdout), &res))
	require.Len(t, res.Units, 4)
	assert.Equal(t, stilbeneBridge, res.Units[0].Reaction)
	assert.Equal(t, "[C:1]Cl>>[C:1]O", res.Units[2].Reaction)
	assert.Empty(t, res.Units[1].Products)
	assert.Equal(t, []string{"CCO"}, res.Units[3].Products)
	assert.Equal(t, []string{canonical(t, "c1ccc(cc1)C=Cc1ccccc1"), "CCO"}, res.ProductKeys())
	assert.Equal(t, "C2H6O", res.Products[1].Formula)
	assert.Equal(t, res.Units[0].TemplateID, res.Units[1].TemplateID)
	assert.NotEqual(t, res.Units[0].TemplateID, res.Units[2].TemplateID)
	assert.Contains(t, stderr, "[4/4]")
}

func TestRun_Errors(t *testing.T) {
	dir := t.TempDir()
	mol := writeFile(t, dir, "benzene.smi", "c1ccccc1\n")

	_, _, err := execute(t, baseConfig, "run", "-r", "C>>", mol)
	assert.True(t, errors.IsCode(err, errors.ErrCodePatternError))

	_, stderr, err := execute(t, baseConfig, "run", "-r", "C>>", "-r", "[C:1]>>[C:1", mol)
	assert.True(t, errors.IsCode(err, errors.ErrCodePatternError))
	assert.Contains(t, stderr, "Cannot compile 2 reaction(s)")

	_, _, err = execute(t, baseConfig, "run", "-p", "0", mol)
	assert.True(t, errors.IsCode(err, errors.ErrCodeBadRequest))

	_, _, err = execute(t, baseConfig, "run")
	assert.Error(t, err)
}

func TestRun_StatusServer(t *testing.T) {
	dir := t.TempDir()
	mol := writeFile(t, dir, "benzene.smi", "c1ccccc1\n")

	stdout, _, err := execute(t, baseConfig, "--status-addr", "127.0.0.1:0", "run", "-r", stilbeneBridge, mol)
	require.NoError(t, err)
	assert.Contains(t, stdout, "1 product(s) from 1 unit(s)")

	_, _, err = execute(t, baseConfig, "--status-addr", "127.0.0.1:-1", "run", mol)
	assert.True(t, errors.IsCode(err, errors.ErrCodeConfigInvalid))
}

func TestRun_InvalidPatternKeepsBatchGoing(t *testing.T) {
	dir := t.TempDir()
	mol := writeFile(t, dir, "benzene.smi", "c1ccccc1\n")
	rxns := writeFile(t, dir, "reactions.txt", stilbeneBridge+"\n[C:1]>>[C:1\n")

	stdout, stderr, err := execute(t, baseConfig, "-o", "json", "run", "-r", rxns, mol)
	require.NoError(t, err)

	var res RunResult
	require.NoError(t, json.Unmarshal([]byte(stdout), &res))
	require.Len(t, res.Units, 1)
	assert.Equal(t, stilbeneBridge, res.Units[0].Reaction)
	assert.Equal(t, []string{canonical(t, "c1ccc(cc1)C=Cc1ccccc1")}, res.ProductKeys())
	require.Len(t, res.InvalidReactions, 1)
	assert.Equal(t, "[C:1]>>[C:1", res.InvalidReactions[0].Pattern)
	assert.Equal(t, string(errors.ErrCodePatternError), res.InvalidReactions[0].Code)
	assert.Contains(t, stderr, "Cannot compile 1 reaction(s)")
	assert.Contains(t, stderr, "[C:1]>>[C:1")

	stdout, _, err = execute(t, baseConfig, "-o", "text", "run", "-r", rxns, mol)
	require.NoError(t, err)
	assert.Contains(t, stdout, "1 product(s) from 1 unit(s), 0 failed, 1 invalid reaction(s)")
	assert.Contains(t, stdout, "\tC14H12\n")
}

func TestBuildTemplates_CollectsFailures(t *testing.T) {
	log := testutil.NewMockLogger()
	templates, failed := buildTemplates(chem.NewOracle(), []string{"C>>", stilbeneBridge, "[C:1]Cl>>[C:1]O"}, log)
	require.Len(t, templates, 2)
	assert.Equal(t, stilbeneBridge, templates[0].Pattern())
	require.Len(t, failed, 1)
	assert.Equal(t, "C>>", failed[0].Pattern)
	assert.True(t, errors.IsCode(failed[0].cause, errors.ErrCodePatternError))
	assert.True(t, log.HasMessage("warn", "cannot compile reaction"))

	var buf bytes.Buffer
	reportBadPatterns(&buf, failed)
	assert.Equal(t, "Cannot compile 1 reaction(s):\n  C>>: "+failed[0].Err+"\n", buf.String())
	buf.Reset()
	reportBadPatterns(&buf, nil)
	assert.Empty(t, buf.String())
}

func TestProgressFunc(t *testing.T) {
	cmd := NewRunCmd()
	var stderr bytes.Buffer
	cmd.SetErr(&stderr)

	assert.Nil(t, progressFunc(cmd, &CLIContext{}))

	status := handlers.NewProgressHandler()
	fn := progressFunc(cmd, &CLIContext{Progress: status, Verbose: true})
	require.NotNil(t, fn)
	fn(enumeration.Progress{Done: 1, Total: 2, Template: "t", Target: "m"})

	assert.Equal(t, 1, status.Snapshot().Done)
	assert.Equal(t, "[1/2] t on m\n", stderr.String())
}

func TestRank_Toluene(t *testing.T) {
	dir := t.TempDir()
	mol := writeFile(t, dir, "toluene.smi", "Cc1ccccc1 toluene\n")

	stdout, _, err := execute(t, baseConfig, "-o", "json", "rank", mol)
	require.NoError(t, err)

	var res RankResult
	require.NoError(t, json.Unmarshal([]byte(stdout), &res))
	assert.Equal(t, "toluene", res.Molecule)
	require.Len(t, res.Atoms, 7)
	assert.Equal(t, [][]int{{2, 6}, {3, 5}}, res.Orbits)
	assert.Equal(t, 2, res.Pairs)
	assert.Equal(t, res.Atoms[2].Rank, res.Atoms[6].Rank)
	assert.Equal(t, 2, res.Atoms[6].Representative)
	assert.Equal(t, 1, res.Atoms[4].OrbitSize)
	assert.Equal(t, 3, res.Atoms[0].HCount)
	assert.Equal(t, 0, res.Atoms[1].HCount)
	assert.Equal(t, "C7H8", res.Formula)

	stdout, _, err = execute(t, baseConfig, "-o", "table", "rank", mol)
	require.NoError(t, err)
	assert.Len(t, strings.Split(strings.TrimSpace(stdout), "\n"), 9)
}

func TestRank_MissingFile(t *testing.T) {
	_, _, err := execute(t, baseConfig, "rank", filepath.Join(t.TempDir(), "nope.mol"))
	assert.True(t, errors.IsCode(err, errors.ErrCodeNotFound))
}

func TestFormatTable(t *testing.T) {
	out := FormatTable([]string{"A", "LONG"}, [][]string{{"xyz", "1"}, {"q"}})
	assert.Equal(t, "A    LONG\n---  ----\nxyz  1   \nq        \n", out)
	assert.Empty(t, FormatTable(nil, nil))
}

func TestLoadPatterns(t *testing.T) {
	dir := t.TempDir()
	file := writeFile(t, dir, "rxn.txt", "# only comments\n[C:1]Cl>>[C:1]O\n")

	got, err := loadPatterns([]string{"  ", stilbeneBridge, file, stilbeneBridge})
	require.NoError(t, err)
	assert.Equal(t, []string{stilbeneBridge, "[C:1]Cl>>[C:1]O"}, got)
}

//Personal.AI order the ending
