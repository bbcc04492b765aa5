package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/turtacn/SymRxn/internal/domain/molecule"
	"github.com/turtacn/SymRxn/pkg/errors"
)

// NewRankCmd creates the rank subcommand.
func NewRankCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rank <molfile>",
		Short: "Print canonical atom ranks and symmetry orbits",
		Args:  cobra.ExactArgs(1),
		RunE:  runRank,
	}
}

// AtomRank is one heavy atom with its rank and orbit.
type AtomRank struct {
	Index          int    `json:"index"`
	Symbol         string `json:"symbol"`
	HCount         int    `json:"h_count"`
	Rank           int    `json:"rank"`
	Representative int    `json:"representative"`
	OrbitSize      int    `json:"orbit_size"`
}

// RankResult is the output of the rank command.
type RankResult struct {
	Molecule  string     `json:"molecule"`
	Formula   string     `json:"formula"`
	Canonical string     `json:"canonical"`
	Atoms     []AtomRank `json:"atoms"`
	Orbits    [][]int    `json:"symmetric_orbits"`
	Pairs     int        `json:"pairs"`
}

func (r *RankResult) TableHeaders() []string {
	return []string{"ATOM", "SYMBOL", "H", "RANK", "ORBIT"}
}

func (r *RankResult) TableRows() [][]string {
	rows := make([][]string, 0, len(r.Atoms))
	for _, a := range r.Atoms {
		rows = append(rows, []string{strconv.Itoa(a.Index), a.Symbol, strconv.Itoa(a.HCount), strconv.Itoa(a.Rank), strconv.Itoa(a.Representative)})
	}
	return rows
}

func (r *RankResult) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s %s %s\n", r.Molecule, r.Formula, r.Canonical)
	for _, a := range r.Atoms {
		fmt.Fprintf(&sb, "%d\t%s\t%d\t%d\n", a.Index, a.Symbol, a.Rank, a.Representative)
	}
	for _, o := range r.Orbits {
		fmt.Fprintf(&sb, "orbit %v\n", o)
	}
	fmt.Fprintf(&sb, "%d symmetric pair(s)\n", r.Pairs)
	return sb.String()
}

func runRank(cmd *cobra.Command, args []string) error {
	cliCtx, err := GetCLIContext(cmd)
	if err != nil {
		return err
	}
	g, err := cliCtx.Oracle.ParseFile(args[0])
	if err != nil {
		return err
	}
	g = cliCtx.Oracle.RemoveHydrogens(g)
	if g.IsEmpty() {
		return errors.New(errors.ErrCodeMoleculeEmpty, "molecule has no heavy atoms")
	}

	ranks := cliCtx.Oracle.CanonicalRank(g)
	partition := molecule.AnalyzeOrbits(ranks)
	symmetric := partition.Symmetric()

	result := &RankResult{
		Molecule:  g.Name,
		Formula:   g.Formula(),
		Canonical: cliCtx.Oracle.CanonicalSerialize(g),
		Pairs:     symmetric.PairCount(),
		Orbits:    [][]int{},
	}
	for i, a := range g.Atoms {
		o, _ := partition.OrbitOf(i)
		result.Atoms = append(result.Atoms, AtomRank{
			Index:          i,
			Symbol:         a.Symbol,
			HCount:         g.TotalHCount(i),
			Rank:           ranks[i],
			Representative: o.Representative(),
			OrbitSize:      o.Size(),
		})
	}
	for _, o := range symmetric {
		result.Orbits = append(result.Orbits, o.Members)
	}
	return PrintResult(cmd, result)
}

//Personal.AI order the ending
