package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/turtacn/SymRxn/internal/application/enumeration"
	"github.com/turtacn/SymRxn/internal/domain/molecule"
	"github.com/turtacn/SymRxn/pkg/errors"
)

// DefaultReaction joins two ring CH atoms with a trans vinylene bridge.
const DefaultReaction = "([RH1:1]).([RH1:2])>>[RH1:1]/C=C/[RH1:2]"

type runOptions struct {
	reactions   []string
	parallelism int
}

// NewRunCmd creates the run subcommand.
func NewRunCmd() *cobra.Command {
	opts := &runOptions{}

	cmd := &cobra.Command{
		Use:   "run <molfile>...",
		Short: "Apply reaction templates to molecules and list distinct products",
		Long: "Applies every reaction to every molecule, one pass per symmetric orbit, and\n" +
			"prints the canonical SMILES of each distinct product.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRun(cmd, opts, args)
		},
	}

	flags := cmd.Flags()
	flags.StringArrayVarP(&opts.reactions, "reaction", "r", nil,
		"reaction pattern or file of patterns, repeatable (default "+DefaultReaction+")")
	flags.IntVarP(&opts.parallelism, "parallelism", "p", 0, "orbit passes run concurrently per template (default from config)")
	return cmd
}

// UnitView is one template applied to one molecule. Products are sorted.
type UnitView struct {
	Reaction   string   `json:"reaction"`
	TemplateID string   `json:"template_id"`
	Molecule   string   `json:"molecule"`
	Products   []string `json:"products"`
	Error      string   `json:"error,omitempty"`
}

// ProductView is one distinct product of a run.
type ProductView struct {
	Key     string `json:"key"`
	Formula string `json:"formula"`
}

// RunResult is the output of the run command.
type RunResult struct {
	RunID            string           `json:"run_id"`
	Units            []UnitView       `json:"units"`
	Products         []ProductView    `json:"products"`
	Failed           int              `json:"failed"`
	InvalidReactions []PatternFailure `json:"invalid_reactions,omitempty"`
	BadFiles         []FileError      `json:"bad_files,omitempty"`
}

// ProductKeys returns the product keys in first-seen order.
func (r *RunResult) ProductKeys() []string {
	return lo.Map(r.Products, func(p ProductView, _ int) string { return p.Key })
}

func (r *RunResult) TableHeaders() []string {
	return []string{"REACTION", "MOLECULE", "PRODUCTS", "STATUS"}
}

func (r *RunResult) TableRows() [][]string {
	rows := make([][]string, 0, len(r.Units))
	for _, u := range r.Units {
		status := enumeration.StatusOK
		if u.Error != "" {
			status = enumeration.StatusFailed + ": " + u.Error
		}
		rows = append(rows, []string{u.Reaction, u.Molecule, strconv.Itoa(len(u.Products)), status})
	}
	return rows
}

func (r *RunResult) String() string {
	var sb strings.Builder
	for _, p := range r.Products {
		fmt.Fprintf(&sb, "%s\t%s\n", p.Key, p.Formula)
	}
	fmt.Fprintf(&sb, "%d product(s) from %d unit(s), %d failed", len(r.Products), len(r.Units), r.Failed)
	if len(r.InvalidReactions) > 0 {
		fmt.Fprintf(&sb, ", %d invalid reaction(s)", len(r.InvalidReactions))
	}
	fmt.Fprintf(&sb, " (run %s)\n", r.RunID)
	return sb.String()
}

func runRun(cmd *cobra.Command, opts *runOptions, args []string) error {
	cliCtx, err := GetCLIContext(cmd)
	if err != nil {
		return err
	}

	values := opts.reactions
	if len(values) == 0 {
		values = []string{DefaultReaction}
	}
	patterns, err := loadPatterns(values)
	if err != nil {
		return err
	}
	if len(patterns) == 0 {
		return errors.InvalidParam("no reaction patterns given")
	}
	templates, invalid := buildTemplates(cliCtx.Oracle, patterns, cliCtx.Logger)
	reportBadPatterns(cmd.ErrOrStderr(), invalid)
	if len(templates) == 0 {
		return invalid[0].cause
	}

	parallelism := cliCtx.Config.Executor.Parallelism
	if cmd.Flags().Changed("parallelism") {
		if opts.parallelism < 1 {
			return errors.InvalidParam("--parallelism must be >= 1")
		}
		parallelism = opts.parallelism
	}

	mols, bad := loadMolecules(cliCtx.Oracle, args, cliCtx.Logger)
	reportBadFiles(cmd.ErrOrStderr(), bad)
	if len(mols) == 0 {
		return errors.New(errors.ErrCodeFileUnreadable, "no readable molecule files")
	}

	batchOpts := []enumeration.BatchOption{
		enumeration.WithConcurrency(cliCtx.Config.Batch.Concurrency),
		enumeration.WithBatchLogger(cliCtx.Logger),
		enumeration.WithBatchMetrics(cliCtx.Metrics),
	}
	if progress := progressFunc(cmd, cliCtx); progress != nil {
		batchOpts = append(batchOpts, enumeration.WithProgress(progress))
	}
	runner := enumeration.NewBatchRunner(newExecutor(cliCtx, parallelism), batchOpts...)

	res, err := runner.RunAll(cmd.Context(), templates, mols)
	if err != nil {
		return err
	}

	result := &RunResult{
		RunID:            res.RunID,
		Products:         []ProductView{},
		Failed:           res.Failed,
		InvalidReactions: invalid,
		BadFiles:         bad,
	}
	res.Products.Each(func(key string, g *molecule.Graph) bool {
		result.Products = append(result.Products, ProductView{Key: key, Formula: g.Formula()})
		return true
	})
	for _, u := range res.Units {
		view := UnitView{
			Reaction:   u.Template.Pattern(),
			TemplateID: u.Template.ID(),
			Molecule:   u.Target.Name,
			Products:   u.Products.SortedKeys(),
		}
		if view.Products == nil {
			view.Products = []string{}
		}
		if u.Err != nil {
			view.Error = u.Err.Error()
		}
		result.Units = append(result.Units, view)
	}
	return PrintResult(cmd, result)
}

// progressFunc reports to stderr when verbose and to the status server when
// one runs.
func progressFunc(cmd *cobra.Command, cliCtx *CLIContext) enumeration.ProgressFunc {
	stderr := cmd.ErrOrStderr()
	verbose := cliCtx.Verbose
	status := cliCtx.Progress
	if !verbose && status == nil {
		return nil
	}
	return func(p enumeration.Progress) {
		if verbose {
			fmt.Fprintf(stderr, "[%d/%d] %s on %s\n", p.Done, p.Total, p.Template, p.Target)
		}
		if status != nil {
			status.Update(p)
		}
	}
}

//Personal.AI order the ending
