package cli

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/turtacn/SymRxn/internal/application/enumeration"
	"github.com/turtacn/SymRxn/internal/application/synthesis"
	"github.com/turtacn/SymRxn/internal/config"
	"github.com/turtacn/SymRxn/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/SymRxn/pkg/errors"
)

type generateOptions struct {
	linker   string
	probe    string
	maxPairs int
}

// NewGenerateCmd creates the generate subcommand.
func NewGenerateCmd() *cobra.Command {
	opts := &generateOptions{}

	cmd := &cobra.Command{
		Use:   "generate <molfile>...",
		Short: "Generate bridge reaction templates from symmetric atoms",
		Long: "Builds one bridge template per symmetric atom pair of each molecule, keys every\n" +
			"template by its product on the probe molecule and lists one template per key.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(cmd, opts, args)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.linker, "linker", "", "bridge linker with [1*] and [2*], or \"ligand\" (default from config)")
	flags.StringVar(&opts.probe, "probe", "", "probe molecule SMILES (default from config)")
	flags.IntVar(&opts.maxPairs, "max-pairs", 0, "maximum pairs per orbit, 0 for all (default from config)")
	return cmd
}

// TemplateView is one retained template.
type TemplateView struct {
	Key         string `json:"key"`
	ID          string `json:"id"`
	Pattern     string `json:"pattern"`
	Ligand      string `json:"ligand,omitempty"`
	Attachments [2]int `json:"attachments"`
}

// GenerateResult is the output of the generate command.
type GenerateResult struct {
	Templates       []TemplateView `json:"templates"`
	Molecules       int            `json:"molecules"`
	PairsConsidered int            `json:"pairs_considered"`
	Built           int            `json:"built"`
	Duplicates      int            `json:"duplicates"`
	Rejected        int            `json:"rejected"`
	BuildFailures   int            `json:"build_failures"`
	Skipped         map[string]int `json:"skipped,omitempty"`
	BadFiles        []FileError    `json:"bad_files,omitempty"`
}

func (r *GenerateResult) TableHeaders() []string {
	return []string{"KEY", "PATTERN", "ATTACHMENTS"}
}

func (r *GenerateResult) TableRows() [][]string {
	rows := make([][]string, 0, len(r.Templates))
	for _, t := range r.Templates {
		rows = append(rows, []string{t.Key, t.Pattern, fmt.Sprintf("%d,%d", t.Attachments[0], t.Attachments[1])})
	}
	return rows
}

func (r *GenerateResult) String() string {
	var sb strings.Builder
	for _, t := range r.Templates {
		fmt.Fprintf(&sb, "%s\t%s\n", t.Key, t.Pattern)
	}
	fmt.Fprintf(&sb, "%d template(s) from %d molecule(s): %d pairs, %d built, %d duplicate, %d rejected, %d failed",
		len(r.Templates), r.Molecules, r.PairsConsidered, r.Built, r.Duplicates, r.Rejected, r.BuildFailures)
	if len(r.Skipped) > 0 {
		reasons := make([]string, 0, len(r.Skipped))
		for reason := range r.Skipped {
			reasons = append(reasons, reason)
		}
		sort.Strings(reasons)
		for _, reason := range reasons {
			fmt.Fprintf(&sb, ", %d %s", r.Skipped[reason], reason)
		}
	}
	sb.WriteString("\n")
	return sb.String()
}

func runGenerate(cmd *cobra.Command, opts *generateOptions, args []string) error {
	cliCtx, err := GetCLIContext(cmd)
	if err != nil {
		return err
	}

	synthCfg := cliCtx.Config.Synthesis
	if cmd.Flags().Changed("linker") {
		synthCfg.Linker = opts.linker
	}
	if cmd.Flags().Changed("probe") {
		synthCfg.ProbeSMILES = opts.probe
	}
	if cmd.Flags().Changed("max-pairs") {
		if opts.maxPairs < 0 {
			return errors.InvalidParam("--max-pairs must be >= 0")
		}
		synthCfg.MaxPairsPerOrbit = opts.maxPairs
	}

	synth, err := newSynthesizer(cliCtx, synthCfg)
	if err != nil {
		return err
	}

	mols, bad := loadMolecules(cliCtx.Oracle, args, cliCtx.Logger)
	reportBadFiles(cmd.ErrOrStderr(), bad)
	if len(mols) == 0 {
		return errors.New(errors.ErrCodeFileUnreadable, "no readable molecule files")
	}

	templates, report := synth.GenerateReactionsBatch(cmd.Context(), mols)
	if report.Canceled {
		return errors.Wrap(cmd.Context().Err(), errors.ErrCodeCanceled, "template generation canceled")
	}

	result := &GenerateResult{
		Molecules:       report.Molecules,
		PairsConsidered: report.PairsConsidered,
		Built:           report.Built,
		Duplicates:      report.Duplicates,
		Rejected:        len(report.Rejected),
		BuildFailures:   len(report.BuildFailures),
		Skipped:         report.SkipCounts(),
		BadFiles:        bad,
	}
	for key, t := range templates {
		i, j := t.Attachments()
		result.Templates = append(result.Templates, TemplateView{
			Key:         string(key),
			ID:          t.ID(),
			Pattern:     t.Pattern(),
			Ligand:      t.Ligand(),
			Attachments: [2]int{i, j},
		})
	}
	sort.Slice(result.Templates, func(a, b int) bool { return result.Templates[a].Key < result.Templates[b].Key })

	if cliCtx.Verbose {
		for _, f := range report.Rejected {
			fmt.Fprintf(cmd.ErrOrStderr(), "rejected %s (%s): %v\n", f.Pattern, f.Code(), f.Err)
		}
		for _, f := range report.BuildFailures {
			fmt.Fprintf(cmd.ErrOrStderr(), "not built %s (%s): %v\n", f.Pattern, f.Code(), f.Err)
		}
	}
	return PrintResult(cmd, result)
}

// newExecutor builds the combinatorial executor shared by generate and run.
func newExecutor(cliCtx *CLIContext, parallelism int) *enumeration.Executor {
	return enumeration.NewExecutor(cliCtx.Oracle, cliCtx.Oracle,
		enumeration.WithParallelism(parallelism),
		enumeration.WithLogger(cliCtx.Logger),
		enumeration.WithMetrics(cliCtx.Metrics),
	)
}

func newSynthesizer(cliCtx *CLIContext, synthCfg config.SynthesisConfig) (*synthesis.Synthesizer, error) {
	executor := newExecutor(cliCtx, cliCtx.Config.Executor.Parallelism)
	dedup, err := synthesis.NewDeduplicator(cliCtx.Oracle, executor, synthCfg.ProbeSMILES,
		cliCtx.KeyCache, cliCtx.Logger, cliCtx.Metrics)
	if err != nil {
		return nil, err
	}
	cliCtx.Logger.Debug("synthesizer ready",
		logging.String("probe", dedup.Probe()),
		logging.String("linker", synthCfg.Linker),
		logging.Int("max_pairs", synthCfg.MaxPairsPerOrbit))
	return synthesis.NewSynthesizer(cliCtx.Oracle, dedup, synthCfg,
		synthesis.WithConcurrency(cliCtx.Config.Batch.Concurrency),
		synthesis.WithLogger(cliCtx.Logger),
		synthesis.WithMetrics(cliCtx.Metrics),
	)
}

//Personal.AI order the ending
