// Package synthesis builds bridge reaction templates between symmetric
// attachment points of a molecule and deduplicates them by reaction key.
package synthesis

import (
	"context"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/turtacn/SymRxn/internal/config"
	"github.com/turtacn/SymRxn/internal/domain/molecule"
	"github.com/turtacn/SymRxn/internal/domain/reaction"
	"github.com/turtacn/SymRxn/internal/infrastructure/monitoring/logging"
	prom "github.com/turtacn/SymRxn/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/SymRxn/pkg/errors"
)

const (
	linkerSlot1 = "[1*]"
	linkerSlot2 = "[2*]"
)

// Oracle is the molecular graph oracle the synthesizer works through.
type Oracle interface {
	molecule.Toolkit
	reaction.Engine
}

// Templates maps reaction keys to the first template seen with that key.
type Templates map[reaction.Key]*reaction.Template

// Synthesizer generates deduplicated bridge templates.
type Synthesizer struct {
	oracle      Oracle
	dedup       *Deduplicator
	linker      string
	maxPairs    int
	concurrency int
	logger      logging.Logger
	metrics     *prom.EngineMetrics
}

// Option configures a Synthesizer.
type Option func(*Synthesizer)

// WithConcurrency bounds the molecules synthesized at once by
// GenerateReactionsBatch.
func WithConcurrency(n int) Option {
	return func(s *Synthesizer) {
		if n > 0 {
			s.concurrency = n
		}
	}
}

func WithLogger(l logging.Logger) Option {
	return func(s *Synthesizer) {
		if l != nil {
			s.logger = l
		}
	}
}

func WithMetrics(m *prom.EngineMetrics) Option {
	return func(s *Synthesizer) {
		if m != nil {
			s.metrics = m
		}
	}
}

// NewSynthesizer validates cfg.Linker and returns a Synthesizer. The linker
// is either config.LinkerLigand or a SMILES with exactly one [1*] and one
// [2*]; anything else is LinkerInvalid.
func NewSynthesizer(oracle Oracle, dedup *Deduplicator, cfg config.SynthesisConfig, opts ...Option) (*Synthesizer, error) {
	if oracle == nil || dedup == nil {
		return nil, errors.New(errors.ErrCodeValidation, "synthesizer needs an oracle and a deduplicator")
	}
	linker := cfg.Linker
	if linker == "" {
		linker = config.DefaultLinker
	}
	if linker != config.LinkerLigand {
		if err := checkLinker(linker); err != nil {
			return nil, err
		}
		if _, err := oracle.ParseSMILES(linker); err != nil {
			return nil, errors.New(errors.ErrCodeLinkerInvalid, "linker is not valid SMILES").
				WithDetail("linker=" + linker).WithCause(err)
		}
	}
	s := &Synthesizer{
		oracle:      oracle,
		dedup:       dedup,
		linker:      linker,
		maxPairs:    cfg.MaxPairsPerOrbit,
		concurrency: config.DefaultBatchConcurrency,
		logger:      logging.NewNopLogger(),
		metrics:     prom.NewNoopEngineMetrics(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.Named("synthesis")
	return s, nil
}

func checkLinker(linker string) error {
	if strings.Count(linker, linkerSlot1) != 1 || strings.Count(linker, linkerSlot2) != 1 {
		return errors.New(errors.ErrCodeLinkerInvalid, errors.DefaultMessageForCode(errors.ErrCodeLinkerInvalid)).
			WithDetail("linker=" + linker)
	}
	return nil
}

// outcome is the synthesis result for one molecule, with keys in the order
// their templates were retained.
type outcome struct {
	order     []reaction.Key
	templates Templates
	report    *SynthesisReport
}

// GenerateReactions returns the deduplicated bridge templates of mol. A
// molecule without symmetric atoms yields an empty mapping.
func (s *Synthesizer) GenerateReactions(ctx context.Context, mol *molecule.Graph) (Templates, *SynthesisReport) {
	out := s.synthesize(ctx, mol)
	return out.templates, out.report
}

// GenerateReactionsBatch synthesizes every molecule and returns the union of
// their templates. When two molecules produce the same key the earlier
// molecule's template is kept.
func (s *Synthesizer) GenerateReactionsBatch(ctx context.Context, mols []*molecule.Graph) (Templates, *SynthesisReport) {
	outcomes := make([]*outcome, len(mols))
	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(s.concurrency)
	for i, mol := range mols {
		i, mol := i, mol
		eg.Go(func() error {
			outcomes[i] = s.synthesize(egCtx, mol)
			return nil
		})
	}
	_ = eg.Wait()

	templates := make(Templates)
	report := &SynthesisReport{}
	for _, o := range outcomes {
		report.merge(o.report)
		for _, k := range o.order {
			if _, dup := templates[k]; dup {
				report.Duplicates++
				report.Retained--
				continue
			}
			templates[k] = o.templates[k]
		}
	}
	s.logger.Info("batch synthesis finished",
		logging.Int("molecules", len(mols)),
		logging.Int("pairs", report.PairsConsidered),
		logging.Int("templates", len(templates)),
		logging.Any("skipped", report.SkipCounts()))
	return templates, report
}

func (s *Synthesizer) synthesize(ctx context.Context, mol *molecule.Graph) *outcome {
	out := &outcome{templates: make(Templates), report: &SynthesisReport{Molecules: 1}}
	if mol == nil || mol.IsEmpty() {
		return out
	}
	start := time.Now()
	defer func() {
		s.metrics.SynthesisDuration.WithLabelValues().Observe(time.Since(start).Seconds())
	}()
	log := s.logger.With(logging.String(logging.FieldMolecule, mol.Name))

	candidates := s.candidates(ctx, mol, out.report, log)
	for _, t := range candidates {
		if ctx.Err() != nil {
			out.report.Canceled = true
			break
		}
		key, err := s.dedup.Key(ctx, t)
		if err != nil {
			out.report.Rejected = append(out.report.Rejected, TemplateFailure{Molecule: mol.Name, Pattern: t.Pattern(), Err: err})
			s.metrics.Templates.WithLabelValues(prom.OutcomeRejected).Inc()
			log.Warn("template rejected",
				logging.String(logging.FieldPattern, t.Pattern()),
				logging.String(logging.FieldTemplate, t.ID()),
				logging.Err(err))
			continue
		}
		if _, dup := out.templates[key]; dup {
			out.report.Duplicates++
			s.metrics.Templates.WithLabelValues(prom.OutcomeDuplicate).Inc()
			continue
		}
		out.templates[key] = t
		out.order = append(out.order, key)
		out.report.Retained++
		s.metrics.Templates.WithLabelValues(prom.OutcomeRetained).Inc()
		log.Debug("template retained",
			logging.String(logging.FieldKey, key.String()),
			logging.String(logging.FieldTemplate, t.ID()),
			logging.String(logging.FieldPattern, t.Pattern()))
	}
	return out
}

// candidates builds one template per usable symmetric pair, in orbit then
// pair order.
func (s *Synthesizer) candidates(ctx context.Context, mol *molecule.Graph, report *SynthesisReport, log logging.Logger) []*reaction.Template {
	stripped := s.oracle.RemoveHydrogens(mol)
	saturated := s.oracle.AddHydrogens(stripped)
	orbits := molecule.SymmetricOrbits(s.oracle.CanonicalRank(stripped))
	if len(orbits) == 0 {
		log.Debug("no symmetric atoms")
		return nil
	}

	var out []*reaction.Template
	for _, o := range orbits {
		for n, pair := range o.Pairs() {
			if ctx.Err() != nil {
				report.Canceled = true
				return out
			}
			report.PairsConsidered++
			s.metrics.PairsConsidered.WithLabelValues().Inc()
			i, j := pair[0], pair[1]

			if s.maxPairs > 0 && n >= s.maxPairs {
				s.skip(report, PairSkip{Molecule: mol.Name, I: i, J: j, Reason: ReasonPairLimit}, log)
				continue
			}
			t, pattern, err := s.bridge(stripped, saturated, i, j)
			switch {
			case errors.IsCode(err, errors.ErrCodeAmbiguousAttachment):
				s.skip(report, PairSkip{Molecule: mol.Name, I: i, J: j, Reason: ReasonAmbiguousAttachment, Err: err}, log)
			case errors.IsCode(err, errors.ErrCodeFragmentationFailed):
				s.skip(report, PairSkip{Molecule: mol.Name, I: i, J: j, Reason: ReasonFragmentationFailed, Err: err}, log)
			case err != nil:
				report.BuildFailures = append(report.BuildFailures, TemplateFailure{Molecule: mol.Name, Pattern: pattern, Err: err})
				s.metrics.Templates.WithLabelValues(prom.OutcomeInvalid).Inc()
				log.Warn("bridge template not built", logging.Ints("pair", []int{i, j}), logging.Err(err))
			default:
				report.Built++
				s.metrics.Templates.WithLabelValues(prom.OutcomeBuilt).Inc()
				out = append(out, t)
			}
		}
	}
	return out
}

func (s *Synthesizer) skip(report *SynthesisReport, sk PairSkip, log logging.Logger) {
	report.Skipped = append(report.Skipped, sk)
	s.metrics.PairsSkipped.WithLabelValues(sk.Reason).Inc()
	log.Debug("pair skipped", logging.Ints("pair", []int{sk.I, sk.J}), logging.String("reason", sk.Reason))
}

// bridge builds the template joining atoms i and j, returning the pattern
// it tried. stripped and saturated share atom indices for heavy atoms.
func (s *Synthesizer) bridge(stripped, saturated *molecule.Graph, i, j int) (*reaction.Template, string, error) {
	hi := saturated.TerminalHydrogenBonds(i)
	if len(hi) != 1 {
		return nil, "", errors.AmbiguousAttachment(i, len(hi))
	}
	hj := saturated.TerminalHydrogenBonds(j)
	if len(hj) != 1 {
		return nil, "", errors.AmbiguousAttachment(j, len(hj))
	}

	frags, err := s.oracle.FragmentAtBonds(saturated, []int{hi[0], hj[0]})
	if err != nil {
		return nil, "", err
	}
	core := s.oracle.ChooseLargestFragment(frags)
	ligand, err := labelAttachments(core, saturated.Bonds[hi[0]].Other(i), saturated.Bonds[hj[0]].Other(j))
	if err != nil {
		return nil, "", err
	}
	ligandSMILES := s.oracle.CanonicalSerialize(ligand)

	linker := s.linker
	if linker == config.LinkerLigand {
		linker = ligandSMILES
		if err := checkLinker(linker); err != nil {
			return nil, "", err
		}
	}
	pattern := bridgePattern(stripped.Atoms[i], linker)
	t, err := reaction.NewTemplate(s.oracle, pattern, reaction.WithLigand(ligandSMILES), reaction.WithAttachments(i, j))
	return t, pattern, err
}

// labelAttachments relabels the dummies that replaced hydrogens hi and hj as
// [1*] and [2*].
func labelAttachments(core *molecule.Graph, hi, hj int) (*molecule.Graph, error) {
	if core == nil {
		return nil, errors.New(errors.ErrCodeFragmentationFailed, "no core fragment")
	}
	out := core.Clone()
	found := [3]int{}
	for idx, a := range core.Atoms {
		if !a.IsDummy() {
			continue
		}
		switch a.Isotope {
		case hi:
			out.Atoms[idx].Isotope = 1
			found[1]++
		case hj:
			out.Atoms[idx].Isotope = 2
			found[2]++
		}
	}
	if found[1] != 1 || found[2] != 1 {
		return nil, errors.New(errors.ErrCodeFragmentationFailed, "attachment points not on one fragment").
			WithDetail(fmt.Sprintf("hydrogens=%d,%d", hi, hj))
	}
	return out, nil
}

// bridgePattern joins two placeholders for a through linker.
func bridgePattern(a molecule.Atom, linker string) string {
	sym := a.Symbol
	if a.Aromatic {
		sym = strings.ToLower(sym)
	}
	p1 := fmt.Sprintf("[%sH1:1]", sym)
	p2 := fmt.Sprintf("[%sH1:2]", sym)
	product := strings.NewReplacer(linkerSlot1, p1, linkerSlot2, p2).Replace(linker)
	return fmt.Sprintf("(%s).(%s)>>%s", p1, p2, product)
}

//Personal.AI order the ending
