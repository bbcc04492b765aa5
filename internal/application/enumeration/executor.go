// Package enumeration applies reaction templates to target molecules,
// suppressing matches that differ only by a symmetric choice of atom.
package enumeration

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/turtacn/SymRxn/internal/config"
	"github.com/turtacn/SymRxn/internal/domain/molecule"
	"github.com/turtacn/SymRxn/internal/domain/reaction"
	"github.com/turtacn/SymRxn/internal/infrastructure/monitoring/logging"
	prom "github.com/turtacn/SymRxn/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/SymRxn/pkg/errors"
)

// Runner applies one template to one target molecule.
type Runner interface {
	Run(ctx context.Context, t *reaction.Template, target *molecule.Graph) (*reaction.ProductSet, error)
}

// Executor is the combinatorial reaction executor. It is safe for
// concurrent use.
type Executor struct {
	toolkit     molecule.Toolkit
	engine      reaction.Engine
	parallelism int
	logger      logging.Logger
	metrics     *prom.EngineMetrics
}

var _ Runner = (*Executor)(nil)

// ExecutorOption configures an Executor.
type ExecutorOption func(*Executor)

// WithParallelism runs up to n orbit passes concurrently. n <= 1 is sequential.
func WithParallelism(n int) ExecutorOption {
	return func(e *Executor) { e.parallelism = n }
}

func WithLogger(l logging.Logger) ExecutorOption {
	return func(e *Executor) {
		if l != nil {
			e.logger = l
		}
	}
}

func WithMetrics(m *prom.EngineMetrics) ExecutorOption {
	return func(e *Executor) {
		if m != nil {
			e.metrics = m
		}
	}
}

// NewExecutor returns an Executor over the given oracle halves.
func NewExecutor(toolkit molecule.Toolkit, engine reaction.Engine, opts ...ExecutorOption) *Executor {
	e := &Executor{
		toolkit:     toolkit,
		engine:      engine,
		parallelism: config.DefaultParallelism,
		logger:      logging.NewNopLogger(),
		metrics:     prom.NewNoopEngineMetrics(),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.logger = e.logger.Named("executor")
	return e
}

// pass is one masked application of the template.
type pass struct {
	orbit int
	mask  *molecule.AtomMask
}

// Run applies t to target once per symmetric orbit, masking every orbit
// member but the representative, and collects the products by canonical
// SMILES. The first product stored under a key wins. A target without
// symmetric orbits gets a single unmasked pass.
func (e *Executor) Run(ctx context.Context, t *reaction.Template, target *molecule.Graph) (*reaction.ProductSet, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}
	products := reaction.NewProductSet()
	if target == nil || target.IsEmpty() {
		return products, nil
	}

	stripped := e.toolkit.RemoveHydrogens(target)
	passes := e.plan(stripped, target.Name)

	mode := prom.ModeSequential
	if e.parallelism > 1 && len(passes) > 1 {
		mode = prom.ModeParallel
	}
	start := time.Now()

	var results [][][]*molecule.Graph
	var err error
	if mode == prom.ModeParallel {
		results, err = e.runParallel(ctx, t, stripped, passes)
	} else {
		results, err = e.runSequential(ctx, t, stripped, passes)
	}
	if err != nil {
		return nil, err
	}

	for _, tuples := range results {
		for _, tuple := range tuples {
			for _, p := range tuple {
				e.collect(products, p)
			}
		}
	}
	e.metrics.ExecutionDuration.WithLabelValues(mode).Observe(time.Since(start).Seconds())
	e.logger.Debug("template applied",
		logging.String(logging.FieldPattern, t.Pattern()),
		logging.String(logging.FieldMolecule, target.Name),
		logging.Int("passes", len(passes)),
		logging.Int("products", products.Len()))
	return products, nil
}

// plan builds one pass per symmetric orbit in ascending representative order.
func (e *Executor) plan(g *molecule.Graph, name string) []pass {
	orbits := molecule.SymmetricOrbits(e.toolkit.CanonicalRank(g))
	if len(orbits) == 0 {
		return []pass{{orbit: -1}}
	}
	e.logger.Debug("symmetric orbits",
		logging.String(logging.FieldMolecule, name),
		logging.Ints("representatives", orbits.Representatives()),
		logging.Int("symmetric_atoms", orbits.NumAtoms()))
	passes := make([]pass, len(orbits))
	for i, o := range orbits {
		passes[i] = pass{orbit: o.Representative(), mask: o.ExclusionMask(g.NumAtoms())}
	}
	return passes
}

func (e *Executor) runSequential(ctx context.Context, t *reaction.Template, g *molecule.Graph, passes []pass) ([][][]*molecule.Graph, error) {
	results := make([][][]*molecule.Graph, len(passes))
	for i, p := range passes {
		if err := ctx.Err(); err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeCanceled, "reaction run canceled")
		}
		tuples, err := e.apply(t, g, p)
		if err != nil {
			return nil, err
		}
		results[i] = tuples
	}
	return results, nil
}

// runParallel runs passes on independent graph copies. Results are indexed
// by pass so the merge order matches the sequential run.
func (e *Executor) runParallel(ctx context.Context, t *reaction.Template, g *molecule.Graph, passes []pass) ([][][]*molecule.Graph, error) {
	results := make([][][]*molecule.Graph, len(passes))
	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(e.parallelism)
	for i, p := range passes {
		i, p := i, p
		local := g.Clone()
		eg.Go(func() error {
			if err := egCtx.Err(); err != nil {
				return errors.Wrap(err, errors.ErrCodeCanceled, "reaction run canceled")
			}
			tuples, err := e.apply(t, local, p)
			if err != nil {
				return err
			}
			results[i] = tuples
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// apply runs one pass on NumReactants copies of g sharing the pass mask.
func (e *Executor) apply(t *reaction.Template, g *molecule.Graph, p pass) ([][]*molecule.Graph, error) {
	e.metrics.OrbitPasses.WithLabelValues().Inc()
	reactants := make([]reaction.Reactant, t.NumReactants())
	for i := range reactants {
		reactants[i] = reaction.Reactant{Graph: g.Clone(), Excluded: p.mask}
	}
	tuples, err := e.engine.ApplyReaction(t.Compiled(), reactants)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeUnknown, "apply reaction template")
	}
	e.logger.Debug("orbit pass",
		logging.Int(logging.FieldOrbit, p.orbit),
		logging.Ints("excluded", p.mask.Members()),
		logging.Int("tuples", len(tuples)))
	return tuples, nil
}

// collect stores p under its canonical key. The key is taken after a
// serialize-parse-serialize round trip so it is stable under re-reading.
func (e *Executor) collect(products *reaction.ProductSet, p *molecule.Graph) {
	key := e.toolkit.CanonicalSerialize(p)
	if key == "" {
		e.metrics.Products.WithLabelValues(prom.OutcomeInvalid).Inc()
		return
	}
	if reread, err := e.toolkit.ParseSMILES(key); err == nil {
		if stable := e.toolkit.CanonicalSerialize(reread); stable != "" {
			key = stable
		}
	} else {
		e.metrics.Products.WithLabelValues(prom.OutcomeInvalid).Inc()
		e.logger.Warn("product key does not re-parse", logging.String("product", key), logging.Err(err))
	}
	p.Name = key
	if products.Add(key, p) {
		e.metrics.Products.WithLabelValues(prom.OutcomeGenerated).Inc()
	} else {
		e.metrics.Products.WithLabelValues(prom.OutcomeDuplicate).Inc()
	}
}

//Personal.AI order the ending
