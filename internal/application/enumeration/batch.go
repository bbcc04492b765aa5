package enumeration

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/turtacn/SymRxn/internal/config"
	"github.com/turtacn/SymRxn/internal/domain/molecule"
	"github.com/turtacn/SymRxn/internal/domain/reaction"
	"github.com/turtacn/SymRxn/internal/infrastructure/monitoring/logging"
	prom "github.com/turtacn/SymRxn/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/SymRxn/pkg/errors"
)

// Batch unit statuses.
const (
	StatusOK     = "ok"
	StatusFailed = "failed"
)

// Progress is reported after every finished unit.
type Progress struct {
	Done     int
	Total    int
	Template string
	Target   string
}

// ProgressFunc receives progress updates. Calls are serialized.
type ProgressFunc func(Progress)

// UnitResult is the outcome of one template applied to one target.
type UnitResult struct {
	TemplateIndex int
	TargetIndex   int
	Template      *reaction.Template
	Target        *molecule.Graph
	Products      *reaction.ProductSet
	Err           error
}

// BatchResult holds every unit in template-major input order, plus the
// union of all products merged in that same order.
type BatchResult struct {
	RunID    string
	Units    []UnitResult
	Products *reaction.ProductSet
	Failed   int
}

// FailedUnits returns the units that ended in an error.
func (r *BatchResult) FailedUnits() []UnitResult {
	var out []UnitResult
	for _, u := range r.Units {
		if u.Err != nil {
			out = append(out, u)
		}
	}
	return out
}

// BatchRunner evaluates every template against every target with bounded
// concurrency. A failing unit is recorded and the batch carries on.
type BatchRunner struct {
	runner      Runner
	concurrency int
	progress    ProgressFunc
	logger      logging.Logger
	metrics     *prom.EngineMetrics
}

// BatchOption configures a BatchRunner.
type BatchOption func(*BatchRunner)

func WithConcurrency(n int) BatchOption {
	return func(b *BatchRunner) {
		if n > 0 {
			b.concurrency = n
		}
	}
}

func WithProgress(fn ProgressFunc) BatchOption {
	return func(b *BatchRunner) { b.progress = fn }
}

func WithBatchLogger(l logging.Logger) BatchOption {
	return func(b *BatchRunner) {
		if l != nil {
			b.logger = l
		}
	}
}

func WithBatchMetrics(m *prom.EngineMetrics) BatchOption {
	return func(b *BatchRunner) {
		if m != nil {
			b.metrics = m
		}
	}
}

// NewBatchRunner returns a BatchRunner over runner.
func NewBatchRunner(runner Runner, opts ...BatchOption) *BatchRunner {
	b := &BatchRunner{
		runner:      runner,
		concurrency: config.DefaultBatchConcurrency,
		logger:      logging.NewNopLogger(),
		metrics:     prom.NewNoopEngineMetrics(),
	}
	for _, opt := range opts {
		opt(b)
	}
	b.logger = b.logger.Named("batch")
	return b
}

// RunAll applies every template to every target. Only cancellation of ctx
// makes it return an error; unit failures are reported in the result.
func (b *BatchRunner) RunAll(ctx context.Context, templates []*reaction.Template, targets []*molecule.Graph) (*BatchResult, error) {
	runID := uuid.NewString()
	log := b.logger.With(logging.String(logging.FieldRunID, runID))

	total := len(templates) * len(targets)
	units := make([]UnitResult, total)
	for ti, t := range templates {
		for mi, m := range targets {
			units[ti*len(targets)+mi] = UnitResult{TemplateIndex: ti, TargetIndex: mi, Template: t, Target: m}
		}
	}
	log.Info("batch started",
		logging.Int("templates", len(templates)),
		logging.Int("targets", len(targets)))

	var mu sync.Mutex
	done := 0
	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(b.concurrency)
	for i := range units {
		u := &units[i]
		if egCtx.Err() != nil {
			break
		}
		eg.Go(func() error {
			if err := egCtx.Err(); err != nil {
				return err
			}
			b.metrics.BatchInProgress.WithLabelValues().Inc()
			u.Products, u.Err = b.runner.Run(egCtx, u.Template, u.Target)
			b.metrics.BatchInProgress.WithLabelValues().Dec()

			if u.Err != nil && errors.IsCode(u.Err, errors.ErrCodeCanceled) {
				return u.Err
			}
			status := StatusOK
			if u.Err != nil {
				status = StatusFailed
				log.Warn("batch unit failed",
					logging.String(logging.FieldPattern, u.Template.String()),
					logging.String(logging.FieldTemplate, u.Template.ID()),
					logging.String(logging.FieldMolecule, targetName(u.Target)),
					logging.Err(u.Err))
			}
			b.metrics.BatchUnits.WithLabelValues(status).Inc()

			mu.Lock()
			done++
			if b.progress != nil {
				b.progress(Progress{Done: done, Total: total, Template: u.Template.String(), Target: targetName(u.Target)})
			}
			mu.Unlock()
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeCanceled, "batch canceled")
	}
	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeCanceled, "batch canceled")
	}

	result := &BatchResult{RunID: runID, Units: units, Products: reaction.NewProductSet()}
	for _, u := range units {
		if u.Err != nil {
			result.Failed++
			continue
		}
		result.Products.Merge(u.Products)
	}
	log.Info("batch finished",
		logging.Int("units", total),
		logging.Int("failed", result.Failed),
		logging.Int("products", result.Products.Len()))
	return result, nil
}

func targetName(g *molecule.Graph) string {
	if g == nil {
		return ""
	}
	return g.Name
}

//Personal.AI order the ending
