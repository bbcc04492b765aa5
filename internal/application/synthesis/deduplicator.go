package synthesis

import (
	"context"

	"golang.org/x/sync/singleflight"

	"github.com/turtacn/SymRxn/internal/application/enumeration"
	"github.com/turtacn/SymRxn/internal/domain/molecule"
	"github.com/turtacn/SymRxn/internal/domain/reaction"
	"github.com/turtacn/SymRxn/internal/infrastructure/monitoring/logging"
	prom "github.com/turtacn/SymRxn/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/SymRxn/pkg/errors"
)

// Deduplicator derives reaction keys by running templates on a probe
// molecule. Keys are memoised in a KeyCache; concurrent requests for one
// pattern share a single probe run.
type Deduplicator struct {
	runner  enumeration.Runner
	probe   *molecule.Graph
	probeID string
	cache   reaction.KeyCache
	group   singleflight.Group
	logger  logging.Logger
	metrics *prom.EngineMetrics
}

// NewDeduplicator parses probeSMILES with toolkit. A nil cache keeps keys in
// process memory.
func NewDeduplicator(toolkit molecule.Toolkit, runner enumeration.Runner, probeSMILES string,
	cache reaction.KeyCache, log logging.Logger, metrics *prom.EngineMetrics) (*Deduplicator, error) {
	if probeSMILES == "" {
		return nil, errors.New(errors.ErrCodeValidation, "probe molecule is required")
	}
	probe, err := toolkit.ParseSMILES(probeSMILES)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeUnknown, "parse probe molecule")
	}
	if probe.IsEmpty() {
		return nil, errors.New(errors.ErrCodeMoleculeEmpty, "probe molecule has no atoms")
	}
	if cache == nil {
		cache = reaction.NewMemoryKeyCache()
	}
	if log == nil {
		log = logging.NewNopLogger()
	}
	if metrics == nil {
		metrics = prom.NewNoopEngineMetrics()
	}
	probe.Name = "probe"
	return &Deduplicator{
		runner:  runner,
		probe:   probe,
		probeID: toolkit.CanonicalSerialize(probe),
		cache:   cache,
		logger:  log.Named("dedup"),
		metrics: metrics,
	}, nil
}

// Probe returns the canonical SMILES of the probe molecule.
func (d *Deduplicator) Probe() string { return d.probeID }

// Key returns the canonical SMILES of the single product t makes on the
// probe. Any other product count is a DegenerateProbeResult. Cache failures
// are logged and bypassed.
func (d *Deduplicator) Key(ctx context.Context, t *reaction.Template) (reaction.Key, error) {
	if err := t.Validate(); err != nil {
		return "", err
	}
	pattern := t.Pattern()
	key, ok, err := d.cache.Lookup(ctx, d.probeID, pattern)
	switch {
	case err != nil:
		d.metrics.KeyCacheLookups.WithLabelValues(prom.CacheError).Inc()
		d.logger.Warn("key cache lookup failed", logging.String(logging.FieldPattern, pattern), logging.Err(err))
	case ok:
		d.metrics.KeyCacheLookups.WithLabelValues(prom.CacheHit).Inc()
		return key, nil
	default:
		d.metrics.KeyCacheLookups.WithLabelValues(prom.CacheMiss).Inc()
	}

	v, err, _ := d.group.Do(pattern, func() (interface{}, error) {
		products, err := d.runner.Run(ctx, t, d.probe)
		if err != nil {
			return nil, err
		}
		if products.Len() != 1 {
			return nil, errors.DegenerateProbeResult(pattern, products.Len())
		}
		k := reaction.Key(products.Keys()[0])
		if err := d.cache.Store(ctx, d.probeID, pattern, k); err != nil {
			d.logger.Warn("key cache store failed", logging.String(logging.FieldPattern, pattern), logging.Err(err))
		}
		return k, nil
	})
	if err != nil {
		return "", err
	}
	return v.(reaction.Key), nil
}

//Personal.AI order the ending
