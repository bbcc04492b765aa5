package prometheus

// Label values shared by the engine metrics.
const (
	OutcomeBuilt     = "built"
	OutcomeRejected  = "rejected"
	OutcomeRetained  = "retained"
	OutcomeGenerated = "generated"
	OutcomeDuplicate = "duplicate"
	OutcomeInvalid   = "invalid"

	CacheHit   = "hit"
	CacheMiss  = "miss"
	CacheError = "error"

	ModeSequential = "sequential"
	ModeParallel   = "parallel"
)

// EngineMetrics holds the instruments of the enumeration pipeline.
type EngineMetrics struct {
	// Synthesis
	PairsConsidered   CounterVec
	PairsSkipped      CounterVec
	Templates         CounterVec
	SynthesisDuration HistogramVec

	// Key cache
	KeyCacheLookups CounterVec

	// Execution
	OrbitPasses       CounterVec
	Products          CounterVec
	ExecutionDuration HistogramVec

	// Batch
	BatchUnits      CounterVec
	BatchInProgress GaugeVec
}

var (
	DefaultSynthesisBuckets = []float64{.001, .005, .01, .05, .1, .5, 1, 5, 10, 30}
	DefaultExecutionBuckets = []float64{.0005, .001, .005, .01, .05, .1, .5, 1, 5}
)

// NewEngineMetrics registers the engine instruments on collector.
func NewEngineMetrics(collector MetricsCollector) *EngineMetrics {
	if collector == nil {
		collector = NewNoopCollector()
	}
	m := &EngineMetrics{}

	m.PairsConsidered = collector.RegisterCounter("synthesis_pairs_considered_total", "Symmetric atom pairs considered for bridge synthesis")
	m.PairsSkipped = collector.RegisterCounter("synthesis_pairs_skipped_total", "Symmetric atom pairs skipped", "reason")
	m.Templates = collector.RegisterCounter("synthesis_templates_total", "Bridge templates by outcome", "outcome")
	m.SynthesisDuration = collector.RegisterHistogram("synthesis_duration_seconds", "Bridge synthesis duration per molecule", DefaultSynthesisBuckets)

	m.KeyCacheLookups = collector.RegisterCounter("key_cache_lookups_total", "Reaction key cache lookups", "result")

	m.OrbitPasses = collector.RegisterCounter("executor_orbit_passes_total", "Masked reaction passes run by the executor")
	m.Products = collector.RegisterCounter("executor_products_total", "Products by outcome", "outcome")
	m.ExecutionDuration = collector.RegisterHistogram("executor_run_duration_seconds", "Template execution duration", DefaultExecutionBuckets, "mode")

	m.BatchUnits = collector.RegisterCounter("batch_units_total", "Template and molecule pairs evaluated", "status")
	m.BatchInProgress = collector.RegisterGauge("batch_units_in_progress", "Template and molecule pairs being evaluated")

	return m
}

// NewNoopEngineMetrics returns instruments that record nothing.
func NewNoopEngineMetrics() *EngineMetrics {
	return NewEngineMetrics(NewNoopCollector())
}

//Personal.AI order the ending
