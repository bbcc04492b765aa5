package config

import "time"

// LinkerLigand selects the core fragment itself as the bridge.
const LinkerLigand = "ligand"

// Cache backends.
const (
	CacheBackendMemory = "memory"
	CacheBackendRedis  = "redis"
	CacheBackendNone   = "none"
)

const (
	DefaultProbeSMILES = "C1=CC=CC=C1"
	DefaultLinker      = "[1*]/C=C/[2*]"

	DefaultMaxProducts = 1000
	DefaultParallelism = 1

	DefaultBatchConcurrency = 4

	DefaultCacheBackend = CacheBackendMemory
	DefaultCachePrefix  = "symrxn:key:"
	DefaultCacheTTL     = 24 * time.Hour
	DefaultRedisAddr    = "localhost:6379"
	DefaultRedisTimeout = 3 * time.Second

	DefaultMetricsNamespace = "symrxn"
	DefaultMetricsJobName   = "symrxn"

	DefaultLogLevel  = "info"
	DefaultLogFormat = "console"
)

// ApplyDefaults fills every zero-value field in cfg with its default.
// Explicitly set values are left unchanged.
func ApplyDefaults(cfg *Config) {
	if cfg == nil {
		return
	}

	if cfg.Synthesis.ProbeSMILES == "" {
		cfg.Synthesis.ProbeSMILES = DefaultProbeSMILES
	}
	if cfg.Synthesis.Linker == "" {
		cfg.Synthesis.Linker = DefaultLinker
	}

	if cfg.Executor.MaxProducts == 0 {
		cfg.Executor.MaxProducts = DefaultMaxProducts
	}
	if cfg.Executor.Parallelism == 0 {
		cfg.Executor.Parallelism = DefaultParallelism
	}

	if cfg.Batch.Concurrency == 0 {
		cfg.Batch.Concurrency = DefaultBatchConcurrency
	}

	if cfg.Cache.Backend == "" {
		cfg.Cache.Backend = DefaultCacheBackend
	}
	if cfg.Cache.Prefix == "" {
		cfg.Cache.Prefix = DefaultCachePrefix
	}
	if cfg.Cache.TTL == 0 {
		cfg.Cache.TTL = DefaultCacheTTL
	}
	if cfg.Cache.Redis.Addr == "" {
		cfg.Cache.Redis.Addr = DefaultRedisAddr
	}
	if cfg.Cache.Redis.DialTimeout == 0 {
		cfg.Cache.Redis.DialTimeout = DefaultRedisTimeout
	}
	if cfg.Cache.Redis.ReadTimeout == 0 {
		cfg.Cache.Redis.ReadTimeout = DefaultRedisTimeout
	}
	if cfg.Cache.Redis.WriteTimeout == 0 {
		cfg.Cache.Redis.WriteTimeout = DefaultRedisTimeout
	}

	if cfg.Metrics.Namespace == "" {
		cfg.Metrics.Namespace = DefaultMetricsNamespace
	}
	if cfg.Metrics.JobName == "" {
		cfg.Metrics.JobName = DefaultMetricsJobName
	}

	if cfg.Log.Level == "" {
		cfg.Log.Level = DefaultLogLevel
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = DefaultLogFormat
	}
}

// Default returns a Config populated entirely from defaults.
func Default() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}

//Personal.AI order the ending
