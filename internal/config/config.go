// Package config defines the configuration structures for SymRxn. No I/O or
// parsing logic lives here, only plain data types and validation.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/turtacn/SymRxn/internal/infrastructure/monitoring/logging"
)

// SynthesisConfig tunes bridge template synthesis and key deduplication.
type SynthesisConfig struct {
	// ProbeSMILES is the probe molecule used to derive reaction keys.
	ProbeSMILES string `mapstructure:"probe_smiles"`
	// Linker is a SMILES carrying [1*] and [2*], or the keyword "ligand".
	Linker string `mapstructure:"linker"`
	// MaxPairsPerOrbit caps candidate pairs per orbit; 0 means unlimited.
	MaxPairsPerOrbit int `mapstructure:"max_pairs_per_orbit"`
}

// ExecutorConfig tunes the combinatorial reaction executor.
type ExecutorConfig struct {
	// MaxProducts caps raw products per reaction application.
	MaxProducts int `mapstructure:"max_products"`
	// Parallelism > 1 runs orbit passes concurrently.
	Parallelism int `mapstructure:"parallelism"`
}

// BatchConfig tunes the template × molecule batch runner.
type BatchConfig struct {
	Concurrency int `mapstructure:"concurrency"`
}

// RedisConfig holds Redis connection parameters for the reaction key cache.
type RedisConfig struct {
	Addr         string        `mapstructure:"addr"`
	Password     string        `mapstructure:"password"`
	DB           int           `mapstructure:"db"`
	PoolSize     int           `mapstructure:"pool_size"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// CacheConfig selects the reaction key cache backend.
type CacheConfig struct {
	// Backend is "memory", "redis" or "none".
	Backend string        `mapstructure:"backend"`
	Prefix  string        `mapstructure:"prefix"`
	TTL     time.Duration `mapstructure:"ttl"`
	Redis   RedisConfig   `mapstructure:"redis"`
}

// MetricsConfig controls Prometheus instrumentation.
type MetricsConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Namespace string `mapstructure:"namespace"`
	Subsystem string `mapstructure:"subsystem"`
	// PushGateway, when set, receives the collected metrics after each CLI run.
	PushGateway string `mapstructure:"push_gateway"`
	JobName     string `mapstructure:"job_name"`
}

// Config is the root configuration.
type Config struct {
	Synthesis SynthesisConfig   `mapstructure:"synthesis"`
	Executor  ExecutorConfig    `mapstructure:"executor"`
	Batch     BatchConfig       `mapstructure:"batch"`
	Cache     CacheConfig       `mapstructure:"cache"`
	Metrics   MetricsConfig     `mapstructure:"metrics"`
	Log       logging.LogConfig `mapstructure:"log"`
}

// Validate performs semantic validation of a fully-populated Config and
// returns the first problem found.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Synthesis.ProbeSMILES) == "" {
		return fmt.Errorf("config: synthesis.probe_smiles is required")
	}
	if c.Synthesis.Linker != LinkerLigand {
		if !strings.Contains(c.Synthesis.Linker, "[1*]") || !strings.Contains(c.Synthesis.Linker, "[2*]") {
			return fmt.Errorf("config: synthesis.linker %q must contain [1*] and [2*] or be %q", c.Synthesis.Linker, LinkerLigand)
		}
	}
	if c.Synthesis.MaxPairsPerOrbit < 0 {
		return fmt.Errorf("config: synthesis.max_pairs_per_orbit must be ≥ 0, got %d", c.Synthesis.MaxPairsPerOrbit)
	}

	if c.Executor.MaxProducts < 1 {
		return fmt.Errorf("config: executor.max_products must be ≥ 1, got %d", c.Executor.MaxProducts)
	}
	if c.Executor.Parallelism < 1 {
		return fmt.Errorf("config: executor.parallelism must be ≥ 1, got %d", c.Executor.Parallelism)
	}
	if c.Batch.Concurrency < 1 {
		return fmt.Errorf("config: batch.concurrency must be ≥ 1, got %d", c.Batch.Concurrency)
	}

	switch c.Cache.Backend {
	case CacheBackendMemory, CacheBackendNone:
	case CacheBackendRedis:
		if c.Cache.Redis.Addr == "" {
			return fmt.Errorf("config: cache.redis.addr is required for the redis backend")
		}
		if c.Cache.Redis.DB < 0 {
			return fmt.Errorf("config: cache.redis.db must be ≥ 0, got %d", c.Cache.Redis.DB)
		}
	default:
		return fmt.Errorf("config: cache.backend %q is invalid; expected memory|redis|none", c.Cache.Backend)
	}
	if c.Cache.TTL < 0 {
		return fmt.Errorf("config: cache.ttl must not be negative")
	}

	if c.Metrics.Enabled && c.Metrics.Namespace == "" {
		return fmt.Errorf("config: metrics.namespace is required when metrics are enabled")
	}

	if _, ok := logging.ParseLevel(c.Log.Level); !ok {
		return fmt.Errorf("config: log.level %q is invalid; expected debug|info|warn|error", c.Log.Level)
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		return fmt.Errorf("config: log.format %q is invalid; expected json|console", c.Log.Format)
	}

	return nil
}

//Personal.AI order the ending
