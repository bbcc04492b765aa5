package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/SymRxn/internal/config"
)

func validConfig() *config.Config {
	return config.Default()
}

func TestConfig_Validate_ValidConfig(t *testing.T) {
	require.NoError(t, validConfig().Validate())
}

func TestConfig_Validate_LigandLinker(t *testing.T) {
	cfg := validConfig()
	cfg.Synthesis.Linker = config.LinkerLigand
	assert.NoError(t, cfg.Validate())
}

func TestConfig_Validate_Failures(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(*config.Config)
		message string
	}{
		{"empty probe", func(c *config.Config) { c.Synthesis.ProbeSMILES = " " }, "probe_smiles"},
		{"linker without dummies", func(c *config.Config) { c.Synthesis.Linker = "C=C" }, "synthesis.linker"},
		{"linker with one dummy", func(c *config.Config) { c.Synthesis.Linker = "[1*]C=C" }, "synthesis.linker"},
		{"negative pair cap", func(c *config.Config) { c.Synthesis.MaxPairsPerOrbit = -1 }, "max_pairs_per_orbit"},
		{"zero max products", func(c *config.Config) { c.Executor.MaxProducts = 0 }, "max_products"},
		{"zero parallelism", func(c *config.Config) { c.Executor.Parallelism = 0 }, "parallelism"},
		{"zero batch concurrency", func(c *config.Config) { c.Batch.Concurrency = 0 }, "batch.concurrency"},
		{"unknown cache backend", func(c *config.Config) { c.Cache.Backend = "memcached" }, "cache.backend"},
		{"redis without addr", func(c *config.Config) {
			c.Cache.Backend = config.CacheBackendRedis
			c.Cache.Redis.Addr = ""
		}, "cache.redis.addr"},
		{"negative redis db", func(c *config.Config) {
			c.Cache.Backend = config.CacheBackendRedis
			c.Cache.Redis.DB = -1
		}, "cache.redis.db"},
		{"metrics without namespace", func(c *config.Config) {
			c.Metrics.Enabled = true
			c.Metrics.Namespace = ""
		}, "metrics.namespace"},
		{"bad log level", func(c *config.Config) { c.Log.Level = "verbose" }, "log.level"},
		{"bad log format", func(c *config.Config) { c.Log.Format = "text" }, "log.format"},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			cfg := validConfig()
			tc.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.message)
		})
	}
}

//Personal.AI order the ending
