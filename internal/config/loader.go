package config

import (
	"fmt"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// envPrefix is the environment variable prefix for all settings.
const envPrefix = "SYMRXN"

// envKeys lists every leaf key so AutomaticEnv can populate values that are
// absent from the config file.
var envKeys = []string{
	"synthesis.probe_smiles", "synthesis.linker", "synthesis.max_pairs_per_orbit",
	"executor.max_products", "executor.parallelism",
	"batch.concurrency",
	"cache.backend", "cache.prefix", "cache.ttl",
	"cache.redis.addr", "cache.redis.password", "cache.redis.db", "cache.redis.pool_size",
	"cache.redis.dial_timeout", "cache.redis.read_timeout", "cache.redis.write_timeout",
	"metrics.enabled", "metrics.namespace", "metrics.subsystem", "metrics.push_gateway", "metrics.job_name",
	"log.level", "log.format",
}

// newViper builds a Viper instance with YAML file type, the SYMRXN_ env
// prefix and a "." → "_" key replacer, so "cache.redis.addr" resolves to
// SYMRXN_CACHE_REDIS_ADDR.
func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	for _, k := range envKeys {
		_ = v.BindEnv(k)
	}
	return v
}

// Load reads the YAML file at configPath, merges SYMRXN_* overrides, applies
// defaults and validates the result. An empty configPath behaves like LoadFromEnv.
func Load(configPath string) (*Config, error) {
	if configPath == "" {
		return LoadFromEnv()
	}
	v := newViper()
	v.SetConfigFile(configPath)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("config: failed to read config file %q: %w", configPath, err)
	}

	return unmarshalAndFinalize(v)
}

// LoadFromEnv builds a Config from SYMRXN_* environment variables and defaults.
//
//	SYMRXN_<SECTION>_<FIELD>   e.g.  SYMRXN_SYNTHESIS_LINKER, SYMRXN_CACHE_BACKEND
func LoadFromEnv() (*Config, error) {
	return unmarshalAndFinalize(newViper())
}

func unmarshalAndFinalize(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to unmarshal configuration: %w", err)
	}

	ApplyDefaults(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: validation failed: %w", err)
	}

	return cfg, nil
}

// Watch invokes onChange with the re-parsed Config whenever configPath is
// written. Changes that fail to parse or validate are passed to onError
// (when non-nil) and do not reach onChange. Watch does not block.
func Watch(configPath string, onChange func(*Config), onError func(error)) {
	v := newViper()
	v.SetConfigFile(configPath)
	_ = v.ReadInConfig()

	v.OnConfigChange(func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
			return
		}
		cfg, err := unmarshalAndFinalize(v)
		if err != nil {
			if onError != nil {
				onError(err)
			}
			return
		}
		onChange(cfg)
	})
	v.WatchConfig()
}

// MustLoad wraps Load and panics on any error.
func MustLoad(configPath string) *Config {
	cfg, err := Load(configPath)
	if err != nil {
		panic(fmt.Sprintf("config: MustLoad failed: %v", err))
	}
	return cfg
}

//Personal.AI order the ending
