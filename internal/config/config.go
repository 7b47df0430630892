// Package config contains all knobs and defaults used to configure the
// visibility service when running as a standalone server.
package config

import (
	"errors"
	"fmt"
	"net"
	"time"
)

const (
	DefaultDatastoreEngine       = "memory"
	DefaultDatastoreMaxOpenConns = 30
	DefaultDatastoreMaxIdleConns = 10

	DefaultDecisionCacheEnabled = true
	DefaultDecisionCacheLimit   = 10000
	DefaultDecisionCacheTTL     = 10 * time.Second

	DefaultHTTPAddr    = "0.0.0.0:8080"
	DefaultMetricsAddr = "0.0.0.0:2112"

	DefaultRequestTimeout = 3 * time.Second
)

// DatastoreConfig defines settings for the relationship store backing the
// engine.
type DatastoreConfig struct {
	// Engine is the datastore engine to use (e.g. 'memory', 'sqlite').
	Engine string
	URI    string

	// MaxOpenConns is the maximum number of open connections to the database.
	MaxOpenConns int

	// MaxIdleConns is the maximum number of connections to the datastore in
	// the idle connection pool.
	MaxIdleConns int

	// ConnMaxIdleTime is the maximum amount of time a connection to the
	// datastore may be idle.
	ConnMaxIdleTime time.Duration

	// ConnMaxLifetime is the maximum amount of time a connection to the
	// datastore may be reused.
	ConnMaxLifetime time.Duration
}

// CacheConfig defines settings for the decision cache.
type CacheConfig struct {
	Enabled bool
	Limit   int64 // (in items)
	TTL     time.Duration
}

func (c CacheConfig) ShouldCacheDecisions() bool {
	return c.Enabled && c.Limit > 0
}

// HTTPConfig defines settings for the HTTP server.
type HTTPConfig struct {
	Enabled bool
	Addr    string
}

// ProfilerConfig defines settings specific to pprof profiling.
type ProfilerConfig struct {
	Enabled bool
	Addr    string
}

// MetricConfig defines settings for serving Prometheus metrics.
type MetricConfig struct {
	Enabled bool
	Addr    string
}

// LogConfig defines log settings. For production we recommend the 'json'
// log format.
type LogConfig struct {
	// Format is the log format to use in the log output (e.g. 'text' or 'json').
	Format string

	// Level is the log level to use in the log output (e.g. 'none', 'debug', or 'info').
	Level string
}

type Config struct {
	// RequestTimeout bounds each resolution request end to end.
	RequestTimeout time.Duration

	Datastore DatastoreConfig
	Cache     CacheConfig
	HTTP      HTTPConfig
	Profiler  ProfilerConfig
	Metrics   MetricConfig
	Log       LogConfig
}

// Verify checks the config for contradictory or out-of-range settings.
func (cfg *Config) Verify() error {
	if err := cfg.VerifyDatastoreSettings(); err != nil {
		return err
	}
	if err := cfg.VerifyCacheSettings(); err != nil {
		return err
	}
	return cfg.VerifyServerSettings()
}

func (cfg *Config) VerifyDatastoreSettings() error {
	switch cfg.Datastore.Engine {
	case "memory":
	case "sqlite":
		if cfg.Datastore.URI == "" {
			return errors.New("config 'datastore.uri' is required for the sqlite engine")
		}
	default:
		return fmt.Errorf("config 'datastore.engine' must be one of ['memory', 'sqlite']")
	}
	return nil
}

func (cfg *Config) VerifyCacheSettings() error {
	if !cfg.Cache.Enabled {
		return nil
	}
	if cfg.Cache.Limit <= 0 {
		return errors.New("config 'cache.limit' must be greater than zero")
	}
	if cfg.Cache.TTL <= 0 {
		return errors.New("config 'cache.ttl' must be greater than zero")
	}
	return nil
}

func (cfg *Config) VerifyServerSettings() error {
	if cfg.RequestTimeout <= 0 {
		return errors.New("config 'requestTimeout' must be greater than zero")
	}

	if cfg.Log.Format != "text" && cfg.Log.Format != "json" {
		return fmt.Errorf("config 'log.format' must be one of ['text', 'json']")
	}

	switch cfg.Log.Level {
	case "none", "debug", "info", "warn", "error", "panic", "fatal":
	default:
		return fmt.Errorf(
			"config 'log.level' must be one of ['none', 'debug', 'info', 'warn', 'error', 'panic', 'fatal']",
		)
	}

	if cfg.HTTP.Enabled {
		if _, _, err := net.SplitHostPort(cfg.HTTP.Addr); err != nil {
			return fmt.Errorf("config 'http.addr' is invalid: %w", err)
		}
	}
	if cfg.Metrics.Enabled {
		if _, _, err := net.SplitHostPort(cfg.Metrics.Addr); err != nil {
			return fmt.Errorf("config 'metrics.addr' is invalid: %w", err)
		}
	}
	if cfg.Profiler.Enabled {
		if _, _, err := net.SplitHostPort(cfg.Profiler.Addr); err != nil {
			return fmt.Errorf("config 'profiler.addr' is invalid: %w", err)
		}
		if cfg.Metrics.Enabled && cfg.Profiler.Addr == cfg.Metrics.Addr {
			return errors.New("config 'profiler.addr' and 'metrics.addr' must be different")
		}
	}

	return nil
}

// DefaultConfig is the whole app default configuration. The values here
// should match the defaults registered on the command-line flags.
func DefaultConfig() *Config {
	return &Config{
		RequestTimeout: DefaultRequestTimeout,
		Datastore: DatastoreConfig{
			Engine:       DefaultDatastoreEngine,
			MaxOpenConns: DefaultDatastoreMaxOpenConns,
			MaxIdleConns: DefaultDatastoreMaxIdleConns,
		},
		Cache: CacheConfig{
			Enabled: DefaultDecisionCacheEnabled,
			Limit:   DefaultDecisionCacheLimit,
			TTL:     DefaultDecisionCacheTTL,
		},
		HTTP: HTTPConfig{
			Enabled: true,
			Addr:    DefaultHTTPAddr,
		},
		Profiler: ProfilerConfig{
			Enabled: false,
			Addr:    "0.0.0.0:3001",
		},
		Metrics: MetricConfig{
			Enabled: true,
			Addr:    DefaultMetricsAddr,
		},
		Log: LogConfig{
			Format: "text",
			Level:  "info",
		},
	}
}
