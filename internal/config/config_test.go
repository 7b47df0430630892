package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefaultConfigIsValid(t *testing.T) {
	require.NoError(t, DefaultConfig().Verify())
}

func TestVerifyDatastoreSettings(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Datastore.Engine = "postgres"
	require.Error(t, cfg.Verify())

	cfg = DefaultConfig()
	cfg.Datastore.Engine = "sqlite"
	require.Error(t, cfg.Verify(), "sqlite engine requires a uri")

	cfg.Datastore.URI = "file:circlevis.db"
	require.NoError(t, cfg.Verify())
}

func TestVerifyCacheSettings(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Cache.Limit = 0
	require.Error(t, cfg.Verify())

	cfg = DefaultConfig()
	cfg.Cache.TTL = 0
	require.Error(t, cfg.Verify())

	// a disabled cache skips cache validation entirely
	cfg.Cache.Enabled = false
	require.NoError(t, cfg.Verify())
}

func TestVerifyServerSettings(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"zero request timeout", func(c *Config) { c.RequestTimeout = 0 }, true},
		{"unknown log format", func(c *Config) { c.Log.Format = "xml" }, true},
		{"unknown log level", func(c *Config) { c.Log.Level = "verbose" }, true},
		{"bad http addr", func(c *Config) { c.HTTP.Addr = "no-port" }, true},
		{"bad metrics addr", func(c *Config) { c.Metrics.Addr = "no-port" }, true},
		{"profiler and metrics share an addr", func(c *Config) {
			c.Profiler.Enabled = true
			c.Profiler.Addr = c.Metrics.Addr
		}, true},
		{"json log format", func(c *Config) { c.Log.Format = "json" }, false},
		{"none log level", func(c *Config) { c.Log.Level = "none" }, false},
		{"disabled http skips addr validation", func(c *Config) {
			c.HTTP.Enabled = false
			c.HTTP.Addr = "no-port"
		}, false},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			cfg := DefaultConfig()
			test.mutate(cfg)
			err := cfg.Verify()
			if test.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestShouldCacheDecisions(t *testing.T) {
	c := CacheConfig{Enabled: true, Limit: 100}
	require.True(t, c.ShouldCacheDecisions())

	c.Limit = 0
	require.False(t, c.ShouldCacheDecisions())

	c = CacheConfig{Enabled: false, Limit: 100}
	require.False(t, c.ShouldCacheDecisions())
}
