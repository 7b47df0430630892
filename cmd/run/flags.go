package run

import (
	"github.com/spf13/cobra"

	"github.com/ILHT-IDSP/IDSP-Circle-sub002/cmd/util"
	"github.com/ILHT-IDSP/IDSP-Circle-sub002/internal/config"
)

// bindRunFlags binds the cobra cmd flags to the equivalent config value being managed
// by viper. This bridges the config between cobra flags and viper flags.
func bindRunFlags(command *cobra.Command) {
	defaultConfig := config.DefaultConfig()
	flags := command.Flags()

	flags.String("datastore-engine", defaultConfig.Datastore.Engine, "the datastore engine that will be used for persistence ('memory' or 'sqlite')")
	util.MustBindPFlag("datastore.engine", flags.Lookup("datastore-engine"))
	util.MustBindEnv("datastore.engine", "CIRCLEVIS_DATASTORE_ENGINE")

	flags.String("datastore-uri", defaultConfig.Datastore.URI, "the connection uri to use to connect to the datastore (e.g. 'file:circlevis.db')")
	util.MustBindPFlag("datastore.uri", flags.Lookup("datastore-uri"))
	util.MustBindEnv("datastore.uri", "CIRCLEVIS_DATASTORE_URI")

	flags.Int("datastore-max-open-conns", defaultConfig.Datastore.MaxOpenConns, "the maximum number of open connections to the datastore")
	util.MustBindPFlag("datastore.maxOpenConns", flags.Lookup("datastore-max-open-conns"))
	util.MustBindEnv("datastore.maxOpenConns", "CIRCLEVIS_DATASTORE_MAX_OPEN_CONNS")

	flags.Int("datastore-max-idle-conns", defaultConfig.Datastore.MaxIdleConns, "the maximum number of connections to the datastore in the idle connection pool")
	util.MustBindPFlag("datastore.maxIdleConns", flags.Lookup("datastore-max-idle-conns"))
	util.MustBindEnv("datastore.maxIdleConns", "CIRCLEVIS_DATASTORE_MAX_IDLE_CONNS")

	flags.Duration("datastore-conn-max-idle-time", defaultConfig.Datastore.ConnMaxIdleTime, "the maximum amount of time a connection to the datastore may be idle")
	util.MustBindPFlag("datastore.connMaxIdleTime", flags.Lookup("datastore-conn-max-idle-time"))
	util.MustBindEnv("datastore.connMaxIdleTime", "CIRCLEVIS_DATASTORE_CONN_MAX_IDLE_TIME")

	flags.Duration("datastore-conn-max-lifetime", defaultConfig.Datastore.ConnMaxLifetime, "the maximum amount of time a connection to the datastore may be reused")
	util.MustBindPFlag("datastore.connMaxLifetime", flags.Lookup("datastore-conn-max-lifetime"))
	util.MustBindEnv("datastore.connMaxLifetime", "CIRCLEVIS_DATASTORE_CONN_MAX_LIFETIME")

	flags.Bool("cache-enabled", defaultConfig.Cache.Enabled, "enable/disable the decision cache")
	util.MustBindPFlag("cache.enabled", flags.Lookup("cache-enabled"))
	util.MustBindEnv("cache.enabled", "CIRCLEVIS_CACHE_ENABLED")

	flags.Int64("cache-limit", defaultConfig.Cache.Limit, "the maximum number of cached visibility decisions")
	util.MustBindPFlag("cache.limit", flags.Lookup("cache-limit"))
	util.MustBindEnv("cache.limit", "CIRCLEVIS_CACHE_LIMIT")

	flags.Duration("cache-ttl", defaultConfig.Cache.TTL, "time that cached visibility decisions will remain valid")
	util.MustBindPFlag("cache.ttl", flags.Lookup("cache-ttl"))
	util.MustBindEnv("cache.ttl", "CIRCLEVIS_CACHE_TTL")

	flags.Bool("http-enabled", defaultConfig.HTTP.Enabled, "enable/disable the circlevis HTTP server")
	util.MustBindPFlag("http.enabled", flags.Lookup("http-enabled"))
	util.MustBindEnv("http.enabled", "CIRCLEVIS_HTTP_ENABLED")

	flags.String("http-addr", defaultConfig.HTTP.Addr, "the host:port address to serve the HTTP server on")
	util.MustBindPFlag("http.addr", flags.Lookup("http-addr"))
	util.MustBindEnv("http.addr", "CIRCLEVIS_HTTP_ADDR")

	flags.Bool("profiler-enabled", defaultConfig.Profiler.Enabled, "enable/disable pprof profiling")
	util.MustBindPFlag("profiler.enabled", flags.Lookup("profiler-enabled"))
	util.MustBindEnv("profiler.enabled", "CIRCLEVIS_PROFILER_ENABLED")

	flags.String("profiler-addr", defaultConfig.Profiler.Addr, "the host:port address to serve the pprof profiler server on")
	util.MustBindPFlag("profiler.addr", flags.Lookup("profiler-addr"))
	util.MustBindEnv("profiler.addr", "CIRCLEVIS_PROFILER_ADDR")

	flags.Bool("metrics-enabled", defaultConfig.Metrics.Enabled, "enable/disable prometheus metrics on the '/metrics' endpoint")
	util.MustBindPFlag("metrics.enabled", flags.Lookup("metrics-enabled"))
	util.MustBindEnv("metrics.enabled", "CIRCLEVIS_METRICS_ENABLED")

	flags.String("metrics-addr", defaultConfig.Metrics.Addr, "the host:port address to serve the prometheus metrics server on")
	util.MustBindPFlag("metrics.addr", flags.Lookup("metrics-addr"))
	util.MustBindEnv("metrics.addr", "CIRCLEVIS_METRICS_ADDR")

	flags.String("log-format", defaultConfig.Log.Format, "the log format to output logs in ('text' or 'json')")
	util.MustBindPFlag("log.format", flags.Lookup("log-format"))
	util.MustBindEnv("log.format", "CIRCLEVIS_LOG_FORMAT")

	flags.String("log-level", defaultConfig.Log.Level, "the log level to use ('none', 'debug', 'info', 'warn', 'error', 'panic', 'fatal')")
	util.MustBindPFlag("log.level", flags.Lookup("log-level"))
	util.MustBindEnv("log.level", "CIRCLEVIS_LOG_LEVEL")

	flags.Duration("request-timeout", defaultConfig.RequestTimeout, "the timeout for each resolution request")
	util.MustBindPFlag("requestTimeout", flags.Lookup("request-timeout"))
	util.MustBindEnv("requestTimeout", "CIRCLEVIS_REQUEST_TIMEOUT")
}
