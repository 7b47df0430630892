// Package run contains the command to run the circlevis server.
package run

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/pprof"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/ILHT-IDSP/IDSP-Circle-sub002/internal/config"
	"github.com/ILHT-IDSP/IDSP-Circle-sub002/pkg/engine"
	"github.com/ILHT-IDSP/IDSP-Circle-sub002/pkg/logger"
	"github.com/ILHT-IDSP/IDSP-Circle-sub002/pkg/storage"
	"github.com/ILHT-IDSP/IDSP-Circle-sub002/pkg/storage/memory"
	"github.com/ILHT-IDSP/IDSP-Circle-sub002/pkg/storage/sqlite"
	"github.com/ILHT-IDSP/IDSP-Circle-sub002/pkg/storage/storagewrappers"
	"github.com/ILHT-IDSP/IDSP-Circle-sub002/pkg/types"
)

func NewRunCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the circlevis server",
		Long:  "Run the circlevis server.",
		Run:   run,
		Args:  cobra.NoArgs,
	}

	bindRunFlags(cmd)

	return cmd
}

// ReadConfig returns the circlevis server configuration based on the values by
// viper.
func ReadConfig() (*config.Config, error) {
	cfg := config.DefaultConfig()

	viper.SetTypeByDefaultValue(true)
	err := viper.ReadInConfig()
	if err != nil {
		if !errors.As(err, &viper.ConfigFileNotFoundError{}) {
			return nil, fmt.Errorf("failed to load server config: %w", err)
		}
	}

	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal server config: %w", err)
	}

	return cfg, nil
}

func run(_ *cobra.Command, _ []string) {
	cfg, err := ReadConfig()
	if err != nil {
		panic(err)
	}

	if err := cfg.Verify(); err != nil {
		panic(err)
	}

	log := logger.MustNewLogger(cfg.Log.Format, cfg.Log.Level)
	serverCtx := &ServerContext{Logger: log}
	if err := serverCtx.Run(context.Background(), cfg); err != nil {
		panic(err)
	}
}

// ServerContext holds the dependencies shared by the servers started by
// the run command.
type ServerContext struct {
	Logger logger.Logger
}

func (s *ServerContext) datastoreConfig(cfg *config.Config) (storage.RelationshipStore, error) {
	var ds storage.RelationshipStore

	switch cfg.Datastore.Engine {
	case "memory":
		ds = memory.New()
	case "sqlite":
		sqliteDS, err := sqlite.New(cfg.Datastore.URI, &sqlite.Config{
			Logger:          s.Logger,
			MaxOpenConns:    cfg.Datastore.MaxOpenConns,
			MaxIdleConns:    cfg.Datastore.MaxIdleConns,
			ConnMaxIdleTime: cfg.Datastore.ConnMaxIdleTime,
			ConnMaxLifetime: cfg.Datastore.ConnMaxLifetime,
			ExportMetrics:   cfg.Metrics.Enabled,
		})
		if err != nil {
			return nil, fmt.Errorf("initialize sqlite datastore: %w", err)
		}
		ds = sqliteDS
	default:
		return nil, fmt.Errorf("storage engine '%s' is unsupported", cfg.Datastore.Engine)
	}

	return storagewrappers.NewInstrumentedDatastore(
		storagewrappers.NewRetryingDatastore(ds),
	), nil
}

// Run starts the HTTP, metrics and profiler servers and blocks until the
// process receives an interrupt or termination signal.
func (s *ServerContext) Run(ctx context.Context, cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	ds, err := s.datastoreConfig(cfg)
	if err != nil {
		return err
	}
	defer ds.Close()
	s.Logger.Info(fmt.Sprintf("using '%v' storage engine", cfg.Datastore.Engine))

	eng, err := engine.New(ds,
		engine.WithLogger(s.Logger),
		engine.WithCacheEnabled(cfg.Cache.ShouldCacheDecisions()),
		engine.WithCacheTTL(cfg.Cache.TTL),
		engine.WithCacheLimit(cfg.Cache.Limit),
	)
	if err != nil {
		return fmt.Errorf("initialize visibility engine: %w", err)
	}
	defer eng.Close()

	var profilerServer *http.Server
	if cfg.Profiler.Enabled {
		mux := http.NewServeMux()
		mux.HandleFunc("/debug/pprof/", pprof.Index)
		mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
		mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
		mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
		mux.HandleFunc("/debug/pprof/trace", pprof.Trace)

		profilerServer = &http.Server{Addr: cfg.Profiler.Addr, Handler: mux}

		go func() {
			s.Logger.Info(fmt.Sprintf("🔬 starting pprof profiler on '%s'", cfg.Profiler.Addr))

			if err := profilerServer.ListenAndServe(); err != nil {
				if !errors.Is(err, http.ErrServerClosed) {
					s.Logger.Fatal("failed to start pprof profiler", zap.Error(err))
				}
			}
		}()
	}

	var metricsServer *http.Server
	if cfg.Metrics.Enabled {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())

		metricsServer = &http.Server{Addr: cfg.Metrics.Addr, Handler: mux}

		go func() {
			s.Logger.Info(fmt.Sprintf("📈 starting metrics server on '%s'", cfg.Metrics.Addr))

			if err := metricsServer.ListenAndServe(); err != nil {
				if !errors.Is(err, http.ErrServerClosed) {
					s.Logger.Fatal("failed to start metrics server", zap.Error(err))
				}
			}
		}()
	}

	var httpServer *http.Server
	if cfg.HTTP.Enabled {
		mux := http.NewServeMux()
		mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(`{"status":"ok"}`))
		})
		mux.Handle("GET /v1/resolve", newResolveHandler(eng, cfg.RequestTimeout, s.Logger))
		mux.Handle("GET /v1/resolve-many", newResolveManyHandler(eng, cfg.RequestTimeout, s.Logger))

		httpServer = &http.Server{
			Addr:    cfg.HTTP.Addr,
			Handler: mux,
		}

		go func() {
			s.Logger.Info(fmt.Sprintf("🚀 starting circlevis HTTP server on '%s'", cfg.HTTP.Addr))

			if err := httpServer.ListenAndServe(); err != nil {
				if !errors.Is(err, http.ErrServerClosed) {
					s.Logger.Fatal("failed to start HTTP server", zap.Error(err))
				}
			}
		}()
	}

	<-ctx.Done()
	s.Logger.Info("attempting to shutdown gracefully")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if httpServer != nil {
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			s.Logger.Info("failed to shutdown the HTTP server", zap.Error(err))
		}
	}
	if profilerServer != nil {
		if err := profilerServer.Shutdown(shutdownCtx); err != nil {
			s.Logger.Info("failed to shutdown the profiler server", zap.Error(err))
		}
	}
	if metricsServer != nil {
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			s.Logger.Info("failed to shutdown the metrics server", zap.Error(err))
		}
	}

	s.Logger.Info("server exited. goodbye 👋")
	return nil
}

type decisionResponse struct {
	Outcome string       `json:"outcome"`
	Reason  string       `json:"reason,omitempty"`
	Flags   *types.Flags `json:"flags,omitempty"`
}

type batchResponse struct {
	Results map[string]decisionResponse `json:"results"`
}

func newResolveHandler(eng *engine.Engine, timeout time.Duration, log logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), timeout)
		defer cancel()

		kind := types.Kind(r.URL.Query().Get("kind"))
		if !kind.Valid() {
			http.Error(w, "unknown view kind", http.StatusBadRequest)
			return
		}
		id, err := strconv.ParseInt(r.URL.Query().Get("id"), 10, 64)
		if err != nil || id <= 0 {
			http.Error(w, "id must be a positive integer", http.StatusBadRequest)
			return
		}
		actor, err := actorFromRequest(r)
		if err != nil {
			http.Error(w, "actor must be a positive integer", http.StatusBadRequest)
			return
		}

		decision, err := eng.Resolve(ctx, actor, types.Target{Kind: kind, ID: id}, nil)
		if err != nil {
			writeResolutionError(w, log, err)
			return
		}

		writeDecision(w, decision)
	})
}

func newResolveManyHandler(eng *engine.Engine, timeout time.Duration, log logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), timeout)
		defer cancel()

		kind := types.Kind(r.URL.Query().Get("kind"))
		if !kind.Valid() {
			http.Error(w, "unknown view kind", http.StatusBadRequest)
			return
		}
		var ids []int64
		for _, raw := range r.URL.Query()["id"] {
			id, err := strconv.ParseInt(raw, 10, 64)
			if err != nil || id <= 0 {
				http.Error(w, "id must be a positive integer", http.StatusBadRequest)
				return
			}
			ids = append(ids, id)
		}
		actor, err := actorFromRequest(r)
		if err != nil {
			http.Error(w, "actor must be a positive integer", http.StatusBadRequest)
			return
		}

		results, err := eng.ResolveMany(ctx, actor, kind, ids)
		if err != nil {
			writeResolutionError(w, log, err)
			return
		}

		resp := batchResponse{Results: make(map[string]decisionResponse, len(results))}
		for id, decision := range results {
			resp.Results[strconv.FormatInt(id, 10)] = toDecisionResponse(decision)
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	})
}

func actorFromRequest(r *http.Request) (types.Actor, error) {
	raw := r.URL.Query().Get("actor")
	if raw == "" {
		return types.Guest(), nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return types.Actor{}, fmt.Errorf("invalid actor id %q", raw)
	}
	return types.UserActor(id), nil
}

// Denials and missing resources share the same response body shape so a
// caller cannot distinguish a hidden resource from an absent one beyond
// the status code its outcome maps to.
func writeDecision(w http.ResponseWriter, decision types.Decision) {
	status := http.StatusOK
	switch decision.Outcome {
	case types.OutcomeDeny:
		status = http.StatusForbidden
	case types.OutcomeNotFound:
		status = http.StatusNotFound
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(toDecisionResponse(decision))
}

func toDecisionResponse(decision types.Decision) decisionResponse {
	resp := decisionResponse{
		Outcome: decision.Outcome.String(),
		Reason:  string(decision.Reason),
	}
	if decision.Outcome == types.OutcomeAllow {
		flags := decision.Flags
		resp.Flags = &flags
	}
	return resp
}

func writeResolutionError(w http.ResponseWriter, log logger.Logger, err error) {
	switch {
	case errors.Is(err, types.ErrUnauthenticated):
		http.Error(w, "authentication required", http.StatusUnauthorized)
	case errors.Is(err, storage.ErrUnavailable):
		http.Error(w, "upstream unavailable", http.StatusServiceUnavailable)
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, storage.ErrCancelled):
		http.Error(w, "request timed out", http.StatusGatewayTimeout)
	default:
		log.Error("resolution request failed", zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}
