// metacontrold is the meta-routing control plane: it serves the HTTP Meta
// API (MetaRouter), the trigger-fire endpoint (TriggerHandler / RuleFanout),
// an optional MCP front door, Prometheus metrics, and the retention
// housekeeping job, all wired from a single configuration source.
package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/actionmesh/metacontrol/internal/activationclient"
	"github.com/actionmesh/metacontrol/internal/activationlog"
	"github.com/actionmesh/metacontrol/internal/activationstore"
	"github.com/actionmesh/metacontrol/internal/authstore"
	"github.com/actionmesh/metacontrol/internal/config"
	"github.com/actionmesh/metacontrol/internal/entitystore"
	"github.com/actionmesh/metacontrol/internal/fanout"
	"github.com/actionmesh/metacontrol/internal/housekeeping"
	"github.com/actionmesh/metacontrol/internal/mcpfront"
	"github.com/actionmesh/metacontrol/internal/metarouter"
	"github.com/actionmesh/metacontrol/internal/metaresolve"
	"github.com/actionmesh/metacontrol/internal/metrics"
	"github.com/actionmesh/metacontrol/internal/syscreds"
	"github.com/actionmesh/metacontrol/internal/telemetry"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	configPath := flag.String("config", "", "path to a JSON config file (optional; env vars always override)")
	flag.Parse()

	logger, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintf(os.Stderr, "metacontrold: build logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Fatal("failed to load config", zap.Error(err))
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	shutdownTracing, err := telemetry.InitTraceProvider(ctx, cfg.TracingEndpoint, version)
	if err != nil {
		logger.Fatal("failed to init tracing", zap.Error(err))
	}
	defer func() {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if err := shutdownTracing(shutdownCtx); err != nil {
			logger.Error("tracing shutdown error", zap.Error(err))
		}
	}()

	entities, auth, activations, closeStores, err := buildStores(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("failed to wire document stores", zap.Error(err))
	}
	defer closeStores()

	retention, err := housekeeping.ParseRetention(cfg.RetentionPeriod)
	if err != nil {
		logger.Fatal("invalid retention period", zap.String("retention_period", cfg.RetentionPeriod), zap.Error(err))
	}
	compactor, err := housekeeping.New(activations, retention, cfg.HousekeepingSchedule, logger)
	if err != nil {
		logger.Fatal("invalid housekeeping schedule", zap.String("schedule", cfg.HousekeepingSchedule), zap.Error(err))
	}
	compactor.Start()
	defer compactor.Stop()

	resolver := metaresolve.New(entities, cfg.SystemID, logger)
	client := activationclient.New(http.DefaultClient, cfg.BackendHostBase, cfg.BackendAPIVersion)
	creds := syscreds.New(auth, cfg.SystemID, logger)

	routerCfg := metarouter.Config{
		APIPath:    cfg.APIPath,
		APIVersion: cfg.APIVersion,
		Prefix:     cfg.Prefix,
		SystemID:   cfg.SystemID,
	}
	router := metarouter.New(routerCfg, resolver, entities, auth, creds, client, logger)

	fanoutEngine := fanout.New(client)
	activationWriter := activationlog.New(activations, logger)
	triggerHandler := metarouter.NewTriggerHandler(entities, router, fanoutEngine, activationWriter, logger)

	mux := http.NewServeMux()
	router.Mount(mux)
	triggerHandler.Mount(mux)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprintln(w, "ok")
	})
	mux.HandleFunc("GET /version", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"version":%q,"commit":%q,"date":%q}`+"\n", version, commit, date)
	})

	mcpServer := mcpfront.New(resolver, entities, auth, creds, client, cfg.SystemID, cfg.MCPEnabled, logger)
	mux.Handle("/mcp", mcpServer.Handler())

	srv := &http.Server{
		Addr:         cfg.ListenAddr,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	metricsSrv := &http.Server{
		Addr:    cfg.MetricsAddr,
		Handler: promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}),
	}

	logger.Info("starting metacontrold",
		zap.String("addr", cfg.ListenAddr),
		zap.String("metrics_addr", cfg.MetricsAddr),
		zap.String("system_id", cfg.SystemID),
		zap.Bool("mcp_enabled", cfg.MCPEnabled),
		zap.String("version", version),
	)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("meta api server error", zap.Error(err))
		}
	}()
	go func() {
		if err := metricsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("metrics server error", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("meta api shutdown error", zap.Error(err))
	}
	if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error("metrics shutdown error", zap.Error(err))
	}
}

// buildStores selects the in-memory or SQL-backed implementation of each
// document store depending on whether its DSN is configured, and returns a
// cleanup func that closes whatever SQL connections were opened.
func buildStores(ctx context.Context, cfg config.Config, logger *zap.Logger) (entitystore.Store, authstore.Store, activationstore.CompactableStore, func(), error) {
	var closers []func()
	closeAll := func() {
		for _, c := range closers {
			c()
		}
	}

	entities, err := buildEntityStore(ctx, cfg.EntityStoreDSN, &closers)
	if err != nil {
		return nil, nil, nil, closeAll, fmt.Errorf("entity store: %w", err)
	}

	auth, err := buildAuthStore(ctx, cfg.AuthStoreDSN, &closers)
	if err != nil {
		closeAll()
		return nil, nil, nil, closeAll, fmt.Errorf("auth store: %w", err)
	}

	activations, err := buildActivationStore(ctx, cfg.ActivationStoreDSN, &closers)
	if err != nil {
		closeAll()
		return nil, nil, nil, closeAll, fmt.Errorf("activation store: %w", err)
	}

	logger.Info("document stores ready",
		zap.Bool("entity_store_sql", cfg.EntityStoreDSN != ""),
		zap.Bool("auth_store_sql", cfg.AuthStoreDSN != ""),
		zap.Bool("activation_store_sql", cfg.ActivationStoreDSN != ""),
	)
	return entities, auth, activations, closeAll, nil
}

func buildEntityStore(ctx context.Context, dsn string, closers *[]func()) (entitystore.Store, error) {
	if dsn == "" {
		return entitystore.NewMemoryStore(), nil
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	*closers = append(*closers, pool.Close)
	if err := entitystore.EnsureSchema(ctx, pool); err != nil {
		return nil, err
	}
	return entitystore.NewPostgresStore(pool), nil
}

func buildAuthStore(ctx context.Context, dsn string, closers *[]func()) (authstore.Store, error) {
	if dsn == "" {
		return authstore.NewMemoryStore(), nil
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	*closers = append(*closers, pool.Close)
	if err := authstore.EnsureSchema(ctx, pool); err != nil {
		return nil, err
	}
	return authstore.NewPostgresStore(pool), nil
}

func buildActivationStore(ctx context.Context, dsn string, closers *[]func()) (activationstore.CompactableStore, error) {
	if dsn == "" {
		return activationstore.NewMemoryStore(), nil
	}
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, err
	}
	*closers = append(*closers, func() { db.Close() })
	if err := db.PingContext(ctx); err != nil {
		return nil, err
	}
	if err := activationstore.EnsureSchema(ctx, db); err != nil {
		return nil, err
	}
	return activationstore.NewMySQLStore(db), nil
}
