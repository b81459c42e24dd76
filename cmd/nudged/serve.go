package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/nudgekit/core/pkg/api"
	"github.com/nudgekit/core/pkg/cart"
	"github.com/nudgekit/core/pkg/catalog"
	"github.com/nudgekit/core/pkg/checkout"
	"github.com/nudgekit/core/pkg/config"
	"github.com/nudgekit/core/pkg/identity"
	"github.com/nudgekit/core/pkg/notify"
	"github.com/nudgekit/core/pkg/nudge"
	"github.com/nudgekit/core/pkg/observability"
	"github.com/nudgekit/core/pkg/orders"

	_ "github.com/lib/pq"  // Postgres driver
	_ "modernc.org/sqlite" // SQLite driver
)

func runServe(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	fs.SetOutput(stderr)
	rps := fs.Int("rps", 50, "per-IP request rate limit")
	burst := fs.Int("burst", 100, "per-IP burst allowance")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	cfg := config.Load()
	logger := newLogger(cfg.LogLevel)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	obs, err := observability.New(ctx, &observability.Config{
		ServiceName:  "nudged",
		Environment:  "production",
		OTLPEndpoint: cfg.OTLPEndpoint,
		SampleRate:   1.0,
		BatchTimeout: 5 * time.Second,
		Enabled:      cfg.TracesEnabled && cfg.OTLPEndpoint != "",
		Insecure:     true,
	})
	if err != nil {
		logger.Error("init observability", "error", err)
		return 1
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = obs.Shutdown(shutdownCtx)
	}()

	policy, err := config.LoadPolicy(cfg.PoliciesDir, cfg.PolicyCode)
	if err != nil {
		logger.Error("load policy", "code", cfg.PolicyCode, "error", err)
		return 1
	}

	store, lookup, recorder, closeStores, err := openStores(ctx, cfg, logger)
	if err != nil {
		logger.Error("open stores", "error", err)
		return 1
	}
	defer closeStores()

	shopCart := cart.NewMemory()
	gate := checkout.NewGate(
		shopCart,
		identity.NewTokenProvider([]byte(cfg.TokenSecret)),
		store,
		nudge.NewEngine(lookup, policy.EngineThresholds()),
		recorder,
		notify.NewSlogNotifier(logger),
		checkout.WithLogger(logger),
		checkout.WithTracer(obs.Tracer()),
		checkout.WithMeter(obs.Meter()),
	)

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           api.NewServer(gate, shopCart, store, logger, api.NewRateLimiter(*rps, *burst)).Routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", "port", cfg.Port, "policy", policy.Code)
		errCh <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("shutdown", "error", err)
			return 1
		}
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("serve", "error", err)
			return 1
		}
	}
	return 0
}

// openStores selects backing stores from configuration: Postgres when
// POSTGRES_URL is set, SQLite otherwise. The nudge recorder prefers
// Redis when REDIS_ADDR is set.
func openStores(ctx context.Context, cfg *config.Config, logger *slog.Logger) (orders.Store, catalog.Lookup, nudge.Recorder, func(), error) {
	var closers []func()
	closeAll := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	var store orders.Store
	var lookup catalog.Lookup
	var recorder nudge.Recorder

	if cfg.PostgresURL != "" {
		db, err := sql.Open("postgres", cfg.PostgresURL)
		if err != nil {
			return nil, nil, nil, nil, fmt.Errorf("open postgres: %w", err)
		}
		if err := db.PingContext(ctx); err != nil {
			_ = db.Close()
			return nil, nil, nil, nil, fmt.Errorf("ping postgres: %w", err)
		}
		closers = append(closers, func() { _ = db.Close() })
		store = orders.NewPostgresStore(db)
	}

	db, err := sql.Open("sqlite", cfg.DatabasePath)
	if err != nil {
		closeAll()
		return nil, nil, nil, nil, fmt.Errorf("open sqlite: %w", err)
	}
	closers = append(closers, func() { _ = db.Close() })

	if store == nil {
		sqliteStore, err := orders.NewSQLiteStore(db)
		if err != nil {
			closeAll()
			return nil, nil, nil, nil, fmt.Errorf("init order store: %w", err)
		}
		store = sqliteStore
	}

	catalogStore, err := catalog.NewSQLiteStore(db)
	if err != nil {
		closeAll()
		return nil, nil, nil, nil, fmt.Errorf("init catalog store: %w", err)
	}
	lookup = catalogStore

	if cfg.RedisAddr != "" {
		redisRecorder := nudge.NewRedisRecorder(cfg.RedisAddr, "", 0)
		closers = append(closers, func() { _ = redisRecorder.Close() })
		recorder = redisRecorder
	} else {
		sqliteRecorder, err := nudge.NewSQLiteRecorder(db)
		if err != nil {
			closeAll()
			return nil, nil, nil, nil, fmt.Errorf("init interaction recorder: %w", err)
		}
		recorder = sqliteRecorder
	}

	logger.Info("stores ready",
		"orders", storeKind(cfg),
		"recorder", recorderKind(cfg),
		"database", cfg.DatabasePath,
	)
	return store, lookup, recorder, closeAll, nil
}

func storeKind(cfg *config.Config) string {
	if cfg.PostgresURL != "" {
		return "postgres"
	}
	return "sqlite"
}

func recorderKind(cfg *config.Config) string {
	if cfg.RedisAddr != "" {
		return "redis"
	}
	return "sqlite"
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToUpper(level) {
	case "DEBUG":
		lvl = slog.LevelDebug
	case "WARN":
		lvl = slog.LevelWarn
	case "ERROR":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
}
