package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/lib/pq"
	"golang.org/x/sync/errgroup"

	"bhandara/internal/audit"
	httpapi "bhandara/internal/http"
	"bhandara/internal/platform/config"
	"bhandara/internal/platform/httpserver"
	"bhandara/internal/platform/logger"
	platformmetrics "bhandara/internal/platform/metrics"
	platformredis "bhandara/internal/platform/redis"
	"bhandara/internal/platform/tracing"
	"bhandara/internal/registration/flow"
	"bhandara/internal/registration/handler"
	regmetrics "bhandara/internal/registration/metrics"
	"bhandara/internal/registration/persist"
	"bhandara/internal/registration/service"
	"bhandara/internal/registration/store"
)

// snapshotter is what main needs from a snapshot backend: the service's
// Load/Save contract plus a health probe for /healthz.
type snapshotter interface {
	service.Snapshotter
	Health(ctx context.Context) error
}

// main wires dependencies and owns process lifecycle. Domain behavior lives
// in internal/registration; nothing here should make business decisions.
func main() {
	cfg := config.FromEnv()
	log := logger.New()

	if err := run(cfg, log); err != nil {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Server, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	tp, err := tracing.NewProvider(cfg.TracingEnabled, cfg.TracingSample)
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := tp.Shutdown(shutdownCtx); err != nil {
			log.Warn("tracing shutdown failed", "error", err)
		}
	}()

	snap, cleanup, err := newSnapshotter(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer cleanup()

	variant, err := flow.ByName(cfg.FlowVariant)
	if err != nil {
		return err
	}

	records, err := snap.Load(ctx)
	if err != nil {
		return err
	}
	memStore := store.NewMemory()
	memStore.Seed(records)
	log.Info("snapshot loaded",
		"backend", string(cfg.SnapshotBackend),
		"conversations", len(records),
	)

	auditStore := audit.NewInMemoryStore()
	publisher := audit.NewPublisher(log)
	auditWorker := audit.NewWorker(auditStore, publisher.Inbox(), log)

	svc := service.New(memStore, snap, variant, log,
		service.WithMetrics(regmetrics.New()),
		service.WithAuditor(publisher),
		service.WithTracer(tp.Tracer()),
	)

	h := handler.New(svc, log)
	router := httpapi.NewRouter(h, log, platformmetrics.New(), snap)
	srv := httpserver.New(cfg.Addr, router)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return auditWorker.Run(gctx)
	})

	g.Go(func() error {
		log.Info("starting registration server",
			"addr", cfg.Addr,
			"flow_variant", cfg.FlowVariant,
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	log.Info("server stopped")
	return nil
}

// newSnapshotter picks the durable backend from config. The returned cleanup
// closes any connections the backend holds.
func newSnapshotter(ctx context.Context, cfg config.Server, log *slog.Logger) (snapshotter, func(), error) {
	noop := func() {}

	switch cfg.SnapshotBackend {
	case config.SnapshotFile:
		return persist.NewFile(cfg.SnapshotFile, log), noop, nil

	case config.SnapshotRedis:
		client, err := platformredis.New(cfg.RedisURL)
		if err != nil {
			return nil, nil, err
		}
		if client == nil {
			return nil, nil, errors.New("REG_REDIS_URL is required for the redis snapshot backend")
		}
		return persist.NewRedis(client.Client), func() { _ = client.Close() }, nil

	case config.SnapshotPostgres:
		if cfg.PostgresURL == "" {
			return nil, nil, errors.New("REG_POSTGRES_URL is required for the postgres snapshot backend")
		}
		db, err := sql.Open("postgres", cfg.PostgresURL)
		if err != nil {
			return nil, nil, err
		}
		if err := db.PingContext(ctx); err != nil {
			_ = db.Close()
			return nil, nil, err
		}
		pg := persist.NewPostgres(db)
		if err := pg.EnsureSchema(ctx); err != nil {
			_ = db.Close()
			return nil, nil, err
		}
		return pg, func() { _ = db.Close() }, nil

	default:
		return nil, nil, errors.New("unknown snapshot backend: " + string(cfg.SnapshotBackend))
	}
}
