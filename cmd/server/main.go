package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"

	"lifebridge/internal/audit"
	auditstore "lifebridge/internal/audit/store"
	"lifebridge/internal/matching"
	matchinghandler "lifebridge/internal/matching/handler"
	matchingmetrics "lifebridge/internal/matching/metrics"
	"lifebridge/internal/platform/config"
	"lifebridge/internal/platform/httpserver"
	"lifebridge/internal/platform/logger"
	"lifebridge/internal/platform/postgres"
	platformredis "lifebridge/internal/platform/redis"
	"lifebridge/internal/privacy"
	"lifebridge/internal/privacy/budget"
	registryhandler "lifebridge/internal/registry/handler"
	registryservice "lifebridge/internal/registry/service"
	registrystore "lifebridge/internal/registry/store"
	"lifebridge/internal/requests"
	httptransport "lifebridge/internal/transport/http"
	"lifebridge/pkg/platform/middleware/auth"
)

// main wires dependencies and owns the server lifecycle. Business logic
// lives in the internal service packages.
func main() {
	cfg, err := config.Load()
	if err != nil {
		os.Stderr.WriteString("configuration error: " + err.Error() + "\n")
		os.Exit(1)
	}

	log := logger.New(cfg.Log.Level, cfg.Log.Format)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := postgres.Connect(ctx, cfg.Postgres)
	if err != nil {
		log.Error("postgres connection failed", "error", err)
		os.Exit(1)
	}
	if pool != nil {
		defer pool.Close()
	}

	redisClient, err := platformredis.New(ctx, cfg.Redis)
	if err != nil {
		log.Error("redis connection failed", "error", err)
		os.Exit(1)
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	profiles, requestStore, disclosures := buildStores(pool)

	engine, err := matching.NewEngine(cfg.Engine)
	if err != nil {
		log.Error("invalid scoring policy", "error", err)
		os.Exit(1)
	}
	filter, err := privacy.NewFilter(cfg.Privacy)
	if err != nil {
		log.Error("invalid noise policy", "error", err)
		os.Exit(1)
	}

	mMetrics := matchingmetrics.New()
	publisher := audit.NewPublisher(disclosures, audit.WithLogger(log))

	matchOpts := []matching.Option{
		matching.WithLogger(log),
		matching.WithMetrics(mMetrics),
		matching.WithConfig(cfg.Matching),
	}
	if cfg.Budget.Enabled {
		matchOpts = append(matchOpts, matching.WithBudgetLedger(buildLedger(redisClient, cfg.Budget)))
	}
	matchSvc, err := matching.NewService(profiles, engine, filter, matchOpts...)
	if err != nil {
		log.Error("matching service init failed", "error", err)
		os.Exit(1)
	}

	requestSvc, err := requests.NewService(requestStore, profiles, requests.WithLogger(log))
	if err != nil {
		log.Error("request service init failed", "error", err)
		os.Exit(1)
	}
	registrySvc, err := registryservice.NewService(profiles, registryservice.WithLogger(log))
	if err != nil {
		log.Error("registry service init failed", "error", err)
		os.Exit(1)
	}

	health := map[string]httptransport.HealthChecker{}
	if pool != nil {
		health["postgres"] = poolHealth{pool}
	}
	if redisClient != nil {
		health["redis"] = redisClient
	}

	router := httptransport.NewRouter(httptransport.Deps{
		Logger:   log,
		Verifier: auth.NewVerifier(cfg.Auth.JWTSigningKey),
		Matching: matchinghandler.NewHandler(matchSvc, filter, publisher,
			matchinghandler.WithLogger(log),
			matchinghandler.WithMetrics(mMetrics),
		),
		Registry: registryhandler.NewHandler(registrySvc, log),
		Requests: requests.NewHandler(requestSvc, log),
		Health:   health,
	})

	srv := httpserver.New(cfg.Server.Addr, router)

	go func() {
		log.Info("server starting", "addr", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
		os.Exit(1)
	}
}

// buildStores picks persistence backends: PostgreSQL when a pool is
// configured, in-memory otherwise.
func buildStores(pool *pgxpool.Pool) (registrystore.ProfileStore, requests.Store, audit.Store) {
	if pool != nil {
		return registrystore.NewPostgres(pool),
			requests.NewPostgresStore(pool),
			auditstore.NewPostgres(pool)
	}
	return registrystore.NewInMemory(),
		requests.NewInMemoryStore(),
		auditstore.NewInMemory()
}

// buildLedger prefers the shared Redis ledger; without Redis the budget is
// tracked per process.
func buildLedger(client *platformredis.Client, cfg budget.Config) budget.Ledger {
	if client != nil {
		return budget.NewRedis(client.Client, cfg)
	}
	return budget.NewInMemory(cfg)
}

type poolHealth struct {
	pool *pgxpool.Pool
}

func (p poolHealth) Health(ctx context.Context) error {
	return p.pool.Ping(ctx)
}
