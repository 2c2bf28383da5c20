package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/praxisworks/tenantcore/internal/router"
	"github.com/praxisworks/tenantcore/pkg/config"
	"github.com/praxisworks/tenantcore/pkg/events"
	"github.com/praxisworks/tenantcore/pkg/httpserver"
	"github.com/praxisworks/tenantcore/pkg/logger"
	"github.com/praxisworks/tenantcore/pkg/pg"
	"github.com/praxisworks/tenantcore/pkg/redis"
	"github.com/praxisworks/tenantcore/pkg/requestid"
	"github.com/praxisworks/tenantcore/pkg/tenancy"
)

const orgMappingChangedEvent = "tenancy.org_mapping_changed"

type orgMappingChanged struct {
	OrgID string `json:"org_id"`
}

type appConfig struct {
	Env              string        `env:"APP_ENV" envDefault:"development"`
	CacheTTL         time.Duration `env:"TENANT_CACHE_TTL" envDefault:"0"`
	WorkerPull       time.Duration `env:"EVENTS_PULL_INTERVAL" envDefault:"1s"`
	WorkerLock       time.Duration `env:"EVENTS_LOCK_TIMEOUT" envDefault:"1m"`
	WorkerConcurrent int           `env:"EVENTS_MAX_CONCURRENT" envDefault:"4"`
}

func main() {
	var (
		appCfg  appConfig
		pgCfg   pg.Config
		httpCfg httpserver.Config
		rdCfg   redis.Config
	)
	config.MustLoad(&appCfg)
	config.MustLoad(&pgCfg)
	config.MustLoad(&httpCfg)
	config.MustLoad(&rdCfg)

	log := logger.New(
		logger.WithEnvironment(appCfg.Env, "tenantcore"),
		logger.WithContextExtractors(
			requestid.LoggerExtractor(),
			tenancy.LoggerExtractor(),
			tenancy.MemberLoggerExtractor(),
		),
	)
	logger.SetAsDefault(log)

	if err := run(context.Background(), log, appCfg, pgCfg, httpCfg, rdCfg); err != nil {
		log.Error("server exited", logger.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, log *slog.Logger, appCfg appConfig, pgCfg pg.Config, httpCfg httpserver.Config, rdCfg redis.Config) error {
	pool, err := pg.Connect(ctx, pgCfg)
	if err != nil {
		return err
	}
	defer pool.Close()

	if err := pg.Migrate(ctx, pool, pgCfg, log); err != nil {
		return err
	}

	probes := []func(context.Context) error{pg.Healthcheck(pool)}

	// Redis backs the shared resolution cache when configured; otherwise the
	// in-process cache serves a single instance fine.
	cache := tenancy.NewMemoryCache()
	if rdCfg.URL != "" {
		client, err := redis.Connect(ctx, rdCfg)
		if err != nil {
			return err
		}
		defer client.Close()
		cache = tenancy.NewRedisCache(client, appCfg.CacheTTL, log)
		probes = append(probes, redis.Healthcheck(client))
	}

	storage := events.NewPGStorage(pool)
	worker, err := events.NewWorker(storage,
		events.WithPullInterval(appCfg.WorkerPull),
		events.WithLockTimeout(appCfg.WorkerLock),
		events.WithMaxConcurrent(appCfg.WorkerConcurrent),
		events.WithWorkerLogger(log),
	)
	if err != nil {
		return err
	}

	// Provisioning flows record this event when an org's mapping changes;
	// delivering it evicts the stale descriptor from the resolution cache.
	worker.RegisterHandlers(events.NewNamedHandler(orgMappingChangedEvent,
		func(ctx context.Context, e orgMappingChanged) error {
			cache.Invalidate(ctx, e.OrgID)
			return nil
		}))

	handler := router.New(router.Deps{
		Logger:          log,
		Claims:          router.HeaderClaims,
		Directory:       tenancy.NewPGDirectory(pool),
		Members:         tenancy.NewPGMemberDirectory(pool),
		Cache:           cache,
		ReadinessProbes: probes,
	})

	srv := httpserver.NewFromConfig(httpCfg, httpserver.WithLogger(log))

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return srv.Run(ctx, handler) })
	g.Go(worker.Run(ctx))

	return g.Wait()
}
