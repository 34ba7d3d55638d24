package main

import (
	"context"
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"go.uber.org/zap"

	cacheadapter "github.com/smallbiznis/valora-notes/internal/adapter/cache"
	"github.com/smallbiznis/valora-notes/internal/bootstrap"
	"github.com/smallbiznis/valora-notes/internal/config"
	httptransport "github.com/smallbiznis/valora-notes/internal/http"
	"github.com/smallbiznis/valora-notes/internal/http/handler"
	httpmiddleware "github.com/smallbiznis/valora-notes/internal/http/middleware"
	apimiddleware "github.com/smallbiznis/valora-notes/internal/middleware"
	"github.com/smallbiznis/valora-notes/internal/quota"
	"github.com/smallbiznis/valora-notes/internal/repository"
	"github.com/smallbiznis/valora-notes/internal/server"
	"github.com/smallbiznis/valora-notes/internal/service"
	"github.com/smallbiznis/valora-notes/internal/telemetry"
	"github.com/smallbiznis/valora-notes/internal/token"
)

func main() {
	app := fx.New(
		fx.Provide(
			newConfig,
			newLogger,
			newTelemetry,
			newSnowflake,
			newPGXPool,
			newTenantRepository,
			newUserRepository,
			newNoteRepository,
			newRedisClient,
			newPlanCache,
			newQuotaManager,
			newTokenCodec,
			newRateLimiter,
			service.NewAuthService,
			newNoteService,
			newTenantService,
			handler.NewAuthHandler,
			handler.NewNoteHandler,
			handler.NewTenantHandler,
			newAuthMiddleware,
			httptransport.NewRouter,
			server.NewHTTPServer,
		),
		fx.Invoke(useTelemetry, bootstrap.EnsureTenants, startHTTPServer),
	)

	app.Run()
}

func newConfig() (config.Config, error) {
	return config.Load()
}

func newLogger(cfg config.Config) (*zap.Logger, error) {
	var (
		logger *zap.Logger
		err    error
	)
	if cfg.Environment == "development" {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		return nil, err
	}
	zap.ReplaceGlobals(logger)
	return logger, nil
}

func newTelemetry(lc fx.Lifecycle, cfg config.Config, logger *zap.Logger) (*telemetry.Provider, error) {
	provider, err := telemetry.New(context.Background(), cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("telemetry init: %w", err)
	}

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			stopCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			defer cancel()
			return provider.Shutdown(stopCtx)
		},
	})

	return provider, nil
}

func newSnowflake() (*snowflake.Node, error) {
	node, err := snowflake.NewNode(1)
	return node, err
}

func newPGXPool(lc fx.Lifecycle, cfg config.Config) (*pgxpool.Pool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			pool.Close()
			return nil
		},
	})

	return pool, nil
}

func newTenantRepository(pool *pgxpool.Pool) repository.TenantRepository {
	return repository.NewPostgresTenantRepo(pool)
}

func newUserRepository(pool *pgxpool.Pool) repository.UserRepository {
	return repository.NewPostgresUserRepo(pool)
}

func newNoteRepository(pool *pgxpool.Pool) repository.NoteRepository {
	return repository.NewPostgresNoteRepo(pool)
}

func newRedisClient(lc fx.Lifecycle, cfg config.Config) (redis.UniversalClient, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			return client.Close()
		},
	})
	return client, nil
}

func newPlanCache(client redis.UniversalClient) quota.PlanCache {
	return cacheadapter.NewRedisPlanCache(client)
}

func newQuotaManager(tenants repository.TenantRepository, notes repository.NoteRepository, cache quota.PlanCache, cfg config.Config, logger *zap.Logger) *quota.Manager {
	return quota.NewManager(tenants, notes, cache, cfg.PlanCacheTTL, logger)
}

func newTokenCodec(cfg config.Config) (*token.Codec, error) {
	return token.NewCodec([]byte(cfg.JWTSecret), cfg.TokenTTL)
}

func newRateLimiter(cfg config.Config) *apimiddleware.RateLimiter {
	return apimiddleware.NewRateLimiter(cfg.RateLimitRPM)
}

func newNoteService(notes repository.NoteRepository, quotas *quota.Manager, node *snowflake.Node, logger *zap.Logger) *service.NoteService {
	return service.NewNoteService(notes, quotas, node, logger)
}

func newTenantService(tenants repository.TenantRepository, quotas *quota.Manager, logger *zap.Logger) *service.TenantService {
	return service.NewTenantService(tenants, quotas, logger)
}

func newAuthMiddleware(codec *token.Codec) *httpmiddleware.Auth {
	return &httpmiddleware.Auth{Codec: codec}
}

func startHTTPServer(lc fx.Lifecycle, srv *server.HTTPServer, cfg config.Config, logger *zap.Logger) {
	addr := ":" + cfg.HTTPPort
	var (
		cancel context.CancelFunc
		done   chan struct{}
	)

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			runCtx, stop := context.WithCancel(context.Background())
			cancel = stop
			done = make(chan struct{})

			go func() {
				if err := srv.Run(runCtx, addr); err != nil {
					logger.Error("http server stopped", zap.Error(err))
				}
				close(done)
			}()

			return nil
		},
		OnStop: func(ctx context.Context) error {
			if cancel != nil {
				cancel()
			}
			if done == nil {
				return nil
			}
			select {
			case <-done:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		},
	})
}

func useTelemetry(*telemetry.Provider) {}
