package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jonboulle/clockwork"
	goredis "github.com/redis/go-redis/v9"

	"github.com/partnerdeck/partnerdeck/internal/adapter/httpserver"
	"github.com/partnerdeck/partnerdeck/internal/adapter/memory"
	"github.com/partnerdeck/partnerdeck/internal/adapter/metrics"
	"github.com/partnerdeck/partnerdeck/internal/adapter/postgres"
	"github.com/partnerdeck/partnerdeck/internal/adapter/redis"
	"github.com/partnerdeck/partnerdeck/internal/analytics"
	"github.com/partnerdeck/partnerdeck/internal/cache"
	"github.com/partnerdeck/partnerdeck/internal/discord"
	"github.com/partnerdeck/partnerdeck/internal/domain"
	"github.com/partnerdeck/partnerdeck/internal/platform/config"
	"github.com/partnerdeck/partnerdeck/internal/platform/logging"
)

func setupConfig() *config.Config {
	cfg, err := config.Load()
	if err != nil {
		// Use log before slog is initialized
		log.Fatalf("Failed to load config: %v", err)
	}
	return cfg
}

func setupDB(cfg *config.Config) *pgxpool.Pool {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := postgres.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}

	if err := postgres.RunMigrations(ctx, pool); err != nil {
		slog.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}

	return pool
}

func setupRedis(cfg *config.Config) *goredis.Client {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := redis.NewClient(ctx, cfg.RedisURL)
	if err != nil {
		slog.Error("Failed to connect to Redis", "error", err)
		os.Exit(1)
	}
	return client
}

func runGracefulShutdown(srv *httpserver.Server) <-chan struct{} {
	done := make(chan struct{})
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		slog.Info("Shutdown signal received, cleaning up...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("Server shutdown error", "error", err)
		}

		close(done)
	}()

	return done
}

func main() {
	clock := clockwork.NewRealClock()

	cfg := setupConfig()

	logging.Init(cfg.LogLevel, cfg.LogFormat)
	slog.Info("Application starting", "env", cfg.AppEnv, "port", cfg.Port)

	reg := metrics.NewRegistry()
	healthChecks := []httpserver.HealthCheck{}

	// Postgres-backed config store when DATABASE_URL is set, in-memory otherwise.
	var configs domain.ConfigStore
	if cfg.DatabaseURL != "" {
		pool := setupDB(cfg)
		defer pool.Close()
		configs = postgres.NewConfigRepo(pool)
		healthChecks = append(healthChecks, httpserver.HealthCheck{
			Name:  "postgres",
			Check: func(ctx context.Context) error { return pool.Ping(ctx) },
		})
	} else {
		slog.Warn("No DATABASE_URL configured, using in-memory config store")
		configs = memory.NewConfigStore(clock)
	}

	// Redis-backed metadata caches when REDIS_URL is set, in-memory otherwise.
	var (
		guildInfoCache cache.Store[domain.GuildInfo]
		channelCache   cache.Store[[]domain.Channel]
	)
	if cfg.RedisURL != "" {
		redisClient := setupRedis(cfg)
		defer func() { _ = redisClient.Close() }()
		guildInfoCache = cache.NewRedis[domain.GuildInfo](redisClient, "guild_info", cfg.CacheTTL, clock)
		channelCache = cache.NewRedis[[]domain.Channel](redisClient, "channels", cfg.CacheTTL, clock)
		healthChecks = append(healthChecks, httpserver.HealthCheck{
			Name:  "redis",
			Check: func(ctx context.Context) error { return redisClient.Ping(ctx).Err() },
		})
	} else {
		slog.Warn("No REDIS_URL configured, using in-memory caches")
		guildInfo := cache.NewMemory[domain.GuildInfo](cfg.CacheTTL, clock)
		defer guildInfo.StartEvictionTimer(10 * time.Minute)()
		channels := cache.NewMemory[[]domain.Channel](cfg.CacheTTL, clock)
		defer channels.StartEvictionTimer(10 * time.Minute)()
		guildInfoCache = guildInfo
		channelCache = channels
	}

	gateway, err := discord.NewClient(
		cfg.DiscordClientID,
		cfg.DiscordClientSecret,
		cfg.DiscordBotToken,
		cfg.DiscordRedirectURI,
		cfg.UpstreamTimeout,
	)
	if err != nil {
		slog.Error("Failed to create Discord client", "error", err)
		os.Exit(1)
	}

	srv := httpserver.NewServer(cfg, httpserver.Deps{
		Configs:        configs,
		Gateway:        gateway,
		Analytics:      analytics.NewGenerator(uint64(time.Now().UnixNano())),
		GuildInfoCache: guildInfoCache,
		ChannelCache:   channelCache,
		CacheMetrics:   metrics.NewCacheMetrics(reg),
		HTTPMetrics:    metrics.NewHTTPMetrics(reg),
		MetricsHandler: metrics.Handler(reg),
		HealthChecks:   healthChecks,
	})

	done := runGracefulShutdown(srv)

	if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("Server error", "error", err)
		os.Exit(1)
	}

	<-done
}
