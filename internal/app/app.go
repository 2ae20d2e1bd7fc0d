// Package app assembles the storage backends, repositories and services
// shared by the HTTP server and the tamanctl maintenance tool.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"taman-digital/internal/config"
	"taman-digital/internal/handler"
	"taman-digital/internal/infrastructure/database"
	"taman-digital/internal/logger"
	"taman-digital/internal/metrics"
	"taman-digital/internal/repository"
	"taman-digital/internal/service"
	"taman-digital/internal/snapshot"
	"taman-digital/internal/store"
	"taman-digital/internal/validator"
)

// App holds the wired dependency graph.
type App struct {
	Config *config.Config

	Content  *service.ContentService
	Editor   *service.EditorService
	Accounts *service.AccountService
	Messages *service.MessageService

	// Pingers are the external dependencies checked by /health.
	Pingers map[string]handler.Pinger

	pool  *pgxpool.Pool
	redis *redis.Client
	stats *metrics.PoolStatsCollector
}

// Build connects the configured backends and wires every service.
// The caller must Close the returned App.
func Build(ctx context.Context, cfg *config.Config) (*App, error) {
	a := &App{Config: cfg, Pingers: make(map[string]handler.Pinger)}

	kv, err := a.openStore(ctx)
	if err != nil {
		a.Close()
		return nil, err
	}
	snaps, err := a.openSnapshots(ctx)
	if err != nil {
		a.Close()
		return nil, err
	}

	v := validator.NewValidator()
	posts := repository.NewKVPostRepository(kv,
		repository.WithRetention(cfg.TrashRetention),
		repository.WithLazySweep(cfg.LazyTrashSweep),
		repository.WithSeed(cfg.SeedExamplePosts),
	)
	users := repository.NewKVUserRepository(kv,
		repository.WithSessionTTL(cfg.SessionTTL),
		repository.WithUsernameHold(posts.HasPosts),
	)
	messages := repository.NewKVMessageRepository(kv, time.Now)

	var generator service.TextGenerator
	gemini, err := service.NewGeminiGenerator(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
	switch {
	case errors.Is(err, service.ErrGeneratorUnavailable):
		logger.Warn("GEMINI_API_KEY not set, writing assistant disabled")
	case err != nil:
		a.Close()
		return nil, err
	default:
		generator = gemini
	}

	var accountOpts []service.AccountOption
	google, err := service.NewGoogleVerifier(cfg.GoogleClientID)
	switch {
	case errors.Is(err, service.ErrProviderUnavailable):
		logger.Warn("GOOGLE_CLIENT_ID not set, provider sign-in disabled")
	case err != nil:
		a.Close()
		return nil, err
	default:
		accountOpts = append(accountOpts, service.WithProviderVerifier(google))
	}

	a.Content = service.NewContentService(posts, snaps, v)
	a.Editor = service.NewEditorService(a.Content, snaps, generator, v, cfg.AutosaveDelay)
	a.Accounts = service.NewAccountService(users, posts, snaps, v, accountOpts...)
	a.Messages = service.NewMessageService(messages, users, v)

	return a, nil
}

func (a *App) openStore(ctx context.Context) (store.KV, error) {
	if a.Config.StoreBackend == config.BackendMemory {
		logger.Warn("Using in-memory store, data is lost on exit")
		return store.NewMemory(), nil
	}

	if err := database.Migrate(a.Config.MigrationURL(), a.Config.MigrationsDir); err != nil {
		return nil, err
	}
	pool, err := database.NewPostgres(ctx, database.PoolConfigFrom(a.Config))
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	a.pool = pool
	a.Pingers["database"] = pool

	a.stats = metrics.NewPoolStatsCollector(pool)
	a.stats.Start(15 * time.Second)

	return store.NewPostgres(pool), nil
}

func (a *App) openSnapshots(ctx context.Context) (snapshot.Cache, error) {
	history := snapshot.WithHistory(a.Config.SnapshotHistory)
	if a.Config.SnapshotBackend == config.BackendMemory {
		return snapshot.NewMemory(history, snapshot.WithTTL(a.Config.SnapshotTTL)), nil
	}

	client, err := database.NewRedis(ctx, a.Config)
	if err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	a.redis = client
	a.Pingers["snapshots"] = database.RedisPinger{Client: client}

	return snapshot.NewRedis(client, a.Config.SnapshotTTL, history), nil
}

// Close cancels pending autosaves and releases the backends.
func (a *App) Close() {
	if a.Editor != nil {
		a.Editor.Close()
	}
	if a.stats != nil {
		a.stats.Stop()
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			logger.Warn("Failed to close redis", slog.String("error", err.Error()))
		}
	}
	if a.pool != nil {
		a.pool.Close()
	}
}
