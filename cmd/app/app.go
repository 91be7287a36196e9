package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"blogcore/internal/config"
	"blogcore/internal/database"
	"blogcore/internal/kvstore"
	"blogcore/internal/messaging"
	"blogcore/internal/repository"
	"blogcore/internal/service"
	"blogcore/internal/storage"

	"github.com/charmbracelet/log"
	"github.com/redis/go-redis/v9"
)

// Deps holds everything the HTTP server needs.
type Deps struct {
	Store    kvstore.Store
	Repo     *repository.Repository
	Services *service.Service
	Events   messaging.Publisher
}

// NewLogger builds the process logger. Unknown levels fall back to info.
func NewLogger(level string) *log.Logger {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.DateTime,
	})

	lvl, err := log.ParseLevel(level)
	if err != nil {
		logger.Warn("unknown log level, using info", "level", level)
		lvl = log.InfoLevel
	}
	logger.SetLevel(lvl)

	return logger
}

func App(ctx context.Context, cfg *config.Config, logger *log.Logger) (*Deps, error) {
	store, err := newKVStore(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	minioClient, err := storage.NewMinIOClient(cfg, logger)
	if err != nil {
		store.Close()
		return nil, err
	}
	if err := minioClient.EnsureBucket(ctx); err != nil {
		store.Close()
		return nil, err
	}

	events, err := messaging.NewPublisher(cfg.NATS.URL, logger)
	if err != nil {
		store.Close()
		return nil, err
	}

	repo := repository.NewRepository(store, logger)
	services := service.NewService(repo, cfg, minioClient, events, logger)

	return &Deps{
		Store:    store,
		Repo:     repo,
		Services: services,
		Events:   events,
	}, nil
}

func (d *Deps) Close() error {
	return errors.Join(d.Events.Close(), d.Store.Close())
}

func newKVStore(ctx context.Context, cfg *config.Config, logger *log.Logger) (kvstore.Store, error) {
	switch cfg.KVBackend {
	case config.KVBackendPostgres, "":
		db, err := database.ConnectDB(ctx, cfg, logger)
		if err != nil {
			return nil, err
		}
		return kvstore.NewPostgresStore(db.DB), nil

	case config.KVBackendRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			return nil, fmt.Errorf("connect to redis at %s: %w", cfg.Redis.Addr, err)
		}
		logger.Info("connected to redis", "addr", cfg.Redis.Addr, "db", cfg.Redis.DB)
		return kvstore.NewRedisStore(client), nil

	default:
		return nil, fmt.Errorf("unknown KV_BACKEND %q", cfg.KVBackend)
	}
}
