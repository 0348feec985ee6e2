package main

import (
	"context"
	"fmt"

	"github.com/nats-io/nats.go"

	"github.com/pribylovaa/gamerfeeds/internal/cache"
	"github.com/pribylovaa/gamerfeeds/internal/config"
	"github.com/pribylovaa/gamerfeeds/internal/events"
	"github.com/pribylovaa/gamerfeeds/internal/storage"
	"github.com/pribylovaa/gamerfeeds/internal/storage/mongo"
	"github.com/pribylovaa/gamerfeeds/internal/storage/postgres"
)

// newStorage выбирает бэкенд по db.driver.
func newStorage(ctx context.Context, cfg config.DBConfig) (storage.Storage, error) {
	switch cfg.Driver {
	case config.DriverPostgres:
		s, err := postgres.New(ctx, cfg.URL)
		if err != nil {
			return nil, err
		}
		return s, nil
	case config.DriverMongo:
		m, err := mongo.New(ctx, cfg.URL)
		if err != nil {
			return nil, err
		}
		return m, nil
	default:
		return nil, fmt.Errorf("unknown db driver %q", cfg.Driver)
	}
}

// newThreadCache выбирает кэш веток по cache.driver и оборачивает его метриками.
func newThreadCache(ctx context.Context, cfg config.CacheConfig) (cache.ThreadCache, error) {
	var c cache.ThreadCache

	switch cfg.Driver {
	case config.CacheNone:
		return cache.Noop{}, nil
	case config.CacheMemory:
		c = cache.NewMemory(cfg.TTL)
	case config.CacheRedis:
		r, err := cache.NewRedis(ctx, cfg.RedisURL, cfg.Prefix, cfg.TTL)
		if err != nil {
			return nil, err
		}
		c = r
	default:
		return nil, fmt.Errorf("unknown cache driver %q", cfg.Driver)
	}

	return cache.WithMetrics(c, cfg.Driver), nil
}

// newPublisher — NATS, если задан events.nats_url, иначе no-op.
func newPublisher(cfg config.EventsConfig) (events.Publisher, error) {
	if cfg.NATSURL == "" {
		return events.NoopPublisher{}, nil
	}

	p, err := events.NewNATSPublisher(cfg.NATSURL, nats.Name("comments-service"))
	if err != nil {
		return nil, err
	}
	return p, nil
}
