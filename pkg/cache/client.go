package cache

import (
	"context"

	"github.com/fenstri/fieldservice/pkg/config"
	"github.com/go-redis/redis/v8"
)

// Client is the redis client type used across the service
type Client = redis.Client

// NewClient creates a redis client for the webhook dedupe cache
func NewClient(cfg *config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
}

// Ping tests the redis connection
func Ping(ctx context.Context, client *redis.Client) error {
	return client.Ping(ctx).Err()
}

// Close closes the redis connection
func Close(client *redis.Client) error {
	return client.Close()
}
