package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/ikkim/shoplive-catalog/config"
	"github.com/ikkim/shoplive-catalog/pkg/logger"
	"github.com/redis/go-redis/v9"
)

var client *redis.Client

// Init connects the shared client used for variant sessions.
func Init(cfg *config.RedisConfig) error {
	logger.Info("Initializing Redis connection", logger.Fields{
		"addr": cfg.Addr(),
		"db":   cfg.DB,
	})

	c := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := Ping(context.Background(), c); err != nil {
		logger.Error("Failed to connect to Redis", err, logger.Fields{
			"addr": cfg.Addr(),
		})
		_ = c.Close()
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}

	client = c
	logger.Info("Redis connection established successfully", nil)
	return nil
}

// Ping checks c with a short timeout.
func Ping(ctx context.Context, c *redis.Client) error {
	if c == nil {
		return fmt.Errorf("redis client not initialized")
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return c.Ping(ctx).Err()
}

// GetClient returns the Redis client instance
func GetClient() *redis.Client {
	return client
}

// Close closes the Redis connection
func Close() error {
	if client == nil {
		return nil
	}
	logger.Info("Closing Redis connection", nil)
	err := client.Close()
	client = nil
	return err
}
