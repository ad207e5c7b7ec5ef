// Package cache keeps extracted recipes and async job records in Redis.
package cache

import (
	"context"
	"crypto/sha256"
	"fmt"
	"strings"

	"github.com/redis/go-redis/extra/redisotel/v9"
	"github.com/redis/go-redis/v9"

	"github.com/recipebox/larder/internal/recipe"
)

// Recipes is the recipe cache as the API and worker see it.
type Recipes interface {
	// Get returns the cached recipe for url. A miss, including any Redis
	// failure, is (nil, false).
	Get(ctx context.Context, url string) (*recipe.ExtractedRecipe, bool)

	// Set stores r for url. Failures are logged, not returned.
	Set(ctx context.Context, url string, r *recipe.ExtractedRecipe)
}

// Jobs stores async extraction jobs.
type Jobs interface {
	Create(ctx context.Context, job *Job) error
	Get(ctx context.Context, id string) (*Job, error)
	Update(ctx context.Context, id string, update JobUpdate) error
}

// NewRedisClient connects to redisURL, which may be a redis:// or rediss://
// URL or a bare host:port, and instruments the client for tracing and metrics.
func NewRedisClient(redisURL string) (*redis.Client, error) {
	var opt *redis.Options
	if strings.HasPrefix(redisURL, "redis://") || strings.HasPrefix(redisURL, "rediss://") {
		parsed, err := redis.ParseURL(redisURL)
		if err != nil {
			return nil, fmt.Errorf("parse redis url: %w", err)
		}
		opt = parsed
	} else {
		opt = &redis.Options{Addr: redisURL}
	}

	client := redis.NewClient(opt)
	if err := redisotel.InstrumentTracing(client); err != nil {
		return nil, fmt.Errorf("instrument redis tracing: %w", err)
	}
	if err := redisotel.InstrumentMetrics(client); err != nil {
		return nil, fmt.Errorf("instrument redis metrics: %w", err)
	}
	return client, nil
}

// hashKey builds prefix + hex(sha256(value)).
func hashKey(prefix, value string) string {
	hash := sha256.Sum256([]byte(value))
	return fmt.Sprintf("%s%x", prefix, hash)
}
