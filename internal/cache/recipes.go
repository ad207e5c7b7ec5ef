package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/recipebox/larder/internal/metrics"
	"github.com/recipebox/larder/internal/recipe"
)

const recipePrefix = "recipe:"

// RecipeCache stores successful extractions keyed by the hashed source URL.
// With a nil client every lookup misses and every write is dropped.
type RecipeCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRecipeCache(client *redis.Client, ttl time.Duration) *RecipeCache {
	return &RecipeCache{client: client, ttl: ttl}
}

// RecipeKey is the Redis key for url.
func RecipeKey(url string) string {
	return hashKey(recipePrefix, url)
}

func (c *RecipeCache) Get(ctx context.Context, url string) (*recipe.ExtractedRecipe, bool) {
	if c.client == nil {
		return nil, false
	}

	data, err := c.client.Get(ctx, RecipeKey(url)).Bytes()
	if errors.Is(err, redis.Nil) {
		c.count(ctx, "miss")
		return nil, false
	}
	if err != nil {
		slog.WarnContext(ctx, "Redis cache get failed", "error", err)
		c.count(ctx, "error")
		return nil, false
	}

	var r recipe.ExtractedRecipe
	if err := json.Unmarshal(data, &r); err != nil {
		slog.WarnContext(ctx, "Failed to unmarshal cached recipe", "error", err)
		c.count(ctx, "error")
		return nil, false
	}

	c.count(ctx, "hit")
	return &r, true
}

func (c *RecipeCache) Set(ctx context.Context, url string, r *recipe.ExtractedRecipe) {
	if c.client == nil || r == nil {
		return
	}

	data, err := json.Marshal(r)
	if err != nil {
		slog.WarnContext(ctx, "Failed to marshal recipe for cache", "error", err)
		return
	}

	if err := c.client.Set(ctx, RecipeKey(url), data, c.ttl).Err(); err != nil {
		slog.WarnContext(ctx, "Redis cache set failed", "error", err)
	}
}

// Delete evicts url from the cache.
func (c *RecipeCache) Delete(ctx context.Context, url string) {
	if c.client == nil {
		return
	}
	if err := c.client.Del(ctx, RecipeKey(url)).Err(); err != nil {
		slog.WarnContext(ctx, "Redis cache delete failed", "error", err)
	}
}

func (c *RecipeCache) count(ctx context.Context, result string) {
	metrics.CacheLookupsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("result", result)))
}
