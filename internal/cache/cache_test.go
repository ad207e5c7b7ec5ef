package cache

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/recipebox/larder/internal/recipe"
)

// testRedis connects to TEST_REDIS_URL or skips.
func testRedis(t *testing.T) *redis.Client {
	t.Helper()
	url := os.Getenv("TEST_REDIS_URL")
	if url == "" {
		t.Skip("TEST_REDIS_URL not set")
	}
	client, err := NewRedisClient(url)
	require.NoError(t, err)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		t.Skipf("redis not reachable: %v", err)
	}
	t.Cleanup(func() { client.Close() })
	return client
}

func sample() *recipe.ExtractedRecipe {
	r := recipe.New("Flatbread", recipe.Int(40), 2, []recipe.Step{
		{Action: "Mix", Ingredients: []recipe.Ingredient{{Name: "flour", Amount: recipe.Float(250), Unit: "g"}}},
	})
	r.SourceURL = "https://example.com/flatbread"
	return r
}

func TestRecipeKey(t *testing.T) {
	k := RecipeKey("https://example.com/a")
	assert.True(t, strings.HasPrefix(k, "recipe:"))
	assert.Len(t, k, len("recipe:")+64)
	assert.Equal(t, k, RecipeKey("https://example.com/a"))
	assert.NotEqual(t, k, RecipeKey("https://example.com/b"))
}

func TestJobKey(t *testing.T) {
	assert.Equal(t, "job:abc", JobKey("abc"))
}

func TestRecipeCacheWithoutRedis(t *testing.T) {
	c := NewRecipeCache(nil, time.Hour)
	ctx := context.Background()

	c.Set(ctx, "https://example.com", sample())
	r, ok := c.Get(ctx, "https://example.com")
	assert.False(t, ok)
	assert.Nil(t, r)
	c.Delete(ctx, "https://example.com")
}

func TestJobStoreWithoutRedis(t *testing.T) {
	s := NewJobStore(nil)
	ctx := context.Background()

	assert.ErrorIs(t, s.Create(ctx, &Job{ID: "1"}), ErrStoreUnavailable)
	_, err := s.Get(ctx, "1")
	assert.ErrorIs(t, err, ErrStoreUnavailable)
	assert.ErrorIs(t, s.Update(ctx, "1", JobUpdate{Status: JobFailed}), ErrStoreUnavailable)
}

func TestJobApply(t *testing.T) {
	created := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	job := &Job{ID: "1", URL: "https://example.com", Status: JobPending, CreatedAt: created, UpdatedAt: created}

	later := created.Add(time.Minute)
	job.Apply(JobUpdate{Status: JobFetching}, later)
	assert.Equal(t, JobFetching, job.Status)
	assert.Equal(t, later, job.UpdatedAt)
	assert.Equal(t, created, job.CreatedAt)

	job.Apply(JobUpdate{Status: JobFailed, Error: "boom", ErrorCode: "FETCH_STATUS"}, later)
	assert.Equal(t, "boom", job.Error)
	assert.Equal(t, "FETCH_STATUS", job.ErrorCode)
	assert.Nil(t, job.Recipe)
}

func TestJobApplyCompletionClearsEarlierError(t *testing.T) {
	created := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	job := &Job{ID: "1", URL: "https://example.com", Status: JobPending, CreatedAt: created, UpdatedAt: created}

	job.Apply(JobUpdate{Status: JobPending, Error: "Failed to fetch URL: timeout", ErrorCode: "FETCH_TIMEOUT"}, created)
	assert.Equal(t, "FETCH_TIMEOUT", job.ErrorCode)

	r := recipe.New("Stew", nil, 4, []recipe.Step{{Action: "Simmer"}})
	job.Apply(JobUpdate{Status: JobCompleted, Recipe: r}, created.Add(time.Minute))
	assert.Equal(t, JobCompleted, job.Status)
	assert.Empty(t, job.Error)
	assert.Empty(t, job.ErrorCode)
	assert.Same(t, r, job.Recipe)
}

func TestJobStatusDone(t *testing.T) {
	for _, s := range []JobStatus{JobPending, JobFetching, JobExtracting} {
		assert.False(t, s.Done(), s)
	}
	assert.True(t, JobCompleted.Done())
	assert.True(t, JobFailed.Done())
}

func TestNewRedisClient(t *testing.T) {
	c, err := NewRedisClient("localhost:6379")
	require.NoError(t, err)
	assert.Equal(t, "localhost:6379", c.Options().Addr)
	c.Close()

	c, err = NewRedisClient("redis://:secret@cache.internal:6380/2")
	require.NoError(t, err)
	assert.Equal(t, "cache.internal:6380", c.Options().Addr)
	assert.Equal(t, "secret", c.Options().Password)
	assert.Equal(t, 2, c.Options().DB)
	c.Close()

	_, err = NewRedisClient("redis://host:6379/notadb")
	assert.Error(t, err)
}

func TestRecipeCacheRoundTrip(t *testing.T) {
	client := testRedis(t)
	ctx := context.Background()
	c := NewRecipeCache(client, time.Minute)
	url := "https://example.com/" + uuid.NewString()
	t.Cleanup(func() { c.Delete(ctx, url) })

	_, ok := c.Get(ctx, url)
	assert.False(t, ok)

	c.Set(ctx, url, sample())
	got, ok := c.Get(ctx, url)
	require.True(t, ok)
	assert.Equal(t, sample(), got)

	ttl := client.TTL(ctx, RecipeKey(url)).Val()
	assert.Greater(t, ttl, time.Duration(0))
	assert.LessOrEqual(t, ttl, time.Minute)
}

func TestJobStoreLifecycle(t *testing.T) {
	client := testRedis(t)
	ctx := context.Background()
	s := NewJobStore(client)
	id := uuid.NewString()
	t.Cleanup(func() { client.Del(ctx, JobKey(id)) })

	_, err := s.Get(ctx, id)
	assert.ErrorIs(t, err, ErrJobNotFound)
	assert.ErrorIs(t, s.Update(ctx, id, JobUpdate{Status: JobFetching}), ErrJobNotFound)

	require.NoError(t, s.Create(ctx, &Job{ID: id, URL: "https://example.com"}))
	job, err := s.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, JobPending, job.Status)

	require.NoError(t, s.Update(ctx, id, JobUpdate{Status: JobCompleted, Recipe: sample()}))
	job, err = s.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, JobCompleted, job.Status)
	assert.Equal(t, "Flatbread", job.Recipe.Title)
	assert.False(t, job.UpdatedAt.Before(job.CreatedAt))
}
