package main

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/recipebox/larder/internal/cache"
	"github.com/recipebox/larder/internal/recipe"
)

type mockExtractor struct {
	mock.Mock
}

func (m *mockExtractor) ExtractRecipe(ctx context.Context, url string, allowFallback bool) (*recipe.ExtractedRecipe, error) {
	args := m.Called(ctx, url, allowFallback)
	r, _ := args.Get(0).(*recipe.ExtractedRecipe)
	return r, args.Error(1)
}

func grams(v float64) *float64 { return &v }

func TestExtractAll(t *testing.T) {
	loaf := recipe.New("Loaf", nil, 1, []recipe.Step{{
		Action: "Mix",
		Ingredients: []recipe.Ingredient{
			{Name: "flour", Amount: grams(500), Unit: "g"},
			{Name: "water", Amount: grams(325), Unit: "g"},
		},
	}})
	salad := recipe.New("Salad", nil, 2, []recipe.Step{{Action: "Toss"}})

	ex := new(mockExtractor)
	ex.On("ExtractRecipe", mock.Anything, "https://a.example/loaf", false).Return(loaf, nil)
	ex.On("ExtractRecipe", mock.Anything, "https://b.example/broken", false).Return(nil, errors.New("no recipe markup"))
	ex.On("ExtractRecipe", mock.Anything, "https://c.example/salad", false).Return(salad, nil)

	urls := []string{"https://a.example/loaf", "https://b.example/broken", "https://c.example/salad"}
	out, failed := extractAll(context.Background(), ex, cache.NewRecipeCache(nil, 0), urls, options{bread: true, concurrency: 2})

	require.Len(t, out, 3)
	assert.Equal(t, 1, failed)
	assert.Equal(t, urls[0], out[0].URL)
	require.NotNil(t, out[0].Bread)
	assert.InDelta(t, 500, out[0].Bread.FlourGrams, 0.01)
	assert.Equal(t, "no recipe markup", out[1].Error)
	assert.Nil(t, out[1].Recipe)
	assert.Equal(t, "Salad", out[2].Recipe.Title)
	assert.Nil(t, out[2].Bread, "no flour means no formula")
	assert.Empty(t, out[2].Error)
}

func TestExtractAllScalesDough(t *testing.T) {
	loaf := recipe.New("Loaf", nil, 1, []recipe.Step{{
		Action: "Mix",
		Ingredients: []recipe.Ingredient{
			{Name: "flour", Amount: grams(500), Unit: "g"},
			{Name: "water", Amount: grams(300), Unit: "g"},
		},
	}})
	ex := new(mockExtractor)
	ex.On("ExtractRecipe", mock.Anything, "https://a.example/loaf", true).Return(loaf, nil)

	out, failed := extractAll(context.Background(), ex, cache.NewRecipeCache(nil, 0), []string{"https://a.example/loaf"},
		options{fallback: true, bread: true, doughWeight: 1600, concurrency: 1})

	require.Zero(t, failed)
	require.NotNil(t, out[0].Bread)
	assert.InDelta(t, 1600, out[0].Bread.DoughGrams, 0.01)
	assert.InDelta(t, 1000, out[0].Bread.FlourGrams, 0.01)
}

func TestRunUsage(t *testing.T) {
	var stdout, stderr bytes.Buffer
	assert.Equal(t, 2, run(nil, &stdout, &stderr))
	assert.Contains(t, stderr.String(), "usage")
	assert.Empty(t, stdout.String())

	stderr.Reset()
	assert.Equal(t, 2, run([]string{"-concurrency", "many"}, &stdout, &stderr))

	stderr.Reset()
	assert.Equal(t, 2, run([]string{"-dough-weight", "900", "https://a.example/loaf"}, &stdout, &stderr))
	assert.Contains(t, stderr.String(), "needs -bread")
}
