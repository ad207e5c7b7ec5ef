package extractor

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/recipebox/larder/internal/recipe"
	"github.com/recipebox/larder/internal/services/llm"
)

type mockFetcher struct {
	mock.Mock
}

func (m *mockFetcher) Fetch(ctx context.Context, url string) (string, error) {
	args := m.Called(ctx, url)
	return args.String(0), args.Error(1)
}

type mockStrategy struct {
	mock.Mock
}

func (m *mockStrategy) Extract(ctx context.Context, input, sourceURL string) (*recipe.ExtractedRecipe, error) {
	args := m.Called(ctx, input, sourceURL)
	r, _ := args.Get(0).(*recipe.ExtractedRecipe)
	return r, args.Error(1)
}

type mockGenerator struct {
	mock.Mock
}

func (m *mockGenerator) Generate(ctx context.Context, model, prompt string, opts llm.Options) (string, error) {
	args := m.Called(ctx, model, prompt, opts)
	return args.String(0), args.Error(1)
}
