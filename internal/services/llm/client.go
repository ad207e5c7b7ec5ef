// Package llm talks to an Ollama-compatible text-generation server.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/recipebox/larder/internal/config"
	"github.com/recipebox/larder/internal/httpclient"
	"github.com/recipebox/larder/internal/metrics"
)

var ErrEmptyResponse = errors.New("empty response from text-generation server")

// Options are the generation knobs the extractor sets.
type Options struct {
	Temperature   float64
	MaxTokens     int
	ContextWindow int
}

// Generator produces text for a prompt.
type Generator interface {
	Generate(ctx context.Context, model, prompt string, opts Options) (string, error)
}

// OllamaClient calls POST /api/generate without streaming.
type OllamaClient struct {
	baseURL    string
	httpClient *http.Client
}

func NewOllamaClient(cfg config.LLMConfig) *OllamaClient {
	return &OllamaClient{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: httpclient.New(cfg.Timeout),
	}
}

type generateRequest struct {
	Model   string         `json:"model"`
	Prompt  string         `json:"prompt"`
	Stream  bool           `json:"stream"`
	Options map[string]any `json:"options,omitempty"`
}

type generateResponse struct {
	Model    string `json:"model"`
	Response string `json:"response"`
	Done     bool   `json:"done"`
	Error    string `json:"error,omitempty"`
}

func (c *OllamaClient) Generate(ctx context.Context, model, prompt string, opts Options) (string, error) {
	startTime := time.Now()
	status := "error"
	defer func() {
		duration := time.Since(startTime).Seconds()
		attrs := metric.WithAttributes(
			attribute.String("provider", httpclient.UpstreamOllama),
			attribute.String("model", model),
			attribute.String("status", status),
		)
		metrics.AIGenerationDuration.Record(ctx, duration, attrs)
		metrics.ExternalAPIDuration.Record(ctx, duration, attrs)
		metrics.ExternalAPICallsTotal.Add(ctx, 1, attrs)
	}()

	reqBody := generateRequest{
		Model:  model,
		Prompt: prompt,
		Stream: false,
		Options: map[string]any{
			"temperature": opts.Temperature,
		},
	}
	if opts.MaxTokens > 0 {
		reqBody.Options["num_predict"] = opts.MaxTokens
	}
	if opts.ContextWindow > 0 {
		reqBody.Options["num_ctx"] = opts.ContextWindow
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("encode generate request: %w", err)
	}

	ctx = httpclient.WithUpstream(ctx, httpclient.UpstreamOllama)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("ollama generate: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read ollama response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return "", fmt.Errorf("ollama generate failed with status %d: %s", resp.StatusCode, truncate(string(respBody), 200))
	}

	var out generateResponse
	if err := json.Unmarshal(respBody, &out); err != nil {
		return "", fmt.Errorf("decode ollama response: %w", err)
	}
	if out.Error != "" {
		return "", fmt.Errorf("ollama generate: %s", out.Error)
	}

	text := strings.TrimSpace(out.Response)
	if text == "" {
		return "", ErrEmptyResponse
	}
	status = "ok"
	return text, nil
}

// HealthCheck confirms the server answers GET /api/tags.
func (c *OllamaClient) HealthCheck(ctx context.Context) error {
	ctx = httpclient.WithUpstream(ctx, httpclient.UpstreamOllama)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/tags", nil)
	if err != nil {
		return fmt.Errorf("failed to create health check request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("ollama health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("ollama health check failed with status %d", resp.StatusCode)
	}
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
