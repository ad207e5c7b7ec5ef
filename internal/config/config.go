package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DefaultUserAgent     = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	DefaultFetchTimeout  = 30 * time.Second
	DefaultMaxHTMLBytes  = 10 << 20
	DefaultMaxTextLength = 8000
	DefaultCacheTTL      = 24 * time.Hour

	DefaultLLMBaseURL = "http://localhost:11434"
	DefaultLLMModel   = "llama3.2"
	DefaultLLMTimeout = 120 * time.Second
)

// Config is built once at startup and handed to constructors. Nothing in the
// pipeline reads the environment after Load returns.
type Config struct {
	Env            string
	ServiceName    string
	ServiceVersion string

	RedisURL string

	OtelExporterOTLPEndpoint string
	OtelExporterOTLPHeaders  string

	Port string

	Extraction ExtractionConfig
	LLM        LLMConfig
}

type ExtractionConfig struct {
	FetchTimeout  time.Duration
	UserAgent     string
	MaxHTMLBytes  int64
	MaxTextLength int
	CacheTTL      time.Duration
}

// LLMConfig controls the text-generation fallback.
type LLMConfig struct {
	Enabled bool
	BaseURL string
	Model   string
	Timeout time.Duration
}

type yamlFile struct {
	Extraction struct {
		FetchTimeout  string `yaml:"fetch_timeout"`
		UserAgent     string `yaml:"user_agent"`
		MaxHTMLBytes  int64  `yaml:"max_html_bytes"`
		MaxTextLength int    `yaml:"max_text_length"`
		CacheTTL      string `yaml:"cache_ttl"`
	} `yaml:"extraction"`
	LLM struct {
		Enabled *bool  `yaml:"enabled"`
		BaseURL string `yaml:"base_url"`
		Model   string `yaml:"model"`
		Timeout string `yaml:"timeout"`
	} `yaml:"llm"`
}

func Load() (*Config, error) {
	cfg := &Config{
		Env:                      os.Getenv("ENV"),
		ServiceName:              os.Getenv("SERVICE_NAME"),
		ServiceVersion:           os.Getenv("SERVICE_VERSION"),
		RedisURL:                 os.Getenv("REDIS_URL"),
		OtelExporterOTLPEndpoint: os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
		OtelExporterOTLPHeaders:  os.Getenv("OTEL_EXPORTER_OTLP_HEADERS"),
		Port:                     os.Getenv("PORT"),
		LLM: LLMConfig{
			BaseURL: os.Getenv("LLM_BASE_URL"),
			Model:   os.Getenv("LLM_MODEL"),
		},
	}

	if v := os.Getenv("LLM_ENABLED"); v != "" {
		enabled, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("LLM_ENABLED: %w", err)
		}
		cfg.LLM.Enabled = enabled
	}
	if v := os.Getenv("LLM_TIMEOUT"); v != "" {
		d, err := ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("LLM_TIMEOUT: %w", err)
		}
		cfg.LLM.Timeout = d
	}

	// Load from YAML file if available
	llmEnabledFromEnv := os.Getenv("LLM_ENABLED") != ""
	if err := cfg.loadFromYAML("config.yaml", llmEnabledFromEnv); err != nil {
		return nil, fmt.Errorf("failed to load YAML config: %w", err)
	}

	// Set defaults
	if cfg.Env == "" {
		cfg.Env = "development"
	}
	if cfg.ServiceName == "" {
		cfg.ServiceName = "larder"
	}
	if cfg.ServiceVersion == "" {
		cfg.ServiceVersion = "1.0.0"
	}
	if cfg.Port == "" {
		cfg.Port = "8080"
	}
	cfg.SetExtractionDefaults()
	cfg.SetLLMDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(fmt.Sprintf("failed to load config: %v", err))
	}
	return cfg
}

// LoadFromYAML fills settings the environment left empty. A missing file is
// not an error.
func (c *Config) LoadFromYAML(path string) error {
	return c.loadFromYAML(path, false)
}

func (c *Config) loadFromYAML(path string, keepEnabled bool) error {
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil // File not found is not an error
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}

	var f yamlFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	ex := f.Extraction
	if ex.FetchTimeout != "" && c.Extraction.FetchTimeout == 0 {
		d, err := ParseDuration(ex.FetchTimeout)
		if err != nil {
			return fmt.Errorf("extraction.fetch_timeout: %w", err)
		}
		c.Extraction.FetchTimeout = d
	}
	if ex.UserAgent != "" && c.Extraction.UserAgent == "" {
		c.Extraction.UserAgent = ex.UserAgent
	}
	if ex.MaxHTMLBytes != 0 && c.Extraction.MaxHTMLBytes == 0 {
		c.Extraction.MaxHTMLBytes = ex.MaxHTMLBytes
	}
	if ex.MaxTextLength != 0 && c.Extraction.MaxTextLength == 0 {
		c.Extraction.MaxTextLength = ex.MaxTextLength
	}
	if ex.CacheTTL != "" && c.Extraction.CacheTTL == 0 {
		d, err := ParseDuration(ex.CacheTTL)
		if err != nil {
			return fmt.Errorf("extraction.cache_ttl: %w", err)
		}
		c.Extraction.CacheTTL = d
	}

	llm := f.LLM
	if llm.Enabled != nil && !keepEnabled {
		c.LLM.Enabled = *llm.Enabled
	}
	if llm.BaseURL != "" && c.LLM.BaseURL == "" {
		c.LLM.BaseURL = llm.BaseURL
	}
	if llm.Model != "" && c.LLM.Model == "" {
		c.LLM.Model = llm.Model
	}
	if llm.Timeout != "" && c.LLM.Timeout == 0 {
		d, err := ParseDuration(llm.Timeout)
		if err != nil {
			return fmt.Errorf("llm.timeout: %w", err)
		}
		c.LLM.Timeout = d
	}

	return nil
}

func (c *Config) SetExtractionDefaults() {
	if c.Extraction.FetchTimeout == 0 {
		c.Extraction.FetchTimeout = DefaultFetchTimeout
	}
	if c.Extraction.UserAgent == "" {
		c.Extraction.UserAgent = DefaultUserAgent
	}
	if c.Extraction.MaxHTMLBytes == 0 {
		c.Extraction.MaxHTMLBytes = DefaultMaxHTMLBytes
	}
	if c.Extraction.MaxTextLength == 0 {
		c.Extraction.MaxTextLength = DefaultMaxTextLength
	}
	if c.Extraction.CacheTTL == 0 {
		c.Extraction.CacheTTL = DefaultCacheTTL
	}
}

func (c *Config) SetLLMDefaults() {
	if c.LLM.BaseURL == "" {
		c.LLM.BaseURL = DefaultLLMBaseURL
	}
	if c.LLM.Model == "" {
		c.LLM.Model = DefaultLLMModel
	}
	if c.LLM.Timeout == 0 {
		c.LLM.Timeout = DefaultLLMTimeout
	}
}

// Defaults returns a config with every default applied and the LLM disabled.
func Defaults() *Config {
	cfg := &Config{Env: "development", ServiceName: "larder", ServiceVersion: "1.0.0", Port: "8080"}
	cfg.SetExtractionDefaults()
	cfg.SetLLMDefaults()
	return cfg
}

func (c *Config) Validate() error {
	if c.Extraction.FetchTimeout <= 0 {
		return fmt.Errorf("fetch timeout must be positive")
	}
	if c.Extraction.MaxHTMLBytes <= 0 {
		return fmt.Errorf("max html bytes must be positive")
	}
	if c.Extraction.MaxTextLength <= 0 {
		return fmt.Errorf("max text length must be positive")
	}
	if c.LLM.Timeout <= 0 {
		return fmt.Errorf("LLM_TIMEOUT must be positive")
	}
	if c.LLM.Enabled {
		u, err := url.Parse(c.LLM.BaseURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("LLM_BASE_URL %q is not a valid URL", c.LLM.BaseURL)
		}
	}
	return nil
}

// OTLPHeaders splits OTEL_EXPORTER_OTLP_HEADERS ("k=v,k2=v2") into a map.
func (c *Config) OTLPHeaders() map[string]string {
	headers := make(map[string]string)
	for _, pair := range strings.Split(c.OtelExporterOTLPHeaders, ",") {
		k, v, ok := strings.Cut(strings.TrimSpace(pair), "=")
		if !ok || k == "" {
			continue
		}
		headers[strings.TrimSpace(k)] = strings.TrimSpace(v)
	}
	return headers
}

// ParseDuration accepts a Go duration ("90s", "2m") or a bare number of seconds.
func ParseDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if secs, err := strconv.ParseFloat(s, 64); err == nil {
		return time.Duration(secs * float64(time.Second)), nil
	}
	return time.ParseDuration(s)
}
