package extractor

import (
	"log/slog"

	"github.com/recipebox/larder/internal/config"
	"github.com/recipebox/larder/internal/services/llm"
	"github.com/recipebox/larder/internal/services/scraper"
)

// NewFromConfig assembles the production pipeline: the guarded page fetcher,
// the schema.org scraper and, when cfg.LLM.Enabled is set, the Ollama
// fallback.
func NewFromConfig(cfg *config.Config, logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}

	var fallback Strategy
	if cfg.LLM.Enabled {
		fallback = NewFallbackExtractor(llm.NewOllamaClient(cfg.LLM), cfg, logger)
	}

	return NewOrchestrator(cfg,
		scraper.NewHTTPFetcher(cfg.Extraction),
		NewPrimaryExtractor(scraper.NewSchemaOrgScraper()),
		fallback,
		logger,
	)
}
