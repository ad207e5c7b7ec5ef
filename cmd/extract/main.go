// Command extract reads recipes from one or more URLs and prints them as a
// JSON array on stdout, in argument order. Logs go to stderr.
//
//	extract [-fallback=true] [-bread] [-dough-weight grams] [-concurrency 4] URL...
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/joho/godotenv/autoload"

	"github.com/recipebox/larder/internal/cache"
	"github.com/recipebox/larder/internal/config"
	"github.com/recipebox/larder/internal/logger"
	"github.com/recipebox/larder/internal/metrics"
	"github.com/recipebox/larder/internal/recipe"
	"github.com/recipebox/larder/internal/services/bread"
	"github.com/recipebox/larder/internal/services/extractor"
	"github.com/recipebox/larder/internal/telemetry"
	"github.com/recipebox/larder/internal/worker"
)

// result is one element of the output array.
type result struct {
	URL    string                  `json:"url"`
	Recipe *recipe.ExtractedRecipe `json:"recipe,omitempty"`
	Bread  *bread.Formula          `json:"bread,omitempty"`
	Error  string                  `json:"error,omitempty"`
}

type options struct {
	fallback    bool
	bread       bool
	doughWeight float64
	concurrency int
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("extract", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var opts options
	fs.BoolVar(&opts.fallback, "fallback", true, "allow the text-generation fallback when the page has no recipe markup")
	fs.BoolVar(&opts.bread, "bread", false, "add baker's percentages to recipes that use flour")
	fs.Float64Var(&opts.doughWeight, "dough-weight", 0, "with -bread, scale each formula to this many grams of dough")
	fs.IntVar(&opts.concurrency, "concurrency", 4, "URLs extracted at once")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	urls := fs.Args()
	if len(urls) == 0 {
		fmt.Fprintln(stderr, "usage: extract [-fallback=true] [-bread] [-dough-weight grams] [-concurrency 4] URL...")
		return 2
	}
	if opts.doughWeight < 0 || (opts.doughWeight > 0 && !opts.bread) {
		fmt.Fprintln(stderr, "-dough-weight must be a positive number of grams and needs -bread")
		return 2
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(stderr, "Failed to load config: %v\n", err)
		return 1
	}

	log := logger.NewWithWriter(cfg.Env, stderr)
	slog.SetDefault(log)

	if cfg.OtelExporterOTLPEndpoint != "" {
		shutdown, err := telemetry.InitTelemetry(ctx, cfg.ServiceName+"-cli", cfg.ServiceVersion, cfg.Env, cfg.OtelExporterOTLPEndpoint, cfg.OTLPHeaders())
		if err != nil {
			log.Warn("Failed to init telemetry", "error", err)
		} else {
			defer shutdown(context.Background())
		}
	}
	if err := metrics.Init(); err != nil {
		log.Warn("Failed to init business metrics", "error", err)
	}

	recipes := cache.NewRecipeCache(nil, cfg.Extraction.CacheTTL)
	if cfg.RedisURL != "" {
		rdb, err := cache.NewRedisClient(cfg.RedisURL)
		if err != nil {
			log.Warn("Redis unavailable, running without the recipe cache", "error", err)
		} else {
			defer rdb.Close()
			recipes = cache.NewRecipeCache(rdb, cfg.Extraction.CacheTTL)
		}
	}

	results, failed := extractAll(ctx, extractor.NewFromConfig(cfg, log), recipes, urls, opts)
	log.Info("Batch extraction finished", "urls", len(urls), "failed", failed)

	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(results); err != nil {
		fmt.Fprintf(stderr, "Failed to write output: %v\n", err)
		return 1
	}

	if failed > 0 {
		return 1
	}
	return 0
}

// extractAll returns one result per URL and how many of them failed.
func extractAll(ctx context.Context, ex worker.RecipeExtractor, recipes cache.Recipes, urls []string, opts options) ([]result, int) {
	funcs := make([]func(context.Context) (*recipe.ExtractedRecipe, error), len(urls))
	for i, u := range urls {
		funcs[i] = func(ctx context.Context) (*recipe.ExtractedRecipe, error) {
			if r, ok := recipes.Get(ctx, u); ok {
				return r, nil
			}
			r, err := ex.ExtractRecipe(ctx, u, opts.fallback)
			if err != nil {
				return nil, err
			}
			recipes.Set(ctx, u, r)
			return r, nil
		}
	}

	recs, errs := worker.RunParallelWithResults(ctx, opts.concurrency, funcs)

	out := make([]result, len(urls))
	for i, u := range urls {
		out[i] = result{URL: u}
		if errs[i] != nil {
			out[i].Error = errs[i].Error()
			continue
		}
		out[i].Recipe = recs[i]
		if opts.bread {
			formula, err := breadFormula(recs[i], opts.doughWeight)
			switch {
			case err == nil:
				out[i].Bread = formula
			case !errors.Is(err, bread.ErrNoFlour):
				errs[i] = err
				out[i].Error = err.Error()
			}
		}
	}
	return out, worker.Failed(errs)
}

func breadFormula(rec *recipe.ExtractedRecipe, doughWeight float64) (*bread.Formula, error) {
	formula, err := bread.Compute(rec)
	if err != nil || doughWeight == 0 {
		return formula, err
	}
	return formula.ScaleTo(doughWeight)
}
