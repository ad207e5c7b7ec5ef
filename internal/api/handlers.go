package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/recipebox/larder/internal/cache"
	"github.com/recipebox/larder/internal/config"
	apperrors "github.com/recipebox/larder/internal/errors"
	"github.com/recipebox/larder/internal/recipe"
	"github.com/recipebox/larder/internal/services/bread"
	"github.com/recipebox/larder/internal/validation"
	"github.com/recipebox/larder/internal/worker"
)

// Extractor is the part of the orchestrator the handlers call.
type Extractor interface {
	ExtractRecipe(ctx context.Context, url string, allowFallback bool) (*recipe.ExtractedRecipe, error)
	ExtractText(ctx context.Context, text, sourceURL string) (*recipe.ExtractedRecipe, error)
}

type Server struct {
	cfg       *config.Config
	extractor Extractor
	recipes   cache.Recipes
	jobs      cache.Jobs
	queue     worker.Enqueuer
	logger    *slog.Logger
	checks    []readinessCheck
}

// NewServer wires the handlers. jobs and queue may be nil, in which case the
// async endpoints answer 503.
func NewServer(cfg *config.Config, ex Extractor, recipes cache.Recipes, jobs cache.Jobs, queue worker.Enqueuer, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		cfg:       cfg,
		extractor: ex,
		recipes:   recipes,
		jobs:      jobs,
		queue:     queue,
		logger:    logger,
	}
}

// Routes mounts every API route on r.
func (s *Server) Routes(r chi.Router) {
	r.Get("/health", s.HandleHealth)
	r.Get("/ready", s.HandleReady)
	r.Route("/api", func(r chi.Router) {
		r.Post("/scrape", s.HandleScrape)
		r.Post("/extract-text", s.HandleExtractText)
		r.Post("/scrape/jobs", s.HandleCreateJob)
		r.Get("/scrape/jobs/{id}", s.HandleJobStatus)
	})
}

func (s *Server) HandleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

type ScrapeRequest struct {
	URL string `json:"url"`
	// AllowFallback defaults to true when omitted.
	AllowFallback *bool `json:"allow_fallback,omitempty"`
}

// ScrapeResponse is the recipe, plus a bread formula in bread mode.
type ScrapeResponse struct {
	*recipe.ExtractedRecipe
	Bread *bread.Formula `json:"bread,omitempty"`
}

func (s *Server) HandleScrape(w http.ResponseWriter, r *http.Request) {
	var req ScrapeRequest
	if !s.decode(w, r, &req) {
		return
	}
	req.URL = strings.TrimSpace(req.URL)
	if req.URL == "" {
		s.writeError(w, r, apperrors.NewValidationError("url is required", "URL_REQUIRED", "Send a JSON body with a url field."))
		return
	}

	// The worker keys the cache on the normalized URL, so this path must too.
	u, err := validation.ValidateURL(req.URL)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	target := u.String()

	breadMode := r.URL.Query().Get("mode") == "bread"
	var doughWeight float64
	if breadMode {
		if doughWeight, err = parseDoughWeight(r.URL.Query().Get("dough_weight")); err != nil {
			s.writeError(w, r, err)
			return
		}
	}

	ctx := r.Context()
	rec, ok := s.recipes.Get(ctx, target)
	if !ok {
		allowFallback := req.AllowFallback == nil || *req.AllowFallback
		rec, err = s.extractor.ExtractRecipe(ctx, target, allowFallback)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		s.recipes.Set(ctx, target, rec)
	}

	resp := ScrapeResponse{ExtractedRecipe: rec}
	if breadMode {
		formula, err := breadFormula(rec, doughWeight)
		switch {
		case err == nil:
			resp.Bread = formula
		case errors.Is(err, bread.ErrNoFlour):
			// not a bread recipe; answer with the plain recipe
		default:
			s.writeError(w, r, err)
			return
		}
	}

	writeJSON(w, http.StatusOK, resp)
}

// parseDoughWeight reads the optional dough_weight query value in grams.
// Zero means the recipe's own weights are kept.
func parseDoughWeight(raw string) (float64, error) {
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return 0, apperrors.NewValidationError(bread.ErrInvalidDoughWeight.Error(), "INVALID_DOUGH_WEIGHT", "Pass dough_weight as a positive number of grams.")
	}
	return v, nil
}

func breadFormula(rec *recipe.ExtractedRecipe, doughWeight float64) (*bread.Formula, error) {
	formula, err := bread.Compute(rec)
	if err != nil || doughWeight == 0 {
		return formula, err
	}
	return formula.ScaleTo(doughWeight)
}

type ExtractTextRequest struct {
	Text      string `json:"text"`
	SourceURL string `json:"source_url,omitempty"`
}

func (s *Server) HandleExtractText(w http.ResponseWriter, r *http.Request) {
	var req ExtractTextRequest
	if !s.decode(w, r, &req) {
		return
	}

	rec, err := s.extractor.ExtractText(r.Context(), req.Text, req.SourceURL)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

type CreateJobRequest struct {
	URL           string `json:"url"`
	AllowFallback *bool  `json:"allow_fallback,omitempty"`
}

type CreateJobResponse struct {
	JobID string `json:"job_id"`
	URL   string `json:"url"`
}

func (s *Server) HandleCreateJob(w http.ResponseWriter, r *http.Request) {
	if s.jobs == nil || s.queue == nil {
		s.writeError(w, r, errAsyncUnavailable)
		return
	}

	var req CreateJobRequest
	if !s.decode(w, r, &req) {
		return
	}
	// Reject bad URLs here instead of queueing a job that can only fail.
	u, err := validation.ValidateURL(req.URL)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	ctx := r.Context()
	job := &cache.Job{
		ID:     uuid.New().String(),
		URL:    u.String(),
		Status: cache.JobPending,
	}
	if err := s.jobs.Create(ctx, job); err != nil {
		s.writeError(w, r, apperrors.NewInternalError("Failed to create job", "JOB_CREATE_FAILED", err))
		return
	}

	task, err := worker.NewExtractRecipeTask(worker.ExtractRecipePayload{
		JobID:         job.ID,
		URL:           job.URL,
		AllowFallback: req.AllowFallback == nil || *req.AllowFallback,
	})
	if err != nil {
		s.writeError(w, r, apperrors.NewInternalError("Failed to create task", "TASK_CREATE_FAILED", err))
		return
	}

	if _, err := s.queue.Enqueue(task); err != nil {
		s.jobs.Update(ctx, job.ID, cache.JobUpdate{Status: cache.JobFailed, Error: err.Error(), ErrorCode: "ENQUEUE_FAILED"})
		s.writeError(w, r, apperrors.NewInternalError("Failed to enqueue task", "ENQUEUE_FAILED", err))
		return
	}

	s.logger.InfoContext(ctx, "Extraction job queued", "job_id", job.ID, "url", job.URL)
	writeJSON(w, http.StatusAccepted, CreateJobResponse{JobID: job.ID, URL: job.URL})
}

func (s *Server) HandleJobStatus(w http.ResponseWriter, r *http.Request) {
	if s.jobs == nil {
		s.writeError(w, r, errAsyncUnavailable)
		return
	}

	id := chi.URLParam(r, "id")
	if id == "" {
		s.writeError(w, r, apperrors.NewValidationError("job id is required", "JOB_ID_REQUIRED", ""))
		return
	}

	job, err := s.jobs.Get(r.Context(), id)
	switch {
	case errors.Is(err, cache.ErrJobNotFound):
		s.writeError(w, r, apperrors.NewNotFoundError("Job not found", "NOT_FOUND", "Jobs expire seven days after their last update."))
		return
	case err != nil:
		s.writeError(w, r, apperrors.NewInternalError("Failed to load job", "JOB_LOAD_FAILED", err))
		return
	}

	writeJSON(w, http.StatusOK, job)
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		s.writeError(w, r, apperrors.NewValidationError("Invalid request body", "INVALID_BODY", "Send a JSON object."))
		return false
	}
	return true
}
