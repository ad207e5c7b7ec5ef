package worker

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
)

// Task type constants
const (
	TypeExtractRecipe = "extract:recipe"
)

// Retry and timeout policy for extraction tasks. The timeout covers a slow
// page fetch plus a full text-generation call.
const (
	ExtractMaxRetry = 3
	ExtractTimeout  = 5 * time.Minute
)

// ExtractRecipePayload is the payload for recipe extraction tasks
type ExtractRecipePayload struct {
	JobID         string `json:"job_id"`
	URL           string `json:"url"`
	AllowFallback bool   `json:"allow_fallback"`
}

// NewExtractRecipeTask creates a new extract recipe task
func NewExtractRecipeTask(payload ExtractRecipePayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeExtractRecipe, data,
		asynq.MaxRetry(ExtractMaxRetry),
		asynq.Timeout(ExtractTimeout),
		asynq.TaskID(payload.JobID),
	), nil
}
