package api

import (
	"context"
	"net/http"
	"time"
)

const readinessTimeout = 3 * time.Second

type readinessCheck struct {
	name     string
	required bool
	check    func(ctx context.Context) error
}

// ReadyResponse is the body of GET /ready. Failures of optional checks are
// listed under Degraded and do not change the status code.
type ReadyResponse struct {
	Status   string            `json:"status"`
	Failed   map[string]string `json:"failed,omitempty"`
	Degraded map[string]string `json:"degraded,omitempty"`
}

// AddReadinessCheck registers a dependency checked by /ready. A failing
// required check answers 503; an optional one only reports degraded.
func (s *Server) AddReadinessCheck(name string, required bool, check func(ctx context.Context) error) {
	s.checks = append(s.checks, readinessCheck{name: name, required: required, check: check})
}

func (s *Server) HandleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
	defer cancel()

	resp := ReadyResponse{Status: "ready"}
	for _, c := range s.checks {
		err := c.check(ctx)
		if err == nil {
			continue
		}
		if c.required {
			if resp.Failed == nil {
				resp.Failed = map[string]string{}
			}
			resp.Failed[c.name] = err.Error()
		} else {
			if resp.Degraded == nil {
				resp.Degraded = map[string]string{}
			}
			resp.Degraded[c.name] = err.Error()
		}
		s.logger.WarnContext(ctx, "Readiness check failed", "check", c.name, "required", c.required, "error", err)
	}

	status := http.StatusOK
	if len(resp.Failed) > 0 {
		resp.Status = "unavailable"
		status = http.StatusServiceUnavailable
	} else if len(resp.Degraded) > 0 {
		resp.Status = "degraded"
	}
	writeJSON(w, status, resp)
}
