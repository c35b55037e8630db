package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/cleanpath/macc/internal/dataset"
	"github.com/cleanpath/macc/internal/scenario"
)

var errNoRun = errors.New("no optimization has run yet")

// optimizeRequest is the body of POST /api/optimize. Absent fields fall back
// to the server configuration.
type optimizeRequest struct {
	Years        []int    `json:"years,omitempty"`
	AllowSlack   *bool    `json:"allow_slack,omitempty"`
	SlackPenalty *float64 `json:"slack_penalty,omitempty"`
	DiscountRate *float64 `json:"discount_rate,omitempty"`
	DefaultRamp  *float64 `json:"default_ramp,omitempty"`
	Solver       string   `json:"solver,omitempty"`
}

// handleHealth handles health check requests
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "healthy",
		"service": "macc",
	})
}

// handleScenario reports the loaded dataset's shape without solving.
func (s *Server) handleScenario(w http.ResponseWriter, r *http.Request) {
	d, err := dataset.Load(r.Context(), s.cfg.DataPath, s.log)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}

	techs := make(map[string]bool)
	for _, row := range d.TechYears {
		techs[row.TechID] = true
	}
	for _, m := range d.Meta {
		techs[m.TechID] = true
	}

	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data_path":    s.cfg.DataPath,
		"technologies": len(techs),
		"target_years": d.TargetYears,
		"targets":      d.Targets,
		"baseline_mt":  d.BaselineMt,
		"rules":        len(d.Rules),
	})
}

// handleOptimize runs a full solve and returns the deployment plan.
func (s *Server) handleOptimize(w http.ResponseWriter, r *http.Request) {
	var req optimizeRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.writeError(w, http.StatusBadRequest, err)
			return
		}
	}

	opts := scenario.RunOptions{
		Years:        req.Years,
		AllowSlack:   s.cfg.AllowSlack,
		SlackPenalty: s.cfg.SlackPenalty,
		DiscountRate: s.cfg.DiscountRate,
		DefaultRamp:  s.cfg.DefaultRamp,
		Solver:       s.cfg.Solver,
	}
	if req.AllowSlack != nil {
		opts.AllowSlack = *req.AllowSlack
	}
	if req.SlackPenalty != nil {
		opts.SlackPenalty = *req.SlackPenalty
	}
	if req.DiscountRate != nil {
		opts.DiscountRate = *req.DiscountRate
	}
	if req.DefaultRamp != nil {
		opts.DefaultRamp = *req.DefaultRamp
	}
	if req.Solver != "" {
		opts.Solver = req.Solver
	}

	res, _, _, err := s.service.Run(r.Context(), s.cfg.DataPath, opts)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}

	s.SetLatest(res)
	s.writeJSON(w, http.StatusOK, res)
}

// handleLatest returns the most recent run result, whether it came from the
// API or the background re-solve job.
func (s *Server) handleLatest(w http.ResponseWriter, r *http.Request) {
	res := s.getLatest()
	if res == nil {
		s.writeError(w, http.StatusNotFound, errNoRun)
		return
	}
	s.writeJSON(w, http.StatusOK, res)
}

// writeJSON writes a JSON response
func (s *Server) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, err error) {
	s.writeJSON(w, status, map[string]string{"error": err.Error()})
}
