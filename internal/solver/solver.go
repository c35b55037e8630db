// Package solver runs a constructed deployment model through an ordered list
// of LP backends. A backend that proves the model infeasible has succeeded;
// only a backend that cannot produce any verdict counts as failed, and only
// when every candidate fails does the adapter return an error.
package solver

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/cleanpath/macc/internal/model"
)

// Auto selects the default backend order.
const Auto = "auto"

// Status is the outcome of a successful solve.
type Status string

const (
	// StatusOptimal means an optimal solution was found; Values is populated.
	StatusOptimal Status = "optimal"
	// StatusInfeasible means the backend proved no feasible point exists
	// (an unreachable target with slack disabled). This is a valid solve
	// outcome, not a backend failure.
	StatusInfeasible Status = "infeasible"
	// StatusUnbounded means the objective is unbounded below. The deployment
	// model never produces this on well-formed input.
	StatusUnbounded Status = "unbounded"
)

// Result is the uniform outcome type every backend returns.
type Result struct {
	Backend   string
	Status    Status
	Objective float64
	// Values holds the solved variable vector, indexed by LP column.
	// Empty unless Status is StatusOptimal.
	Values []float64
}

// Backend is one LP solver implementation.
type Backend interface {
	Name() string
	Solve(m *model.Model) (*Result, error)
}

// Backends returns the candidate list in auto-selection order: the exact
// simplex backend first, the penalty-descent fallback second.
func Backends() []Backend {
	return []Backend{
		&SimplexBackend{},
		&DescentBackend{},
	}
}

// Solve runs the model through the chosen backend, or through the auto order
// when choice is "auto". The first backend to return a verdict wins; failures
// are recorded and the next candidate is tried. When every candidate fails,
// the aggregated error names the last failure.
func Solve(m *model.Model, choice string, log zerolog.Logger) (*Result, error) {
	candidates := Backends()
	if choice != "" && choice != Auto {
		var picked []Backend
		for _, b := range candidates {
			if strings.EqualFold(b.Name(), choice) {
				picked = append(picked, b)
			}
		}
		if len(picked) == 0 {
			return nil, fmt.Errorf("unknown solver backend %q (available: %s)", choice, backendNames(candidates))
		}
		candidates = picked
	}

	var lastErr error
	for _, b := range candidates {
		log.Debug().Str("backend", b.Name()).Msg("Trying LP backend")
		res, err := b.Solve(m)
		if err != nil {
			log.Warn().Err(err).Str("backend", b.Name()).Msg("LP backend failed")
			lastErr = fmt.Errorf("%s: %w", b.Name(), err)
			continue
		}
		log.Info().
			Str("backend", b.Name()).
			Str("status", string(res.Status)).
			Float64("objective", res.Objective).
			Msg("Solve finished")
		return res, nil
	}

	return nil, fmt.Errorf(
		"no usable LP backend (tried %s), last failure: %w; enable at least one backend",
		backendNames(candidates), lastErr,
	)
}

func backendNames(backends []Backend) string {
	names := make([]string, len(backends))
	for i, b := range backends {
		names[i] = b.Name()
	}
	return strings.Join(names, ", ")
}
