package scheduler

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/cleanpath/macc/internal/plan"
	"github.com/cleanpath/macc/internal/scenario"
)

// ResultSink receives the outcome of a background re-solve. The HTTP server
// implements it to refresh /api/latest.
type ResultSink interface {
	SetLatest(res *plan.RunResult)
}

// ResolveJob re-runs the optimization against the scenario file on disk and
// publishes the fresh plan. Analysts edit the scenario between runs; the job
// keeps served results from going stale without anyone hitting the API.
type ResolveJob struct {
	log      zerolog.Logger
	service  *scenario.Service
	sink     ResultSink
	dataPath string
	opts     scenario.RunOptions
	timeout  time.Duration
}

func NewResolveJob(log zerolog.Logger, service *scenario.Service, sink ResultSink, dataPath string, opts scenario.RunOptions) *ResolveJob {
	return &ResolveJob{
		log:      log.With().Str("job", "resolve").Logger(),
		service:  service,
		sink:     sink,
		dataPath: dataPath,
		opts:     opts,
		timeout:  10 * time.Minute,
	}
}

// Run reloads the scenario, solves it and hands the result to the sink.
func (j *ResolveJob) Run() error {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	res, _, _, err := j.service.Run(ctx, j.dataPath, j.opts)
	if err != nil {
		return err
	}

	j.sink.SetLatest(res)
	j.log.Info().
		Str("run_id", res.RunID).
		Str("status", string(res.Status)).
		Bool("target_met", res.TargetMet()).
		Msg("Background re-solve published")
	return nil
}
