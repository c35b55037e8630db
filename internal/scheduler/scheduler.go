// Package scheduler runs the planner's one background job: a cron-driven
// re-solve that keeps the served plan in step with scenario file edits.
package scheduler

import (
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// Scheduler drives the periodic re-solve.
type Scheduler struct {
	cron *cron.Cron
	log  zerolog.Logger
	job  *ResolveJob
}

func New(log zerolog.Logger, job *ResolveJob) *Scheduler {
	return &Scheduler{
		cron: cron.New(cron.WithSeconds()),
		log:  log.With().Str("component", "scheduler").Logger(),
		job:  job,
	}
}

// Schedule registers the re-solve on a six-field cron spec, for example
// "0 0 * * * *" for every hour on the hour, or "@every 15m".
func (s *Scheduler) Schedule(spec string) error {
	if _, err := s.cron.AddFunc(spec, s.runOnce); err != nil {
		return err
	}
	s.log.Info().Str("schedule", spec).Msg("Re-solve scheduled")
	return nil
}

// Start starts the cron loop.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.log.Info().Msg("Scheduler started")
}

// Stop stops the cron loop and waits for a running re-solve to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.log.Info().Msg("Scheduler stopped")
}

// RunNow triggers the re-solve outside its schedule. Server startup uses it
// to publish an initial plan before the first cron tick.
func (s *Scheduler) RunNow() {
	s.runOnce()
}

func (s *Scheduler) runOnce() {
	s.log.Debug().Msg("Running re-solve")
	if err := s.job.Run(); err != nil {
		s.log.Error().Err(err).Msg("Re-solve failed")
		return
	}
	s.log.Debug().Msg("Re-solve completed")
}
