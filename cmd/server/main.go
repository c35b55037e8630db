// Package main is the entry point for the abatement planning service. It
// serves optimization runs over HTTP and keeps the published plan fresh with
// an optional background re-solve job.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cleanpath/macc/internal/config"
	"github.com/cleanpath/macc/internal/scenario"
	"github.com/cleanpath/macc/internal/scheduler"
	"github.com/cleanpath/macc/internal/server"
	"github.com/cleanpath/macc/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fallback := logger.Default()
		fallback.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log, err := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: cfg.DevMode,
	})
	if err != nil {
		fallback := logger.Default()
		fallback.Fatal().Err(err).Msg("Failed to configure logging")
	}

	log.Info().
		Str("data_path", cfg.DataPath).
		Int("port", cfg.Port).
		Msg("Starting abatement planner")

	service := scenario.NewService(log)

	srv := server.New(server.Config{
		Log:     log,
		Config:  cfg,
		Service: service,
		Port:    cfg.Port,
		DevMode: cfg.DevMode,
	})

	runOpts := scenario.RunOptions{
		AllowSlack:   cfg.AllowSlack,
		SlackPenalty: cfg.SlackPenalty,
		DiscountRate: cfg.DiscountRate,
		DefaultRamp:  cfg.DefaultRamp,
		Solver:       cfg.Solver,
	}

	var sched *scheduler.Scheduler
	if cfg.ResolveCron != "" {
		job := scheduler.NewResolveJob(log, service, srv, cfg.DataPath, runOpts)
		sched = scheduler.New(log, job)
		if err := sched.Schedule(cfg.ResolveCron); err != nil {
			log.Fatal().Err(err).Str("schedule", cfg.ResolveCron).Msg("Failed to register re-solve job")
		}
		sched.Start()

		// Publish an initial plan so /api/latest works from the start.
		go sched.RunNow()
	}

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutdown signal received")

	if sched != nil {
		sched.Stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown failed")
	}

	log.Info().Msg("Shutdown complete")
}
