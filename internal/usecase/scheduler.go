package usecase

import (
	"context"
	"log/slog"
	"time"

	"InboxAgent/internal/ports"
)

// Scheduler wires the interval driver with the triage pipeline.
type Scheduler struct {
	driver   ports.Scheduler
	pipeline *Pipeline
	limit    int
	logger   *slog.Logger
}

// NewScheduler returns a helper to start/stop recurring batch runs.
func NewScheduler(driver ports.Scheduler, pipeline *Pipeline, limit int, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{driver: driver, pipeline: pipeline, limit: limit, logger: logger}
}

// Start registers the pipeline with the provided scheduler. A failed run is
// logged and the schedule keeps going.
func (s *Scheduler) Start(ctx context.Context) error {
	if s.driver == nil || s.pipeline == nil {
		return nil
	}

	job := func(trigger time.Time) {
		report, err := s.pipeline.ProcessBatch(ctx, s.limit)
		if err != nil {
			s.logger.Error("batch run failed", "trigger", trigger, "error", err,
				"checked", report.Checked, "labeled", report.Labeled)
			return
		}
		s.logger.Info("batch run done", "trigger", trigger,
			"checked", report.Checked, "labeled", report.Labeled,
			"skipped", report.Skipped, "failed", report.Failed)
	}

	return s.driver.Start(ctx, job)
}

// Stop gracefully tears down the underlying scheduler.
func (s *Scheduler) Stop(ctx context.Context) error {
	if s.driver == nil {
		return nil
	}

	return s.driver.Stop(ctx)
}
