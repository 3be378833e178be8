package usecase

import (
	"context"
	"log/slog"
	"time"

	"Blookin/internal/ports"
)

// ImportScheduler wires the interval driver with the import pipeline.
type ImportScheduler struct {
	driver   ports.Scheduler
	importer *Importer
	logger   *slog.Logger
}

// NewImportScheduler returns a helper to start/stop recurring imports.
func NewImportScheduler(driver ports.Scheduler, importer *Importer, log *slog.Logger) *ImportScheduler {
	return &ImportScheduler{driver: driver, importer: importer, logger: log}
}

// Start registers the import job with the provided scheduler.
func (s *ImportScheduler) Start(ctx context.Context) error {
	if s.driver == nil || s.importer == nil {
		return nil
	}

	job := func(trigger time.Time) {
		if err := s.importer.Run(ctx); err != nil && s.logger != nil {
			s.logger.Error("scheduled import failed", "trigger", trigger, "error", err)
		}
	}

	return s.driver.Start(ctx, job)
}

// Stop gracefully tears down the underlying scheduler.
func (s *ImportScheduler) Stop(ctx context.Context) error {
	if s.driver == nil {
		return nil
	}

	return s.driver.Stop(ctx)
}
