package usecase

import (
	"context"
	"log/slog"
	"time"

	"ReviewScout/internal/logging"
	"ReviewScout/internal/ports"
)

// Scheduler wires the periodic driver with the collector.
type Scheduler struct {
	driver    ports.Scheduler
	collector *Collector
	logger    *slog.Logger
}

// NewScheduler returns a helper to start/stop recurring collection.
func NewScheduler(driver ports.Scheduler, collector *Collector, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		driver:    driver,
		collector: collector,
		logger:    logging.OrDiscard(logger).With("component", "scheduler"),
	}
}

// Start registers a collection over every platform with the driver.
func (s *Scheduler) Start(ctx context.Context) error {
	if s.driver == nil || s.collector == nil {
		return nil
	}

	job := func(trigger time.Time) {
		results, err := s.collector.TriggerAll(ctx)
		collected := 0
		for _, r := range results {
			collected += r.CollectedCount
		}
		if err != nil {
			s.logger.Warn("scheduled collection finished with errors", "trigger", trigger, "collected", collected, "error", err)
			return
		}
		s.logger.Info("scheduled collection finished", "trigger", trigger, "platforms", len(results), "collected", collected)
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
