// Package scheduler drives periodic invocation of a pipeline run with
// run-to-completion semantics, graceful shutdown on SIGINT/SIGTERM,
// and overrun ticks that are deferred, never skipped or run concurrently.
package scheduler

import (
	"context"
	"time"

	"github.com/hashicorp/go-hclog"
)

// RunFunc executes one pipeline run to completion. It must not be invoked
// concurrently with itself; the Scheduler guarantees that.
type RunFunc func(ctx context.Context)

// Scheduler drives RunFunc on a fixed interval, optionally once immediately
// on Start, until its context is cancelled.
type Scheduler struct {
	interval     time.Duration
	runOnStartup bool
	run          RunFunc
	logger       hclog.Logger
}

// New constructs a Scheduler. interval must be positive.
func New(interval time.Duration, runOnStartup bool, run RunFunc, logger hclog.Logger) *Scheduler {
	return &Scheduler{
		interval:     interval,
		runOnStartup: runOnStartup,
		run:          run,
		logger:       logger.Named("scheduler"),
	}
}

// Start blocks until ctx is cancelled, invoking run on every tick. A run
// that outlives the tick interval defers the next run rather than firing
// it concurrently or skipping it: the ticker buffers exactly one pending
// tick, so the owed run starts as soon as the overrunning one completes,
// and the ticker itself drops anything beyond that one owed tick.
func (s *Scheduler) Start(ctx context.Context) {
	if s.runOnStartup {
		s.runOnce(ctx)
		if ctx.Err() != nil {
			return
		}
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("shutdown signal received, stopping scheduler")
			return
		case <-ticker.C:
			s.runOnce(ctx)
			if ctx.Err() != nil {
				return
			}
		}
	}
}

// runOnce executes run to completion and logs its elapsed time. RunFunc
// returns nothing, so a failed pipeline run (which run reports itself)
// never stops the scheduler loop.
func (s *Scheduler) runOnce(ctx context.Context) {
	start := time.Now()
	s.run(ctx)
	s.logger.Debug("pipeline run complete", "elapsed", time.Since(start))
}
