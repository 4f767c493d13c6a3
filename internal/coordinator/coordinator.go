// Package coordinator enforces the single-flight recompute discipline: at
// most one pipeline run in flight, and a state flag every read path consults
// before serving stored data.
package coordinator

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog/log"

	"nba_decade/backend/internal/metrics"
)

// ErrUpdateInProgress signals that a recompute is already running. Triggers
// receive it as a conflict; readers receive it as the explicit unavailable
// signal.
var ErrUpdateInProgress = errors.New("recompute already in progress")

// RunFunc is one full recompute. It runs to completion; the coordinator
// imposes no timeout beyond what the pipeline's own stages carry.
type RunFunc func(ctx context.Context) error

// Coordinator owns the process-wide update state. The flag is only mutated
// here; other components observe it through Updating.
type Coordinator struct {
	mu       sync.Mutex
	updating bool

	run   RunFunc
	tasks chan struct{}
}

// New creates a coordinator around the given recompute function.
func New(run RunFunc) *Coordinator {
	return &Coordinator{
		run: run,
		// Single-flight: the gate guarantees at most one queued task.
		tasks: make(chan struct{}, 1),
	}
}

// Start launches the background worker that executes triggered recomputes.
// The worker exits when ctx is cancelled.
func (c *Coordinator) Start(ctx context.Context) {
	go c.worker(ctx)
}

// Trigger requests a recompute. It returns immediately: nil means the run
// was accepted and handed to the worker, ErrUpdateInProgress means one is
// already in flight (the request is rejected, not queued).
func (c *Coordinator) Trigger() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.updating {
		return ErrUpdateInProgress
	}

	c.updating = true
	metrics.UpdateInProgress.Set(1)
	c.tasks <- struct{}{}

	log.Info().Msg("Recompute accepted")
	return nil
}

// Updating reports whether a recompute is currently in flight.
func (c *Coordinator) Updating() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.updating
}

func (c *Coordinator) worker(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-c.tasks:
			if err := c.run(ctx); err != nil {
				log.Error().Err(err).Msg("Recompute failed")
			}
			// The flag resets whether the run succeeded or failed;
			// the system must stay recoverable after an abort.
			c.mu.Lock()
			c.updating = false
			c.mu.Unlock()
			metrics.UpdateInProgress.Set(0)
		}
	}
}
