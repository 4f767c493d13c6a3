package coordinator

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTriggerRunsRecompute(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var runs atomic.Int32
	c := New(func(ctx context.Context) error {
		runs.Add(1)
		return nil
	})
	c.Start(ctx)

	require.NoError(t, c.Trigger())

	require.Eventually(t, func() bool {
		return runs.Load() == 1 && !c.Updating()
	}, 2*time.Second, 10*time.Millisecond, "Run should complete and the flag should reset")
}

func TestTriggerConflictWhileRunning(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	started := make(chan struct{})
	release := make(chan struct{})
	var startedOnce sync.Once
	c := New(func(ctx context.Context) error {
		startedOnce.Do(func() { close(started) })
		<-release
		return nil
	})
	c.Start(ctx)

	require.NoError(t, c.Trigger())
	<-started

	assert.True(t, c.Updating())
	assert.ErrorIs(t, c.Trigger(), ErrUpdateInProgress, "A second trigger is a conflict, not a queue entry")

	close(release)
	require.Eventually(t, func() bool {
		return !c.Updating()
	}, 2*time.Second, 10*time.Millisecond)

	// Accepted again once the run finished.
	assert.NoError(t, c.Trigger())
}

func TestFlagResetsAfterFailedRun(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var runs atomic.Int32
	c := New(func(ctx context.Context) error {
		runs.Add(1)
		return errors.New("pipeline exploded")
	})
	c.Start(ctx)

	require.NoError(t, c.Trigger())
	require.Eventually(t, func() bool {
		return runs.Load() == 1 && !c.Updating()
	}, 2*time.Second, 10*time.Millisecond, "A failed run must still reset the flag")

	// The system stays recoverable: the next trigger is accepted.
	require.NoError(t, c.Trigger())
	require.Eventually(t, func() bool {
		return runs.Load() == 2 && !c.Updating()
	}, 2*time.Second, 10*time.Millisecond)
}

func TestWorkerStopsOnContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	var runs atomic.Int32
	c := New(func(ctx context.Context) error {
		runs.Add(1)
		return nil
	})
	c.Start(ctx)
	cancel()

	// Give the worker a moment to observe cancellation; a trigger after that
	// is accepted but never executed.
	time.Sleep(50 * time.Millisecond)
	require.NoError(t, c.Trigger())
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int32(0), runs.Load())
}
