package executor

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/release-installer/internal/domain/release"
)

// TestLoop_RunsCallbacksInOrder verifies posted callbacks run sequentially on the Run goroutine.
func TestLoop_RunsCallbacksInOrder(t *testing.T) {
	t.Parallel()

	loop := NewLoop()

	var order []int

	loop.Post(func() { order = append(order, 1) })
	loop.Post(func() { order = append(order, 2) })
	loop.Post(loop.Stop)

	require.NoError(t, loop.Run(context.Background()))
	require.Equal(t, []int{1, 2}, order)

	// Posting after stop does not block.
	loop.Post(func() { order = append(order, 3) })
	loop.Stop()
}

// TestLoop_RunStopsOnContext returns the context error when canceled.
func TestLoop_RunStopsOnContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	require.ErrorIs(t, NewLoop().Run(ctx), context.DeadlineExceeded)
}

// TestLoop_AsExecutorHome runs an install end to end with the loop as the home context.
func TestLoop_AsExecutorHome(t *testing.T) {
	t.Parallel()

	installer := newBlockingInstaller(release.Success())
	close(installer.unblock)

	loop := NewLoop()
	e := New(installer, loop)

	var received []release.Outcome

	_, err := e.Submit(context.Background(), descriptor, target, func(outcome release.Outcome) {
		received = append(received, outcome)
		loop.Stop()
	})
	require.NoError(t, err)

	require.NoError(t, loop.Run(context.Background()))
	e.Wait()

	require.Len(t, received, 1)
	require.True(t, received[0].Succeeded)
}
