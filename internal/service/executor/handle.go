package executor

import (
	"context"

	"github.com/oshokin/release-installer/internal/domain/release"
)

// Handle is the future of a submitted install.
type Handle struct {
	descriptor release.Descriptor
	done       chan struct{}
	outcome    release.Outcome
}

func newHandle(descriptor release.Descriptor) *Handle {
	return &Handle{
		descriptor: descriptor,
		done:       make(chan struct{}),
	}
}

// Descriptor returns the release being installed.
func (h *Handle) Descriptor() release.Descriptor {
	return h.descriptor
}

// Done is closed once the outcome is available.
func (h *Handle) Done() <-chan struct{} {
	return h.done
}

// Outcome returns the outcome without blocking; ok is false while the install runs.
func (h *Handle) Outcome() (release.Outcome, bool) {
	select {
	case <-h.done:
		return h.outcome, true
	default:
		return release.Outcome{}, false
	}
}

// Wait blocks until the install finished or ctx is done.
func (h *Handle) Wait(ctx context.Context) (release.Outcome, error) {
	select {
	case <-h.done:
		return h.outcome, nil
	case <-ctx.Done():
		return release.Outcome{}, ctx.Err()
	}
}

// resolve stores the outcome; it must be called exactly once.
func (h *Handle) resolve(outcome release.Outcome) {
	h.outcome = outcome
	close(h.done)
}
