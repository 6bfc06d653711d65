package executor

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/sourcegraph/conc"
	"github.com/sourcegraph/conc/panics"

	"github.com/oshokin/release-installer/internal/domain/release"
	"github.com/oshokin/release-installer/internal/logger"
)

// ErrBusy is returned by Submit while a previous install is still running.
var ErrBusy = errors.New("an install is already running")

// Installer performs one install attempt.
type Installer interface {
	Install(ctx context.Context, descriptor release.Descriptor, target release.Target) release.Outcome
}

// Home is the execution context completion callbacks are delivered on.
type Home interface {
	Post(fn func())
}

// HomeFunc adapts a function to Home.
type HomeFunc func(fn func())

// Post calls f(fn).
func (f HomeFunc) Post(fn func()) {
	f(fn)
}

// Executor runs at most one install at a time.
type Executor struct {
	// installer performs the install pipeline.
	installer Installer
	// home receives completion callbacks.
	home Home
	// busy is set while an install is in flight.
	busy atomic.Bool
	// workers tracks background goroutines.
	workers conc.WaitGroup
}

// New creates an executor delivering completions to home.
func New(installer Installer, home Home) *Executor {
	return &Executor{
		installer: installer,
		home:      home,
	}
}

// Submit starts installing descriptor into target in the background.
// It returns ErrBusy without blocking if an install is already running.
// onComplete, when not nil, is posted to the home context once the install finished.
func (e *Executor) Submit(
	ctx context.Context,
	descriptor release.Descriptor,
	target release.Target,
	onComplete func(release.Outcome),
) (*Handle, error) {
	if !e.busy.CompareAndSwap(false, true) {
		return nil, ErrBusy
	}

	handle := newHandle(descriptor)

	logger.InfoKV(ctx, "Install submitted", "version", descriptor.Version)

	e.workers.Go(func() {
		outcome := e.install(ctx, descriptor, target)

		handle.resolve(outcome)
		e.busy.Store(false)

		if onComplete != nil {
			e.home.Post(func() {
				onComplete(outcome)
			})
		}
	})

	return handle, nil
}

// Busy reports whether an install is in flight.
func (e *Executor) Busy() bool {
	return e.busy.Load()
}

// Wait blocks until every background install has finished.
func (e *Executor) Wait() {
	e.workers.Wait()
}

// install runs the installer, turning a panic into a failed outcome so the
// completion is still delivered.
func (e *Executor) install(ctx context.Context, descriptor release.Descriptor, target release.Target) release.Outcome {
	var (
		catcher panics.Catcher
		outcome release.Outcome
	)

	catcher.Try(func() {
		outcome = e.installer.Install(ctx, descriptor, target)
	})

	if recovered := catcher.Recovered(); recovered != nil {
		logger.ErrorKV(ctx, "Install panicked", "panic", recovered.Value)
		return release.Failed(fmt.Errorf("install panicked: %w", recovered.AsError()))
	}

	return outcome
}
