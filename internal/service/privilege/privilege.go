package privilege

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrNotElevated means the process lacks administrative rights and could not obtain them.
	ErrNotElevated = errors.New("administrative privileges are required")
	// ErrRelaunched means an elevated copy of the process was started and this one should exit.
	ErrRelaunched = errors.New("relaunched with elevated privileges")
)

// Elevator ensures the process runs with administrative rights.
type Elevator interface {
	EnsureElevated(ctx context.Context) error
}

// Noop never asks for elevation.
type Noop struct{}

// EnsureElevated always succeeds.
func (Noop) EnsureElevated(context.Context) error {
	return nil
}

// OSElevator checks the current process token and relaunches when the platform supports it.
type OSElevator struct {
	isElevated func() (bool, error)
	// relaunch is nil on platforms that cannot elevate a running program.
	relaunch func(ctx context.Context) error
}

// New returns Noop when elevation is not required and the platform elevator otherwise.
//
//nolint:ireturn // Noop and OSElevator are interchangeable.
func New(required bool) Elevator {
	if !required {
		return Noop{}
	}

	return &OSElevator{
		isElevated: isElevated,
		relaunch:   relaunch,
	}
}

// EnsureElevated returns nil when already elevated, ErrRelaunched after starting an
// elevated copy, and ErrNotElevated otherwise.
func (e *OSElevator) EnsureElevated(ctx context.Context) error {
	elevated, err := e.isElevated()
	if err != nil {
		return fmt.Errorf("check elevation: %w", err)
	}

	if elevated {
		return nil
	}

	if e.relaunch == nil {
		return ErrNotElevated
	}

	if err = e.relaunch(ctx); err != nil {
		return fmt.Errorf("%w: %w", ErrNotElevated, err)
	}

	return ErrRelaunched
}
