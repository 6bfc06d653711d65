package installer

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/oshokin/release-installer/internal/archive"
	"github.com/oshokin/release-installer/internal/domain/release"
	"github.com/oshokin/release-installer/internal/logger"
	"github.com/oshokin/release-installer/internal/transport/fetcher"
)

// Options switches optional pipeline behavior.
type Options struct {
	// TerminateRunning stops running copies of the legacy executable before cleanup.
	TerminateRunning bool
	// StagedExtraction extracts into a staging directory before moving files into place.
	StagedExtraction bool
}

// Manager runs the install pipeline.
type Manager struct {
	// fetcher downloads packages.
	fetcher fetcher.Fetcher
	// terminator stops running copies of the legacy executable.
	terminator ProcessTerminator
	// opts holds the optional pipeline switches.
	opts Options
}

// Option configures the manager.
type Option func(*Manager)

// WithTerminator replaces the process terminator.
func WithTerminator(t ProcessTerminator) Option {
	return func(m *Manager) {
		if t != nil {
			m.terminator = t
		}
	}
}

// New creates a manager downloading packages through f.
func New(f fetcher.Fetcher, opts Options, options ...Option) *Manager {
	m := &Manager{
		fetcher:    f,
		terminator: NewProcessTerminator(),
		opts:       opts,
	}

	for _, option := range options {
		option(m)
	}

	return m
}

// Install runs the pipeline for descriptor and target and reports the outcome.
// Succeeded is true only if every step completed.
func (m *Manager) Install(ctx context.Context, descriptor release.Descriptor, target release.Target) release.Outcome {
	ctx = logger.WithName(ctx, "installer")
	ctx = logger.WithFields(ctx, "version", descriptor.Version, "destination", target.DestinationDir)

	if err := m.run(ctx, descriptor, target); err != nil {
		logger.ErrorKV(ctx, "Install failed", "kind", release.Classify(err), "error", err)
		return release.Failed(err)
	}

	logger.Info(ctx, "Install completed")

	return release.Success()
}

// run executes the steps in order, stopping at the first error.
func (m *Manager) run(ctx context.Context, descriptor release.Descriptor, target release.Target) error {
	if m.opts.TerminateRunning {
		logger.InfoKV(ctx, "Terminating running copies of the legacy executable", "name", target.LegacyArtifactName)

		if err := m.terminator.Terminate(ctx, target.LegacyArtifactName); err != nil {
			return fmt.Errorf("terminate %s: %w: %w", target.LegacyArtifactName, release.ErrFileSystem, err)
		}
	}

	if err := m.removeLegacyArtifact(ctx, target); err != nil {
		return fmt.Errorf("cleanup: %w", err)
	}

	logger.InfoKV(ctx, "Downloading package", "url", descriptor.PackageURL)

	data, err := m.fetcher.Fetch(ctx, descriptor.PackageURL)
	if err != nil {
		return fmt.Errorf("download package: %w", err)
	}

	logger.InfoKV(ctx, "Extracting package", "bytes", len(data), "staged", m.opts.StagedExtraction)

	extracted, err := archive.Extract(ctx, data, target.DestinationDir, archive.Options{
		ExecutableName: target.LegacyArtifactName,
		Staged:         m.opts.StagedExtraction,
	})
	if err != nil {
		return fmt.Errorf("extract package: %w", err)
	}

	logger.InfoKV(ctx, "Package extracted", "files", len(extracted))

	return nil
}

// removeLegacyArtifact deletes the legacy executable. A missing file is not an error.
func (m *Manager) removeLegacyArtifact(ctx context.Context, target release.Target) error {
	path := target.LegacyPath()

	if _, err := os.Lstat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logger.InfoKV(ctx, "Legacy executable not found, nothing to remove", "path", path)
			return nil
		}

		return fmt.Errorf("stat %s: %w: %w", path, release.ErrFileSystem, err)
	}

	if err := os.Remove(path); err != nil {
		return fmt.Errorf("remove %s: %w: %w", path, release.ErrFileSystem, err)
	}

	logger.InfoKV(ctx, "Legacy executable removed", "path", path)

	return nil
}
