package controller

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"sync/atomic"

	goversion "github.com/hashicorp/go-version"

	"github.com/oshokin/release-installer/internal/archive"
	"github.com/oshokin/release-installer/internal/domain/release"
	"github.com/oshokin/release-installer/internal/logger"
	"github.com/oshokin/release-installer/internal/repository/installed"
	"github.com/oshokin/release-installer/internal/service/executor"
	"github.com/oshokin/release-installer/internal/service/privilege"
)

// Labels shown instead of the installed version.
const (
	NoVersionInstalled = "no version installed"
	InstalledReadError = "read error"
)

var (
	// ErrNoSelection is returned by Install when no release was selected.
	ErrNoSelection = errors.New("no release selected")
	// ErrIndexOutOfRange is returned by Select for an index outside the snapshot.
	ErrIndexOutOfRange = errors.New("release index out of range")
)

// Catalog fetches the release list.
type Catalog interface {
	Fetch(ctx context.Context) ([]release.Descriptor, error)
}

// Submitter starts background installs.
type Submitter interface {
	Submit(
		ctx context.Context,
		descriptor release.Descriptor,
		target release.Target,
		onComplete func(release.Outcome),
	) (*executor.Handle, error)
	Busy() bool
}

// Options configure a Controller.
type Options struct {
	// Target is where releases are installed.
	Target release.Target
	// VersionKey names the installed version record.
	VersionKey string
	// RecordOnSuccess writes the version back to the store after a successful install.
	RecordOnSuccess bool
}

// Controller coordinates catalog refreshes and installs.
type Controller struct {
	catalog  Catalog
	executor Submitter
	elevator privilege.Elevator
	store    installed.Store
	opts     Options

	// snapshot is replaced wholesale on every successful refresh.
	snapshot atomic.Pointer[release.Snapshot]

	mu           sync.Mutex
	selected     int
	refreshErr   error
	installed    string
	installedErr error
}

// New creates a controller with an empty snapshot and no selection.
func New(
	catalog Catalog,
	submitter Submitter,
	elevator privilege.Elevator,
	store installed.Store,
	opts Options,
) *Controller {
	if elevator == nil {
		elevator = privilege.Noop{}
	}

	c := &Controller{
		catalog:      catalog,
		executor:     submitter,
		elevator:     elevator,
		store:        store,
		opts:         opts,
		selected:     -1,
		installedErr: installed.ErrNotFound,
	}

	c.snapshot.Store(release.NewSnapshot(nil))

	return c
}

// Snapshot returns the current release list.
func (c *Controller) Snapshot() *release.Snapshot {
	return c.snapshot.Load()
}

// Refresh fetches the catalog. On failure the previous snapshot is kept.
func (c *Controller) Refresh(ctx context.Context) error {
	descriptors, err := c.catalog.Fetch(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()

	c.refreshErr = err
	if err != nil {
		logger.ErrorKV(ctx, "Refresh failed", "kind", release.Classify(err), "error", err)
		return err
	}

	c.snapshot.Store(release.NewSnapshot(descriptors))
	c.selected = -1

	logger.InfoKV(ctx, "Catalog refreshed", "releases", len(descriptors))

	return nil
}

// LastRefreshError returns the error of the latest refresh, nil after a success.
func (c *Controller) LastRefreshError() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.refreshErr
}

// Select marks the release at index i of the current snapshot.
func (c *Controller) Select(i int) error {
	if i < 0 || i >= c.Snapshot().Len() {
		return fmt.Errorf("%d: %w", i, ErrIndexOutOfRange)
	}

	c.mu.Lock()
	c.selected = i
	c.mu.Unlock()

	return nil
}

// Selected returns the selected index and release.
func (c *Controller) Selected() (int, release.Descriptor, bool) {
	c.mu.Lock()
	index := c.selected
	c.mu.Unlock()

	descriptor, ok := c.Snapshot().At(index)
	if !ok {
		return -1, release.Descriptor{}, false
	}

	return index, descriptor, true
}

// Busy reports whether an install is running.
func (c *Controller) Busy() bool {
	return c.executor.Busy()
}

// Install submits the selected release. onComplete is delivered on the executor's home.
func (c *Controller) Install(ctx context.Context, onComplete func(release.Outcome)) (*executor.Handle, error) {
	_, descriptor, ok := c.Selected()
	if !ok {
		return nil, ErrNoSelection
	}

	if err := c.elevator.EnsureElevated(ctx); err != nil {
		return nil, err
	}

	if err := os.MkdirAll(c.opts.Target.DestinationDir, archive.DefaultDirMode); err != nil {
		return nil, fmt.Errorf("create destination directory: %w: %w", release.ErrFileSystem, err)
	}

	return c.executor.Submit(ctx, descriptor, c.opts.Target, func(outcome release.Outcome) {
		if outcome.Succeeded && c.opts.RecordOnSuccess {
			c.recordInstalled(context.WithoutCancel(ctx), descriptor.Version)
		}

		if onComplete != nil {
			onComplete(outcome)
		}
	})
}

// ReloadInstalled reads the installed version record again.
func (c *Controller) ReloadInstalled(ctx context.Context) {
	if c.store == nil {
		return
	}

	value, err := c.store.Read(ctx, c.opts.VersionKey)
	if err != nil && !errors.Is(err, installed.ErrNotFound) {
		logger.WarnKV(ctx, "Failed to read installed version", "error", err)
	}

	c.mu.Lock()
	c.installed, c.installedErr = value, err
	c.mu.Unlock()
}

// InstalledVersion returns the installed version and the error of the last read.
func (c *Controller) InstalledVersion() (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.installed, c.installedErr
}

// InstalledLabel returns the installed version or a placeholder for display.
func (c *Controller) InstalledLabel() string {
	value, err := c.InstalledVersion()

	switch {
	case errors.Is(err, installed.ErrNotFound):
		return NoVersionInstalled
	case err != nil:
		return InstalledReadError
	default:
		return value
	}
}

// LatestIndex returns the index of the highest parsable version.
func (c *Controller) LatestIndex() (int, bool) {
	var (
		snapshot = c.Snapshot()
		best     *goversion.Version
		index    = -1
	)

	for i, descriptor := range snapshot.Descriptors() {
		candidate, err := goversion.NewVersion(descriptor.Version)
		if err != nil {
			continue
		}

		if best == nil || candidate.GreaterThan(best) {
			best, index = candidate, i
		}
	}

	return index, index >= 0
}

// Compare relates release i to the installed version.
func (c *Controller) Compare(i int) Relation {
	descriptor, ok := c.Snapshot().At(i)
	if !ok {
		return RelationUnknown
	}

	current, err := c.InstalledVersion()
	if err != nil {
		return RelationUnknown
	}

	if strings.EqualFold(strings.TrimSpace(current), descriptor.Version) {
		return RelationInstalled
	}

	installedVersion, err := goversion.NewVersion(current)
	if err != nil {
		return RelationUnknown
	}

	candidate, err := goversion.NewVersion(descriptor.Version)
	if err != nil {
		return RelationUnknown
	}

	switch candidate.Compare(installedVersion) {
	case 1:
		return RelationNewer
	case -1:
		return RelationOlder
	default:
		return RelationInstalled
	}
}

// UpdateAvailable reports the latest release when it is newer than the installed one.
func (c *Controller) UpdateAvailable() (release.Descriptor, bool) {
	index, ok := c.LatestIndex()
	if !ok || c.Compare(index) != RelationNewer {
		return release.Descriptor{}, false
	}

	return c.Snapshot().At(index)
}

func (c *Controller) recordInstalled(ctx context.Context, version string) {
	if c.store == nil {
		return
	}

	if err := c.store.Write(ctx, c.opts.VersionKey, version); err != nil {
		logger.ErrorKV(ctx, "Failed to record installed version", "version", version, "error", err)
		return
	}

	c.mu.Lock()
	c.installed, c.installedErr = version, nil
	c.mu.Unlock()
}
