package release

import "path/filepath"

// Descriptor describes one installable release as listed in the feed.
// It is a value type: once parsed it is never mutated.
type Descriptor struct {
	// Version is the version label shown to the operator.
	Version string
	// ReleaseDate is the publication date exactly as the feed spells it.
	ReleaseDate string
	// PackageURL points to the ZIP package of the release.
	PackageURL string
}

// Target is where a release gets installed.
type Target struct {
	// DestinationDir is the directory the package is extracted into.
	DestinationDir string
	// LegacyArtifactName is the previously deployed executable, relative to DestinationDir.
	LegacyArtifactName string
}

// LegacyPath returns the full path of the legacy artifact.
func (t Target) LegacyPath() string {
	return filepath.Join(t.DestinationDir, t.LegacyArtifactName)
}

// Outcome is the result of a single install attempt.
type Outcome struct {
	// Succeeded is true only when every pipeline step completed.
	Succeeded bool
	// Err is the error of the failed step, nil on success.
	Err error
}

// Success returns a successful outcome.
func Success() Outcome {
	return Outcome{Succeeded: true}
}

// Failed returns a failed outcome carrying err.
func Failed(err error) Outcome {
	return Outcome{Err: err}
}

// Snapshot is an ordered, read-only view of the release feed.
// Refreshing the catalog produces a new Snapshot instead of patching an old one.
type Snapshot struct {
	descriptors []Descriptor
}

// NewSnapshot copies descriptors into a new snapshot, preserving their order.
func NewSnapshot(descriptors []Descriptor) *Snapshot {
	return &Snapshot{
		descriptors: append([]Descriptor(nil), descriptors...),
	}
}

// Len returns the number of releases; a nil snapshot is empty.
func (s *Snapshot) Len() int {
	if s == nil {
		return 0
	}

	return len(s.descriptors)
}

// At returns the release at index i.
func (s *Snapshot) At(i int) (Descriptor, bool) {
	if i < 0 || i >= s.Len() {
		return Descriptor{}, false
	}

	return s.descriptors[i], true
}

// Descriptors returns a copy of the releases in feed order.
func (s *Snapshot) Descriptors() []Descriptor {
	if s == nil {
		return nil
	}

	return append([]Descriptor(nil), s.descriptors...)
}
