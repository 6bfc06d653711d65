package release

import (
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestSnapshot_PreservesOrderAndIsolation verifies feed order is kept and the snapshot owns its data.
func TestSnapshot_PreservesOrderAndIsolation(t *testing.T) {
	t.Parallel()

	source := []Descriptor{
		{Version: "1.0", ReleaseDate: "2024-01-01", PackageURL: "http://x/1.0.zip"},
		{Version: "1.1", ReleaseDate: "2024-02-01", PackageURL: "http://x/1.1.zip"},
	}

	s := NewSnapshot(source)
	source[0].Version = "mutated"

	require.Equal(t, 2, s.Len())

	first, ok := s.At(0)
	require.True(t, ok)
	require.Equal(t, "1.0", first.Version)

	copied := s.Descriptors()
	copied[1].Version = "mutated"

	second, ok := s.At(1)
	require.True(t, ok)
	require.Equal(t, "1.1", second.Version)

	_, ok = s.At(2)
	require.False(t, ok)

	_, ok = s.At(-1)
	require.False(t, ok)
}

// TestSnapshot_NilIsEmpty ensures a nil snapshot behaves like an empty catalog.
func TestSnapshot_NilIsEmpty(t *testing.T) {
	t.Parallel()

	var s *Snapshot

	require.Zero(t, s.Len())
	require.Nil(t, s.Descriptors())

	_, ok := s.At(0)
	require.False(t, ok)
}

// TestTarget_LegacyPath checks the legacy artifact path is joined onto the destination.
func TestTarget_LegacyPath(t *testing.T) {
	t.Parallel()

	target := Target{DestinationDir: filepath.Join("opt", "wrt"), LegacyArtifactName: "WindowsRunTool.exe"}
	require.Equal(t, filepath.Join("opt", "wrt", "WindowsRunTool.exe"), target.LegacyPath())
}

// TestClassify maps wrapped errors to their kind names.
func TestClassify(t *testing.T) {
	t.Parallel()

	cases := map[string]error{
		"none":       nil,
		"network":    fmt.Errorf("download: %w", ErrNetwork),
		"parse":      fmt.Errorf("row 2: %w", ErrParse),
		"filesystem": fmt.Errorf("remove: %w", ErrFileSystem),
		"archive":    fmt.Errorf("open zip: %w", ErrArchive),
		"unknown":    errors.New("boom"),
	}

	for want, err := range cases {
		require.Equal(t, want, Classify(err))
	}
}

// TestOutcomeConstructors verifies Success and Failed populate the outcome consistently.
func TestOutcomeConstructors(t *testing.T) {
	t.Parallel()

	require.Equal(t, Outcome{Succeeded: true}, Success())

	failed := Failed(ErrArchive)
	require.False(t, failed.Succeeded)
	require.ErrorIs(t, failed.Err, ErrArchive)
}
