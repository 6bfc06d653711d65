package installed

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/release-installer/internal/config"
)

// TestStores_NotFoundThenRoundtrip runs the same contract against the file and SQLite backends.
func TestStores_NotFoundThenRoundtrip(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	stores := map[string]Store{
		"file":   NewFileStore(filepath.Join(dir, "installed.json")),
		"sqlite": NewSQLiteStore(filepath.Join(dir, "installed.db")),
	}

	for name, store := range stores {
		ctx := context.Background()

		_, err := store.Read(ctx, "Version")
		require.ErrorIs(t, err, ErrNotFound, name)

		require.NoError(t, store.Write(ctx, "Version", "1.0"), name)
		require.NoError(t, store.Write(ctx, "Channel", "stable"), name)
		require.NoError(t, store.Write(ctx, "Version", "1.1"), name)

		got, err := store.Read(ctx, "Version")
		require.NoError(t, err, name)
		require.Equal(t, "1.1", got, name)

		got, err = store.Read(ctx, "Channel")
		require.NoError(t, err, name)
		require.Equal(t, "stable", got, name)
	}
}

// TestFileStore_ReadsHandWrittenDocument ensures a plain JSON object is accepted.
func TestFileStore_ReadsHandWrittenDocument(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "installed.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"Version": "2.3.1", "Build": 42}`), 0o600))

	store := NewFileStore(path)

	got, err := store.Read(context.Background(), "Version")
	require.NoError(t, err)
	require.Equal(t, "2.3.1", got)

	_, err = store.Read(context.Background(), "Build")
	require.ErrorIs(t, err, errNotString)

	_, err = store.Read(context.Background(), "Missing")
	require.ErrorIs(t, err, ErrNotFound)
}

// TestFileStore_CorruptDocument reports a decode error.
func TestFileStore_CorruptDocument(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "installed.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	_, err := NewFileStore(path).Read(context.Background(), "Version")
	require.Error(t, err)
	require.NotErrorIs(t, err, ErrNotFound)
}

// TestOpen_SelectsBackend checks the factory honors the configured backend.
func TestOpen_SelectsBackend(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	store, err := Open(config.InstalledVersionConfig{Backend: config.BackendFile, Path: filepath.Join(dir, "v.json")})
	require.NoError(t, err)
	require.IsType(t, &FileStore{}, store)

	store, err = Open(config.InstalledVersionConfig{Backend: config.BackendSQLite, Path: filepath.Join(dir, "v.db")})
	require.NoError(t, err)
	require.IsType(t, &SQLiteStore{}, store)

	store, err = Open(config.InstalledVersionConfig{Backend: config.BackendRegistry, Path: `Software\WRT`})
	require.NoError(t, err)
	require.IsType(t, &RegistryStore{}, store)

	_, err = Open(config.InstalledVersionConfig{Backend: "etcd"})
	require.ErrorIs(t, err, errUnknownBackend)
}

// TestRegistryStore_UnsupportedOffWindows asserts the registry backend refuses to work elsewhere.
func TestRegistryStore_UnsupportedOffWindows(t *testing.T) {
	t.Parallel()

	if runtime.GOOS == "windows" {
		t.Skip("registry is available on windows")
	}

	_, err := NewRegistryStore(`Software\WRT`).Read(context.Background(), "Version")
	require.ErrorIs(t, err, ErrUnsupported)
}
