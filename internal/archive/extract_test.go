package archive

import (
	"archive/zip"
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/release-installer/internal/domain/release"
)

// buildPackage builds an in-memory package from name/body pairs.
func buildPackage(t *testing.T, entries ...Entry) []byte {
	t.Helper()

	var buf bytes.Buffer

	require.NoError(t, Create(&buf, entries))

	return buf.Bytes()
}

// buildStoredPackage writes uncompressed entries, so tests can corrupt a payload in place.
func buildStoredPackage(t *testing.T, files [][2]string) []byte {
	t.Helper()

	var buf bytes.Buffer

	writer := zip.NewWriter(&buf)

	for _, file := range files {
		out, err := writer.CreateHeader(&zip.FileHeader{Name: file[0], Method: zip.Store})
		require.NoError(t, err)

		_, err = out.Write([]byte(file[1]))
		require.NoError(t, err)
	}

	require.NoError(t, writer.Close())

	return buf.Bytes()
}

// listFiles returns slash-separated paths of regular files below root.
func listFiles(t *testing.T, root string) []string {
	t.Helper()

	var files []string

	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.IsDir() {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}

		files = append(files, filepath.ToSlash(rel))

		return nil
	})
	require.NoError(t, err)

	return files
}

// TestExtract_WritesAllEntries verifies files and nested directories land with identical contents.
func TestExtract_WritesAllEntries(t *testing.T) {
	t.Parallel()

	for _, staged := range []bool{false, true} {
		dest := t.TempDir()
		data := buildPackage(t,
			Entry{Name: "a.txt", Body: []byte("alpha")},
			Entry{Name: "sub/b.txt", Body: []byte("bravo")},
		)

		extracted, err := Extract(context.Background(), data, dest, Options{Staged: staged})
		require.NoError(t, err)
		require.Equal(t, []string{"a.txt", "sub/b.txt"}, extracted)

		got, err := os.ReadFile(filepath.Join(dest, "a.txt"))
		require.NoError(t, err)
		require.Equal(t, "alpha", string(got))

		got, err = os.ReadFile(filepath.Join(dest, "sub", "b.txt"))
		require.NoError(t, err)
		require.Equal(t, "bravo", string(got))

		require.ElementsMatch(t, []string{"a.txt", "sub/b.txt"}, listFiles(t, dest))
	}
}

// TestExtract_OverwritesExistingFiles ensures files already at the destination are replaced.
func TestExtract_OverwritesExistingFiles(t *testing.T) {
	t.Parallel()

	dest := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dest, "a.txt"), []byte("old content that is longer"), 0o600))

	_, err := Extract(context.Background(), buildPackage(t, Entry{Name: "a.txt", Body: []byte("new")}), dest, Options{})
	require.NoError(t, err)

	got, err := os.ReadFile(filepath.Join(dest, "a.txt"))
	require.NoError(t, err)
	require.Equal(t, "new", string(got))
}

// TestExtract_DirectoryEntries creates directories listed explicitly in the archive.
func TestExtract_DirectoryEntries(t *testing.T) {
	t.Parallel()

	for _, staged := range []bool{false, true} {
		dest := t.TempDir()

		var buf bytes.Buffer

		writer := zip.NewWriter(&buf)
		_, err := writer.Create("logs/")
		require.NoError(t, err)
		require.NoError(t, writer.Close())

		_, err = Extract(context.Background(), buf.Bytes(), dest, Options{Staged: staged})
		require.NoError(t, err)

		info, err := os.Stat(filepath.Join(dest, "logs"))
		require.NoError(t, err)
		require.True(t, info.IsDir())
	}
}

// TestExtract_CorruptArchive asserts garbage bytes are an archive error and nothing is written.
func TestExtract_CorruptArchive(t *testing.T) {
	t.Parallel()

	dest := t.TempDir()

	_, err := Extract(context.Background(), []byte("definitely not a zip"), dest, Options{})
	require.ErrorIs(t, err, release.ErrArchive)
	require.Empty(t, listFiles(t, dest))
}

// TestExtract_CorruptEntryLeavesPartialState shows that direct extraction keeps entries written before the failure.
func TestExtract_CorruptEntryLeavesPartialState(t *testing.T) {
	t.Parallel()

	data := buildStoredPackage(t, [][2]string{
		{"a.txt", "first-entry-payload"},
		{"b.txt", "second-entry-payload"},
	})

	offset := bytes.Index(data, []byte("second-entry-payload"))
	require.Positive(t, offset)

	data[offset] ^= 0xFF

	dest := t.TempDir()

	extracted, err := Extract(context.Background(), data, dest, Options{})
	require.ErrorIs(t, err, release.ErrArchive)
	require.Equal(t, []string{"a.txt"}, extracted)
	require.Equal(t, []string{"a.txt"}, listFiles(t, dest))
}

// TestExtract_StagedCorruptEntryWritesNothing shows that staged extraction does not touch the destination on failure.
func TestExtract_StagedCorruptEntryWritesNothing(t *testing.T) {
	t.Parallel()

	data := buildStoredPackage(t, [][2]string{
		{"a.txt", "first-entry-payload"},
		{"b.txt", "second-entry-payload"},
	})

	offset := bytes.Index(data, []byte("second-entry-payload"))
	require.Positive(t, offset)

	data[offset] ^= 0xFF

	dest := t.TempDir()

	_, err := Extract(context.Background(), data, dest, Options{Staged: true})
	require.ErrorIs(t, err, release.ErrArchive)

	entries, err := os.ReadDir(dest)
	require.NoError(t, err)
	require.Empty(t, entries)
}

// TestExtract_RejectsPathTraversal asserts entries escaping the destination are refused.
func TestExtract_RejectsPathTraversal(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	dest := filepath.Join(root, "dest")

	data := buildStoredPackage(t, [][2]string{{"../evil.txt", "pwned"}})

	_, err := Extract(context.Background(), data, dest, Options{})
	require.ErrorIs(t, err, release.ErrArchive)

	_, err = os.Stat(filepath.Join(root, "evil.txt"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

// TestExtract_AppliesExecutable checks that the legacy executable entry is installed through go-update.
func TestExtract_AppliesExecutable(t *testing.T) {
	t.Parallel()

	dest := t.TempDir()
	data := buildPackage(t,
		Entry{Name: "tool.exe", Body: []byte("new-binary"), Mode: 0o755},
		Entry{Name: "readme.txt", Body: []byte("docs")},
	)

	_, err := Extract(context.Background(), data, dest, Options{ExecutableName: "tool.exe"})
	require.NoError(t, err)

	got, err := os.ReadFile(filepath.Join(dest, "tool.exe"))
	require.NoError(t, err)
	require.Equal(t, "new-binary", string(got))

	for _, name := range listFiles(t, dest) {
		require.False(t, strings.HasSuffix(name, ".new"), "leftover %s", name)
	}
}

// TestExtract_CanceledContext stops before writing when the context is already canceled.
func TestExtract_CanceledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	dest := t.TempDir()

	_, err := Extract(ctx, buildPackage(t, Entry{Name: "a.txt", Body: []byte("alpha")}), dest, Options{})
	require.ErrorIs(t, err, context.Canceled)
	require.Empty(t, listFiles(t, dest))
}
