package archive

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	goupdate "github.com/doitdistributed/go-update"

	"github.com/oshokin/release-installer/internal/domain/release"
	"github.com/oshokin/release-installer/internal/logger"
)

const (
	// DefaultDirMode is used for directories created during extraction.
	DefaultDirMode os.FileMode = 0o755
	// DefaultFileMode is used for entries that carry no permission bits.
	DefaultFileMode os.FileMode = 0o644
	// DefaultExecutableMode is used for the legacy executable when the entry has no permission bits.
	DefaultExecutableMode os.FileMode = 0o755

	// stagingPattern names the temporary directory used by staged extraction.
	stagingPattern = ".release-installer-staging-"
)

var (
	errUnsafePath = errors.New("entry escapes the destination directory")
	errEmptyName  = errors.New("entry has an empty name")
)

// Options tunes extraction.
type Options struct {
	// ExecutableName is the entry, relative to the destination, applied with go-update.
	ExecutableName string
	// Staged extracts everything into a staging directory first and moves the
	// entries into place only after the whole archive was read.
	Staged bool
}

// Extract unpacks the ZIP archive held in data into dest and returns the
// slash-separated names of the extracted files in archive order.
//
// A malformed archive, an unreadable entry or an entry escaping dest wraps
// release.ErrArchive; failures to write wrap release.ErrFileSystem. Without
// staging, a failure leaves whatever was already written in place.
func Extract(ctx context.Context, data []byte, dest string, opts Options) ([]string, error) {
	reader, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open package: %w: %w", release.ErrArchive, err)
	}

	if err = os.MkdirAll(dest, DefaultDirMode); err != nil {
		return nil, fmt.Errorf("create %s: %w: %w", dest, release.ErrFileSystem, err)
	}

	if !opts.Staged {
		return extractInto(ctx, reader, dest, opts.ExecutableName)
	}

	return extractStaged(ctx, reader, dest)
}

// extractInto writes every entry of reader directly below dest.
func extractInto(ctx context.Context, reader *zip.Reader, dest, executableName string) ([]string, error) {
	executableName = filepath.Clean(executableName)
	extracted := make([]string, 0, len(reader.File))

	for _, file := range reader.File {
		if err := ctx.Err(); err != nil {
			return extracted, err
		}

		rel, err := entryPath(file.Name)
		if err != nil {
			return extracted, err
		}

		target := filepath.Join(dest, rel)

		switch {
		case file.FileInfo().IsDir():
			if err = os.MkdirAll(target, DefaultDirMode); err != nil {
				return extracted, fmt.Errorf("create %s: %w: %w", target, release.ErrFileSystem, err)
			}

			continue
		case file.Mode()&fs.ModeSymlink != 0:
			logger.WarnKV(ctx, "Skipping symbolic link entry", "entry", file.Name)
			continue
		}

		contents, err := readEntry(file)
		if err != nil {
			return extracted, err
		}

		if err = os.MkdirAll(filepath.Dir(target), DefaultDirMode); err != nil {
			return extracted, fmt.Errorf("create %s: %w: %w", filepath.Dir(target), release.ErrFileSystem, err)
		}

		if executableName != "." && rel == executableName {
			err = applyExecutable(target, contents, entryMode(file, DefaultExecutableMode))
		} else {
			err = writeFile(target, contents, entryMode(file, DefaultFileMode))
		}

		if err != nil {
			return extracted, err
		}

		logger.DebugKV(ctx, "Extracted entry", "entry", file.Name, "bytes", len(contents))

		extracted = append(extracted, filepath.ToSlash(rel))
	}

	return extracted, nil
}

// extractStaged reads the whole archive into a staging directory inside dest
// and then moves every file into place. The staging directory is always removed.
func extractStaged(ctx context.Context, reader *zip.Reader, dest string) ([]string, error) {
	staging, err := os.MkdirTemp(dest, stagingPattern)
	if err != nil {
		return nil, fmt.Errorf("create staging directory: %w: %w", release.ErrFileSystem, err)
	}

	defer func() {
		if removeErr := os.RemoveAll(staging); removeErr != nil {
			logger.WarnKV(ctx, "Unable to remove staging directory", "path", staging, "error", removeErr)
		}
	}()

	extracted, err := extractInto(ctx, reader, staging, "")
	if err != nil {
		return nil, err
	}

	moved := make(map[string]struct{}, len(extracted))

	for _, name := range extracted {
		if err = ctx.Err(); err != nil {
			return nil, err
		}

		// A name repeated in the archive was staged once, with its last content.
		if _, ok := moved[name]; ok {
			continue
		}

		moved[name] = struct{}{}

		rel := filepath.FromSlash(name)
		target := filepath.Join(dest, rel)

		if err = os.MkdirAll(filepath.Dir(target), DefaultDirMode); err != nil {
			return nil, fmt.Errorf("create %s: %w: %w", filepath.Dir(target), release.ErrFileSystem, err)
		}

		if err = os.Rename(filepath.Join(staging, rel), target); err != nil {
			return nil, fmt.Errorf("move %s into place: %w: %w", name, release.ErrFileSystem, err)
		}
	}

	// Directory entries without files still have to exist at the destination.
	for _, file := range reader.File {
		if !file.FileInfo().IsDir() {
			continue
		}

		rel, _ := entryPath(file.Name)
		if err = os.MkdirAll(filepath.Join(dest, rel), DefaultDirMode); err != nil {
			return nil, fmt.Errorf("create %s: %w: %w", rel, release.ErrFileSystem, err)
		}
	}

	return extracted, nil
}

// entryPath converts a ZIP entry name into a path relative to the destination.
func entryPath(name string) (string, error) {
	trimmed := strings.TrimSuffix(name, "/")
	if trimmed == "" {
		return "", fmt.Errorf("%w: %w", release.ErrArchive, errEmptyName)
	}

	rel := filepath.FromSlash(trimmed)
	if !filepath.IsLocal(rel) {
		return "", fmt.Errorf("%s: %w: %w", name, release.ErrArchive, errUnsafePath)
	}

	return filepath.Clean(rel), nil
}

// readEntry decompresses a single entry; checksum and format failures are archive errors.
func readEntry(file *zip.File) ([]byte, error) {
	rc, err := file.Open()
	if err != nil {
		return nil, fmt.Errorf("open entry %s: %w: %w", file.Name, release.ErrArchive, err)
	}

	defer func() {
		_ = rc.Close()
	}()

	contents, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("read entry %s: %w: %w", file.Name, release.ErrArchive, err)
	}

	return contents, nil
}

// writeFile creates or truncates target with contents.
func writeFile(target string, contents []byte, mode os.FileMode) error {
	if err := os.WriteFile(target, contents, mode); err != nil {
		return fmt.Errorf("write %s: %w: %w", target, release.ErrFileSystem, err)
	}

	return nil
}

// applyExecutable replaces the executable at target using go-update, which
// writes the new binary beside the old one and swaps them with a rename.
func applyExecutable(target string, contents []byte, mode os.FileMode) error {
	// go-update renames the current target away first, so it has to exist.
	if _, err := os.Stat(target); errors.Is(err, os.ErrNotExist) {
		placeholder, createErr := os.Create(target)
		if createErr != nil {
			return fmt.Errorf("create %s: %w: %w", target, release.ErrFileSystem, createErr)
		}

		_ = placeholder.Close()
	}

	options := goupdate.Options{
		TargetPath: target,
		TargetMode: mode,
	}

	if err := goupdate.Apply(bytes.NewReader(contents), options); err != nil {
		return fmt.Errorf("apply %s: %w: %w", target, release.ErrFileSystem, err)
	}

	return nil
}

// entryMode returns the permission bits of the entry or fallback when it has none.
func entryMode(file *zip.File, fallback os.FileMode) os.FileMode {
	if perm := file.Mode().Perm(); perm != 0 {
		return perm
	}

	return fallback
}
