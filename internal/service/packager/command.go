package packager

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	goversion "github.com/hashicorp/go-version"

	"github.com/oshokin/release-installer/internal/archive"
	"github.com/oshokin/release-installer/internal/logger"
)

// ReleaseDateLayout is the date format written to the feed.
const ReleaseDateLayout = "2006-01-02"

// Options contains inputs for the packager entry point.
type Options struct {
	// Version is the version label of the release.
	Version string
	// ReleaseDate defaults to today when empty.
	ReleaseDate string
	// BaseURL is the folder the package will be uploaded to; the package name is appended.
	BaseURL string
	// BaseDir is the directory entry names are relative to (defaults to the working directory).
	BaseDir string
	// Files are files or directories to include, relative to BaseDir.
	Files []string
	// Output is the package path (defaults to <version>.zip).
	Output string
	// FeedPath is the CSV feed the new row is appended to.
	FeedPath string
}

var (
	errVersionRequired = errors.New("version is required")
	errNoFiles         = errors.New("at least one file is required")
	errBaseURLRequired = errors.New("base url is required")
	errFeedRequired    = errors.New("feed path is required")
)

// packager builds one release package.
// It is unexported; callers should use Run, which encapsulates setup and validation.
type packager struct {
	opts *Options
	// entries are collected from Files before the archive is written.
	entries []archive.Entry
}

// Run executes the packaging workflow.
func Run(ctx context.Context, opts *Options) error {
	// Set context with logger name for tracking.
	ctx = logger.WithName(ctx, "packager")

	if err := validate(opts); err != nil {
		return err
	}

	pkg := &packager{opts: opts}

	if err := pkg.Run(ctx); err != nil {
		return fmt.Errorf("packager failed: %w", err)
	}

	logger.Info(ctx, "Packager completed successfully")

	return nil
}

// validate fills defaults and checks required options.
func validate(opts *Options) error {
	if opts == nil || strings.TrimSpace(opts.Version) == "" {
		return errVersionRequired
	}

	if len(opts.Files) == 0 {
		return errNoFiles
	}

	if strings.TrimSpace(opts.BaseURL) == "" {
		return errBaseURLRequired
	}

	if strings.TrimSpace(opts.FeedPath) == "" {
		return errFeedRequired
	}

	opts.Version = strings.TrimSpace(opts.Version)

	if opts.ReleaseDate == "" {
		opts.ReleaseDate = time.Now().Format(ReleaseDateLayout)
	}

	if opts.BaseDir == "" {
		opts.BaseDir = "."
	}

	if opts.Output == "" {
		opts.Output = opts.Version + ".zip"
	}

	return nil
}

// Run collects the files, writes the package and updates the feed.
func (p *packager) Run(ctx context.Context) error {
	if _, err := goversion.NewVersion(p.opts.Version); err != nil {
		logger.WarnKV(ctx, "Version is not semantic, installers will not rank it as latest",
			"version", p.opts.Version)
	}

	logger.InfoKV(ctx, "Collecting release files", "base_dir", p.opts.BaseDir)

	if err := p.collect(); err != nil {
		return err
	}

	logger.InfoKV(ctx, "Writing package", "path", p.opts.Output, "entries", len(p.entries))

	if err := p.writePackage(); err != nil {
		return err
	}

	logger.InfoKV(ctx, "Appending feed row", "path", p.opts.FeedPath)

	if err := p.appendFeedRow(); err != nil {
		return err
	}

	p.printNextSteps(ctx)

	return nil
}

// collect reads every requested file, walking directories recursively.
func (p *packager) collect() error {
	for _, name := range p.opts.Files {
		root := filepath.Join(p.opts.BaseDir, name)

		err := filepath.WalkDir(root, func(path string, entry fs.DirEntry, err error) error {
			if err != nil {
				return err
			}

			if entry.IsDir() {
				return nil
			}

			return p.addFile(path)
		})
		if err != nil {
			return fmt.Errorf("collect %s: %w", name, err)
		}
	}

	sort.Slice(p.entries, func(i, j int) bool {
		return p.entries[i].Name < p.entries[j].Name
	})

	return nil
}

func (p *packager) addFile(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}

	relative, err := filepath.Rel(p.opts.BaseDir, path)
	if err != nil {
		return err
	}

	body, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	p.entries = append(p.entries, archive.Entry{
		Name:     filepath.ToSlash(relative),
		Body:     body,
		Mode:     info.Mode().Perm(),
		Modified: info.ModTime(),
	})

	return nil
}

// writePackage creates the ZIP archive at Output.
func (p *packager) writePackage() (err error) {
	if dir := filepath.Dir(p.opts.Output); dir != "." {
		if err = os.MkdirAll(dir, archive.DefaultDirMode); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
	}

	file, err := os.OpenFile(p.opts.Output, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, archive.DefaultFileMode)
	if err != nil {
		return fmt.Errorf("create package: %w", err)
	}

	defer func() {
		if closeErr := file.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("close package: %w", closeErr)
		}
	}()

	if err = archive.Create(file, p.entries); err != nil {
		return fmt.Errorf("write package: %w", err)
	}

	return nil
}

// packageURL is where installers will download the package from.
func (p *packager) packageURL() string {
	return strings.TrimRight(p.opts.BaseURL, "/") + "/" + filepath.Base(p.opts.Output)
}

// appendFeedRow adds "version, date, url" to the feed, creating it when absent.
func (p *packager) appendFeedRow() (err error) {
	file, err := os.OpenFile(p.opts.FeedPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, archive.DefaultFileMode)
	if err != nil {
		return fmt.Errorf("open feed: %w", err)
	}

	defer func() {
		if closeErr := file.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("close feed: %w", closeErr)
		}
	}()

	writer := csv.NewWriter(file)
	if err = writer.Write([]string{p.opts.Version, p.opts.ReleaseDate, p.packageURL()}); err != nil {
		return fmt.Errorf("write feed row: %w", err)
	}

	writer.Flush()

	if err = writer.Error(); err != nil {
		return fmt.Errorf("write feed row: %w", err)
	}

	return nil
}

// printNextSteps logs human-readable guidance for next actions with the created files.
func (p *packager) printNextSteps(ctx context.Context) {
	var builder strings.Builder

	builder.WriteString("Upload the package ")
	builder.WriteString(p.opts.Output)
	builder.WriteString(" so that it is served at:\n")
	builder.WriteString(p.packageURL())
	builder.WriteString("\n\nThen publish the new feed row from ")
	builder.WriteString(p.opts.FeedPath)
	builder.WriteString(":\n")
	builder.WriteString(strings.Join([]string{p.opts.Version, p.opts.ReleaseDate, p.packageURL()}, ","))
	builder.WriteString("\n\nThe package contains:\n")

	for i, entry := range p.entries {
		if i > 0 {
			builder.WriteString(",\n")
		}

		builder.WriteString(entry.Name)
	}

	logger.Info(ctx, builder.String())
}
