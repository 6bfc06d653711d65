package catalog

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/oshokin/release-installer/internal/domain/release"
	"github.com/oshokin/release-installer/internal/logger"
	"github.com/oshokin/release-installer/internal/transport/fetcher"
)

// feedColumns is the minimal number of fields in a release row.
const feedColumns = 3

var errShortRow = errors.New("row has fewer than 3 fields")

// Options configures the catalog.
type Options struct {
	// FeedURL is the CSV document listing releases.
	FeedURL string
	// HasHeaderRow skips the first row of the feed.
	HasHeaderRow bool
}

// Catalog reads the release feed. Every Fetch performs a fresh round trip.
type Catalog struct {
	fetcher fetcher.Fetcher
	opts    Options
}

// New creates a catalog reading opts.FeedURL through f.
func New(f fetcher.Fetcher, opts Options) *Catalog {
	return &Catalog{
		fetcher: f,
		opts:    opts,
	}
}

// Fetch downloads and parses the feed. It returns release.ErrNetwork when the
// feed cannot be retrieved and release.ErrParse when a row is malformed; in
// both cases no descriptors are returned.
func (c *Catalog) Fetch(ctx context.Context) ([]release.Descriptor, error) {
	ctx = logger.WithName(ctx, "catalog")

	logger.InfoKV(ctx, "Fetching release feed", "url", c.opts.FeedURL)

	data, err := c.fetcher.Fetch(ctx, c.opts.FeedURL)
	if err != nil {
		logger.ErrorKV(ctx, "Release feed is unavailable", "error", err)
		return nil, fmt.Errorf("fetch release feed: %w", err)
	}

	descriptors, err := Parse(bytes.NewReader(data), c.opts.HasHeaderRow)
	if err != nil {
		logger.ErrorKV(ctx, "Release feed is malformed", "error", err)
		return nil, err
	}

	logger.InfoKV(ctx, "Release feed loaded", "releases", len(descriptors))

	return descriptors, nil
}

// Parse reads CSV rows from r and maps each one positionally to a descriptor.
// Columns after the third are ignored; blank lines are skipped.
func Parse(r io.Reader, hasHeaderRow bool) ([]release.Descriptor, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	var (
		descriptors []release.Descriptor
		row         int
	)

	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}

		row++

		if err != nil {
			return nil, fmt.Errorf("row %d: %w: %w", row, release.ErrParse, err)
		}

		if row == 1 && hasHeaderRow {
			continue
		}

		if len(record) < feedColumns {
			return nil, fmt.Errorf("row %d has %d fields: %w: %w", row, len(record), release.ErrParse, errShortRow)
		}

		descriptors = append(descriptors, release.Descriptor{
			Version:     strings.TrimSpace(record[0]),
			ReleaseDate: strings.TrimSpace(record[1]),
			PackageURL:  strings.TrimSpace(record[2]),
		})
	}

	return descriptors, nil
}
