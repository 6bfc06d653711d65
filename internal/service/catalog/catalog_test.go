package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/release-installer/internal/domain/release"
)

var errOffline = errors.New("offline")

// stubFetcher serves a fixed body for every URL and records the requests.
type stubFetcher struct {
	// body is returned by Fetch.
	body string
	// err is returned by Fetch instead of the body when set.
	err error
	// calls lists the requested URLs.
	calls []string
}

// Fetch returns the configured body or error.
func (s *stubFetcher) Fetch(_ context.Context, url string) ([]byte, error) {
	s.calls = append(s.calls, url)

	if s.err != nil {
		return nil, s.err
	}

	return []byte(s.body), nil
}

// TestFetch_ReturnsRowsInOrder checks that N well-formed rows yield N descriptors in feed order.
func TestFetch_ReturnsRowsInOrder(t *testing.T) {
	t.Parallel()

	for _, n := range []int{0, 1, 5, 40} {
		var builder strings.Builder
		for i := range n {
			fmt.Fprintf(&builder, "%d.0,2024-01-%02d,http://x/%d.0.zip\n", i, i%28+1, i)
		}

		f := &stubFetcher{body: builder.String()}

		descriptors, err := New(f, Options{FeedURL: "http://feed/csv"}).Fetch(context.Background())
		require.NoError(t, err)
		require.Len(t, descriptors, n)

		for i, d := range descriptors {
			require.Equal(t, fmt.Sprintf("%d.0", i), d.Version)
			require.Equal(t, fmt.Sprintf("http://x/%d.0.zip", i), d.PackageURL)
		}

		require.Equal(t, []string{"http://feed/csv"}, f.calls)
	}
}

// TestFetch_NoCaching verifies every call performs a new round trip.
func TestFetch_NoCaching(t *testing.T) {
	t.Parallel()

	f := &stubFetcher{body: "1.0,2024-01-01,http://x/1.0.zip\n"}
	c := New(f, Options{FeedURL: "http://feed/csv"})

	_, err := c.Fetch(context.Background())
	require.NoError(t, err)

	_, err = c.Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, f.calls, 2)
}

// TestFetch_NetworkError asserts fetch failures surface as network errors.
func TestFetch_NetworkError(t *testing.T) {
	t.Parallel()

	f := &stubFetcher{err: fmt.Errorf("%w: %w", release.ErrNetwork, errOffline)}

	descriptors, err := New(f, Options{FeedURL: "http://feed/csv"}).Fetch(context.Background())
	require.ErrorIs(t, err, release.ErrNetwork)
	require.Nil(t, descriptors)
}

// TestParse_ShortRow ensures a two-field row is a parse error and nothing partial is returned.
func TestParse_ShortRow(t *testing.T) {
	t.Parallel()

	feed := "1.0,2024-01-01,http://x/1.0.zip\n1.1,2024-02-01\n1.2,2024-03-01,http://x/1.2.zip\n"

	descriptors, err := Parse(strings.NewReader(feed), false)
	require.ErrorIs(t, err, release.ErrParse)
	require.Contains(t, err.Error(), "row 2")
	require.Nil(t, descriptors)
}

// TestParse_QuotingAndExtraColumns covers standard CSV quoting and ignored trailing columns.
func TestParse_QuotingAndExtraColumns(t *testing.T) {
	t.Parallel()

	feed := `"1.0","1 January, 2024","http://x/1.0.zip","notes"` + "\n" +
		`"1.1", "2024-02-01", " http://x/1.1.zip"` + "\n"

	descriptors, err := Parse(strings.NewReader(feed), false)
	require.NoError(t, err)
	require.Equal(t, []release.Descriptor{
		{Version: "1.0", ReleaseDate: "1 January, 2024", PackageURL: "http://x/1.0.zip"},
		{Version: "1.1", ReleaseDate: "2024-02-01", PackageURL: "http://x/1.1.zip"},
	}, descriptors)
}

// TestParse_MalformedQuoting reports broken CSV as a parse error.
func TestParse_MalformedQuoting(t *testing.T) {
	t.Parallel()

	_, err := Parse(strings.NewReader("\"1.0,2024-01-01,http://x/1.0.zip\n1.1\"x,a,b\n"), false)
	require.ErrorIs(t, err, release.ErrParse)
}

// TestParse_HeaderRow verifies the header flag decides whether the first row is a release.
func TestParse_HeaderRow(t *testing.T) {
	t.Parallel()

	feed := "version,date,link\n1.0,2024-01-01,http://x/1.0.zip\n"

	withHeader, err := Parse(strings.NewReader(feed), true)
	require.NoError(t, err)
	require.Len(t, withHeader, 1)
	require.Equal(t, "1.0", withHeader[0].Version)

	withoutHeader, err := Parse(strings.NewReader(feed), false)
	require.NoError(t, err)
	require.Len(t, withoutHeader, 2)
	require.Equal(t, "version", withoutHeader[0].Version)
}

// TestParse_ShortHeaderIsSkipped verifies a skipped header is not validated as a release.
func TestParse_ShortHeaderIsSkipped(t *testing.T) {
	t.Parallel()

	descriptors, err := Parse(strings.NewReader("releases\n1.0,2024-01-01,http://x/1.0.zip\n"), true)
	require.NoError(t, err)
	require.Len(t, descriptors, 1)
}
