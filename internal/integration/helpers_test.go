package integration

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/release-installer/internal/archive"
	"github.com/oshokin/release-installer/internal/domain/release"
	"github.com/oshokin/release-installer/internal/repository/installed"
	"github.com/oshokin/release-installer/internal/service/catalog"
	"github.com/oshokin/release-installer/internal/service/controller"
	"github.com/oshokin/release-installer/internal/service/executor"
	"github.com/oshokin/release-installer/internal/service/installer"
	"github.com/oshokin/release-installer/internal/service/privilege"
	"github.com/oshokin/release-installer/internal/transport/fetcher"
)

const (
	legacyName = "WindowsRunTool.exe"
	versionKey = "Version"
)

// releaseServer serves a CSV feed and ZIP packages and counts requests per path.
type releaseServer struct {
	*httptest.Server

	mu       sync.Mutex
	hits     map[string]int
	feed     string
	packages map[string][]byte
}

func newReleaseServer(t *testing.T) *releaseServer {
	t.Helper()

	rs := &releaseServer{
		hits:     make(map[string]int),
		packages: make(map[string][]byte),
	}

	rs.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rs.mu.Lock()
		rs.hits[r.URL.Path]++
		feed := rs.feed
		body, ok := rs.packages[r.URL.Path]
		rs.mu.Unlock()

		switch {
		case r.URL.Path == "/feed.csv":
			_, _ = w.Write([]byte(feed))
		case ok:
			_, _ = w.Write(body)
		default:
			http.NotFound(w, r)
		}
	}))

	t.Cleanup(rs.Close)

	return rs
}

// publish adds a package and its feed row.
func (rs *releaseServer) publish(t *testing.T, version, date string, entries []archive.Entry) {
	t.Helper()

	var buf bytes.Buffer
	require.NoError(t, archive.Create(&buf, entries))

	rs.mu.Lock()
	defer rs.mu.Unlock()

	path := "/" + version + ".zip"
	rs.packages[path] = buf.Bytes()
	rs.feed += strings.Join([]string{version, date, rs.URL + path}, ",") + "\n"
}

func (rs *releaseServer) hitCount(path string) int {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	return rs.hits[path]
}

// stack is the set of services the commands wire together.
type stack struct {
	loop       *executor.Loop
	executor   *executor.Executor
	controller *controller.Controller
	store      installed.Store
	target     release.Target
}

func newStack(t *testing.T, feedURL string, recordOnSuccess bool) *stack {
	t.Helper()

	dir := t.TempDir()
	target := release.Target{
		DestinationDir:     filepath.Join(dir, "app"),
		LegacyArtifactName: legacyName,
	}

	httpFetcher := fetcher.New(fetcher.WithCallTimeout(5 * time.Second))
	loop := executor.NewLoop()
	exec := executor.New(installer.New(httpFetcher, installer.Options{}), loop)
	store := installed.NewFileStore(filepath.Join(dir, "installed.json"))

	ctrl := controller.New(
		catalog.New(httpFetcher, catalog.Options{FeedURL: feedURL}),
		exec,
		privilege.Noop{},
		store,
		controller.Options{
			Target:          target,
			VersionKey:      versionKey,
			RecordOnSuccess: recordOnSuccess,
		},
	)

	ctrl.ReloadInstalled(context.Background())

	return &stack{
		loop:       loop,
		executor:   exec,
		controller: ctrl,
		store:      store,
		target:     target,
	}
}

// installSelected installs the selected release and runs the loop until the callback fired.
func (s *stack) installSelected(t *testing.T) (release.Outcome, int) {
	t.Helper()

	var (
		outcome release.Outcome
		calls   int
	)

	_, err := s.controller.Install(context.Background(), func(result release.Outcome) {
		outcome = result
		calls++

		s.loop.Stop()
	})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	require.NoError(t, s.loop.Run(ctx))
	s.executor.Wait()

	return outcome, calls
}
