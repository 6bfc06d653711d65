package fetcher

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/oshokin/release-installer/internal/domain/release"
	"github.com/oshokin/release-installer/internal/logger"
	"github.com/oshokin/release-installer/internal/version"
)

// Fetcher retrieves the body of a resource.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// HTTP fetches resources with a plain GET request.
type HTTP struct {
	// client performs the requests.
	client *http.Client
	// callTimeout bounds a single request; zero means no timeout.
	callTimeout time.Duration
	// maxBodySize caps the body read into memory; zero means unlimited.
	maxBodySize int64
}

// Option configures the HTTP fetcher.
type Option func(*HTTP)

// WithCallTimeout sets a timeout for every request.
func WithCallTimeout(timeout time.Duration) Option {
	return func(h *HTTP) {
		if timeout > 0 {
			h.callTimeout = timeout
		}
	}
}

// WithClient replaces the default HTTP client.
func WithClient(client *http.Client) Option {
	return func(h *HTTP) {
		if client != nil {
			h.client = client
		}
	}
}

// WithMaxBodySize caps how many bytes are read from a response body.
func WithMaxBodySize(limit int64) Option {
	return func(h *HTTP) {
		if limit > 0 {
			h.maxBodySize = limit
		}
	}
}

// New creates an HTTP fetcher. Without options requests have no timeout.
func New(opts ...Option) *HTTP {
	h := &HTTP{
		client: http.DefaultClient,
	}

	for _, opt := range opts {
		opt(h)
	}

	return h
}

// Fetch performs a GET request and returns the full body.
// Transport failures and non-2xx responses wrap release.ErrNetwork.
func (h *HTTP) Fetch(ctx context.Context, url string) ([]byte, error) {
	callCtx, cancel := h.callContext(ctx)
	defer cancel()

	req, err := http.NewRequestWithContext(callCtx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("build request for %s: %w: %w", url, release.ErrNetwork, err)
	}

	req.Header.Set("User-Agent", "release-installer/"+version.Short())

	logger.DebugKV(ctx, "Sending request", "url", url)

	response, err := h.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("get %s: %w: %w", url, release.ErrNetwork, err)
	}

	defer func() {
		_ = response.Body.Close()
	}()

	if response.StatusCode < http.StatusOK || response.StatusCode >= http.StatusMultipleChoices {
		return nil, fmt.Errorf("%s, %s: %w", url, response.Status, release.ErrNetwork)
	}

	var body io.Reader = response.Body
	if h.maxBodySize > 0 {
		body = io.LimitReader(response.Body, h.maxBodySize+1)
	}

	data, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("read body of %s: %w: %w", url, release.ErrNetwork, err)
	}

	if h.maxBodySize > 0 && int64(len(data)) > h.maxBodySize {
		return nil, fmt.Errorf("body of %s exceeds %d bytes: %w", url, h.maxBodySize, release.ErrNetwork)
	}

	logger.DebugKV(ctx, "Received response", "url", url, "bytes", len(data))

	return data, nil
}

// callContext returns a context with the call timeout if configured,
// otherwise a cancellable child context without a deadline.
func (h *HTTP) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if h.callTimeout <= 0 {
		return context.WithCancel(ctx)
	}

	return context.WithTimeout(ctx, h.callTimeout)
}
