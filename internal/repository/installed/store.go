package installed

import (
	"context"
	"errors"
	"fmt"

	"github.com/oshokin/release-installer/internal/config"
)

var (
	// ErrNotFound is returned when the record does not exist yet.
	ErrNotFound = errors.New("installed version not found")
	// ErrUnsupported is returned by backends unavailable on the current platform.
	ErrUnsupported = errors.New("backend is not supported on this platform")

	errUnknownBackend = errors.New("unknown installed version backend")
)

// Reader reads the installed version record.
type Reader interface {
	Read(ctx context.Context, key string) (string, error)
}

// Store reads and writes the installed version record.
type Store interface {
	Reader
	Write(ctx context.Context, key, value string) error
}

// Open returns the store selected by settings.
//
//nolint:ireturn // The backend is chosen at runtime.
func Open(settings config.InstalledVersionConfig) (Store, error) {
	switch settings.Backend {
	case config.BackendFile:
		return NewFileStore(settings.Path), nil
	case config.BackendSQLite:
		return NewSQLiteStore(settings.Path), nil
	case config.BackendRegistry:
		return NewRegistryStore(settings.Path), nil
	default:
		return nil, fmt.Errorf("%q: %w", settings.Backend, errUnknownBackend)
	}
}
