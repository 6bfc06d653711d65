//go:build !windows

package installed

import "context"

// RegistryStore is only available on Windows.
type RegistryStore struct {
	path string
}

// NewRegistryStore creates a store that reports ErrUnsupported.
func NewRegistryStore(path string) *RegistryStore {
	return &RegistryStore{
		path: path,
	}
}

// Read always fails with ErrUnsupported.
func (s *RegistryStore) Read(context.Context, string) (string, error) {
	return "", ErrUnsupported
}

// Write always fails with ErrUnsupported.
func (s *RegistryStore) Write(context.Context, string, string) error {
	return ErrUnsupported
}
