//go:build windows

package installed

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sys/windows/registry"
)

// RegistryStore keeps records as string values of a key under HKEY_CURRENT_USER.
type RegistryStore struct {
	// path is the key below HKEY_CURRENT_USER, e.g. Software\WRT.
	path string
}

// NewRegistryStore creates a store for the given key path.
func NewRegistryStore(path string) *RegistryStore {
	return &RegistryStore{
		path: path,
	}
}

// Read returns the string value named key.
func (s *RegistryStore) Read(_ context.Context, key string) (string, error) {
	k, err := registry.OpenKey(registry.CURRENT_USER, s.path, registry.QUERY_VALUE)
	if err != nil {
		if errors.Is(err, registry.ErrNotExist) {
			return "", ErrNotFound
		}

		return "", fmt.Errorf("open registry key %s: %w", s.path, err)
	}

	defer func() {
		_ = k.Close()
	}()

	value, _, err := k.GetStringValue(key)
	if err != nil {
		if errors.Is(err, registry.ErrNotExist) {
			return "", ErrNotFound
		}

		return "", fmt.Errorf("read registry value %s: %w", key, err)
	}

	return value, nil
}

// Write sets the string value named key, creating the key when needed.
func (s *RegistryStore) Write(_ context.Context, key, value string) error {
	k, _, err := registry.CreateKey(registry.CURRENT_USER, s.path, registry.SET_VALUE)
	if err != nil {
		return fmt.Errorf("create registry key %s: %w", s.path, err)
	}

	defer func() {
		_ = k.Close()
	}()

	if err = k.SetStringValue(key, value); err != nil {
		return fmt.Errorf("write registry value %s: %w", key, err)
	}

	return nil
}
