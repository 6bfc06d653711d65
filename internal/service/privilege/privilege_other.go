//go:build !windows

package privilege

import (
	"context"
	"os"
)

// relaunch is not available: sudo has to be used by the caller.
var relaunch func(ctx context.Context) error //nolint:gochecknoglobals // Platform hook.

func isElevated() (bool, error) {
	return os.Geteuid() == 0, nil
}
