package release

import "errors"

// Error kinds reported by the update pipeline. Steps wrap them with context,
// so callers match them with errors.Is.
var (
	// ErrNetwork covers unreachable hosts, non-2xx responses and transport failures.
	ErrNetwork = errors.New("network error")
	// ErrParse reports a malformed release feed.
	ErrParse = errors.New("parse error")
	// ErrFileSystem reports permission problems, missing path components or locked files.
	ErrFileSystem = errors.New("file system error")
	// ErrArchive reports a corrupt, truncated or unsafe package archive.
	ErrArchive = errors.New("archive error")
)

// Classify names the kind of err for display, or "unknown".
func Classify(err error) string {
	switch {
	case err == nil:
		return "none"
	case errors.Is(err, ErrNetwork):
		return "network"
	case errors.Is(err, ErrParse):
		return "parse"
	case errors.Is(err, ErrFileSystem):
		return "filesystem"
	case errors.Is(err, ErrArchive):
		return "archive"
	default:
		return "unknown"
	}
}
