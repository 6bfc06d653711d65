// Package fetcher downloads whole HTTP resources into memory.
//
// It is the byte-fetching capability shared by the release catalog and the
// installer. Failures are reported as release.ErrNetwork.
package fetcher
