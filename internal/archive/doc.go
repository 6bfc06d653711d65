// Package archive reads and writes the ZIP packages releases are shipped in.
//
// Extract unpacks a package held in memory into a destination directory,
// overwriting existing files. The entry matching the legacy executable is
// applied with go-update (write beside, then rename). Create builds packages
// for publishing.
package archive
