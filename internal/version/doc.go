// Package version exposes build metadata of the installer.
//
// Variables Version, Commit, and BuildTime are injected at build time via
// Go ldflags. Short is sent as part of the HTTP User-Agent; Full backs the
// `version` subcommand.
package version
