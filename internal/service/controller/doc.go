// Package controller holds the state shared by the CLI and the TUI: the current
// release snapshot, the selection, the installed version and the executor.
package controller
