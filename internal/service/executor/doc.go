// Package executor runs installs in the background, one at a time.
//
// Submit starts the install on its own goroutine and returns a Handle, a
// single-result future. When the install finishes the outcome is stored in
// the Handle and the completion callback is posted to the caller's Home (the
// goroutine that owns the UI), exactly once. A Submit while another install is
// in flight fails fast with ErrBusy.
package executor
