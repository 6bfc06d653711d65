// Package logger provides a small wrapper around zap to offer:
//   - a global sugared logger with a console encoder and a switchable output,
//   - context helpers (ToContext/FromContext/WithName/WithKV/WithFields),
//   - level configuration and parsing utilities,
//   - convenience functions (Infof, ErrorKV, etc.).
//
// The installer pipeline receives a context and extracts the logger from it,
// so every step logs with the release and destination it is working on.
package logger
