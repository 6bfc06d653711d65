// Package release contains core domain types of the installer.
//
// It defines Descriptor (one row of the release feed), Target (where a release
// is installed), Outcome (the result of one install attempt), Snapshot (an
// immutable, ordered catalog) and the error kinds every pipeline step reports.
package release
