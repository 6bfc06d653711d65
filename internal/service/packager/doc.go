// Package packager prepares a release for publishing.
//
// It zips the release files, appends a row to a local copy of the release feed
// and prints where both have to be uploaded.
package packager
