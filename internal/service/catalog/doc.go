// Package catalog fetches the release feed and parses it into descriptors.
//
// The feed is a CSV document with one release per row:
// version, release date, package URL. Rows keep their feed order, because
// operators select releases by position.
package catalog
