// Package installed persists the record of the currently installed version.
//
// The record is a single string value under a key. Backends: a JSON file
// (protojson-encoded structpb.Struct), a SQLite database and, on Windows,
// the current user's registry hive.
package installed
