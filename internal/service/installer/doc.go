// Package installer installs a release into a target directory.
//
// The pipeline is sequential and not transactional: optionally stop running
// copies of the legacy executable, remove the legacy executable, download the
// package and extract it in place. The first failing step aborts the rest and
// nothing already done is rolled back.
package installer
