// Package privilege makes sure the process may write to protected install locations.
package privilege
