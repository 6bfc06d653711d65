// Package config defines installer settings and provides helpers to load,
// validate and save them in YAML format.
//
// Load layers defaults, the YAML file and RELEASE_INSTALLER_* environment
// variables through viper; Save writes the YAML back with restricted permissions.
package config
