package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Config holds everything the installer needs to discover and install releases.
type Config struct {
	// Feed describes where the release list comes from.
	Feed FeedConfig `yaml:"feed" mapstructure:"feed"`
	// Install describes where and how releases are installed.
	Install InstallConfig `yaml:"install" mapstructure:"install"`
	// HTTP tunes the client used for the feed and for packages.
	HTTP HTTPConfig `yaml:"http" mapstructure:"http"`
	// InstalledVersion locates the record of the currently installed version.
	InstalledVersion InstalledVersionConfig `yaml:"installed_version" mapstructure:"installed_version"`
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level" mapstructure:"log_level"`
}

// FeedConfig describes the CSV release feed.
type FeedConfig struct {
	// URL of the CSV document listing releases.
	URL string `yaml:"url" mapstructure:"url"`
	// HasHeaderRow skips the first row of the feed when set.
	HasHeaderRow bool `yaml:"has_header_row" mapstructure:"has_header_row"`
}

// InstallConfig describes the install target and pipeline options.
type InstallConfig struct {
	// DestinationDir receives the extracted package.
	DestinationDir string `yaml:"destination_dir" mapstructure:"destination_dir"`
	// LegacyArtifactName is the executable removed before every install.
	LegacyArtifactName string `yaml:"legacy_artifact_name" mapstructure:"legacy_artifact_name"`
	// TerminateRunning kills running copies of the legacy artifact before removing it.
	TerminateRunning bool `yaml:"terminate_running" mapstructure:"terminate_running"`
	// StagedExtraction extracts into a staging directory and moves entries afterwards.
	StagedExtraction bool `yaml:"staged_extraction" mapstructure:"staged_extraction"`
	// RequireElevation makes the installer demand administrative privileges.
	RequireElevation bool `yaml:"require_elevation" mapstructure:"require_elevation"`
}

// HTTPConfig tunes network calls.
type HTTPConfig struct {
	// Timeout bounds every request; zero means no timeout.
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`
}

// InstalledVersionConfig locates the installed version record.
type InstalledVersionConfig struct {
	// Backend is one of file, sqlite, registry.
	Backend string `yaml:"backend" mapstructure:"backend"`
	// Path is the file, database or registry key holding the record.
	Path string `yaml:"path" mapstructure:"path"`
	// Key names the value within Path.
	Key string `yaml:"key" mapstructure:"key"`
	// RecordOnSuccess writes the installed version back after a successful install.
	RecordOnSuccess bool `yaml:"record_on_success" mapstructure:"record_on_success"`
}

const (
	// DefaultConfigFilename is the default filename for installer settings.
	DefaultConfigFilename = "release-installer.yaml"

	// DefaultFeedURL is the published release sheet exported as CSV.
	DefaultFeedURL = "https://docs.google.com/spreadsheets/d/1c8gg13-GlvBaxH06XiTsfmcyT20Ukdt9Up0ix2JV38E/gviz/tq?tqx=out:csv"

	// DefaultLegacyArtifactName is the executable replaced by every install.
	DefaultLegacyArtifactName = "WindowsRunTool.exe"

	// DefaultVersionKey is the value name of the installed version record.
	DefaultVersionKey = "Version"

	// DefaultLogLevel is used when log_level is not set.
	DefaultLogLevel = "info"

	// DefaultFilePermissions is the default file permission for config files.
	DefaultFilePermissions = 0o600

	// Installed version backends.
	BackendFile     = "file"
	BackendSQLite   = "sqlite"
	BackendRegistry = "registry"

	// envPrefix prefixes environment overrides, e.g. RELEASE_INSTALLER_FEED_URL.
	envPrefix = "RELEASE_INSTALLER"
)

var (
	// errConfigIsNotSet is returned when a nil configuration is provided.
	errConfigIsNotSet = errors.New("configuration is not set")
	// errFeedURLRequired is returned when the feed URL is missing.
	errFeedURLRequired = errors.New("feed url must be provided")
	// errDestinationRequired is returned when the destination directory is missing.
	errDestinationRequired = errors.New("destination directory must be provided")
	// errInvalidArtifactName is returned when the legacy artifact name is not a plain relative path.
	errInvalidArtifactName = errors.New("legacy artifact name must be a relative path inside the destination")
	// errUnknownBackend is returned for an unsupported installed version backend.
	errUnknownBackend = errors.New("unknown installed version backend")
	// errNegativeTimeout is returned when the HTTP timeout is below zero.
	errNegativeTimeout = errors.New("http timeout must not be negative")
	// errUnknownLogLevel is returned for an unsupported log level.
	errUnknownLogLevel = errors.New("unknown log level")
)

// Default returns the configuration used when no file and no overrides exist.
func Default() *Config {
	cfg := &Config{
		Feed: FeedConfig{
			URL: DefaultFeedURL,
		},
		Install: InstallConfig{
			DestinationDir:     defaultDestinationDir(),
			LegacyArtifactName: DefaultLegacyArtifactName,
			RequireElevation:   isWindows(),
		},
		InstalledVersion: InstalledVersionConfig{
			Backend: BackendFile,
			Path:    "installed-version.json",
			Key:     DefaultVersionKey,
		},
		LogLevel: DefaultLogLevel,
	}

	if isWindows() {
		cfg.InstalledVersion.Backend = BackendRegistry
		cfg.InstalledVersion.Path = `Software\WRT`
	}

	return cfg
}

// Load reads configuration from the provided path, applies environment
// overrides and validates the result. A missing file is not an error:
// defaults and environment variables are used instead.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultConfigFilename
	}

	v := newViper()
	v.SetConfigFile(filepath.Clean(path))

	if err := v.ReadInConfig(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("read settings: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal settings: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Save writes the configuration to the provided path.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if path == "" {
		path = DefaultConfigFilename
	}

	if err := Validate(cfg); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	// Restrict permissions.
	if err := os.WriteFile(filepath.Clean(path), data, DefaultFilePermissions); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}

	return nil
}

// Validate checks the provided settings for required fields and formatting
// and fills in defaults for optional ones.
func Validate(settings *Config) error {
	if settings == nil {
		return errConfigIsNotSet
	}

	if settings.Feed.URL == "" {
		return errFeedURLRequired
	}

	if _, err := url.ParseRequestURI(settings.Feed.URL); err != nil {
		return fmt.Errorf("invalid feed URL: %w", err)
	}

	if settings.Install.DestinationDir == "" {
		return errDestinationRequired
	}

	if settings.Install.LegacyArtifactName == "" {
		settings.Install.LegacyArtifactName = DefaultLegacyArtifactName
	}

	if !filepath.IsLocal(settings.Install.LegacyArtifactName) {
		return fmt.Errorf("%q: %w", settings.Install.LegacyArtifactName, errInvalidArtifactName)
	}

	if settings.HTTP.Timeout < 0 {
		return errNegativeTimeout
	}

	if err := validateInstalledVersion(&settings.InstalledVersion); err != nil {
		return err
	}

	if settings.LogLevel == "" {
		settings.LogLevel = DefaultLogLevel
	}

	switch strings.ToLower(strings.TrimSpace(settings.LogLevel)) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%q: %w", settings.LogLevel, errUnknownLogLevel)
	}

	return nil
}

// validateInstalledVersion defaults and checks the installed version record settings.
func validateInstalledVersion(settings *InstalledVersionConfig) error {
	defaults := Default().InstalledVersion

	if settings.Backend == "" {
		settings.Backend = defaults.Backend
	}

	switch settings.Backend {
	case BackendFile, BackendSQLite, BackendRegistry:
	default:
		return fmt.Errorf("%q: %w", settings.Backend, errUnknownBackend)
	}

	if settings.Path == "" {
		settings.Path = defaults.Path
	}

	if settings.Key == "" {
		settings.Key = DefaultVersionKey
	}

	return nil
}

// newViper returns a viper instance that knows every key, so that environment
// variables can override values missing from the file.
func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	defaults := Default()

	v.SetDefault("feed.url", defaults.Feed.URL)
	v.SetDefault("feed.has_header_row", defaults.Feed.HasHeaderRow)
	v.SetDefault("install.destination_dir", defaults.Install.DestinationDir)
	v.SetDefault("install.legacy_artifact_name", defaults.Install.LegacyArtifactName)
	v.SetDefault("install.terminate_running", defaults.Install.TerminateRunning)
	v.SetDefault("install.staged_extraction", defaults.Install.StagedExtraction)
	v.SetDefault("install.require_elevation", defaults.Install.RequireElevation)
	v.SetDefault("http.timeout", defaults.HTTP.Timeout)
	v.SetDefault("installed_version.backend", defaults.InstalledVersion.Backend)
	v.SetDefault("installed_version.path", defaults.InstalledVersion.Path)
	v.SetDefault("installed_version.key", defaults.InstalledVersion.Key)
	v.SetDefault("installed_version.record_on_success", defaults.InstalledVersion.RecordOnSuccess)
	v.SetDefault("log_level", defaults.LogLevel)

	return v
}

// defaultDestinationDir returns the platform install location.
func defaultDestinationDir() string {
	if isWindows() {
		return `C:\Program Files\WRT`
	}

	return "/opt/wrt"
}

// isWindows reports whether the installer runs on Windows.
func isWindows() bool {
	return strings.Contains(strings.ToLower(runtime.GOOS), "windows")
}
