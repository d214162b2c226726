// Package config loads and resolves footbook-go configuration from the
// four-layer override chain: defaults -> TOML config file -> environment
// variables -> CLI flags.
package config

import (
	"os"
	"path/filepath"
	"time"
)

// Credential store backends.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
)

// DefaultAPIURL is the production footbook backend.
const DefaultAPIURL = "https://api.footbook.app"

// defaultHTTPTimeoutSeconds bounds every request at the transport level.
// The pipeline itself enforces no timeout.
const defaultHTTPTimeoutSeconds = 30

// Config is the TOML file shape.
type Config struct {
	APIURL             string      `toml:"api_url"`
	LogLevel           string      `toml:"log_level"`
	HTTPTimeoutSeconds int         `toml:"http_timeout_seconds"`
	Credentials        Credentials `toml:"credentials"`
}

// Credentials configures where and how the token pair is persisted.
// An empty path selects the default location for the chosen backend.
type Credentials struct {
	Backend string `toml:"backend"`
	Path    string `toml:"path"`
}

// Resolved is the effective configuration after all override layers.
type Resolved struct {
	APIURL             string
	LogLevel           string
	HTTPTimeout        time.Duration
	CredentialsBackend string
	CredentialsPath    string
	DeviceIDPath       string
}

// DefaultConfig returns a Config populated with all default values.
func DefaultConfig() *Config {
	return &Config{
		APIURL:             DefaultAPIURL,
		LogLevel:           "info",
		HTTPTimeoutSeconds: defaultHTTPTimeoutSeconds,
		Credentials: Credentials{
			Backend: BackendFile,
		},
	}
}

// DefaultConfigPath returns the config file location, honoring
// XDG_CONFIG_HOME.
func DefaultConfigPath() string {
	return filepath.Join(configHome(), "footbook-go", "config.toml")
}

// DefaultDataDir returns the directory for credentials and the device ID,
// honoring XDG_DATA_HOME.
func DefaultDataDir() string {
	if dir := os.Getenv("XDG_DATA_HOME"); dir != "" {
		return filepath.Join(dir, "footbook-go")
	}

	home, err := os.UserHomeDir()
	if err != nil {
		// Degenerate fallback; only hit in stripped-down environments.
		return filepath.Join(".", ".footbook-go")
	}

	return filepath.Join(home, ".local", "share", "footbook-go")
}

func configHome() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return dir
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}

	return filepath.Join(home, ".config")
}

// defaultCredentialsPath picks the backend-appropriate filename inside the
// data directory.
func defaultCredentialsPath(backend string) string {
	name := "credentials.json"
	if backend == BackendSQLite {
		name = "credentials.db"
	}

	return filepath.Join(DefaultDataDir(), name)
}
