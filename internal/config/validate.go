package config

import (
	"fmt"
	"net/url"
)

var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

var validBackends = map[string]bool{
	BackendFile:   true,
	BackendSQLite: true,
}

// Validate checks a parsed config file for invalid values.
func Validate(cfg *Config) error {
	if err := validateAPIURL(cfg.APIURL); err != nil {
		return err
	}

	if cfg.LogLevel != "" && !validLogLevels[cfg.LogLevel] {
		return fmt.Errorf("invalid log_level %q (want debug, info, warn, or error)", cfg.LogLevel)
	}

	if cfg.HTTPTimeoutSeconds <= 0 {
		return fmt.Errorf("http_timeout_seconds must be positive, got %d", cfg.HTTPTimeoutSeconds)
	}

	if cfg.Credentials.Backend != "" && !validBackends[cfg.Credentials.Backend] {
		return fmt.Errorf("invalid credentials backend %q (want %s or %s)",
			cfg.Credentials.Backend, BackendFile, BackendSQLite)
	}

	return nil
}

// ValidateResolved checks the final resolved configuration.
func ValidateResolved(r *Resolved) error {
	if err := validateAPIURL(r.APIURL); err != nil {
		return err
	}

	if !validBackends[r.CredentialsBackend] {
		return fmt.Errorf("invalid credentials backend %q", r.CredentialsBackend)
	}

	if r.CredentialsPath == "" {
		return fmt.Errorf("credentials path must not be empty")
	}

	return nil
}

func validateAPIURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid api_url %q: %w", raw, err)
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid api_url %q: scheme must be http or https", raw)
	}

	if u.Host == "" {
		return fmt.Errorf("invalid api_url %q: missing host", raw)
	}

	return nil
}
