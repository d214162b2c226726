package config

import "os"

// Environment variable names for overrides.
const (
	EnvConfig      = "FOOTBOOK_GO_CONFIG"
	EnvAPIURL      = "FOOTBOOK_GO_API_URL"
	EnvCredentials = "FOOTBOOK_GO_CREDENTIALS"
)

// EnvOverrides holds values derived from environment variables.
type EnvOverrides struct {
	ConfigPath      string // FOOTBOOK_GO_CONFIG: override config file path
	APIURL          string // FOOTBOOK_GO_API_URL: override backend base URL
	CredentialsPath string // FOOTBOOK_GO_CREDENTIALS: override credentials path
}

// ReadEnvOverrides reads environment variables and returns any overrides
// found. This does not modify the Config; callers apply the relevant fields.
func ReadEnvOverrides() EnvOverrides {
	return EnvOverrides{
		ConfigPath:      os.Getenv(EnvConfig),
		APIURL:          os.Getenv(EnvAPIURL),
		CredentialsPath: os.Getenv(EnvCredentials),
	}
}
