package main

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/a1rzayev/footbook-go/internal/config"
)

func resetGlobals(t *testing.T) {
	t.Helper()

	prevCfg := resolvedCfg
	prevVerbose, prevQuiet := flagVerbose, flagQuiet

	t.Cleanup(func() {
		resolvedCfg = prevCfg
		flagVerbose, flagQuiet = prevVerbose, prevQuiet
	})
}

func TestBuildLogger_LevelFromConfig(t *testing.T) {
	resetGlobals(t)

	resolvedCfg = &config.Resolved{LogLevel: "debug"}
	flagVerbose = false
	flagQuiet = false

	logger := buildLogger()
	assert.True(t, logger.Handler().Enabled(context.Background(), slog.LevelDebug))
}

func TestBuildLogger_DefaultIsInfo(t *testing.T) {
	resetGlobals(t)

	resolvedCfg = &config.Resolved{LogLevel: "info"}
	flagVerbose = false
	flagQuiet = false

	logger := buildLogger()
	assert.False(t, logger.Handler().Enabled(context.Background(), slog.LevelDebug))
	assert.True(t, logger.Handler().Enabled(context.Background(), slog.LevelInfo))
}

func TestBuildLogger_VerboseOverridesConfig(t *testing.T) {
	resetGlobals(t)

	resolvedCfg = &config.Resolved{LogLevel: "error"}
	flagVerbose = true
	flagQuiet = false

	logger := buildLogger()
	assert.True(t, logger.Handler().Enabled(context.Background(), slog.LevelDebug))
}

func TestBuildLogger_QuietWins(t *testing.T) {
	resetGlobals(t)

	resolvedCfg = &config.Resolved{LogLevel: "debug"}
	flagVerbose = true
	flagQuiet = true

	logger := buildLogger()
	assert.False(t, logger.Handler().Enabled(context.Background(), slog.LevelWarn))
	assert.True(t, logger.Handler().Enabled(context.Background(), slog.LevelError))
}

func TestRootCmd_RegistersSubcommands(t *testing.T) {
	cmd := newRootCmd()

	names := make(map[string]bool)
	for _, sub := range cmd.Commands() {
		names[sub.Name()] = true
	}

	for _, want := range []string{"login", "signup", "logout", "whoami", "status"} {
		assert.True(t, names[want], "missing subcommand %s", want)
	}
}

func TestLoadConfig_BadFileFails(t *testing.T) {
	resetGlobals(t)

	prev := flagConfigPath
	t.Cleanup(func() { flagConfigPath = prev })

	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`api_url = "not a url"`), 0o600))

	flagConfigPath = path

	require.Error(t, loadConfig())
}

func TestLoadConfig_MissingFileUsesDefaults(t *testing.T) {
	resetGlobals(t)

	prev := flagConfigPath
	t.Cleanup(func() { flagConfigPath = prev })

	t.Setenv("XDG_DATA_HOME", t.TempDir())

	flagConfigPath = filepath.Join(t.TempDir(), "absent.toml")

	require.NoError(t, loadConfig())
	assert.Equal(t, config.DefaultAPIURL, resolvedCfg.APIURL)
}
