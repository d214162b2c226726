package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/a1rzayev/footbook-go/internal/api"
	"github.com/a1rzayev/footbook-go/internal/config"
	"github.com/a1rzayev/footbook-go/internal/credstore"
	"github.com/a1rzayev/footbook-go/internal/device"
)

// version is set at build time via ldflags.
var version = "dev"

// Global persistent flags, bound in newRootCmd().
var (
	flagConfigPath string
	flagAPIURL     string
	flagJSON       bool
	flagVerbose    bool
	flagQuiet      bool
)

// resolvedCfg holds the effective configuration loaded by PersistentPreRunE.
// It is available to all subcommands after the root pre-run phase completes.
var resolvedCfg *config.Resolved

// newRootCmd builds and returns the fully-assembled root command with all
// subcommands registered. Called once from main().
func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "footbook-go",
		Short:   "footbook CLI client",
		Long:    "Command-line client for the footbook pickup-games backend.",
		Version: version,
		// Silence Cobra's default error/usage printing — we handle it ourselves.
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			return loadConfig()
		},
	}

	cmd.PersistentFlags().StringVar(&flagConfigPath, "config", "", "config file path")
	cmd.PersistentFlags().StringVar(&flagAPIURL, "api-url", "", "backend base URL override")
	cmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "output in JSON format")
	cmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable debug logging")
	cmd.PersistentFlags().BoolVarP(&flagQuiet, "quiet", "q", false, "suppress informational output")

	// Register subcommands.
	cmd.AddCommand(newLoginCmd())
	cmd.AddCommand(newSignupCmd())
	cmd.AddCommand(newLogoutCmd())
	cmd.AddCommand(newWhoamiCmd())
	cmd.AddCommand(newStatusCmd())

	return cmd
}

// loadConfig resolves the effective configuration from the override chain
// and stores the result in resolvedCfg for use by subcommands.
func loadConfig() error {
	env := config.ReadEnvOverrides()
	cli := config.CLIOverrides{
		ConfigPath: flagConfigPath,
		APIURL:     flagAPIURL,
	}

	resolved, err := config.Resolve(env, cli)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	resolvedCfg = resolved

	return nil
}

// buildLogger creates an slog.Logger configured by the resolved config and
// CLI flags. Config-file log level provides the baseline; --verbose and
// --quiet override it because CLI flags always win. Logs are human-readable
// text on a terminal and JSON when redirected.
func buildLogger() *slog.Logger {
	level := slog.LevelInfo

	if resolvedCfg != nil {
		switch resolvedCfg.LogLevel {
		case "debug":
			level = slog.LevelDebug
		case "warn":
			level = slog.LevelWarn
		case "error":
			level = slog.LevelError
		}
	}

	if flagVerbose {
		level = slog.LevelDebug
	}

	if flagQuiet {
		level = slog.LevelError
	}

	opts := &slog.HandlerOptions{Level: level}

	if isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd()) {
		return slog.New(slog.NewTextHandler(os.Stderr, opts))
	}

	return slog.New(slog.NewJSONHandler(os.Stderr, opts))
}

// newAPIClient assembles the backend client from the resolved config:
// credential store, device ID, HTTP client with the configured timeout.
// The returned cleanup closes the store when it holds resources.
func newAPIClient(ctx context.Context, logger *slog.Logger) (*api.Client, func(), error) {
	store, cleanup, err := openStore(ctx, logger)
	if err != nil {
		return nil, nil, err
	}

	deviceID, err := device.ID(resolvedCfg.DeviceIDPath)
	if err != nil {
		// A missing device ID degrades the request headers, not the CLI.
		logger.Warn("device ID unavailable", slog.String("error", err.Error()))

		deviceID = ""
	}

	httpClient := &http.Client{Timeout: resolvedCfg.HTTPTimeout}
	client := api.NewClient(resolvedCfg.APIURL, httpClient, store, logger, deviceID)

	return client, cleanup, nil
}

// openStore opens the configured credential store backend.
func openStore(ctx context.Context, logger *slog.Logger) (credstore.Store, func(), error) {
	switch resolvedCfg.CredentialsBackend {
	case config.BackendSQLite:
		store, err := credstore.OpenSQLiteStore(ctx, resolvedCfg.CredentialsPath, logger)
		if err != nil {
			return nil, nil, err
		}

		return store, func() { _ = store.Close() }, nil

	default:
		return credstore.NewFileStore(resolvedCfg.CredentialsPath), func() {}, nil
	}
}

// statusf prints informational output unless --quiet is set.
func statusf(format string, args ...any) {
	if flagQuiet {
		return
	}

	fmt.Printf(format, args...)
}

// exitOnError prints a user-friendly error message to stderr and exits.
func exitOnError(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}
