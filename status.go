package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/a1rzayev/footbook-go/internal/config"
	"github.com/a1rzayev/footbook-go/internal/session"
)

func newStatusCmd() *cobra.Command {
	var watch bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show authentication status",
		Long:  "Report whether credentials are stored. With --watch, keep reporting as they change on disk.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger := buildLogger()

			store, cleanup, err := openStore(cmd.Context(), logger)
			if err != nil {
				return err
			}
			defer cleanup()

			manager := session.NewManager(store, logger)

			state, err := manager.Bootstrap(cmd.Context())
			if err != nil {
				return err
			}

			printState(state)

			if !watch {
				return nil
			}

			if resolvedCfg.CredentialsBackend != config.BackendFile {
				return fmt.Errorf("--watch requires the file credentials backend, got %q", resolvedCfg.CredentialsBackend)
			}

			ctx := shutdownContext(cmd.Context(), logger)

			states, err := manager.Watch(ctx, resolvedCfg.CredentialsPath)
			if err != nil {
				return err
			}

			for state := range states {
				printState(state)
			}

			return nil
		},
	}

	cmd.Flags().BoolVar(&watch, "watch", false, "keep watching for credential changes")

	return cmd
}

func printState(state session.State) {
	if flagJSON {
		enc := json.NewEncoder(os.Stdout)
		_ = enc.Encode(map[string]bool{"authenticated": state.Authenticated})

		return
	}

	if state.Authenticated {
		fmt.Println("Logged in")
	} else {
		fmt.Println("Logged out")
	}
}
