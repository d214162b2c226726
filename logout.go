package main

import (
	"github.com/spf13/cobra"
)

func newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Clear stored credentials",
		Long:  "Delete both stored tokens. Safe to run when already logged out.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger := buildLogger()

			client, cleanup, err := newAPIClient(cmd.Context(), logger)
			if err != nil {
				return err
			}
			defer cleanup()

			if err := client.Logout(cmd.Context()); err != nil {
				return err
			}

			statusf("Logged out\n")

			return nil
		},
	}
}
