package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

func newLoginCmd() *cobra.Command {
	var password string

	cmd := &cobra.Command{
		Use:   "login <email>",
		Short: "Log in and store credentials",
		Long:  "Authenticate with email and password. Tokens are stored in the configured credential store.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := buildLogger()

			email := args[0]

			if password == "" {
				var err error

				password, err = promptPassword()
				if err != nil {
					return err
				}
			}

			client, cleanup, err := newAPIClient(cmd.Context(), logger)
			if err != nil {
				return err
			}
			defer cleanup()

			if _, err := client.Login(cmd.Context(), email, password); err != nil {
				return fmt.Errorf("login failed: %w", err)
			}

			statusf("Logged in as %s\n", email)

			return nil
		},
	}

	cmd.Flags().StringVar(&password, "password", "", "password (prompted when omitted)")

	return cmd
}

// promptPassword reads a password from stdin. The prompt goes to stderr so
// piped stdout stays clean.
func promptPassword() (string, error) {
	fmt.Fprint(os.Stderr, "Password: ")

	reader := bufio.NewReader(os.Stdin)

	line, err := reader.ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("reading password: %w", err)
	}

	password := strings.TrimRight(line, "\r\n")
	if password == "" {
		return "", fmt.Errorf("password must not be empty")
	}

	return password, nil
}
