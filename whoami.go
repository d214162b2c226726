package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/a1rzayev/footbook-go/internal/api"
)

func newWhoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the logged-in user's profile",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger := buildLogger()

			client, cleanup, err := newAPIClient(cmd.Context(), logger)
			if err != nil {
				return err
			}
			defer cleanup()

			user, err := client.Me(cmd.Context())
			if err != nil {
				return err
			}

			if flagJSON {
				return printWhoamiJSON(user)
			}

			printWhoamiText(user)

			return nil
		},
	}
}

func printWhoamiJSON(user *api.User) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")

	return enc.Encode(user)
}

func printWhoamiText(user *api.User) {
	fmt.Printf("Name:        %s %s\n", user.FirstName, user.LastName)
	fmt.Printf("Email:       %s\n", user.Email)
	fmt.Printf("Phone:       %s\n", user.PhoneNumber)
	fmt.Printf("Skill level: %s\n", user.SkillLevel)
	fmt.Printf("User ID:     %s\n", user.ID)
}
