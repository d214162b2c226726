package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/a1rzayev/footbook-go/internal/api"
)

func newSignupCmd() *cobra.Command {
	var (
		firstName   string
		lastName    string
		email       string
		phoneNumber string
		password    string
		skillLevel  string
		picturePath string
	)

	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Create an account and store credentials",
		Long:  "Register a new account. On success the issued tokens are stored and you are logged in.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger := buildLogger()

			if password == "" {
				var err error

				password, err = promptPassword()
				if err != nil {
					return err
				}
			}

			params := api.SignupParams{
				FirstName:   firstName,
				LastName:    lastName,
				Email:       email,
				PhoneNumber: phoneNumber,
				Password:    password,
				SkillLevel:  skillLevel,
			}

			if picturePath != "" {
				file, err := os.Open(picturePath)
				if err != nil {
					return fmt.Errorf("opening profile picture: %w", err)
				}
				defer file.Close()

				params.ProfilePicture = file
				params.ProfilePictureName = filepath.Base(picturePath)
			}

			client, cleanup, err := newAPIClient(cmd.Context(), logger)
			if err != nil {
				return err
			}
			defer cleanup()

			if _, err := client.Signup(cmd.Context(), params); err != nil {
				return fmt.Errorf("signup failed: %w", err)
			}

			statusf("Account created for %s\n", email)

			return nil
		},
	}

	cmd.Flags().StringVar(&firstName, "first-name", "", "first name")
	cmd.Flags().StringVar(&lastName, "last-name", "", "last name")
	cmd.Flags().StringVar(&email, "email", "", "email address")
	cmd.Flags().StringVar(&phoneNumber, "phone", "", "phone number")
	cmd.Flags().StringVar(&password, "password", "", "password (prompted when omitted)")
	cmd.Flags().StringVar(&skillLevel, "skill-level", "", "playing skill level")
	cmd.Flags().StringVar(&picturePath, "picture", "", "profile picture file (optional)")

	_ = cmd.MarkFlagRequired("first-name")
	_ = cmd.MarkFlagRequired("last-name")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("phone")
	_ = cmd.MarkFlagRequired("skill-level")

	return cmd
}
