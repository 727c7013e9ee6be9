package auth

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jmichard/tourneyhub/cmd/cli/client"
	"github.com/jmichard/tourneyhub/cmd/cli/config"
	"github.com/jmichard/tourneyhub/cmd/cli/root"
)

// ==========================
// CLI Command Init
// ==========================
func init() {
	root.GetRoot().AddCommand(registerCmd(), loginCmd(), logoutCmd())
}

func registerCmd() *cobra.Command {
	var username, email, password string

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account",
		Long:  "Register a new account and store the session token locally for later commands.",
		RunE: func(cmd *cobra.Command, args []string) error {
			c := client.New(config.APIURL(), "")
			user, err := c.Register(username, email, password)
			if err != nil {
				return fmt.Errorf("failed to register: %w", err)
			}
			if err := config.SaveToken(c.Token()); err != nil {
				return fmt.Errorf("failed to save token: %w", err)
			}
			fmt.Printf("Registered and logged in as %s.\n", user.Username)
			return nil
		},
	}

	cmd.Flags().StringVar(&username, "username", "", "Username (at least 3 characters)")
	cmd.Flags().StringVar(&email, "email", "", "Email address")
	cmd.Flags().StringVar(&password, "password", "", "Password (at least 6 characters)")
	cmd.MarkFlagRequired("username")
	cmd.MarkFlagRequired("email")
	cmd.MarkFlagRequired("password")

	return cmd
}

func loginCmd() *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in to the tournament platform",
		Long:  "Authenticate and store the session token locally for later commands.",
		RunE: func(cmd *cobra.Command, args []string) error {
			c := client.New(config.APIURL(), "")
			user, err := c.Login(email, password)
			if err != nil {
				return fmt.Errorf("failed to login: %w", err)
			}
			if err := config.SaveToken(c.Token()); err != nil {
				return fmt.Errorf("failed to save token: %w", err)
			}
			fmt.Printf("Logged in as %s.\n", user.Username)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Email address")
	cmd.Flags().StringVar(&password, "password", "", "Password")
	cmd.MarkFlagRequired("email")
	cmd.MarkFlagRequired("password")

	return cmd
}

func logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Log out",
		Long:  "Remove the locally stored session token.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.ClearToken(); err != nil {
				return fmt.Errorf("failed to clear token: %w", err)
			}
			fmt.Println("Logged out.")
			return nil
		},
	}
}
