package auth

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var LoginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in to the Joddit server",
	Long: `Authenticates against the server and stores the session on this device.

Signing in immediately reconciles: notes written while logged out are
claimed by this account and pushed to the server.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, err := appFrom(cmd)
		if err != nil {
			return err
		}

		fmt.Print("Email: ")
		var email string
		_, _ = fmt.Scanln(&email)

		fmt.Print("Password: ")
		password, err := term.ReadPassword(int(os.Stdin.Fd()))
		if err != nil {
			return fmt.Errorf("read password: %w", err)
		}
		fmt.Println()

		ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
		defer cancel()

		if err := app.Login(ctx, email, string(password)); err != nil {
			return fmt.Errorf("login failed: %w", err)
		}

		fmt.Println()
		fmt.Println("Signed in. Your notes will now sync with this account.")

		return nil
	},
}
