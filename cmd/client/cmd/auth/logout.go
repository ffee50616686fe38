package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var LogoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out of this device",
	Long: `Revokes the session and forgets the stored identity. Notes stay on the
device; the next login claims them again.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, err := appFrom(cmd)
		if err != nil {
			return err
		}

		if !app.IsAuthenticated() {
			fmt.Println("Not signed in.")
			return nil
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
		defer cancel()

		if err := app.Logout(ctx); err != nil {
			return fmt.Errorf("logout failed: %w", err)
		}

		fmt.Println("Signed out.")

		return nil
	},
}
