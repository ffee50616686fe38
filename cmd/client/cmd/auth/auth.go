package auth

import (
	"fmt"

	"github.com/spf13/cobra"

	"joddit/cmd/client/cmd/types"
	"joddit/internal/app/client"
)

// AuthCmd is the parent command for account operations.
var AuthCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage your account",
	Long:  `Register, log in, and log out of the Joddit server.`,
}

func appFrom(cmd *cobra.Command) (*client.App, error) {
	app, ok := cmd.Context().Value(types.ClientAppKey).(*client.App)
	if !ok || app == nil {
		return nil, fmt.Errorf("application not initialized")
	}
	return app, nil
}
