package sync

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"joddit/cmd/client/cmd/types"
	"joddit/internal/app/client"
)

var watch bool

var SyncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Reconcile with the server",
	Long: `Runs one reconcile pass: pushes local edits, pulls the server's copy,
and merges by last edit. With --watch the client keeps syncing on its
configured interval until interrupted.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, ok := cmd.Context().Value(types.ClientAppKey).(*client.App)
		if !ok || app == nil {
			return fmt.Errorf("application not initialized")
		}

		if !app.IsAuthenticated() {
			return fmt.Errorf("sign in first: joddit auth login")
		}

		if watch {
			fmt.Println("Syncing continuously, press Ctrl+C to stop.")
			return app.Run()
		}

		fmt.Println("Checking server connection...")
		if err := app.CheckConnection(); err != nil {
			return fmt.Errorf("server unreachable: %v", err)
		}

		result, err := app.Sync(cmd.Context())
		if err != nil {
			return fmt.Errorf("sync failed: %w", err)
		}

		fmt.Println()
		fmt.Println("Sync finished.")
		fmt.Printf("Duration: %v\n", result.Duration.Round(time.Millisecond))
		fmt.Printf("Pushed:  %d\n", result.Pushed)
		fmt.Printf("Pulled:  %d\n", result.Pulled)
		if result.Claimed > 0 {
			fmt.Printf("Claimed: %d\n", result.Claimed)
		}
		if result.Purged > 0 {
			fmt.Printf("Purged:  %d\n", result.Purged)
		}
		fmt.Printf("Notes:   %d\n", len(result.Notes))

		return nil
	},
}

func init() {
	SyncCmd.Flags().BoolVarP(&watch, "watch", "w", false, "keep syncing on the configured interval")
}
