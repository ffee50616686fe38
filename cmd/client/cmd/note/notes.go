package note

import (
	"fmt"

	"github.com/spf13/cobra"

	"joddit/cmd/client/cmd/types"
	"joddit/internal/app/client"
)

// NoteCmd is the parent command for working with notes.
var NoteCmd = &cobra.Command{
	Use:   "note",
	Short: "Work with your notes",
	Long: `Create, list, edit, and delete notes. Everything works offline;
changes sync to the server when you are signed in.`,
}

func appFrom(cmd *cobra.Command) (*client.App, error) {
	app, ok := cmd.Context().Value(types.ClientAppKey).(*client.App)
	if !ok || app == nil {
		return nil, fmt.Errorf("application not initialized")
	}
	return app, nil
}
