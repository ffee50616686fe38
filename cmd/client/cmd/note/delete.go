package note

import (
	"fmt"

	"github.com/spf13/cobra"
)

var DeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a note",
	Long: `Deletes a note. When signed in the server is told right away;
otherwise the deletion is carried over on the next sync.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := appFrom(cmd)
		if err != nil {
			return err
		}

		if !app.Notes().DeleteNote(cmd.Context(), args[0]) {
			return fmt.Errorf("note %s not found", args[0])
		}

		fmt.Printf("Deleted note %s\n", args[0])

		return nil
	},
}
