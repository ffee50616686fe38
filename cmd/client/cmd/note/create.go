package note

import (
	"fmt"

	"github.com/spf13/cobra"

	"joddit/internal/domain/note"
)

var (
	createTitle    string
	createContent  string
	createCategory string
	createPinned   bool
)

var CreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a note",
	Long:  `Creates a note locally and pushes it to the server when signed in.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, err := appFrom(cmd)
		if err != nil {
			return err
		}

		if createTitle == "" {
			return fmt.Errorf("a title is required")
		}

		saved := app.Notes().SaveNote(cmd.Context(), note.Note{
			Title:    createTitle,
			Content:  createContent,
			Category: createCategory,
			IsPinned: createPinned,
		})

		fmt.Printf("Created note %s\n", saved.ID)
		if !saved.IsSynced {
			fmt.Println("Stored locally; it will sync once you are online and signed in.")
		}

		return nil
	},
}

func init() {
	CreateCmd.Flags().StringVarP(&createTitle, "title", "t", "", "note title")
	CreateCmd.Flags().StringVarP(&createContent, "content", "m", "", "note body")
	CreateCmd.Flags().StringVarP(&createCategory, "category", "c", "", "category (defaults to Uncategorized)")
	CreateCmd.Flags().BoolVarP(&createPinned, "pin", "p", false, "pin the note")
}
