package note

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	editTitle    string
	editContent  string
	editCategory string
	editPin      bool
	editUnpin    bool
)

var EditCmd = &cobra.Command{
	Use:   "edit <id>",
	Short: "Edit a note",
	Long:  `Updates the given fields of a note and stamps it as the latest edit.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := appFrom(cmd)
		if err != nil {
			return err
		}

		n, ok := app.Notes().GetNote(args[0])
		if !ok {
			return fmt.Errorf("note %s not found", args[0])
		}

		if cmd.Flags().Changed("title") {
			n.Title = editTitle
		}
		if cmd.Flags().Changed("content") {
			n.Content = editContent
		}
		if cmd.Flags().Changed("category") {
			n.Category = editCategory
		}
		if editPin {
			n.IsPinned = true
		}
		if editUnpin {
			n.IsPinned = false
		}

		saved := app.Notes().SaveNote(cmd.Context(), n)

		fmt.Printf("Updated note %s\n", saved.ID)

		return nil
	},
}

func init() {
	EditCmd.Flags().StringVarP(&editTitle, "title", "t", "", "new title")
	EditCmd.Flags().StringVarP(&editContent, "content", "m", "", "new body")
	EditCmd.Flags().StringVarP(&editCategory, "category", "c", "", "new category")
	EditCmd.Flags().BoolVar(&editPin, "pin", false, "pin the note")
	EditCmd.Flags().BoolVar(&editUnpin, "unpin", false, "unpin the note")
}
