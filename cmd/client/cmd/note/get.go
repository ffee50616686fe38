package note

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var GetCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Show one note",
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

		title := color.New(color.Bold)
		title.Println(n.Title)
		fmt.Printf("Category: %s | Pinned: %v | Updated: %s\n\n", n.Category, n.IsPinned, formatMillis(n.UpdatedAt))
		fmt.Println(n.Content)

		if len(n.Segments) > 0 {
			fmt.Printf("\nSegments: %d\n", len(n.Segments))
		}

		return nil
	},
}
