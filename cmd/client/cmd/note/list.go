package note

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"joddit/internal/domain/note"
)

var (
	listCategory string
	listFormat   string
)

var ListCmd = &cobra.Command{
	Use:   "list",
	Short: "List notes",
	Long:  `Shows your notes, pinned ones first, newest first. Filter with --category.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, err := appFrom(cmd)
		if err != nil {
			return err
		}

		notes := app.Notes().GetNotes(cmd.Context(), listCategory)

		switch listFormat {
		case "json":
			return printNotesJSON(notes)
		case "table":
			return printNotesTable(notes)
		default:
			return printNotesSimple(notes)
		}
	},
}

func printNotesSimple(notes []note.Note) error {
	if len(notes) == 0 {
		fmt.Println("No notes found")
		return nil
	}

	pinned := color.New(color.FgYellow, color.Bold)
	dim := color.New(color.Faint)

	fmt.Printf("Found %d notes\n\n", len(notes))

	for i, n := range notes {
		marker := " "
		if n.IsPinned {
			marker = pinned.Sprint("*")
		}
		synced := color.GreenString("synced")
		if !n.IsSynced {
			synced = color.RedString("local")
		}

		fmt.Printf("%d. %s %s [%s] %s\n", i+1, marker, n.Title, n.Category, synced)
		dim.Printf("   %s | updated %s\n", n.ID, formatMillis(n.UpdatedAt))
		fmt.Println()
	}

	return nil
}

func printNotesTable(notes []note.Note) error {
	if len(notes) == 0 {
		fmt.Println("No notes found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "ID\tTitle\tCategory\tPinned\tSynced\tUpdated\t\n")
	fmt.Fprintf(w, "---\t---\t---\t---\t---\t---\t\n")

	for _, n := range notes {
		fmt.Fprintf(w, "%s\t%s\t%s\t%v\t%v\t%s\t\n",
			n.ID, n.Title, n.Category, n.IsPinned, n.IsSynced, formatMillis(n.UpdatedAt))
	}

	return w.Flush()
}

func printNotesJSON(notes []note.Note) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(notes)
}

func formatMillis(ms int64) string {
	return time.UnixMilli(ms).Format("2006-01-02 15:04")
}

func init() {
	ListCmd.Flags().StringVarP(&listCategory, "category", "c", "", "only show notes in this category")
	ListCmd.Flags().StringVarP(&listFormat, "format", "f", "simple", "output format: simple, table, json")
}
