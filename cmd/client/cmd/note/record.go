package note

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"joddit/internal/app/client"
)

var RecordCmd = &cobra.Command{
	Use:   "record <audio-file>",
	Short: "Turn a recording into a note",
	Long: `Transcribes an audio file and saves the result as a voice note with
per-speaker segments. When transcription fails a placeholder note is
saved instead so the recording still leaves a trace.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := appFrom(cmd)
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), 2*time.Minute)
		defer cancel()

		fmt.Println("Transcribing...")

		var n = client.FallbackVoiceNote(time.Now())
		transcript, segments, err := app.Transcriber().Transcribe(ctx, args[0])
		if err != nil {
			fmt.Printf("Transcription failed: %v\n", err)
		} else {
			n = client.BuildVoiceNote(transcript, segments)
		}

		saved := app.Notes().SaveNote(cmd.Context(), n)

		fmt.Printf("Saved voice note %s (%d segments)\n", saved.ID, len(saved.Segments))

		return nil
	},
}
