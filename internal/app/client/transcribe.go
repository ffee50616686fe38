package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"golang.org/x/exp/slog"

	"joddit/internal/app/client/config"
	"joddit/internal/domain/note"
)

const (
	deepgramURL = "https://api.deepgram.com/v1/listen?model=nova-2&smart_format=true&diarize=true&punctuate=true&utterances=true"

	voiceNoteTitle    = "Voice Note"
	voiceNoteCategory = "Recent"
)

var ErrNoTranscriptionKey = errors.New("transcription API key not configured")

// Transcriber turns an audio file into a transcript with per-speaker
// segments.
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath string) (string, []note.Segment, error)
}

type deepgramTranscriber struct {
	client *http.Client
	apiKey string
	log    *slog.Logger
}

func NewDeepgramTranscriber(cfg *config.Config, log *slog.Logger) *deepgramTranscriber {
	return &deepgramTranscriber{
		client: &http.Client{Timeout: 2 * time.Minute},
		apiKey: cfg.TranscriptionKey,
		log:    log.With("component", "transcriber"),
	}
}

type deepgramResponse struct {
	Results struct {
		Channels []struct {
			Alternatives []struct {
				Transcript string `json:"transcript"`
			} `json:"alternatives"`
		} `json:"channels"`
		Utterances []struct {
			Speaker    int     `json:"speaker"`
			Transcript string  `json:"transcript"`
			Start      float64 `json:"start"`
		} `json:"utterances"`
	} `json:"results"`
}

func (d *deepgramTranscriber) Transcribe(ctx context.Context, audioPath string) (string, []note.Segment, error) {
	if d.apiKey == "" {
		return "", nil, ErrNoTranscriptionKey
	}

	audio, err := os.Open(audioPath)
	if err != nil {
		return "", nil, fmt.Errorf("open audio file: %w", err)
	}
	defer audio.Close()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, deepgramURL, audio)
	if err != nil {
		return "", nil, fmt.Errorf("build request: %w", err)
	}

	req.Header.Set("Authorization", "Token "+d.apiKey)
	req.Header.Set("Content-Type", "audio/wav")

	resp, err := d.client.Do(req)
	if err != nil {
		return "", nil, fmt.Errorf("transcription request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", nil, fmt.Errorf("transcription API error: %d - %s", resp.StatusCode, string(body))
	}

	var result deepgramResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return "", nil, fmt.Errorf("parse response: %w", err)
	}

	var transcript string
	if len(result.Results.Channels) > 0 && len(result.Results.Channels[0].Alternatives) > 0 {
		transcript = result.Results.Channels[0].Alternatives[0].Transcript
	}

	segments := make([]note.Segment, 0, len(result.Results.Utterances))
	for _, u := range result.Results.Utterances {
		segments = append(segments, note.Segment{
			SpeakerID: fmt.Sprintf("speaker-%d", u.Speaker),
			Text:      u.Transcript,
			Timestamp: u.Start,
		})
	}

	return transcript, segments, nil
}

// FormatTranscript renders segments as "Speaker N: text" paragraphs.
// Speakers are numbered from one for display.
func FormatTranscript(segments []note.Segment) string {
	if len(segments) == 0 {
		return ""
	}

	parts := make([]string, 0, len(segments))
	for _, seg := range segments {
		label := "Speaker 1"
		if num, err := strconv.Atoi(strings.TrimPrefix(seg.SpeakerID, "speaker-")); err == nil {
			label = fmt.Sprintf("Speaker %d", num+1)
		}
		parts = append(parts, label+": "+seg.Text)
	}

	return strings.Join(parts, "\n\n")
}

// BuildVoiceNote wraps a transcript into a new note. With no segments
// the raw transcript is used as is.
func BuildVoiceNote(transcript string, segments []note.Segment) note.Note {
	content := FormatTranscript(segments)
	if content == "" {
		content = transcript
	}

	return note.Note{
		Title:    voiceNoteTitle,
		Content:  content,
		Segments: segments,
		Category: voiceNoteCategory,
	}
}

// FallbackVoiceNote is stored when transcription fails, so the recording
// still leaves a trace the user can edit by hand.
func FallbackVoiceNote(at time.Time) note.Note {
	content := fmt.Sprintf("Recording from %s\n\nTranscription failed. Please check your transcription API key.",
		at.Format("1/2/2006, 3:04:05 PM"))

	return note.Note{
		Title:    voiceNoteTitle,
		Content:  content,
		Segments: []note.Segment{},
		Category: voiceNoteCategory,
	}
}
