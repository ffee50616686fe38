package note

import "time"

// CategoryUncategorized is the reserved category for notes the user
// never filed anywhere.
const CategoryUncategorized = "Uncategorized"

// Segment is one diarized utterance of a voice note. Timestamp is the
// offset in seconds from the start of the recording.
type Segment struct {
	SpeakerID string  `json:"speakerId"`
	Text      string  `json:"text"`
	Timestamp float64 `json:"timestamp"`
}

// Note is the central entity, shared by the client store and the server.
// CreatedAt/UpdatedAt are milliseconds since epoch; UpdatedAt is rewritten
// on every mutation and is the ordering key for conflict resolution.
// An empty UserID means the note was created as a guest and belongs to
// no account yet.
type Note struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId,omitempty"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Segments  []Segment `json:"segments"`
	CreatedAt int64     `json:"createdAt"`
	UpdatedAt int64     `json:"updatedAt"`
	IsPinned  bool      `json:"isPinned"`
	Category  string    `json:"category"`
	IsSynced  bool      `json:"isSynced"`
	IsDeleted bool      `json:"isDeleted"`
}

// Now returns the current wall clock in milliseconds since epoch, the
// unit every Note timestamp uses.
func Now() int64 {
	return time.Now().UnixMilli()
}

// Clone returns a deep copy of the note (segments included).
func (n Note) Clone() Note {
	c := n
	if n.Segments != nil {
		c.Segments = make([]Segment, len(n.Segments))
		copy(c.Segments, n.Segments)
	}
	return c
}
