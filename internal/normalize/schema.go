package normalize

import (
	"errors"
	"time"
)

// ChatMessage is one message of a host chat transcript, in the common schema
// the extractor reads. Messages are read-only to the extractor.
type ChatMessage struct {
	Index      int    `json:"index"`       // position in the transcript, assigned at read time
	IsUser     bool   `json:"is_user"`     // authored by the local user
	SenderName string `json:"sender_name"` // display name as stored by the host
	Body       string `json:"body"`        // raw text, may contain bracket tokens
	Timestamp  string `json:"timestamp"`   // opaque, passed through unchanged

	// Image is the host's attachment path for this message, if any
	Image string `json:"image,omitempty"`

	// SentAt is Timestamp parsed on a best-effort basis; zero when unparsable
	SentAt time.Time `json:"-"`
}

// Transcript is an ordered chat log plus whatever metadata the source carried
type Transcript struct {
	Source        string        `json:"source"`
	Format        string        `json:"format"` // "sillytavern" or "json"
	UserName      string        `json:"user_name,omitempty"`
	CharacterName string        `json:"character_name,omitempty"`
	Messages      []ChatMessage `json:"messages"`
	LoadedAt      time.Time     `json:"loaded_at"`
}

// Transcript formats
const (
	FormatSillyTavern = "sillytavern"
	FormatJSON        = "json"
)

// ErrEmptyTranscript is returned when a source holds no readable messages
var ErrEmptyTranscript = errors.New("transcript has no messages")

// TimeRange returns the earliest and latest parsed send times, zero if none
func (t *Transcript) TimeRange() (earliest, latest time.Time) {
	for _, msg := range t.Messages {
		if msg.SentAt.IsZero() {
			continue
		}
		if earliest.IsZero() || msg.SentAt.Before(earliest) {
			earliest = msg.SentAt
		}
		if latest.IsZero() || msg.SentAt.After(latest) {
			latest = msg.SentAt
		}
	}
	return earliest, latest
}
