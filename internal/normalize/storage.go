package normalize

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/solvaholic/phonemine/internal/utils"
)

// LoadTranscript reads a transcript file. A file whose first non-blank byte
// is '[' is read as a JSON array of messages; anything else is read as a
// SillyTavern JSONL chat. Message indexes are assigned in file order.
func LoadTranscript(path string) (*Transcript, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("transcript not found: %s", path)
		}
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	t, err := ParseTranscript(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	t.Source = path
	return t, nil
}

// ParseTranscript decodes transcript bytes in either supported format
func ParseTranscript(data []byte) (*Transcript, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, ErrEmptyTranscript
	}

	var (
		t   *Transcript
		err error
	)
	if trimmed[0] == '[' {
		t, err = parseJSONArray(trimmed)
	} else {
		t, err = parseSillyTavern(trimmed)
	}
	if err != nil {
		return nil, err
	}
	if len(t.Messages) == 0 {
		return nil, ErrEmptyTranscript
	}

	for i := range t.Messages {
		t.Messages[i].Index = i
		t.Messages[i].SentAt = parseSentAt(t.Messages[i].Timestamp)
	}
	t.LoadedAt = time.Now().UTC()
	return t, nil
}

// parseJSONArray reads messages already in the common schema. Incoming
// indexes are ignored.
func parseJSONArray(data []byte) (*Transcript, error) {
	var messages []ChatMessage
	if err := json.Unmarshal(data, &messages); err != nil {
		return nil, fmt.Errorf("failed to unmarshal messages: %w", err)
	}
	return &Transcript{Format: FormatJSON, Messages: messages}, nil
}

// splitLines splits data by newlines
func splitLines(data []byte) [][]byte {
	var lines [][]byte
	start := 0

	for i := 0; i < len(data); i++ {
		if data[i] == '\n' {
			lines = append(lines, data[start:i])
			start = i + 1
		}
	}

	// Add last line if it doesn't end with newline
	if start < len(data) {
		lines = append(lines, data[start:])
	}

	return lines
}

// parseSentAt is best-effort; unparsable timestamps stay zero
func parseSentAt(timestamp string) time.Time {
	sentAt, err := utils.ParseSendDate(timestamp)
	if err != nil {
		return time.Time{}
	}
	return sentAt
}
