package normalize

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// SillyTavernLine is one line of a SillyTavern chat file. The first line of
// a chat is a header carrying only the participant names; every other line
// is a message.
type SillyTavernLine struct {
	UserName      string          `json:"user_name,omitempty"`
	CharacterName string          `json:"character_name,omitempty"`
	Name          string          `json:"name"`
	IsUser        bool            `json:"is_user"`
	IsSystem      bool            `json:"is_system,omitempty"`
	SendDate      json.RawMessage `json:"send_date,omitempty"`
	Mes           *string         `json:"mes"`
	Extra         struct {
		Image string `json:"image,omitempty"`
	} `json:"extra"`
}

// isHeader reports whether the line is chat metadata rather than a message
func (l *SillyTavernLine) isHeader() bool {
	return l.Mes == nil && (l.UserName != "" || l.CharacterName != "")
}

// SillyTavernToMessage converts one message line to the common schema.
// The send date is kept verbatim: string dates are unquoted, numeric dates
// keep their digits.
func SillyTavernToMessage(line *SillyTavernLine) ChatMessage {
	msg := ChatMessage{
		IsUser:     line.IsUser,
		SenderName: line.Name,
		Timestamp:  rawDate(line.SendDate),
		Image:      line.Extra.Image,
	}
	if line.Mes != nil {
		msg.Body = *line.Mes
	}
	return msg
}

func rawDate(raw json.RawMessage) string {
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return strings.TrimSpace(string(raw))
}

// parseSillyTavern reads a JSONL chat. Blank lines are skipped; a line that
// is not valid JSON fails the whole read.
func parseSillyTavern(data []byte) (*Transcript, error) {
	t := &Transcript{Format: FormatSillyTavern, Messages: []ChatMessage{}}

	for i, raw := range splitLines(data) {
		raw = bytes.TrimSpace(raw)
		if len(raw) == 0 {
			continue
		}

		var line SillyTavernLine
		if err := json.Unmarshal(raw, &line); err != nil {
			return nil, fmt.Errorf("failed to unmarshal message on line %d: %w", i+1, err)
		}

		if line.isHeader() {
			t.UserName = line.UserName
			t.CharacterName = line.CharacterName
			continue
		}
		t.Messages = append(t.Messages, SillyTavernToMessage(&line))
	}

	return t, nil
}
