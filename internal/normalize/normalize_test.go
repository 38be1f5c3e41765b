package normalize

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

const sillyTavernChat = `{"user_name":"我","character_name":"手机","create_date":"2025-12-15@10h04m05s","chat_metadata":{}}
{"name":"我","is_user":true,"send_date":"December 15, 2025 10:04am","mes":"向小明（123456）发送消息","extra":{}}

{"name":"手机","is_user":false,"send_date":1765793100000,"mes":"[对方消息|小明|123456|在的|10:05]","extra":{"image":"user/images/cat.png"}}
{"name":"手机","is_user":false,"send_date":"not a date","mes":"","extra":{}}
`

func TestParseSillyTavern(t *testing.T) {
	transcript, err := ParseTranscript([]byte(sillyTavernChat))
	if err != nil {
		t.Fatalf("Failed to parse transcript: %v", err)
	}

	if transcript.Format != FormatSillyTavern {
		t.Errorf("Expected format '%s', got '%s'", FormatSillyTavern, transcript.Format)
	}
	if transcript.UserName != "我" || transcript.CharacterName != "手机" {
		t.Errorf("Expected header names, got '%s' and '%s'", transcript.UserName, transcript.CharacterName)
	}
	if len(transcript.Messages) != 3 {
		t.Fatalf("Expected 3 messages, got %d", len(transcript.Messages))
	}

	for i, msg := range transcript.Messages {
		if msg.Index != i {
			t.Errorf("Message %d: expected index %d, got %d", i, i, msg.Index)
		}
	}

	first := transcript.Messages[0]
	if !first.IsUser || first.SenderName != "我" {
		t.Errorf("Expected user message from '我', got %+v", first)
	}
	if first.Timestamp != "December 15, 2025 10:04am" {
		t.Errorf("Expected timestamp passed through, got '%s'", first.Timestamp)
	}
	if !first.SentAt.Equal(time.Date(2025, 12, 15, 10, 4, 0, 0, time.UTC)) {
		t.Errorf("Expected parsed send time, got %v", first.SentAt)
	}

	second := transcript.Messages[1]
	if second.Timestamp != "1765793100000" {
		t.Errorf("Expected numeric timestamp kept as digits, got '%s'", second.Timestamp)
	}
	if second.Image != "user/images/cat.png" {
		t.Errorf("Expected image attachment, got '%s'", second.Image)
	}

	if !transcript.Messages[2].SentAt.IsZero() {
		t.Errorf("Expected zero send time for unparsable date, got %v", transcript.Messages[2].SentAt)
	}

	earliest, latest := transcript.TimeRange()
	if !earliest.Equal(first.SentAt) || !latest.Equal(second.SentAt) {
		t.Errorf("Unexpected time range %v - %v", earliest, latest)
	}
}

func TestParseJSONArray(t *testing.T) {
	data := []byte(`[
		{"index": 9, "is_user": true, "sender_name": "我", "body": "[qq号|小明|123456|80]", "timestamp": "2025-12-15T10:04:05Z"},
		{"is_user": false, "sender_name": "手机", "body": "好的"}
	]`)

	transcript, err := ParseTranscript(data)
	if err != nil {
		t.Fatalf("Failed to parse transcript: %v", err)
	}

	if transcript.Format != FormatJSON {
		t.Errorf("Expected format '%s', got '%s'", FormatJSON, transcript.Format)
	}
	if len(transcript.Messages) != 2 {
		t.Fatalf("Expected 2 messages, got %d", len(transcript.Messages))
	}
	if transcript.Messages[0].Index != 0 || transcript.Messages[1].Index != 1 {
		t.Error("Expected indexes reassigned in file order")
	}
	if transcript.Messages[0].Body != "[qq号|小明|123456|80]" {
		t.Errorf("Expected body unchanged, got '%s'", transcript.Messages[0].Body)
	}
}

func TestParseTranscriptErrors(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantEmpty bool
	}{
		{name: "empty file", input: "", wantEmpty: true},
		{name: "whitespace only", input: "\n\n  \n", wantEmpty: true},
		{name: "empty array", input: "[]", wantEmpty: true},
		{name: "header only", input: `{"user_name":"我","character_name":"手机"}`, wantEmpty: true},
		{name: "malformed line", input: "{\"name\":\"a\",\"mes\":\"x\"}\n{not json}", wantEmpty: false},
		{name: "malformed array", input: "[{", wantEmpty: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseTranscript([]byte(tt.input))
			if err == nil {
				t.Fatal("Expected error, got nil")
			}
			if got := errors.Is(err, ErrEmptyTranscript); got != tt.wantEmpty {
				t.Errorf("errors.Is(err, ErrEmptyTranscript) = %v, expected %v (err: %v)", got, tt.wantEmpty, err)
			}
		})
	}
}

func TestLoadTranscript(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "chat.jsonl")
	if err := os.WriteFile(path, []byte(sillyTavernChat), 0600); err != nil {
		t.Fatalf("Failed to write transcript: %v", err)
	}

	transcript, err := LoadTranscript(path)
	if err != nil {
		t.Fatalf("Failed to load transcript: %v", err)
	}
	if transcript.Source != path {
		t.Errorf("Expected source '%s', got '%s'", path, transcript.Source)
	}
	if transcript.LoadedAt.IsZero() {
		t.Error("Expected load time to be set")
	}

	if _, err := LoadTranscript(filepath.Join(dir, "missing.jsonl")); err == nil {
		t.Error("Expected error for missing file")
	}
}
