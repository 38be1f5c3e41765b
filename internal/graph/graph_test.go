package graph

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/solvaholic/phonemine/internal/extract"
	"github.com/solvaholic/phonemine/internal/normalize"
)

func messages(bodies ...string) []normalize.ChatMessage {
	result := make([]normalize.ChatMessage, 0, len(bodies))
	for i, body := range bodies {
		result = append(result, normalize.ChatMessage{Index: i, IsUser: i%2 == 0, Body: body})
	}
	return result
}

func TestConversationIndex_AddEvent(t *testing.T) {
	ix := NewConversationIndex()

	ix.AddEvent(extract.DirectMessage{CounterpartName: "小明", CounterpartNumber: "123456", Content: "在吗", SourceMessageIndex: 0})
	ix.AddEvent(extract.DirectMessage{CounterpartName: "小明", CounterpartNumber: "123456", Content: "在的", SourceMessageIndex: 3})

	if len(ix.Conversations) != 1 {
		t.Fatalf("Expected 1 conversation, got %d", len(ix.Conversations))
	}

	conv := ix.Get(ContactKey("123456", "小明"))
	if conv == nil {
		t.Fatal("Expected conversation with 123456")
	}
	if len(conv.Events) != 2 {
		t.Errorf("Expected 2 events, got %d", len(conv.Events))
	}
	if conv.FirstIndex != 0 || conv.LastIndex != 3 {
		t.Errorf("Expected index span 0-3, got %d-%d", conv.FirstIndex, conv.LastIndex)
	}
	if conv.IsGroup {
		t.Error("Expected contact conversation")
	}
}

func TestConversationIndex_Unaddressed(t *testing.T) {
	ix := NewConversationIndex()

	ix.AddEvent(extract.StickerMessage{Filename: "a.png"})
	ix.AddEvent(extract.ImageMessage{ImagePath: "b.png"})
	ix.AddEvent(extract.GroupMessage{GroupID: "0123", Content: "bad id"})
	ix.AddEvent(extract.Contact{Name: "ignored", Number: "1"})

	if len(ix.Unaddressed) != 3 {
		t.Errorf("Expected 3 unaddressed events, got %d", len(ix.Unaddressed))
	}
	if len(ix.Conversations) != 0 {
		t.Errorf("Expected no conversations, got %d", len(ix.Conversations))
	}
}

func TestConversationIndex_Keys(t *testing.T) {
	tests := []struct {
		name     string
		event    extract.Event
		expected string
	}{
		{
			name:     "private red packet",
			event:    extract.RedPacketMessage{Scope: extract.ScopePrivate, Counterpart: "小明", CounterpartNumber: "123456"},
			expected: "contact:123456",
		},
		{
			name:     "group red packet",
			event:    extract.RedPacketMessage{Scope: extract.ScopeGroup, Counterpart: "55667788"},
			expected: "group:55667788",
		},
		{
			name:     "sticker to group",
			event:    extract.StickerMessage{Target: &extract.AddressTarget{IsGroup: true, ID: "55667788"}},
			expected: "group:55667788",
		},
		{
			name:     "image to contact known by name",
			event:    extract.ImageMessage{Target: &extract.AddressTarget{DisplayName: "小刚"}},
			expected: "contact-name:小刚",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ix := NewConversationIndex()
			ix.AddEvent(tt.event)
			if ix.Get(tt.expected) == nil {
				t.Errorf("Expected conversation '%s', got keys %v", tt.expected, ix.Order)
			}
		})
	}
}

func TestBuildFromResult(t *testing.T) {
	result := extract.NewSession().Extract(messages(
		"[qq号|小明同学|123456|80]",
		"[我方消息|小明|123456|在吗|10:00]",
		"[群聊消息|55667788|小红|hi|10:01][创建群聊|55667788|吃货群|小红]",
		"[表情包|a.png|/a.png]",
	))

	ix := BuildFromResult(result)

	if len(ix.Order) != 2 {
		t.Fatalf("Expected 2 conversations, got %v", ix.Order)
	}
	if ix.Order[0] != "contact:123456" || ix.Order[1] != "group:55667788" {
		t.Errorf("Expected first-seen order, got %v", ix.Order)
	}

	contact := ix.Get("contact:123456")
	if contact.DisplayName != "小明同学" {
		t.Errorf("Expected name from contact record, got '%s'", contact.DisplayName)
	}
	// The sticker resolves through the most recent [我方消息] before it
	if len(contact.Events) != 2 {
		t.Errorf("Expected 2 contact events, got %d", len(contact.Events))
	}

	group := ix.Get("group:55667788")
	if group.DisplayName != "吃货群" {
		t.Errorf("Expected name from group record, got '%s'", group.DisplayName)
	}
	if len(group.Events) != 1 {
		t.Errorf("Expected 1 group event, got %d", len(group.Events))
	}
}

func TestConversationIndex_Stats(t *testing.T) {
	ix := NewConversationIndex()
	ix.AddEvent(extract.DirectMessage{CounterpartNumber: "111111"})
	ix.AddEvent(extract.DirectMessage{CounterpartNumber: "111111"})
	ix.AddEvent(extract.GroupMessage{GroupID: "55667788"})
	ix.AddEvent(extract.StickerMessage{})

	stats := ix.Stats()

	if stats["conversation_count"] != 2 {
		t.Errorf("Expected 2 conversations, got %v", stats["conversation_count"])
	}
	if stats["group_conversations"] != 1 {
		t.Errorf("Expected 1 group conversation, got %v", stats["group_conversations"])
	}
	if stats["total_events"] != 3 {
		t.Errorf("Expected 3 events, got %v", stats["total_events"])
	}
	if stats["unaddressed_events"] != 1 {
		t.Errorf("Expected 1 unaddressed event, got %v", stats["unaddressed_events"])
	}
	if stats["busiest_conversation"] != "contact:111111" {
		t.Errorf("Expected busiest 'contact:111111', got %v", stats["busiest_conversation"])
	}
}

func TestSaveConversationIndex(t *testing.T) {
	ix := NewConversationIndex()
	ix.AddEvent(extract.DirectMessage{CounterpartNumber: "111111", Content: "hi"})

	dir := t.TempDir()
	if err := SaveConversationIndex(ix, dir); err != nil {
		t.Fatalf("Failed to save index: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "conversations", "0000.json"))
	if err != nil {
		t.Fatalf("Failed to read conversation file: %v", err)
	}
	var conv struct {
		Key    string `json:"key"`
		Events []struct {
			Kind string `json:"kind"`
		} `json:"events"`
	}
	if err := json.Unmarshal(data, &conv); err != nil {
		t.Fatalf("Failed to unmarshal conversation: %v", err)
	}
	if conv.Key != "contact:111111" || len(conv.Events) != 1 || conv.Events[0].Kind != "direct_message" {
		t.Errorf("Unexpected saved conversation: %s", data)
	}

	if _, err := os.Stat(filepath.Join(dir, "index.json")); err != nil {
		t.Errorf("Expected index file: %v", err)
	}
}
