package graph

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/solvaholic/phonemine/internal/extract"
)

// Conversation is every event exchanged with one contact or in one group
type Conversation struct {
	Key         string           `json:"key"`
	IsGroup     bool             `json:"is_group"`
	ID          string           `json:"id"`
	DisplayName string           `json:"display_name"`
	Events      extract.Timeline `json:"events"`
	FirstIndex  int              `json:"first_index"` // source message of the first event
	LastIndex   int              `json:"last_index"`  // source message of the last event
}

// ConversationIndex groups a timeline by counterpart
type ConversationIndex struct {
	Conversations map[string]*Conversation `json:"conversations"` // key -> conversation
	Order         []string                 `json:"order"`         // keys in first-seen order
	Unaddressed   extract.Timeline         `json:"unaddressed"`   // stickers/images with no target
	UpdatedAt     time.Time                `json:"updated_at"`
}

// NewConversationIndex creates a new empty index
func NewConversationIndex() *ConversationIndex {
	return &ConversationIndex{
		Conversations: make(map[string]*Conversation),
		Order:         []string{},
		Unaddressed:   extract.Timeline{},
		UpdatedAt:     time.Now(),
	}
}

// ContactKey returns the index key of a one-to-one conversation. Contacts
// known only by name are keyed by name.
func ContactKey(number, name string) string {
	if number == "" {
		return "contact-name:" + name
	}
	return "contact:" + number
}

// GroupKey returns the index key of a group conversation
func GroupKey(id string) string {
	return "group:" + id
}

// AddEvent files an event under its conversation. Events without a
// counterpart go to Unaddressed; records that are not conversation events
// are ignored.
func (ix *ConversationIndex) AddEvent(ev extract.Event) {
	var (
		isGroup  bool
		id, name string
	)

	switch e := ev.(type) {
	case extract.DirectMessage:
		id, name = e.CounterpartNumber, e.CounterpartName
	case extract.GroupMessage:
		isGroup, id, name = true, e.GroupID, e.GroupName
	case extract.RedPacketMessage:
		if e.Scope == extract.ScopeGroup {
			isGroup, id = true, e.Counterpart
		} else {
			id, name = e.CounterpartNumber, e.Counterpart
		}
	case extract.StickerMessage:
		if e.Target == nil {
			ix.Unaddressed = append(ix.Unaddressed, ev)
			return
		}
		isGroup, id, name = e.Target.IsGroup, e.Target.ID, e.Target.DisplayName
	case extract.ImageMessage:
		if e.Target == nil {
			ix.Unaddressed = append(ix.Unaddressed, ev)
			return
		}
		isGroup, id, name = e.Target.IsGroup, e.Target.ID, e.Target.DisplayName
	default:
		return
	}

	// Group events with an id the aggregator rejects have no conversation
	if isGroup && !extract.ValidGroupID(id) {
		ix.Unaddressed = append(ix.Unaddressed, ev)
		return
	}
	if id == "" && name == "" {
		ix.Unaddressed = append(ix.Unaddressed, ev)
		return
	}

	key := ContactKey(id, name)
	if isGroup {
		key = GroupKey(id)
	}

	conv, exists := ix.Conversations[key]
	if !exists {
		conv = &Conversation{
			Key:         key,
			IsGroup:     isGroup,
			ID:          id,
			DisplayName: name,
			Events:      extract.Timeline{},
			FirstIndex:  ev.SourceIndex(),
		}
		ix.Conversations[key] = conv
		ix.Order = append(ix.Order, key)
	}
	if conv.DisplayName == "" {
		conv.DisplayName = name
	}
	conv.Events = append(conv.Events, ev)
	conv.LastIndex = ev.SourceIndex()

	ix.UpdatedAt = time.Now()
}

// Get returns the conversation for key, or nil
func (ix *ConversationIndex) Get(key string) *Conversation {
	return ix.Conversations[key]
}

// List returns conversations in first-seen order
func (ix *ConversationIndex) List() []*Conversation {
	result := make([]*Conversation, 0, len(ix.Order))
	for _, key := range ix.Order {
		result = append(result, ix.Conversations[key])
	}
	return result
}

// Stats returns statistics about the index
func (ix *ConversationIndex) Stats() map[string]interface{} {
	totalEvents := 0
	groupConversations := 0
	busiest := ""
	busiestCount := 0
	for _, key := range ix.Order {
		conv := ix.Conversations[key]
		totalEvents += len(conv.Events)
		if conv.IsGroup {
			groupConversations++
		}
		if len(conv.Events) > busiestCount {
			busiest, busiestCount = key, len(conv.Events)
		}
	}

	conversationCount := len(ix.Order)
	avgEvents := 0.0
	if conversationCount > 0 {
		avgEvents = float64(totalEvents) / float64(conversationCount)
	}

	return map[string]interface{}{
		"conversation_count":      conversationCount,
		"contact_conversations":   conversationCount - groupConversations,
		"group_conversations":     groupConversations,
		"total_events":            totalEvents,
		"unaddressed_events":      len(ix.Unaddressed),
		"busiest_conversation":    busiest,
		"average_events_per_conv": avgEvents,
		"updated_at":              ix.UpdatedAt.Format(time.RFC3339),
	}
}

// BuildFromResult indexes a timeline and names each conversation after the
// matching contact or group record when there is one
func BuildFromResult(result *extract.Result) *ConversationIndex {
	ix := NewConversationIndex()
	for _, ev := range result.Timeline {
		ix.AddEvent(ev)
	}

	for _, c := range result.Contacts {
		if conv := ix.Get(ContactKey(c.Number, c.Name)); conv != nil {
			conv.DisplayName = c.Name
		}
	}
	for _, g := range result.Groups {
		if conv := ix.Get(GroupKey(g.ID)); conv != nil {
			conv.DisplayName = g.Name
		}
	}
	return ix
}

// SaveConversationIndex writes the index to dir as one file per
// conversation plus an index file
func SaveConversationIndex(ix *ConversationIndex, dir string) error {
	convDir := filepath.Join(dir, "conversations")

	// Create directory with restrictive permissions
	if err := os.MkdirAll(convDir, 0700); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	for i, key := range ix.Order {
		filename := fmt.Sprintf("%04d.json", i)
		if err := saveIndexFile(convDir, filename, ix.Conversations[key]); err != nil {
			return fmt.Errorf("failed to save conversation %s: %w", key, err)
		}
	}

	if err := saveIndexFile(dir, "unaddressed.json", ix.Unaddressed); err != nil {
		return fmt.Errorf("failed to save unaddressed events: %w", err)
	}

	metadata := map[string]interface{}{
		"order":      ix.Order,
		"updated_at": ix.UpdatedAt.Format(time.RFC3339),
		"stats":      ix.Stats(),
	}
	if err := saveIndexFile(dir, "index.json", metadata); err != nil {
		return fmt.Errorf("failed to save metadata: %w", err)
	}

	return nil
}

// saveIndexFile saves a data structure to a JSON file atomically
func saveIndexFile(dir, filename string, data interface{}) error {
	filePath := filepath.Join(dir, filename)

	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal data: %w", err)
	}

	// Write to temp file first, then rename
	tempPath := filePath + ".tmp"
	if err := os.WriteFile(tempPath, jsonData, 0600); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}

	if err := os.Rename(tempPath, filePath); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to rename file: %w", err)
	}

	return nil
}
