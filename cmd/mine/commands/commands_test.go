package commands

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/solvaholic/phonemine/internal/db"
)

func TestExpandKinds(t *testing.T) {
	tests := []struct {
		name     string
		input    []string
		expected []string
	}{
		{"none", nil, []string{}},
		{"plain kind", []string{"product"}, []string{"product"}},
		{"messages alias", []string{"messages"}, []string{"direct_message", "group_message"}},
		{"alias and duplicate", []string{"direct_message", "messages"}, []string{"direct_message", "group_message"}},
		{"inventory alias", []string{"inventory", " points "}, []string{"inventory_item", "item_usage", "points"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, expandKinds(tt.input))
		})
	}
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "a b", truncate("a\nb", 10))
	assert.Equal(t, "你好你好你好你...", truncate("你好你好你好你好你好你好", 10))
}

func TestEventSummary(t *testing.T) {
	tests := []struct {
		payload  string
		expected string
	}{
		{`{"direction":"sent","counterpart_name":"小明","content":"在吗"}`, "小明: 在吗"},
		{`{"group_id":"55667788","sender":"小红","content":"hi"}`, "小红: hi"},
		{`{"counterpart":"小明","amount":88}`, "小明: amount 88"},
		{`{"type":"earned","amount":50}`, "amount 50"},
		{`{"name":"剑","kind":"武器","price":100}`, "剑"},
		{`not json`, ""},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			ev := &db.Event{Payload: []byte(tt.payload)}
			assert.Equal(t, tt.expected, eventSummary(ev))
		})
	}
}

func TestToYAMLKeepsFieldOrderAndStrings(t *testing.T) {
	data := struct {
		Name   string `json:"name"`
		Number string `json:"number"`
		Count  int    `json:"count"`
	}{"小明", "123456", 2}

	out, err := toYAML(data)
	require.NoError(t, err)
	assert.Equal(t, "name: 小明\nnumber: \"123456\"\ncount: 2\n", string(out))
}

func TestWatchTranscriptCoalescesWrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chat.jsonl")
	require.NoError(t, os.WriteFile(path, []byte("{}\n"), 0600))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	calls := make(chan struct{}, 10)
	done := make(chan error, 1)
	go func() {
		done <- watchTranscript(ctx, path, 200*time.Millisecond, func() {
			calls <- struct{}{}
		})
	}()

	waitForCall := func() {
		t.Helper()
		select {
		case <-calls:
		case <-time.After(5 * time.Second):
			t.Fatal("Expected onChange to be called")
		}
	}

	// Initial extraction
	waitForCall()

	for i := 0; i < 3; i++ {
		require.NoError(t, os.WriteFile(path, []byte("{}\n{}\n"), 0600))
	}
	waitForCall()

	// Files next to the transcript are ignored
	require.NoError(t, os.WriteFile(filepath.Join(filepath.Dir(path), "other.jsonl"), []byte("{}"), 0600))
	select {
	case <-calls:
		t.Error("Expected no call for an unrelated file")
	case <-time.After(500 * time.Millisecond):
	}

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Expected watcher to stop after cancel")
	}
}
