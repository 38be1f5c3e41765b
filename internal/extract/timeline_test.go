package extract

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/solvaholic/phonemine/internal/normalize"
)

// transcript builds messages with sequential indexes. Even indexes are the user's.
func transcript(bodies ...string) []normalize.ChatMessage {
	messages := make([]normalize.ChatMessage, 0, len(bodies))
	for i, body := range bodies {
		messages = append(messages, normalize.ChatMessage{
			Index:      i,
			IsUser:     i%2 == 0,
			SenderName: "narrator",
			Body:       body,
			Timestamp:  "2026-10-15T10:00:00Z",
		})
	}
	return messages
}

func charOffset(body, token string) int {
	return utf8.RuneCountInString(body[:strings.Index(body, token)])
}

func TestTimelineOrdersMixedTokensByPosition(t *testing.T) {
	tokens := []string{
		"[对方消息|Tom|12345|你好|10:00]",
		"[表情包|a.png|/s/a.png]",
		"[我方消息|Tom|12345|嗨|10:01]",
		"[对方消息|Tom|12345|红包：50|10:02]",
	}
	body := "先说" + tokens[0] + "然后" + tokens[1] + "再" + tokens[2] + "最后" + tokens[3]

	timeline := NewSession().Timeline(transcript(body))

	expectedKinds := []Kind{KindDirectMessage, KindSticker, KindDirectMessage, KindRedPacket}
	if len(timeline) != len(expectedKinds) {
		t.Fatalf("Expected %d events, got %d", len(expectedKinds), len(timeline))
	}
	for i, ev := range timeline {
		if ev.Kind() != expectedKinds[i] {
			t.Errorf("Event %d: expected kind '%s', got '%s'", i, expectedKinds[i], ev.Kind())
		}
		if ev.Position() != charOffset(body, tokens[i]) {
			t.Errorf("Event %d: expected position %d, got %d", i, charOffset(body, tokens[i]), ev.Position())
		}
		if ev.SourceIndex() != 0 {
			t.Errorf("Event %d: expected source index 0, got %d", i, ev.SourceIndex())
		}
	}

	rp := timeline[3].(RedPacketMessage)
	if rp.Amount != 50 || rp.Scope != ScopePrivate || rp.Direction != Received {
		t.Errorf("Unexpected red packet: %+v", rp)
	}
}

func TestVoiceMessage(t *testing.T) {
	timeline := NewSession().Timeline(transcript("[对方消息|Tom|123|语音：hello|10:00]"))

	dms := timeline.DirectMessages()
	if len(dms) != 1 {
		t.Fatalf("Expected 1 direct message, got %d", len(dms))
	}
	dm := dms[0]
	if !dm.IsVoice {
		t.Error("Expected voice message")
	}
	if dm.VoiceContent != "hello" {
		t.Errorf("Expected voice content 'hello', got '%s'", dm.VoiceContent)
	}
	if dm.Content != "语音：hello" {
		t.Errorf("Expected content unchanged, got '%s'", dm.Content)
	}
	if dm.Direction != Received || dm.CounterpartName != "Tom" || dm.CounterpartNumber != "123" {
		t.Errorf("Unexpected direct message fields: %+v", dm)
	}
}

func TestGroupVoiceMessage(t *testing.T) {
	timeline := NewSession().Timeline(transcript("[群聊消息|123456|Amy|语音：早上好|08:00]"))

	if len(timeline) != 1 {
		t.Fatalf("Expected 1 event, got %d", len(timeline))
	}
	gm := timeline[0].(GroupMessage)
	if !gm.IsVoice || gm.VoiceContent != "早上好" {
		t.Errorf("Expected voice content '早上好', got %+v", gm)
	}
}

func TestSpecificFamiliesAreNotDoubleCounted(t *testing.T) {
	tests := []struct {
		name        string
		body        string
		expectKinds []Kind
	}{
		{
			name:        "5-field sticker is not a direct message",
			body:        "[我方消息|Tom|12345|表情包|smile.png]",
			expectKinds: []Kind{KindSticker},
		},
		{
			name:        "6-field sticker",
			body:        "[对方消息|Tom|12345|表情包|smile.png|10:00]",
			expectKinds: []Kind{KindSticker},
		},
		{
			name:        "private red packet is not a direct message",
			body:        "[我方消息|Tom|12345|红包：88|10:00]",
			expectKinds: []Kind{KindRedPacket},
		},
		{
			name:        "group red packet is not a group message",
			body:        "[群聊消息|123456|Amy|红包：20|10:00]",
			expectKinds: []Kind{KindRedPacket},
		},
		{
			name:        "user group red packet",
			body:        "[我方群聊消息|吃货群|123456|我|红包：20|10:00]",
			expectKinds: []Kind{KindRedPacket},
		},
		{
			name:        "user group message is not also a group message",
			body:        "[我方群聊消息|吃货群|123456|我|大家好|10:00]",
			expectKinds: []Kind{KindGroupMessage},
		},
		{
			name:        "plain text",
			body:        "今天天气不错",
			expectKinds: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			timeline := NewSession().Timeline(transcript(tt.body))
			if len(timeline) != len(tt.expectKinds) {
				t.Fatalf("Expected %d events, got %d: %+v", len(tt.expectKinds), len(timeline), timeline)
			}
			for i, ev := range timeline {
				if ev.Kind() != tt.expectKinds[i] {
					t.Errorf("Expected kind '%s', got '%s'", tt.expectKinds[i], ev.Kind())
				}
			}
		})
	}
}

func TestCarriedStickerFields(t *testing.T) {
	session := NewSession(WithStickerBaseURL("https://cdn.example/stickers/"))
	timeline := session.Timeline(transcript("[对方消息|Tom|12345|表情包|smile.png|10:00]"))

	stickers := timeline.Stickers()
	if len(stickers) != 1 {
		t.Fatalf("Expected 1 sticker, got %d", len(stickers))
	}
	st := stickers[0]
	if st.Direction != Received {
		t.Errorf("Expected direction 'received', got '%s'", st.Direction)
	}
	if st.ImageURL != "https://cdn.example/stickers/smile.png" {
		t.Errorf("Expected joined image URL, got '%s'", st.ImageURL)
	}
	if st.Time != "10:00" {
		t.Errorf("Expected time '10:00', got '%s'", st.Time)
	}
	if st.Target == nil || st.Target.ID != "12345" || st.Target.DisplayName != "Tom" || st.Target.IsGroup {
		t.Errorf("Expected contact target 12345/Tom, got %+v", st.Target)
	}
}

func TestImageAttachmentComesLast(t *testing.T) {
	messages := transcript("[我方消息|Tom|12345|看图|10:00]")
	messages[0].Image = "user/images/cat.png"

	timeline := NewSession().Timeline(messages)
	if len(timeline) != 2 {
		t.Fatalf("Expected 2 events, got %d", len(timeline))
	}

	img, ok := timeline[1].(ImageMessage)
	if !ok {
		t.Fatalf("Expected image last, got %s", timeline[1].Kind())
	}
	if img.PositionInBody != utf8.RuneCountInString(messages[0].Body)+1 {
		t.Errorf("Expected synthetic position after body, got %d", img.PositionInBody)
	}
	if img.Direction != Sent {
		t.Errorf("Expected direction 'sent', got '%s'", img.Direction)
	}
	if img.Target == nil || img.Target.ID != "12345" {
		t.Errorf("Expected target resolved from co-located message token, got %+v", img.Target)
	}
}

func TestMalformedTokenDoesNotStopExtraction(t *testing.T) {
	body := "[我方消息|Tom|12345|红包：很多|10:00][我方消息|Tom|12345|还好吗|10:01]"
	timeline := NewSession().Timeline(transcript(body))

	if len(timeline) != 2 {
		t.Fatalf("Expected 2 events, got %d", len(timeline))
	}
	if rp := timeline[0].(RedPacketMessage); rp.Amount != 0 {
		t.Errorf("Expected malformed amount to default to 0, got %d", rp.Amount)
	}
	if dm := timeline[1].(DirectMessage); dm.Content != "还好吗" {
		t.Errorf("Expected content '还好吗', got '%s'", dm.Content)
	}
}
