package extract

import "github.com/solvaholic/phonemine/internal/normalize"

// Timeline extracts the conversation events (direct and group messages,
// stickers, red packets, images) of every message in the order given.
// Events of one message are ordered by their position in its body.
// Stickers and images without an inline addressee get an inferred target.
func (s *Session) Timeline(messages []normalize.ChatMessage) Timeline {
	timeline := Timeline{}
	for _, msg := range messages {
		for _, ev := range s.scanConversation(msg) {
			switch e := ev.(type) {
			case StickerMessage:
				if e.Target == nil {
					e.Target = ResolveTarget(msg, messages)
				}
				ev = e
			case ImageMessage:
				if e.Target == nil {
					e.Target = ResolveTarget(msg, messages)
				}
				ev = e
			}
			timeline = append(timeline, ev)
		}
	}
	return timeline
}

// DirectMessages returns only the one-to-one messages of a timeline
func (t Timeline) DirectMessages() []DirectMessage {
	out := []DirectMessage{}
	for _, ev := range t {
		if dm, ok := ev.(DirectMessage); ok {
			out = append(out, dm)
		}
	}
	return out
}

// Stickers returns only the stickers of a timeline
func (t Timeline) Stickers() []StickerMessage {
	out := []StickerMessage{}
	for _, ev := range t {
		if st, ok := ev.(StickerMessage); ok {
			out = append(out, st)
		}
	}
	return out
}

// RedPackets returns only the red packets of a timeline
func (t Timeline) RedPackets() []RedPacketMessage {
	out := []RedPacketMessage{}
	for _, ev := range t {
		if rp, ok := ev.(RedPacketMessage); ok {
			out = append(out, rp)
		}
	}
	return out
}

// Images returns only the image attachments of a timeline
func (t Timeline) Images() []ImageMessage {
	out := []ImageMessage{}
	for _, ev := range t {
		if im, ok := ev.(ImageMessage); ok {
			out = append(out, im)
		}
	}
	return out
}
