package extract

import (
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/solvaholic/phonemine/internal/normalize"
)

// scanConversation returns the conversation events of one message in body
// order. Standalone stickers and image attachments come back without a
// target; Timeline resolves those.
//
// Stickers and red packets are matched first and their spans consumed, so
// the generic message patterns never count the same token twice.
func (s *Session) scanConversation(msg normalize.ChatMessage) []Event {
	body := msg.Body
	var consumed []match

	var stickers []Event
	for _, m := range findAll(sticker6Pattern, body) {
		consumed = append(consumed, m)
		stickers = append(stickers, s.carriedSticker(msg, m, m.fields[4]))
	}
	for _, m := range findAll(sticker5Pattern, body) {
		if m.overlaps(consumed) {
			continue
		}
		consumed = append(consumed, m)
		stickers = append(stickers, s.carriedSticker(msg, m, ""))
	}
	for _, m := range findAll(stickerPattern, body) {
		if m.overlaps(consumed) {
			continue
		}
		consumed = append(consumed, m)
		url := m.fields[1]
		if url == "" {
			url = s.stickerURL(m.fields[0])
		}
		stickers = append(stickers, StickerMessage{
			Direction:          directionFor(msg.IsUser),
			Filename:           m.fields[0],
			ImageURL:           url,
			SourceMessageIndex: msg.Index,
			PositionInBody:     runeOffset(body, m.start),
		})
	}

	var redPackets []Event
	for _, m := range findAll(privateRedPattern, body) {
		if m.overlaps(consumed) {
			continue
		}
		consumed = append(consumed, m)
		redPackets = append(redPackets, RedPacketMessage{
			Direction:          tokenDirection(m.fields[0]),
			Scope:              ScopePrivate,
			Counterpart:        m.fields[1],
			CounterpartNumber:  m.fields[2],
			Amount:             parseAmount(m.fields[3]),
			Time:               m.fields[4],
			SourceMessageIndex: msg.Index,
			PositionInBody:     runeOffset(body, m.start),
		})
	}
	for _, m := range findAll(userGroupRedPattern, body) {
		if m.overlaps(consumed) {
			continue
		}
		consumed = append(consumed, m)
		redPackets = append(redPackets, RedPacketMessage{
			Direction:          Sent,
			Scope:              ScopeGroup,
			Counterpart:        m.fields[1],
			Sender:             m.fields[2],
			Amount:             parseAmount(m.fields[3]),
			Time:               m.fields[4],
			SourceMessageIndex: msg.Index,
			PositionInBody:     runeOffset(body, m.start),
		})
	}
	for _, m := range findAll(groupRedPattern, body) {
		if m.overlaps(consumed) {
			continue
		}
		consumed = append(consumed, m)
		redPackets = append(redPackets, RedPacketMessage{
			Direction:          Received,
			Scope:              ScopeGroup,
			Counterpart:        m.fields[0],
			Sender:             m.fields[1],
			Amount:             parseAmount(m.fields[2]),
			Time:               m.fields[3],
			SourceMessageIndex: msg.Index,
			PositionInBody:     runeOffset(body, m.start),
		})
	}

	var events []Event
	events = append(events, directMessages(msg, userMessagePattern, Sent, consumed)...)
	events = append(events, directMessages(msg, otherMessagePattern, Received, consumed)...)
	events = append(events, groupMessages(msg, consumed)...)
	events = append(events, stickers...)
	events = append(events, redPackets...)

	if msg.Image != "" {
		events = append(events, ImageMessage{
			Direction:          directionFor(msg.IsUser),
			ImagePath:          msg.Image,
			SourceMessageIndex: msg.Index,
			PositionInBody:     utf8.RuneCountInString(body) + 1,
		})
	}

	// Families were appended in tie-break order; a stable sort keeps it
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Position() < events[j].Position()
	})
	return events
}

func directMessages(msg normalize.ChatMessage, re *regexp.Regexp, dir Direction, consumed []match) []Event {
	var events []Event
	for _, m := range findAll(re, msg.Body) {
		content := m.fields[2]
		if m.overlaps(consumed) || excludedContent(content) {
			continue
		}
		isVoice, voice := splitVoice(content)
		events = append(events, DirectMessage{
			Direction:          dir,
			CounterpartName:    m.fields[0],
			CounterpartNumber:  m.fields[1],
			Content:            content,
			IsVoice:            isVoice,
			VoiceContent:       voice,
			Time:               m.fields[3],
			SourceMessageIndex: msg.Index,
			PositionInBody:     runeOffset(msg.Body, m.start),
		})
	}
	return events
}

func groupMessages(msg normalize.ChatMessage, consumed []match) []Event {
	var events []Event
	for _, m := range findAll(userGroupMessagePattern, msg.Body) {
		content := m.fields[3]
		if m.overlaps(consumed) || excludedContent(content) {
			continue
		}
		isVoice, voice := splitVoice(content)
		events = append(events, GroupMessage{
			Direction:          Sent,
			GroupName:          m.fields[0],
			GroupID:            m.fields[1],
			Sender:             m.fields[2],
			Content:            content,
			IsVoice:            isVoice,
			VoiceContent:       voice,
			Time:               m.fields[4],
			SourceMessageIndex: msg.Index,
			PositionInBody:     runeOffset(msg.Body, m.start),
		})
	}
	for _, m := range findAll(groupMessagePattern, msg.Body) {
		content := m.fields[2]
		if m.overlaps(consumed) || excludedContent(content) {
			continue
		}
		isVoice, voice := splitVoice(content)
		events = append(events, GroupMessage{
			Direction:          Received,
			GroupID:            m.fields[0],
			Sender:             m.fields[1],
			Content:            content,
			IsVoice:            isVoice,
			VoiceContent:       voice,
			Time:               m.fields[3],
			SourceMessageIndex: msg.Index,
			PositionInBody:     runeOffset(msg.Body, m.start),
		})
	}
	return events
}

// carriedSticker builds a sticker from a [我方消息|name|number|表情包|file...] token
func (s *Session) carriedSticker(msg normalize.ChatMessage, m match, at string) StickerMessage {
	return StickerMessage{
		Direction: tokenDirection(m.fields[0]),
		Filename:  m.fields[3],
		ImageURL:  s.stickerURL(m.fields[3]),
		Target: &AddressTarget{
			ID:          m.fields[2],
			DisplayName: m.fields[1],
		},
		Time:               at,
		SourceMessageIndex: msg.Index,
		PositionInBody:     runeOffset(msg.Body, m.start),
	}
}

// stickerURL joins the base URL unless the filename is already a path or URL
func (s *Session) stickerURL(filename string) string {
	if filename == "" || strings.Contains(filename, "/") {
		return filename
	}
	return s.stickerBaseURL + filename
}

func tokenDirection(tag string) Direction {
	if tag == "我方消息" {
		return Sent
	}
	return Received
}
