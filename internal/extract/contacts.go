package extract

import (
	"sort"

	"github.com/solvaholic/phonemine/internal/normalize"
)

// Contacts returns one contact per QQ number. When several [qq号] tokens share
// a number the last one in the transcript wins outright; fields are not
// merged. Contacts are ordered by where their winning token appears.
func (s *Session) Contacts(messages []normalize.ChatMessage) []Contact {
	byNumber := make(map[string]Contact)
	for _, msg := range messages {
		for _, m := range findAll(contactPattern, msg.Body) {
			byNumber[m.fields[1]] = Contact{
				Name:               m.fields[0],
				Number:             m.fields[1],
				Favorability:       parseAmount(m.fields[2]),
				SourceMessageIndex: msg.Index,
				PositionInBody:     runeOffset(msg.Body, m.start),
			}
		}
	}

	contacts := make([]Contact, 0, len(byNumber))
	for _, c := range byNumber {
		contacts = append(contacts, c)
	}
	sort.Slice(contacts, func(i, j int) bool {
		return byPlacement(contacts[i], contacts[j])
	})
	return contacts
}

// byPlacement orders events by source message, then by position in its body
func byPlacement(a, b Event) bool {
	if a.SourceIndex() != b.SourceIndex() {
		return a.SourceIndex() < b.SourceIndex()
	}
	return a.Position() < b.Position()
}
