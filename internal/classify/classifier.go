package classify

import (
	"strings"
	"unicode/utf8"
)

// Addressee types
const (
	TypeGroup   = "group"
	TypeContact = "contact"
)

// Classification represents an addressee classification with confidence score
type Classification struct {
	Type       string   `json:"type"`       // "group" or "contact"
	Confidence float64  `json:"confidence"` // 0.0 to 1.0
	Signals    []string `json:"signals"`    // What triggered this classification
}

// IsGroup reports whether the addressee was classified as a group
func (c Classification) IsGroup() bool {
	return c.Type == TypeGroup
}

// groupNumberLength is the digit count group numbers are assumed to have.
// QQ numbers can also be 9 digits long, so this misfires on some contacts.
const groupNumberLength = 9

// Words in a display name that suggest many recipients
var groupKeywords = []string{"群", "好多人", "大家"}

// ClassifyAddressee decides whether "向<name>（<number>）发送..." addresses a
// group or a single contact. The data carries no stronger signal than digit
// count and wording, so the result is a best guess.
func ClassifyAddressee(name, number string) Classification {
	var signals []string
	confidence := 0.0

	if utf8.RuneCountInString(number) == groupNumberLength {
		signals = append(signals, "group_number_length")
		confidence += 0.6
	}

	for _, kw := range groupKeywords {
		if strings.Contains(name, kw) {
			signals = append(signals, "group_keyword:"+kw)
			confidence += 0.4
			break
		}
	}

	if len(signals) == 0 {
		return Classification{
			Type:       TypeContact,
			Confidence: 0.5,
			Signals:    []string{"default_contact"},
		}
	}

	// Cap at 1.0
	if confidence > 1.0 {
		confidence = 1.0
	}

	return Classification{
		Type:       TypeGroup,
		Confidence: confidence,
		Signals:    signals,
	}
}
