package extract

import (
	"regexp"

	"github.com/solvaholic/phonemine/internal/classify"
	"github.com/solvaholic/phonemine/internal/normalize"
)

var (
	groupSendPattern       = regexp.MustCompile(`发送群聊到群(\d+)`)
	addressedPattern       = regexp.MustCompile(`向([^（(\s]+?)[（(](\d+)[）)]发送(?:群聊|消息)`)
	userMessageAddrPattern = regexp.MustCompile(`\[我方消息\|([^|\]]+)\|(\d{5,12})\|`)
	contactAddrPattern     = regexp.MustCompile(`向([^（(\s]+?)[（(](\d{5,12})[）)]发送(?:群聊|消息)`)
	namedAddrPattern       = regexp.MustCompile(`向([^\s（()）|\[\]，,。]+?)发送(?:群聊|消息)`)
	bareNumberPattern      = regexp.MustCompile(`[（(](\d{5,12})[）)]`)
	userGroupAddrPattern   = regexp.MustCompile(`\[我方群聊消息\|([^|\]]+)\|(\d+)\|`)
	qqNumberPattern        = regexp.MustCompile(`^\d{5,12}$`)
)

// ResolveText infers the addressee from the addressing phrases in one
// message body. Rules are tried in a fixed order and the first hit wins.
// Returns nil when nothing matches.
func ResolveText(body string) *AddressTarget {
	// 1. 发送群聊到群<digits>
	if m := groupSendPattern.FindStringSubmatch(body); m != nil {
		return &AddressTarget{IsGroup: true, ID: m[1], DisplayName: "群聊" + m[1]}
	}

	// 2. 向<name>（<digits>）发送群聊|消息, group or contact by heuristic
	if m := addressedPattern.FindStringSubmatch(body); m != nil {
		c := classify.ClassifyAddressee(m[1], m[2])
		return &AddressTarget{IsGroup: c.IsGroup(), ID: m[2], DisplayName: m[1]}
	}

	// 3. A co-located [我方消息|name|number|...] token
	if m := userMessageAddrPattern.FindStringSubmatch(body); m != nil {
		return &AddressTarget{ID: m[2], DisplayName: m[1]}
	}

	// 4. 向<name>（<qq number>）发送群聊|消息
	if m := contactAddrPattern.FindStringSubmatch(body); m != nil {
		return &AddressTarget{ID: m[2], DisplayName: m[1]}
	}

	// 5. 向<name>发送群聊|消息
	if m := namedAddrPattern.FindStringSubmatch(body); m != nil {
		if qqNumberPattern.MatchString(m[1]) {
			return &AddressTarget{ID: m[1], DisplayName: "QQ用户" + m[1]}
		}
		return &AddressTarget{DisplayName: m[1]}
	}

	// 6. A bare （<qq number>）
	if m := bareNumberPattern.FindStringSubmatch(body); m != nil {
		return &AddressTarget{ID: m[1], DisplayName: "QQ用户" + m[1]}
	}

	return nil
}

// resolveHistoryText applies the in-message rules plus the group token
// shape that only counts when looking back through earlier messages
func resolveHistoryText(body string) *AddressTarget {
	if t := ResolveText(body); t != nil {
		return t
	}
	if m := userGroupAddrPattern.FindStringSubmatch(body); m != nil {
		return &AddressTarget{IsGroup: true, ID: m[2], DisplayName: m[1]}
	}
	return nil
}

// ResolveTarget infers the addressee of a sticker or image in msg. It looks
// at msg's own body first, then at earlier messages from the most recent
// backwards. Neither msg nor messages are modified.
func ResolveTarget(msg normalize.ChatMessage, messages []normalize.ChatMessage) *AddressTarget {
	if t := ResolveText(msg.Body); t != nil {
		return t
	}
	for i := len(messages) - 1; i >= 0; i-- {
		prior := messages[i]
		if prior.Index >= msg.Index {
			continue
		}
		if t := resolveHistoryText(prior.Body); t != nil {
			return t
		}
	}
	return nil
}
