package extract

import (
	"regexp"
	"sort"
	"strings"

	"github.com/solvaholic/phonemine/internal/normalize"
)

// Group is a group conversation and its message history.
// IsInferred groups were never declared with [创建群聊]; their name is a guess
// until a message carrying the real name is seen.
type Group struct {
	ID                 string         `json:"id"`
	Name               string         `json:"name"`
	Members            []string       `json:"members"`
	Messages           []GroupMessage `json:"messages"`
	IsInferred         bool           `json:"is_inferred"`
	SourceMessageIndex int            `json:"source_message_index"`
}

// Contexts used when reporting invalid group ids
const (
	contextCreateGroup    = "create_group"
	contextGroupMessage   = "group_message"
	contextGroupRedPacket = "group_red_packet"
)

var (
	chatWithPattern  = regexp.MustCompile(`和([^\s，。,.!！?？\[\]|]{1,12}?)的聊天`)
	groupChatPattern = regexp.MustCompile(`([^\s，。,.!！?？、：:\[\]|（()）]{1,12})群聊`)
	memberSeparators = regexp.MustCompile(`[、,，;；]`)
)

type groupItem struct {
	position int
	apply    func()
}

// Groups folds [创建群聊] tokens and group messages into one record per
// group id, in the order groups were first seen. Declarations are
// last-write-wins. Messages referencing an undeclared id create an inferred
// group. Records with an invalid id are dropped.
func (s *Session) Groups(messages []normalize.ChatMessage) []Group {
	var order []*Group
	byID := make(map[string]*Group)
	var guesser *nameGuesser

	ensure := func(id string, index int) *Group {
		if g, ok := byID[id]; ok {
			return g
		}
		if guesser == nil {
			guesser = newNameGuesser(messages)
		}
		g := &Group{
			ID:                 id,
			Name:               guesser.guess(id),
			Members:            []string{},
			Messages:           []GroupMessage{},
			IsInferred:         true,
			SourceMessageIndex: index,
		}
		byID[id] = g
		order = append(order, g)
		return g
	}

	for _, msg := range messages {
		var items []groupItem

		for _, m := range findAll(createGroupPattern, msg.Body) {
			id, name, members := m.fields[0], m.fields[1], splitMembers(m.fields[2])
			index := msg.Index
			items = append(items, groupItem{
				position: runeOffset(msg.Body, m.start),
				apply: func() {
					if !s.admitGroupID(id, contextCreateGroup) {
						return
					}
					g, ok := byID[id]
					if !ok {
						g = &Group{ID: id, Messages: []GroupMessage{}, SourceMessageIndex: index}
						byID[id] = g
						order = append(order, g)
					}
					g.Name = name
					if g.Name == "" {
						g.Name = "群聊" + id
					}
					g.Members = members
					g.IsInferred = false
				},
			})
		}

		for _, ev := range s.scanConversation(msg) {
			switch e := ev.(type) {
			case GroupMessage:
				gm := e
				items = append(items, groupItem{
					position: gm.PositionInBody,
					apply: func() {
						if !s.admitGroupID(gm.GroupID, contextGroupMessage) {
							return
						}
						g := ensure(gm.GroupID, gm.SourceMessageIndex)
						if g.IsInferred && gm.GroupName != "" {
							g.Name = gm.GroupName
							g.IsInferred = false
						}
						g.Messages = append(g.Messages, gm)
					},
				})
			case RedPacketMessage:
				if e.Scope != ScopeGroup {
					continue
				}
				rp := e
				items = append(items, groupItem{
					position: rp.PositionInBody,
					apply: func() {
						if s.admitGroupID(rp.Counterpart, contextGroupRedPacket) {
							ensure(rp.Counterpart, rp.SourceMessageIndex)
						}
					},
				})
			}
		}

		sort.SliceStable(items, func(i, j int) bool {
			return items[i].position < items[j].position
		})
		for _, item := range items {
			item.apply()
		}
	}

	groups := make([]Group, 0, len(order))
	for _, g := range order {
		sort.SliceStable(g.Messages, func(i, j int) bool {
			a, b := g.Messages[i], g.Messages[j]
			if a.SourceMessageIndex != b.SourceMessageIndex {
				return a.SourceMessageIndex < b.SourceMessageIndex
			}
			return a.PositionInBody < b.PositionInBody
		})
		groups = append(groups, *g)
	}
	return groups
}

func splitMembers(raw string) []string {
	members := []string{}
	for _, m := range memberSeparators.Split(raw, -1) {
		if m = strings.TrimSpace(m); m != "" {
			members = append(members, m)
		}
	}
	return members
}

// nameGuesser looks for a group name in the narrative text of a transcript,
// i.e. everything outside bracket tokens
type nameGuesser struct {
	text string
}

func newNameGuesser(messages []normalize.ChatMessage) *nameGuesser {
	var b strings.Builder
	for _, msg := range messages {
		b.WriteString(anyTokenPattern.ReplaceAllString(msg.Body, " "))
		b.WriteString("\n")
	}
	return &nameGuesser{text: b.String()}
}

// Verbs that precede 群聊 in addressing phrases and are never names
var groupNameStopSuffixes = []string{"发送", "创建", "进入", "退出", "我方"}

func (g *nameGuesser) guess(id string) string {
	// <name>（<id>）
	byID := regexp.MustCompile(`([^\s，。,.!！?？、：:\[\]|（()）]{1,12})[（(]` + regexp.QuoteMeta(id) + `[）)]`)
	if m := byID.FindStringSubmatch(g.text); m != nil {
		if name := strings.TrimPrefix(m[1], "向"); name != "" {
			return name
		}
	}

	// 和<name>的聊天
	if m := chatWithPattern.FindStringSubmatch(g.text); m != nil {
		return m[1]
	}

	// <name>群聊
	for _, m := range groupChatPattern.FindAllStringSubmatch(g.text, -1) {
		name := m[1]
		if stopName(name) {
			continue
		}
		return name
	}

	return "群聊" + id
}

func stopName(name string) bool {
	for _, suffix := range groupNameStopSuffixes {
		if strings.HasSuffix(name, suffix) {
			return true
		}
	}
	return false
}
