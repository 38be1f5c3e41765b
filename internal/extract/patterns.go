package extract

import (
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Token fields never contain the delimiters themselves
const field = `([^|\]]*)`

const (
	stickerKeyword  = "表情包"
	redPacketPrefix = "红包："
	voicePrefix     = "语音："
)

// tokenPattern builds `[tag|f1|...|fn]` with one capture group per field
func tokenPattern(tag string, fields int) *regexp.Regexp {
	var b strings.Builder
	b.WriteString(`\[`)
	b.WriteString(regexp.QuoteMeta(tag))
	for i := 0; i < fields; i++ {
		b.WriteString(`\|`)
		b.WriteString(field)
	}
	b.WriteString(`\]`)
	return regexp.MustCompile(b.String())
}

var (
	contactPattern = tokenPattern("qq号", 3)

	userMessagePattern  = tokenPattern("我方消息", 4)
	otherMessagePattern = tokenPattern("对方消息", 4)

	userGroupMessagePattern = tokenPattern("我方群聊消息", 5)
	groupMessagePattern     = tokenPattern("群聊消息", 4)
	createGroupPattern      = tokenPattern("创建群聊", 3)

	// Stickers carried inside direct-message tokens. The 6-field form has a time.
	sticker6Pattern = regexp.MustCompile(`\[(我方消息|对方消息)\|` + field + `\|` + field + `\|表情包\|` + field + `\|` + field + `\]`)
	sticker5Pattern = regexp.MustCompile(`\[(我方消息|对方消息)\|` + field + `\|` + field + `\|表情包\|` + field + `\]`)
	stickerPattern  = tokenPattern("表情包", 2)

	privateRedPattern   = regexp.MustCompile(`\[(我方消息|对方消息)\|` + field + `\|` + field + `\|红包：` + field + `\|` + field + `\]`)
	groupRedPattern     = regexp.MustCompile(`\[群聊消息\|` + field + `\|` + field + `\|红包：` + field + `\|` + field + `\]`)
	userGroupRedPattern = regexp.MustCompile(`\[我方群聊消息\|` + field + `\|` + field + `\|` + field + `\|红包：` + field + `\|` + field + `\]`)

	product4Pattern = tokenPattern("商品", 4)
	product3Pattern = tokenPattern("商品", 3)

	viewTaskPattern     = tokenPattern("查看任务", 5)
	acceptTaskPattern   = tokenPattern("接受任务", 5)
	completeTaskPattern = tokenPattern("完成任务", 3)

	// Labels accept both ASCII and full-width colons
	inventoryPattern = regexp.MustCompile(`\[背包物品\|物品名称[:：]` + field + `\|物品类型[:：]` + field + `\|物品数量[:：]` + field + `\|物品描述[:：]` + field + `\]`)
	itemUsePattern   = regexp.MustCompile(`\[物品使用\|物品名称[:：]` + field + `\|使用数量[:：]` + field + `\]`)

	totalPattern  = tokenPattern("总计", 1)
	earnedPattern = tokenPattern("获得点数", 1)
	spentPattern  = tokenPattern("消耗点数", 1)

	anyTokenPattern = regexp.MustCompile(`\[[^\[\]]*\]`)
)

// match is one regex hit. Start and end are byte offsets; fields are trimmed
// capture groups in order.
type match struct {
	start  int
	end    int
	fields []string
}

// findAll returns every non-overlapping match of re in body. Each call
// iterates afresh, so no state is shared between scans.
func findAll(re *regexp.Regexp, body string) []match {
	locs := re.FindAllStringSubmatchIndex(body, -1)
	matches := make([]match, 0, len(locs))
	for _, loc := range locs {
		m := match{start: loc[0], end: loc[1]}
		for g := 2; g+1 < len(loc); g += 2 {
			if loc[g] < 0 {
				m.fields = append(m.fields, "")
				continue
			}
			m.fields = append(m.fields, strings.TrimSpace(body[loc[g]:loc[g+1]]))
		}
		matches = append(matches, m)
	}
	return matches
}

// overlaps reports whether m intersects any of the spans
func (m match) overlaps(spans []match) bool {
	for _, s := range spans {
		if m.start < s.end && s.start < m.end {
			return true
		}
	}
	return false
}

// runeOffset converts a byte offset in body to a character offset
func runeOffset(body string, byteOffset int) int {
	if byteOffset > len(body) {
		byteOffset = len(body)
	}
	return utf8.RuneCountInString(body[:byteOffset])
}

// parseAmount reads the leading decimal digits of s. Anything else is 0.
func parseAmount(s string) int {
	s = strings.TrimSpace(s)
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0
	}
	return n
}

// splitVoice detects the voice prefix. Content itself is never altered.
func splitVoice(content string) (bool, string) {
	if strings.HasPrefix(content, voicePrefix) {
		return true, strings.TrimPrefix(content, voicePrefix)
	}
	return false, ""
}

// excludedContent reports content that a more specific family owns
func excludedContent(content string) bool {
	return content == stickerKeyword || strings.HasPrefix(content, redPacketPrefix)
}
