package extract

import (
	"sort"

	"github.com/solvaholic/phonemine/internal/normalize"
)

// Points is the points ledger with running totals. DeclaredTotal is the
// amount of the last [总计] token, if any; it is reported as written and
// not reconciled with the computed totals.
type Points struct {
	Entries       []PointsEntry `json:"entries"`
	TotalEarned   int           `json:"total_earned"`
	TotalSpent    int           `json:"total_spent"`
	NetPoints     int           `json:"net_points"`
	DeclaredTotal *int          `json:"declared_total,omitempty"`
}

// Points collects [获得点数] and [消耗点数] entries and recomputes the totals
// from scratch
func (s *Session) Points(messages []normalize.ChatMessage) Points {
	pts := Points{Entries: []PointsEntry{}}
	for _, msg := range messages {
		var entries []PointsEntry
		for _, m := range findAll(earnedPattern, msg.Body) {
			entries = append(entries, PointsEntry{
				Type:               PointsEarned,
				Amount:             parseAmount(m.fields[0]),
				SourceMessageIndex: msg.Index,
				PositionInBody:     runeOffset(msg.Body, m.start),
			})
		}
		for _, m := range findAll(spentPattern, msg.Body) {
			entries = append(entries, PointsEntry{
				Type:               PointsSpent,
				Amount:             parseAmount(m.fields[0]),
				SourceMessageIndex: msg.Index,
				PositionInBody:     runeOffset(msg.Body, m.start),
			})
		}
		sort.SliceStable(entries, func(i, j int) bool {
			return entries[i].PositionInBody < entries[j].PositionInBody
		})
		pts.Entries = append(pts.Entries, entries...)

		for _, m := range findAll(totalPattern, msg.Body) {
			total := parseAmount(m.fields[0])
			pts.DeclaredTotal = &total
		}
	}

	for _, e := range pts.Entries {
		switch e.Type {
		case PointsEarned:
			pts.TotalEarned += e.Amount
		case PointsSpent:
			pts.TotalSpent += e.Amount
		}
	}
	pts.NetPoints = pts.TotalEarned - pts.TotalSpent
	return pts
}
