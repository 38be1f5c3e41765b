// Package extract turns chat transcript text into typed records by scanning
// message bodies for bracket-delimited phone tokens such as
// [qq号|name|number|fav] or [我方消息|name|number|content|time].
//
// Every entry point is a pure pass over the messages it is given: records are
// recomputed from scratch on each call and input-shaped problems (malformed
// amounts, invalid ids, empty transcripts) degrade to defaults or empty
// collections instead of errors.
package extract

import "github.com/solvaholic/phonemine/internal/normalize"

// Result bundles the output of every entry point for one transcript
type Result struct {
	Contacts  []Contact `json:"contacts"`
	Timeline  Timeline  `json:"timeline"`
	Groups    []Group   `json:"groups"`
	Products  []Product `json:"products"`
	Tasks     TaskBoard `json:"tasks"`
	Inventory Inventory `json:"inventory"`
	Points    Points    `json:"points"`
}

// Extract runs every extractor over messages
func (s *Session) Extract(messages []normalize.ChatMessage) *Result {
	return &Result{
		Contacts:  s.Contacts(messages),
		Timeline:  s.Timeline(messages),
		Groups:    s.Groups(messages),
		Products:  s.Products(messages),
		Tasks:     s.Tasks(messages),
		Inventory: s.Inventory(messages),
		Points:    s.Points(messages),
	}
}

// Records flattens every record except contacts and groups: the timeline
// first, then products, tasks, backpack entries and points entries
func (r *Result) Records() []Event {
	records := make([]Event, 0, len(r.Timeline))
	records = append(records, r.Timeline...)
	for _, p := range r.Products {
		records = append(records, p)
	}
	for _, list := range [][]Task{r.Tasks.Available, r.Tasks.Accepted, r.Tasks.Completed} {
		for _, t := range list {
			records = append(records, t)
		}
	}
	for _, item := range r.Inventory.Items {
		records = append(records, item)
	}
	for _, u := range r.Inventory.Usages {
		records = append(records, u)
	}
	for _, e := range r.Points.Entries {
		records = append(records, e)
	}
	return records
}

// Counts summarizes a result by record kind
func (r *Result) Counts() map[string]int {
	counts := map[string]int{
		"contacts":  len(r.Contacts),
		"groups":    len(r.Groups),
		"products":  len(r.Products),
		"tasks":     len(r.Tasks.Available) + len(r.Tasks.Accepted) + len(r.Tasks.Completed),
		"inventory": len(r.Inventory.Items),
		"points":    len(r.Points.Entries),
	}
	for _, ev := range r.Timeline {
		counts[string(ev.Kind())]++
	}
	return counts
}
