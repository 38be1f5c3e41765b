package extract

import (
	"regexp"

	"github.com/solvaholic/phonemine/internal/normalize"
)

// TaskBoard splits tasks by the token shape they came from. A task never
// appears in more than one list.
type TaskBoard struct {
	Available []Task `json:"available"`
	Accepted  []Task `json:"accepted"`
	Completed []Task `json:"completed"`
}

// Tasks collects [查看任务], [接受任务] and [完成任务] tokens
func (s *Session) Tasks(messages []normalize.ChatMessage) TaskBoard {
	board := TaskBoard{
		Available: []Task{},
		Accepted:  []Task{},
		Completed: []Task{},
	}
	for _, msg := range messages {
		board.Available = append(board.Available, detailedTasks(msg, viewTaskPattern, TaskAvailable)...)
		board.Accepted = append(board.Accepted, detailedTasks(msg, acceptTaskPattern, TaskAccepted)...)
		for _, m := range findAll(completeTaskPattern, msg.Body) {
			board.Completed = append(board.Completed, Task{
				ID:                 m.fields[0],
				Name:               m.fields[1],
				Reward:             parseAmount(m.fields[2]),
				Status:             TaskCompleted,
				SourceMessageIndex: msg.Index,
				PositionInBody:     runeOffset(msg.Body, m.start),
			})
		}
	}
	return board
}

// detailedTasks parses [tag|id|name|description|people|reward]
func detailedTasks(msg normalize.ChatMessage, re *regexp.Regexp, status string) []Task {
	var tasks []Task
	for _, m := range findAll(re, msg.Body) {
		tasks = append(tasks, Task{
			ID:                 m.fields[0],
			Name:               m.fields[1],
			Description:        m.fields[2],
			Capacity:           m.fields[3],
			Reward:             parseAmount(m.fields[4]),
			Status:             status,
			SourceMessageIndex: msg.Index,
			PositionInBody:     runeOffset(msg.Body, m.start),
		})
	}
	return tasks
}
