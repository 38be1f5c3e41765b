package db

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/solvaholic/phonemine/internal/extract"
)

// Group represents a stored group of one run. Messages live in events.
type Group struct {
	RunID        string   `json:"run_id"`
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Members      []string `json:"members"`
	IsInferred   bool     `json:"is_inferred"`
	MessageCount int      `json:"message_count"`
	SourceIndex  int      `json:"source_index"`
}

// saveGroups inserts the groups of a run
func saveGroups(tx *sql.Tx, runID string, groups []extract.Group) error {
	stmt, err := tx.Prepare(`
		INSERT INTO chat_groups (run_id, id, name, members, is_inferred, message_count, source_index)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare group insert: %w", err)
	}
	defer stmt.Close()

	for _, g := range groups {
		members, err := json.Marshal(g.Members)
		if err != nil {
			return fmt.Errorf("failed to marshal members: %w", err)
		}
		if _, err := stmt.Exec(runID, g.ID, g.Name, string(members), g.IsInferred, len(g.Messages), g.SourceMessageIndex); err != nil {
			return fmt.Errorf("failed to save group %s: %w", g.ID, err)
		}
	}

	return nil
}

// GetGroups retrieves the groups of a run in first-seen order
func (db *DB) GetGroups(runID string) ([]*Group, error) {
	rows, err := db.Query(`
		SELECT run_id, id, name, members, is_inferred, message_count, source_index
		FROM chat_groups
		WHERE run_id = ?
		ORDER BY source_index, rowid
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query groups: %w", err)
	}
	defer rows.Close()

	groups := []*Group{}
	for rows.Next() {
		g := &Group{}
		var members string
		if err := rows.Scan(&g.RunID, &g.ID, &g.Name, &members, &g.IsInferred, &g.MessageCount, &g.SourceIndex); err != nil {
			return nil, fmt.Errorf("failed to scan group: %w", err)
		}

		// Decode JSON fields
		if err := json.Unmarshal([]byte(members), &g.Members); err != nil {
			return nil, fmt.Errorf("failed to unmarshal members: %w", err)
		}
		groups = append(groups, g)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating groups: %w", err)
	}

	return groups, nil
}
