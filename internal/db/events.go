package db

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/solvaholic/phonemine/internal/extract"
)

// Event represents one stored record. Payload is the record's JSON.
type Event struct {
	RunID       string          `json:"run_id"`
	Seq         int             `json:"seq"`
	Kind        string          `json:"kind"`
	SourceIndex int             `json:"source_index"`
	Position    int             `json:"position"`
	Payload     json.RawMessage `json:"payload"`
}

// saveEvents inserts records in the given order
func saveEvents(tx *sql.Tx, runID string, records []extract.Event) error {
	stmt, err := tx.Prepare(`
		INSERT INTO events (run_id, seq, kind, source_index, position, payload)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare event insert: %w", err)
	}
	defer stmt.Close()

	for seq, ev := range records {
		payload, err := json.Marshal(ev)
		if err != nil {
			return fmt.Errorf("failed to marshal %s event: %w", ev.Kind(), err)
		}
		if _, err := stmt.Exec(runID, seq, string(ev.Kind()), ev.SourceIndex(), ev.Position(), string(payload)); err != nil {
			return fmt.Errorf("failed to save event %d: %w", seq, err)
		}
	}

	return nil
}

// SelectEventsOptions defines options for selecting events
type SelectEventsOptions struct {
	RunID       *string
	Transcript  *string
	Kinds       []string
	SourceIndex *int
	Limit       int
	Offset      int
}

// SelectEvents queries stored events with filters, newest run first and in
// extraction order within a run
func (db *DB) SelectEvents(opts SelectEventsOptions) ([]*Event, error) {
	query := `
		SELECT e.run_id, e.seq, e.kind, e.source_index, e.position, e.payload
		FROM events e
		JOIN runs r ON r.id = e.run_id
		WHERE 1=1
	`
	args := []interface{}{}

	if opts.RunID != nil {
		query += " AND e.run_id = ?"
		args = append(args, *opts.RunID)
	}
	if opts.Transcript != nil {
		query += " AND r.transcript = ?"
		args = append(args, *opts.Transcript)
	}
	if len(opts.Kinds) > 0 {
		query += " AND e.kind IN (?" + strings.Repeat(", ?", len(opts.Kinds)-1) + ")"
		for _, kind := range opts.Kinds {
			args = append(args, kind)
		}
	}
	if opts.SourceIndex != nil {
		query += " AND e.source_index = ?"
		args = append(args, *opts.SourceIndex)
	}

	query += " ORDER BY r.extracted_at DESC, e.seq ASC"

	if opts.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, opts.Limit)
	} else if opts.Offset > 0 {
		// SQLite only accepts OFFSET after LIMIT
		query += " LIMIT -1"
	}
	if opts.Offset > 0 {
		query += " OFFSET ?"
		args = append(args, opts.Offset)
	}

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select events: %w", err)
	}
	defer rows.Close()

	events := []*Event{}
	for rows.Next() {
		ev := &Event{}
		var payload string
		if err := rows.Scan(&ev.RunID, &ev.Seq, &ev.Kind, &ev.SourceIndex, &ev.Position, &payload); err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		ev.Payload = json.RawMessage(payload)
		events = append(events, ev)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating events: %w", err)
	}

	return events, nil
}
