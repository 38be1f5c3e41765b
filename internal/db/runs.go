package db

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/solvaholic/phonemine/internal/extract"
	"github.com/solvaholic/phonemine/internal/normalize"
)

// Run is one stored extraction of a transcript
type Run struct {
	ID           string    `json:"id"`
	Transcript   string    `json:"transcript"`
	Format       string    `json:"format"`
	MessageCount int       `json:"message_count"`
	ExtractedAt  time.Time `json:"extracted_at"`
}

// PointsSummary is the stored points ledger totals of a run
type PointsSummary struct {
	RunID         string `json:"run_id"`
	TotalEarned   int    `json:"total_earned"`
	TotalSpent    int    `json:"total_spent"`
	NetPoints     int    `json:"net_points"`
	DeclaredTotal *int   `json:"declared_total,omitempty"`
}

// SaveResult stores result as the run for the transcript's source path,
// replacing any earlier run of the same path. Everything is written in one
// transaction.
func (db *DB) SaveResult(transcript *normalize.Transcript, result *extract.Result) (*Run, error) {
	if transcript.Source == "" {
		return nil, fmt.Errorf("transcript source path is required")
	}

	run := &Run{
		ID:           uuid.NewString(),
		Transcript:   transcript.Source,
		Format:       transcript.Format,
		MessageCount: len(transcript.Messages),
		ExtractedAt:  time.Now().UTC(),
	}

	tx, err := db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	// Rollback after Commit is a no-op
	defer tx.Rollback()

	if err := deleteRunsForTranscript(tx, run.Transcript); err != nil {
		return nil, err
	}

	_, err = tx.Exec(`
		INSERT INTO runs (id, transcript, format, message_count, extracted_at)
		VALUES (?, ?, ?, ?, ?)
	`, run.ID, run.Transcript, run.Format, run.MessageCount, run.ExtractedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to save run: %w", err)
	}

	if err := saveContacts(tx, run.ID, result.Contacts); err != nil {
		return nil, err
	}
	if err := saveGroups(tx, run.ID, result.Groups); err != nil {
		return nil, err
	}
	if err := saveEvents(tx, run.ID, result.Records()); err != nil {
		return nil, err
	}

	pts := result.Points
	_, err = tx.Exec(`
		INSERT INTO points (run_id, total_earned, total_spent, net_points, declared_total)
		VALUES (?, ?, ?, ?, ?)
	`, run.ID, pts.TotalEarned, pts.TotalSpent, pts.NetPoints, pts.DeclaredTotal)
	if err != nil {
		return nil, fmt.Errorf("failed to save points: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit run: %w", err)
	}

	return run, nil
}

// deleteRunsForTranscript removes every stored row of earlier runs of path
func deleteRunsForTranscript(tx *sql.Tx, path string) error {
	for _, table := range []string{"contacts", "chat_groups", "events", "points"} {
		_, err := tx.Exec(
			"DELETE FROM "+table+" WHERE run_id IN (SELECT id FROM runs WHERE transcript = ?)",
			path,
		)
		if err != nil {
			return fmt.Errorf("failed to delete previous %s: %w", table, err)
		}
	}

	if _, err := tx.Exec("DELETE FROM runs WHERE transcript = ?", path); err != nil {
		return fmt.Errorf("failed to delete previous run: %w", err)
	}

	return nil
}

// GetRun retrieves a run by ID
func (db *DB) GetRun(id string) (*Run, error) {
	return db.getRun("id", id)
}

// GetRunByTranscript retrieves the run stored for a transcript path
func (db *DB) GetRunByTranscript(path string) (*Run, error) {
	return db.getRun("transcript", path)
}

func (db *DB) getRun(column, value string) (*Run, error) {
	run := &Run{}

	err := db.QueryRow(`
		SELECT id, transcript, format, message_count, extracted_at
		FROM runs
		WHERE `+column+` = ?
	`, value).Scan(&run.ID, &run.Transcript, &run.Format, &run.MessageCount, &run.ExtractedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}

	return run, nil
}

// ListRuns returns stored runs, newest first. A non-nil since keeps only
// runs extracted at or after it.
func (db *DB) ListRuns(since *time.Time) ([]*Run, error) {
	query := `
		SELECT id, transcript, format, message_count, extracted_at
		FROM runs
	`
	args := []interface{}{}
	if since != nil {
		query += " WHERE extracted_at >= ?"
		args = append(args, since.UTC())
	}
	query += " ORDER BY extracted_at DESC"

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	runs := []*Run{}
	for rows.Next() {
		run := &Run{}
		if err := rows.Scan(&run.ID, &run.Transcript, &run.Format, &run.MessageCount, &run.ExtractedAt); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, run)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating runs: %w", err)
	}

	return runs, nil
}

// GetPoints retrieves the points totals of a run
func (db *DB) GetPoints(runID string) (*PointsSummary, error) {
	pts := &PointsSummary{}
	var declared sql.NullInt64

	err := db.QueryRow(`
		SELECT run_id, total_earned, total_spent, net_points, declared_total
		FROM points
		WHERE run_id = ?
	`, runID).Scan(&pts.RunID, &pts.TotalEarned, &pts.TotalSpent, &pts.NetPoints, &declared)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get points: %w", err)
	}

	if declared.Valid {
		total := int(declared.Int64)
		pts.DeclaredTotal = &total
	}

	return pts, nil
}
