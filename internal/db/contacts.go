package db

import (
	"database/sql"
	"fmt"

	"github.com/solvaholic/phonemine/internal/extract"
)

// Contact represents a stored contact of one run
type Contact struct {
	RunID        string `json:"run_id"`
	Number       string `json:"number"`
	Name         string `json:"name"`
	Favorability int    `json:"favorability"`
	SourceIndex  int    `json:"source_index"`
	Position     int    `json:"position"`
}

// saveContacts inserts the contacts of a run
func saveContacts(tx *sql.Tx, runID string, contacts []extract.Contact) error {
	stmt, err := tx.Prepare(`
		INSERT INTO contacts (run_id, number, name, favorability, source_index, position)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare contact insert: %w", err)
	}
	defer stmt.Close()

	for _, c := range contacts {
		if _, err := stmt.Exec(runID, c.Number, c.Name, c.Favorability, c.SourceMessageIndex, c.PositionInBody); err != nil {
			return fmt.Errorf("failed to save contact %s: %w", c.Number, err)
		}
	}

	return nil
}

// GetContacts retrieves the contacts of a run in transcript order
func (db *DB) GetContacts(runID string) ([]*Contact, error) {
	return db.queryContacts(`
		SELECT run_id, number, name, favorability, source_index, position
		FROM contacts
		WHERE run_id = ?
		ORDER BY source_index, position
	`, runID)
}

// FindContactsByNumber retrieves a QQ number's contact record from every run
func (db *DB) FindContactsByNumber(number string) ([]*Contact, error) {
	return db.queryContacts(`
		SELECT c.run_id, c.number, c.name, c.favorability, c.source_index, c.position
		FROM contacts c
		JOIN runs r ON r.id = c.run_id
		WHERE c.number = ?
		ORDER BY r.extracted_at DESC
	`, number)
}

func (db *DB) queryContacts(query string, args ...interface{}) ([]*Contact, error) {
	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query contacts: %w", err)
	}
	defer rows.Close()

	contacts := []*Contact{}
	for rows.Next() {
		c := &Contact{}
		if err := rows.Scan(&c.RunID, &c.Number, &c.Name, &c.Favorability, &c.SourceIndex, &c.Position); err != nil {
			return nil, fmt.Errorf("failed to scan contact: %w", err)
		}
		contacts = append(contacts, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating contacts: %w", err)
	}

	return contacts, nil
}
