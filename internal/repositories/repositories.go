package repositories

import (
	"database/sql"
	"fmt"
)

// sequenceTables are the tables with a {table}_sequence counter row.
var sequenceTables = map[string]bool{"edits": true}

// NextSequence atomically increments and returns the next sequence number for the given table.
//
// Sequence numbers give edits a stable listing order that survives renames and slug changes.
func NextSequence(db *sql.DB, table string) (int, error) {
	if !sequenceTables[table] {
		return 0, fmt.Errorf("no sequence counter for table %q", table)
	}

	var sequence int
	query := "UPDATE " + table + "_sequence SET value = value + 1 WHERE id = 1 RETURNING value"
	if err := db.QueryRow(query).Scan(&sequence); err != nil {
		return 0, fmt.Errorf("failed to increment sequence: %w", err)
	}
	return sequence, nil
}
