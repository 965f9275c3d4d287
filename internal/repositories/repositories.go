// package repositories provides the persistence layer for fetched playlist snapshots.
package repositories

import (
	"database/sql"
	"fmt"
)

// querier is satisfied by both [sql.DB] and [sql.Tx].
type querier interface {
	QueryRow(query string, args ...any) *sql.Row
}

// NextSequence bumps the counter in <table>_sequence and returns the new value.
//
// Pass the transaction that inserts the row so the number and the row commit together.
func NextSequence(q querier, table string) (int, error) {
	var sequence int
	query := fmt.Sprintf("UPDATE %s_sequence SET value = value + 1 WHERE id = 1 RETURNING value", table)
	if err := q.QueryRow(query).Scan(&sequence); err != nil {
		return 0, fmt.Errorf("failed to increment %s sequence: %w", table, err)
	}
	return sequence, nil
}
