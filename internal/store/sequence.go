package store

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
)

// sequenceCounter hands out one monotonic sequence shared by all event
// tables, so rows of different tables can be ordered against each other.
// The counter lives in SQL rather than ent because it must be incremented
// inside the transaction that writes the rows.
type sequenceCounter struct {
	mu sync.Mutex
}

type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func newSequenceCounter(ctx context.Context, db *sql.DB) (*sequenceCounter, error) {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS global_sequence (
			id INTEGER PRIMARY KEY CHECK (id = 1),
			next_val INTEGER NOT NULL DEFAULT 1
		)`,
		`INSERT OR IGNORE INTO global_sequence (id, next_val) VALUES (1, 1)`,
	}
	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return nil, fmt.Errorf("init sequence: %w", err)
		}
	}
	return &sequenceCounter{}, nil
}

// next returns the next sequence number using q, which may be a
// transaction.
func (sc *sequenceCounter) next(ctx context.Context, q querier) (int64, error) {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	var seq int64
	err := q.QueryRowContext(ctx,
		`UPDATE global_sequence SET next_val = next_val + 1 WHERE id = 1 RETURNING next_val - 1`,
	).Scan(&seq)
	if err != nil {
		return 0, fmt.Errorf("next sequence: %w", err)
	}
	return seq, nil
}
