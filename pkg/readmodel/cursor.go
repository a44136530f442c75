package readmodel

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// The cursor is the global position of the next event to project. It lives
// in the read-model database so it commits atomically with the projection
// writes of the event it covers.

// LoadCursor returns the worker's resume position, 0 when none was saved.
func LoadCursor(ctx context.Context, conn *sql.DB) (int64, error) {
	var position int64
	err := conn.QueryRowContext(ctx,
		`SELECT position FROM last_recorded_event_position WHERE id = 1`).Scan(&position)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("load cursor: %w", err)
	}
	return position, nil
}

// SaveCursorTx upserts the cursor inside the projection transaction.
func SaveCursorTx(ctx context.Context, tx *sql.Tx, position int64) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO last_recorded_event_position (id, position) VALUES (1, ?)
		 ON CONFLICT (id) DO UPDATE SET position = excluded.position`, position)
	if err != nil {
		return fmt.Errorf("save cursor: %w", err)
	}
	return nil
}
