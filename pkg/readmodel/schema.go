package readmodel

import (
	"context"
	"fmt"
)

var tables = []string{"last_recorded_event_position", "training_session_player", "training_session", "collective_player", "collective", "player", "club", "user"}

const schema = `
CREATE TABLE IF NOT EXISTS last_recorded_event_position (
	id INTEGER PRIMARY KEY,
	position INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS user (
	id TEXT PRIMARY KEY,
	email TEXT,
	first_name TEXT,
	last_name TEXT,
	name TEXT
);

CREATE TABLE IF NOT EXISTS club (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	registration_number TEXT,
	owner_id TEXT REFERENCES user(id),
	number_of_players INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS collective (
	id TEXT PRIMARY KEY,
	club_id TEXT NOT NULL REFERENCES club(id),
	name TEXT NOT NULL,
	description TEXT,
	number_of_players INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS player (
	id TEXT PRIMARY KEY,
	club_id TEXT REFERENCES club(id),
	first_name TEXT NOT NULL,
	last_name TEXT NOT NULL,
	gender TEXT NOT NULL,
	date_of_birth TEXT NOT NULL,
	license_number TEXT,
	license_type TEXT,
	season TEXT
);

CREATE TABLE IF NOT EXISTS collective_player (
	collective_id TEXT NOT NULL REFERENCES collective(id),
	player_id TEXT NOT NULL REFERENCES player(id),
	PRIMARY KEY (collective_id, player_id)
);

CREATE TABLE IF NOT EXISTS training_session (
	id TEXT PRIMARY KEY,
	club_id TEXT NOT NULL REFERENCES club(id),
	start_time TEXT NOT NULL,
	end_time TEXT NOT NULL,
	cancelled INTEGER NOT NULL DEFAULT 0,
	number_of_players_present INTEGER NOT NULL DEFAULT 0,
	number_of_players_absent INTEGER NOT NULL DEFAULT 0,
	number_of_players_late INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS training_session_player (
	training_session_id TEXT NOT NULL REFERENCES training_session(id),
	player_id TEXT NOT NULL REFERENCES player(id),
	status TEXT NOT NULL,
	reason TEXT,
	with_reason INTEGER NOT NULL DEFAULT 0,
	arrival_time TEXT,
	PRIMARY KEY (training_session_id, player_id)
);
`

// Migrate creates the read-model tables when missing.
func (d *DB) Migrate(ctx context.Context) error {
	if _, err := d.conn.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("create read model schema: %w", err)
	}
	return nil
}

// Reset drops every read-model table and recreates the schema, so the
// worker re-tails the log from position zero.
func (d *DB) Reset(ctx context.Context) error {
	for _, table := range tables {
		if _, err := d.conn.ExecContext(ctx, "DROP TABLE IF EXISTS "+table); err != nil {
			return fmt.Errorf("drop %s: %w", table, err)
		}
	}
	return d.Migrate(ctx)
}
