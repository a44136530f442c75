// Package readmodel materializes the event log into a relational read model
// and serves queries from it.
package readmodel

import (
	"database/sql"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"
)

// DB wraps the read-model database handle.
type DB struct {
	conn *sql.DB
	dsn  string
}

// DBOption configures the database connection.
type DBOption func(*DB)

// WithDSN sets the SQLite DSN. Defaults to an in-memory database.
func WithDSN(dsn string) DBOption {
	return func(d *DB) { d.dsn = dsn }
}

// OpenDB opens the read-model database.
func OpenDB(opts ...DBOption) (*DB, error) {
	d := &DB{dsn: ":memory:"}
	for _, opt := range opts {
		opt(d)
	}

	conn, err := sql.Open("sqlite", d.dsn)
	if err != nil {
		return nil, fmt.Errorf("open read model db: %w", err)
	}
	// An in-memory SQLite database exists per connection, so the pool must
	// not hand out a second one.
	if strings.Contains(d.dsn, ":memory:") {
		conn.SetMaxOpenConns(1)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("ping read model db: %w", err)
	}
	d.conn = conn
	return d, nil
}

// Conn exposes the underlying handle for queries and transactions.
func (d *DB) Conn() *sql.DB {
	return d.conn
}

// Close closes the database.
func (d *DB) Close() error {
	return d.conn.Close()
}
