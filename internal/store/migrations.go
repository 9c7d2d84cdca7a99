package store

import "fmt"

// CurrentSchemaVersion is the schema version Migrate brings a database to.
const CurrentSchemaVersion = 2

// Migrate runs forward migrations to bring the database schema up to date.
func (db *DB) Migrate() error {
	// Create the schema_version table if it does not exist.
	if _, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER NOT NULL
		)
	`); err != nil {
		return fmt.Errorf("creating schema_version table: %w", err)
	}

	version := 0
	row := db.conn.QueryRow("SELECT version FROM schema_version LIMIT 1")
	if err := row.Scan(&version); err != nil {
		// No rows means version 0 (fresh database).
		version = 0
	}

	migrations := []struct {
		version    int
		statements []string
	}{
		{1, v1Statements},
		{2, v2Statements},
	}
	for _, m := range migrations {
		if version >= m.version {
			continue
		}
		if err := db.migrate(m.version, m.statements); err != nil {
			return fmt.Errorf("migration v%d: %w", m.version, err)
		}
	}

	return nil
}

// SchemaVersion returns the applied schema version.
func (db *DB) SchemaVersion() (int, error) {
	var v int
	err := db.conn.QueryRow("SELECT version FROM schema_version LIMIT 1").Scan(&v)
	return v, err
}

// v1Statements create the base sessions table.
var v1Statements = []string{
	`CREATE TABLE IF NOT EXISTS sessions (
		id              TEXT PRIMARY KEY,
		ticket_id       TEXT NOT NULL,
		started_at      TEXT NOT NULL,
		finished_at     TEXT,
		status          TEXT NOT NULL DEFAULT 'ACTIVE',
		total_tokens    INTEGER NOT NULL DEFAULT 0,
		prompt_tokens   INTEGER NOT NULL DEFAULT 0,
		response_tokens INTEGER NOT NULL DEFAULT 0,
		message_count   INTEGER NOT NULL DEFAULT 0,
		tool_call_count INTEGER NOT NULL DEFAULT 0,
		conversations   TEXT NOT NULL DEFAULT '[]',
		models          TEXT NOT NULL DEFAULT '[]',
		tags            TEXT NOT NULL DEFAULT '[]',
		client_tool     TEXT,
		created_at      TEXT NOT NULL
	)`,

	// Indexes.
	`CREATE INDEX IF NOT EXISTS idx_sessions_started_at ON sessions(started_at)`,
	`CREATE INDEX IF NOT EXISTS idx_sessions_status ON sessions(status)`,
}

// v2Statements add git activity, the derived annex, and developer identity.
// Nested structures are stored as JSON text.
var v2Statements = []string{
	`ALTER TABLE sessions ADD COLUMN git_activity TEXT`,
	`ALTER TABLE sessions ADD COLUMN category TEXT`,
	`ALTER TABLE sessions ADD COLUMN intelligence TEXT`,
	`ALTER TABLE sessions ADD COLUMN user_name TEXT`,
	`ALTER TABLE sessions ADD COLUMN user_email TEXT`,
	`CREATE INDEX IF NOT EXISTS idx_sessions_ticket ON sessions(ticket_id)`,
}

// migrate applies one schema version in a single transaction.
func (db *DB) migrate(version int, statements []string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, stmt := range statements {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("executing %q: %w", stmt[:min(40, len(stmt))], err)
		}
	}

	// Set schema version.
	if _, err := tx.Exec("DELETE FROM schema_version"); err != nil {
		return err
	}
	if _, err := tx.Exec("INSERT INTO schema_version (version) VALUES (?)", version); err != nil {
		return err
	}

	return tx.Commit()
}
