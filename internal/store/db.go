package store

import (
	"database/sql"
	"fmt"
	"net/url"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// pragmas are applied by the driver to every pooled connection. Writers wait
// on the lock for up to five seconds rather than failing with SQLITE_BUSY.
var pragmas = []string{
	"journal_mode(WAL)",
	"busy_timeout(5000)",
}

// DB is the promptly session database.
type DB struct {
	conn *sql.DB
}

// Open opens or creates the session database at dbPath, creating its parent
// directory, and migrates it to the current schema.
func Open(dbPath string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}

	conn, err := sql.Open("sqlite", dsn(dbPath))
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	return initialize(conn)
}

// OpenInMemory opens a migrated in-memory database for tests.
func OpenInMemory() (*DB, error) {
	conn, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	// Every pooled connection would get its own empty in-memory database.
	conn.SetMaxOpenConns(1)
	return initialize(conn)
}

func dsn(path string) string {
	q := url.Values{}
	for _, p := range pragmas {
		q.Add("_pragma", p)
	}
	return "file:" + path + "?" + q.Encode()
}

func initialize(conn *sql.DB) (*DB, error) {
	if err := conn.Ping(); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("connecting to database: %w", err)
	}
	db := &DB{conn: conn}
	if err := db.Migrate(); err != nil {
		_ = conn.Close()
		return nil, err
	}
	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Conn returns the underlying sql.DB.
func (db *DB) Conn() *sql.DB {
	return db.conn
}
