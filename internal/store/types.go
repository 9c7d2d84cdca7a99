// Package store provides SQLite database access for promptly sessions.
package store

import "errors"

var (
	// ErrNotFound is returned when a session id does not exist.
	ErrNotFound = errors.New("session not found")

	// ErrAnnexExists is returned when a session already carries an
	// intelligence annex and the caller did not force an overwrite.
	ErrAnnexExists = errors.New("session already enriched")
)

// Annex is the derived data attached to a finished session.
type Annex struct {
	Category     string
	Intelligence string
}
