package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/akoskomuves/promptly/internal/session"
)

const sessionColumns = `id, ticket_id, started_at, finished_at, status,
	total_tokens, prompt_tokens, response_tokens, message_count, tool_call_count,
	conversations, models, tags, client_tool, git_activity, category,
	intelligence, user_name, user_email, created_at`

// NewSessionID returns a fresh random session id.
func NewSessionID() string {
	return uuid.NewString()
}

// CreateSession inserts an ACTIVE session for ticketID and returns it. An
// empty id gets a generated one.
func (db *DB) CreateSession(id, ticketID string, startedAt time.Time) (session.RawRecord, error) {
	if id == "" {
		id = NewSessionID()
	}
	now := session.FormatTimestamp(time.Now())
	raw := session.RawRecord{
		ID:            id,
		TicketID:      ticketID,
		StartedAt:     session.FormatTimestamp(startedAt),
		Status:        string(session.StatusActive),
		Conversations: "[]",
		Models:        "[]",
		Tags:          "[]",
		CreatedAt:     now,
	}
	if raw.StartedAt == "" {
		raw.StartedAt = now
	}

	_, err := db.conn.Exec(
		`INSERT INTO sessions (id, ticket_id, started_at, status, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		raw.ID, raw.TicketID, raw.StartedAt, raw.Status, raw.CreatedAt,
	)
	if err != nil {
		return session.RawRecord{}, fmt.Errorf("creating session: %w", err)
	}
	return raw, nil
}

// InsertRecord writes a complete session row, replacing any row with the
// same id. Used for imports and seeding.
func (db *DB) InsertRecord(raw session.RawRecord) error {
	if raw.CreatedAt == "" {
		raw.CreatedAt = session.FormatTimestamp(time.Now())
	}
	_, err := db.conn.Exec(
		`INSERT OR REPLACE INTO sessions (`+sessionColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		raw.ID, raw.TicketID, raw.StartedAt, nullString(raw.FinishedAt), defaultString(raw.Status, string(session.StatusActive)),
		raw.TotalTokens, raw.PromptTokens, raw.ResponseTokens, raw.MessageCount, raw.ToolCallCount,
		defaultString(raw.Conversations, "[]"), defaultString(raw.Models, "[]"), defaultString(raw.Tags, "[]"),
		nullString(raw.ClientTool), nullString(raw.GitActivity), nullString(raw.Category),
		nullString(raw.Intelligence), nullString(raw.UserName), nullString(raw.UserEmail), raw.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("inserting session %s: %w", raw.ID, err)
	}
	return nil
}

// GetSession returns the session with the given id, or ErrNotFound.
func (db *DB) GetSession(id string) (session.RawRecord, error) {
	row := db.conn.QueryRow("SELECT "+sessionColumns+" FROM sessions WHERE id = ?", id)
	raw, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return session.RawRecord{}, ErrNotFound
	}
	if err != nil {
		return session.RawRecord{}, fmt.Errorf("getting session %s: %w", id, err)
	}
	return raw, nil
}

// ActiveSession returns the most recently started ACTIVE session, or
// ErrNotFound when none is running.
func (db *DB) ActiveSession() (session.RawRecord, error) {
	row := db.conn.QueryRow(
		"SELECT "+sessionColumns+" FROM sessions WHERE status = ? ORDER BY started_at DESC LIMIT 1",
		string(session.StatusActive),
	)
	raw, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return session.RawRecord{}, ErrNotFound
	}
	if err != nil {
		return session.RawRecord{}, fmt.Errorf("getting active session: %w", err)
	}
	return raw, nil
}

// ListSessions returns one page of sessions, newest first.
func (db *DB) ListSessions(limit, offset int) ([]session.RawRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	return db.querySessions(
		"SELECT "+sessionColumns+" FROM sessions ORDER BY started_at DESC LIMIT ? OFFSET ?",
		limit, max(offset, 0),
	)
}

// ListAllSessions returns every session, newest first.
func (db *DB) ListAllSessions() ([]session.RawRecord, error) {
	return db.querySessions("SELECT " + sessionColumns + " FROM sessions ORDER BY started_at DESC")
}

// ListSessionsInRange returns sessions started in [from, to), newest first.
func (db *DB) ListSessionsInRange(from, to time.Time) ([]session.RawRecord, error) {
	return db.querySessions(
		"SELECT "+sessionColumns+" FROM sessions WHERE started_at >= ? AND started_at < ? ORDER BY started_at DESC",
		session.FormatTimestamp(from), session.FormatTimestamp(to),
	)
}

// ListUnenriched returns completed sessions that have no intelligence annex.
func (db *DB) ListUnenriched() ([]session.RawRecord, error) {
	return db.querySessions(
		"SELECT "+sessionColumns+" FROM sessions WHERE status = ? AND (intelligence IS NULL OR intelligence = '') ORDER BY started_at",
		string(session.StatusCompleted),
	)
}

// CountSessions returns the number of stored sessions.
func (db *DB) CountSessions() (int, error) {
	var n int
	if err := db.conn.QueryRow("SELECT COUNT(*) FROM sessions").Scan(&n); err != nil {
		return 0, fmt.Errorf("counting sessions: %w", err)
	}
	return n, nil
}

// FinishSession marks a session COMPLETED and stores its final transcript,
// counters, and git activity. Zero-value fields of raw other than the
// transcript and counters leave the stored values in place.
func (db *DB) FinishSession(raw session.RawRecord) error {
	finishedAt := raw.FinishedAt
	if finishedAt == "" {
		finishedAt = session.FormatTimestamp(time.Now())
	}
	res, err := db.conn.Exec(
		`UPDATE sessions SET
			finished_at = ?,
			status = ?,
			total_tokens = ?,
			prompt_tokens = ?,
			response_tokens = ?,
			message_count = ?,
			tool_call_count = ?,
			conversations = ?,
			models = ?,
			started_at = COALESCE(?, started_at),
			client_tool = COALESCE(?, client_tool),
			git_activity = COALESCE(?, git_activity),
			user_name = COALESCE(?, user_name),
			user_email = COALESCE(?, user_email)
		WHERE id = ?`,
		finishedAt, string(session.StatusCompleted),
		raw.TotalTokens, raw.PromptTokens, raw.ResponseTokens, raw.MessageCount, raw.ToolCallCount,
		defaultString(raw.Conversations, "[]"), defaultString(raw.Models, "[]"),
		nullString(raw.StartedAt), nullString(raw.ClientTool), nullString(raw.GitActivity),
		nullString(raw.UserName), nullString(raw.UserEmail),
		raw.ID,
	)
	if err != nil {
		return fmt.Errorf("finishing session %s: %w", raw.ID, err)
	}
	return requireAffected(res)
}

// SaveAnnex stores a session's category and intelligence. The annex is
// write-once: a session that already has intelligence returns
// ErrAnnexExists unless force is set.
func (db *DB) SaveAnnex(id string, annex Annex, force bool) error {
	res, err := db.conn.Exec(
		`UPDATE sessions SET category = ?, intelligence = ?
		WHERE id = ? AND (? OR intelligence IS NULL OR intelligence = '')`,
		nullString(annex.Category), nullString(annex.Intelligence), id, force,
	)
	if err != nil {
		return fmt.Errorf("saving annex for %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n > 0 {
		return nil
	}
	if _, err := db.GetSession(id); err != nil {
		return err
	}
	return ErrAnnexExists
}

// UpdateTags replaces a session's tags.
func (db *DB) UpdateTags(id string, tags []string) error {
	res, err := db.conn.Exec("UPDATE sessions SET tags = ? WHERE id = ?", session.EncodeStrings(tags), id)
	if err != nil {
		return fmt.Errorf("updating tags for %s: %w", id, err)
	}
	return requireAffected(res)
}

// DeleteSession removes a session.
func (db *DB) DeleteSession(id string) error {
	res, err := db.conn.Exec("DELETE FROM sessions WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting session %s: %w", id, err)
	}
	return requireAffected(res)
}

func (db *DB) querySessions(query string, args ...any) ([]session.RawRecord, error) {
	rows, err := db.conn.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying sessions: %w", err)
	}
	defer rows.Close()

	var out []session.RawRecord
	for rows.Next() {
		raw, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning session: %w", err)
		}
		out = append(out, raw)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSession(s scanner) (session.RawRecord, error) {
	var raw session.RawRecord
	var finishedAt, clientTool, git, category, intel, userName, userEmail sql.NullString
	err := s.Scan(
		&raw.ID, &raw.TicketID, &raw.StartedAt, &finishedAt, &raw.Status,
		&raw.TotalTokens, &raw.PromptTokens, &raw.ResponseTokens, &raw.MessageCount, &raw.ToolCallCount,
		&raw.Conversations, &raw.Models, &raw.Tags, &clientTool, &git, &category,
		&intel, &userName, &userEmail, &raw.CreatedAt,
	)
	if err != nil {
		return session.RawRecord{}, err
	}
	raw.FinishedAt = finishedAt.String
	raw.ClientTool = clientTool.String
	raw.GitActivity = git.String
	raw.Category = category.String
	raw.Intelligence = intel.String
	raw.UserName = userName.String
	raw.UserEmail = userEmail.String
	return raw, nil
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func defaultString(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
