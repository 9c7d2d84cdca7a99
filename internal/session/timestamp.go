package session

import (
	"regexp"
	"time"
)

// ParseTimestamp parses the timestamp formats written by session recorders.
// Returns the zero time if s is empty or unparseable.
func ParseTimestamp(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		t, err = time.Parse(time.RFC3339, s)
		if err != nil {
			// SQLite datetime('now') and naive ISO strings carry no zone.
			t, err = time.Parse("2006-01-02T15:04:05", s)
			if err != nil {
				t, err = time.Parse("2006-01-02 15:04:05", s)
				if err != nil {
					return time.Time{}
				}
			}
		}
	}
	return t
}

// storedLayout has fixed-width milliseconds so stored timestamps sort
// lexicographically in time order.
const storedLayout = "2006-01-02T15:04:05.000Z07:00"

// FormatTimestamp renders t the way the store persists it, in UTC with
// millisecond precision: "2026-01-05T10:00:00.000Z".
func FormatTimestamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(storedLayout)
}

var projectSuffix = regexp.MustCompile(`^(.+)-\d+$`)

// ExtractProject derives the project key from a ticket id by stripping its
// trailing numeric suffix: "AUTH-123" yields "AUTH". Ticket ids without a
// numeric suffix have no project.
func ExtractProject(ticketID string) (string, bool) {
	m := projectSuffix.FindStringSubmatch(ticketID)
	if m == nil {
		return "", false
	}
	return m[1], true
}
