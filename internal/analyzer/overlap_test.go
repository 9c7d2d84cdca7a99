package analyzer

import (
	"testing"

	"github.com/akoskomuves/promptly/internal/session"
)

func timed(id, start, end string, tokens int) session.Record {
	return session.Record{ID: id, TicketID: "T-" + id, StartedAt: at(start), FinishedAt: atPtr(end), TotalTokens: tokens}
}

func memberIDs(g ParallelSessionGroup) []string {
	ids := make([]string, len(g.Sessions))
	for i, m := range g.Sessions {
		ids[i] = m.ID
	}
	return ids
}

func TestDetectParallelSessions_Pair(t *testing.T) {
	sessions := []session.Record{
		timed("A", "2026-01-05T10:00:00Z", "2026-01-05T11:00:00Z", 100),
		timed("B", "2026-01-05T10:30:00Z", "2026-01-05T10:45:00Z", 50),
		timed("C", "2026-01-05T12:00:00Z", "2026-01-05T13:00:00Z", 10),
		{ID: "open", StartedAt: at("2026-01-05T10:00:00Z")},
	}

	groups := DetectParallelSessions(sessions, OverlapOptions{})

	if len(groups) != 1 {
		t.Fatalf("expected 1 group, got %d", len(groups))
	}
	g := groups[0]
	if ids := memberIDs(g); len(ids) != 2 || ids[0] != "A" || ids[1] != "B" {
		t.Errorf("expected members [A B], got %v", ids)
	}
	if g.OverlapMinutes != 15 {
		t.Errorf("expected 15 overlap minutes, got %d", g.OverlapMinutes)
	}
	if g.CombinedTokens != 150 {
		t.Errorf("expected 150 combined tokens, got %d", g.CombinedTokens)
	}
	if !g.OverlapStart.Equal(at("2026-01-05T10:30:00Z")) || !g.OverlapEnd.Equal(at("2026-01-05T10:45:00Z")) {
		t.Errorf("unexpected overlap window %v - %v", g.OverlapStart, g.OverlapEnd)
	}
}

func TestDetectParallelSessions_Touching(t *testing.T) {
	sessions := []session.Record{
		timed("A", "2026-01-05T10:00:00Z", "2026-01-05T11:00:00Z", 1),
		timed("B", "2026-01-05T11:00:00Z", "2026-01-05T12:00:00Z", 1),
	}

	if groups := DetectParallelSessions(sessions, OverlapOptions{}); len(groups) != 0 {
		t.Errorf("expected touching sessions to be ignored by default, got %d groups", len(groups))
	}

	groups := DetectParallelSessions(sessions, OverlapOptions{IncludeTouching: true})
	if len(groups) != 1 {
		t.Fatalf("expected 1 touching group, got %d", len(groups))
	}
	if groups[0].OverlapMinutes != 0 {
		t.Errorf("expected 0 overlap minutes, got %d", groups[0].OverlapMinutes)
	}
}

func TestDetectParallelSessions_GrowingGroup(t *testing.T) {
	sessions := []session.Record{
		timed("C", "2026-01-05T11:00:00Z", "2026-01-05T13:00:00Z", 1),
		timed("A", "2026-01-05T10:00:00Z", "2026-01-05T12:00:00Z", 1),
		timed("B", "2026-01-05T10:30:00Z", "2026-01-05T11:30:00Z", 1),
	}

	groups := DetectParallelSessions(sessions, OverlapOptions{})

	if len(groups) != 2 {
		t.Fatalf("expected 2 groups, got %d", len(groups))
	}
	if ids := memberIDs(groups[0]); len(ids) != 2 || groups[0].OverlapMinutes != 60 {
		t.Errorf("expected {A,B} with 60 minutes first, got %v with %d", ids, groups[0].OverlapMinutes)
	}
	if ids := memberIDs(groups[1]); len(ids) != 3 || groups[1].OverlapMinutes != 30 {
		t.Errorf("expected {A,B,C} with 30 minutes second, got %v with %d", ids, groups[1].OverlapMinutes)
	}
}

func TestDetectParallelSessions_TooFew(t *testing.T) {
	groups := DetectParallelSessions([]session.Record{
		timed("A", "2026-01-05T10:00:00Z", "2026-01-05T11:00:00Z", 1),
	}, OverlapOptions{})
	if groups == nil || len(groups) != 0 {
		t.Errorf("expected empty non-nil result, got %v", groups)
	}
}
