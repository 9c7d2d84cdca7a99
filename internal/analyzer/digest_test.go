package analyzer

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/akoskomuves/promptly/internal/session"
)

func TestWeekBoundaries(t *testing.T) {
	// Wednesday.
	ref := time.Date(2026, 1, 7, 15, 30, 0, 0, time.UTC)

	b := WeekBoundaries(ref)

	if !b.CurrentStart.Equal(at("2026-01-05T00:00:00Z")) {
		t.Errorf("expected current start Jan 5, got %v", b.CurrentStart)
	}
	if !b.CurrentEnd.Equal(at("2026-01-12T00:00:00Z")) {
		t.Errorf("expected current end Jan 12, got %v", b.CurrentEnd)
	}
	if !b.PreviousStart.Equal(at("2025-12-29T00:00:00Z")) {
		t.Errorf("expected previous start Dec 29, got %v", b.PreviousStart)
	}
	if !b.PreviousEnd.Equal(b.CurrentStart) {
		t.Errorf("expected previous end to equal current start, got %v", b.PreviousEnd)
	}
}

func TestWeekBoundaries_SundayBelongsToPreviousMonday(t *testing.T) {
	b := WeekBoundaries(time.Date(2026, 1, 11, 23, 0, 0, 0, time.UTC))
	if !b.CurrentStart.Equal(at("2026-01-05T00:00:00Z")) {
		t.Errorf("expected current start Jan 5, got %v", b.CurrentStart)
	}
}

func TestCustomBoundaries(t *testing.T) {
	b := CustomBoundaries(at("2026-02-10T00:00:00Z"), at("2026-02-13T00:00:00Z"))

	if !b.PreviousStart.Equal(at("2026-02-07T00:00:00Z")) {
		t.Errorf("expected previous start Feb 7, got %v", b.PreviousStart)
	}
	if !b.PreviousEnd.Equal(at("2026-02-10T00:00:00Z")) {
		t.Errorf("expected previous end Feb 10, got %v", b.PreviousEnd)
	}
}

func TestPercentChange(t *testing.T) {
	tests := []struct {
		cur, prev float64
		want      string
	}{
		{0, 0, "nil"},
		{10, 0, "100"},
		{5, 10, "-50"},
		{7, 8, "-12"},
		{15, 10, "50"},
	}
	for _, tt := range tests {
		if got := derefInt(PercentChange(tt.cur, tt.prev)); got != tt.want {
			t.Errorf("PercentChange(%v, %v) = %s, want %s", tt.cur, tt.prev, got, tt.want)
		}
	}
}

func digestFixture() []session.Record {
	return []session.Record{
		{
			ID: "s1", TicketID: "AUTH-1", Status: session.StatusCompleted,
			StartedAt: at("2026-01-05T10:00:00Z"), FinishedAt: atPtr("2026-01-05T10:30:00Z"),
			TotalTokens: 3000, MessageCount: 20, EstimatedCost: usd("3.00"),
			UserName: "Alice", UserEmail: "alice@example.com",
			Category:     session.CategoryBugFix,
			Intelligence: scored(3.0),
			Git:          &session.GitActivity{TotalCommits: 1, TotalInsertions: 6, TotalDeletions: 1},
		},
		{
			ID: "s2", TicketID: "AUTH-2", Status: session.StatusCompleted,
			StartedAt: at("2026-01-06T09:00:00Z"), FinishedAt: atPtr("2026-01-06T10:00:00Z"),
			TotalTokens: 1000, MessageCount: 10, EstimatedCost: usd("0.75"),
			UserName:     "bob",
			Category:     session.CategoryBugFix,
			Intelligence: scored(4.0),
			Git:          &session.GitActivity{TotalCommits: 1, TotalInsertions: 4, TotalDeletions: 1},
		},
		{
			ID: "s3", TicketID: "UI-7", Status: session.StatusActive,
			StartedAt:   at("2026-01-07T08:00:00Z"),
			TotalTokens: 500, MessageCount: 5, EstimatedCost: usd("0.25"),
		},
		{
			ID: "p1", TicketID: "AUTH-0", Status: session.StatusCompleted,
			StartedAt: at("2025-12-30T10:00:00Z"), FinishedAt: atPtr("2025-12-30T11:00:00Z"),
			TotalTokens: 2000, MessageCount: 10, EstimatedCost: usd("2.00"),
			Intelligence: scored(3.0),
			Git:          &session.GitActivity{TotalCommits: 1},
		},
		{
			ID: "late", TicketID: "AUTH-9", Status: session.StatusCompleted,
			StartedAt:   at("2026-01-20T10:00:00Z"),
			TotalTokens: 99999,
		},
	}
}

func TestComputeDigest(t *testing.T) {
	d := ComputeDigest(digestFixture(), WeekBoundaries(at("2026-01-07T12:00:00Z")))

	if d.PeriodLabel != "Jan 5 – Jan 11, 2026" {
		t.Errorf("unexpected period label %q", d.PeriodLabel)
	}
	if d.PreviousLabel != "Dec 29 – Jan 4, 2026" {
		t.Errorf("unexpected previous label %q", d.PreviousLabel)
	}

	cur := d.Comparison.Current
	if cur.TotalSessions != 3 || cur.CompletedSessions != 2 {
		t.Errorf("expected 3 sessions (2 completed), got %d (%d)", cur.TotalSessions, cur.CompletedSessions)
	}
	if cur.TotalTokens != 4500 {
		t.Errorf("expected 4500 tokens, got %d", cur.TotalTokens)
	}
	if cur.TotalMessages != 35 {
		t.Errorf("expected 35 messages, got %d", cur.TotalMessages)
	}
	if cur.TotalCost != 4.0 {
		t.Errorf("expected cost 4.00, got %v", cur.TotalCost)
	}
	if cur.AvgDuration != 45 {
		t.Errorf("expected avg duration 45, got %d", cur.AvgDuration)
	}
	if cur.AvgQuality == nil || *cur.AvgQuality != 3.5 {
		t.Errorf("expected avg quality 3.5, got %v", cur.AvgQuality)
	}
	if cur.TotalCommits != 2 || cur.TotalInsertions != 10 || cur.TotalDeletions != 2 {
		t.Errorf("expected 2 commits +10/-2, got %d +%d/-%d", cur.TotalCommits, cur.TotalInsertions, cur.TotalDeletions)
	}

	ch := d.Comparison.Changes
	checks := map[string]struct {
		got  *int
		want string
	}{
		"sessions": {ch.Sessions, "200"},
		"tokens":   {ch.Tokens, "125"},
		"cost":     {ch.Cost, "100"},
		"messages": {ch.Messages, "250"},
		"quality":  {ch.Quality, "17"},
		"commits":  {ch.Commits, "100"},
	}
	for name, c := range checks {
		if got := derefInt(c.got); got != c.want {
			t.Errorf("%s change: expected %s, got %s", name, c.want, got)
		}
	}

	wantProjects := []ProjectUsage{
		{Project: "AUTH", Sessions: 2, Tokens: 4000, Cost: 3.75},
		{Project: "UI", Sessions: 1, Tokens: 500, Cost: 0.25},
	}
	if diff := cmp.Diff(wantProjects, d.TopProjects); diff != "" {
		t.Errorf("top projects mismatch (-want +got):\n%s", diff)
	}

	var devs []string
	for _, dev := range d.Developers {
		devs = append(devs, dev.Name)
	}
	if diff := cmp.Diff([]string{"local", "bob", "Alice"}, devs); diff != "" {
		t.Errorf("developer order mismatch (-want +got):\n%s", diff)
	}
	if d.Developers[2].CostPerSession != 3.0 || d.Developers[2].TokensPerSession != 3000 {
		t.Errorf("unexpected Alice efficiency: %+v", d.Developers[2])
	}
	if d.Developers[0].AvgQuality != nil {
		t.Errorf("expected nil quality for unscored developer, got %v", *d.Developers[0].AvgQuality)
	}

	wantCategories := []CategoryCount{
		{Category: session.CategoryBugFix, Sessions: 2, Tokens: 4000},
		{Category: session.CategoryOther, Sessions: 1, Tokens: 500},
	}
	if diff := cmp.Diff(wantCategories, d.TopCategories); diff != "" {
		t.Errorf("categories mismatch (-want +got):\n%s", diff)
	}

	wantHighlights := []string{
		"Sessions up 200% from last period",
		"AUTH was the busiest project (2 sessions)",
		"Quality improved from 3 to 3.5",
		"2 commits (+10/-2 lines)",
		"Token usage up 125%",
	}
	if diff := cmp.Diff(wantHighlights, d.Highlights); diff != "" {
		t.Errorf("highlights mismatch (-want +got):\n%s", diff)
	}
}

func TestComputeDigest_Empty(t *testing.T) {
	d := ComputeDigest(nil, WeekBoundaries(at("2026-01-07T12:00:00Z")))

	if d.Comparison.Current.TotalSessions != 0 {
		t.Errorf("expected no sessions, got %d", d.Comparison.Current.TotalSessions)
	}
	if d.Comparison.Changes.Sessions != nil {
		t.Errorf("expected nil session change, got %d", *d.Comparison.Changes.Sessions)
	}
	if d.Comparison.Current.AvgQuality != nil {
		t.Error("expected nil quality for an empty period")
	}
	if len(d.Highlights) != 0 {
		t.Errorf("expected no highlights, got %v", d.Highlights)
	}
	if d.TopProjects == nil || d.Developers == nil || d.TopCategories == nil {
		t.Error("expected empty, non-nil slices")
	}
}

func TestResolveDigestBounds(t *testing.T) {
	now := at("2026-01-07T12:00:00Z")

	b, err := ResolveDigestBounds(now, "", "2026-01-01", "2026-01-03")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !b.CurrentEnd.Equal(at("2026-01-04T00:00:00Z")) {
		t.Errorf("expected inclusive end Jan 4 00:00, got %v", b.CurrentEnd)
	}
	if !b.PreviousStart.Equal(at("2025-12-29T00:00:00Z")) {
		t.Errorf("expected previous start Dec 29, got %v", b.PreviousStart)
	}

	b, err = ResolveDigestBounds(now, "2025-12-31", "", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !b.CurrentStart.Equal(at("2025-12-29T00:00:00Z")) {
		t.Errorf("expected week of Dec 29, got %v", b.CurrentStart)
	}

	b, err = ResolveDigestBounds(now, "", "", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !b.CurrentStart.Equal(at("2026-01-05T00:00:00Z")) {
		t.Errorf("expected current week of Jan 5, got %v", b.CurrentStart)
	}

	for _, args := range [][3]string{
		{"tomorrow", "", ""},
		{"", "2026-01-01", ""},
		{"", "", "2026-01-01"},
		{"", "2026-01-10", "2026-01-01"},
		{"", "2026/01/01", "2026-01-02"},
	} {
		if _, err := ResolveDigestBounds(now, args[0], args[1], args[2]); err == nil {
			t.Errorf("args %q: expected error", args)
		}
	}
}
