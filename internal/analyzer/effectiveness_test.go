package analyzer

import (
	"testing"

	"github.com/akoskomuves/promptly/internal/session"
)

func qualitySession(id, started string, q float64) session.Record {
	return session.Record{ID: id, TicketID: "DOC-" + id, StartedAt: at(started), Intelligence: scored(q)}
}

func withInstructionChange(r session.Record, files ...string) session.Record {
	r.Git = &session.GitActivity{InstructionFileChanges: files}
	return r
}

func TestComputeInstructionEffectiveness_Improved(t *testing.T) {
	sessions := []session.Record{
		qualitySession("5", "2026-01-12T10:00:00Z", 4.5),
		qualitySession("1", "2026-01-01T10:00:00Z", 2.0),
		qualitySession("2", "2026-01-02T10:00:00Z", 2.5),
		qualitySession("3", "2026-01-03T10:00:00Z", 3.0),
		withInstructionChange(qualitySession("4", "2026-01-10T10:00:00Z", 4.0), "CLAUDE.md"),
	}

	r := ComputeInstructionEffectiveness(sessions)

	if r.Verdict != VerdictImproved {
		t.Errorf("expected improved, got %q", r.Verdict)
	}
	want := "Quality improved from 2.5 to 4.3 after instruction file updates."
	if r.Message != want {
		t.Errorf("expected message %q, got %q", want, r.Message)
	}
	if len(r.Changes) != 1 || r.Changes[0].SessionID != "4" || r.Changes[0].Files[0] != "CLAUDE.md" {
		t.Errorf("unexpected changes: %+v", r.Changes)
	}
}

func TestComputeInstructionEffectiveness_Declined(t *testing.T) {
	sessions := []session.Record{
		qualitySession("1", "2026-01-01T10:00:00Z", 4.0),
		withInstructionChange(qualitySession("2", "2026-01-05T10:00:00Z", 3.0), "AGENTS.md"),
	}

	r := ComputeInstructionEffectiveness(sessions)
	if r.Verdict != VerdictDeclined {
		t.Errorf("expected declined, got %q", r.Verdict)
	}
}

func TestComputeInstructionEffectiveness_Stable(t *testing.T) {
	sessions := []session.Record{
		qualitySession("1", "2026-01-01T10:00:00Z", 3.0),
		withInstructionChange(qualitySession("2", "2026-01-05T10:00:00Z", 3.1), "CLAUDE.md"),
	}

	r := ComputeInstructionEffectiveness(sessions)

	if r.Verdict != VerdictStable {
		t.Errorf("expected stable, got %q", r.Verdict)
	}
	want := "Quality remained stable (3 -> 3.1) after instruction file updates."
	if r.Message != want {
		t.Errorf("expected message %q, got %q", want, r.Message)
	}
}

func TestComputeInstructionEffectiveness_PivotAtFirstSession(t *testing.T) {
	sessions := []session.Record{
		withInstructionChange(qualitySession("1", "2026-01-01T10:00:00Z", 3.0), "CLAUDE.md"),
		qualitySession("2", "2026-01-02T10:00:00Z", 4.0),
	}

	r := ComputeInstructionEffectiveness(sessions)

	if r.Verdict != VerdictNotEnoughData {
		t.Errorf("expected not_enough_data, got %q", r.Verdict)
	}
	if r.BeforeAvgQuality != nil {
		t.Errorf("expected nil before quality, got %v", *r.BeforeAvgQuality)
	}
}

func TestComputeInstructionEffectiveness_NoChanges(t *testing.T) {
	r := ComputeInstructionEffectiveness([]session.Record{
		qualitySession("1", "2026-01-01T10:00:00Z", 3.0),
	})

	if r.Verdict != VerdictNoChanges {
		t.Errorf("expected no_changes, got %q", r.Verdict)
	}
	if r.Changes == nil {
		t.Error("expected empty non-nil changes")
	}
}

func TestComputeInstructionEffectiveness_WindowLimit(t *testing.T) {
	var sessions []session.Record
	// Only the last five scored sessions before the edit count.
	start := at("2026-01-01T10:00:00Z")
	for i, q := range []float64{1, 1, 5, 5, 5, 5, 5} {
		sessions = append(sessions, session.Record{
			ID:           string(rune('a' + i)),
			StartedAt:    start.AddDate(0, 0, i),
			Intelligence: scored(q),
		})
	}
	sessions = append(sessions, withInstructionChange(qualitySession("z", "2026-02-01T10:00:00Z", 5.0), "CLAUDE.md"))

	r := ComputeInstructionEffectiveness(sessions)

	if r.BeforeAvgQuality == nil || *r.BeforeAvgQuality != 5.0 {
		t.Errorf("expected before quality 5.0 from the last five sessions, got %v", r.BeforeAvgQuality)
	}
}
