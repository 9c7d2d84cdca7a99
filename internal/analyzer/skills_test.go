package analyzer

import (
	"testing"

	"github.com/akoskomuves/promptly/internal/session"
)

func withSkills(q float64, skills ...string) *session.Intelligence {
	in := scored(q)
	in.ToolUsage.SkillInvocations = skills
	return in
}

func TestComputeSkillUsage(t *testing.T) {
	sessions := []session.Record{
		{ID: "s1", Intelligence: withSkills(4.0, "/commit", "/review-pr")},
		{ID: "s2", Intelligence: withSkills(3.0, "/commit")},
		{ID: "s3", Intelligence: withSkills(3.0)},
		{ID: "s4"},
	}

	got := ComputeSkillUsage(sessions).Skills

	if len(got) != 2 {
		t.Fatalf("expected 2 skills, got %d", len(got))
	}

	commit := got[0]
	if commit.Name != "/commit" || commit.TotalInvocations != 2 || commit.SessionsUsed != 2 {
		t.Errorf("unexpected /commit stat: %+v", commit)
	}
	if commit.AvgQualityUsed == nil || *commit.AvgQualityUsed != 3.5 {
		t.Errorf("expected /commit quality 3.5, got %v", commit.AvgQualityUsed)
	}
	if commit.AvgQualityNotUsed == nil || *commit.AvgQualityNotUsed != 3.0 {
		t.Errorf("expected baseline 3.0, got %v", commit.AvgQualityNotUsed)
	}

	review := got[1]
	if review.Name != "/review-pr" || review.TotalInvocations != 1 || review.SessionsUsed != 1 {
		t.Errorf("unexpected /review-pr stat: %+v", review)
	}
	if review.AvgQualityUsed == nil || *review.AvgQualityUsed != 4.0 {
		t.Errorf("expected /review-pr quality 4.0, got %v", review.AvgQualityUsed)
	}
}

func TestComputeSkillUsage_NoBaseline(t *testing.T) {
	got := ComputeSkillUsage([]session.Record{
		{ID: "s1", Intelligence: withSkills(4.0, "/track")},
	}).Skills

	if len(got) != 1 {
		t.Fatalf("expected 1 skill, got %d", len(got))
	}
	if got[0].AvgQualityNotUsed != nil {
		t.Errorf("expected nil baseline, got %v", *got[0].AvgQualityNotUsed)
	}
}

func TestComputeSkillUsage_Empty(t *testing.T) {
	got := ComputeSkillUsage(nil).Skills
	if got == nil || len(got) != 0 {
		t.Errorf("expected empty non-nil skills, got %v", got)
	}
}
