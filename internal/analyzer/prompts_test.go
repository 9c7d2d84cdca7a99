package analyzer

import (
	"strings"
	"testing"

	"github.com/akoskomuves/promptly/internal/session"
)

func insightsOf(pq session.PromptQuality, typ string) []session.PromptInsight {
	var out []session.PromptInsight
	for _, in := range pq.Insights {
		if in.Type == typ {
			out = append(out, in)
		}
	}
	return out
}

func TestPromptQuality_VaguePrompt(t *testing.T) {
	turns := []session.Turn{
		user("fix the bug"),
		assistant("which one?"),
		user("the login one"),
		user("on mobile"),
		assistant("ok"),
		user("still there"),
		user("please"),
	}

	pq := Analyze(AnalyzeInput{Conversations: turns}).PromptQuality

	vague := insightsOf(pq, session.InsightVaguePrompt)
	if len(vague) != 1 {
		t.Fatalf("expected 1 vague-prompt insight, got %d", len(vague))
	}
	if vague[0].TurnIndex == nil || *vague[0].TurnIndex != 0 {
		t.Errorf("expected turn index 0, got %s", derefInt(vague[0].TurnIndex))
	}
	if vague[0].Severity != session.SeverityWarning {
		t.Errorf("expected warning severity, got %q", vague[0].Severity)
	}
}

func TestPromptQuality_BackAndForth(t *testing.T) {
	turns := []session.Turn{
		user("make the header sticky"),
		assistant("done"),
		user("it jumps"),
		assistant("adjusted"),
		user("still jumps"),
		assistant("changed the offset"),
		user("nope"),
	}

	pq := Analyze(AnalyzeInput{Conversations: turns}).PromptQuality

	bf := insightsOf(pq, session.InsightBackAndForth)
	if len(bf) != 1 {
		t.Fatalf("expected 1 back-and-forth insight, got %d", len(bf))
	}
	if bf[0].TurnIndex == nil || *bf[0].TurnIndex != 6 {
		t.Errorf("expected turn index 6, got %s", derefInt(bf[0].TurnIndex))
	}
}

func TestPromptQuality_ResolutionResetsBackAndForth(t *testing.T) {
	turns := []session.Turn{
		user("make the header sticky"),
		assistant("done"),
		user("it jumps"),
		assistant("fixed, tests pass"),
		user("now the footer"),
		assistant("done"),
		user("good"),
	}

	pq := Analyze(AnalyzeInput{Conversations: turns}).PromptQuality

	if n := len(insightsOf(pq, session.InsightBackAndForth)); n != 0 {
		t.Errorf("expected no back-and-forth insight, got %d", n)
	}
}

func TestPromptQuality_MissingContext(t *testing.T) {
	tests := []struct {
		name  string
		first string
		want  bool
	}{
		{"no references", "please make the settings page load faster for users on mobile", true},
		{"short prompt", "speed up the settings page", false},
		{"file path", "please make the settings page in web/settings.tsx load faster for users on mobile", false},
		{"function name", "please make the settings page load faster, start with loadSettings() for mobile users", false},
		{"error text", "please make the settings page load faster, it throws an error for users on mobile", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pq := Analyze(AnalyzeInput{Conversations: []session.Turn{user(tt.first)}}).PromptQuality
			got := len(insightsOf(pq, session.InsightMissingContext)) == 1
			if got != tt.want {
				t.Errorf("expected missing-context=%v, got %v", tt.want, got)
			}
		})
	}
}

func TestPromptQuality_ScopeCreep(t *testing.T) {
	turns := []session.Turn{
		user("Update login handler"),
		user("Check login handler"),
		user("login handler again"),
		user("database migration pipeline caching layer analytics dashboard metrics exporter billing invoices reports"),
	}

	pq := Analyze(AnalyzeInput{Conversations: turns}).PromptQuality

	creep := insightsOf(pq, session.InsightScopeCreep)
	if len(creep) != 1 {
		t.Fatalf("expected 1 scope-creep insight, got %d", len(creep))
	}
	if creep[0].TurnIndex != nil {
		t.Errorf("expected no turn index, got %d", *creep[0].TurnIndex)
	}
}

func TestPromptQuality_ScopeCreepCountsDistinctWords(t *testing.T) {
	turns := []session.Turn{
		user("Update login handler"),
		user("Check login handler"),
		user("login handler again"),
		user(strings.Repeat("deploy staging ", 6)),
	}

	pq := Analyze(AnalyzeInput{Conversations: turns}).PromptQuality

	if creep := insightsOf(pq, session.InsightScopeCreep); len(creep) != 0 {
		t.Errorf("expected no scope-creep for two repeated new words, got %d", len(creep))
	}
}

func TestPromptQuality_LongPrompt(t *testing.T) {
	long := strings.Repeat("word ", 500) + "word"
	turns := []session.Turn{user("hello"), assistant("hi"), user(long)}

	pq := Analyze(AnalyzeInput{Conversations: turns}).PromptQuality

	lp := insightsOf(pq, session.InsightLongPrompt)
	if len(lp) != 1 {
		t.Fatalf("expected 1 long-prompt insight, got %d", len(lp))
	}
	if lp[0].TurnIndex == nil || *lp[0].TurnIndex != 2 {
		t.Errorf("expected turn index 2, got %s", derefInt(lp[0].TurnIndex))
	}
}

func TestPromptQuality_Efficiency(t *testing.T) {
	turns := []session.Turn{
		withTokens(user("Add search"), 10),
		withTokens(assistant("Added"), 80),
		withTokens(user("try again"), 10),
	}

	pq := Analyze(AnalyzeInput{Conversations: turns}).PromptQuality

	if pq.PromptEfficiency != 70 {
		t.Errorf("expected efficiency 70, got %d", pq.PromptEfficiency)
	}
	if pq.BackAndForthScore != 33 {
		t.Errorf("expected back-and-forth score 33, got %d", pq.BackAndForthScore)
	}
	if pq.AvgPromptLength != 2 {
		t.Errorf("expected avg prompt length 2, got %d", pq.AvgPromptLength)
	}
}

func TestPromptQuality_NoUserTurns(t *testing.T) {
	pq := Analyze(AnalyzeInput{Conversations: []session.Turn{assistant("hi")}}).PromptQuality

	if pq.PromptEfficiency != 100 {
		t.Errorf("expected efficiency 100, got %d", pq.PromptEfficiency)
	}
	if pq.Insights == nil || len(pq.Insights) != 0 {
		t.Errorf("expected empty non-nil insights, got %v", pq.Insights)
	}
}
