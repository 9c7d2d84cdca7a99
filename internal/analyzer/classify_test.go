package analyzer

import (
	"testing"

	"github.com/akoskomuves/promptly/internal/session"
)

func commits(msgs ...string) *session.GitActivity {
	g := &session.GitActivity{Branch: "main"}
	for _, m := range msgs {
		g.Commits = append(g.Commits, session.GitCommit{Message: m})
	}
	return g
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name   string
		ticket string
		git    *session.GitActivity
		first  string
		want   session.Category
	}{
		{"ticket fix prefix", "FIX-42", nil, "", session.CategoryBugFix},
		{"ticket feature branch", "feature/dark-mode", commits("fix: x"), "", session.CategoryFeature},
		{"ticket docs", "docs/readme", nil, "", session.CategoryDocs},
		{"ticket spike", "spike-cache", nil, "", session.CategoryInvestigation},
		{"commit majority", "PROJ-1", commits("fix: a", "fix: b", "fix: c", "feat: d"), "", session.CategoryBugFix},
		{"commit tie first seen", "PROJ-1", commits("fix: a", "feat: b", "fix: c", "feat: d"), "", session.CategoryBugFix},
		{"scoped commit", "PROJ-1", commits("feat(api): x", "chore: y"), "", session.CategoryFeature},
		{"breaking commit", "PROJ-1", commits("refactor!: drop v1"), "", session.CategoryRefactor},
		{"no majority falls through", "PROJ-1", commits("fix: a", "feat: b", "refactor: c"), "improve test coverage of the cache", session.CategoryTesting},
		{"message feature", "PROJ-1", nil, "Can you add a dark mode toggle?", session.CategoryFeature},
		{"message bug", "PROJ-1", nil, "The app CRASHES on start, crash log attached", session.CategoryBugFix},
		{"message investigation", "PROJ-1", nil, "help me understand the scheduler", session.CategoryInvestigation},
		{"no signal", "PROJ-1", commits("wip"), "hello there", session.CategoryOther},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var turns []session.Turn
			if tt.first != "" {
				turns = []session.Turn{assistant("hi"), user(tt.first)}
			}
			got := Classify(tt.ticket, tt.git, turns)
			if got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}
