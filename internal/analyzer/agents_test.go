package analyzer

import (
	"testing"

	"github.com/akoskomuves/promptly/internal/session"
)

func TestSubagentStats_StructuredAndProse(t *testing.T) {
	turns := []session.Turn{
		user("look around the repo"),
		assistant("Spawning an Explore agent to map the code.",
			call("Task", `{"subagent_type":"Explore","prompt":"map it"}`), call("Task", `{}`)),
	}

	st := Analyze(AnalyzeInput{Conversations: turns}).SubagentStats

	if st.TotalSpawned != 2 {
		t.Errorf("expected 2 spawned, got %d", st.TotalSpawned)
	}
	if st.SubagentTypes["Explore"] != 2 {
		t.Errorf("expected Explore=2, got %d", st.SubagentTypes["Explore"])
	}
}

func TestSubagentStats_ProseOnly(t *testing.T) {
	turns := []session.Turn{
		assistant("Using the Task tool to launch a Plan agent with subagent_type: general"),
	}

	st := Analyze(AnalyzeInput{Conversations: turns}).SubagentStats

	if st.TotalSpawned != 1 {
		t.Errorf("expected 1 spawned, got %d", st.TotalSpawned)
	}
	if st.SubagentTypes["Plan"] != 1 {
		t.Errorf("expected Plan=1, got %d", st.SubagentTypes["Plan"])
	}
	if st.SubagentTypes["general"] != 1 {
		t.Errorf("expected general=1, got %d", st.SubagentTypes["general"])
	}
	if len(st.TopTypes) != 2 || st.TopTypes[0].Name != "Plan" {
		t.Errorf("expected top types [Plan general], got %v", st.TopTypes)
	}
}

func TestSubagentStats_Empty(t *testing.T) {
	st := Analyze(AnalyzeInput{Conversations: []session.Turn{user("Task agent please")}}).SubagentStats

	if st.TotalSpawned != 0 {
		t.Errorf("expected user turns to be ignored, got %d spawned", st.TotalSpawned)
	}
	if len(st.TopTypes) != 0 {
		t.Errorf("expected no top types, got %v", st.TopTypes)
	}
}
