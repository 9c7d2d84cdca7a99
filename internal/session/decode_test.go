package session

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode_FullRecord(t *testing.T) {
	raw := RawRecord{
		ID:           "s1",
		TicketID:     "AUTH-12",
		StartedAt:    "2026-01-05T10:00:00Z",
		FinishedAt:   "2026-01-05T11:30:00Z",
		Status:       "COMPLETED",
		TotalTokens:  1200,
		MessageCount: 4,
		Conversations: `[
			{"role":"user","content":"fix the login bug","timestamp":"2026-01-05T10:00:00Z","tokenCount":12},
			{"role":"assistant","content":"Looking now","toolCalls":[
				{"name":"Task","input":{"subagent_type":"Explore"},"timestamp":"2026-01-05T10:01:00Z"},
				{"name":"","input":{}}
			]}
		]`,
		Models:      `["claude-sonnet-4"]`,
		Tags:        `["auth","urgent"]`,
		GitActivity: `{"branch":"fix/login","commits":[{"hash":"abc","message":"fix: login","insertions":3}],"totalCommits":1,"totalInsertions":3,"instructionFileChanges":["CLAUDE.md"]}`,
		Category:    "bug-fix",
	}

	rec := Decode(raw)

	assert.Equal(t, "s1", rec.ID)
	assert.Equal(t, time.Date(2026, 1, 5, 10, 0, 0, 0, time.UTC), rec.StartedAt)
	require.NotNil(t, rec.FinishedAt)
	assert.Equal(t, 90*time.Minute, rec.Duration())
	assert.Equal(t, StatusCompleted, rec.Status)

	require.Len(t, rec.Conversations, 2)
	assert.Equal(t, RoleUser, rec.Conversations[0].Role)
	require.NotNil(t, rec.Conversations[0].TokenCount)
	assert.Equal(t, 12, *rec.Conversations[0].TokenCount)
	assert.Nil(t, rec.Conversations[1].TokenCount)
	require.Len(t, rec.Conversations[1].ToolCalls, 1, "nameless tool calls are dropped")
	assert.JSONEq(t, `{"subagent_type":"Explore"}`, string(rec.Conversations[1].ToolCalls[0].Input))

	assert.Equal(t, []string{"claude-sonnet-4"}, rec.Models)
	assert.Equal(t, []string{"auth", "urgent"}, rec.Tags)

	require.NotNil(t, rec.Git)
	assert.Equal(t, "fix/login", rec.Git.Branch)
	require.Len(t, rec.Git.Commits, 1)
	assert.Equal(t, 3, rec.Git.Commits[0].Insertions)
	assert.Equal(t, []string{"CLAUDE.md"}, rec.Git.InstructionFileChanges)
	assert.Equal(t, CategoryBugFix, rec.Category)
	assert.Equal(t, "fix the login bug", rec.FirstUserMessage())
}

func TestDecode_MalformedNestedFieldsDegrade(t *testing.T) {
	raw := RawRecord{
		ID:            "bad",
		StartedAt:     "2026-01-05 10:00:00",
		Conversations: `[{"role":"user","content":"hi"`,
		Models:        `not json`,
		Tags:          `{"a":1}`,
		GitActivity:   `[1,2,3]`,
		Intelligence:  `{"quality_score":`,
		Category:      "chores",
	}

	rec := Decode(raw)

	assert.Equal(t, "bad", rec.ID)
	assert.False(t, rec.StartedAt.IsZero())
	assert.Nil(t, rec.FinishedAt)
	assert.Nil(t, rec.Conversations)
	assert.Nil(t, rec.Models)
	assert.Nil(t, rec.Tags)
	assert.Nil(t, rec.Git)
	assert.Nil(t, rec.Intelligence)
	assert.Equal(t, CategoryOther, rec.Category)
}

func TestDecode_IntelligenceWithoutScoreIsAbsent(t *testing.T) {
	tests := []struct {
		name  string
		intel string
	}{
		{"null", `null`},
		{"empty object", `{}`},
		{"camelCase keys", `{"qualityScore":{"overall":4.5}}`},
		{"string score", `{"quality_score":{"overall":"4.5"}}`},
		{"zero score", `{"quality_score":{"overall":0}}`},
		{"score above range", `{"quality_score":{"overall":7}}`},
		{"array", `[1]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := Decode(RawRecord{ID: "x", Intelligence: tt.intel})
			assert.Nil(t, rec.Intelligence)
			_, ok := rec.Quality()
			assert.False(t, ok)
		})
	}
}

func TestDecode_IntelligenceScoreBounds(t *testing.T) {
	for _, score := range []float64{1, 3.7, 5} {
		raw := RawRecord{ID: "x", Intelligence: fmt.Sprintf(`{"quality_score":{"overall":%g}}`, score)}
		q, ok := Decode(raw).Quality()
		assert.True(t, ok, "score %g", score)
		assert.Equal(t, score, q)
	}
}

func TestDecodeAll_OneBadRowDoesNotAffectOthers(t *testing.T) {
	raws := []RawRecord{
		{ID: "a", Conversations: `{{{`},
		{ID: "b", Conversations: `[{"role":"user","content":"ok"}]`},
	}
	recs := DecodeAll(raws)
	require.Len(t, recs, 2)
	assert.Nil(t, recs[0].Conversations)
	assert.Len(t, recs[1].Conversations, 1)
}

func TestEncode_RoundTripsThroughDecode(t *testing.T) {
	finished := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)
	n := 40
	rec := Record{
		ID:         "r1",
		TicketID:   "UI-7",
		StartedAt:  time.Date(2026, 2, 1, 11, 0, 0, 0, time.UTC),
		FinishedAt: &finished,
		Status:     StatusCompleted,
		Conversations: []Turn{
			{Role: RoleUser, Content: "add a button", TokenCount: &n},
		},
		Git:      &GitActivity{Branch: "main", TotalCommits: 2},
		Category: CategoryFeature,
		Intelligence: &Intelligence{
			QualityScore: QualityScore{Overall: 4.1, OneShotSuccess: true},
		},
	}

	got := Decode(Encode(rec))

	assert.Equal(t, rec.ID, got.ID)
	assert.True(t, rec.StartedAt.Equal(got.StartedAt))
	require.NotNil(t, got.FinishedAt)
	assert.True(t, finished.Equal(*got.FinishedAt))
	assert.Equal(t, rec.Conversations, got.Conversations)
	assert.Equal(t, "main", got.Git.Branch)
	assert.Equal(t, CategoryFeature, got.Category)
	require.NotNil(t, got.Intelligence)
	assert.Equal(t, 4.1, got.Intelligence.QualityScore.Overall)
	assert.Empty(t, got.Tags)
}

func TestEncode_EmptySlicesAsArrays(t *testing.T) {
	raw := Encode(Record{ID: "x", StartedAt: time.Now()})
	assert.Equal(t, "[]", raw.Conversations)
	assert.Equal(t, "[]", raw.Models)
	assert.Equal(t, "[]", raw.Tags)
	assert.Empty(t, raw.GitActivity)
	assert.Empty(t, raw.Intelligence)
}
