package session

import (
	"encoding/json"
	"time"

	"github.com/tidwall/gjson"
)

// Decode converts a stored row into a Record. Nested JSON fields that are
// absent or malformed decode to nil rather than failing the record.
func Decode(raw RawRecord) Record {
	rec := Record{
		ID:             raw.ID,
		TicketID:       raw.TicketID,
		StartedAt:      ParseTimestamp(raw.StartedAt),
		Status:         Status(raw.Status),
		TotalTokens:    raw.TotalTokens,
		PromptTokens:   raw.PromptTokens,
		ResponseTokens: raw.ResponseTokens,
		MessageCount:   raw.MessageCount,
		ToolCallCount:  raw.ToolCallCount,
		ClientTool:     raw.ClientTool,
		UserName:       raw.UserName,
		UserEmail:      raw.UserEmail,
		Conversations:  DecodeTurns(raw.Conversations),
		Models:         decodeStrings(raw.Models),
		Tags:           decodeStrings(raw.Tags),
		Git:            DecodeGitActivity(raw.GitActivity),
		Intelligence:   decodeIntelligence(raw.Intelligence),
	}
	if raw.FinishedAt != "" {
		if t := ParseTimestamp(raw.FinishedAt); !t.IsZero() {
			rec.FinishedAt = &t
		}
	}
	if raw.Category != "" {
		rec.Category = ParseCategory(raw.Category)
	}
	return rec
}

// DecodeAll decodes every row. One bad row never affects the others.
func DecodeAll(raws []RawRecord) []Record {
	out := make([]Record, 0, len(raws))
	for _, r := range raws {
		out = append(out, Decode(r))
	}
	return out
}

// DecodeTurns parses a JSON array of conversation turns.
func DecodeTurns(s string) []Turn {
	if s == "" || !gjson.Valid(s) {
		return nil
	}
	arr := gjson.Parse(s)
	if !arr.IsArray() {
		return nil
	}

	var turns []Turn
	arr.ForEach(func(_, v gjson.Result) bool {
		if !v.IsObject() {
			return true
		}
		t := Turn{
			Role:      Role(v.Get("role").String()),
			Content:   v.Get("content").String(),
			Timestamp: v.Get("timestamp").String(),
			Model:     v.Get("model").String(),
		}
		if tc := v.Get("tokenCount"); tc.Type == gjson.Number {
			n := int(tc.Int())
			t.TokenCount = &n
		}
		v.Get("toolCalls").ForEach(func(_, c gjson.Result) bool {
			name := c.Get("name").String()
			if name == "" {
				return true
			}
			call := ToolCall{
				Name:      name,
				Timestamp: c.Get("timestamp").String(),
			}
			if in := c.Get("input"); in.Exists() {
				call.Input = json.RawMessage(in.Raw)
			}
			if out := c.Get("output"); out.Exists() {
				call.Output = json.RawMessage(out.Raw)
			}
			t.ToolCalls = append(t.ToolCalls, call)
			return true
		})
		turns = append(turns, t)
		return true
	})
	return turns
}

// DecodeGitActivity parses a git activity object. Returns nil when s is empty
// or not a JSON object.
func DecodeGitActivity(s string) *GitActivity {
	if s == "" || !gjson.Valid(s) {
		return nil
	}
	v := gjson.Parse(s)
	if !v.IsObject() {
		return nil
	}

	g := &GitActivity{
		Branch:            v.Get("branch").String(),
		TotalCommits:      int(v.Get("totalCommits").Int()),
		TotalInsertions:   int(v.Get("totalInsertions").Int()),
		TotalDeletions:    int(v.Get("totalDeletions").Int()),
		TotalFilesChanged: int(v.Get("totalFilesChanged").Int()),
	}
	v.Get("commits").ForEach(func(_, c gjson.Result) bool {
		g.Commits = append(g.Commits, GitCommit{
			Hash:         c.Get("hash").String(),
			Message:      c.Get("message").String(),
			Timestamp:    c.Get("timestamp").String(),
			FilesChanged: int(c.Get("filesChanged").Int()),
			Insertions:   int(c.Get("insertions").Int()),
			Deletions:    int(c.Get("deletions").Int()),
		})
		return true
	})
	v.Get("instructionFileChanges").ForEach(func(_, p gjson.Result) bool {
		if p.Type == gjson.String && p.Str != "" {
			g.InstructionFileChanges = append(g.InstructionFileChanges, p.Str)
		}
		return true
	})
	return g
}

func decodeStrings(s string) []string {
	if s == "" || !gjson.Valid(s) {
		return nil
	}
	var out []string
	gjson.Parse(s).ForEach(func(_, v gjson.Result) bool {
		if v.Type == gjson.String {
			out = append(out, v.Str)
		}
		return true
	})
	return out
}

// decodeIntelligence requires a quality_score.overall in [1, 5]. Anything
// else, including null, {} and foreign key layouts, is treated as absent.
func decodeIntelligence(s string) *Intelligence {
	if s == "" || !gjson.Valid(s) {
		return nil
	}
	overall := gjson.Get(s, "quality_score.overall")
	if overall.Type != gjson.Number || overall.Num < 1 || overall.Num > 5 {
		return nil
	}
	var intel Intelligence
	if err := json.Unmarshal([]byte(s), &intel); err != nil {
		return nil
	}
	return &intel
}

// Encode converts a Record back into its stored row form.
func Encode(rec Record) RawRecord {
	raw := RawRecord{
		ID:             rec.ID,
		TicketID:       rec.TicketID,
		StartedAt:      FormatTimestamp(rec.StartedAt),
		Status:         string(rec.Status),
		TotalTokens:    rec.TotalTokens,
		PromptTokens:   rec.PromptTokens,
		ResponseTokens: rec.ResponseTokens,
		MessageCount:   rec.MessageCount,
		ToolCallCount:  rec.ToolCallCount,
		ClientTool:     rec.ClientTool,
		UserName:       rec.UserName,
		UserEmail:      rec.UserEmail,
		Category:       string(rec.Category),
		Conversations:  encodeJSON(nonNilTurns(rec.Conversations)),
		Models:         encodeJSON(nonNilStrings(rec.Models)),
		Tags:           encodeJSON(nonNilStrings(rec.Tags)),
	}
	if rec.FinishedAt != nil {
		raw.FinishedAt = FormatTimestamp(*rec.FinishedAt)
	}
	if rec.Git != nil {
		raw.GitActivity = encodeJSON(rec.Git)
	}
	if rec.Intelligence != nil {
		raw.Intelligence = encodeJSON(rec.Intelligence)
	}
	if raw.StartedAt == "" {
		raw.StartedAt = FormatTimestamp(time.Now())
	}
	return raw
}

func encodeJSON(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(data)
}

func nonNilTurns(t []Turn) []Turn {
	if t == nil {
		return []Turn{}
	}
	return t
}

func nonNilStrings(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// EncodeStrings renders a string list as stored JSON, "[]" when empty.
func EncodeStrings(s []string) string {
	return encodeJSON(nonNilStrings(s))
}
