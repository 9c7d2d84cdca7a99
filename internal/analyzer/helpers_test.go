package analyzer

import (
	"encoding/json"
	"math"
	"time"

	"github.com/shopspring/decimal"

	"github.com/akoskomuves/promptly/internal/session"
)

func user(content string) session.Turn {
	return session.Turn{Role: session.RoleUser, Content: content}
}

func assistant(content string, calls ...session.ToolCall) session.Turn {
	return session.Turn{Role: session.RoleAssistant, Content: content, ToolCalls: calls}
}

func withTokens(t session.Turn, n int) session.Turn {
	t.TokenCount = &n
	return t
}

func call(name string, input string) session.ToolCall {
	tc := session.ToolCall{Name: name}
	if input != "" {
		tc.Input = json.RawMessage(input)
	}
	return tc
}

func at(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return t
}

func atPtr(s string) *time.Time {
	t := at(s)
	return &t
}

func scored(q float64) *session.Intelligence {
	return &session.Intelligence{QualityScore: session.QualityScore{Overall: q}}
}

func usd(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func approxEqual(a, b float64) bool {
	return math.Abs(a-b) < 0.001
}

func derefInt(p *int) string {
	if p == nil {
		return "nil"
	}
	b, _ := json.Marshal(*p)
	return string(b)
}
