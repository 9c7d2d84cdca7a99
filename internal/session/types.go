// Package session defines the recorded session model: conversation turns,
// git activity, the finish-time intelligence annex, and the decoding of raw
// store rows into typed records.
package session

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// Role identifies the speaker of a conversation turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// Status is the lifecycle state of a session.
type Status string

const (
	StatusActive    Status = "ACTIVE"
	StatusCompleted Status = "COMPLETED"
	StatusAbandoned Status = "ABANDONED"
)

// ToolCall is a structured tool invocation recorded on a turn.
type ToolCall struct {
	Name      string          `json:"name"`
	Input     json.RawMessage `json:"input,omitempty"`
	Output    json.RawMessage `json:"output,omitempty"`
	Timestamp string          `json:"timestamp,omitempty"`
}

// Turn is one message in a session's conversation.
type Turn struct {
	Role      Role   `json:"role"`
	Content   string `json:"content"`
	Timestamp string `json:"timestamp,omitempty"`
	Model     string `json:"model,omitempty"`

	// TokenCount is the recorded token count for the turn, when the client
	// reported one.
	TokenCount *int       `json:"tokenCount,omitempty"`
	ToolCalls  []ToolCall `json:"toolCalls,omitempty"`
}

// GitCommit is a single commit made during a session.
type GitCommit struct {
	Hash         string `json:"hash"`
	Message      string `json:"message"`
	Timestamp    string `json:"timestamp"`
	FilesChanged int    `json:"filesChanged"`
	Insertions   int    `json:"insertions"`
	Deletions    int    `json:"deletions"`
}

// GitActivity summarizes the git work captured between session start and finish.
type GitActivity struct {
	Branch            string      `json:"branch"`
	Commits           []GitCommit `json:"commits"`
	TotalCommits      int         `json:"totalCommits"`
	TotalInsertions   int         `json:"totalInsertions"`
	TotalDeletions    int         `json:"totalDeletions"`
	TotalFilesChanged int         `json:"totalFilesChanged"`

	// InstructionFileChanges lists instruction files (CLAUDE.md and friends)
	// touched by the session's commits.
	InstructionFileChanges []string `json:"instructionFileChanges,omitempty"`
}

// Record is a fully decoded session.
type Record struct {
	ID             string     `json:"id"`
	TicketID       string     `json:"ticket_id"`
	StartedAt      time.Time  `json:"started_at"`
	FinishedAt     *time.Time `json:"finished_at,omitempty"`
	Status         Status     `json:"status"`
	TotalTokens    int        `json:"total_tokens"`
	PromptTokens   int        `json:"prompt_tokens"`
	ResponseTokens int        `json:"response_tokens"`
	MessageCount   int        `json:"message_count"`
	ToolCallCount  int        `json:"tool_call_count"`
	Conversations  []Turn     `json:"conversations"`
	Models         []string   `json:"models"`
	Tags           []string   `json:"tags"`
	ClientTool     string     `json:"client_tool,omitempty"`
	UserName       string     `json:"user_name,omitempty"`
	UserEmail      string     `json:"user_email,omitempty"`

	Git          *GitActivity  `json:"git_activity,omitempty"`
	Category     Category      `json:"category,omitempty"`
	Intelligence *Intelligence `json:"intelligence,omitempty"`

	// EstimatedCost is the USD cost derived from token counts and model
	// pricing. It is filled at load time and never stored.
	EstimatedCost decimal.Decimal `json:"estimated_cost"`
}

// Duration returns the wall-clock length of a finished session, or zero.
func (r Record) Duration() time.Duration {
	if r.FinishedAt == nil || r.StartedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// Quality returns the overall quality score and whether one is recorded.
func (r Record) Quality() (float64, bool) {
	if r.Intelligence == nil {
		return 0, false
	}
	return r.Intelligence.QualityScore.Overall, true
}

// FirstUserMessage returns the content of the first user turn, or "".
func (r Record) FirstUserMessage() string {
	return FirstUserMessage(r.Conversations)
}

// FirstUserMessage returns the content of the first user turn in turns.
func FirstUserMessage(turns []Turn) string {
	for _, t := range turns {
		if t.Role == RoleUser {
			return t.Content
		}
	}
	return ""
}

// RawRecord mirrors a stored session row. Nested structures are kept as the
// opaque JSON text the store persists.
type RawRecord struct {
	ID             string
	TicketID       string
	StartedAt      string
	FinishedAt     string
	Status         string
	TotalTokens    int
	PromptTokens   int
	ResponseTokens int
	MessageCount   int
	ToolCallCount  int
	Conversations  string
	Models         string
	Tags           string
	ClientTool     string
	UserName       string
	UserEmail      string
	GitActivity    string
	Category       string
	Intelligence   string
	CreatedAt      string
}
