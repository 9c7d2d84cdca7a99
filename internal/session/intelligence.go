package session

// Intelligence is the derived, write-once analytics bundle attached to a
// session when it finishes.
type Intelligence struct {
	QualityScore   QualityScore   `json:"quality_score"`
	ToolUsage      ToolUsage      `json:"tool_usage"`
	SubagentStats  SubagentStats  `json:"subagent_stats"`
	ContextMetrics ContextMetrics `json:"context_metrics"`
	PromptQuality  PromptQuality  `json:"prompt_quality"`
}

// QualityScore rates how smoothly a session went.
type QualityScore struct {
	// Overall is in [1, 5], rounded to one decimal.
	Overall      float64 `json:"overall"`
	PlanModeUsed bool    `json:"plan_mode_used"`

	// CorrectionRate is the fraction of user turns that correct the assistant.
	CorrectionRate float64 `json:"correction_rate"`

	// OneShotSuccess is true when the user needed at most two follow-ups.
	OneShotSuccess bool `json:"one_shot_success"`

	// ErrorRecovery is 1.0 (no errors), 0.7 (errors resolved) or 0.3.
	ErrorRecovery   float64 `json:"error_recovery"`
	TurnsToComplete int     `json:"turns_to_complete"`
}

// NameCount pairs a name with an occurrence count.
type NameCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// ToolUsage profiles the tools and skills a session exercised.
type ToolUsage struct {
	ToolCounts map[string]int `json:"tool_counts"`

	// SkillInvocations is the sorted, deduplicated set of skill tokens.
	SkillInvocations []string    `json:"skill_invocations"`
	TotalToolCalls   int         `json:"total_tool_calls"`
	TopTools         []NameCount `json:"top_tools"`
}

// SubagentStats profiles subagent spawns.
type SubagentStats struct {
	TotalSpawned  int            `json:"total_spawned"`
	SubagentTypes map[string]int `json:"subagent_types"`
	TopTypes      []NameCount    `json:"top_types"`
}

// ContextMetrics describes the context-window trajectory of a session.
type ContextMetrics struct {
	PeakTokenCount      int `json:"peak_token_count"`
	SummarizationEvents int `json:"summarization_events"`
	TokenGrowthRate     int `json:"token_growth_rate"`

	// TurnsBeforeSummarization is nil when no summarization happened.
	TurnsBeforeSummarization *int    `json:"turns_before_summarization"`
	ContextUtilization       float64 `json:"context_utilization"`
}

// Severity grades a prompt insight.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
)

// Prompt insight kinds.
const (
	InsightVaguePrompt    = "vague-prompt"
	InsightBackAndForth   = "excessive-back-and-forth"
	InsightMissingContext = "missing-context"
	InsightScopeCreep     = "scope-creep"
	InsightLongPrompt     = "long-prompt"
)

// PromptInsight is one detected prompting anti-pattern.
type PromptInsight struct {
	Type        string   `json:"type"`
	Severity    Severity `json:"severity"`
	Description string   `json:"description"`
	TurnIndex   *int     `json:"turn_index,omitempty"`
	Suggestion  string   `json:"suggestion"`
}

// PromptQuality summarizes how effectively the user prompted.
type PromptQuality struct {
	Insights          []PromptInsight `json:"insights"`
	PromptEfficiency  int             `json:"prompt_efficiency"`
	AvgPromptLength   int             `json:"avg_prompt_length"`
	BackAndForthScore int             `json:"back_and_forth_score"`
}
