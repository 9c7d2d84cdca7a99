package analyzer

import "regexp"

// DefaultContextWindow is the assumed model context size in tokens.
const DefaultContextWindow = 200000

// Patterns holds the fixed heuristic vocabulary used by the quality analyzer.
// A Patterns value is never mutated after construction; derive a variant with
// WithContextWindow instead.
type Patterns struct {
	// KnownTools is the tool vocabulary counted in assistant prose when a
	// turn carries no structured tool calls.
	KnownTools []string
	toolWords  map[string]*regexp.Regexp

	PlanMode    []*regexp.Regexp
	Corrections []*regexp.Regexp
	Errors      []*regexp.Regexp
	Resolutions []*regexp.Regexp
	Skills      []*regexp.Regexp

	// SubagentTypes are the agent kinds recognized in "<type> agent" prose.
	SubagentTypes    []string
	subagentMentions map[string]*regexp.Regexp
	taskMention      *regexp.Regexp
	subagentTypeKV   *regexp.Regexp

	// ContextWindow is the token budget used for utilization.
	ContextWindow int
}

var knownTools = []string{
	"Bash", "Read", "Edit", "Write", "Grep", "Glob", "WebFetch", "WebSearch",
	"Task", "TaskCreate", "TaskUpdate", "TaskList", "TaskGet",
	"NotebookEdit", "EnterPlanMode", "ExitPlanMode", "AskUserQuestion", "Skill",
}

var subagentTypes = []string{
	"Explore", "Plan", "Bash", "general-purpose", "smart-commit-bundler", "statusline-setup",
}

var skillTokens = []string{
	"commit", "review-pr", "track", "help", "init", "clear", "compact", "config",
	"doctor", "login", "logout", "memory", "model", "pr-comments", "status", "vim",
}

var defaultPatterns = buildPatterns()

// DefaultPatterns returns the built-in pattern tables.
func DefaultPatterns() Patterns {
	return defaultPatterns
}

// WithContextWindow returns a copy of p using the given context window.
// Non-positive values keep the current window.
func (p Patterns) WithContextWindow(tokens int) Patterns {
	if tokens > 0 {
		p.ContextWindow = tokens
	}
	return p
}

func buildPatterns() Patterns {
	p := Patterns{
		KnownTools:       knownTools,
		toolWords:        make(map[string]*regexp.Regexp, len(knownTools)),
		SubagentTypes:    subagentTypes,
		subagentMentions: make(map[string]*regexp.Regexp, len(subagentTypes)),
		ContextWindow:    DefaultContextWindow,
	}
	for _, tool := range knownTools {
		p.toolWords[tool] = regexp.MustCompile(`\b` + regexp.QuoteMeta(tool) + `\b`)
	}
	for _, t := range subagentTypes {
		p.subagentMentions[t] = regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(t) + `\s+agent\b`)
	}
	p.taskMention = regexp.MustCompile(`(?i)\bTask\b.*\b(agent|subagent)`)
	p.subagentTypeKV = regexp.MustCompile(`(?i)subagent_type\s*[=:]\s*["']?(\w+)`)

	p.PlanMode = mustCompileAll(
		`\bEnterPlanMode\b`,
		`\bExitPlanMode\b`,
		`(?i)\bplan\s+mode\b`,
		`(?i)\bPlan\s+agent\b`,
	)

	p.Corrections = mustCompileAll(
		`(?i)\bno,?\s+that'?s?\s+(wrong|not)`,
		`(?i)\btry\s+again\b`,
		`(?i)\bthat\s+didn'?t\s+work\b`,
		`(?i)\brevert\b`,
		`(?i)\bnot\s+what\s+I\s+(asked|wanted|meant)\b`,
		`(?i)\bundo\s+(that|this)\b`,
		`(?i)\bwrong\s+(file|approach|way)\b`,
		`(?i)\bstart\s+over\b`,
		`(?i)\bgo\s+back\b`,
		`(?i)\bactually,?\s+(don'?t|no|never\s*mind)\b`,
	)

	p.Errors = mustCompileAll(
		`(?i)\berror\b`,
		`(?i)\bfailed\b`,
		`(?i)\bfailure\b`,
		`(?i)\bexit\s+code\s+[1-9]`,
		`(?i)\bcompilation\s+error`,
		`(?i)\bbuild\s+failed`,
		`(?i)\btest\s+failed`,
		`(?i)\bcommand\s+failed`,
		`\bENOENT\b`,
		`\bENOTDIR\b`,
		`\bTypeError\b`,
		`\bSyntaxError\b`,
		`\bReferenceError\b`,
	)

	p.Resolutions = mustCompileAll(
		`(?i)\bfixed\b`,
		`(?i)\bworking\s+now\b`,
		`(?i)\bsuccessfully\b`,
		`(?i)\bresolved\b`,
		`(?i)\btests?\s+pass`,
		`(?i)\bbuild\s+succeeded`,
		`(?i)\bcompiles?\s+clean`,
		`(?i)\ball\s+good\b`,
	)

	skills := make([]string, 0, len(skillTokens)+1)
	for _, s := range skillTokens {
		skills = append(skills, `/`+regexp.QuoteMeta(s)+`\b`)
	}
	skills = append(skills, `(?i)Skill\s+tool`)
	p.Skills = mustCompileAll(skills...)

	return p
}

func mustCompileAll(exprs ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, 0, len(exprs))
	for _, e := range exprs {
		out = append(out, regexp.MustCompile(e))
	}
	return out
}

func matchesAny(patterns []*regexp.Regexp, s string) bool {
	for _, p := range patterns {
		if p.MatchString(s) {
			return true
		}
	}
	return false
}
