package analyzer

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/akoskomuves/promptly/internal/session"
)

// Prompt-quality thresholds.
const (
	vaguePromptWords      = 30
	vagueLookahead        = 6
	vagueFollowUps        = 3
	backAndForthRounds    = 3
	missingContextWords   = 10
	scopeCreepEarlyTurns  = 3
	scopeCreepWordLen     = 4
	scopeCreepRatio       = 0.6
	scopeCreepMinNewWords = 10
	longPromptWords       = 500

	// correctionWasteFactor scales the tokens of a correction turn into an
	// estimate of the tokens it wasted.
	correctionWasteFactor = 3
)

var (
	pathLike     = regexp.MustCompile(`[/\\][\w.-]+\.\w+`)
	inlineCode   = regexp.MustCompile("`[^`]+`")
	functionLike = regexp.MustCompile(`\b\w+\(`)
	errorWords   = regexp.MustCompile(`(?i)\b(error|exception|stack\s*trace)\b`)
)

// promptQuality detects prompting anti-patterns and scores prompt efficiency.
func (a *QualityAnalyzer) promptQuality(turns []session.Turn) session.PromptQuality {
	var users []session.Turn
	for _, t := range turns {
		if t.Role == session.RoleUser {
			users = append(users, t)
		}
	}

	if len(users) == 0 {
		return session.PromptQuality{
			Insights:         []session.PromptInsight{},
			PromptEfficiency: 100,
		}
	}

	totalWords := 0
	for _, u := range users {
		totalWords += wordCount(u.Content)
	}

	insights := []session.PromptInsight{}
	if in, ok := vaguePrompt(turns); ok {
		insights = append(insights, in)
	}
	if in, ok := a.backAndForth(turns); ok {
		insights = append(insights, in)
	}
	if in, ok := missingContext(users[0].Content); ok {
		insights = append(insights, in)
	}
	if in, ok := scopeCreep(users); ok {
		insights = append(insights, in)
	}
	if in, ok := longPrompt(turns); ok {
		insights = append(insights, in)
	}

	backAndForthScore := 0
	if len(users) > 1 {
		backAndForthScore = int(roundHalfUp(float64(len(users)-1) / float64(len(turns)) * 100))
	}

	return session.PromptQuality{
		Insights:          insights,
		PromptEfficiency:  a.promptEfficiency(turns, users),
		AvgPromptLength:   int(roundHalfUp(float64(totalWords) / float64(len(users)))),
		BackAndForthScore: backAndForthScore,
	}
}

// vaguePrompt reports the first short user prompt followed by several more
// user turns within the next few turns.
func vaguePrompt(turns []session.Turn) (session.PromptInsight, bool) {
	for i, t := range turns {
		if t.Role != session.RoleUser {
			continue
		}
		words := wordCount(t.Content)
		if words >= vaguePromptWords {
			continue
		}
		followUps := 0
		for j := i + 1; j < len(turns) && j <= i+vagueLookahead; j++ {
			if turns[j].Role == session.RoleUser {
				followUps++
			}
		}
		if followUps >= vagueFollowUps {
			return session.PromptInsight{
				Type:        session.InsightVaguePrompt,
				Severity:    session.SeverityWarning,
				Description: fmt.Sprintf("Short prompt (%d words) followed by %d follow-up messages", words, followUps),
				TurnIndex:   intPtr(i),
				Suggestion:  "Include more context up front. File paths, expected behavior and constraints cut down on follow-ups.",
			}, true
		}
	}
	return session.PromptInsight{}, false
}

// backAndForth reports when several consecutive assistant replies end
// without a resolution marker and the user has to come back again.
func (a *QualityAnalyzer) backAndForth(turns []session.Turn) (session.PromptInsight, bool) {
	rounds := 0
	for i := 1; i < len(turns); i++ {
		if turns[i].Role == session.RoleUser && turns[i-1].Role == session.RoleAssistant {
			if matchesAny(a.patterns.Resolutions, turns[i-1].Content) {
				rounds = 0
			} else {
				rounds++
			}
		}
		if rounds >= backAndForthRounds {
			return session.PromptInsight{
				Type:        session.InsightBackAndForth,
				Severity:    session.SeverityWarning,
				Description: fmt.Sprintf("%d rounds of conversation without clear resolution", rounds),
				TurnIndex:   intPtr(i),
				Suggestion:  "Give the complete requirements in a single message to reduce iterations.",
			}, true
		}
	}
	return session.PromptInsight{}, false
}

// missingContext reports a substantial first prompt with no file path,
// function name, error text, or code block.
func missingContext(first string) (session.PromptInsight, bool) {
	hasPath := pathLike.MatchString(first) || inlineCode.MatchString(first)
	hasFunc := functionLike.MatchString(first)
	hasError := errorWords.MatchString(first)
	hasCode := strings.Contains(first, "```")

	if hasPath || hasFunc || hasError || hasCode || wordCount(first) <= missingContextWords {
		return session.PromptInsight{}, false
	}
	return session.PromptInsight{
		Type:        session.InsightMissingContext,
		Severity:    session.SeverityInfo,
		Description: "First prompt lacks specific code references (file paths, function names, error strings)",
		TurnIndex:   intPtr(0),
		Suggestion:  "Mention file paths, function names or error messages so the assistant can find the relevant code faster.",
	}, true
}

// scopeCreep compares the long words of later user turns against the
// vocabulary of the first few.
func scopeCreep(users []session.Turn) (session.PromptInsight, bool) {
	if len(users) <= scopeCreepEarlyTurns {
		return session.PromptInsight{}, false
	}

	early := make(map[string]struct{})
	for _, u := range users[:scopeCreepEarlyTurns] {
		for _, w := range longWords(u.Content) {
			early[w] = struct{}{}
		}
	}

	late := make(map[string]struct{})
	for _, u := range users[scopeCreepEarlyTurns:] {
		for _, w := range longWords(u.Content) {
			late[w] = struct{}{}
		}
	}

	fresh := 0
	for w := range late {
		if _, ok := early[w]; !ok {
			fresh++
		}
	}

	// Ratio and threshold are over distinct words; repeating one new word
	// does not count as new scope.
	ratio := 0.0
	if len(late) > 0 {
		ratio = float64(fresh) / float64(len(late))
	}
	if ratio <= scopeCreepRatio || fresh <= scopeCreepMinNewWords {
		return session.PromptInsight{}, false
	}
	return session.PromptInsight{
		Type:        session.InsightScopeCreep,
		Severity:    session.SeverityInfo,
		Description: "Later prompts introduce significantly different topics from the initial request",
		Suggestion:  "Start a new session when the task scope changes significantly.",
	}, true
}

func longWords(s string) []string {
	var out []string
	for _, w := range splitWords(strings.ToLower(s)) {
		if utf8.RuneCountInString(w) > scopeCreepWordLen {
			out = append(out, w)
		}
	}
	return out
}

// longPrompt reports the first user turn over the long-prompt word limit.
func longPrompt(turns []session.Turn) (session.PromptInsight, bool) {
	for i, t := range turns {
		if t.Role != session.RoleUser {
			continue
		}
		if words := wordCount(t.Content); words > longPromptWords {
			return session.PromptInsight{
				Type:        session.InsightLongPrompt,
				Severity:    session.SeverityInfo,
				Description: fmt.Sprintf("Prompt with %d words may include unnecessary context", words),
				TurnIndex:   intPtr(i),
				Suggestion:  "Long prompts are fine, but state the key requirements first.",
			}, true
		}
	}
	return session.PromptInsight{}, false
}

// promptEfficiency estimates the share of tokens not wasted on corrections.
func (a *QualityAnalyzer) promptEfficiency(turns, users []session.Turn) int {
	total := 0
	for _, t := range turns {
		total += estimateTokens(t)
	}
	if total <= 0 {
		return 100
	}

	wasted := 0
	for _, u := range users {
		if matchesAny(a.patterns.Corrections, u.Content) {
			wasted += estimateTokens(u) * correctionWasteFactor
		}
	}
	eff := roundHalfUp(100 - float64(wasted)/float64(total)*100)
	return int(clamp(eff, 0, 100))
}

func intPtr(n int) *int {
	return &n
}
