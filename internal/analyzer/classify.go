package analyzer

import (
	"regexp"
	"strings"

	"github.com/akoskomuves/promptly/internal/session"
)

type categoryRule struct {
	pattern  *regexp.Regexp
	category session.Category
}

// ticketRules match branch-style ticket ids such as "fix/login" or "FIX-42".
var ticketRules = []categoryRule{
	{regexp.MustCompile(`(?i)^(fix|bug|hotfix)[/-]`), session.CategoryBugFix},
	{regexp.MustCompile(`(?i)^bug-\d`), session.CategoryBugFix},
	{regexp.MustCompile(`(?i)^(feat|feature)[/-]`), session.CategoryFeature},
	{regexp.MustCompile(`(?i)^feat-\d`), session.CategoryFeature},
	{regexp.MustCompile(`(?i)^(refactor|cleanup)[/-]`), session.CategoryRefactor},
	{regexp.MustCompile(`(?i)^(test|spec)[/-]`), session.CategoryTesting},
	{regexp.MustCompile(`(?i)^(doc|docs)[/-]`), session.CategoryDocs},
	{regexp.MustCompile(`(?i)^(investigate|explore|spike|research)[/-]`), session.CategoryInvestigation},
}

// messageRules match keywords in the lowercased first user message.
var messageRules = []categoryRule{
	{regexp.MustCompile(`\b(fix|bug|broken|error|crash)\b`), session.CategoryBugFix},
	{regexp.MustCompile(`\b(add|implement|create|build|new feature)\b`), session.CategoryFeature},
	{regexp.MustCompile(`\b(refactor|clean up|reorganize|restructure)\b`), session.CategoryRefactor},
	{regexp.MustCompile(`\b(test|spec|coverage)\b`), session.CategoryTesting},
	{regexp.MustCompile(`\b(investigate|explore|debug|figure out|understand)\b`), session.CategoryInvestigation},
	{regexp.MustCompile(`\b(doc|readme|documentation)\b`), session.CategoryDocs},
}

// commitPrefix matches conventional-commit prefixes, with an optional scope
// and breaking-change marker: "fix:", "feat(api):", "refactor!:".
var commitPrefix = regexp.MustCompile(`^(\w+)(\([^)]*\))?!?:`)

var commitCategories = map[string]session.Category{
	"fix":      session.CategoryBugFix,
	"feat":     session.CategoryFeature,
	"refactor": session.CategoryRefactor,
	"test":     session.CategoryTesting,
	"docs":     session.CategoryDocs,
}

// commitMajority is the share of classifiable commits a category needs.
const commitMajority = 0.5

// Classify assigns a work category to a session. The ticket id is checked
// first, then a majority vote over conventional-commit prefixes, then
// keywords in the first user message. Sessions matching nothing are "other".
func Classify(ticketID string, git *session.GitActivity, turns []session.Turn) session.Category {
	for _, r := range ticketRules {
		if r.pattern.MatchString(ticketID) {
			return r.category
		}
	}

	if git != nil && len(git.Commits) > 0 {
		if c, ok := classifyCommits(git.Commits); ok {
			return c
		}
	}

	if first := session.FirstUserMessage(turns); first != "" {
		lower := strings.ToLower(first)
		for _, r := range messageRules {
			if r.pattern.MatchString(lower) {
				return r.category
			}
		}
	}

	return session.CategoryOther
}

// classifyCommits returns the category holding at least half of the
// classifiable commits. When two categories split exactly in half, the one
// seen first wins.
func classifyCommits(commits []session.GitCommit) (session.Category, bool) {
	counts := make(map[session.Category]int)
	var order []session.Category
	classifiable := 0

	for _, c := range commits {
		m := commitPrefix.FindStringSubmatch(c.Message)
		if m == nil {
			continue
		}
		cat, ok := commitCategories[strings.ToLower(m[1])]
		if !ok {
			continue
		}
		if counts[cat] == 0 {
			order = append(order, cat)
		}
		counts[cat]++
		classifiable++
	}

	if classifiable == 0 {
		return "", false
	}
	for _, cat := range order {
		if float64(counts[cat])/float64(classifiable) >= commitMajority {
			return cat, true
		}
	}
	return "", false
}
