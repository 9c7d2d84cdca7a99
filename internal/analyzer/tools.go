package analyzer

import (
	"sort"
	"strings"

	"github.com/samber/lo"
	"github.com/tidwall/gjson"

	"github.com/akoskomuves/promptly/internal/session"
)

const topRankLimit = 10

// toolUsage counts tool invocations and collects skill invocations.
// Structured tool calls are always counted. Assistant turns without
// structured calls fall back to counting known tool names in their prose.
func (a *QualityAnalyzer) toolUsage(turns []session.Turn) session.ToolUsage {
	counts := make(map[string]int)
	skills := make(map[string]struct{})
	total := 0

	for _, t := range turns {
		for _, tc := range t.ToolCalls {
			counts[tc.Name]++
			total++
			if tc.Name == "Skill" {
				if name := gjson.GetBytes(tc.Input, "skill").String(); name != "" {
					skills["/"+strings.TrimPrefix(name, "/")] = struct{}{}
				}
			}
		}

		if t.Role != session.RoleAssistant {
			continue
		}

		if len(t.ToolCalls) == 0 {
			for _, tool := range a.patterns.KnownTools {
				n := len(a.patterns.toolWords[tool].FindAllStringIndex(t.Content, -1))
				if n > 0 {
					counts[tool] += n
					total += n
				}
			}
		}

		for _, p := range a.patterns.Skills {
			if m := p.FindString(t.Content); m != "" {
				skills[m] = struct{}{}
			}
		}
	}

	invoked := lo.Keys(skills)
	sort.Strings(invoked)

	return session.ToolUsage{
		ToolCounts:       counts,
		SkillInvocations: invoked,
		TotalToolCalls:   total,
		TopTools:         rankCounts(counts, topRankLimit),
	}
}
