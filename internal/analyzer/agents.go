package analyzer

import (
	"github.com/tidwall/gjson"

	"github.com/akoskomuves/promptly/internal/session"
)

// subagentStats counts subagent spawns in assistant turns. A spawn is either
// a structured Task tool call or a "Task ... agent" mention in prose. Agent
// types come from the Task input's subagent_type, "<type> agent" mentions,
// and inline subagent_type=<type> fragments.
func (a *QualityAnalyzer) subagentStats(turns []session.Turn) session.SubagentStats {
	total := 0
	types := make(map[string]int)

	for _, t := range turns {
		if t.Role != session.RoleAssistant {
			continue
		}

		total += len(a.patterns.taskMention.FindAllStringIndex(t.Content, -1))

		for _, tc := range t.ToolCalls {
			if tc.Name != "Task" {
				continue
			}
			total++
			if typ := gjson.GetBytes(tc.Input, "subagent_type").String(); typ != "" {
				types[typ]++
			}
		}

		for _, typ := range a.patterns.SubagentTypes {
			if n := len(a.patterns.subagentMentions[typ].FindAllStringIndex(t.Content, -1)); n > 0 {
				types[typ] += n
			}
		}

		for _, m := range a.patterns.subagentTypeKV.FindAllStringSubmatch(t.Content, -1) {
			types[m[1]]++
		}
	}

	return session.SubagentStats{
		TotalSpawned:  total,
		SubagentTypes: types,
		TopTypes:      rankCounts(types, topRankLimit),
	}
}
