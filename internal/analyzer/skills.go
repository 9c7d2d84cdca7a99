package analyzer

import (
	"sort"

	"github.com/samber/lo"

	"github.com/akoskomuves/promptly/internal/session"
)

// ComputeSkillUsage correlates skill invocations with session quality.
// Sessions without any skill form a shared no-skill quality baseline.
func ComputeSkillUsage(sessions []session.Record) SkillUsageAnalytics {
	type acc struct {
		invocations int
		sessions    int
		qualities   []float64
	}
	bySkill := make(map[string]*acc)
	var baseline []float64

	for _, s := range sessions {
		var skills []string
		if s.Intelligence != nil {
			skills = s.Intelligence.ToolUsage.SkillInvocations
		}
		quality, scored := s.Quality()

		if len(skills) == 0 {
			if scored {
				baseline = append(baseline, quality)
			}
			continue
		}

		counts := lo.CountValues(skills)
		for skill, n := range counts {
			a := bySkill[skill]
			if a == nil {
				a = &acc{}
				bySkill[skill] = a
			}
			a.invocations += n
			a.sessions++
			if scored {
				a.qualities = append(a.qualities, quality)
			}
		}
	}

	notUsed := averageQuality(baseline)

	stats := make([]SkillStat, 0, len(bySkill))
	for name, a := range bySkill {
		stats = append(stats, SkillStat{
			Name:              name,
			TotalInvocations:  a.invocations,
			SessionsUsed:      a.sessions,
			AvgQualityUsed:    averageQuality(a.qualities),
			AvgQualityNotUsed: notUsed,
		})
	}
	sort.Slice(stats, func(i, j int) bool {
		if stats[i].TotalInvocations != stats[j].TotalInvocations {
			return stats[i].TotalInvocations > stats[j].TotalInvocations
		}
		return stats[i].Name < stats[j].Name
	})

	return SkillUsageAnalytics{Skills: stats}
}

// averageQuality returns the mean rounded to one decimal, or nil when empty.
func averageQuality(scores []float64) *float64 {
	if len(scores) == 0 {
		return nil
	}
	avg := round1(lo.Sum(scores) / float64(len(scores)))
	return &avg
}
