package analyzer

import (
	"strings"

	"github.com/akoskomuves/promptly/internal/session"
)

// Score weights for the overall quality rating.
const (
	baseQuality      = 3.0
	planModeBonus    = 0.3
	oneShotBonus     = 0.8
	correctionWeight = 1.5

	// maxOneShotFollowUps is the most user follow-ups a one-shot session may have.
	maxOneShotFollowUps = 2
)

// qualityScore rates the session on a 1-5 scale from plan-mode usage,
// one-shot completion, user corrections, and error recovery.
func (a *QualityAnalyzer) qualityScore(turns []session.Turn) session.QualityScore {
	var users, assistants, corrections int
	for _, t := range turns {
		switch t.Role {
		case session.RoleUser:
			users++
			if matchesAny(a.patterns.Corrections, t.Content) {
				corrections++
			}
		case session.RoleAssistant:
			assistants++
		}
	}

	all := joinContent(turns)
	planMode := matchesAny(a.patterns.PlanMode, all) || usesTool(turns, "EnterPlanMode", "ExitPlanMode")

	correctionRate := 0.0
	if users > 0 {
		correctionRate = float64(corrections) / float64(users)
	}

	followUps := max(0, users-1)
	oneShot := followUps <= maxOneShotFollowUps

	recovery := errorRecovery(all, a.patterns)

	overall := baseQuality
	if planMode {
		overall += planModeBonus
	}
	if oneShot {
		overall += oneShotBonus
	}
	overall -= correctionRate * correctionWeight
	overall += recovery*0.5 - 0.25

	return session.QualityScore{
		Overall:         round1(clamp(overall, 1, 5)),
		PlanModeUsed:    planMode,
		CorrectionRate:  round2(correctionRate),
		OneShotSuccess:  oneShot,
		ErrorRecovery:   recovery,
		TurnsToComplete: users + assistants,
	}
}

// errorRecovery is 1.0 when the transcript shows no errors, 0.7 when errors
// appear alongside a resolution marker, and 0.3 otherwise.
func errorRecovery(content string, p Patterns) float64 {
	if !matchesAny(p.Errors, content) {
		return 1.0
	}
	if matchesAny(p.Resolutions, content) {
		return 0.7
	}
	return 0.3
}

func joinContent(turns []session.Turn) string {
	parts := make([]string, len(turns))
	for i, t := range turns {
		parts[i] = t.Content
	}
	return strings.Join(parts, "\n")
}

func usesTool(turns []session.Turn, names ...string) bool {
	for _, t := range turns {
		for _, tc := range t.ToolCalls {
			for _, n := range names {
				if tc.Name == n {
					return true
				}
			}
		}
	}
	return false
}
