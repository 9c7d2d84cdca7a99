package analyzer

import (
	"fmt"
	"sort"

	"github.com/akoskomuves/promptly/internal/session"
)

const (
	// effectivenessWindow is how many scored sessions each side of the
	// pivot are compared.
	effectivenessWindow = 5

	// stableBand is the quality delta treated as no change.
	stableBand = 0.2
)

// ComputeInstructionEffectiveness compares the average quality of the last
// scored sessions before the earliest instruction-file edit with the first
// scored sessions from that edit onward.
func ComputeInstructionEffectiveness(sessions []session.Record) InstructionEffectiveness {
	sorted := make([]session.Record, len(sessions))
	copy(sorted, sessions)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].StartedAt.Before(sorted[j].StartedAt)
	})

	changes := []InstructionChange{}
	for _, s := range sorted {
		if s.Git == nil || len(s.Git.InstructionFileChanges) == 0 {
			continue
		}
		changes = append(changes, InstructionChange{
			SessionID: s.ID,
			TicketID:  s.TicketID,
			Date:      s.StartedAt,
			Files:     s.Git.InstructionFileChanges,
		})
	}

	if len(changes) == 0 {
		return InstructionEffectiveness{
			Changes: changes,
			Verdict: VerdictNoChanges,
			Message: "No instruction file changes detected.",
		}
	}

	pivot := changes[0].Date
	var before, after []float64
	for _, s := range sorted {
		q, ok := s.Quality()
		if !ok {
			continue
		}
		if s.StartedAt.Before(pivot) {
			before = append(before, q)
		} else {
			after = append(after, q)
		}
	}

	if len(before) > effectivenessWindow {
		before = before[len(before)-effectivenessWindow:]
	}
	if len(after) > effectivenessWindow {
		after = after[:effectivenessWindow]
	}

	result := InstructionEffectiveness{
		Changes:          changes,
		BeforeAvgQuality: averageQuality(before),
		AfterAvgQuality:  averageQuality(after),
	}
	result.Verdict, result.Message = effectivenessVerdict(result.BeforeAvgQuality, result.AfterAvgQuality)
	return result
}

func effectivenessVerdict(before, after *float64) (string, string) {
	if before == nil || after == nil {
		return VerdictNotEnoughData, "Not enough data to compare quality before and after instruction changes."
	}
	b, a := formatScore(*before), formatScore(*after)
	switch {
	case *after > *before+stableBand:
		return VerdictImproved, fmt.Sprintf("Quality improved from %s to %s after instruction file updates.", b, a)
	case *after < *before-stableBand:
		return VerdictDeclined, fmt.Sprintf("Quality declined from %s to %s after instruction file updates.", b, a)
	default:
		return VerdictStable, fmt.Sprintf("Quality remained stable (%s -> %s) after instruction file updates.", b, a)
	}
}
