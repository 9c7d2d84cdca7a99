package analyzer

import "github.com/akoskomuves/promptly/internal/session"

// summarizationDrop is the fraction of the previous cumulative token count
// below which the context is considered compacted.
const summarizationDrop = 0.7

// contextMetrics walks the transcript accumulating token estimates and
// reports the peak, growth rate, compaction events, and window utilization.
func (a *QualityAnalyzer) contextMetrics(turns []session.Turn) session.ContextMetrics {
	if len(turns) == 0 {
		return session.ContextMetrics{}
	}

	var cumulative, prev, peak, total, events, sinceLast int
	var gaps []int

	for _, t := range turns {
		tokens := estimateTokens(t)
		total += tokens
		cumulative += tokens

		if prev > 0 && float64(cumulative) < float64(prev)*summarizationDrop {
			events++
			gaps = append(gaps, sinceLast)
			sinceLast = 0
		}

		if cumulative > peak {
			peak = cumulative
		}
		prev = cumulative
		sinceLast++
	}

	m := session.ContextMetrics{
		PeakTokenCount:      peak,
		SummarizationEvents: events,
		TokenGrowthRate:     int(roundHalfUp(float64(total) / float64(len(turns)))),
	}

	if len(gaps) > 0 {
		sum := 0
		for _, g := range gaps {
			sum += g
		}
		avg := int(roundHalfUp(float64(sum) / float64(len(gaps))))
		m.TurnsBeforeSummarization = &avg
	}

	window := a.patterns.ContextWindow
	if window <= 0 {
		window = DefaultContextWindow
	}
	m.ContextUtilization = clamp(round2(float64(peak)/float64(window)), 0, 1)

	return m
}
