package analyzer

import "github.com/akoskomuves/promptly/internal/session"

// AnalyzeInput is the transcript handed to the quality analyzer.
type AnalyzeInput struct {
	Conversations []session.Turn
	MessageCount  int
	TicketID      string
}

// QualityAnalyzer derives session intelligence from a transcript. It holds
// only its pattern tables and is safe for concurrent use.
type QualityAnalyzer struct {
	patterns Patterns
}

// NewQualityAnalyzer returns an analyzer using the given pattern tables.
func NewQualityAnalyzer(p Patterns) *QualityAnalyzer {
	return &QualityAnalyzer{patterns: p}
}

// Analyze computes the full intelligence bundle for one transcript.
// Identical input always yields identical output.
func (a *QualityAnalyzer) Analyze(in AnalyzeInput) session.Intelligence {
	turns := in.Conversations
	return session.Intelligence{
		QualityScore:   a.qualityScore(turns),
		ToolUsage:      a.toolUsage(turns),
		SubagentStats:  a.subagentStats(turns),
		ContextMetrics: a.contextMetrics(turns),
		PromptQuality:  a.promptQuality(turns),
	}
}

// Enrich fills in the category and intelligence of a finished session.
// Both are write-once: values already present on the record are kept.
func (a *QualityAnalyzer) Enrich(rec session.Record) session.Record {
	if rec.Category == "" {
		rec.Category = Classify(rec.TicketID, rec.Git, rec.Conversations)
	}
	if rec.Intelligence == nil {
		intel := a.Analyze(AnalyzeInput{
			Conversations: rec.Conversations,
			MessageCount:  rec.MessageCount,
			TicketID:      rec.TicketID,
		})
		rec.Intelligence = &intel
	}
	return rec
}

// Analyze computes intelligence with the default pattern tables.
func Analyze(in AnalyzeInput) session.Intelligence {
	return NewQualityAnalyzer(DefaultPatterns()).Analyze(in)
}

// Enrich classifies and analyzes rec with the default pattern tables.
func Enrich(rec session.Record) session.Record {
	return NewQualityAnalyzer(DefaultPatterns()).Enrich(rec)
}
