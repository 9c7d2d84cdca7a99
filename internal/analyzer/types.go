// Package analyzer derives session intelligence from transcripts and builds
// cross-session reports: period digests, project trends, parallel-session
// overlaps, skill usage, and instruction-file effectiveness.
package analyzer

import (
	"time"

	"github.com/akoskomuves/promptly/internal/session"
)

// PeriodBounds delimits the current and previous reporting periods.
// Both periods are half-open: [start, end).
type PeriodBounds struct {
	CurrentStart  time.Time `json:"current_start"`
	CurrentEnd    time.Time `json:"current_end"`
	PreviousStart time.Time `json:"previous_start"`
	PreviousEnd   time.Time `json:"previous_end"`
}

// PeriodMetrics aggregates the sessions started within one period.
type PeriodMetrics struct {
	TotalSessions     int     `json:"total_sessions"`
	CompletedSessions int     `json:"completed_sessions"`
	TotalTokens       int     `json:"total_tokens"`
	TotalMessages     int     `json:"total_messages"`
	TotalCost         float64 `json:"total_cost"`

	// AvgDuration is the mean length in minutes of completed sessions.
	AvgDuration int `json:"avg_duration_minutes"`

	// AvgQuality is nil when no session in the period has been scored.
	AvgQuality *float64 `json:"avg_quality"`

	TotalCommits    int `json:"total_commits"`
	TotalInsertions int `json:"total_insertions"`
	TotalDeletions  int `json:"total_deletions"`
}

// PeriodChanges holds percent changes from the previous period. A nil
// change means the comparison is undefined.
type PeriodChanges struct {
	Sessions *int `json:"sessions"`
	Tokens   *int `json:"tokens"`
	Cost     *int `json:"cost"`
	Messages *int `json:"messages"`
	Quality  *int `json:"quality"`
	Commits  *int `json:"commits"`
}

// DigestComparison pairs the two periods with their percent changes.
type DigestComparison struct {
	Current  PeriodMetrics `json:"current"`
	Previous PeriodMetrics `json:"previous"`
	Changes  PeriodChanges `json:"changes"`
}

// ProjectUsage is a project's share of a period.
type ProjectUsage struct {
	Project  string  `json:"project"`
	Sessions int     `json:"sessions"`
	Tokens   int     `json:"tokens"`
	Cost     float64 `json:"cost"`
}

// DeveloperEfficiency summarizes one developer's sessions in a period.
type DeveloperEfficiency struct {
	Name             string   `json:"name"`
	Sessions         int      `json:"sessions"`
	TokensPerSession int      `json:"tokens_per_session"`
	CostPerSession   float64  `json:"cost_per_session"`
	AvgQuality       *float64 `json:"avg_quality"`
}

// CategoryCount is the session and token volume of one work category.
type CategoryCount struct {
	Category session.Category `json:"category"`
	Sessions int              `json:"sessions"`
	Tokens   int              `json:"tokens"`
}

// WeeklyDigest is the period-over-period report.
type WeeklyDigest struct {
	PeriodLabel   string                `json:"period_label"`
	PreviousLabel string                `json:"previous_label"`
	Bounds        PeriodBounds          `json:"bounds"`
	Comparison    DigestComparison      `json:"comparison"`
	TopProjects   []ProjectUsage        `json:"top_projects"`
	Developers    []DeveloperEfficiency `json:"developers"`
	TopCategories []CategoryCount       `json:"top_categories"`
	Highlights    []string              `json:"highlights"`
}

// TrendDirection describes how a project's token usage moved.
type TrendDirection string

const (
	TrendRising  TrendDirection = "rising"
	TrendFalling TrendDirection = "falling"
	TrendStable  TrendDirection = "stable"
)

// TrendBucket is one calendar window of a project trend.
type TrendBucket struct {
	Label    string    `json:"label"`
	Start    time.Time `json:"start"`
	End      time.Time `json:"end"`
	Sessions int       `json:"sessions"`
	Tokens   int       `json:"tokens"`
	Cost     float64   `json:"cost"`
}

// ProjectCostTrend is a project's usage over consecutive windows, oldest first.
type ProjectCostTrend struct {
	Project     string         `json:"project"`
	Periods     []TrendBucket  `json:"periods"`
	TotalTokens int            `json:"total_tokens"`
	TotalCost   float64        `json:"total_cost"`
	Direction   TrendDirection `json:"trend_direction"`

	// ChangePercent compares the first and last non-empty windows. Nil with
	// fewer than two non-empty windows.
	ChangePercent *int `json:"change_percent"`
}

// ParallelMember is one session inside a parallel group.
type ParallelMember struct {
	ID          string    `json:"id"`
	TicketID    string    `json:"ticket_id"`
	StartedAt   time.Time `json:"started_at"`
	FinishedAt  time.Time `json:"finished_at"`
	TotalTokens int       `json:"total_tokens"`
}

// ParallelSessionGroup is a set of sessions that were active at the same time.
type ParallelSessionGroup struct {
	Sessions       []ParallelMember `json:"sessions"`
	OverlapStart   time.Time        `json:"overlap_start"`
	OverlapEnd     time.Time        `json:"overlap_end"`
	OverlapMinutes int              `json:"overlap_minutes"`
	CombinedTokens int              `json:"combined_tokens"`
}

// SkillStat correlates one skill with session quality.
type SkillStat struct {
	Name             string   `json:"name"`
	TotalInvocations int      `json:"total_invocations"`
	SessionsUsed     int      `json:"sessions_used"`
	AvgQualityUsed   *float64 `json:"avg_quality_when_used"`

	// AvgQualityNotUsed is the shared baseline of sessions with no skills.
	AvgQualityNotUsed *float64 `json:"avg_quality_when_not_used"`
}

// SkillUsageAnalytics lists skills by invocation count.
type SkillUsageAnalytics struct {
	Skills []SkillStat `json:"skills"`
}

// InstructionChange records a session that edited instruction files.
type InstructionChange struct {
	SessionID string    `json:"session_id"`
	TicketID  string    `json:"ticket_id"`
	Date      time.Time `json:"date"`
	Files     []string  `json:"files"`
}

// Instruction effectiveness verdicts.
const (
	VerdictImproved      = "improved"
	VerdictDeclined      = "declined"
	VerdictStable        = "stable"
	VerdictNotEnoughData = "not_enough_data"
	VerdictNoChanges     = "no_changes"
)

// InstructionEffectiveness compares session quality before and after the
// first instruction-file edit.
type InstructionEffectiveness struct {
	Changes          []InstructionChange `json:"changes"`
	BeforeAvgQuality *float64            `json:"before_avg_quality"`
	AfterAvgQuality  *float64            `json:"after_avg_quality"`
	Verdict          string              `json:"verdict"`
	Message          string              `json:"message"`
}
