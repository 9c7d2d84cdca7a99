package analyzer

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/akoskomuves/promptly/internal/session"
)

// Trend defaults and thresholds.
const (
	DefaultTrendPeriods = 4
	DefaultTrendDays    = 7

	trendThreshold = 10
)

type trendWindow struct {
	label      string
	start, end time.Time
}

// ComputeProjectTrends buckets each project's sessions into periodCount
// consecutive windows of periodDays days, anchored on the day of the most
// recent session. Windows run oldest to newest. Non-positive arguments fall
// back to the defaults.
func ComputeProjectTrends(sessions []session.Record, periodCount, periodDays int) []ProjectCostTrend {
	if len(sessions) == 0 {
		return []ProjectCostTrend{}
	}
	if periodCount <= 0 {
		periodCount = DefaultTrendPeriods
	}
	if periodDays <= 0 {
		periodDays = DefaultTrendDays
	}

	windows := trendWindows(latestStart(sessions), periodCount, periodDays)

	byProject := make(map[string][]session.Record)
	var names []string
	for _, s := range sessions {
		project, ok := session.ExtractProject(s.TicketID)
		if !ok {
			continue
		}
		if _, seen := byProject[project]; !seen {
			names = append(names, project)
		}
		byProject[project] = append(byProject[project], s)
	}

	trends := make([]ProjectCostTrend, 0, len(names))
	for _, name := range names {
		trends = append(trends, projectTrend(name, byProject[name], windows))
	}

	sort.SliceStable(trends, func(i, j int) bool {
		if trends[i].TotalTokens != trends[j].TotalTokens {
			return trends[i].TotalTokens > trends[j].TotalTokens
		}
		return trends[i].Project < trends[j].Project
	})
	return trends
}

func latestStart(sessions []session.Record) time.Time {
	var latest time.Time
	for _, s := range sessions {
		if s.StartedAt.After(latest) {
			latest = s.StartedAt
		}
	}
	return latest
}

// trendWindows builds count windows of days each. The newest window ends at
// the last instant of anchor's day.
func trendWindows(anchor time.Time, count, days int) []trendWindow {
	windows := make([]trendWindow, count)
	for i := 0; i < count; i++ {
		endDay := anchor.AddDate(0, 0, -i*days)
		end := time.Date(endDay.Year(), endDay.Month(), endDay.Day(), 23, 59, 59, 999_000_000, anchor.Location())
		startDay := end.AddDate(0, 0, -days+1)
		start := time.Date(startDay.Year(), startDay.Month(), startDay.Day(), 0, 0, 0, 0, anchor.Location())

		windows[count-1-i] = trendWindow{
			label: start.Format("Jan 2") + " – " + end.Format("Jan 2"),
			start: start,
			end:   end,
		}
	}
	return windows
}

func projectTrend(project string, sessions []session.Record, windows []trendWindow) ProjectCostTrend {
	t := ProjectCostTrend{
		Project:   project,
		Periods:   make([]TrendBucket, len(windows)),
		Direction: TrendStable,
	}

	totalCost := decimal.Zero
	for i, w := range windows {
		b := TrendBucket{Label: w.label, Start: w.start, End: w.end}
		cost := decimal.Zero
		for _, s := range sessions {
			if s.StartedAt.Before(w.start) || s.StartedAt.After(w.end) {
				continue
			}
			b.Sessions++
			b.Tokens += s.TotalTokens
			cost = cost.Add(s.EstimatedCost)
		}
		b.Cost = cost.Round(2).InexactFloat64()
		totalCost = totalCost.Add(cost.Round(2))
		t.TotalTokens += b.Tokens
		t.Periods[i] = b
	}
	t.TotalCost = totalCost.Round(2).InexactFloat64()

	var nonEmpty []TrendBucket
	for _, b := range t.Periods {
		if b.Tokens > 0 {
			nonEmpty = append(nonEmpty, b)
		}
	}
	if len(nonEmpty) >= 2 {
		first := nonEmpty[0].Tokens
		last := nonEmpty[len(nonEmpty)-1].Tokens
		change := int(roundHalfUp(float64(last-first) / float64(first) * 100))
		t.ChangePercent = &change
		switch {
		case change > trendThreshold:
			t.Direction = TrendRising
		case change < -trendThreshold:
			t.Direction = TrendFalling
		}
	}
	return t
}
