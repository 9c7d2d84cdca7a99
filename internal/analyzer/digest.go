package analyzer

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/akoskomuves/promptly/internal/session"
)

const (
	topProjectLimit = 5

	// tokenSwingHighlight is the token percent change worth a highlight.
	tokenSwingHighlight = 20

	localDeveloper = "local"
)

// DateLayout is the calendar-date format accepted for period arguments.
const DateLayout = "2006-01-02"

// ResolveDigestBounds turns digest arguments into period bounds relative to
// now. With from and to it returns that custom period, to being inclusive.
// Otherwise it returns the week containing date, or the current week.
func ResolveDigestBounds(now time.Time, date, from, to string) (PeriodBounds, error) {
	loc := now.Location()

	if from != "" || to != "" {
		if from == "" || to == "" {
			return PeriodBounds{}, errors.New("from and to must be given together")
		}
		start, err := time.ParseInLocation(DateLayout, from, loc)
		if err != nil {
			return PeriodBounds{}, fmt.Errorf("parsing from: %w", err)
		}
		end, err := time.ParseInLocation(DateLayout, to, loc)
		if err != nil {
			return PeriodBounds{}, fmt.Errorf("parsing to: %w", err)
		}
		end = end.AddDate(0, 0, 1)
		if !end.After(start) {
			return PeriodBounds{}, errors.New("to must not be before from")
		}
		return CustomBoundaries(start, end), nil
	}

	ref := now
	if date != "" {
		d, err := time.ParseInLocation(DateLayout, date, loc)
		if err != nil {
			return PeriodBounds{}, fmt.Errorf("parsing date: %w", err)
		}
		ref = d
	}
	return WeekBoundaries(ref), nil
}

// WeekBoundaries returns the Monday-to-Monday week containing ref, in ref's
// location, and the seven days before it.
func WeekBoundaries(ref time.Time) PeriodBounds {
	daysSinceMonday := (int(ref.Weekday()) + 6) % 7
	start := time.Date(ref.Year(), ref.Month(), ref.Day()-daysSinceMonday, 0, 0, 0, 0, ref.Location())
	return PeriodBounds{
		CurrentStart:  start,
		CurrentEnd:    start.AddDate(0, 0, 7),
		PreviousStart: start.AddDate(0, 0, -7),
		PreviousEnd:   start,
	}
}

// CustomBoundaries returns [from, to) and the equally long window ending at from.
func CustomBoundaries(from, to time.Time) PeriodBounds {
	d := to.Sub(from)
	return PeriodBounds{
		CurrentStart:  from,
		CurrentEnd:    to,
		PreviousStart: from.Add(-d),
		PreviousEnd:   from,
	}
}

// PercentChange returns the rounded percent change from previous to current.
// A zero previous value yields 100 when current is positive and nil otherwise.
func PercentChange(current, previous float64) *int {
	if previous == 0 {
		if current > 0 {
			return intPtr(100)
		}
		return nil
	}
	return intPtr(int(roundHalfUp((current - previous) / previous * 100)))
}

// ComputeDigest compares the sessions started in the current period against
// the previous period and summarizes the current period's projects,
// developers, and categories.
func ComputeDigest(sessions []session.Record, bounds PeriodBounds) WeeklyDigest {
	var current, previous []session.Record
	for _, s := range sessions {
		switch {
		case inPeriod(s.StartedAt, bounds.CurrentStart, bounds.CurrentEnd):
			current = append(current, s)
		case inPeriod(s.StartedAt, bounds.PreviousStart, bounds.PreviousEnd):
			previous = append(previous, s)
		}
	}

	cur := ComputePeriodMetrics(current)
	prev := ComputePeriodMetrics(previous)

	changes := PeriodChanges{
		Sessions: PercentChange(float64(cur.TotalSessions), float64(prev.TotalSessions)),
		Tokens:   PercentChange(float64(cur.TotalTokens), float64(prev.TotalTokens)),
		Cost:     PercentChange(cur.TotalCost, prev.TotalCost),
		Messages: PercentChange(float64(cur.TotalMessages), float64(prev.TotalMessages)),
		Commits:  PercentChange(float64(cur.TotalCommits), float64(prev.TotalCommits)),
	}
	if cur.AvgQuality != nil && prev.AvgQuality != nil {
		changes.Quality = PercentChange(*cur.AvgQuality, *prev.AvgQuality)
	}

	d := WeeklyDigest{
		PeriodLabel:   formatPeriodLabel(bounds.CurrentStart, bounds.CurrentEnd),
		PreviousLabel: formatPeriodLabel(bounds.PreviousStart, bounds.PreviousEnd),
		Bounds:        bounds,
		Comparison: DigestComparison{
			Current:  cur,
			Previous: prev,
			Changes:  changes,
		},
		TopProjects:   topProjects(current, topProjectLimit),
		Developers:    developerEfficiency(current),
		TopCategories: categoryCounts(current),
	}
	d.Highlights = digestHighlights(d)
	return d
}

func inPeriod(t, start, end time.Time) bool {
	return !t.Before(start) && t.Before(end)
}

// ComputePeriodMetrics totals a set of sessions.
func ComputePeriodMetrics(sessions []session.Record) PeriodMetrics {
	m := PeriodMetrics{TotalSessions: len(sessions)}

	cost := decimal.Zero
	var durationSum float64
	var durations int
	var qualitySum float64
	var scored int

	for _, s := range sessions {
		m.TotalTokens += s.TotalTokens
		m.TotalMessages += s.MessageCount
		cost = cost.Add(s.EstimatedCost)

		if s.Status == session.StatusCompleted {
			m.CompletedSessions++
			if s.FinishedAt != nil {
				durationSum += s.FinishedAt.Sub(s.StartedAt).Minutes()
				durations++
			}
		}

		if q, ok := s.Quality(); ok {
			qualitySum += q
			scored++
		}

		if s.Git != nil {
			m.TotalCommits += s.Git.TotalCommits
			m.TotalInsertions += s.Git.TotalInsertions
			m.TotalDeletions += s.Git.TotalDeletions
		}
	}

	m.TotalCost = cost.Round(2).InexactFloat64()
	if durations > 0 {
		m.AvgDuration = int(roundHalfUp(durationSum / float64(durations)))
	}
	if scored > 0 {
		avg := round1(qualitySum / float64(scored))
		m.AvgQuality = &avg
	}
	return m
}

func topProjects(sessions []session.Record, limit int) []ProjectUsage {
	type acc struct {
		sessions, tokens int
		cost             decimal.Decimal
	}
	byProject := make(map[string]*acc)
	for _, s := range sessions {
		project, ok := session.ExtractProject(s.TicketID)
		if !ok {
			continue
		}
		a := byProject[project]
		if a == nil {
			a = &acc{}
			byProject[project] = a
		}
		a.sessions++
		a.tokens += s.TotalTokens
		a.cost = a.cost.Add(s.EstimatedCost)
	}

	out := make([]ProjectUsage, 0, len(byProject))
	for name, a := range byProject {
		out = append(out, ProjectUsage{
			Project:  name,
			Sessions: a.sessions,
			Tokens:   a.tokens,
			Cost:     a.cost.Round(2).InexactFloat64(),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Tokens != out[j].Tokens {
			return out[i].Tokens > out[j].Tokens
		}
		return out[i].Project < out[j].Project
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

// developerEfficiency groups sessions by developer (email, then name, then
// "local") and ranks them by cost per session, cheapest first.
func developerEfficiency(sessions []session.Record) []DeveloperEfficiency {
	type acc struct {
		name       string
		sessions   int
		tokens     int
		cost       decimal.Decimal
		qualitySum float64
		scored     int
	}
	byDev := make(map[string]*acc)
	for _, s := range sessions {
		key := firstNonEmpty(s.UserEmail, s.UserName, localDeveloper)
		a := byDev[key]
		if a == nil {
			a = &acc{name: firstNonEmpty(s.UserName, s.UserEmail, localDeveloper)}
			byDev[key] = a
		}
		a.sessions++
		a.tokens += s.TotalTokens
		a.cost = a.cost.Add(s.EstimatedCost)
		if q, ok := s.Quality(); ok {
			a.qualitySum += q
			a.scored++
		}
	}

	out := make([]DeveloperEfficiency, 0, len(byDev))
	for _, a := range byDev {
		d := DeveloperEfficiency{
			Name:             a.name,
			Sessions:         a.sessions,
			TokensPerSession: int(roundHalfUp(float64(a.tokens) / float64(a.sessions))),
			CostPerSession:   a.cost.Div(decimal.NewFromInt(int64(a.sessions))).Round(2).InexactFloat64(),
		}
		if a.scored > 0 {
			avg := round1(a.qualitySum / float64(a.scored))
			d.AvgQuality = &avg
		}
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CostPerSession != out[j].CostPerSession {
			return out[i].CostPerSession < out[j].CostPerSession
		}
		return out[i].Name < out[j].Name
	})
	return out
}

func categoryCounts(sessions []session.Record) []CategoryCount {
	byCat := make(map[session.Category]*CategoryCount)
	for _, s := range sessions {
		cat := s.Category
		if cat == "" {
			cat = session.CategoryOther
		}
		c := byCat[cat]
		if c == nil {
			c = &CategoryCount{Category: cat}
			byCat[cat] = c
		}
		c.Sessions++
		c.Tokens += s.TotalTokens
	}

	out := make([]CategoryCount, 0, len(byCat))
	for _, c := range byCat {
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Sessions != out[j].Sessions {
			return out[i].Sessions > out[j].Sessions
		}
		return out[i].Category < out[j].Category
	})
	return out
}

func digestHighlights(d WeeklyDigest) []string {
	cur := d.Comparison.Current
	prev := d.Comparison.Previous
	changes := d.Comparison.Changes

	highlights := []string{}

	if c := changes.Sessions; c != nil && *c != 0 {
		highlights = append(highlights, fmt.Sprintf("Sessions %s %d%% from last period", upDown(*c), abs(*c)))
	}

	if len(d.TopProjects) > 0 {
		top := d.TopProjects[0]
		highlights = append(highlights, fmt.Sprintf("%s was the busiest project (%d %s)",
			top.Project, top.Sessions, plural(top.Sessions, "session")))
	}

	if cur.AvgQuality != nil && prev.AvgQuality != nil && *cur.AvgQuality != *prev.AvgQuality {
		verb := "improved"
		if *cur.AvgQuality < *prev.AvgQuality {
			verb = "declined"
		}
		highlights = append(highlights, fmt.Sprintf("Quality %s from %s to %s",
			verb, formatScore(*prev.AvgQuality), formatScore(*cur.AvgQuality)))
	}

	if cur.TotalCommits > 0 {
		highlights = append(highlights, fmt.Sprintf("%d %s (+%d/-%d lines)",
			cur.TotalCommits, plural(cur.TotalCommits, "commit"), cur.TotalInsertions, cur.TotalDeletions))
	}

	if c := changes.Tokens; c != nil && abs(*c) >= tokenSwingHighlight {
		highlights = append(highlights, fmt.Sprintf("Token usage %s %d%%", upDown(*c), abs(*c)))
	}

	return highlights
}

// formatPeriodLabel renders a half-open period as "Jan 5 – Jan 11, 2026",
// showing the last included day.
func formatPeriodLabel(start, end time.Time) string {
	last := end.AddDate(0, 0, -1)
	return start.Format("Jan 2") + " – " + last.Format("Jan 2, 2006")
}

func formatScore(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

func plural(n int, word string) string {
	if n == 1 {
		return word
	}
	return word + "s"
}

func upDown(n int) string {
	if n > 0 {
		return "up"
	}
	return "down"
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
