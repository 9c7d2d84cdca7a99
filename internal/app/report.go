package app

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/akoskomuves/promptly/internal/analyzer"
	"github.com/akoskomuves/promptly/internal/output"
	"github.com/akoskomuves/promptly/internal/session"
)

var (
	reportPeriod string
	reportFrom   string
	reportTo     string
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Totals for a period",
	Long: `Summarize token usage, messages, duration, models, tags, git activity,
categories, and projects for a period. Without flags all sessions are
included.

Examples:
  promptly report --period week
  promptly report --from 2026-01-01 --to 2026-01-31
  promptly report --json`,
	Args: cobra.NoArgs,
	RunE: runReport,
}

func init() {
	reportCmd.Flags().StringVar(&reportPeriod, "period", "", "today, week, month, year, or all")
	reportCmd.Flags().StringVar(&reportFrom, "from", "", "Start date (YYYY-MM-DD)")
	reportCmd.Flags().StringVar(&reportTo, "to", "", "End date, inclusive (YYYY-MM-DD); defaults to now")
	rootCmd.AddCommand(reportCmd)
}

// reportRange is a half-open time range. A nil range covers all sessions.
type reportRange struct {
	From, To time.Time
}

type projectTotals struct {
	Project  string `json:"project"`
	Sessions int    `json:"sessions"`
	Tokens   int    `json:"tokens"`
}

type report struct {
	Label               string              `json:"label"`
	Sessions            int                 `json:"sessions"`
	Completed           int                 `json:"completed"`
	TotalTokens         int                 `json:"total_tokens"`
	PromptTokens        int                 `json:"prompt_tokens"`
	ResponseTokens      int                 `json:"response_tokens"`
	Messages            int                 `json:"messages"`
	ToolCalls           int                 `json:"tool_calls"`
	AvgDurationMinutes  int                 `json:"avg_duration_minutes"`
	AvgTokensPerSession int                 `json:"avg_tokens_per_session"`
	Cost                decimal.Decimal     `json:"cost"`
	Models              []string            `json:"models"`
	ClientTools         []session.NameCount `json:"client_tools"`
	Tags                []session.NameCount `json:"tags"`
	Commits             int                 `json:"commits"`
	Insertions          int                 `json:"insertions"`
	Deletions           int                 `json:"deletions"`
	Categories          []session.NameCount `json:"categories"`
	Projects            []projectTotals     `json:"projects"`
}

func runReport(cmd *cobra.Command, args []string) error {
	rng, err := resolveReportRange(time.Now(), reportPeriod, reportFrom, reportTo)
	if err != nil {
		return err
	}

	cfg, db, err := loadEnv()
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	label := "All time"
	var raws []session.RawRecord
	if rng != nil {
		raws, err = db.ListSessionsInRange(rng.From, rng.To)
		label = fmt.Sprintf("%s to %s", rng.From.Format(analyzer.DateLayout), rng.To.Format(analyzer.DateLayout))
	} else {
		raws, err = db.ListAllSessions()
	}
	if err != nil {
		return err
	}

	recs := session.DecodeAll(raws)
	cfg.PriceTable().PriceSessions(recs)
	r := buildReport(recs, label)

	if flagJSON {
		return writeJSON(cmd.OutOrStdout(), r)
	}
	renderReport(cmd.OutOrStdout(), r)
	return nil
}

// resolveReportRange turns report flags into a range ending at now unless
// to is given. Explicit dates take precedence over a period.
func resolveReportRange(now time.Time, period, from, to string) (*reportRange, error) {
	loc := now.Location()

	if from != "" || to != "" {
		rng := &reportRange{To: now}
		if from != "" {
			t, err := time.ParseInLocation(analyzer.DateLayout, from, loc)
			if err != nil {
				return nil, fmt.Errorf("parsing from: %w", err)
			}
			rng.From = t
		}
		if to != "" {
			t, err := time.ParseInLocation(analyzer.DateLayout, to, loc)
			if err != nil {
				return nil, fmt.Errorf("parsing to: %w", err)
			}
			rng.To = t.AddDate(0, 0, 1)
		}
		return rng, nil
	}

	switch period {
	case "", "all":
		return nil, nil
	case "today":
		return &reportRange{From: time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc), To: now}, nil
	case "week":
		return &reportRange{From: now.AddDate(0, 0, -7), To: now}, nil
	case "month":
		return &reportRange{From: now.AddDate(0, -1, 0), To: now}, nil
	case "year":
		return &reportRange{From: now.AddDate(-1, 0, 0), To: now}, nil
	default:
		return nil, fmt.Errorf("unknown period %q (use today, week, month, year, or all)", period)
	}
}

func buildReport(recs []session.Record, label string) report {
	r := report{Label: label, Sessions: len(recs), Cost: decimal.Zero}

	var durations []float64
	clientTools := map[string]int{}
	tags := map[string]int{}
	categories := map[string]int{}
	projects := map[string]*projectTotals{}
	var models []string

	for _, s := range recs {
		r.TotalTokens += s.TotalTokens
		r.PromptTokens += s.PromptTokens
		r.ResponseTokens += s.ResponseTokens
		r.Messages += s.MessageCount
		r.ToolCalls += s.ToolCallCount
		r.Cost = r.Cost.Add(s.EstimatedCost)
		models = append(models, s.Models...)

		if s.Status == session.StatusCompleted {
			r.Completed++
			if s.FinishedAt != nil {
				durations = append(durations, s.Duration().Minutes())
			}
		}
		if s.ClientTool != "" {
			clientTools[s.ClientTool]++
		}
		for _, t := range s.Tags {
			tags[t]++
		}
		if s.Git != nil {
			r.Commits += s.Git.TotalCommits
			r.Insertions += s.Git.TotalInsertions
			r.Deletions += s.Git.TotalDeletions
		}

		category := string(s.Category)
		if category == "" {
			category = "uncategorized"
		}
		categories[category]++

		if p, ok := session.ExtractProject(s.TicketID); ok {
			pt := projects[p]
			if pt == nil {
				pt = &projectTotals{Project: p}
				projects[p] = pt
			}
			pt.Sessions++
			pt.Tokens += s.TotalTokens
		}
	}

	if len(durations) > 0 {
		r.AvgDurationMinutes = int(lo.Sum(durations)/float64(len(durations)) + 0.5)
	}
	if r.Sessions > 0 {
		r.AvgTokensPerSession = int(float64(r.TotalTokens)/float64(r.Sessions) + 0.5)
	}

	r.Models = lo.Uniq(models)
	sort.Strings(r.Models)
	r.ClientTools = sortedCounts(clientTools)
	r.Tags = sortedCounts(tags)
	r.Categories = sortedCounts(categories)

	r.Projects = make([]projectTotals, 0, len(projects))
	for _, p := range projects {
		r.Projects = append(r.Projects, *p)
	}
	sort.Slice(r.Projects, func(i, j int) bool {
		if r.Projects[i].Tokens != r.Projects[j].Tokens {
			return r.Projects[i].Tokens > r.Projects[j].Tokens
		}
		return r.Projects[i].Project < r.Projects[j].Project
	})
	return r
}

// sortedCounts orders counts by count descending, then name.
func sortedCounts(counts map[string]int) []session.NameCount {
	out := lo.MapToSlice(counts, func(name string, n int) session.NameCount {
		return session.NameCount{Name: name, Count: n}
	})
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Name < out[j].Name
	})
	return out
}

func joinCounts(counts []session.NameCount) string {
	parts := make([]string, len(counts))
	for i, c := range counts {
		parts[i] = fmt.Sprintf("%s (%d)", c.Name, c.Count)
	}
	return strings.Join(parts, ", ")
}

func renderReport(w io.Writer, r report) {
	fmt.Fprintln(w, output.Section("Report "+r.Label))
	if r.Sessions == 0 {
		fmt.Fprintf(w, " %s\n\n", output.StyleMuted.Render("No sessions found for this period."))
		return
	}

	fmt.Fprintln(w, output.KeyValue("Sessions", fmt.Sprintf("%d total, %d completed", r.Sessions, r.Completed)))
	fmt.Fprintln(w, output.KeyValue("Total tokens", fmt.Sprintf("%s (%s prompt, %s response)",
		formatTokens(r.TotalTokens), formatTokens(r.PromptTokens), formatTokens(r.ResponseTokens))))
	fmt.Fprintln(w, output.KeyValue("Estimated cost", "$"+r.Cost.StringFixed(2)))
	fmt.Fprintln(w, output.KeyValue("Messages", formatTokens(r.Messages)))
	fmt.Fprintln(w, output.KeyValue("Tool calls", formatTokens(r.ToolCalls)))
	fmt.Fprintln(w, output.KeyValue("Avg duration", fmt.Sprintf("%dm", r.AvgDurationMinutes)))
	fmt.Fprintln(w, output.KeyValue("Avg tokens/session", formatTokens(r.AvgTokensPerSession)))

	if len(r.Models) > 0 {
		fmt.Fprintln(w, output.KeyValue("Models", strings.Join(r.Models, ", ")))
	}
	if len(r.ClientTools) > 0 {
		fmt.Fprintln(w, output.KeyValue("AI tools", joinCounts(r.ClientTools)))
	}
	if len(r.Tags) > 0 {
		fmt.Fprintln(w, output.KeyValue("Tags", joinCounts(r.Tags)))
	}
	if r.Commits > 0 {
		fmt.Fprintln(w, output.KeyValue("Git commits", fmt.Sprintf("%d (+%d/-%d lines)", r.Commits, r.Insertions, r.Deletions)))
	}
	fmt.Fprintln(w, output.KeyValue("By category", joinCounts(r.Categories)))

	if len(r.Projects) > 0 {
		fmt.Fprintln(w, output.Section("By Project"))
		tbl := output.NewTable("Project", "Sessions", "Tokens").AlignRight(1, 2)
		for _, p := range r.Projects {
			tbl.AddRow(p.Project, fmt.Sprintf("%d", p.Sessions), formatTokens(p.Tokens))
		}
		tbl.Print(w)
	}
	fmt.Fprintln(w)
}
