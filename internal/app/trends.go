package app

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/akoskomuves/promptly/internal/analyzer"
	"github.com/akoskomuves/promptly/internal/output"
)

var (
	trendsPeriods int
	trendsDays    int
)

var trendsCmd = &cobra.Command{
	Use:   "trends",
	Short: "Per-project token and cost trends",
	Long: `Bucket each project's sessions into consecutive periods ending on the day
of the most recent session and report whether usage is rising, falling,
or stable. Projects come from ticket ids with a numeric suffix (AUTH-123).

Examples:
  promptly trends
  promptly trends --periods 6 --days 14`,
	Args: cobra.NoArgs,
	RunE: runTrends,
}

func init() {
	trendsCmd.Flags().IntVar(&trendsPeriods, "periods", 0, "Number of periods (default from config)")
	trendsCmd.Flags().IntVar(&trendsDays, "days", 0, "Days per period (default from config)")
	rootCmd.AddCommand(trendsCmd)
}

func runTrends(cmd *cobra.Command, args []string) error {
	cfg, db, err := loadEnv()
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	recs, err := loadRecords(cfg, db)
	if err != nil {
		return err
	}

	periods, days := cfg.Trends.PeriodCount, cfg.Trends.PeriodDays
	if trendsPeriods > 0 {
		periods = trendsPeriods
	}
	if trendsDays > 0 {
		days = trendsDays
	}
	trends := analyzer.ComputeProjectTrends(recs, periods, days)

	if flagJSON {
		return writeJSON(cmd.OutOrStdout(), trends)
	}
	renderTrends(cmd.OutOrStdout(), trends)
	return nil
}

func renderTrends(w io.Writer, trends []analyzer.ProjectCostTrend) {
	fmt.Fprintln(w, output.Section("Project Trends"))
	if len(trends) == 0 {
		fmt.Fprintf(w, " %s\n\n", output.StyleMuted.Render("No project sessions found."))
		return
	}

	headers := []string{"Project"}
	for _, p := range trends[0].Periods {
		headers = append(headers, p.Label)
	}
	headers = append(headers, "Total", "Cost", "Trend")

	tbl := output.NewTable(headers...)
	for i := 1; i < len(headers)-1; i++ {
		tbl.AlignRight(i)
	}
	for _, t := range trends {
		row := []string{t.Project}
		for _, p := range t.Periods {
			row = append(row, formatTokens(p.Tokens))
		}
		change := output.DirectionArrow(string(t.Direction))
		if t.ChangePercent != nil {
			change += fmt.Sprintf(" (%+d%%)", *t.ChangePercent)
		}
		row = append(row, formatTokens(t.TotalTokens), fmt.Sprintf("$%.2f", t.TotalCost), change)
		tbl.AddRow(row...)
	}
	tbl.Print(w)
	fmt.Fprintln(w)
}
