package app

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/akoskomuves/promptly/internal/analyzer"
	"github.com/akoskomuves/promptly/internal/output"
)

var (
	digestDate string
	digestFrom string
	digestTo   string
)

var digestCmd = &cobra.Command{
	Use:   "digest",
	Short: "Compare a week (or custom period) against the one before",
	Long: `Summarize sessions, tokens, cost, quality, and commits for a period and
compare them with the preceding period of the same length. Weeks run
Monday to Monday in local time.

Examples:
  promptly digest                              # this week
  promptly digest --date 2026-01-07            # the week containing Jan 7
  promptly digest --from 2026-01-01 --to 2026-01-14`,
	Args: cobra.NoArgs,
	RunE: runDigest,
}

func init() {
	digestCmd.Flags().StringVar(&digestDate, "date", "", "Any day of the week to summarize (YYYY-MM-DD)")
	digestCmd.Flags().StringVar(&digestFrom, "from", "", "Custom period start (YYYY-MM-DD)")
	digestCmd.Flags().StringVar(&digestTo, "to", "", "Custom period end, inclusive (YYYY-MM-DD)")
	rootCmd.AddCommand(digestCmd)
}

func runDigest(cmd *cobra.Command, args []string) error {
	bounds, err := analyzer.ResolveDigestBounds(time.Now(), digestDate, digestFrom, digestTo)
	if err != nil {
		return err
	}

	cfg, db, err := loadEnv()
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	recs, err := loadRecords(cfg, db)
	if err != nil {
		return err
	}
	d := analyzer.ComputeDigest(recs, bounds)

	if flagJSON {
		return writeJSON(cmd.OutOrStdout(), d)
	}
	renderDigest(cmd.OutOrStdout(), d)
	return nil
}

func renderDigest(w io.Writer, d analyzer.WeeklyDigest) {
	cur, prev, ch := d.Comparison.Current, d.Comparison.Previous, d.Comparison.Changes

	fmt.Fprintln(w, output.Section("Digest "+d.PeriodLabel))
	fmt.Fprintf(w, " %s\n\n", output.StyleMuted.Render("compared with "+d.PreviousLabel))

	tbl := output.NewTable("Metric", "Current", "Previous", "Change").AlignRight(1, 2, 3)
	tbl.AddRow("Sessions", fmt.Sprintf("%d", cur.TotalSessions), fmt.Sprintf("%d", prev.TotalSessions), output.ChangeArrow(ch.Sessions, true))
	tbl.AddRow("Tokens", formatTokens(cur.TotalTokens), formatTokens(prev.TotalTokens), output.ChangeArrow(ch.Tokens, false))
	tbl.AddRow("Cost", fmt.Sprintf("$%.2f", cur.TotalCost), fmt.Sprintf("$%.2f", prev.TotalCost), output.ChangeArrow(ch.Cost, false))
	tbl.AddRow("Messages", fmt.Sprintf("%d", cur.TotalMessages), fmt.Sprintf("%d", prev.TotalMessages), output.ChangeArrow(ch.Messages, true))
	tbl.AddRow("Quality", formatQuality(cur.AvgQuality), formatQuality(prev.AvgQuality), output.ChangeArrow(ch.Quality, true))
	tbl.AddRow("Commits", fmt.Sprintf("%d", cur.TotalCommits), fmt.Sprintf("%d", prev.TotalCommits), output.ChangeArrow(ch.Commits, true))
	tbl.AddRow("Avg duration", fmt.Sprintf("%dm", cur.AvgDuration), fmt.Sprintf("%dm", prev.AvgDuration), "")
	tbl.Print(w)

	if len(d.TopProjects) > 0 {
		fmt.Fprintln(w, output.Section("Top Projects"))
		pt := output.NewTable("Project", "Sessions", "Tokens", "Cost").AlignRight(1, 2, 3)
		for _, p := range d.TopProjects {
			pt.AddRow(p.Project, fmt.Sprintf("%d", p.Sessions), formatTokens(p.Tokens), fmt.Sprintf("$%.2f", p.Cost))
		}
		pt.Print(w)
	}

	if len(d.Developers) > 0 {
		fmt.Fprintln(w, output.Section("Developers"))
		dt := output.NewTable("Developer", "Sessions", "Tokens/session", "Cost/session", "Quality").AlignRight(1, 2, 3, 4)
		for _, dev := range d.Developers {
			dt.AddRow(dev.Name, fmt.Sprintf("%d", dev.Sessions), formatTokens(dev.TokensPerSession),
				fmt.Sprintf("$%.2f", dev.CostPerSession), formatQuality(dev.AvgQuality))
		}
		dt.Print(w)
	}

	if len(d.TopCategories) > 0 {
		fmt.Fprintln(w, output.Section("Categories"))
		ct := output.NewTable("Category", "Sessions", "Tokens").AlignRight(1, 2)
		for _, c := range d.TopCategories {
			ct.AddRow(string(c.Category), fmt.Sprintf("%d", c.Sessions), formatTokens(c.Tokens))
		}
		ct.Print(w)
	}

	if len(d.Highlights) > 0 {
		fmt.Fprintln(w, output.Section("Highlights"))
		for _, h := range d.Highlights {
			fmt.Fprintf(w, " • %s\n", h)
		}
	}
	fmt.Fprintln(w)
}
