package app

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/akoskomuves/promptly/internal/analyzer"
	"github.com/akoskomuves/promptly/internal/output"
	"github.com/akoskomuves/promptly/internal/session"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <session-id>",
	Short: "Show one session's intelligence",
	Long: `Print the quality score, tool and subagent usage, context metrics, and
prompt insights of a session. Sessions that were never enriched are
analyzed on the fly; the result is not stored (use 'promptly enrich').`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	cfg, db, err := loadEnv()
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	raw, err := db.GetSession(args[0])
	if err != nil {
		return fmt.Errorf("session %s: %w", args[0], err)
	}
	rec := analyzer.NewQualityAnalyzer(cfg.Patterns()).Enrich(session.Decode(raw))
	rec.EstimatedCost = cfg.PriceTable().EstimateCost(rec)

	if flagJSON {
		return writeJSON(cmd.OutOrStdout(), rec)
	}
	renderAnalysis(cmd.OutOrStdout(), rec)
	return nil
}

func renderAnalysis(w io.Writer, rec session.Record) {
	intel := rec.Intelligence
	q := intel.QualityScore

	fmt.Fprintln(w, output.Section("Session "+rec.TicketID))
	fmt.Fprintln(w, output.KeyValue("ID", rec.ID))
	fmt.Fprintln(w, output.KeyValue("Category", string(rec.Category)))
	fmt.Fprintln(w, output.KeyValue("Tokens", formatTokens(rec.TotalTokens)))
	fmt.Fprintln(w, output.KeyValue("Cost", "$"+rec.EstimatedCost.StringFixed(2)))

	fmt.Fprintln(w, output.Section("Quality"))
	fmt.Fprintln(w, output.KeyValue("Overall", output.QualityBar(q.Overall, 10)))
	fmt.Fprintln(w, output.KeyValue("Plan mode", yesNo(q.PlanModeUsed)))
	fmt.Fprintln(w, output.KeyValue("One-shot", yesNo(q.OneShotSuccess)))
	fmt.Fprintln(w, output.KeyValue("Correction rate", fmt.Sprintf("%.0f%%", q.CorrectionRate*100)))
	fmt.Fprintln(w, output.KeyValue("Error recovery", fmt.Sprintf("%.1f", q.ErrorRecovery)))
	fmt.Fprintln(w, output.KeyValue("Turns", fmt.Sprintf("%d", q.TurnsToComplete)))

	fmt.Fprintln(w, output.Section("Tools"))
	if len(intel.ToolUsage.TopTools) == 0 {
		fmt.Fprintf(w, " %s\n", output.StyleMuted.Render("No tool usage recorded"))
	}
	for _, t := range intel.ToolUsage.TopTools {
		fmt.Fprintln(w, output.KeyValue(t.Name, fmt.Sprintf("%d", t.Count)))
	}
	if len(intel.ToolUsage.SkillInvocations) > 0 {
		fmt.Fprintln(w, output.KeyValue("Skills", fmt.Sprintf("%v", intel.ToolUsage.SkillInvocations)))
	}
	if intel.SubagentStats.TotalSpawned > 0 {
		fmt.Fprintln(w, output.KeyValue("Subagents", fmt.Sprintf("%d", intel.SubagentStats.TotalSpawned)))
		for _, t := range intel.SubagentStats.TopTypes {
			fmt.Fprintln(w, output.KeyValue("  "+t.Name, fmt.Sprintf("%d", t.Count)))
		}
	}

	c := intel.ContextMetrics
	fmt.Fprintln(w, output.Section("Context"))
	fmt.Fprintln(w, output.KeyValue("Peak tokens", formatTokens(c.PeakTokenCount)))
	fmt.Fprintln(w, output.KeyValue("Utilization", fmt.Sprintf("%.0f%%", c.ContextUtilization*100)))
	fmt.Fprintln(w, output.KeyValue("Growth per turn", formatTokens(c.TokenGrowthRate)))
	fmt.Fprintln(w, output.KeyValue("Summarizations", fmt.Sprintf("%d", c.SummarizationEvents)))

	p := intel.PromptQuality
	fmt.Fprintln(w, output.Section("Prompts"))
	fmt.Fprintln(w, output.KeyValue("Efficiency", fmt.Sprintf("%d/100", p.PromptEfficiency)))
	fmt.Fprintln(w, output.KeyValue("Avg length", fmt.Sprintf("%d words", p.AvgPromptLength)))
	for _, in := range p.Insights {
		style := output.StyleMuted
		if in.Severity == session.SeverityWarning {
			style = output.StyleWarning
		}
		fmt.Fprintf(w, " %s %s\n", style.Render("["+in.Type+"]"), in.Description)
		fmt.Fprintf(w, "   %s\n", output.StyleMuted.Render(in.Suggestion))
	}
	fmt.Fprintln(w)
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
