package app

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/akoskomuves/promptly/internal/analyzer"
	"github.com/akoskomuves/promptly/internal/output"
)

var skillsCmd = &cobra.Command{
	Use:   "skills",
	Short: "Skill usage correlated with session quality",
	Long: `List slash-command skills by invocation count with the average quality
of sessions that used each skill, against sessions that used none.`,
	Args: cobra.NoArgs,
	RunE: runSkills,
}

var instructionsCmd = &cobra.Command{
	Use:   "instructions",
	Short: "Session quality before and after instruction file edits",
	Long: `Compare the average quality of sessions before the first commit touching
an instruction file (CLAUDE.md, AGENTS.md, .cursorrules, ...) with the
sessions after it.`,
	Args: cobra.NoArgs,
	RunE: runInstructions,
}

func init() {
	rootCmd.AddCommand(skillsCmd)
	rootCmd.AddCommand(instructionsCmd)
}

func runSkills(cmd *cobra.Command, args []string) error {
	cfg, db, err := loadEnv()
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	recs, err := loadRecords(cfg, db)
	if err != nil {
		return err
	}
	usage := analyzer.ComputeSkillUsage(recs)

	if flagJSON {
		return writeJSON(cmd.OutOrStdout(), usage)
	}
	renderSkills(cmd.OutOrStdout(), usage)
	return nil
}

func renderSkills(w io.Writer, usage analyzer.SkillUsageAnalytics) {
	fmt.Fprintln(w, output.Section("Skills"))
	if len(usage.Skills) == 0 {
		fmt.Fprintf(w, " %s\n\n", output.StyleMuted.Render("No skill invocations recorded."))
		return
	}
	tbl := output.NewTable("Skill", "Invocations", "Sessions", "Quality with", "Quality without").AlignRight(1, 2, 3, 4)
	for _, s := range usage.Skills {
		tbl.AddRow(s.Name,
			fmt.Sprintf("%d", s.TotalInvocations),
			fmt.Sprintf("%d", s.SessionsUsed),
			formatQuality(s.AvgQualityUsed),
			formatQuality(s.AvgQualityNotUsed),
		)
	}
	tbl.Print(w)
	fmt.Fprintln(w)
}

func runInstructions(cmd *cobra.Command, args []string) error {
	cfg, db, err := loadEnv()
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	recs, err := loadRecords(cfg, db)
	if err != nil {
		return err
	}
	eff := analyzer.ComputeInstructionEffectiveness(recs)

	if flagJSON {
		return writeJSON(cmd.OutOrStdout(), eff)
	}
	renderInstructions(cmd.OutOrStdout(), eff)
	return nil
}

func renderInstructions(w io.Writer, eff analyzer.InstructionEffectiveness) {
	fmt.Fprintln(w, output.Section("Instruction Effectiveness"))

	style := output.StyleMuted
	switch eff.Verdict {
	case analyzer.VerdictImproved:
		style = output.StyleSuccess
	case analyzer.VerdictDeclined:
		style = output.StyleError
	}
	fmt.Fprintf(w, " %s\n", style.Render(eff.Message))

	if len(eff.Changes) > 0 {
		fmt.Fprintln(w)
		tbl := output.NewTable("Date", "Ticket", "Files")
		for _, c := range eff.Changes {
			tbl.AddRow(c.Date.Local().Format("Jan 02 15:04"), c.TicketID, strings.Join(c.Files, ", "))
		}
		tbl.Print(w)
	}
	fmt.Fprintln(w)
}
