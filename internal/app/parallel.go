package app

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/akoskomuves/promptly/internal/analyzer"
	"github.com/akoskomuves/promptly/internal/output"
)

var parallelIncludeTouching bool

var parallelCmd = &cobra.Command{
	Use:   "parallel",
	Short: "Sessions that ran at the same time",
	Long: `Find groups of sessions whose active windows overlapped, longest
overlap first. Sessions that start exactly when another finishes are
ignored unless --include-touching is set (or overlap.include_touching).`,
	Args: cobra.NoArgs,
	RunE: runParallel,
}

func init() {
	parallelCmd.Flags().BoolVar(&parallelIncludeTouching, "include-touching", false, "Also report back-to-back sessions")
	rootCmd.AddCommand(parallelCmd)
}

func runParallel(cmd *cobra.Command, args []string) error {
	cfg, db, err := loadEnv()
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	recs, err := loadRecords(cfg, db)
	if err != nil {
		return err
	}

	opts := analyzer.OverlapOptions{
		IncludeTouching: cfg.Overlap.IncludeTouching || parallelIncludeTouching,
	}
	groups := analyzer.DetectParallelSessions(recs, opts)

	if flagJSON {
		return writeJSON(cmd.OutOrStdout(), groups)
	}
	renderParallel(cmd.OutOrStdout(), groups)
	return nil
}

func renderParallel(w io.Writer, groups []analyzer.ParallelSessionGroup) {
	fmt.Fprintln(w, output.Section("Parallel Sessions"))
	if len(groups) == 0 {
		fmt.Fprintf(w, " %s\n\n", output.StyleMuted.Render("No overlapping sessions."))
		return
	}

	tbl := output.NewTable("Started", "Tickets", "Overlap", "Tokens").AlignRight(2, 3)
	for _, g := range groups {
		tickets := make([]string, len(g.Sessions))
		for i, s := range g.Sessions {
			tickets[i] = s.TicketID
		}
		tbl.AddRow(
			g.OverlapStart.Local().Format("Jan 02 15:04"),
			strings.Join(tickets, ", "),
			fmt.Sprintf("%dm", g.OverlapMinutes),
			formatTokens(g.CombinedTokens),
		)
	}
	tbl.Print(w)
	fmt.Fprintln(w)
}
