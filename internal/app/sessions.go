package app

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/akoskomuves/promptly/internal/output"
	"github.com/akoskomuves/promptly/internal/session"
)

var (
	sessionsFlagLimit  int
	sessionsFlagOffset int
)

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "List recorded sessions",
	Long: `List recorded sessions, newest first, one page at a time.

Examples:
  promptly sessions                     # latest 20
  promptly sessions --limit 50 --offset 50
  promptly sessions delete 3f2a...`,
	Args: cobra.NoArgs,
	RunE: runSessions,
}

var sessionsDeleteCmd = &cobra.Command{
	Use:   "delete <session-id>",
	Short: "Delete a session",
	Args:  cobra.ExactArgs(1),
	RunE:  runSessionsDelete,
}

func init() {
	sessionsCmd.Flags().IntVar(&sessionsFlagLimit, "limit", 20, "Maximum sessions to display")
	sessionsCmd.Flags().IntVar(&sessionsFlagOffset, "offset", 0, "Sessions to skip")
	sessionsCmd.AddCommand(sessionsDeleteCmd)
	rootCmd.AddCommand(sessionsCmd)
}

func runSessions(cmd *cobra.Command, args []string) error {
	cfg, db, err := loadEnv()
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	raws, err := db.ListSessions(sessionsFlagLimit, sessionsFlagOffset)
	if err != nil {
		return err
	}
	recs := session.DecodeAll(raws)
	cfg.PriceTable().PriceSessions(recs)

	if flagJSON {
		return writeJSON(cmd.OutOrStdout(), recs)
	}
	renderSessions(cmd.OutOrStdout(), recs)
	return nil
}

func renderSessions(w io.Writer, recs []session.Record) {
	fmt.Fprintln(w, output.Section("Sessions"))
	if len(recs) == 0 {
		fmt.Fprintf(w, " %s\n\n", output.StyleMuted.Render("No sessions recorded."))
		return
	}

	tbl := output.NewTable("ID", "Ticket", "Started", "Status", "Duration", "Tokens", "Cost", "Quality").AlignRight(5, 6, 7)
	for _, r := range recs {
		var quality *float64
		if q, ok := r.Quality(); ok {
			quality = &q
		}
		tbl.AddRow(
			truncate(r.ID, 9),
			r.TicketID,
			r.StartedAt.Local().Format("Jan 02 15:04"),
			string(r.Status),
			fmt.Sprintf("%dm", int(r.Duration().Minutes())),
			formatTokens(r.TotalTokens),
			"$"+r.EstimatedCost.StringFixed(2),
			formatQuality(quality),
		)
	}
	tbl.Print(w)
	fmt.Fprintln(w)
}

func runSessionsDelete(cmd *cobra.Command, args []string) error {
	_, db, err := loadEnv()
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	if err := db.DeleteSession(args[0]); err != nil {
		return err
	}
	logger.Debug("deleted session", "id", args[0])
	if flagJSON {
		return writeJSON(cmd.OutOrStdout(), map[string]string{"deleted": args[0]})
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Deleted session %s\n", args[0])
	return nil
}
