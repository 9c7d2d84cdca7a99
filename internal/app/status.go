package app

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/akoskomuves/promptly/internal/config"
	"github.com/akoskomuves/promptly/internal/output"
	"github.com/akoskomuves/promptly/internal/session"
	"github.com/akoskomuves/promptly/internal/store"
)

var statusBuffer string

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the active session",
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

func init() {
	statusCmd.Flags().StringVar(&statusBuffer, "buffer", config.DefaultBufferPath, "Recorder buffer file")
	rootCmd.AddCommand(statusCmd)
}

type statusResult struct {
	Active         bool   `json:"active"`
	ID             string `json:"id,omitempty"`
	TicketID       string `json:"ticket_id,omitempty"`
	ElapsedMinutes int    `json:"elapsed_minutes,omitempty"`
	Messages       int    `json:"messages"`
	Tokens         int    `json:"tokens"`
	TotalSessions  int    `json:"total_sessions"`
}

func runStatus(cmd *cobra.Command, args []string) error {
	_, db, err := loadEnv()
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	var res statusResult
	if res.TotalSessions, err = db.CountSessions(); err != nil {
		return err
	}

	raw, err := db.ActiveSession()
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("checking active session: %w", err)
	}
	if err == nil {
		rec := session.Decode(raw)
		res.Active = true
		res.ID = rec.ID
		res.TicketID = rec.TicketID
		res.ElapsedMinutes = int(time.Since(rec.StartedAt).Minutes())

		// A malformed buffer only hides the live counters.
		buf, berr := session.ReadBuffer(config.ExpandPath(statusBuffer))
		if berr != nil {
			logger.Warn("ignoring recorder buffer", "err", berr)
		}
		if buf != nil {
			res.Messages = buf.MessageCount
			res.Tokens = buf.TotalTokens
		}
	}

	if flagJSON {
		return writeJSON(cmd.OutOrStdout(), res)
	}

	out := cmd.OutOrStdout()
	if !res.Active {
		fmt.Fprintln(out, output.StyleMuted.Render("No active session."))
		fmt.Fprintf(out, "%d sessions recorded.\n", res.TotalSessions)
		return nil
	}
	fmt.Fprintf(out, "Active session: %s\n", output.StyleBold.Render(res.TicketID))
	fmt.Fprintf(out, "  Started: %d minutes ago\n", res.ElapsedMinutes)
	fmt.Fprintf(out, "  Messages: %d\n", res.Messages)
	fmt.Fprintf(out, "  Tokens: %s\n", formatTokens(res.Tokens))
	return nil
}
