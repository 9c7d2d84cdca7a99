package app

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/akoskomuves/promptly/internal/store"
)

var startTags []string

var startCmd = &cobra.Command{
	Use:   "start <ticket-id>",
	Short: "Start recording a session for a ticket",
	Long: `Create an ACTIVE session for a ticket. Only one session may be active
at a time; run 'promptly finish' to complete it.

Examples:
  promptly start AUTH-123
  promptly start fix/login-redirect --tag urgent`,
	Args: cobra.ExactArgs(1),
	RunE: runStart,
}

func init() {
	startCmd.Flags().StringSliceVar(&startTags, "tag", nil, "Tags to attach to the session (repeatable)")
	rootCmd.AddCommand(startCmd)
}

func runStart(cmd *cobra.Command, args []string) error {
	_, db, err := loadEnv()
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	active, err := db.ActiveSession()
	switch {
	case err == nil:
		return fmt.Errorf("session already active for %s; run 'promptly finish' first", active.TicketID)
	case !errors.Is(err, store.ErrNotFound):
		return fmt.Errorf("checking active session: %w", err)
	}

	raw, err := db.CreateSession(store.NewSessionID(), args[0], time.Now())
	if err != nil {
		return fmt.Errorf("creating session: %w", err)
	}
	if len(startTags) > 0 {
		if err := db.UpdateTags(raw.ID, startTags); err != nil {
			return fmt.Errorf("tagging session: %w", err)
		}
	}

	if flagJSON {
		return writeJSON(cmd.OutOrStdout(), map[string]string{"id": raw.ID, "ticket_id": raw.TicketID})
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Session started for %s\n", raw.TicketID)
	fmt.Fprintf(out, "  ID: %s\n", raw.ID)
	fmt.Fprintln(out, "  Run 'promptly finish' when done.")
	return nil
}
