package app

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/akoskomuves/promptly/internal/analyzer"
	"github.com/akoskomuves/promptly/internal/config"
	"github.com/akoskomuves/promptly/internal/git"
	"github.com/akoskomuves/promptly/internal/output"
	"github.com/akoskomuves/promptly/internal/session"
	"github.com/akoskomuves/promptly/internal/store"
)

var (
	finishBuffer     string
	finishGitJSON    string
	finishRepo       string
	finishNoGit      bool
	finishUserName   string
	finishUserEmail  string
	finishKeepBuffer bool
)

var finishCmd = &cobra.Command{
	Use:   "finish [session-id]",
	Short: "Finish a session and analyze it",
	Long: `Mark a session COMPLETED, store its transcript from the recorder buffer,
attach git activity, and compute its category and intelligence once.
Without an id the active session is finished.

Git activity is read from the repository in the current directory (or
--repo): the branch plus every commit made since the session started.
--git-json supplies it from a file instead and --no-git skips it.

Examples:
  promptly finish
  promptly finish --repo ~/src/api
  promptly finish --git-json /tmp/git.json
  promptly finish 1b9d6bcd-bbfd-4b2d-9b5d-ab8dfbbd4bed --buffer ./buffer.json`,
	Args: cobra.MaximumNArgs(1),
	RunE: runFinish,
}

func init() {
	finishCmd.Flags().StringVar(&finishBuffer, "buffer", config.DefaultBufferPath, "Recorder buffer file with the session transcript")
	finishCmd.Flags().StringVar(&finishGitJSON, "git-json", "", "JSON file with the session's git activity (overrides capture)")
	finishCmd.Flags().StringVar(&finishRepo, "repo", ".", "Repository to capture git activity from")
	finishCmd.Flags().BoolVar(&finishNoGit, "no-git", false, "Do not record git activity")
	finishCmd.Flags().StringVar(&finishUserName, "user-name", "", "Developer name to record")
	finishCmd.Flags().StringVar(&finishUserEmail, "user-email", "", "Developer email to record")
	finishCmd.Flags().BoolVar(&finishKeepBuffer, "keep-buffer", false, "Do not delete the buffer file after finishing")
	rootCmd.AddCommand(finishCmd)
}

func runFinish(cmd *cobra.Command, args []string) error {
	cfg, db, err := loadEnv()
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	var raw session.RawRecord
	if len(args) == 1 {
		raw, err = db.GetSession(args[0])
	} else {
		raw, err = db.ActiveSession()
		if errors.Is(err, store.ErrNotFound) {
			return errors.New("no active session; run 'promptly start <ticket-id>' first")
		}
	}
	if err != nil {
		return err
	}

	rec := session.Decode(raw)
	if rec.Status == session.StatusCompleted {
		return fmt.Errorf("session %s is already completed", rec.ID)
	}

	bufPath := config.ExpandPath(finishBuffer)
	buf, err := session.ReadBuffer(bufPath)
	if err != nil {
		return err
	}
	if buf == nil {
		logger.Info("no recorder buffer", "path", bufPath)
	}
	buf.Apply(&rec)

	switch {
	case finishGitJSON != "":
		activity, err := readGitActivity(finishGitJSON)
		if err != nil {
			return err
		}
		rec.Git = activity
	case !finishNoGit:
		activity, err := git.Capture(cmd.Context(), config.ExpandPath(finishRepo), rec.StartedAt)
		if err != nil {
			logger.Warn("could not capture git activity", "repo", finishRepo, "err", err)
		}
		rec.Git = activity
	}
	if finishUserName != "" {
		rec.UserName = finishUserName
	}
	if finishUserEmail != "" {
		rec.UserEmail = finishUserEmail
	}

	now := time.Now()
	rec.FinishedAt = &now
	rec.Status = session.StatusCompleted

	if err := db.FinishSession(session.Encode(rec)); err != nil {
		return err
	}

	qa := analyzer.NewQualityAnalyzer(cfg.Patterns())
	rec, err = enrichAndSave(db, qa, rec, false)
	if err != nil {
		return err
	}
	rec.EstimatedCost = cfg.PriceTable().EstimateCost(rec)

	if buf != nil && !finishKeepBuffer {
		if err := os.Remove(bufPath); err != nil {
			logger.Warn("could not remove buffer", "path", bufPath, "err", err)
		}
	}

	if flagJSON {
		return writeJSON(cmd.OutOrStdout(), rec)
	}
	renderFinish(cmd, rec)
	return nil
}

// readGitActivity loads a git activity object from a JSON file.
func readGitActivity(path string) (*session.GitActivity, error) {
	data, err := os.ReadFile(config.ExpandPath(path))
	if err != nil {
		return nil, fmt.Errorf("reading git activity: %w", err)
	}
	activity := session.DecodeGitActivity(string(data))
	if activity == nil {
		return nil, fmt.Errorf("git activity in %s is not a JSON object", path)
	}
	return activity, nil
}

func renderFinish(cmd *cobra.Command, rec session.Record) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Session completed for %s\n", output.StyleBold.Render(rec.TicketID))
	fmt.Fprintf(out, "  Duration: %d minutes\n", int(rec.Duration().Minutes()))
	fmt.Fprintf(out, "  Messages: %d\n", rec.MessageCount)
	fmt.Fprintf(out, "  Tokens: %s\n", formatTokens(rec.TotalTokens))
	fmt.Fprintf(out, "  Cost: $%s\n", rec.EstimatedCost.StringFixed(2))
	if rec.Git != nil && rec.Git.TotalCommits > 0 {
		fmt.Fprintf(out, "  Branch: %s\n", rec.Git.Branch)
		fmt.Fprintf(out, "  Commits: %d (+%d/-%d lines)\n",
			rec.Git.TotalCommits, rec.Git.TotalInsertions, rec.Git.TotalDeletions)
	}
	fmt.Fprintf(out, "  Category: %s\n", rec.Category)
	if q, ok := rec.Quality(); ok {
		fmt.Fprintf(out, "  Quality: %s\n", output.QualityBar(q, 10))
	}
}
