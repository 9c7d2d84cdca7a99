// Package app contains the Cobra command tree for promptly.
package app

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/akoskomuves/promptly/internal/output"
)

var appVersion = "dev"

// SetVersion sets the application version (called from main with ldflags value).
func SetVersion(v string) {
	appVersion = v
	rootCmd.Version = v
}

var (
	flagNoColor bool
	flagJSON    bool
	flagVerbose bool
	flagConfig  string
)

// logger carries --verbose diagnostics to stderr. It discards everything
// below warnings unless --verbose is set.
var logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

var rootCmd = &cobra.Command{
	Use:   "promptly",
	Short: "Session analytics for AI-assisted development",
	Long: `promptly records AI coding sessions per ticket and turns them into
analytics: quality scores, tool and subagent usage, context pressure,
prompt quality, weekly digests, project cost trends, parallel sessions,
skill usage, and instruction-file effectiveness.

Run 'promptly' with no arguments to see the current session and a list of commands.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		output.AutoColor(os.Stdout, flagNoColor)
		level := slog.LevelWarn
		if flagVerbose {
			level = slog.LevelDebug
		}
		logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
	},
	RunE: runRoot,
}

// Execute is the entry point called from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Config file path (default: ~/.config/promptly/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&flagNoColor, "no-color", false, "Disable colored output")
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "Output as JSON")
	rootCmd.PersistentFlags().BoolVar(&flagVerbose, "verbose", false, "Enable verbose output")
}

func runRoot(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "promptly", appVersion)
	fmt.Fprintln(out)

	if err := runStatus(cmd, args); err != nil {
		return err
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, "Commands:")
	fmt.Fprintln(out, "  start         Start a session for a ticket")
	fmt.Fprintln(out, "  finish        Finish the active session and analyze it")
	fmt.Fprintln(out, "  status        Show the active session")
	fmt.Fprintln(out, "  sessions      List recorded sessions")
	fmt.Fprintln(out, "  tag           Add tags to a session")
	fmt.Fprintln(out, "  enrich        Compute intelligence for finished sessions")
	fmt.Fprintln(out, "  classify      Categorize a ticket from its commits")
	fmt.Fprintln(out, "  analyze       Show one session's intelligence")
	fmt.Fprintln(out, "  digest        Weekly digest against the previous week")
	fmt.Fprintln(out, "  trends        Per-project token and cost trends")
	fmt.Fprintln(out, "  parallel      Sessions that ran at the same time")
	fmt.Fprintln(out, "  skills        Skill usage and session quality")
	fmt.Fprintln(out, "  instructions  Quality before and after instruction file edits")
	fmt.Fprintln(out, "  report        Totals for a period")
	fmt.Fprintln(out, "  export        Export sessions to JSON or CSV")
	fmt.Fprintln(out, "  mcp           Serve the analytics over MCP stdio")
	return nil
}
