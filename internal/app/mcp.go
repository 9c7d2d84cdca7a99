package app

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/akoskomuves/promptly/internal/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run an MCP stdio server over the session analytics",
	Long: `Start a Model Context Protocol stdio server that an AI assistant can
query during a session. The server exposes these tools:

  get_recent_sessions            Last N sessions with cost, category, and quality
  get_digest                     Weekly (or custom period) digest with comparison
  get_project_trends             Per-project token and cost trends
  get_parallel_sessions          Sessions whose active windows overlapped
  get_skill_usage                Skill invocations correlated with quality
  get_instruction_effectiveness  Quality before and after instruction file edits
  get_session_intelligence       Intelligence for one session

Add to your MCP client configuration:
  {"mcpServers":{"promptly":{"command":"promptly","args":["mcp"]}}}`,
	Args: cobra.NoArgs,
	RunE: runMCP,
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}

func runMCP(cmd *cobra.Command, args []string) error {
	cfg, db, err := loadEnv()
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	srv := mcp.NewServer(db, cfg, appVersion)
	srv.SetLogger(logger.With("component", "mcp"))
	logger.Debug("starting mcp server", "version", appVersion, "db", cfg.DBPath)
	return srv.Run(cmd.Context(), os.Stdin, os.Stdout)
}
