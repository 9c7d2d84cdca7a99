package app

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/akoskomuves/promptly/internal/analyzer"
	"github.com/akoskomuves/promptly/internal/session"
)

var (
	classifyCommits []string
	classifyMessage string
)

var classifyCmd = &cobra.Command{
	Use:   "classify <ticket-id>",
	Short: "Classify work without recording a session",
	Long: `Run the session classifier on a ticket id, optional commit messages,
and an optional first prompt. Nothing is stored.

Examples:
  promptly classify fix/login-redirect
  promptly classify AUTH-12 --commit "feat: add oauth" --commit "test: cover oauth"
  promptly classify AUTH-12 --message "Write docs for the API"`,
	Args: cobra.ExactArgs(1),
	RunE: runClassify,
}

func init() {
	classifyCmd.Flags().StringArrayVar(&classifyCommits, "commit", nil, "Commit message (repeatable)")
	classifyCmd.Flags().StringVar(&classifyMessage, "message", "", "First user prompt of the session")
	rootCmd.AddCommand(classifyCmd)
}

func runClassify(cmd *cobra.Command, args []string) error {
	var git *session.GitActivity
	if len(classifyCommits) > 0 {
		git = &session.GitActivity{TotalCommits: len(classifyCommits)}
		for _, msg := range classifyCommits {
			git.Commits = append(git.Commits, session.GitCommit{Message: msg})
		}
	}
	var turns []session.Turn
	if classifyMessage != "" {
		turns = []session.Turn{{Role: session.RoleUser, Content: classifyMessage}}
	}

	category := analyzer.Classify(args[0], git, turns)

	if flagJSON {
		return writeJSON(cmd.OutOrStdout(), map[string]session.Category{"category": category})
	}
	fmt.Fprintln(cmd.OutOrStdout(), category)
	return nil
}
