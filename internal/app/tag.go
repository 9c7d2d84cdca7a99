package app

import (
	"fmt"
	"strings"

	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/akoskomuves/promptly/internal/session"
)

var tagReplace bool

var tagCmd = &cobra.Command{
	Use:   "tag <session-id> <tag>...",
	Short: "Add tags to a session",
	Long: `Attach free-form tags to a session. Tags are merged with the existing
ones unless --replace is set.

Examples:
  promptly tag 3f2a... refactor auth
  promptly tag 3f2a... --replace spike`,
	Args: cobra.MinimumNArgs(2),
	RunE: runTag,
}

func init() {
	tagCmd.Flags().BoolVar(&tagReplace, "replace", false, "Replace existing tags instead of merging")
	rootCmd.AddCommand(tagCmd)
}

func runTag(cmd *cobra.Command, args []string) error {
	_, db, err := loadEnv()
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	id := args[0]
	raw, err := db.GetSession(id)
	if err != nil {
		return err
	}
	rec := session.Decode(raw)

	tags := mergeTags(rec.Tags, args[1:], tagReplace)
	if err := db.UpdateTags(id, tags); err != nil {
		return err
	}

	if flagJSON {
		return writeJSON(cmd.OutOrStdout(), map[string]any{"id": id, "tags": tags})
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Tags for %s: %s\n", rec.TicketID, strings.Join(tags, ", "))
	return nil
}

// mergeTags returns the trimmed, deduplicated tag set, keeping first-seen order.
func mergeTags(existing, added []string, replace bool) []string {
	var all []string
	if !replace {
		all = append(all, existing...)
	}
	all = append(all, added...)
	all = lo.Map(all, func(t string, _ int) string { return strings.TrimSpace(t) })
	return lo.Uniq(lo.Compact(all))
}
