package app

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/akoskomuves/promptly/internal/session"
)

var (
	exportFormat string
	exportOutput string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export sessions to JSON or CSV",
	Long: `Export every recorded session for external analysis. JSON carries the
full record including conversations and intelligence; CSV carries one
summary row per session.

Examples:
  promptly export --format json --output sessions.json
  promptly export --format csv > sessions.csv`,
	Args: cobra.NoArgs,
	RunE: runExport,
}

func init() {
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", "json", "Output format: json, csv")
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "Output file (default: stdout)")
	rootCmd.AddCommand(exportCmd)
}

var exportHeader = []string{
	"id", "ticket_id", "status", "started_at", "finished_at", "duration_minutes",
	"total_tokens", "prompt_tokens", "response_tokens", "message_count", "tool_call_count",
	"models", "tags", "client_tool", "user_name", "commits", "category", "quality",
	"estimated_cost_usd",
}

func runExport(cmd *cobra.Command, args []string) error {
	if exportFormat != "json" && exportFormat != "csv" {
		return fmt.Errorf("unsupported format: %s (use json or csv)", exportFormat)
	}

	cfg, db, err := loadEnv()
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	recs, err := loadRecords(cfg, db)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if exportOutput != "" {
		f, err := os.Create(exportOutput)
		if err != nil {
			return fmt.Errorf("creating output file: %w", err)
		}
		defer func() { _ = f.Close() }()
		out = f
	}

	switch exportFormat {
	case "json":
		if err := writeJSON(out, recs); err != nil {
			return fmt.Errorf("encoding JSON: %w", err)
		}
	case "csv":
		if err := writeCSV(out, recs); err != nil {
			return err
		}
	}

	if exportOutput != "" {
		fmt.Fprintf(cmd.ErrOrStderr(), "Exported %d sessions to %s\n", len(recs), exportOutput)
	}
	return nil
}

func writeCSV(w io.Writer, recs []session.Record) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(exportHeader); err != nil {
		return fmt.Errorf("writing CSV header: %w", err)
	}
	for _, r := range recs {
		if err := cw.Write(exportRow(r)); err != nil {
			return fmt.Errorf("writing CSV row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func exportRow(r session.Record) []string {
	finished := ""
	if r.FinishedAt != nil {
		finished = session.FormatTimestamp(*r.FinishedAt)
	}
	commits := 0
	if r.Git != nil {
		commits = r.Git.TotalCommits
	}
	quality := ""
	if q, ok := r.Quality(); ok {
		quality = strconv.FormatFloat(q, 'f', 1, 64)
	}

	return []string{
		r.ID,
		r.TicketID,
		string(r.Status),
		session.FormatTimestamp(r.StartedAt),
		finished,
		strconv.Itoa(int(r.Duration().Minutes())),
		strconv.Itoa(r.TotalTokens),
		strconv.Itoa(r.PromptTokens),
		strconv.Itoa(r.ResponseTokens),
		strconv.Itoa(r.MessageCount),
		strconv.Itoa(r.ToolCallCount),
		strings.Join(r.Models, ";"),
		strings.Join(r.Tags, ";"),
		r.ClientTool,
		r.UserName,
		strconv.Itoa(commits),
		string(r.Category),
		quality,
		r.EstimatedCost.StringFixed(6),
	}
}
