package app

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/dustin/go-humanize"

	"github.com/akoskomuves/promptly/internal/config"
	"github.com/akoskomuves/promptly/internal/output"
	"github.com/akoskomuves/promptly/internal/session"
	"github.com/akoskomuves/promptly/internal/store"
)

// loadEnv loads the configuration and opens the session database. The
// caller closes the returned store.
func loadEnv() (*config.Config, *store.DB, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return nil, nil, fmt.Errorf("loading config: %w", err)
	}
	if !cfg.Output.Color {
		output.SetNoColor(true)
	}

	db, err := store.Open(cfg.DBPath)
	if err != nil {
		return nil, nil, fmt.Errorf("opening database: %w", err)
	}
	logger.Debug("opened database", "path", cfg.DBPath)
	return cfg, db, nil
}

// loadRecords decodes and prices every stored session.
func loadRecords(cfg *config.Config, db *store.DB) ([]session.Record, error) {
	raws, err := db.ListAllSessions()
	if err != nil {
		return nil, fmt.Errorf("listing sessions: %w", err)
	}
	recs := session.DecodeAll(raws)
	cfg.PriceTable().PriceSessions(recs)
	logger.Debug("loaded sessions", "count", len(recs))
	return recs, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// formatTokens renders a token count with thousands separators.
func formatTokens(n int) string {
	return humanize.Comma(int64(n))
}

// formatQuality renders an optional quality score.
func formatQuality(q *float64) string {
	if q == nil {
		return "n/a"
	}
	return fmt.Sprintf("%.1f", *q)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
