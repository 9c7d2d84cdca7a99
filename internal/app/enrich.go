package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/akoskomuves/promptly/internal/analyzer"
	"github.com/akoskomuves/promptly/internal/session"
	"github.com/akoskomuves/promptly/internal/store"
)

var (
	enrichForce   bool
	enrichWorkers int
)

var enrichCmd = &cobra.Command{
	Use:   "enrich [session-id...]",
	Short: "Compute category and intelligence for completed sessions",
	Long: `Backfill the category and intelligence of completed sessions that were
never analyzed. With ids only those sessions are processed. --force
recomputes sessions that already carry intelligence.

Examples:
  promptly enrich
  promptly enrich --workers 8
  promptly enrich 1b9d6bcd-bbfd-4b2d-9b5d-ab8dfbbd4bed --force`,
	RunE: runEnrich,
}

func init() {
	enrichCmd.Flags().BoolVar(&enrichForce, "force", false, "Recompute intelligence even when already stored")
	enrichCmd.Flags().IntVar(&enrichWorkers, "workers", 0, "Concurrent analyzers (default from config)")
	rootCmd.AddCommand(enrichCmd)
}

type enrichSummary struct {
	Enriched int `json:"enriched"`
	Skipped  int `json:"skipped"`

	// NotCompleted counts requested sessions left alone because they are
	// still ACTIVE.
	NotCompleted int `json:"not_completed"`
}

func runEnrich(cmd *cobra.Command, args []string) error {
	cfg, db, err := loadEnv()
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	var (
		raws         []session.RawRecord
		notCompleted int
	)
	switch {
	case len(args) > 0:
		for _, id := range args {
			raw, err := db.GetSession(id)
			if err != nil {
				return fmt.Errorf("session %s: %w", id, err)
			}
			if raw.Status != string(session.StatusCompleted) {
				logger.Debug("not enriching unfinished session", "id", id, "status", raw.Status)
				notCompleted++
				continue
			}
			raws = append(raws, raw)
		}
	case enrichForce:
		all, err := db.ListAllSessions()
		if err != nil {
			return err
		}
		for _, raw := range all {
			if raw.Status == string(session.StatusCompleted) {
				raws = append(raws, raw)
			}
		}
	default:
		if raws, err = db.ListUnenriched(); err != nil {
			return err
		}
	}

	workers := enrichWorkers
	if workers <= 0 {
		workers = cfg.Enrich.Workers
	}

	qa := analyzer.NewQualityAnalyzer(cfg.Patterns())
	summary, err := enrichAll(cmd.Context(), db, qa, raws, workers, enrichForce)
	if err != nil {
		return err
	}
	summary.NotCompleted = notCompleted

	if flagJSON {
		return writeJSON(cmd.OutOrStdout(), summary)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Enriched %d sessions (%d already enriched)\n", summary.Enriched, summary.Skipped)
	if notCompleted > 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "Skipped %d sessions that are not finished\n", notCompleted)
	}
	return nil
}

// enrichAll analyzes raws concurrently with at most workers goroutines and
// stores the results one at a time.
func enrichAll(ctx context.Context, db *store.DB, qa *analyzer.QualityAnalyzer, raws []session.RawRecord, workers int, force bool) (enrichSummary, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	results := make([]session.Record, len(raws))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(workers, 1))
	for i, raw := range raws {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			rec := session.Decode(raw)
			if force {
				rec.Category = ""
				rec.Intelligence = nil
			}
			results[i] = qa.Enrich(rec)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return enrichSummary{}, err
	}

	var summary enrichSummary
	for _, rec := range results {
		if err := saveAnnex(db, rec, force); err != nil {
			if errors.Is(err, store.ErrAnnexExists) {
				summary.Skipped++
				continue
			}
			return summary, err
		}
		logger.Debug("enriched session", "id", rec.ID, "category", rec.Category)
		summary.Enriched++
	}
	return summary, nil
}

// enrichAndSave enriches one record and stores its annex. An annex that
// already exists is kept and returned unchanged.
func enrichAndSave(db *store.DB, qa *analyzer.QualityAnalyzer, rec session.Record, force bool) (session.Record, error) {
	rec = qa.Enrich(rec)
	err := saveAnnex(db, rec, force)
	if errors.Is(err, store.ErrAnnexExists) {
		raw, gerr := db.GetSession(rec.ID)
		if gerr != nil {
			return rec, gerr
		}
		stored := session.Decode(raw)
		rec.Category = stored.Category
		rec.Intelligence = stored.Intelligence
		return rec, nil
	}
	return rec, err
}

func saveAnnex(db *store.DB, rec session.Record, force bool) error {
	raw := session.Encode(rec)
	return db.SaveAnnex(rec.ID, store.Annex{Category: raw.Category, Intelligence: raw.Intelligence}, force)
}
