package app

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/akoskomuves/promptly/internal/config"
	"github.com/akoskomuves/promptly/internal/output"
	"github.com/akoskomuves/promptly/internal/session"
	"github.com/akoskomuves/promptly/internal/store"
)

// staleSessionAge is how long a session may stay ACTIVE before doctor flags it.
const staleSessionAge = 24 * time.Hour

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check whether the promptly setup is healthy",
	Long: `Run a series of health checks against your promptly configuration,
session database, and recorder buffer. Prints a pass/fail line for each
check and a summary of how many checks passed.`,
	Args: cobra.NoArgs,
	RunE: runDoctor,
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}

// doctorCheck holds the result of a single health check.
type doctorCheck struct {
	Name    string `json:"name"`
	Passed  bool   `json:"passed"`
	Message string `json:"message"`
}

// doctorOutput is the JSON-serializable result of the doctor command.
type doctorOutput struct {
	Checks      []doctorCheck `json:"checks"`
	PassedCount int           `json:"passed"`
	TotalCount  int           `json:"total"`
}

func runDoctor(cmd *cobra.Command, args []string) error {
	cfg, db, err := loadEnv()
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	checks := []doctorCheck{
		checkConfigFile(flagConfig),
		{Name: "Database", Passed: true, Message: cfg.DBPath},
		checkSchema(db),
		checkPricing(cfg),
		checkBuffer(config.ExpandPath(config.DefaultBufferPath)),
		checkActiveSession(db, time.Now()),
		checkEnrichment(db),
	}

	passed := 0
	for _, c := range checks {
		if c.Passed {
			passed++
		}
	}

	if flagJSON {
		return writeJSON(cmd.OutOrStdout(), doctorOutput{
			Checks:      checks,
			PassedCount: passed,
			TotalCount:  len(checks),
		})
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, output.Section("Doctor"))
	fmt.Fprintln(out)
	for _, c := range checks {
		renderDoctorCheck(out, c)
	}
	fmt.Fprintln(out)
	summary := fmt.Sprintf("%d/%d checks passed", passed, len(checks))
	if passed == len(checks) {
		fmt.Fprintf(out, " %s\n\n", output.StyleSuccess.Render(summary))
	} else {
		fmt.Fprintf(out, " %s\n\n", output.StyleWarning.Render(summary))
	}
	return nil
}

// renderDoctorCheck prints a single check result line.
func renderDoctorCheck(w io.Writer, c doctorCheck) {
	indicator := output.StyleSuccess.Render("✓")
	if !c.Passed {
		indicator = output.StyleWarning.Render("✗")
	}
	label := output.StyleBold.Render(c.Name)
	detail := output.StyleMuted.Render(c.Message)
	fmt.Fprintf(w, "  %s  %-30s %s\n", indicator, label, detail)
}

// checkConfigFile reports which config file is in effect. Running on
// defaults is not a failure.
func checkConfigFile(cfgFile string) doctorCheck {
	path := cfgFile
	if path == "" {
		path = filepath.Join(config.ConfigDir(), config.DefaultConfigFile)
	}
	path = config.ExpandPath(path)
	if _, err := os.Stat(path); err != nil {
		return doctorCheck{Name: "Config file", Passed: true, Message: "not found, using defaults"}
	}
	return doctorCheck{Name: "Config file", Passed: true, Message: path}
}

func checkSchema(db *store.DB) doctorCheck {
	v, err := db.SchemaVersion()
	if err != nil {
		return doctorCheck{Name: "Schema version", Message: fmt.Sprintf("error: %v", err)}
	}
	if v != store.CurrentSchemaVersion {
		return doctorCheck{
			Name:    "Schema version",
			Message: fmt.Sprintf("v%d, expected v%d", v, store.CurrentSchemaVersion),
		}
	}
	return doctorCheck{Name: "Schema version", Passed: true, Message: fmt.Sprintf("v%d", v)}
}

// checkPricing verifies that the default model has a price entry, so
// sessions with unknown models can still be costed.
func checkPricing(cfg *config.Config) doctorCheck {
	if _, ok := cfg.PriceTable().Lookup(cfg.DefaultModel); !ok {
		return doctorCheck{
			Name:    "Pricing",
			Message: fmt.Sprintf("default model %q has no pricing entry", cfg.DefaultModel),
		}
	}
	return doctorCheck{
		Name:    "Pricing",
		Passed:  true,
		Message: fmt.Sprintf("%d models, default %s", len(cfg.Pricing), cfg.DefaultModel),
	}
}

func checkBuffer(path string) doctorCheck {
	buf, err := session.ReadBuffer(path)
	switch {
	case err != nil:
		return doctorCheck{Name: "Recorder buffer", Message: err.Error()}
	case buf == nil:
		return doctorCheck{Name: "Recorder buffer", Passed: true, Message: "none"}
	default:
		return doctorCheck{
			Name:    "Recorder buffer",
			Passed:  true,
			Message: fmt.Sprintf("%d messages, %s tokens", buf.MessageCount, formatTokens(buf.TotalTokens)),
		}
	}
}

// checkActiveSession flags a session left ACTIVE for longer than a day.
func checkActiveSession(db *store.DB, now time.Time) doctorCheck {
	raw, err := db.ActiveSession()
	if errors.Is(err, store.ErrNotFound) {
		return doctorCheck{Name: "Active session", Passed: true, Message: "none"}
	}
	if err != nil {
		return doctorCheck{Name: "Active session", Message: fmt.Sprintf("error: %v", err)}
	}
	rec := session.Decode(raw)
	age := now.Sub(rec.StartedAt)
	if age > staleSessionAge {
		return doctorCheck{
			Name:    "Active session",
			Message: fmt.Sprintf("%s started %d hours ago; run 'promptly finish'", rec.TicketID, int(age.Hours())),
		}
	}
	return doctorCheck{Name: "Active session", Passed: true, Message: rec.TicketID}
}

func checkEnrichment(db *store.DB) doctorCheck {
	raws, err := db.ListUnenriched()
	if err != nil {
		return doctorCheck{Name: "Enrichment", Message: fmt.Sprintf("error: %v", err)}
	}
	if len(raws) > 0 {
		return doctorCheck{
			Name:    "Enrichment",
			Message: fmt.Sprintf("%d completed sessions lack intelligence; run 'promptly enrich'", len(raws)),
		}
	}
	return doctorCheck{Name: "Enrichment", Passed: true, Message: "all completed sessions enriched"}
}
